package logging

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
)

func patchLogger(t *testing.T, writer io.Writer) {
	t.Helper()
	origL := L
	logger := zerolog.New(writer).Level(zerolog.DebugLevel)
	L = &logger
	t.Cleanup(func() {
		L = origL
	})
}
