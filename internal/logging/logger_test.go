package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
)

func TestSetLevel(t *testing.T) {
	origL := L
	t.Cleanup(func() {
		L = origL
	})

	b := &bytes.Buffer{}
	logger := zerolog.New(b)
	L = &logger

	assert.NilError(t, SetLevel("warn"))
	Infof("dropped %d", 1)
	Warnf("kept %d", 2)

	lines := bytes.Split(bytes.TrimSpace(b.Bytes()), []byte("\n"))
	assert.Equal(t, len(lines), 1)

	m := map[string]interface{}{}
	assert.NilError(t, json.Unmarshal(lines[0], &m))
	assert.Equal(t, m["message"], "kept 2")
	assert.Equal(t, m["level"], "warn")

	err := SetLevel("loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}
