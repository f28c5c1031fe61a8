/*
Package patch provides helper functions for patching static variables in tests.
*/
package patch

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/dataway/truenas-cert-sync/internal/logging"
)

type TestingT interface {
	Helper()
	Cleanup(func())
}

// Logger sets logging.L to write JSON to writer at debug level for the
// lifetime of the test. Use zerolog.NewTestWriter(t) to only show the logs of
// failed tests.
// This function modifies global state, it must not be used with t.Parallel.
func Logger(t TestingT, writer io.Writer) {
	t.Helper()
	origL := logging.L
	logger := zerolog.New(writer).Level(zerolog.DebugLevel)
	logging.L = &logger
	t.Cleanup(func() {
		logging.L = origL
	})
}
