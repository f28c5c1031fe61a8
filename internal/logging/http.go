package logging

import (
	"bytes"
	"log"

	"github.com/rs/zerolog"
)

var (
	invalidHeaderValue = []byte("invalid header field value")
	forKey             = []byte(" for key")
)

// FilteredHTTPLogger is an io.Writer for the ErrorLog of an http.Server or
// http.Client transport. net/http may quote the value of an invalid header in
// its error text, and for the Authorization header that value is a credential.
// The quoted value is removed before the line is logged.
type FilteredHTTPLogger struct {
	zerolog.Logger
}

func (l FilteredHTTPLogger) Write(b []byte) (int, error) {
	idx := bytes.Index(b, invalidHeaderValue)
	if idx < 0 {
		return l.Logger.Write(b)
	}
	idx += len(invalidHeaderValue)

	line := append([]byte{}, b[:idx]...)
	if end := bytes.Index(b[idx:], forKey); end >= 0 {
		line = append(line, b[idx+end:]...)
	}
	return l.Logger.Write(line)
}

// NewHTTPErrorLog returns a *log.Logger suitable for http.Server.ErrorLog.
func NewHTTPErrorLog() *log.Logger {
	return log.New(&FilteredHTTPLogger{L.With().Str("component", "http").Logger()}, "", 0)
}
