// Package credentials reads the TLS identity that should be installed on the
// appliance: the CA certificate, the leaf certificate, its private key, and
// the names they are stored under.
package credentials

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/dataway/truenas-cert-sync/internal"
	"github.com/dataway/truenas-cert-sync/internal/certs"
)

// Options are the paths of the PEM files to sync, and optional names to use
// instead of the certificate common names.
type Options struct {
	CA       string `validate:"required"`
	Cert     string `validate:"required"`
	Key      string `validate:"required"`
	CAName   string
	CertName string
}

// Identity is the desired state of the appliance, read fresh for every sync.
type Identity struct {
	CAPEM    string
	CAName   string
	CertPEM  string
	CertName string
	KeyPEM   string
}

// ReadError is returned when one of the configured files can not be read.
type ReadError struct {
	// Field is the setting that names the file (ex: TRUENAS_SYNC_CERT).
	Field string
	Path  string
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %v %v: %v", e.Field, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

type Source struct {
	fs   afero.Fs
	opts Options
}

func NewSource(fs afero.Fs, opts Options) *Source {
	return &Source{fs: fs, opts: opts}
}

type file struct {
	field string
	path  string
}

func (s *Source) files() []file {
	return []file{
		{field: "TRUENAS_SYNC_CA", path: s.opts.CA},
		{field: "TRUENAS_SYNC_CERT", path: s.opts.Cert},
		{field: "TRUENAS_SYNC_KEY", path: s.opts.Key},
	}
}

// Validate returns a *internal.ConfigError if any of the file paths is unset.
func (s *Source) Validate() error {
	for _, f := range s.files() {
		if f.path == "" {
			return &internal.ConfigError{Field: f.field, Message: "is required"}
		}
	}
	return nil
}

// Resolve reads the three files and derives the CA and certificate names.
func (s *Source) Resolve() (*Identity, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	contents := make([]string, 0, 3)
	for _, f := range s.files() {
		raw, err := afero.ReadFile(s.fs, f.path)
		if err != nil {
			return nil, &ReadError{Field: f.field, Path: f.path, Err: err}
		}
		contents = append(contents, strings.TrimSpace(string(raw)))
	}

	identity := &Identity{CAPEM: contents[0], CertPEM: contents[1], KeyPEM: contents[2]}

	var err error
	identity.CAName, err = resolveName(s.opts.CAName, identity.CAPEM)
	if err != nil {
		return nil, fmt.Errorf("CA name from %v: %w", s.opts.CA, err)
	}
	identity.CertName, err = resolveName(s.opts.CertName, identity.CertPEM)
	if err != nil {
		return nil, fmt.Errorf("certificate name from %v: %w", s.opts.Cert, err)
	}
	return identity, nil
}

func resolveName(override string, pem string) (string, error) {
	if override != "" {
		return override, nil
	}
	cn, err := certs.CommonName([]byte(pem))
	if err != nil {
		return "", err
	}
	return SanitizeName(cn), nil
}

// ModTime returns the latest modification time of the three files.
func (s *Source) ModTime() (time.Time, error) {
	var latest time.Time
	for _, f := range s.files() {
		info, err := s.fs.Stat(f.path)
		if err != nil {
			return time.Time{}, &ReadError{Field: f.field, Path: f.path, Err: err}
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest, nil
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeName replaces every character that the appliance does not accept in
// a certificate name with an underscore.
func SanitizeName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "_")
}
