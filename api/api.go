// Package api is a client for the parts of the TrueNAS REST API (v2.0) used
// to manage certificates, certificate authorities, and the web UI identity.
package api

import (
	"errors"
)

var (
	// ErrUnauthorized refers to the http response code unauthorized, which really means not authenticated, despite its name. See https://stackoverflow.com/a/6937030/155585
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the credentials do not have permission to the requested resource
	ErrForbidden = errors.New("forbidden")

	ErrDuplicate  = errors.New("duplicate record")
	ErrNotFound   = errors.New("record not found")
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Create types accepted by the appliance. Only imported material is used;
// the appliance never generates keys for this tool.
const (
	CreateTypeImportedCA          = "CA_CREATE_IMPORTED"
	CreateTypeImportedCertificate = "CERTIFICATE_CREATE_IMPORTED"
)
