package connector

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"

	"github.com/dataway/truenas-cert-sync/internal"
)

// newTransport returns an http.RoundTripper for requests to the appliance.
func newTransport(opts Options) (*http.Transport, error) {
	// clone the default http transport which sets reasonable defaults
	defaultHTTPTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("unexpected type for http.DefaultTransport")
	}

	transport := defaultHTTPTransport.Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		//nolint:gosec // We may purposely set InsecureSkipVerify via a flag
		InsecureSkipVerify: opts.SkipTLSVerify,
	}

	if opts.TrustedCertificate != "" {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM([]byte(opts.TrustedCertificate)) {
			return nil, &internal.ConfigError{
				Field:   envName("TrustedCertificate"),
				Message: "does not contain a PEM encoded certificate",
			}
		}
		transport.TLSClientConfig.RootCAs = pool
		transport.TLSClientConfig.InsecureSkipVerify = false
	}
	return transport, nil
}
