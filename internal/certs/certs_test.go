package certs

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
)

func TestCommonName(t *testing.T) {
	certPEM, keyPEM, err := SelfSignedCert("nas.example.com", false)
	assert.NilError(t, err)

	t.Run("certificate", func(t *testing.T) {
		cn, err := CommonName(certPEM)
		assert.NilError(t, err)
		assert.Equal(t, cn, "nas.example.com")
	})

	t.Run("key before certificate", func(t *testing.T) {
		combined := append(append([]byte{}, keyPEM...), certPEM...)
		cn, err := CommonName(combined)
		assert.NilError(t, err)
		assert.Equal(t, cn, "nas.example.com")
	})

	t.Run("key only", func(t *testing.T) {
		_, err := CommonName(keyPEM)
		assert.Assert(t, errors.Is(err, ErrNoCertificate))
	})

	t.Run("not pem", func(t *testing.T) {
		_, err := CommonName([]byte("hello"))
		assert.Assert(t, errors.Is(err, ErrNoCertificate))
	})

	t.Run("empty common name", func(t *testing.T) {
		certPEM, _, err := SelfSignedCert("", true)
		assert.NilError(t, err)

		_, err = CommonName(certPEM)
		assert.ErrorContains(t, err, "has no subject common name")
	})
}

func TestSelfSignedCert_CA(t *testing.T) {
	certPEM, _, err := SelfSignedCert("Example Root CA", true)
	assert.NilError(t, err)

	cert, err := ParseCertificate(certPEM)
	assert.NilError(t, err)
	assert.Assert(t, cert.IsCA)
	assert.Equal(t, cert.Subject.CommonName, "Example Root CA")
}
