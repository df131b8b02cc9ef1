package cli

import (
	"crypto/x509"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyConnectionErrorNil(t *testing.T) {
	assert.Nil(t, ClassifyConnectionError(nil, "localhost:9443"))
}

func TestClassifyConnectionErrorTLS(t *testing.T) {
	err := ClassifyConnectionError(x509.UnknownAuthorityError{}, "localhost:9443")
	assert.Equal(t, ConnectionErrorTLS, err.Type)
	assert.Equal(t, "TLS certificate error", err.Type.String())
}

func TestClassifyConnectionErrorDNS(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "daemon.invalid", IsNotFound: true}
	err := ClassifyConnectionError(dnsErr, "daemon.invalid:9443")
	assert.Equal(t, ConnectionErrorDNS, err.Type)
}

func TestClassifyConnectionErrorNetwork(t *testing.T) {
	err := ClassifyConnectionError(errors.New("dial tcp 127.0.0.1:9443: connect: connection refused"), "127.0.0.1:9443")
	assert.Equal(t, ConnectionErrorNetwork, err.Type)
}

func TestClassifyConnectionErrorUnknown(t *testing.T) {
	err := ClassifyConnectionError(errors.New("something strange happened"), "127.0.0.1:9443")
	assert.Equal(t, ConnectionErrorUnknown, err.Type)
	assert.Equal(t, "Connection error", err.Type.String())
}
