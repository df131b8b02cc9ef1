package daemon

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const certValidity = 365 * 24 * time.Hour

// CertProvider loads or generates the TLS key pair the daemon's listener
// presents to clients. The production implementation is file-backed
// (CertDirProvider); tests can substitute an in-memory stand-in.
type CertProvider interface {
	EnsureCertificate(regenerate bool) (tls.Certificate, error)
}

// CertDirProvider loads a PEM key pair from <dir>/cert.pem and
// <dir>/key.pem, generating a new self-signed pair when absent, expired,
// or when regeneration is forced.
type CertDirProvider struct {
	Dir string
}

func (p CertDirProvider) certPath() string { return filepath.Join(p.Dir, "cert.pem") }
func (p CertDirProvider) keyPath() string  { return filepath.Join(p.Dir, "key.pem") }

// EnsureCertificate returns a valid certificate, generating one on disk if
// necessary.
func (p CertDirProvider) EnsureCertificate(regenerate bool) (tls.Certificate, error) {
	if !regenerate {
		if cert, err := tls.LoadX509KeyPair(p.certPath(), p.keyPath()); err == nil {
			if leaf, err := x509.ParseCertificate(cert.Certificate[0]); err == nil {
				if time.Now().Before(leaf.NotAfter) {
					return cert, nil
				}
			}
		}
	}
	return p.generate()
}

func (p CertDirProvider) generate() (tls.Certificate, error) {
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return tls.Certificate{}, fmt.Errorf("create cert directory: %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate serial: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "harnessd", Organization: []string{"harness"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create self-signed certificate: %w", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("marshal key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	if err := os.WriteFile(p.certPath(), certPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("write certificate: %w", err)
	}
	if err := os.WriteFile(p.keyPath(), keyPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("write key: %w", err)
	}

	return tls.X509KeyPair(certPEM, keyPEM)
}
