package core

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
)

// DecodeCertPool builds an x509.CertPool from a PEM-encoded CA bundle. If
// data is empty, the system pool is used (possibly cloned, possibly a fresh
// empty pool on platforms with no notion of one).
func DecodeCertPool(data []byte) (*x509.CertPool, error) {
	if len(data) == 0 {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		return pool, nil
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("k8s: no certificates found in CA bundle")
	}
	return pool, nil
}

// DecodeBase64OrRaw decodes s as standard base64; if that fails, s is
// returned unchanged (kubeconfig fields may carry either form in the wild,
// though the canonical form is always base64).
func DecodeBase64OrRaw(s string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded
	}
	return []byte(s)
}

// LoadPEMFile reads a PEM (certificate or key) file from disk.
func LoadPEMFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("k8s: reading %s: %w", path, err)
	}
	return data, nil
}

// BuildClientCertificate parses a PEM cert+key pair into a tls.Certificate
// usable as Decoration.Certificate.
func BuildClientCertificate(certPEM, keyPEM []byte) (tls.Certificate, error) {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("k8s: parsing client certificate/key: %w", err)
	}
	return cert, nil
}
