package core

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"time"

	"k8s.io/client-go/rest"
)

// Conn is an immutable per-cluster handle: base URL, TLS material, the
// chosen AuthProvider, discovery driver, and the cache/transport built on
// top of them. It never mutates after construction; credential refresh is
// delegated entirely to the AuthProvider. Per spec §9's "no program-wide
// singleton" design note, every Conn owns its own discoveryCache and
// ResourceFinder rather than sharing package-level state.
type Conn struct {
	BaseURL               string
	CACertPool            *x509.CertPool
	InsecureSkipTLSVerify bool

	Auth      AuthProvider
	Driver    DiscoveryDriver
	Finder    *ResourceFinder
	Transport *Transport

	DiscoveryTimeout time.Duration

	// FieldManager is the default "fieldManager" query parameter injected
	// for PatchApply operations (spec §4.5), overridable per-Conn via the
	// facade's WithFieldManager ConnOption.
	FieldManager string

	// ListLimit is the default page size Runner.ListStream uses when the
	// caller passes 0, overridable per-Conn via the facade's
	// WithListLimit ConnOption.
	ListLimit int
}

// NewHTTPClient builds the *http.Client every component sharing a Conn's
// TLS material uses — both Conn's own Transport and, in the facade, the
// DiscoveryDriver constructed ahead of the Conn itself (the driver must
// exist before NewConn can be called, since NewConn takes it as an
// argument). When auth is a ClientCert (or any provider whose Decoration
// carries a Certificate), GetClientCertificate presents its current
// material at handshake time, so a rotated certificate takes effect on the
// next connection without rebuilding the client.
func NewHTTPClient(caCertPool *x509.CertPool, insecureSkipTLSVerify bool, auth AuthProvider) *http.Client {
	tlsConfig := &tls.Config{
		RootCAs:            caCertPool,
		InsecureSkipVerify: insecureSkipTLSVerify,
	}
	if auth != nil {
		tlsConfig.GetClientCertificate = func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
			dec, err := auth.Decorate(context.Background())
			if err != nil {
				return nil, err
			}
			if dec.Certificate != nil {
				return dec.Certificate, nil
			}
			return &tls.Certificate{}, nil
		}
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}
}

// NewConn assembles a Conn from already-resolved material. Callers normally
// reach this indirectly through the facade's NewConnFromKubeconfig or
// NewInClusterConn; it is exported here so the facade package can call it,
// and internal/core's own tests use it to build a Conn by hand. client should
// be the same *http.Client the caller used to build driver (see
// NewHTTPClient), so discovery calls and ordinary requests share identical
// TLS material.
func NewConn(baseURL string, caCertPool *x509.CertPool, insecureSkipTLSVerify bool, auth AuthProvider, driver DiscoveryDriver, client *http.Client, discoveryTTL, discoveryTimeout time.Duration, fieldManager string, listLimit int) *Conn {
	c := &Conn{
		BaseURL:               baseURL,
		CACertPool:            caCertPool,
		InsecureSkipTLSVerify: insecureSkipTLSVerify,
		Auth:                  auth,
		Driver:                driver,
		DiscoveryTimeout:      discoveryTimeout,
		FieldManager:          fieldManager,
		ListLimit:             listLimit,
	}
	c.Finder = NewResourceFinder(driver, newDiscoveryCache(discoveryTTL))
	c.Transport = NewTransport(client)
	return c
}

// Close stops the auth provider's background refresh goroutine (if any).
// It does not mark the Conn itself as closed: requests issued afterwards
// are still sent, decorated with whatever the provider last cached. Safe
// to call more than once. The AuthProvider owns its own refresh-loop context (see
// internal/auth), so Close delegates supervision to it rather than holding a
// separate CancelFunc here.
func (c *Conn) Close() error {
	if c.Auth != nil {
		c.Auth.Close()
	}
	return nil
}

// RESTConfig renders this Conn as a client-go rest.Config, so a caller that
// already depends on client-go elsewhere can hand this library's Conn to
// kubernetes.NewForConfig without re-deriving TLS/auth material by hand.
// This is a Go-ecosystem interop method with no equivalent in the original
// source material.
func (c *Conn) RESTConfig() *rest.Config {
	cfg := &rest.Config{
		Host: c.BaseURL,
		TLSClientConfig: rest.TLSClientConfig{
			Insecure: c.InsecureSkipTLSVerify,
		},
	}
	if dec, err := c.Auth.Decorate(context.Background()); err == nil {
		if token, ok := dec.Headers["Authorization"]; ok {
			cfg.BearerToken = bearerTokenFromHeader(token)
		}
		if dec.Certificate != nil && len(dec.Certificate.Certificate) > 0 {
			cfg.TLSClientConfig.CertData = dec.Certificate.Certificate[0]
		}
	}
	return cfg
}

func bearerTokenFromHeader(v string) string {
	const prefix = "Bearer "
	if len(v) > len(prefix) && v[:len(prefix)] == prefix {
		return v[len(prefix):]
	}
	return v
}
