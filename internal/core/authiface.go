package core

import (
	"context"
	"crypto/tls"
)

// Decoration is what an AuthProvider contributes to an outgoing request:
// headers to merge in (typically Authorization) and/or TLS client material
// for mutual-TLS providers. Either half may be empty.
type Decoration struct {
	Headers     map[string]string
	Certificate *tls.Certificate
}

// AuthProvider is the single capability every credential variant exposes,
// per spec §4.1's "tagged variants with a single decorate() capability"
// design note. There are exactly six concrete implementations in
// internal/auth: BasicAuth, BearerToken, ClientCert, Exec, ServiceAccount,
// CloudRefresh.
type AuthProvider interface {
	// Decorate returns the headers/certificate to attach to the next
	// request. It must reflect a non-expired credential or return an
	// error; stateful implementations refresh in the background and
	// Decorate only reads the current cached value.
	Decorate(ctx context.Context) (Decoration, error)

	// Close stops any background refresh goroutine the provider started.
	// Stateless providers (BasicAuth, static BearerToken) no-op.
	Close()
}
