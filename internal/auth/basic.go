// Package auth implements the six AuthProvider variants named in spec
// §4.1, each a concrete type satisfying internal/core.AuthProvider's single
// Decorate capability.
package auth

import (
	"context"
	"encoding/base64"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

// BasicAuth decorates requests with a static "Authorization: Basic ..."
// header. Stateless: no background refresh, matches spec §4.1's BasicAuth
// variant.
type BasicAuth struct {
	token string // base64(user:pass)
}

// NewBasicAuth returns a BasicAuth provider for the given username/password.
func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{token: base64.StdEncoding.EncodeToString([]byte(username + ":" + password))}
}

func (b *BasicAuth) Decorate(_ context.Context) (core.Decoration, error) {
	return core.Decoration{Headers: map[string]string{"Authorization": "Basic " + b.token}}, nil
}

func (b *BasicAuth) Close() {}
