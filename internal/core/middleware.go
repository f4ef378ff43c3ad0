package core

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RequestBuilder is the mutable carrier a MiddlewareChain decorates, per
// spec §4.6. It starts from a rendered path/query/headers and accumulates
// auth headers, TLS material, and an encoded body before Transport.Do sees
// it.
type RequestBuilder struct {
	Conn      *Conn
	Method    string
	Path      string
	Query     []KV
	Headers   map[string]string
	Body      any
	PatchType PatchType

	EncodedBody []byte
}

// Middleware mutates a RequestBuilder in place, returning an error that
// aborts the chain (wrapped as MiddlewareError by the chain runner).
type Middleware func(ctx context.Context, rb *RequestBuilder) error

// MiddlewareChain applies an ordered list of Middlewares left to right.
type MiddlewareChain struct {
	links []namedMiddleware
}

type namedMiddleware struct {
	name string
	fn   Middleware
}

// NewMiddlewareChain returns the chain required by every request:
// Initialize (auth decoration) followed by EncodeBody (JSON body
// encoding, or YAML for apply patches). Callers may append further links
// with Append.
func NewMiddlewareChain() *MiddlewareChain {
	c := &MiddlewareChain{}
	c.links = append(c.links,
		namedMiddleware{name: "initialize", fn: initializeMiddleware},
		namedMiddleware{name: "encode-body", fn: encodeBodyMiddleware},
	)
	return c
}

// Append adds a named middleware to the end of the chain.
func (c *MiddlewareChain) Append(name string, fn Middleware) {
	c.links = append(c.links, namedMiddleware{name: name, fn: fn})
}

// Run executes every link in order, stopping at the first error.
func (c *MiddlewareChain) Run(ctx context.Context, rb *RequestBuilder) error {
	for _, link := range c.links {
		if err := link.fn(ctx, rb); err != nil {
			return &MiddlewareError{Which: link.name, Cause: err}
		}
	}
	return nil
}

// initializeMiddleware pulls request decoration from the Conn's
// AuthProvider and merges its headers into the builder. A Decoration's
// Certificate (ClientCert) is never handled here: it is presented at the
// TLS handshake by the Conn's http.Client (see NewHTTPClient's
// GetClientCertificate), not as a per-request header.
func initializeMiddleware(ctx context.Context, rb *RequestBuilder) error {
	if rb.Conn == nil || rb.Conn.Auth == nil {
		return nil
	}
	dec, err := rb.Conn.Auth.Decorate(ctx)
	if err != nil {
		return err
	}
	if rb.Headers == nil {
		rb.Headers = make(map[string]string)
	}
	for k, v := range dec.Headers {
		rb.Headers[k] = v
	}
	return nil
}

// encodeBodyMiddleware encodes rb.Body for POST/PUT/PATCH requests unless it
// is already a byte sequence, per spec §4.6. A PatchApply body is encoded as
// YAML to match the application/apply-patch+yaml Content-Type server-side
// apply requires (spec §4.5); every other body is JSON.
func encodeBodyMiddleware(_ context.Context, rb *RequestBuilder) error {
	switch rb.Method {
	case "POST", "PUT", "PATCH":
	default:
		return nil
	}
	if rb.Body == nil {
		return nil
	}
	if raw, ok := rb.Body.([]byte); ok {
		rb.EncodedBody = raw
		return nil
	}

	if rb.PatchType == PatchApply {
		encoded, err := yaml.Marshal(rb.Body)
		if err != nil {
			return fmt.Errorf("k8s: encoding apply-patch body as YAML: %w", err)
		}
		rb.EncodedBody = encoded
		return nil
	}

	encoded, err := json.Marshal(rb.Body)
	if err != nil {
		return fmt.Errorf("k8s: encoding request body: %w", err)
	}
	rb.EncodedBody = encoded
	return nil
}
