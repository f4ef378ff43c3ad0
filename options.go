package k8s

import (
	"fmt"
	"time"
)

// connConfig accumulates ConnOption settings before a Conn is built.
type connConfig struct {
	discoveryTTL     time.Duration
	discoveryTimeout time.Duration
	fieldManager     string
	listLimit        int
	insecureSkipTLS  bool
}

func newConnConfig() connConfig {
	return connConfig{
		discoveryTTL:     defaultDiscoveryTTL,
		discoveryTimeout: defaultDiscoveryTimeout,
		fieldManager:     defaultFieldManager,
		listLimit:        defaultListLimit,
	}
}

// ConnOption configures a Conn at construction, following the teacher's
// functional-options idiom: each option mutates a private connConfig, and
// invalid literal arguments panic at construction time rather than
// surfacing as a runtime error deep in a request path.
type ConnOption func(*connConfig)

// WithDiscoveryTTL overrides how long a groupVersion's discovered
// resources are cached before being re-fetched.
func WithDiscoveryTTL(d time.Duration) ConnOption {
	requirePositive("WithDiscoveryTTL", d)
	return func(c *connConfig) { c.discoveryTTL = d }
}

// WithDiscoveryTimeout overrides the per-call (and bulk fan-out total)
// discovery deadline.
func WithDiscoveryTimeout(d time.Duration) ConnOption {
	requirePositive("WithDiscoveryTimeout", d)
	return func(c *connConfig) { c.discoveryTimeout = d }
}

// WithFieldManager overrides the default fieldManager query parameter
// injected for server-side apply patches (spec §4.5).
func WithFieldManager(name string) ConnOption {
	requireNonEmpty("WithFieldManager", name)
	return func(c *connConfig) { c.fieldManager = name }
}

// WithListLimit overrides the default page size Runner.ListStream uses
// when the caller doesn't specify one.
func WithListLimit(n int) ConnOption {
	requirePositive("WithListLimit", n)
	return func(c *connConfig) { c.listLimit = n }
}

// WithInsecureSkipTLSVerify disables peer certificate verification,
// overriding whatever the kubeconfig's insecure-skip-tls-verify says.
func WithInsecureSkipTLSVerify() ConnOption {
	return func(c *connConfig) { c.insecureSkipTLS = true }
}

func (c connConfig) apply(opts []ConnOption) connConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// requirePositive panics if v is not strictly greater than zero. Reserved
// for functional-option constructors receiving what is effectively a
// compile-time constant; it never runs against caller-supplied runtime
// data deep in a request path.
func requirePositive[T int | time.Duration](fn string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("k8s: %s: value must be positive, got %v", fn, v))
	}
}

// requireNonEmpty panics if s is the empty string.
func requireNonEmpty(fn, s string) {
	if s == "" {
		panic(fmt.Sprintf("k8s: %s: value must not be empty", fn))
	}
}
