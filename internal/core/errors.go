package core

import (
	"fmt"

	"github.com/coryodaniel/k8s-sub001/internal/sentinel"
)

// Sentinel errors for error inspection with errors.Is. These use the
// sentinel.Error const pattern instead of errors.New vars so they can be
// declared as const and compared with == through wrapped error chains.
const (
	// ErrNoApplicableAuthProvider is returned by auth.Build when a
	// kubeconfig user record matches none of the known provider shapes.
	ErrNoApplicableAuthProvider = sentinel.Error("k8s: no applicable auth provider for user record")

	// ErrHalted names the exhausted state of a list/watch cursor. The
	// cursors themselves report exhaustion through Next's ok result and
	// never return ErrHalted.
	ErrHalted = sentinel.Error("k8s: stream halted")

	// ErrConnClosed names the closed state of a Conn. No operation in this
	// module returns it: Conn.Close does not block later requests.
	ErrConnClosed = sentinel.Error("k8s: connection closed")

	// ErrWatchAborted is returned by WatchStream.Next, wrapped in a
	// StreamInterruptedError, after the reconnect budget is exhausted.
	ErrWatchAborted = sentinel.Error("k8s: watch aborted after exhausting reconnect budget")
)

// ConfigError reports a failure parsing or selecting from a kubeconfig.
// Fatal at Conn construction.
type ConfigError struct {
	Op     string // "unknown-context", "unknown-cluster", "unknown-user", "file-unreadable", ...
	Detail string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("k8s: config error (%s): %s: %v", e.Op, e.Detail, e.Cause)
	}
	return fmt.Sprintf("k8s: config error (%s): %s", e.Op, e.Detail)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// AuthError reports a failure producing request decoration from an
// AuthProvider. Fatal per-request; the provider's background refresher (if
// any) keeps running.
type AuthError struct {
	Kind  string // "expired", "subprocess-failed", "file-unreadable", "malformed", "unsupported-cloud-provider"
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("k8s: auth error (%s): %v", e.Kind, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// DiscoveryError reports a failure fetching /api or /apis. Fatal per-call.
type DiscoveryError struct {
	Path  string
	Cause error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("k8s: discovery error fetching %s: %v", e.Path, e.Cause)
}

func (e *DiscoveryError) Unwrap() error { return e.Cause }

// UnsupportedResourceError reports that ResourceFinder could not match any
// resource for the given input.
type UnsupportedResourceError struct {
	APIVersion string
	Input      string
}

func (e *UnsupportedResourceError) Error() string {
	return fmt.Sprintf("k8s: unsupported resource %q in apiVersion %q", e.Input, e.APIVersion)
}

// UnsupportedVerbError reports that a verb is not in the resource's verb set.
type UnsupportedVerbError struct {
	Verb     Verb
	Resource string
}

func (e *UnsupportedVerbError) Error() string {
	return fmt.Sprintf("k8s: verb %q unsupported for resource %q", e.Verb, e.Resource)
}

// MissingPathParamError reports that PathBuilder needed a path parameter the
// Operation did not supply.
type MissingPathParamError struct {
	Names []string
}

func (e *MissingPathParamError) Error() string {
	return fmt.Sprintf("k8s: missing path parameters: %v", e.Names)
}

// MiddlewareError reports a failure inside a MiddlewareChain link.
type MiddlewareError struct {
	Which string
	Cause error
}

func (e *MiddlewareError) Error() string {
	return fmt.Sprintf("k8s: middleware %q failed: %v", e.Which, e.Cause)
}

func (e *MiddlewareError) Unwrap() error { return e.Cause }

// APIError mirrors a Kubernetes Status{reason, message, code} failure body.
// Preserved verbatim for the caller.
type APIError struct {
	Reason  string
	Message string
	Code    int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("k8s: api error: %s (code %d): %s", e.Reason, e.Code, e.Message)
}

// HTTPError reports a transport-level or non-Kubernetes-shaped HTTP failure.
type HTTPError struct {
	Code  int
	Body  []byte
	Cause error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("k8s: http error: %v", e.Cause)
	}
	return fmt.Sprintf("k8s: http error: code %d: %s", e.Code, string(e.Body))
}

func (e *HTTPError) Unwrap() error { return e.Cause }

// StreamInterruptedError reports that a watch stream aborted after
// exhausting its local reconnect budget.
type StreamInterruptedError struct {
	Reconnects int
	Cause      error
}

func (e *StreamInterruptedError) Error() string {
	return fmt.Sprintf("k8s: stream interrupted after %d reconnect attempts: %v", e.Reconnects, e.Cause)
}

func (e *StreamInterruptedError) Unwrap() error { return e.Cause }
