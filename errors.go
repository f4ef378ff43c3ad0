package k8s

import "github.com/coryodaniel/k8s-sub001/internal/core"

// Error types and sentinels are thin aliases over internal/core's
// taxonomy (spec §7), so callers can use errors.As/errors.Is against this
// package without reaching into internal/.
type (
	ConfigError              = core.ConfigError
	AuthError                = core.AuthError
	DiscoveryError           = core.DiscoveryError
	UnsupportedResourceError = core.UnsupportedResourceError
	UnsupportedVerbError     = core.UnsupportedVerbError
	MissingPathParamError    = core.MissingPathParamError
	MiddlewareError          = core.MiddlewareError
	APIError                 = core.APIError
	HTTPError                = core.HTTPError
	StreamInterruptedError   = core.StreamInterruptedError
)

const (
	ErrNoApplicableAuthProvider = core.ErrNoApplicableAuthProvider
	ErrConnClosed               = core.ErrConnClosed
	ErrWatchAborted             = core.ErrWatchAborted
)
