package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// Sentinel errors returned by WaitReady for invalid configuration.
var (
	ErrIntervalNotPositive = errors.New("k8s: poll interval must be positive")
	ErrTimeoutNotPositive  = errors.New("k8s: poll timeout must be positive")
)

// ReadyCheck reports whether conn's cluster is reachable. attempt is
// 1-based (the first call receives attempt=1).
type ReadyCheck func(ctx context.Context, attempt int) (ready bool, err error)

// WaitReadyConfig configures WaitReady.
type WaitReadyConfig struct {
	Interval time.Duration
	Timeout  time.Duration
	Name     string // for logging, e.g. the cluster's BaseURL
}

// WaitReady polls check on Interval until it reports ready, a fatal error,
// or Timeout elapses. It is the generalized form of a process-readiness
// poll: instead of waiting for a locally spawned process to start
// accepting connections, it waits for a remote cluster's discovery
// endpoint to start responding — useful for callers standing up a Conn
// against a cluster that may still be initializing (e.g. one just created
// by a provisioning pipeline).
func WaitReady(ctx context.Context, cfg WaitReadyConfig, check ReadyCheck) error {
	if cfg.Name == "" {
		return errors.New("k8s: wait ready: name must not be empty")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("k8s: wait for %s: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("k8s: wait for %s: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	attempt := 0
	if err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(pollCtx context.Context) (bool, error) {
			attempt++
			ready, err := check(pollCtx, attempt)
			if err != nil {
				return false, err
			}
			if ready {
				xlog.Logger().Debug("cluster ready", "name", cfg.Name, "attempt", attempt)
			}
			return ready, nil
		}); err != nil {
		return fmt.Errorf("k8s: wait for %s readiness: %w", cfg.Name, err)
	}
	return nil
}
