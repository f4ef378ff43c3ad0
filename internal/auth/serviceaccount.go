package auth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// serviceAccountRefreshInterval is the default jittered re-read interval,
// per spec §4.1: "re-read tokenPath on a jittered timer (default 60s)".
const serviceAccountRefreshInterval = 60 * time.Second

// ServiceAccount decorates requests with a bearer token periodically
// re-read from a projected service-account token file (the in-pod
// bootstrap path from spec §6). File-not-found is fatal at construction
// but transient at refresh (spec §4.1).
type ServiceAccount struct {
	tokenPath string

	cached atomic.Pointer[string]
	cancel context.CancelFunc
	done   chan struct{}
}

// NewServiceAccount reads tokenPath once synchronously and starts a
// background refresher.
func NewServiceAccount(tokenPath string) (*ServiceAccount, error) {
	token, err := readToken(tokenPath)
	if err != nil {
		return nil, &core.AuthError{Kind: "file-unreadable", Cause: err}
	}
	if token == "" {
		return nil, &core.AuthError{Kind: "malformed", Cause: errEmptyToken}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &ServiceAccount{tokenPath: tokenPath, cancel: cancel, done: make(chan struct{})}
	s.cached.Store(&token)

	go s.refreshLoop(ctx)
	return s, nil
}

func (s *ServiceAccount) refreshLoop(ctx context.Context) {
	defer close(s.done)
	for {
		if err := core.SleepContext(ctx, core.JitteredDelay(serviceAccountRefreshInterval)); err != nil {
			return
		}
		token, err := readToken(s.tokenPath)
		if err != nil || token == "" {
			xlog.Logger().Warn("service account token refresh failed, keeping cached token", "path", s.tokenPath, "error", err)
			continue
		}
		s.cached.Store(&token)
	}
}

func (s *ServiceAccount) Decorate(_ context.Context) (core.Decoration, error) {
	token := s.cached.Load()
	if token == nil || *token == "" {
		return core.Decoration{}, &core.AuthError{Kind: "expired", Cause: errEmptyToken}
	}
	return core.Decoration{Headers: map[string]string{"Authorization": "Bearer " + *token}}, nil
}

func (s *ServiceAccount) Close() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}
