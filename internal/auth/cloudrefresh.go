package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// cloudRefreshMinInterval bounds how often a fetcher is re-invoked when it
// reports no expiry, avoiding a tight retry loop against a misbehaving
// vendor endpoint.
const cloudRefreshMinInterval = 60 * time.Second

// CloudToken is what a vendor-specific fetch function returns: the token
// and its expiry (zero if unknown).
type CloudToken struct {
	Token     string
	ExpiresAt time.Time
}

// CloudTokenFetcher retrieves a fresh token from a cloud provider's OAuth
// endpoint (gcp, azure, ...). Spec §4.1 describes this as
// "provider-specific config"; this library does not bundle a vendor SDK
// (see DESIGN.md), so callers supply the fetch function themselves.
type CloudTokenFetcher func(ctx context.Context) (CloudToken, error)

// CloudRefresh decorates requests with a bearer token obtained from a
// vendor OAuth endpoint, cached and refreshed via double-checked locking —
// grounded in rophy-multi-k8s-auth's OIDC verifier cache (discover once,
// serve from cache, refresh on a background timer guarded by a
// sync.RWMutex).
type CloudRefresh struct {
	provider string
	fetch    CloudTokenFetcher

	mu     sync.RWMutex
	cached CloudToken

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCloudRefresh fetches an initial token synchronously (fatal on
// failure) and starts a background refresher keyed off the token's expiry.
func NewCloudRefresh(provider string, fetch CloudTokenFetcher) (*CloudRefresh, error) {
	c := &CloudRefresh{provider: provider, fetch: fetch}

	token, err := fetch(context.Background())
	if err != nil {
		return nil, &core.AuthError{Kind: "subprocess-failed", Cause: fmt.Errorf("%s: initial fetch: %w", provider, err)}
	}
	c.cached = token

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.refreshLoop(ctx)

	return c, nil
}

func (c *CloudRefresh) refreshLoop(ctx context.Context) {
	defer close(c.done)
	for {
		interval := c.nextInterval()
		if err := core.SleepContext(ctx, core.JitteredDelay(interval)); err != nil {
			return
		}
		token, err := c.fetch(ctx)
		if err != nil {
			xlog.Logger().Warn("cloud token refresh failed, keeping cached token", "provider", c.provider, "error", err)
			continue
		}
		c.mu.Lock()
		c.cached = token
		c.mu.Unlock()
	}
}

func (c *CloudRefresh) nextInterval() time.Duration {
	c.mu.RLock()
	expiresAt := c.cached.ExpiresAt
	c.mu.RUnlock()
	if expiresAt.IsZero() {
		return cloudRefreshMinInterval
	}
	if until := time.Until(expiresAt); until > 0 {
		return time.Duration(float64(until) * 0.95)
	}
	return cloudRefreshMinInterval
}

func (c *CloudRefresh) Decorate(_ context.Context) (core.Decoration, error) {
	c.mu.RLock()
	token := c.cached
	c.mu.RUnlock()

	if token.Token == "" {
		return core.Decoration{}, &core.AuthError{Kind: "expired", Cause: errEmptyToken}
	}
	if !token.ExpiresAt.IsZero() && time.Now().After(token.ExpiresAt) {
		return core.Decoration{}, &core.AuthError{Kind: "expired", Cause: fmt.Errorf("%s: cached token expired at %s", c.provider, token.ExpiresAt)}
	}
	return core.Decoration{Headers: map[string]string{"Authorization": "Bearer " + token.Token}}, nil
}

func (c *CloudRefresh) Close() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
}
