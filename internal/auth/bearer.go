package auth

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// bearerTokenRefreshInterval is the jittered re-read interval for the
// tokenFile variant, grounded in rophy-multi-k8s-auth's renewer.go jittered
// credential-refresh idiom.
const bearerTokenRefreshInterval = 60 * time.Second

// BearerToken decorates requests with a static "Authorization: Bearer ..."
// header, or — when constructed from a tokenFile — periodically re-reads
// the file on a jittered timer (spec §4.1: "(file variant refreshes)").
type BearerToken struct {
	static string

	cached atomic.Pointer[string]
	path   string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBearerToken returns a stateless BearerToken provider for a fixed
// token value.
func NewBearerToken(token string) *BearerToken {
	return &BearerToken{static: token}
}

// NewBearerTokenFile returns a BearerToken provider that re-reads path on
// a jittered timer. The initial read is synchronous and fatal on error
// (spec §4.1 ServiceAccount/ClientCert file-contract pattern, reused here
// for tokenFile since the spec groups it under BearerToken's "file
// variant").
func NewBearerTokenFile(path string) (*BearerToken, error) {
	token, err := readToken(path)
	if err != nil {
		return nil, &core.AuthError{Kind: "file-unreadable", Cause: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &BearerToken{path: path, cancel: cancel, done: make(chan struct{})}
	b.cached.Store(&token)

	go b.refreshLoop(ctx)
	return b, nil
}

func (b *BearerToken) refreshLoop(ctx context.Context) {
	defer close(b.done)
	for {
		if err := core.SleepContext(ctx, core.JitteredDelay(bearerTokenRefreshInterval)); err != nil {
			return
		}
		token, err := readToken(b.path)
		if err != nil {
			xlog.Logger().Warn("bearer token file refresh failed, keeping cached token", "path", b.path, "error", err)
			continue
		}
		b.cached.Store(&token)
	}
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (b *BearerToken) Decorate(_ context.Context) (core.Decoration, error) {
	token := b.static
	if b.path != "" {
		if p := b.cached.Load(); p != nil {
			token = *p
		}
	}
	if token == "" {
		return core.Decoration{}, &core.AuthError{Kind: "expired", Cause: errEmptyToken}
	}
	return core.Decoration{Headers: map[string]string{"Authorization": "Bearer " + token}}, nil
}

func (b *BearerToken) Close() {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
}
