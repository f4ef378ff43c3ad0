package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// execTimeout bounds a single invocation of the credential plugin. An
// exec-credential plugin is a short-lived, single-shot command, so this
// provider captures output into memory and relies on CommandContext for
// cancellation rather than a SIGTERM-then-SIGKILL escalation sequence.
const execTimeout = 30 * time.Second

// ExecCredential is the JSON artifact an exec plugin prints to stdout, per
// spec §6.
type ExecCredential struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Status     struct {
		Token               string `json:"token"`
		ExpirationTimestamp string `json:"expirationTimestamp"`
	} `json:"status"`
}

type execCredentialState struct {
	token     string
	expiresAt time.Time
}

// Exec invokes an external binary to produce a bearer token, per the
// ExecCredential contract in spec §4.1. The cached token is reused until a
// jittered point between 95% and 100% of the way to its expiry, then
// refreshed.
type Exec struct {
	command string
	args    []string
	env     []string

	cached atomic.Pointer[execCredentialState]
	cancel context.CancelFunc
	done   chan struct{}
}

// NewExec spawns command once synchronously to obtain the first token
// (fatal on failure, per spec §4.1), then starts a background refresher
// timed off the token's expirationTimestamp.
func NewExec(command string, args, env []string) (*Exec, error) {
	e := &Exec{command: command, args: args, env: env}

	state, err := e.invoke(context.Background())
	if err != nil {
		return nil, err
	}
	e.cached.Store(state)

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.refreshLoop(ctx, state)

	return e, nil
}

// invoke runs the configured command and parses its ExecCredential output.
func (e *Exec) invoke(ctx context.Context) (*execCredentialState, error) {
	runCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.command, e.args...)
	cmd.Env = append(os.Environ(), e.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &core.AuthError{Kind: "subprocess-failed", Cause: fmt.Errorf("%s: %w: stderr: %s stdout: %s", e.command, err, stderr.String(), stdout.String())}
	}

	var cred ExecCredential
	if err := json.Unmarshal(stdout.Bytes(), &cred); err != nil || cred.Kind != "ExecCredential" {
		return nil, &core.AuthError{Kind: "malformed", Cause: fmt.Errorf("%s: not a valid ExecCredential: %s", e.command, stdout.String())}
	}

	state := &execCredentialState{token: cred.Status.Token}
	if ts := cred.Status.ExpirationTimestamp; ts != "" {
		expiry, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, &core.AuthError{Kind: "malformed", Cause: fmt.Errorf("%s: invalid expirationTimestamp: %w", e.command, err)}
		}
		if expiry.Before(time.Now()) {
			return nil, &core.AuthError{Kind: "expired", Cause: fmt.Errorf("%s: credential expired before processing", e.command)}
		}
		state.expiresAt = expiry
	}

	return state, nil
}

func (e *Exec) refreshLoop(ctx context.Context, last *execCredentialState) {
	defer close(e.done)
	for {
		interval := refreshIntervalFor(last)
		if err := core.SleepContext(ctx, core.JitteredDelay(interval)); err != nil {
			return
		}

		state, err := e.invoke(ctx)
		if err != nil {
			xlog.Logger().Warn("exec credential refresh failed, keeping cached token", "command", e.command, "error", err)
			continue
		}
		e.cached.Store(state)
		last = state
	}
}

// refreshIntervalFor returns the base interval for the next refresh attempt:
// the time remaining until expiry, or a conservative fallback when the
// plugin reported no expiration. refreshLoop passes it through
// JitteredDelay, so the refresh lands between 95% and 100% of the way to
// expiry.
func refreshIntervalFor(state *execCredentialState) time.Duration {
	if state == nil || state.expiresAt.IsZero() {
		return execTimeout
	}
	return time.Until(state.expiresAt)
}

func (e *Exec) Decorate(_ context.Context) (core.Decoration, error) {
	state := e.cached.Load()
	if state == nil || state.token == "" {
		return core.Decoration{}, &core.AuthError{Kind: "expired", Cause: errEmptyToken}
	}
	if !state.expiresAt.IsZero() && time.Now().After(state.expiresAt) {
		return core.Decoration{}, &core.AuthError{Kind: "expired", Cause: fmt.Errorf("%s: cached token expired at %s", e.command, state.expiresAt)}
	}
	return core.Decoration{Headers: map[string]string{"Authorization": "Bearer " + state.token}}, nil
}

func (e *Exec) Close() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}
