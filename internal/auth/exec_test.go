package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

func TestNewExec_ValidCredentialWithExpiry(t *testing.T) {
	args := []string{"-c", fmt.Sprintf(`printf '%%s' '{"apiVersion":"client.authentication.k8s.io/v1","kind":"ExecCredential","status":{"token":"tok-1","expirationTimestamp":%q}}'`, time.Now().Add(time.Hour).Format(time.RFC3339))}
	e, err := NewExec("/bin/sh", args, nil)
	if err != nil {
		t.Fatalf("NewExec: %v", err)
	}
	defer e.Close()

	dec, err := e.Decorate(context.Background())
	if err != nil {
		t.Fatalf("Decorate: %v", err)
	}
	if dec.Headers["Authorization"] != "Bearer tok-1" {
		t.Fatalf("got %q", dec.Headers["Authorization"])
	}
}

func TestNewExec_ValidCredentialWithoutExpiry(t *testing.T) {
	args := []string{"-c", `printf '%s' '{"apiVersion":"client.authentication.k8s.io/v1","kind":"ExecCredential","status":{"token":"tok-2"}}'`}
	e, err := NewExec("/bin/sh", args, nil)
	if err != nil {
		t.Fatalf("NewExec: %v", err)
	}
	defer e.Close()

	dec, err := e.Decorate(context.Background())
	if err != nil {
		t.Fatalf("Decorate: %v", err)
	}
	if dec.Headers["Authorization"] != "Bearer tok-2" {
		t.Fatalf("got %q", dec.Headers["Authorization"])
	}
}

func TestNewExec_NonZeroExitIsFatal(t *testing.T) {
	_, err := NewExec("/bin/sh", []string{"-c", "exit 1"}, nil)
	authErr, ok := err.(*core.AuthError)
	if !ok {
		t.Fatalf("expected *core.AuthError, got %v (%T)", err, err)
	}
	if authErr.Kind != "subprocess-failed" {
		t.Fatalf("Kind = %q", authErr.Kind)
	}
}

func TestNewExec_MalformedOutputIsFatal(t *testing.T) {
	_, err := NewExec("/bin/sh", []string{"-c", "printf 'not json'"}, nil)
	authErr, ok := err.(*core.AuthError)
	if !ok {
		t.Fatalf("expected *core.AuthError, got %v (%T)", err, err)
	}
	if authErr.Kind != "malformed" {
		t.Fatalf("Kind = %q", authErr.Kind)
	}
}

func TestNewExec_AlreadyExpiredCredentialIsFatal(t *testing.T) {
	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	args := []string{"-c", fmt.Sprintf(`printf '%%s' '{"apiVersion":"client.authentication.k8s.io/v1","kind":"ExecCredential","status":{"token":"tok","expirationTimestamp":%q}}'`, past)}
	_, err := NewExec("/bin/sh", args, nil)
	authErr, ok := err.(*core.AuthError)
	if !ok {
		t.Fatalf("expected *core.AuthError, got %v (%T)", err, err)
	}
	if authErr.Kind != "expired" {
		t.Fatalf("Kind = %q", authErr.Kind)
	}
}
