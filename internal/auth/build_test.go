package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/kubeconfig"
)

func TestBuild_BasicAuthTakesPrecedenceOverToken(t *testing.T) {
	rec := kubeconfig.UserRecord{Username: "alice", Password: "p", Token: "should-be-ignored"}
	provider, err := Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := provider.(*BasicAuth); !ok {
		t.Fatalf("expected *BasicAuth, got %T", provider)
	}
}

func TestBuild_TokenFileTakesPrecedenceOverStaticToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok"), 0o600); err != nil {
		t.Fatal(err)
	}
	rec := kubeconfig.UserRecord{TokenFile: path, Token: "should-be-ignored"}
	provider, err := Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := provider.(*BearerToken); !ok {
		t.Fatalf("expected *BearerToken, got %T", provider)
	}
	provider.Close()
}

func TestBuild_StaticToken(t *testing.T) {
	rec := kubeconfig.UserRecord{Token: "tok"}
	provider, err := Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := provider.(*BearerToken); !ok {
		t.Fatalf("expected *BearerToken, got %T", provider)
	}
}

func TestBuild_ClientCertRequiresBothCertAndKey(t *testing.T) {
	rec := kubeconfig.UserRecord{ClientCertificate: "/some/cert"}
	_, err := Build(rec)
	if err != core.ErrNoApplicableAuthProvider {
		t.Fatalf("expected ErrNoApplicableAuthProvider when key is missing, got %v", err)
	}
}

func TestBuild_ExecConfig(t *testing.T) {
	rec := kubeconfig.UserRecord{Exec: &kubeconfig.ExecConfig{
		Command: "/bin/sh",
		Args:    []string{"-c", `printf '%s' '{"apiVersion":"client.authentication.k8s.io/v1","kind":"ExecCredential","status":{"token":"exec-tok"}}'`},
	}}
	provider, err := Build(rec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := provider.(*Exec); !ok {
		t.Fatalf("expected *Exec, got %T", provider)
	}
	provider.Close()
}

func TestBuild_UnsupportedCloudProviderReturnsDescriptiveError(t *testing.T) {
	rec := kubeconfig.UserRecord{AuthProvider: &kubeconfig.AuthProviderConfig{Name: "gcp"}}
	_, err := Build(rec)
	authErr, ok := err.(*core.AuthError)
	if !ok {
		t.Fatalf("expected *core.AuthError, got %v (%T)", err, err)
	}
	if authErr.Kind != "unsupported-cloud-provider" {
		t.Fatalf("Kind = %q", authErr.Kind)
	}
}

func TestBuild_NoMatchingShapeReturnsSentinel(t *testing.T) {
	_, err := Build(kubeconfig.UserRecord{})
	if err != core.ErrNoApplicableAuthProvider {
		t.Fatalf("got %v", err)
	}
}
