package kubeconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
apiVersion: v1
kind: Config
current-context: default-ctx
clusters:
  - name: prod
    cluster:
      server: https://prod.example.com
      certificate-authority-data: cHJvZC1jYQ==
  - name: staging
    cluster:
      server: https://staging.example.com
      insecure-skip-tls-verify: true
contexts:
  - name: default-ctx
    context:
      cluster: prod
      user: alice
      namespace: default
  - name: staging-ctx
    context:
      cluster: staging
      user: bob
users:
  - name: alice
    user:
      token: alice-token
  - name: bob
    user:
      username: bob
      password: hunter2
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestConfig(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Clusters) != 2 || len(cfg.Users) != 2 || len(cfg.Contexts) != 2 {
		t.Fatalf("unexpected counts: %+v", cfg)
	}
	if cfg.CurrentContext != "default-ctx" {
		t.Fatalf("CurrentContext = %q", cfg.CurrentContext)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolve_CurrentContext(t *testing.T) {
	cfg, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := cfg.Resolve(Selection{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Cluster.Server != "https://prod.example.com" {
		t.Errorf("Cluster.Server = %q", resolved.Cluster.Server)
	}
	if resolved.User.Token != "alice-token" {
		t.Errorf("User.Token = %q", resolved.User.Token)
	}
	if resolved.Namespace != "default" {
		t.Errorf("Namespace = %q", resolved.Namespace)
	}
}

func TestResolve_ExplicitContextOverridesCurrent(t *testing.T) {
	cfg, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := cfg.Resolve(Selection{Context: "staging-ctx"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Cluster.Server != "https://staging.example.com" {
		t.Errorf("Cluster.Server = %q", resolved.Cluster.Server)
	}
	if resolved.User.Username != "bob" {
		t.Errorf("User.Username = %q", resolved.User.Username)
	}
}

func TestResolve_ClusterUserOverridesWinOverContext(t *testing.T) {
	cfg, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := cfg.Resolve(Selection{Context: "default-ctx", User: "bob"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Cluster.Server != "https://prod.example.com" {
		t.Errorf("Cluster.Server = %q, want prod (from context)", resolved.Cluster.Server)
	}
	if resolved.User.Username != "bob" {
		t.Errorf("User.Username = %q, want bob (override)", resolved.User.Username)
	}
}

func TestResolve_UnknownContext(t *testing.T) {
	cfg, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = cfg.Resolve(Selection{Context: "does-not-exist"})
	if err == nil {
		t.Fatal("expected error for unknown context")
	}
}

func TestValidate_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty config")
	}
}
