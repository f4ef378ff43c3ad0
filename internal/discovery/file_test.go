package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

const fixtureJSON = `{
  "versions": ["v1", "apps/v1"],
  "resources": {
    "v1": [
      {"kind": "Pod", "name": "pods", "namespaced": true, "verbs": ["get", "list", "watch"]}
    ],
    "apps/v1": [
      {"kind": "Deployment", "name": "deployments", "namespaced": true, "verbs": ["get", "list", "create", "update", "patch", "delete"]}
    ]
  }
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixtureJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileDriver_Versions(t *testing.T) {
	d, err := NewFileDriver(writeFixture(t))
	if err != nil {
		t.Fatalf("NewFileDriver: %v", err)
	}
	versions, err := d.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	if len(versions) != 2 || versions[0] != "v1" || versions[1] != "apps/v1" {
		t.Fatalf("got %v", versions)
	}
}

func TestFileDriver_Resources(t *testing.T) {
	d, err := NewFileDriver(writeFixture(t))
	if err != nil {
		t.Fatalf("NewFileDriver: %v", err)
	}
	resources, err := d.Resources(context.Background(), "apps/v1")
	if err != nil {
		t.Fatalf("Resources: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("got %d resources", len(resources))
	}
	r := resources[0]
	if r.Kind != "Deployment" || r.Name != "deployments" || !r.Namespaced {
		t.Fatalf("unexpected resource: %+v", r)
	}
	if !r.SupportsVerb(core.VerbPatch) {
		t.Fatalf("expected patch verb support")
	}
	if r.SupportsVerb(core.VerbWatch) {
		t.Fatalf("did not expect watch verb support")
	}
}

func TestFileDriver_UnknownAPIVersion(t *testing.T) {
	d, err := NewFileDriver(writeFixture(t))
	if err != nil {
		t.Fatalf("NewFileDriver: %v", err)
	}
	if _, err := d.Resources(context.Background(), "batch/v1"); err == nil {
		t.Fatal("expected error for unknown apiVersion")
	}
}

func TestNewFileDriver_MissingFile(t *testing.T) {
	if _, err := NewFileDriver(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}
