package core

import (
	"context"
	"testing"
	"time"
)

type fakeDriver struct {
	resources map[string][]ResourceDefinition
	calls     int
}

func (f *fakeDriver) Versions(_ context.Context) ([]string, error) { return nil, nil }

func (f *fakeDriver) Resources(_ context.Context, apiVersion string) ([]ResourceDefinition, error) {
	f.calls++
	return f.resources[apiVersion], nil
}

func newTestFinder(driver *fakeDriver) *ResourceFinder {
	return NewResourceFinder(driver, newDiscoveryCache(time.Minute))
}

func TestResourceFinder_Precedence_ExactNameWinsOverKind(t *testing.T) {
	driver := &fakeDriver{resources: map[string][]ResourceDefinition{
		"apps/v1": {
			{Kind: "Deployment", Name: "deployments"},
			{Kind: "deployments", Name: "somethingelse"},
		},
	}}
	finder := newTestFinder(driver)

	r, err := finder.Find(context.Background(), "apps/v1", "deployments")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if r.Kind != "Deployment" {
		t.Fatalf("expected exact Name match to win, got %+v", r)
	}
}

func TestResourceFinder_Precedence_KindMatchSkipsSubresources(t *testing.T) {
	driver := &fakeDriver{resources: map[string][]ResourceDefinition{
		"apps/v1": {
			{Kind: "Deployment", Name: "deployments/status"},
			{Kind: "Deployment", Name: "deployments"},
		},
	}}
	finder := newTestFinder(driver)

	r, err := finder.Find(context.Background(), "apps/v1", "Deployment")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if r.Name != "deployments" {
		t.Fatalf("expected non-subresource match, got %+v", r)
	}
}

func TestResourceFinder_LowercaseKindFallback(t *testing.T) {
	driver := &fakeDriver{resources: map[string][]ResourceDefinition{
		"v1": {{Kind: "Pod", Name: "pods"}},
	}}
	finder := newTestFinder(driver)

	r, err := finder.Find(context.Background(), "v1", "pod")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if r.Name != "pods" {
		t.Fatalf("got %+v", r)
	}
}

func TestResourceFinder_NotFound(t *testing.T) {
	driver := &fakeDriver{resources: map[string][]ResourceDefinition{"v1": {{Kind: "Pod", Name: "pods"}}}}
	finder := newTestFinder(driver)

	_, err := finder.Find(context.Background(), "v1", "widgets")
	if _, ok := err.(*UnsupportedResourceError); !ok {
		t.Fatalf("expected UnsupportedResourceError, got %v (%T)", err, err)
	}
}

func TestResourceFinder_FindSubresource(t *testing.T) {
	driver := &fakeDriver{resources: map[string][]ResourceDefinition{
		"apps/v1": {
			{Kind: "Deployment", Name: "deployments"},
			{Kind: "Status", Name: "deployments/status"},
		},
	}}
	finder := newTestFinder(driver)

	r, err := finder.FindSubresource(context.Background(), "apps/v1", "Deployment", "Status")
	if err != nil {
		t.Fatalf("FindSubresource: %v", err)
	}
	if r.Name != "deployments/status" {
		t.Fatalf("got %+v", r)
	}
}

func TestResourceFinder_CachesPerGroupVersion(t *testing.T) {
	driver := &fakeDriver{resources: map[string][]ResourceDefinition{"v1": {{Kind: "Pod", Name: "pods"}}}}
	finder := newTestFinder(driver)

	if _, err := finder.Find(context.Background(), "v1", "pods"); err != nil {
		t.Fatal(err)
	}
	if _, err := finder.Find(context.Background(), "v1", "pods"); err != nil {
		t.Fatal(err)
	}
	if driver.calls != 1 {
		t.Fatalf("expected driver.Resources to be called once due to caching, got %d", driver.calls)
	}
}
