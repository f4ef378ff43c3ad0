package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticDriver struct {
	resources []ResourceDefinition
}

func (d *staticDriver) Versions(_ context.Context) ([]string, error) { return []string{"v1"}, nil }

func (d *staticDriver) Resources(_ context.Context, _ string) ([]ResourceDefinition, error) {
	return d.resources, nil
}

func podResource() ResourceDefinition {
	return ResourceDefinition{
		GroupVersion: "v1",
		Kind:         "Pod",
		Name:         "pods",
		Namespaced:   true,
		Verbs: map[Verb]bool{
			VerbGet: true, VerbList: true, VerbListAllNamespaces: true,
			VerbWatch: true, VerbWatchAllNamespaces: true,
			VerbCreate: true, VerbUpdate: true, VerbPatch: true,
			VerbDelete: true, VerbDeleteCollection: true, VerbConnect: true,
		},
	}
}

func newTestConn(t *testing.T, server *httptest.Server) *Conn {
	t.Helper()
	driver := &staticDriver{resources: []ResourceDefinition{podResource()}}
	client := server.Client()
	return NewConn(server.URL, nil, false, fakeAuthProvider{}, driver, client, 0, 0, "tester", 10)
}

func TestListStream_PaginatesUntilContinueEmpty(t *testing.T) {
	pages := [][]byte{
		[]byte(`{"metadata":{"continue":"page2"},"items":[{"name":"a"}]}`),
		[]byte(`{"metadata":{"continue":""},"items":[{"name":"b"}]}`),
	}
	var served int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		idx := served
		if idx >= len(pages) {
			idx = len(pages) - 1
		}
		served++
		w.Write(pages[idx])
	}))
	defer server.Close()

	conn := newTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbList, "v1", "pods").WithNamespace("default")

	stream := NewListStream(base, conn, op, 1)
	ctx := context.Background()

	page1, ok := stream.Next(ctx)
	if !ok || page1.Err != nil {
		t.Fatalf("page1: ok=%v err=%v", ok, page1.Err)
	}
	page2, ok := stream.Next(ctx)
	if !ok || page2.Err != nil {
		t.Fatalf("page2: ok=%v err=%v", ok, page2.Err)
	}
	_, ok = stream.Next(ctx)
	if ok {
		t.Fatal("expected stream to halt after empty continue token")
	}
	if served != 2 {
		t.Fatalf("expected 2 requests, got %d", served)
	}
}

func TestRunnerBase_Do_DecodesJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"kind": "Pod", "metadata": map[string]any{"name": "nginx"}})
	}))
	defer server.Close()

	conn := newTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbGet, "v1", "pods").WithNamespace("default").WithResourceName("nginx")

	result, err := base.Do(context.Background(), conn, op)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	obj, ok := result.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded map, got %T", result.Value)
	}
	if obj["kind"] != "Pod" {
		t.Fatalf("got %+v", obj)
	}
}

func TestRunnerBase_Do_APIErrorOnFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"status": "Failure", "reason": "NotFound", "code": 404, "message": "pods \"nginx\" not found"})
	}))
	defer server.Close()

	conn := newTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbGet, "v1", "pods").WithNamespace("default").WithResourceName("nginx")

	_, err := base.Do(context.Background(), conn, op)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %v (%T)", err, err)
	}
	if apiErr.Code != 404 || apiErr.Reason != "NotFound" {
		t.Fatalf("got %+v", apiErr)
	}
}

func TestRunnerBase_Do_PatchApplySetsContentTypeAndQueryParams(t *testing.T) {
	var gotContentType, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	conn := newTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbPatch, "v1", "pods").WithNamespace("default").WithResourceName("nginx").
		WithPatchType(PatchApply).WithData(map[string]any{"metadata": map[string]any{"name": "nginx"}})

	if _, err := base.Do(context.Background(), conn, op); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotContentType != "application/apply-patch+yaml" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if !contains(gotQuery, "fieldManager=tester") || !contains(gotQuery, "force=true") {
		t.Fatalf("query = %q", gotQuery)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
