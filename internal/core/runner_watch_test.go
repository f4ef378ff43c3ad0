package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newWatchTestConn(t *testing.T, server *httptest.Server) *Conn {
	t.Helper()
	driver := &staticDriver{resources: []ResourceDefinition{podResource()}}
	return NewConn(server.URL, nil, false, fakeAuthProvider{}, driver, server.Client(), 0, 0, "tester", 10)
}

func TestWatchStream_DeliversAddedEventAfterBootstrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("watch") != "1" {
			w.Write([]byte(`{"metadata":{"resourceVersion":"100"},"items":[]}`))
			return
		}
		w.Write([]byte("{\"type\":\"ADDED\",\"object\":{\"kind\":\"Pod\",\"metadata\":{\"name\":\"nginx\",\"resourceVersion\":\"101\"}}}\n"))
	}))
	defer server.Close()

	conn := newWatchTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbWatch, "v1", "pods").WithNamespace("default")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream := NewWatchStream(ctx, base, conn, op)
	defer stream.Close()

	evt, err, ok := stream.Next(ctx)
	if !ok || err != nil {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if evt.Type != "ADDED" {
		t.Fatalf("got event type %q", evt.Type)
	}
	obj, ok := evt.Object.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", evt.Object)
	}
	if obj["kind"] != "Pod" {
		t.Fatalf("got %+v", obj)
	}
}

func TestWatchStream_BookmarkNotDeliveredAndDuplicateRVSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("watch") != "1" {
			w.Write([]byte(`{"metadata":{"resourceVersion":"50"},"items":[]}`))
			return
		}
		lines := []string{
			`{"type":"BOOKMARK","object":{"kind":"Pod","metadata":{"resourceVersion":"55"}}}`,
			`{"type":"ADDED","object":{"kind":"Pod","metadata":{"name":"dup","resourceVersion":"55"}}}`,
			`{"type":"MODIFIED","object":{"kind":"Pod","metadata":{"name":"nginx","resourceVersion":"56"}}}`,
		}
		for _, line := range lines {
			w.Write([]byte(line + "\n"))
		}
	}))
	defer server.Close()

	conn := newWatchTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbWatch, "v1", "pods").WithNamespace("default")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream := NewWatchStream(ctx, base, conn, op)
	defer stream.Close()

	evt, err, ok := stream.Next(ctx)
	if !ok || err != nil {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if evt.Type != "MODIFIED" {
		t.Fatalf("expected BOOKMARK skipped and duplicate-RV ADDED skipped, first delivered event was %q", evt.Type)
	}
}

func TestWatchStream_410ResetsResourceVersionAndReconnects(t *testing.T) {
	var bootstraps int
	var watchAttempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("watch") != "1" {
			bootstraps++
			w.Write([]byte(`{"metadata":{"resourceVersion":"100"},"items":[]}`))
			return
		}
		watchAttempts++
		if watchAttempts == 1 {
			w.WriteHeader(http.StatusGone)
			w.Write([]byte(`{"status":"Failure","reason":"Expired","code":410,"message":"too old resource version"}`))
			return
		}
		w.Write([]byte("{\"type\":\"ADDED\",\"object\":{\"kind\":\"Pod\",\"metadata\":{\"name\":\"nginx\",\"resourceVersion\":\"101\"}}}\n"))
	}))
	defer server.Close()

	conn := newWatchTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbWatch, "v1", "pods").WithNamespace("default")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	stream := NewWatchStream(ctx, base, conn, op)
	defer stream.Close()

	evt, err, ok := stream.Next(ctx)
	if !ok || err != nil {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if evt.Type != "ADDED" {
		t.Fatalf("got %q", evt.Type)
	}
	if bootstraps != 2 {
		t.Fatalf("expected a fresh bootstrap after the 410 (resetRV), got %d bootstraps", bootstraps)
	}
}

func TestWatchStream_MalformedEventResetsResourceVersionAndReconnects(t *testing.T) {
	var bootstraps int
	var watchAttempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("watch") != "1" {
			bootstraps++
			w.Write([]byte(`{"metadata":{"resourceVersion":"100"},"items":[]}`))
			return
		}
		watchAttempts++
		if watchAttempts == 1 {
			w.Write([]byte("not a json event at all\n"))
			return
		}
		w.Write([]byte("{\"type\":\"ADDED\",\"object\":{\"kind\":\"Pod\",\"metadata\":{\"name\":\"nginx\",\"resourceVersion\":\"101\"}}}\n"))
	}))
	defer server.Close()

	conn := newWatchTestConn(t, server)
	base := NewRunnerBase()
	op := NewOperation(VerbWatch, "v1", "pods").WithNamespace("default")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	stream := NewWatchStream(ctx, base, conn, op)
	defer stream.Close()

	evt, err, ok := stream.Next(ctx)
	if !ok || err != nil {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if evt.Type != "ADDED" {
		t.Fatalf("got %q", evt.Type)
	}
	if bootstraps != 2 {
		t.Fatalf("expected a fresh bootstrap after the malformed event (resetRV), got %d bootstraps", bootstraps)
	}
}
