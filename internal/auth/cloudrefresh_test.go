package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

func TestNewCloudRefresh_DecoratesWithFetchedToken(t *testing.T) {
	fetch := func(_ context.Context) (CloudToken, error) {
		return CloudToken{Token: "cloud-tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	c, err := NewCloudRefresh("gcp", fetch)
	if err != nil {
		t.Fatalf("NewCloudRefresh: %v", err)
	}
	defer c.Close()

	dec, err := c.Decorate(context.Background())
	if err != nil {
		t.Fatalf("Decorate: %v", err)
	}
	if dec.Headers["Authorization"] != "Bearer cloud-tok" {
		t.Fatalf("got %q", dec.Headers["Authorization"])
	}
}

func TestNewCloudRefresh_InitialFetchFailureIsFatal(t *testing.T) {
	fetch := func(_ context.Context) (CloudToken, error) {
		return CloudToken{}, errors.New("endpoint unreachable")
	}
	_, err := NewCloudRefresh("gcp", fetch)
	if _, ok := err.(*core.AuthError); !ok {
		t.Fatalf("expected *core.AuthError, got %v (%T)", err, err)
	}
}

func TestCloudRefresh_ExpiredCachedTokenErrors(t *testing.T) {
	fetch := func(_ context.Context) (CloudToken, error) {
		return CloudToken{Token: "stale", ExpiresAt: time.Now().Add(time.Millisecond)}, nil
	}
	c, err := NewCloudRefresh("gcp", fetch)
	if err != nil {
		t.Fatalf("NewCloudRefresh: %v", err)
	}
	defer c.Close()

	time.Sleep(10 * time.Millisecond)
	_, err = c.Decorate(context.Background())
	if _, ok := err.(*core.AuthError); !ok {
		t.Fatalf("expected *core.AuthError for expired cached token, got %v (%T)", err, err)
	}
}
