package core

import "context"

// DiscoveryDriver enumerates apiVersions and per-version resource lists.
// There are exactly two implementations — HTTPDriver (internal/discovery)
// against a live cluster, and FileDriver against a static JSON fixture for
// tests — dispatched through this shared interface rather than a type
// switch, per spec §9's "dynamic dispatch becomes a sum type with a shared
// interface" design note.
type DiscoveryDriver interface {
	// Versions returns every apiVersion the cluster (or fixture) exposes:
	// the legacy core group's "versions" field from /api, unioned with
	// groups[*].versions[*].groupVersion from /apis.
	Versions(ctx context.Context) ([]string, error)

	// Resources returns the APIResourceList for one apiVersion, fetched
	// from /api/{v} (no group) or /apis/{gv} (grouped).
	Resources(ctx context.Context, apiVersion string) ([]ResourceDefinition, error)
}
