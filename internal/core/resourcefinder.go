package core

import (
	"context"
	"strings"
)

// ResourceFinder matches an (apiVersion, nameOrKind) pair against the
// resources a DiscoveryDriver reports for that apiVersion, per spec §4.4.
type ResourceFinder struct {
	driver DiscoveryDriver
	cache  *discoveryCache
}

// NewResourceFinder returns a ResourceFinder backed by driver, caching
// results per groupVersion in cache.
func NewResourceFinder(driver DiscoveryDriver, cache *discoveryCache) *ResourceFinder {
	return &ResourceFinder{driver: driver, cache: cache}
}

// Find resolves nameOrKind within apiVersion to a ResourceDefinition.
// Matching precedence, first wins:
//
//	a. exact Name match
//	b. exact Kind match, not a subresource
//	c. lowercased Kind equals input, not a subresource
//	d. Name equals lowercased input
func (f *ResourceFinder) Find(ctx context.Context, apiVersion, nameOrKind string) (ResourceDefinition, error) {
	resources, err := f.resourcesFor(ctx, apiVersion)
	if err != nil {
		return ResourceDefinition{}, err
	}

	lowered := strings.ToLower(nameOrKind)

	for _, r := range resources {
		if r.Name == nameOrKind {
			return r, nil
		}
	}
	for _, r := range resources {
		if r.Kind == nameOrKind && !r.IsSubresource() {
			return r, nil
		}
	}
	for _, r := range resources {
		if strings.ToLower(r.Kind) == lowered && !r.IsSubresource() {
			return r, nil
		}
	}
	for _, r := range resources {
		if r.Name == lowered {
			return r, nil
		}
	}

	return ResourceDefinition{}, &UnsupportedResourceError{APIVersion: apiVersion, Input: nameOrKind}
}

// FindSubresource resolves a {kind, subkind} pair: a subresource whose Kind
// equals subkind and whose Name starts with the lowercased parent kind.
func (f *ResourceFinder) FindSubresource(ctx context.Context, apiVersion, kind, subkind string) (ResourceDefinition, error) {
	resources, err := f.resourcesFor(ctx, apiVersion)
	if err != nil {
		return ResourceDefinition{}, err
	}

	prefix := strings.ToLower(kind)
	for _, r := range resources {
		if r.Kind == subkind && r.IsSubresource() && strings.HasPrefix(r.Name, prefix) {
			return r, nil
		}
	}

	return ResourceDefinition{}, &UnsupportedResourceError{APIVersion: apiVersion, Input: kind + "/" + subkind}
}

func (f *ResourceFinder) resourcesFor(ctx context.Context, apiVersion string) ([]ResourceDefinition, error) {
	return f.cache.getOrLoad(ctx, apiVersion, func() ([]ResourceDefinition, error) {
		return f.driver.Resources(ctx, apiVersion)
	})
}
