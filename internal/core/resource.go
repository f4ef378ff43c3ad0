package core

import "strings"

// ResourceDefinition is the REST resource record returned by discovery for
// one (groupVersion, name) pair.
type ResourceDefinition struct {
	GroupVersion string
	Kind         string
	// Name is the plural REST name, possibly "plural/subresource".
	Name       string
	Namespaced bool
	Verbs      map[Verb]bool
}

// IsSubresource reports whether the resource's Name is of the form
// "plural/sub".
func (r ResourceDefinition) IsSubresource() bool {
	return strings.Contains(r.Name, "/")
}

// Subresource returns the "/sub" suffix of Name, or "" if not a subresource.
func (r ResourceDefinition) Subresource() string {
	if i := strings.IndexByte(r.Name, '/'); i >= 0 {
		return r.Name[i+1:]
	}
	return ""
}

// SupportsVerb reports whether v is in the resource's verb set.
func (r ResourceDefinition) SupportsVerb(v Verb) bool {
	return r.Verbs[v]
}
