package core

import (
	"fmt"
	"strings"
)

// verbMethods maps a Verb to its fixed HTTP method, per spec §4.5.
var verbMethods = map[Verb]string{
	VerbGet:                "GET",
	VerbList:               "GET",
	VerbListAllNamespaces:  "GET",
	VerbWatch:              "GET",
	VerbWatchAllNamespaces: "GET",
	VerbCreate:             "POST",
	VerbConnect:            "POST",
	VerbUpdate:             "PUT",
	VerbPatch:              "PATCH",
	VerbDelete:             "DELETE",
	VerbDeleteCollection:   "DELETE",
}

// Method returns the fixed HTTP method for v, or "" if v is unrecognized.
func (v Verb) Method() string { return verbMethods[v] }

// PathBuilder renders an Operation into a URL path, given the
// ResourceDefinition the ResourceFinder matched. It enforces that the
// Operation's verb is supported by the resource.
type PathBuilder struct{}

// Build renders op against resource into a URL path rooted at "/". It
// returns UnsupportedVerbError if the verb is not in resource.Verbs, and
// MissingPathParamError if a verb-required path parameter is absent.
func (PathBuilder) Build(op Operation, resource ResourceDefinition) (string, error) {
	if !resource.SupportsVerb(op.Verb) {
		return "", &UnsupportedVerbError{Verb: op.Verb, Resource: resource.Name}
	}

	var root string
	if strings.Contains(op.APIVersion, "/") {
		root = "/apis/" + op.APIVersion
	} else {
		root = "/api/" + op.APIVersion
	}

	tail, err := buildTail(op, resource)
	if err != nil {
		return "", err
	}

	switch {
	case resource.Namespaced && (op.Verb == VerbListAllNamespaces || op.Verb == VerbWatchAllNamespaces):
		return root + "/" + tail, nil
	case resource.Namespaced:
		ns, ok := op.Namespace()
		if !ok || ns == "" {
			return "", &MissingPathParamError{Names: []string{"namespace"}}
		}
		return root + "/namespaces/" + ns + "/" + tail, nil
	default:
		return root + "/" + tail, nil
	}
}

// buildTail renders the portion of the path after the namespace segment (or
// after the apiVersion root, for cluster-scoped resources): either the bare
// resource name (collection verbs) or "{resourceName}/{name}[/{sub}]".
func buildTail(op Operation, resource ResourceDefinition) (string, error) {
	switch op.Verb {
	case VerbList, VerbListAllNamespaces, VerbCreate, VerbDeleteCollection:
		return resource.Name, nil
	case VerbWatch, VerbWatchAllNamespaces:
		// A plain watch with no instance name watches the whole collection;
		// watch of a single item (rare, but legal) falls through to the
		// named case below.
		if name, ok := op.ResourceName(); ok && name != "" {
			return namedTail(resource.Name, name)
		}
		return resource.Name, nil
	case VerbGet, VerbDelete, VerbPatch, VerbUpdate:
		name, ok := op.ResourceName()
		if !ok || name == "" {
			return "", &MissingPathParamError{Names: []string{"name"}}
		}
		return namedTail(resource.Name, name)
	case VerbConnect:
		name, ok := op.ResourceName()
		if !ok || name == "" {
			return "", &MissingPathParamError{Names: []string{"name"}}
		}
		return namedTail(resource.Name, name)
	default:
		return "", fmt.Errorf("k8s: pathbuilder: unhandled verb %q", op.Verb)
	}
}

// namedTail renders "{resourceName}/{name}", appending "/{subresource}" when
// resourceName is of the form "plural/sub" (e.g. "deployments/status").
func namedTail(resourceName, name string) (string, error) {
	plural := resourceName
	sub := ""
	if i := strings.IndexByte(resourceName, '/'); i >= 0 {
		plural, sub = resourceName[:i], resourceName[i+1:]
	}
	tail := plural + "/" + name
	if sub != "" {
		tail += "/" + sub
	}
	return tail, nil
}
