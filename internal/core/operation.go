package core

import "maps"

// Verb identifies the abstract operation requested of a Conn. PathBuilder
// and the Runner.* components translate a Verb into an HTTP method and a URL
// shape; see verbMethods in pathbuilder.go.
type Verb string

const (
	VerbGet                Verb = "get"
	VerbList               Verb = "list"
	VerbListAllNamespaces  Verb = "list_all_namespaces"
	VerbWatch              Verb = "watch"
	VerbWatchAllNamespaces Verb = "watch_all_namespaces"
	VerbCreate             Verb = "create"
	VerbUpdate             Verb = "update"
	VerbPatch              Verb = "patch"
	VerbDelete             Verb = "delete"
	VerbDeleteCollection   Verb = "deletecollection"
	VerbConnect            Verb = "connect"
)

// PatchType selects the Content-Type used to render a patch body.
type PatchType string

const (
	PatchMerge          PatchType = "merge"
	PatchStrategicMerge PatchType = "strategic_merge"
	PatchJSONMerge      PatchType = "json_merge"
	PatchApply          PatchType = "apply"
)

// patchContentTypes maps a PatchType to its wire Content-Type.
var patchContentTypes = map[PatchType]string{
	PatchMerge:          "application/merge-patch+json",
	PatchStrategicMerge: "application/strategic-merge-patch+json",
	PatchJSONMerge:      "application/json-patch+json",
	PatchApply:          "application/apply-patch+yaml",
}

// ContentType returns the wire Content-Type for pt, or "" if pt is not a
// recognized patch type.
func (pt PatchType) ContentType() string { return patchContentTypes[pt] }

// orderedMap is a minimal insertion-ordered string-keyed map, used for
// Operation.PathParams/QueryParams/HeaderParams so that query-string and
// header rendering is deterministic across runs (useful for tests asserting
// exact URLs, e.g. S1-S4 in the testable-properties scenarios).
type orderedMap struct {
	keys   []string
	values map[string]string
}

func newOrderedMap() orderedMap {
	return orderedMap{values: make(map[string]string)}
}

func (m orderedMap) clone() orderedMap {
	out := orderedMap{keys: append([]string(nil), m.keys...), values: maps.Clone(m.values)}
	if out.values == nil {
		out.values = make(map[string]string)
	}
	return out
}

func (m *orderedMap) set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m orderedMap) get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m orderedMap) Keys() []string { return m.keys }

// Operation describes one REST call against a Conn. It is immutable; every
// With* method returns a new value rather than mutating the receiver.
type Operation struct {
	Verb       Verb
	APIVersion string

	// Name is either a plain resource name ("pods") or, for a subresource
	// addressed by kind, the string "kind/subkind" passed directly as Name.
	Name string

	pathParams   orderedMap
	queryParams  orderedMap
	headerParams orderedMap

	// Data is the request body, or nil for verbs that carry none.
	Data any

	// PatchType selects the patch Content-Type and, for PatchApply, the
	// server-side-apply query parameters; only meaningful when Verb is
	// VerbPatch.
	PatchType PatchType

	// Conn is an optional borrowed reference to the connection this
	// Operation should run against when passed to a Runner that accepts a
	// bare Operation. It is never closed by Operation.
	Conn *Conn
}

// NewOperation constructs an Operation for verb against resource name in
// apiVersion. Path/query/header parameters are added with the With* methods.
func NewOperation(verb Verb, apiVersion, name string) Operation {
	return Operation{
		Verb:         verb,
		APIVersion:   apiVersion,
		Name:         name,
		pathParams:   newOrderedMap(),
		queryParams:  newOrderedMap(),
		headerParams: newOrderedMap(),
	}
}

func (op Operation) clone() Operation {
	op.pathParams = op.pathParams.clone()
	op.queryParams = op.queryParams.clone()
	op.headerParams = op.headerParams.clone()
	return op
}

// WithNamespace returns a copy of op with the namespace path parameter set.
func (op Operation) WithNamespace(ns string) Operation {
	out := op.clone()
	out.pathParams.set("namespace", ns)
	return out
}

// Namespace returns the namespace path parameter, if set.
func (op Operation) Namespace() (string, bool) { return op.pathParams.get("namespace") }

// WithResourceName returns a copy of op with the name path parameter set
// (the instance name, e.g. "nginx" for a Deployment called nginx).
func (op Operation) WithResourceName(name string) Operation {
	out := op.clone()
	out.pathParams.set("name", name)
	return out
}

// ResourceName returns the name path parameter, if set.
func (op Operation) ResourceName() (string, bool) { return op.pathParams.get("name") }

// WithPath returns a copy of op with a literal "path" parameter set, used by
// non-resource endpoints (e.g. /healthz-shaped connect targets).
func (op Operation) WithPath(path string) Operation {
	out := op.clone()
	out.pathParams.set("path", path)
	return out
}

// WithData returns a copy of op carrying body as its request payload.
func (op Operation) WithData(body any) Operation {
	out := op.clone()
	out.Data = body
	return out
}

// WithPatchType returns a copy of op with its PatchType set; meaningful
// only for VerbPatch operations.
func (op Operation) WithPatchType(pt PatchType) Operation {
	out := op.clone()
	out.PatchType = pt
	return out
}

// WithConn returns a copy of op carrying a borrowed Conn reference.
func (op Operation) WithConn(conn *Conn) Operation {
	out := op.clone()
	out.Conn = conn
	return out
}

// WithQueryParam returns a copy of op with an additional query parameter.
func (op Operation) WithQueryParam(key, value string) Operation {
	out := op.clone()
	out.queryParams.set(key, value)
	return out
}

// QueryParams returns the operation's query parameters in insertion order.
func (op Operation) QueryParams() []KV {
	return toKV(op.queryParams)
}

// WithHeaderParam returns a copy of op with an additional header parameter.
func (op Operation) WithHeaderParam(key, value string) Operation {
	out := op.clone()
	out.headerParams.set(key, value)
	return out
}

// HeaderParams returns the operation's header parameters in insertion order.
func (op Operation) HeaderParams() []KV {
	return toKV(op.headerParams)
}

// KV is an ordered key/value pair, used where rendering order matters
// (query strings, headers).
type KV struct{ Key, Value string }

func toKV(m orderedMap) []KV {
	out := make([]KV, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, KV{Key: k, Value: m.values[k]})
	}
	return out
}

// HasBody reports whether the rendered request for op's verb carries a body
// iff op.Data is non-nil — invariant 2 of the testable properties.
func (op Operation) HasBody() bool {
	switch op.Verb {
	case VerbCreate, VerbUpdate, VerbPatch, VerbConnect:
		return op.Data != nil
	default:
		return false
	}
}
