package k8s

import "github.com/coryodaniel/k8s-sub001/internal/core"

// Operation, Verb, and PatchType are thin aliases over internal/core's
// immutable builder types, per spec §3/§4.5.
type (
	Operation = core.Operation
	Verb      = core.Verb
	PatchType = core.PatchType
)

const (
	PatchMerge          = core.PatchMerge
	PatchStrategicMerge = core.PatchStrategicMerge
	PatchJSONMerge      = core.PatchJSONMerge
	PatchApply          = core.PatchApply
)

// Get returns a single-shot GET operation for name (a resource name, kind,
// or "kind/subkind") in apiVersion.
func Get(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbGet, apiVersion, name)
}

// List returns a namespaced-or-not LIST operation; pair with WithNamespace
// to scope it, or leave unscoped for cluster-scoped resources.
func List(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbList, apiVersion, name)
}

// ListAllNamespaces returns a LIST operation against the all-namespaces
// collection endpoint, per spec §4.5's cross-namespace path shape.
func ListAllNamespaces(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbListAllNamespaces, apiVersion, name)
}

// Watch returns a resumable watch operation, meant for Runner.WatchStream.
func Watch(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbWatch, apiVersion, name)
}

// WatchAllNamespaces returns a resumable, cross-namespace watch operation.
func WatchAllNamespaces(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbWatchAllNamespaces, apiVersion, name)
}

// Create returns a POST operation; call WithData to attach the request
// body before running it.
func Create(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbCreate, apiVersion, name)
}

// Update returns a PUT operation; call WithData to attach the full
// replacement object.
func Update(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbUpdate, apiVersion, name)
}

// Patch returns a PATCH operation with the given PatchType; call WithData
// to attach the patch body (a map/struct for merge/strategic-merge/apply,
// a JSON patch array for PatchJSONMerge).
func Patch(apiVersion, name string, pt PatchType) Operation {
	return core.NewOperation(core.VerbPatch, apiVersion, name).WithPatchType(pt)
}

// Delete returns a DELETE operation against a single named instance.
func Delete(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbDelete, apiVersion, name)
}

// DeleteCollection returns a DELETE operation against an entire
// collection, optionally narrowed with a label/field Selector via
// WithQueryParam.
func DeleteCollection(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbDeleteCollection, apiVersion, name)
}

// Connect returns an exec/attach/portforward operation, meant for
// Runner.ConnectStream; call WithQueryParam to set command/stdin/stdout/
// stderr/tty as the subresource requires.
func Connect(apiVersion, name string) Operation {
	return core.NewOperation(core.VerbConnect, apiVersion, name)
}

// WithLabelSelector sets the labelSelector query parameter from sel's
// encoded form.
func WithLabelSelector(op Operation, sel Selector) Operation {
	if sel.Empty() {
		return op
	}
	return op.WithQueryParam("labelSelector", sel.Encode())
}

// WithFieldSelector sets the fieldSelector query parameter from sel's
// encoded form.
func WithFieldSelector(op Operation, sel Selector) Operation {
	if sel.Empty() {
		return op
	}
	return op.WithQueryParam("fieldSelector", sel.Encode())
}
