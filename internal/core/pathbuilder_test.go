package core

import "testing"

func deploymentResource() ResourceDefinition {
	return ResourceDefinition{
		GroupVersion: "apps/v1",
		Kind:         "Deployment",
		Name:         "deployments",
		Namespaced:   true,
		Verbs: map[Verb]bool{
			VerbGet: true, VerbList: true, VerbListAllNamespaces: true,
			VerbWatch: true, VerbWatchAllNamespaces: true,
			VerbCreate: true, VerbUpdate: true, VerbPatch: true,
			VerbDelete: true, VerbDeleteCollection: true,
		},
	}
}

func clusterRoleResource() ResourceDefinition {
	return ResourceDefinition{
		GroupVersion: "rbac.authorization.k8s.io/v1",
		Kind:         "ClusterRole",
		Name:         "clusterroles",
		Namespaced:   false,
		Verbs:        map[Verb]bool{VerbGet: true, VerbList: true},
	}
}

func deploymentStatusResource() ResourceDefinition {
	r := deploymentResource()
	r.Name = "deployments/status"
	return r
}

func TestPathBuilder_NamespacedGet(t *testing.T) {
	op := NewOperation(VerbGet, "apps/v1", "Deployment").WithNamespace("default").WithResourceName("nginx")
	path, err := (PathBuilder{}).Build(op, deploymentResource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/apis/apps/v1/namespaces/default/deployments/nginx"
	if path != want {
		t.Fatalf("got %q, want %q", path, want)
	}
}

func TestPathBuilder_CoreGroupHasNoApisPrefix(t *testing.T) {
	op := NewOperation(VerbGet, "v1", "Pod").WithNamespace("default").WithResourceName("nginx")
	resource := ResourceDefinition{Name: "pods", Namespaced: true, Verbs: map[Verb]bool{VerbGet: true}}
	path, err := (PathBuilder{}).Build(op, resource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/api/v1/namespaces/default/pods/nginx"
	if path != want {
		t.Fatalf("got %q, want %q", path, want)
	}
}

func TestPathBuilder_ListAllNamespacesSkipsNamespaceSegment(t *testing.T) {
	op := NewOperation(VerbListAllNamespaces, "apps/v1", "Deployment")
	path, err := (PathBuilder{}).Build(op, deploymentResource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/apis/apps/v1/deployments"
	if path != want {
		t.Fatalf("got %q, want %q", path, want)
	}
}

func TestPathBuilder_ClusterScopedResourceNeverGetsNamespaceSegment(t *testing.T) {
	op := NewOperation(VerbGet, "rbac.authorization.k8s.io/v1", "ClusterRole").WithResourceName("admin")
	path, err := (PathBuilder{}).Build(op, clusterRoleResource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/apis/rbac.authorization.k8s.io/v1/clusterroles/admin"
	if path != want {
		t.Fatalf("got %q, want %q", path, want)
	}
}

func TestPathBuilder_SubresourceAppendsSuffix(t *testing.T) {
	op := NewOperation(VerbPatch, "apps/v1", "Deployment/status").
		WithNamespace("default").WithResourceName("nginx").WithPatchType(PatchStrategicMerge)
	path, err := (PathBuilder{}).Build(op, deploymentStatusResource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "/apis/apps/v1/namespaces/default/deployments/nginx/status"
	if path != want {
		t.Fatalf("got %q, want %q", path, want)
	}
}

func TestPathBuilder_NamespacedGetMissingNamespace(t *testing.T) {
	op := NewOperation(VerbGet, "apps/v1", "Deployment").WithResourceName("nginx")
	_, err := (PathBuilder{}).Build(op, deploymentResource())
	var missing *MissingPathParamError
	if !asMissingPathParamError(err, &missing) {
		t.Fatalf("expected MissingPathParamError, got %v (%T)", err, err)
	}
}

func TestPathBuilder_MissingResourceName(t *testing.T) {
	op := NewOperation(VerbGet, "apps/v1", "Deployment").WithNamespace("default")
	_, err := (PathBuilder{}).Build(op, deploymentResource())
	var missing *MissingPathParamError
	if !asMissingPathParamError(err, &missing) {
		t.Fatalf("expected MissingPathParamError, got %v (%T)", err, err)
	}
}

func TestPathBuilder_UnsupportedVerb(t *testing.T) {
	op := NewOperation(VerbDelete, "rbac.authorization.k8s.io/v1", "ClusterRole").WithResourceName("admin")
	_, err := (PathBuilder{}).Build(op, clusterRoleResource())
	if _, ok := err.(*UnsupportedVerbError); !ok {
		t.Fatalf("expected UnsupportedVerbError, got %v (%T)", err, err)
	}
}

func asMissingPathParamError(err error, target **MissingPathParamError) bool {
	if e, ok := err.(*MissingPathParamError); ok {
		*target = e
		return true
	}
	return false
}
