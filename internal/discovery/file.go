package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

// fileFixture is the on-disk shape FileDriver reads: a map from apiVersion
// to its resource list, plus the flattened version list (so Versions
// doesn't need to separately reconstruct groups/legacy versions from
// fixture data).
type fileFixture struct {
	Versions  []string                      `json:"versions"`
	Resources map[string][]fileResourceSpec `json:"resources"`
}

type fileResourceSpec struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Namespaced bool     `json:"namespaced"`
	Verbs      []string `json:"verbs"`
}

// FileDriver reads a static JSON fixture with the same logical shape as
// the live cluster's /api + /apis responses, for deterministic tests, per
// spec §4.3.
type FileDriver struct {
	path    string
	fixture fileFixture
}

// NewFileDriver loads path once at construction; a missing file or JSON
// decode error is fatal, per spec §4.3 ("missing path → file_not_found;
// JSON decode errors are fatal").
func NewFileDriver(path string) (*FileDriver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.DiscoveryError{Path: path, Cause: fmt.Errorf("file_not_found: %w", err)}
	}
	var fixture fileFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, &core.DiscoveryError{Path: path, Cause: err}
	}
	return &FileDriver{path: path, fixture: fixture}, nil
}

func (d *FileDriver) Versions(_ context.Context) ([]string, error) {
	return append([]string(nil), d.fixture.Versions...), nil
}

func (d *FileDriver) Resources(_ context.Context, apiVersion string) ([]core.ResourceDefinition, error) {
	specs, ok := d.fixture.Resources[apiVersion]
	if !ok {
		return nil, &core.DiscoveryError{Path: d.path, Cause: fmt.Errorf("no fixture resources for apiVersion %q", apiVersion)}
	}
	out := make([]core.ResourceDefinition, 0, len(specs))
	for _, s := range specs {
		verbs := make(map[core.Verb]bool, len(s.Verbs))
		for _, v := range s.Verbs {
			verbs[core.Verb(v)] = true
		}
		out = append(out, core.ResourceDefinition{
			GroupVersion: apiVersion,
			Kind:         s.Kind,
			Name:         s.Name,
			Namespaced:   s.Namespaced,
			Verbs:        verbs,
		})
	}
	return out, nil
}
