// Package examples holds the example catalog: the stable example names, the
// canonical PDF each one opens, and the fingerprint lookup used to trace a
// shareable id back to the example that produced it.
package examples

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/shareid"
)

// Example is one catalog entry.
type Example struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	File  string `json:"file"`
}

// Fingerprint returns the shareable id fingerprint of the example name.
func (e Example) Fingerprint() string {
	return shareid.Fingerprint(e.Name)
}

// Registry is an immutable, name-indexed catalog.
type Registry struct {
	byName        map[string]Example
	byFingerprint map[string][]Example
}

// NewRegistry indexes list. Names must be unique and non-empty.
func NewRegistry(list []Example) (*Registry, error) {
	r := &Registry{
		byName:        make(map[string]Example, len(list)),
		byFingerprint: make(map[string][]Example, len(list)),
	}

	for _, e := range list {
		if e.Name == "" {
			return nil, fmt.Errorf("example with file %q has no name", e.File)
		}
		if e.File == "" {
			return nil, fmt.Errorf("example %q has no file", e.Name)
		}
		if _, dup := r.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate example %q", e.Name)
		}
		r.byName[e.Name] = e
		fp := e.Fingerprint()
		r.byFingerprint[fp] = append(r.byFingerprint[fp], e)
	}

	return r, nil
}

// LoadRegistry reads a JSON catalog file.
func LoadRegistry(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading example catalog: %w", err)
	}

	var list []Example
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parsing example catalog %s: %w", path, err)
	}

	return NewRegistry(list)
}

// Lookup returns the example called name or common.ErrUnknownExample.
func (r *Registry) Lookup(name string) (Example, error) {
	e, ok := r.byName[name]
	if !ok {
		return Example{}, fmt.Errorf("%w: %q", common.ErrUnknownExample, name)
	}
	return e, nil
}

// ByFingerprint returns every example whose fingerprint is fp. Fingerprints
// are 24 bits wide, so more than one match is possible.
func (r *Registry) ByFingerprint(fp string) []Example {
	return r.byFingerprint[fp]
}

// List returns the catalog sorted by name.
func (r *Registry) List() []Example {
	out := make([]Example, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
