package examples

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/shareid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_LookupAndList(t *testing.T) {
	r, err := NewRegistry([]Example{
		{Name: "hello", Title: "Hello", File: "hello.pdf"},
		{Name: "annotations", Title: "Annotations", File: "annotations.pdf"},
	})
	require.NoError(t, err)

	e, err := r.Lookup("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello.pdf", e.File)

	_, err = r.Lookup("missing")
	assert.True(t, errors.Is(err, common.ErrUnknownExample))

	names := []string{}
	for _, e := range r.List() {
		names = append(names, e.Name)
	}
	assert.Empty(t, cmp.Diff([]string{"annotations", "hello"}, names))
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		list []Example
	}{
		{"no name", []Example{{File: "a.pdf"}}},
		{"no file", []Example{{Name: "a"}}},
		{"duplicate", []Example{{Name: "a", File: "a.pdf"}, {Name: "a", File: "b.pdf"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.list)
			assert.Error(t, err)
		})
	}
}

func TestRegistry_ByFingerprint(t *testing.T) {
	r, err := NewRegistry([]Example{{Name: "hello", File: "hello.pdf"}})
	require.NoError(t, err)

	got := r.ByFingerprint(shareid.Fingerprint("hello"))
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Name)
	assert.Empty(t, r.ByFingerprint(shareid.Fingerprint("custom")))
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "examples.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"name":"hello","title":"Hello","file":"hello.pdf"}]`), 0o600))

	r, err := LoadRegistry(good)
	require.NoError(t, err)
	e, err := r.Lookup("hello")
	require.NoError(t, err)
	assert.Equal(t, Example{Name: "hello", Title: "Hello", File: "hello.pdf"}, e)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
	_, err = LoadRegistry(bad)
	assert.Error(t, err)

	_, err = LoadRegistry(filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}
