package examples

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// Source opens the canonical file of an example for upload.
type Source interface {
	Open(ctx context.Context, file string) (io.ReadCloser, error)
}

// DirSource serves files from a local directory.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Open rejects names that would escape the root directory. A missing
// file yields common.ErrorNotFound.
func (s *DirSource) Open(_ context.Context, file string) (io.ReadCloser, error) {
	clean := filepath.Clean("/" + file)
	if strings.Contains(file, "..") || clean == "/" {
		return nil, fmt.Errorf("invalid example file name %q", file)
	}

	f, err := os.Open(filepath.Join(s.root, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("example file %q: %w", file, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening example file: %w", err)
	}
	return f, nil
}
