package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmtrader/pairsweep/internal/core"
)

// LocalFS serves datasets from a directory on the local filesystem.
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a LocalFS provider rooted at basePath.
func NewLocalFS(basePath string) (*LocalFS, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("dataset directory %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %s is not a directory", basePath)
	}
	return &LocalFS{basePath: basePath}, nil
}

// List implements Provider.
func (l *LocalFS) List(ctx context.Context) ([]Descriptor, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}

	var descriptors []Descriptor
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		descriptors = append(descriptors, Descriptor{
			Name:        entry.Name(),
			SizeBytes:   info.Size(),
			LastUpdated: info.ModTime(),
		})
	}
	return descriptors, nil
}

// Load implements Provider.
func (l *LocalFS) Load(ctx context.Context, name string) ([]core.PriceRow, error) {
	if !strings.HasSuffix(name, ".csv") {
		return nil, core.WrapError(core.ErrDatasetUnsupported,
			fmt.Errorf("dataset %s: only csv datasets are supported", name))
	}

	// Names are opaque identifiers, not paths.
	path := filepath.Join(l.basePath, filepath.Base(name))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.WrapError(core.ErrDatasetNotFound,
				fmt.Errorf("dataset %s not found in %s", name, l.basePath))
		}
		return nil, fmt.Errorf("reading dataset %s: %w", name, err)
	}

	return decodeCSV(data)
}
