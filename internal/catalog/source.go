package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source loads catalog content from its origin.
type Source interface {
	Load(ctx context.Context) (Snapshot, error)
}

// FileName is the catalog document read from the catalog directory.
const FileName = "catalog.yaml"

// YAMLSource reads catalog.yaml from Dir.
type YAMLSource struct {
	Dir string
}

func (s YAMLSource) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	path := filepath.Join(s.Dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
