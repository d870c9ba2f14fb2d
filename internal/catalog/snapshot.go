package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mohammed-shakir/dggs-ldapi/internal/cache"
	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/keys"
	"github.com/mohammed-shakir/dggs-ldapi/internal/cache/redisstore"
)

// SnapshotStore persists a built catalog so restarts skip the source parse.
type SnapshotStore interface {
	// Load reports false when no snapshot exists.
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, s Snapshot) error
}

type NopStore struct{}

func (NopStore) Load(context.Context) (Snapshot, bool, error) { return Snapshot{}, false, nil }

func (NopStore) Save(context.Context, Snapshot) error { return nil }

// FileStore keeps the snapshot as a JSON file.
type FileStore struct {
	Path string
}

func (f FileStore) Load(_ context.Context) (Snapshot, bool, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot: read %s: %w", f.Path, err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot: decode %s: %w", f.Path, err)
	}
	return s, true, nil
}

// Save writes through a temp file and rename so readers never see a partial file.
func (f FileStore) Save(_ context.Context, s Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("snapshot: temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	return nil
}

// RedisStore keeps the snapshot under a single Redis key, shared by replicas.
type RedisStore struct {
	kv  cache.Interface
	ttl time.Duration
}

func NewRedisStore(kv cache.Interface, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context) (Snapshot, bool, error) {
	b, err := r.kv.Get(ctx, keys.CatalogSnapshot)
	if errors.Is(err, redisstore.ErrMiss) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot: decode: %w", err)
	}
	return s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, s Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := r.kv.Set(ctx, keys.CatalogSnapshot, b, r.ttl); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
