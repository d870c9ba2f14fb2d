package invalidation

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// VersionDedupe remembers the last applied version of recent event keys.
type VersionDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func NewVersionDedupe(size int) *VersionDedupe {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, uint64](size)
	return &VersionDedupe{lru: c}
}

// ShouldApply reports whether v is newer than the last version seen for key.
// It does not record v; call Applied once the event took effect.
func (d *VersionDedupe) ShouldApply(key string, v uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Get(key)
	return !ok || v > last
}

func (d *VersionDedupe) Applied(key string, v uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(key); ok && v <= last {
		return
	}
	d.lru.Add(key, v)
}
