package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/botirk38/simfunc/types"
)

// ErrEmptyName indicates a checkpoint without a name
var ErrEmptyName = errors.New("checkpoint name cannot be empty")

// cache is the subset shared by the golang-lru cache flavours.
type cache interface {
	Get(key string) (types.Checkpoint, bool)
	Contains(key string) bool
	Keys() []string
	Len() int
	Purge()
}

// Backend implements CheckpointStore on top of a golang-lru cache. Checkpoints
// are copied on the way in and out, so callers never share weight slices with
// the store.
type Backend struct {
	mu     *sync.RWMutex
	cache  cache
	add    func(key string, cp types.Checkpoint)
	remove func(key string)
}

// Save stores a copy of the checkpoint under its name
func (b *Backend) Save(ctx context.Context, cp types.Checkpoint) error {
	if cp.Name == "" {
		return ErrEmptyName
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.add(cp.Name, cp.Clone())
	return nil
}

// Load retrieves a copy of the named checkpoint
func (b *Backend) Load(ctx context.Context, name string) (types.Checkpoint, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if cp, ok := b.cache.Get(name); ok {
		return cp.Clone(), true, nil
	}
	return types.Checkpoint{}, false, nil
}

// Delete removes the named checkpoint
func (b *Backend) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.remove(name)
	return nil
}

// Contains checks if a checkpoint exists without affecting recency
func (b *Backend) Contains(ctx context.Context, name string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cache.Contains(name), nil
}

// Names returns the stored checkpoint names, sorted
func (b *Backend) Names(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := b.cache.Keys()
	sort.Strings(names)
	return names, nil
}

// Len returns the number of stored checkpoints
func (b *Backend) Len(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cache.Len(), nil
}

// Flush removes all checkpoints
func (b *Backend) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cache.Purge()
	return nil
}

// Close is a no-op for in-memory stores
func (b *Backend) Close() error {
	return nil
}
