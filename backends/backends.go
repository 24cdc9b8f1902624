// Package backends creates checkpoint stores by type.
package backends

import (
	"errors"

	"github.com/botirk38/simfunc/backends/inmemory"
	"github.com/botirk38/simfunc/backends/local"
	"github.com/botirk38/simfunc/backends/remote"
	"github.com/botirk38/simfunc/types"
)

var ErrUnsupportedBackend = errors.New("unsupported backend type")

// BackendFactory creates checkpoint stores based on type and configuration
type BackendFactory struct{}

// NewBackend creates a new checkpoint store of the specified type
func (f *BackendFactory) NewBackend(storeType types.StoreType, config types.StoreConfig) (types.CheckpointStore, error) {
	switch storeType {
	case types.StoreLRU:
		return NewLRUBackend(config)
	case types.Store2Q:
		return New2QBackend(config)
	case types.StoreExpirable:
		return NewExpirableBackend(config)
	case types.StoreRedis:
		return NewRedisBackend(config)
	case types.StoreSQLite:
		return NewSQLiteBackend(config)
	default:
		return nil, ErrUnsupportedBackend
	}
}

// NewLRUBackend creates a new LRU store
func NewLRUBackend(config types.StoreConfig) (types.CheckpointStore, error) {
	return inmemory.NewLRUBackend(config)
}

// New2QBackend creates a new 2Q store
func New2QBackend(config types.StoreConfig) (types.CheckpointStore, error) {
	return inmemory.New2QBackend(config)
}

// NewExpirableBackend creates a new TTL-bounded LRU store
func NewExpirableBackend(config types.StoreConfig) (types.CheckpointStore, error) {
	return inmemory.NewExpirableBackend(config)
}

// NewRedisBackend creates a new Redis store
func NewRedisBackend(config types.StoreConfig) (types.CheckpointStore, error) {
	return remote.NewRedisBackend(config)
}

// NewSQLiteBackend creates a new SQLite store
func NewSQLiteBackend(config types.StoreConfig) (types.CheckpointStore, error) {
	return local.NewSQLiteBackend(config)
}
