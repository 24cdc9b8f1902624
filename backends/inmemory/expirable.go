package inmemory

import (
	"errors"
	"sync"

	"github.com/botirk38/simfunc/types"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// NewExpirableBackend creates an LRU checkpoint store whose entries expire
// after config.TTL. A zero Capacity means no size limit.
func NewExpirableBackend(config types.StoreConfig) (*Backend, error) {
	if config.Capacity < 0 {
		return nil, errors.New("capacity cannot be negative")
	}
	if config.TTL <= 0 {
		return nil, errors.New("expirable store requires a positive TTL")
	}

	c := expirable.NewLRU[string, types.Checkpoint](config.Capacity, nil, config.TTL)

	return &Backend{
		mu:     &sync.RWMutex{},
		cache:  c,
		add:    func(key string, cp types.Checkpoint) { c.Add(key, cp) },
		remove: func(key string) { c.Remove(key) },
	}, nil
}
