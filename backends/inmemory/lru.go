package inmemory

import (
	"sync"

	"github.com/botirk38/simfunc/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

// NewLRUBackend creates a checkpoint store that evicts the least recently used
// checkpoint once Capacity is reached
func NewLRUBackend(config types.StoreConfig) (*Backend, error) {
	c, err := lru.New[string, types.Checkpoint](config.Capacity)
	if err != nil {
		return nil, err
	}

	return &Backend{
		mu:     &sync.RWMutex{},
		cache:  c,
		add:    func(key string, cp types.Checkpoint) { c.Add(key, cp) },
		remove: func(key string) { c.Remove(key) },
	}, nil
}
