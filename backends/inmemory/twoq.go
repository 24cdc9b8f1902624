package inmemory

import (
	"sync"

	"github.com/botirk38/simfunc/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

// New2QBackend creates a checkpoint store using the 2Q policy, which keeps
// checkpoints loaded more than once apart from ones seen a single time
func New2QBackend(config types.StoreConfig) (*Backend, error) {
	c, err := lru.New2Q[string, types.Checkpoint](config.Capacity)
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
