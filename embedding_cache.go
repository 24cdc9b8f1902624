package simfunc

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultCacheMaxCost     = 64 << 20 // bytes of embedding data
	defaultCacheBufferItems = 64
	defaultCacheTTL         = time.Hour
)

// CacheConfig configures the embedding cache.
type CacheConfig struct {
	// MaxCost bounds the cached embedding data in bytes.
	MaxCost int64
	TTL     time.Duration
}

// CacheStats reports embedding cache effectiveness.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

// embeddingCache memoizes provider embeddings keyed by input text.
type embeddingCache struct {
	cache  *ristretto.Cache
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

func newEmbeddingCache(config CacheConfig) (*embeddingCache, error) {
	maxCost := config.MaxCost
	if maxCost <= 0 {
		maxCost = defaultCacheMaxCost
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	// ristretto recommends ten counters per expected item; assume 1536-wide
	// float64 vectors when sizing.
	numCounters := max(maxCost/(1536*8)*10, 1000)

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: defaultCacheBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &embeddingCache{cache: cache, ttl: ttl}, nil
}

func (c *embeddingCache) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Get returns a copy of the cached embedding for text.
func (c *embeddingCache) Get(text string) ([]float64, bool) {
	if c.isClosed() {
		return nil, false
	}

	value, found := c.cache.Get(text)
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	embedding, ok := value.([]float64)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return append([]float64(nil), embedding...), true
}

// Set stores a copy of embedding. Admission is best effort.
func (c *embeddingCache) Set(text string, embedding []float64) bool {
	if c.isClosed() || len(embedding) == 0 {
		return false
	}
	cost := int64(len(embedding)*8 + len(text))
	return c.cache.SetWithTTL(text, append([]float64(nil), embedding...), cost, c.ttl)
}

// Wait blocks until buffered writes are applied.
func (c *embeddingCache) Wait() {
	if !c.isClosed() {
		c.cache.Wait()
	}
}

func (c *embeddingCache) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *embeddingCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cache.Close()
}
