// Package options provides functional options for configuring Scorer instances.
package options

import (
	"context"
	"errors"
	"time"

	"github.com/botirk38/simfunc/backends"
	"github.com/botirk38/simfunc/chunker"
	"github.com/botirk38/simfunc/params"
	"github.com/botirk38/simfunc/providers/gemini"
	"github.com/botirk38/simfunc/providers/openai"
	"github.com/botirk38/simfunc/similarity"
	"github.com/botirk38/simfunc/tokenizer"
	"github.com/botirk38/simfunc/types"
)

// Option represents a configuration option for a Scorer
type Option func(*Config) error

// Config holds the configuration for building a Scorer
type Config struct {
	Function similarity.Function
	Provider types.EmbeddingProvider
	Counter  types.TokenCounter
	Chunker  chunker.Chunker
	Store    types.CheckpointStore

	// EmbeddingCache enables memoization of provider embeddings when set.
	EmbeddingCache *EmbeddingCacheConfig
}

// EmbeddingCacheConfig sizes the embedding cache
type EmbeddingCacheConfig struct {
	MaxCost int64
	TTL     time.Duration
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Function: similarity.Cosine,
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Function == nil {
		return errors.New("similarity function is required - use WithFunction, WithLinear, etc.")
	}
	if c.Chunker != nil && c.Provider == nil {
		return errors.New("chunking requires an embedding provider - use WithOpenAIProvider, etc.")
	}
	return nil
}

// WithFunction sets the similarity function
func WithFunction(fn similarity.Function) Option {
	return func(cfg *Config) error {
		if fn == nil {
			return errors.New("similarity function cannot be nil")
		}
		cfg.Function = fn
		return nil
	}
}

// WithFunctionParams builds the similarity function from params, as
// similarity.FromParams does
func WithFunctionParams(p *params.Params) Option {
	return func(cfg *Config) error {
		if p == nil {
			return errors.New("params cannot be nil")
		}
		fn, err := similarity.FromParams(p)
		if err != nil {
			return err
		}
		cfg.Function = fn
		return nil
	}
}

// WithLinear sets up a freshly initialized linear similarity function
func WithLinear(dim1, dim2 int, opts ...similarity.LinearOption) Option {
	return func(cfg *Config) error {
		fn, err := similarity.NewLinear(dim1, dim2, opts...)
		if err != nil {
			return err
		}
		cfg.Function = fn
		return nil
	}
}

// WithOpenAIProvider sets up OpenAI embedding provider. Unless a token counter
// is already configured, a local tiktoken counter is installed alongside.
func WithOpenAIProvider(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		config := openai.OpenAIConfig{
			APIKey: apiKey,
		}
		if len(model) > 0 {
			config.Model = model[0]
		}

		provider, err := openai.NewOpenAIProvider(config)
		if err != nil {
			return err
		}
		cfg.Provider = provider

		if cfg.Counter == nil {
			counter, err := tokenizer.NewOpenAITokenizer()
			if err != nil {
				return err
			}
			cfg.Counter = counter
		}
		return nil
	}
}

// WithGeminiProvider sets up Gemini embedding provider. Unless a token counter
// is already configured, one sharing the provider's client is installed.
func WithGeminiProvider(apiKey string, model ...string) Option {
	return func(cfg *Config) error {
		config := gemini.GeminiConfig{
			APIKey: apiKey,
		}
		if len(model) > 0 {
			config.Model = model[0]
		}

		provider, err := gemini.NewGeminiProvider(context.Background(), config)
		if err != nil {
			return err
		}
		cfg.Provider = provider

		if cfg.Counter == nil {
			cfg.Counter = tokenizer.NewGeminiTokenizer(provider.Client(), provider.Model())
		}
		return nil
	}
}

// WithCustomProvider allows using a pre-configured embedding provider
func WithCustomProvider(provider types.EmbeddingProvider) Option {
	return func(cfg *Config) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		cfg.Provider = provider
		return nil
	}
}

// WithTokenCounter sets the counter used to detect over-long input
func WithTokenCounter(counter types.TokenCounter) Option {
	return func(cfg *Config) error {
		if counter == nil {
			return errors.New("token counter cannot be nil")
		}
		cfg.Counter = counter
		return nil
	}
}

// WithChunking enables chunking of input longer than the provider limit
func WithChunking(config chunker.ChunkConfig) Option {
	return func(cfg *Config) error {
		c, err := chunker.New(config)
		if err != nil {
			return err
		}
		cfg.Chunker = c
		return nil
	}
}

// WithEmbeddingCache memoizes embeddings up to maxCost bytes for ttl.
// Zero values select the defaults.
func WithEmbeddingCache(maxCost int64, ttl time.Duration) Option {
	return func(cfg *Config) error {
		if maxCost < 0 || ttl < 0 {
			return errors.New("embedding cache size and TTL cannot be negative")
		}
		cfg.EmbeddingCache = &EmbeddingCacheConfig{MaxCost: maxCost, TTL: ttl}
		return nil
	}
}

// WithLRUStore sets up an LRU in-memory checkpoint store
func WithLRUStore(capacity int) Option {
	return func(cfg *Config) error {
		store, err := backends.NewLRUBackend(types.StoreConfig{
			Capacity: capacity,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// With2QStore sets up a 2Q in-memory checkpoint store
func With2QStore(capacity int) Option {
	return func(cfg *Config) error {
		store, err := backends.New2QBackend(types.StoreConfig{
			Capacity: capacity,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithExpirableStore sets up an in-memory checkpoint store whose entries expire
func WithExpirableStore(capacity int, ttl time.Duration) Option {
	return func(cfg *Config) error {
		store, err := backends.NewExpirableBackend(types.StoreConfig{
			Capacity: capacity,
			TTL:      ttl,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithRedisStore sets up a Redis checkpoint store
func WithRedisStore(addr string, db int) Option {
	return func(cfg *Config) error {
		store, err := backends.NewRedisBackend(types.StoreConfig{
			ConnectionString: addr,
			Database:         db,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithSQLiteStore sets up a SQLite checkpoint store at path
func WithSQLiteStore(path string) Option {
	return func(cfg *Config) error {
		store, err := backends.NewSQLiteBackend(types.StoreConfig{
			Path: path,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithCustomStore allows using a pre-configured checkpoint store
func WithCustomStore(store types.CheckpointStore) Option {
	return func(cfg *Config) error {
		if store == nil {
			return errors.New("store cannot be nil")
		}
		cfg.Store = store
		return nil
	}
}
