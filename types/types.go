package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Checkpoint holds the learned parameters of a similarity function together with
// the configuration needed to rebuild it.
type Checkpoint struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	Weights   []float64      `json:"weights"`
	Bias      float64        `json:"bias"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the checkpoint.
func (c Checkpoint) Clone() Checkpoint {
	out := c
	if c.Weights != nil {
		out.Weights = append([]float64(nil), c.Weights...)
	}
	out.Config = cloneMap(c.Config)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = cloneMap(vv)
		case []any:
			out[k] = append([]any(nil), vv...)
		default:
			out[k] = v
		}
	}
	return out
}

// CheckpointStore defines the interface for checkpoint storage backends.
// This allows for pluggable storage systems including in-memory, Redis and SQLite.
type CheckpointStore interface {
	// Save stores or replaces the checkpoint under its name
	Save(ctx context.Context, cp Checkpoint) error

	// Load retrieves a checkpoint by name
	Load(ctx context.Context, name string) (Checkpoint, bool, error)

	// Delete removes a checkpoint by name
	Delete(ctx context.Context, name string) error

	// Contains checks if a checkpoint exists without retrieving it
	Contains(ctx context.Context, name string) (bool, error)

	// Names returns the names of all stored checkpoints
	Names(ctx context.Context) ([]string, error)

	// Len returns the number of stored checkpoints
	Len(ctx context.Context) (int, error)

	// Flush removes all checkpoints
	Flush(ctx context.Context) error

	// Close releases resources held by the store
	Close() error
}

// StoreConfig provides configuration options for checkpoint stores
type StoreConfig struct {
	// For in-memory stores
	Capacity int
	TTL      time.Duration

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// For SQLite
	Path string

	// Additional options
	Options map[string]any
}

// StoreType represents the type of checkpoint store
type StoreType string

const (
	StoreLRU       StoreType = "lru"
	Store2Q        StoreType = "2q"
	StoreExpirable StoreType = "expirable"
	StoreRedis     StoreType = "redis"
	StoreSQLite    StoreType = "sqlite"
)

// EmbeddingProvider defines the interface all embedding providers must satisfy.
type EmbeddingProvider interface {
	// EmbedText turns a piece of text into its embedding vector.
	EmbedText(ctx context.Context, text string) ([]float64, error)
	// GetMaxTokens returns the largest input the provider accepts, in tokens.
	GetMaxTokens() int
	// Close frees any resources held by the provider.
	Close()
}

// BatchEmbedder is implemented by providers that embed several texts per request.
type BatchEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// TokenCounter counts tokens the way a provider's model would.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// ProviderType represents the type of embedding provider
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
)
