package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/botirk38/simfunc/types"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces checkpoint keys in Redis
const DefaultPrefix = "simfunc:checkpoint:"

// RedisBackend implements CheckpointStore using RedisJSON documents
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// redisDocument represents a checkpoint stored in Redis
type redisDocument struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	Weights   []float64      `json:"weights"`
	Bias      float64        `json:"bias"`
	Timestamp int64          `json:"timestamp"`
}

// parseRedisURL parses a Redis URL and returns redis.Options
func parseRedisURL(connectionString string) (*redis.Options, error) {
	// Handle redis:// or rediss:// URLs
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{
			Addr: parsedURL.Host,
		}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		// Database number from path
		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			db, err := strconv.Atoi(dbStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Redis database %q: %w", dbStr, err)
			}
			opts.DB = db
		}

		return opts, nil
	}

	if connectionString == "" {
		return nil, errors.New("redis connection string is required")
	}

	// Simple address format (host:port)
	return &redis.Options{
		Addr: connectionString,
	}, nil
}

// NewRedisBackend connects to Redis and returns a checkpoint store
func NewRedisBackend(config types.StoreConfig) (*RedisBackend, error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	// Explicit config values win over the URL
	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := DefaultPrefix
	if prefixOpt, ok := config.Options["prefix"]; ok {
		if p, ok := prefixOpt.(string); ok && p != "" {
			prefix = p
		}
	}

	return &RedisBackend{
		client: client,
		prefix: prefix,
	}, nil
}

// keyString converts a checkpoint name to a Redis key
func (b *RedisBackend) keyString(name string) string {
	return b.prefix + name
}

// scanKeys walks all keys under the prefix using SCAN
func (b *RedisBackend) scanKeys(ctx context.Context) ([]string, error) {
	pattern := b.prefix + "*"
	var keys []string
	var cursor uint64

	for {
		result, nextCursor, err := b.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys from Redis: %w", err)
		}

		keys = append(keys, result...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Save stores a checkpoint using JSON.SET
func (b *RedisBackend) Save(ctx context.Context, cp types.Checkpoint) error {
	if cp.Name == "" {
		return errors.New("checkpoint name cannot be empty")
	}

	doc := redisDocument{
		ID:        cp.ID.String(),
		Name:      cp.Name,
		Config:    cp.Config,
		Weights:   cp.Weights,
		Bias:      cp.Bias,
		Timestamp: cp.UpdatedAt.UnixNano(),
	}

	if _, err := b.client.JSONSet(ctx, b.keyString(cp.Name), "$", doc).Result(); err != nil {
		return fmt.Errorf("failed to save checkpoint in Redis: %w", err)
	}

	slog.Debug("checkpoint saved", "store", "redis", "name", cp.Name, "weights", len(cp.Weights))
	return nil
}

// Load retrieves a checkpoint using JSON.GET
func (b *RedisBackend) Load(ctx context.Context, name string) (types.Checkpoint, bool, error) {
	result, err := b.client.JSONGet(ctx, b.keyString(name), "$").Result()
	if err == redis.Nil || (err == nil && result == "") {
		return types.Checkpoint{}, false, nil
	}
	if err != nil {
		return types.Checkpoint{}, false, fmt.Errorf("failed to load checkpoint from Redis: %w", err)
	}

	var docs []redisDocument
	if err := json.Unmarshal([]byte(result), &docs); err != nil {
		return types.Checkpoint{}, false, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	if len(docs) == 0 {
		return types.Checkpoint{}, false, nil
	}

	doc := docs[0]
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return types.Checkpoint{}, false, fmt.Errorf("invalid checkpoint id %q: %w", doc.ID, err)
	}

	return types.Checkpoint{
		ID:        id,
		Name:      doc.Name,
		Config:    doc.Config,
		Weights:   doc.Weights,
		Bias:      doc.Bias,
		UpdatedAt: time.Unix(0, doc.Timestamp).UTC(),
	}, true, nil
}

// Delete removes a checkpoint from Redis
func (b *RedisBackend) Delete(ctx context.Context, name string) error {
	if err := b.client.Del(ctx, b.keyString(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint from Redis: %w", err)
	}
	return nil
}

// Contains checks if a checkpoint exists in Redis
func (b *RedisBackend) Contains(ctx context.Context, name string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.keyString(name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence in Redis: %w", err)
	}
	return exists > 0, nil
}

// Names returns all checkpoint names under the prefix, sorted
func (b *RedisBackend) Names(ctx context.Context) ([]string, error) {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if name := strings.TrimPrefix(key, b.prefix); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Len returns the number of checkpoints under the prefix
func (b *RedisBackend) Len(ctx context.Context) (int, error) {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Flush removes all checkpoints under the prefix
func (b *RedisBackend) Flush(ctx context.Context) error {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := b.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to flush Redis: %w", err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
