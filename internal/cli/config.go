package cli

import (
	"context"

	"github.com/botirk38/simfunc/backends"
	"github.com/botirk38/simfunc/params"
	"github.com/botirk38/simfunc/providers"
	"github.com/botirk38/simfunc/types"
)

// DefaultStorePath is where checkpoints live when no store is configured.
const DefaultStorePath = "simfunc.db"

// fileConfig is the parsed --config file. Each section is consumed by the
// component it configures.
type fileConfig struct {
	similarity *params.Params
	store      *params.Params
	provider   *params.Params
}

// loadConfig reads path, or returns empty sections when path is empty.
func loadConfig(path string) (*fileConfig, error) {
	root := params.New(nil)
	if path != "" {
		var err error
		if root, err = params.FromFile(path); err != nil {
			return nil, err
		}
	}

	cfg := &fileConfig{}
	var err error
	if cfg.similarity, err = root.PopParams("similarity"); err != nil {
		return nil, err
	}
	if cfg.store, err = root.PopParams("store"); err != nil {
		return nil, err
	}
	if cfg.provider, err = root.PopParams("provider"); err != nil {
		return nil, err
	}
	if err := root.AssertEmpty("config"); err != nil {
		return nil, err
	}
	return cfg, nil
}

var storeTypes = []string{
	string(types.StoreLRU),
	string(types.Store2Q),
	string(types.StoreExpirable),
	string(types.StoreRedis),
	string(types.StoreSQLite),
}

// openStore builds the checkpoint store from the store section. The section
// is duplicated so it can be opened more than once.
func (c *fileConfig) openStore() (types.CheckpointStore, error) {
	p := c.store.Duplicate()

	storeType, err := p.PopChoice("type", storeTypes, string(types.StoreSQLite))
	if err != nil {
		return nil, err
	}

	var config types.StoreConfig
	if config.Capacity, err = p.PopIntDefault("capacity", 128); err != nil {
		return nil, err
	}
	if config.TTL, err = p.PopDurationDefault("ttl", 0); err != nil {
		return nil, err
	}
	if config.Path, err = p.PopStringDefault("path", DefaultStorePath); err != nil {
		return nil, err
	}
	if config.ConnectionString, err = p.PopStringDefault("connection_string", "localhost:6379"); err != nil {
		return nil, err
	}
	if config.Username, err = p.PopStringDefault("username", ""); err != nil {
		return nil, err
	}
	if config.Password, err = p.PopStringDefault("password", ""); err != nil {
		return nil, err
	}
	if config.Database, err = p.PopIntDefault("database", 0); err != nil {
		return nil, err
	}
	prefix, err := p.PopStringDefault("prefix", "")
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		config.Options = map[string]any{"prefix": prefix}
	}
	if err := p.AssertEmpty("store"); err != nil {
		return nil, err
	}

	factory := &backends.BackendFactory{}
	return factory.NewBackend(types.StoreType(storeType), config)
}

// newProvider builds the embedding provider from the provider section.
func (c *fileConfig) newProvider(ctx context.Context) (types.EmbeddingProvider, error) {
	p := c.provider.Duplicate()

	providerType, err := p.PopChoice("type", []string{string(types.ProviderOpenAI), string(types.ProviderGemini)}, string(types.ProviderOpenAI))
	if err != nil {
		return nil, err
	}

	var config providers.Config
	if config.APIKey, err = p.PopStringDefault("api_key", ""); err != nil {
		return nil, err
	}
	if config.BaseURL, err = p.PopStringDefault("base_url", ""); err != nil {
		return nil, err
	}
	if config.Model, err = p.PopStringDefault("model", ""); err != nil {
		return nil, err
	}
	if config.Dimensions, err = p.PopIntDefault("dimensions", 0); err != nil {
		return nil, err
	}
	if err := p.AssertEmpty("provider"); err != nil {
		return nil, err
	}

	return providers.NewProvider(ctx, types.ProviderType(providerType), config)
}
