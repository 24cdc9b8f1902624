package similarity

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/botirk38/simfunc/params"
	"github.com/botirk38/simfunc/types"
)

// DefaultType is used when params carry no "type" key.
const DefaultType = "dot_product"

// Constructor builds a Function from the params left after "type" was popped.
type Constructor func(p *params.Params) (Function, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

func init() {
	for _, m := range []Metric{DotProduct, Cosine, Euclidean, Manhattan, Pearson} {
		m := m
		mustRegister(m.name, func(*params.Params) (Function, error) { return m, nil })
	}
	mustRegister(LinearType, linearFromParams)
}

func mustRegister(name string, ctor Constructor) {
	if err := Register(name, ctor); err != nil {
		panic(err)
	}
}

// Register makes a similarity function selectable by name in FromParams.
func Register(name string, ctor Constructor) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		return types.NewConfigurationError(ErrDuplicateFunction, "%q", name)
	}
	registry[name] = ctor
	return nil
}

// ByName returns the constructor registered under name.
func ByName(name string) (Constructor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, types.NewConfigurationError(ErrUnknownFunction, "%q", name)
	}
	return ctor, nil
}

// Names returns the registered names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromParams pops "type" (default DefaultType), builds the registered
// function from the remaining keys and rejects any key it did not consume.
func FromParams(p *params.Params) (Function, error) {
	name, err := p.PopChoice("type", Names(), DefaultType)
	if err != nil {
		return nil, err
	}
	ctor, err := ByName(name)
	if err != nil {
		return nil, err
	}
	fn, err := ctor(p)
	if err != nil {
		return nil, err
	}
	if err := p.AssertEmpty(name); err != nil {
		return nil, err
	}
	slog.Debug("similarity function constructed", "type", name)
	return fn, nil
}
