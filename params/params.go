// Package params provides a key-value configuration object that constructors
// consume key by key, so that typos and leftover keys surface as errors.
package params

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/botirk38/simfunc/types"
	"gopkg.in/yaml.v3"
)

// Params is a mutable view over a configuration section. Pop methods remove
// the key they read. Params is not safe for concurrent use.
type Params struct {
	values  map[string]any
	history string
}

// New wraps a copy of values.
func New(values map[string]any) *Params {
	return newWithHistory(values, "")
}

func newWithHistory(values map[string]any, history string) *Params {
	return &Params{values: normalizeMap(values), history: history}
}

// Parse decodes YAML (and therefore JSON) into Params.
func Parse(data []byte) (*Params, error) {
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	return New(values), nil
}

// FromFile loads a .yaml, .yml or .json file.
func FromFile(path string) (*Params, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}
	return Parse(data)
}

func (p *Params) path(key string) string {
	return p.history + key
}

func (p *Params) log(key string, value any) {
	slog.Debug("param popped", "key", p.path(key), "value", value)
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Len returns the number of remaining keys.
func (p *Params) Len() int { return len(p.values) }

// Keys returns the remaining keys, sorted.
func (p *Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsMap returns a deep copy of the remaining values.
func (p *Params) AsMap() map[string]any {
	return normalizeMap(p.values)
}

// Duplicate returns an independent copy of p.
func (p *Params) Duplicate() *Params {
	return newWithHistory(p.values, p.history)
}

// Pop removes and returns a required value.
func (p *Params) Pop(key string) (any, error) {
	v, ok := p.values[key]
	if !ok {
		return nil, types.NewConfigurationError(ErrMissingKey, "%q", p.path(key))
	}
	delete(p.values, key)
	p.log(key, v)
	return v, nil
}

// PopDefault removes and returns a value, or def when it is absent.
func (p *Params) PopDefault(key string, def any) any {
	v, ok := p.values[key]
	if !ok {
		p.log(key, def)
		return def
	}
	delete(p.values, key)
	p.log(key, v)
	return v
}

// PopInt removes and returns a required integer.
func (p *Params) PopInt(key string) (int, error) {
	v, err := p.Pop(key)
	if err != nil {
		return 0, err
	}
	return p.asInt(key, v)
}

// PopIntDefault removes and returns an integer, or def when absent.
func (p *Params) PopIntDefault(key string, def int) (int, error) {
	if !p.Has(key) {
		p.log(key, def)
		return def, nil
	}
	return p.PopInt(key)
}

// PopString removes and returns a required string.
func (p *Params) PopString(key string) (string, error) {
	v, err := p.Pop(key)
	if err != nil {
		return "", err
	}
	return p.asString(key, v)
}

// PopStringDefault removes and returns a string, or def when absent.
func (p *Params) PopStringDefault(key, def string) (string, error) {
	if !p.Has(key) {
		p.log(key, def)
		return def, nil
	}
	return p.PopString(key)
}

// PopFloatDefault removes and returns a number, or def when absent.
func (p *Params) PopFloatDefault(key string, def float64) (float64, error) {
	if !p.Has(key) {
		p.log(key, def)
		return def, nil
	}
	v, _ := p.Pop(key)
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, p.wrongType(key, "number", v)
}

// PopDurationDefault removes and returns a duration, or def when absent. A
// string is parsed with time.ParseDuration ("90s", "1h30m"); a bare number is
// a count of seconds.
func (p *Params) PopDurationDefault(key string, def time.Duration) (time.Duration, error) {
	if !p.Has(key) {
		p.log(key, def)
		return def, nil
	}
	v, _ := p.Pop(key)
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, types.NewConfigurationError(ErrWrongType, "%q: invalid duration %q", p.path(key), s)
		}
		return d, nil
	}
	if f, ok := v.(float64); ok && f != math.Trunc(f) {
		if math.IsNaN(f) || math.Abs(f) > float64(math.MaxInt64)/float64(time.Second) {
			return 0, p.wrongType(key, "duration", v)
		}
		return time.Duration(f * float64(time.Second)), nil
	}
	secs, err := p.asInt(key, v)
	if err != nil || int64(secs) > math.MaxInt64/int64(time.Second) || int64(secs) < math.MinInt64/int64(time.Second) {
		return 0, p.wrongType(key, "duration", v)
	}
	return time.Duration(secs) * time.Second, nil
}

// PopBoolDefault removes and returns a boolean, or def when absent.
func (p *Params) PopBoolDefault(key string, def bool) (bool, error) {
	if !p.Has(key) {
		p.log(key, def)
		return def, nil
	}
	v, _ := p.Pop(key)
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err == nil {
			return parsed, nil
		}
	}
	return false, p.wrongType(key, "bool", v)
}

// PopParams removes a nested section and returns it as Params. A missing
// section yields empty Params.
func (p *Params) PopParams(key string) (*Params, error) {
	v := p.PopDefault(key, nil)
	if v == nil {
		return newWithHistory(nil, p.path(key)+"."), nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, p.wrongType(key, "mapping", v)
	}
	return newWithHistory(m, p.path(key)+"."), nil
}

// PopChoice removes a string that must be one of choices. An absent key yields
// def; pass def == "" to make the key required.
func (p *Params) PopChoice(key string, choices []string, def string) (string, error) {
	var (
		v   string
		err error
	)
	if def == "" {
		v, err = p.PopString(key)
	} else {
		v, err = p.PopStringDefault(key, def)
	}
	if err != nil {
		return "", err
	}
	for _, c := range choices {
		if c == v {
			return v, nil
		}
	}
	return "", types.NewConfigurationError(ErrInvalidChoice, "%q = %q not in %v", p.path(key), v, choices)
}

// AssertEmpty fails if any key was not consumed. name identifies the consumer.
func (p *Params) AssertEmpty(name string) error {
	if len(p.values) == 0 {
		return nil
	}
	return types.NewConfigurationError(ErrExtraParameters, "%s got unexpected keys %v", name, p.prefixedKeys())
}

func (p *Params) prefixedKeys() []string {
	keys := p.Keys()
	for i, k := range keys {
		keys[i] = p.path(k)
	}
	return keys
}

func (p *Params) asInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		if n <= math.MaxInt {
			return int(n), nil
		}
	case float64:
		// -MinInt is the first float past MaxInt; MaxInt itself is not representable.
		if n == math.Trunc(n) && n >= math.MinInt && n < -float64(math.MinInt) {
			return int(n), nil
		}
	case string:
		i, err := strconv.Atoi(n)
		if err == nil {
			return i, nil
		}
	}
	return 0, p.wrongType(key, "int", v)
}

func (p *Params) asString(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", p.wrongType(key, "string", v)
}

func (p *Params) wrongType(key, want string, v any) error {
	return types.NewConfigurationError(ErrWrongType, "%q: want %s, got %T", p.path(key), want, v)
}

// normalizeMap deep-copies m, converting map[any]any sections to map[string]any.
func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		return normalizeMap(vv)
	case map[any]any:
		m := make(map[string]any, len(vv))
		for k, val := range vv {
			m[fmt.Sprint(k)] = val
		}
		return normalizeMap(m)
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
