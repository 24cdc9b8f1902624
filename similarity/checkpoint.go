package similarity

import (
	"fmt"
	"time"

	"github.com/botirk38/simfunc/params"
	"github.com/botirk38/simfunc/types"
	"github.com/google/uuid"
)

// Snapshot captures fn's configuration and, for learnable functions, its
// current weights and bias.
func Snapshot(name string, fn Function) (types.Checkpoint, error) {
	c, ok := fn.(Configurable)
	if !ok {
		return types.Checkpoint{}, fmt.Errorf("%w: %T", ErrNotConfigurable, fn)
	}
	config := c.Config()
	if act, ok := config["activation"]; ok && act == "" {
		return types.Checkpoint{}, fmt.Errorf("%w: custom activation has no registered name", ErrNotConfigurable)
	}

	cp := types.Checkpoint{
		ID:        uuid.New(),
		Name:      name,
		Config:    config,
		UpdatedAt: time.Now().UTC(),
	}
	if l, ok := fn.(Learnable); ok {
		cp.Weights, cp.Bias = l.Parameters()
	}
	return cp, nil
}

// Restore rebuilds the function described by cp and loads its parameters.
func Restore(cp types.Checkpoint) (Function, error) {
	fn, err := FromParams(params.New(cp.Config))
	if err != nil {
		return nil, fmt.Errorf("checkpoint %q: %w", cp.Name, err)
	}

	l, ok := fn.(Learnable)
	if !ok {
		if len(cp.Weights) > 0 {
			return nil, fmt.Errorf("checkpoint %q: %w: %T has no parameters", cp.Name, ErrParameterShape, fn)
		}
		return fn, nil
	}
	if err := l.SetParameters(cp.Weights, cp.Bias); err != nil {
		return nil, fmt.Errorf("checkpoint %q: %w", cp.Name, err)
	}
	return fn, nil
}
