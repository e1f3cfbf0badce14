package steps

import (
	"fmt"

	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

// SetStep writes resolved values into the shared context. The result is
// the map of values written
type SetStep struct {
	output
	values map[string]config.ValueSpec
}

func (s *SetStep) Run(ctx models.Context) (any, error) {
	resolved, err := config.ResolveAll(s.values, s.scope(ctx))
	if err != nil {
		return nil, err
	}
	for k, v := range resolved {
		ctx.Set(k, v)
	}
	s.store(ctx, resolved)
	return resolved, nil
}

// EchoStep returns a resolved value without touching the context
type EchoStep struct {
	output
	value config.ValueSpec
}

func (s *EchoStep) Run(ctx models.Context) (any, error) {
	if s.value == nil {
		return nil, nil
	}
	result, err := s.value.Resolve(s.scope(ctx))
	if err != nil {
		return nil, err
	}
	s.store(ctx, result)
	return result, nil
}

// FailStep always fails with the configured message
type FailStep struct {
	output
	message config.ValueSpec
}

func (s *FailStep) Run(ctx models.Context) (any, error) {
	msg, err := s.message.Resolve(s.scope(ctx))
	if err != nil {
		return nil, err
	}
	return nil, &models.ScriptError{Message: fmt.Sprintf("%v", msg)}
}

func init() {
	builder.RegisterStepType("set", func(def builder.Definition) (*models.Step, error) {
		raw, ok := def.Config["values"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("set step: %w", models.ErrMissingConfig("values"))
		}
		values := make(map[string]config.ValueSpec, len(raw))
		for k, v := range raw {
			values[k] = config.ParseValue(v)
		}
		out, err := newOutput(def.Config, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &SetStep{output: out, values: values}
		return models.Sync(s.Run), nil
	})

	builder.RegisterStepType("echo", func(def builder.Definition) (*models.Step, error) {
		out, err := newOutput(def.Config, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &EchoStep{output: out}
		if raw, ok := def.Config["value"]; ok {
			s.value = config.ParseValue(raw)
		}
		return models.Sync(s.Run), nil
	})

	builder.RegisterStepType("fail", func(def builder.Definition) (*models.Step, error) {
		message := config.ParseValue("step failed")
		if raw, ok := def.Config["message"]; ok {
			message = config.ParseValue(raw)
		}

		s := &FailStep{message: message, output: output{vars: def.Variables}}
		return models.Sync(s.Run), nil
	})
}
