package builder

import (
	"fmt"

	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

// CreateStep creates a step based on type and definition
func CreateStep(stepType string, def Definition) (*models.Step, error) {
	factory, err := GetStepFactory(stepType)
	if err != nil {
		return nil, err
	}

	step, err := factory(def)
	if err != nil {
		return nil, err
	}
	if step.Name == "" {
		step.Named(def.Name)
	}
	return step, nil
}

// BuildSteps creates the steps of a sequence in declaration order.
// Unnamed steps are named "<type>#<index>"
func BuildSteps(cfg *config.SequenceConfig) ([]*models.Step, error) {
	steps := make([]*models.Step, 0, len(cfg.Steps))

	for i, sc := range cfg.Steps {
		name := sc.Name
		if name == "" {
			name = fmt.Sprintf("%s#%d", sc.Type, i)
		}

		stepConfig := sc.Config
		if stepConfig == nil {
			stepConfig = map[string]any{}
		}

		step, err := CreateStep(sc.Type, Definition{
			Name:      name,
			Config:    stepConfig,
			Variables: cfg.Variables,
		})
		if err != nil {
			return nil, fmt.Errorf("step '%s': %w", name, err)
		}
		steps = append(steps, step)
	}

	return steps, nil
}

// StringConfig reads a required string key from a step configuration
func StringConfig(cfg map[string]any, key string) (string, error) {
	raw, ok := cfg[key]
	if !ok {
		return "", models.ErrMissingConfig(key)
	}
	str, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("'%s' must be a string, got %T", key, raw)
	}
	return str, nil
}

// ValueConfig reads a required key as a ValueSpec
func ValueConfig(cfg map[string]any, key string) (config.ValueSpec, error) {
	raw, ok := cfg[key]
	if !ok {
		return nil, models.ErrMissingConfig(key)
	}
	return config.ParseValue(raw), nil
}
