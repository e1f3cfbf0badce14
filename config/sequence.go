package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SequenceConfig represents a complete step sequence loaded from YAML
type SequenceConfig struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Settle      bool           `yaml:"settle"`              // Capture step errors as results
	Variables   map[string]any `yaml:"variables,omitempty"` // Reusable values ($var:name)
	Context     map[string]any `yaml:"context,omitempty"`   // Initial shared context
	Steps       []StepConfig   `yaml:"steps"`
}

// StepConfig represents a single step of a sequence
type StepConfig struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`   // Registered step type
	Config map[string]any `yaml:"config"` // Step specific configuration
}

// ParseSequence decodes a sequence definition and validates it
func ParseSequence(data []byte) (*SequenceConfig, error) {
	var cfg SequenceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadSequenceFile reads a sequence from disk. When the file does not
// name the sequence, the file name is used
func LoadSequenceFile(path string) (*SequenceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	cfg, err := ParseSequence(data)
	if err != nil {
		return nil, fmt.Errorf("invalid sequence %s: %w", path, err)
	}

	if cfg.Name == "" {
		base := filepath.Base(path)
		cfg.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return cfg, nil
}

// Validate checks that every step declares a type
func (sc *SequenceConfig) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("sequence %q must have at least one step", sc.Name)
	}

	for i, step := range sc.Steps {
		if step.Type == "" {
			return fmt.Errorf("step %d (%s): type is required", i, step.Name)
		}
	}

	return nil
}

// InitialContext returns a copy of the configured context so that runs
// of the same definition never share state
func (sc *SequenceConfig) InitialContext() map[string]any {
	ctx := make(map[string]any, len(sc.Context))
	for k, v := range sc.Context {
		ctx[k] = v
	}
	return ctx
}
