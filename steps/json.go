package steps

import (
	"encoding/json"
	"fmt"

	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

// JsonStep parses a JSON string (objects, arrays and primitives)
type JsonStep struct {
	output
	data config.ValueSpec
}

func (s *JsonStep) Run(ctx models.Context) (any, error) {
	dataResolved, err := s.data.Resolve(s.scope(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data: %w", err)
	}
	dataString := fmt.Sprintf("%v", dataResolved)

	var jsonData any
	if err := json.Unmarshal([]byte(dataString), &jsonData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON data: %w", err)
	}

	s.store(ctx, jsonData)
	return jsonData, nil
}

func init() {
	builder.RegisterStepType("json", func(def builder.Definition) (*models.Step, error) {
		data, err := builder.ValueConfig(def.Config, "data")
		if err != nil {
			return nil, fmt.Errorf("json step: %w", err)
		}
		out, err := newOutput(def.Config, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &JsonStep{output: out, data: data}
		return models.Sync(s.Run), nil
	})
}
