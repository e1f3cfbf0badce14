package steps

import (
	"fmt"
	"os"

	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

// FileStep reads a file and returns its content as a string
type FileStep struct {
	output
	path config.ValueSpec
}

func (s *FileStep) Run(ctx models.Context) (any, error) {
	pathResolved, err := s.path.Resolve(s.scope(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	content, err := os.ReadFile(fmt.Sprintf("%v", pathResolved))
	if err != nil {
		return nil, err
	}

	s.store(ctx, string(content))
	return string(content), nil
}

func init() {
	builder.RegisterStepType("file", func(def builder.Definition) (*models.Step, error) {
		path, err := builder.ValueConfig(def.Config, "path")
		if err != nil {
			return nil, fmt.Errorf("file step: %w", err)
		}
		out, err := newOutput(def.Config, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &FileStep{output: out, path: path}
		return models.Sync(s.Run), nil
	})
}
