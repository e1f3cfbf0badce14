package steps

import (
	"fmt"
	"time"

	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

// DelayStep completes after the configured number of milliseconds, from a
// timer goroutine. The result is the delay that was applied
type DelayStep struct {
	output
	delay config.ValueSpec
}

func (s *DelayStep) Run(ctx models.Context, done models.Done) {
	delayResolved, err := s.delay.Resolve(s.scope(ctx))
	if err != nil {
		done(fmt.Errorf("failed to resolve delay: %w", err), nil)
		return
	}

	var delayMS int
	switch v := delayResolved.(type) {
	case int:
		delayMS = v
	case int64:
		delayMS = int(v)
	case float64:
		delayMS = int(v)
	default:
		done(fmt.Errorf("delay must be a number, got %T", delayResolved), nil)
		return
	}
	if delayMS < 0 {
		done(fmt.Errorf("delay must not be negative, got %d", delayMS), nil)
		return
	}

	time.AfterFunc(time.Duration(delayMS)*time.Millisecond, func() {
		s.store(ctx, delayMS)
		done(nil, delayMS)
	})
}

func init() {
	builder.RegisterStepType("delay", func(def builder.Definition) (*models.Step, error) {
		delay, err := builder.ValueConfig(def.Config, "ms")
		if err != nil {
			return nil, fmt.Errorf("delay step: %w", err)
		}
		out, err := newOutput(def.Config, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &DelayStep{output: out, delay: delay}
		return models.Async(s.Run), nil
	})
}
