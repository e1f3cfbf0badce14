package steps

import (
	"fmt"

	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

// output is embedded by steps that can copy their result into the
// shared context under the key configured as "into"
type output struct {
	into string
	vars map[string]any
}

func newOutput(cfg map[string]any, vars map[string]any) (output, error) {
	out := output{vars: vars}
	if raw, ok := cfg["into"]; ok {
		into, ok := raw.(string)
		if !ok {
			return out, fmt.Errorf("'into' must be a string, got %T", raw)
		}
		out.into = into
	}
	return out, nil
}

func (o output) scope(ctx models.Context) config.Scope {
	return config.Scope{Context: ctx, Variables: o.vars}
}

func (o output) store(ctx models.Context, value any) {
	if o.into != "" {
		ctx.Set(o.into, value)
	}
}
