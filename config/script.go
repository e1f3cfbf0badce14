package config

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/simon020286/go-step-iterator/models"
)

// Script is a JavaScript function body evaluated with the shared context
// bound as `this` (also reachable as `ctx`) and the sequence variables as
// `$vars`
type Script struct {
	runtime *goja.Runtime
	this    goja.Value
}

// NewScript prepares a fresh runtime for one evaluation
func NewScript(scope Scope) (*Script, error) {
	runtime := goja.New()

	ctx := scope.Context
	if ctx == nil {
		ctx = models.NewContext()
	}
	// Plain map so that goja writes through to the shared context
	this := runtime.ToValue(map[string]any(ctx))

	if err := runtime.Set("ctx", this); err != nil {
		return nil, fmt.Errorf("failed to set context: %w", err)
	}
	if scope.Variables != nil {
		if err := runtime.Set("$vars", scope.Variables); err != nil {
			return nil, fmt.Errorf("failed to set variables: %w", err)
		}
	}

	return &Script{runtime: runtime, this: this}, nil
}

// Set exposes a Go value to the script under name
func (s *Script) Set(name string, value any) error {
	return s.runtime.Set(name, value)
}

// ToValue converts a Go value for the script runtime
func (s *Script) ToValue(value any) goja.Value {
	return s.runtime.ToValue(value)
}

// Call compiles body as function(params...) and calls it with `this`
// bound to the context. The returned value is exported to Go;
// undefined and null become nil
func (s *Script) Call(body string, params []string, args ...goja.Value) (any, error) {
	source := "(function("
	for i, p := range params {
		if i > 0 {
			source += ", "
		}
		source += p
	}
	source += ") {\n" + body + "\n})"

	compiled, err := s.runtime.RunString(source)
	if err != nil {
		return nil, fmt.Errorf("JavaScript compile error: %w", err)
	}
	fn, ok := goja.AssertFunction(compiled)
	if !ok {
		return nil, fmt.Errorf("JavaScript source is not a function")
	}

	result, err := fn(s.this, args...)
	if err != nil {
		return nil, s.Error(err)
	}
	return result.Export(), nil
}

// Error turns a JavaScript exception into a ScriptError carrying the
// thrown message; other errors are returned unchanged
func (s *Script) Error(err error) error {
	exc, ok := err.(*goja.Exception)
	if !ok {
		return err
	}
	return &models.ScriptError{Message: s.Message(exc.Value())}
}

// Message extracts `message` from an Error object, or stringifies value
func (s *Script) Message(value goja.Value) string {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return ""
	}
	if obj, ok := value.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	return value.String()
}
