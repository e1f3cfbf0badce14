package steps

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

// JsStep runs a JavaScript function body with the shared context bound
// as `this`. The returned value is the step result; a throw is its error
type JsStep struct {
	output
	code string
}

func (s *JsStep) Run(ctx models.Context) (any, error) {
	script, err := config.NewScript(s.scope(ctx))
	if err != nil {
		return nil, err
	}

	result, err := script.Call(s.code, nil)
	if err != nil {
		return nil, err
	}
	s.store(ctx, result)
	return result, nil
}

// JsAsyncStep runs a JavaScript function body receiving a `done(err, result)`
// callback. The script has no event loop, so done must be called before
// the body returns
type JsAsyncStep struct {
	output
	code string
}

var errDoneNotCalled = errors.New("js_async step returned without calling done")

func (s *JsAsyncStep) Run(ctx models.Context, done models.Done) {
	script, err := config.NewScript(s.scope(ctx))
	if err != nil {
		done(err, nil)
		return
	}

	called := false
	callback := func(call goja.FunctionCall) goja.Value {
		if called {
			return goja.Undefined()
		}
		called = true

		errArg := call.Argument(0)
		if !goja.IsUndefined(errArg) && !goja.IsNull(errArg) {
			done(&models.ScriptError{Message: script.Message(errArg)}, nil)
			return goja.Undefined()
		}

		result := call.Argument(1).Export()
		s.store(ctx, result)
		done(nil, result)
		return goja.Undefined()
	}

	_, err = script.Call(s.code, []string{"done"}, script.ToValue(callback))
	if called {
		return
	}
	if err != nil {
		done(err, nil)
		return
	}
	done(errDoneNotCalled, nil)
}

func init() {
	builder.RegisterStepType("js", func(def builder.Definition) (*models.Step, error) {
		code, err := builder.StringConfig(def.Config, "code")
		if err != nil {
			return nil, fmt.Errorf("js step: %w", err)
		}
		out, err := newOutput(def.Config, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &JsStep{output: out, code: code}
		return models.Sync(s.Run), nil
	})

	builder.RegisterStepType("js_async", func(def builder.Definition) (*models.Step, error) {
		code, err := builder.StringConfig(def.Config, "code")
		if err != nil {
			return nil, fmt.Errorf("js_async step: %w", err)
		}
		out, err := newOutput(def.Config, def.Variables)
		if err != nil {
			return nil, err
		}

		s := &JsAsyncStep{output: out, code: code}
		return models.Async(s.Run), nil
	})
}

// Script declares a synchronous JavaScript step in code
func Script(code string) *models.Step {
	s := &JsStep{code: code}
	return models.Sync(s.Run)
}

// AsyncScript declares an asynchronous JavaScript step in code
func AsyncScript(code string) *models.Step {
	s := &JsAsyncStep{code: code}
	return models.Async(s.Run)
}
