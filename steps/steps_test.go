package steps_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iterator "github.com/simon020286/go-step-iterator"
	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
	"github.com/simon020286/go-step-iterator/steps"
)

func runSteps(t *testing.T, base *iterator.Base, opts *iterator.Options, list ...*models.Step) ([]any, error) {
	t.Helper()
	return iterator.RunSeries(context.Background(), list, base.MakeIterator(opts))
}

func buildStep(t *testing.T, stepType string, cfg map[string]any) *models.Step {
	t.Helper()
	step, err := builder.CreateStep(stepType, builder.Definition{Name: stepType, Config: cfg})
	require.NoError(t, err)
	return step
}

func TestScript_ThisIsSharedContext(t *testing.T) {
	base := iterator.New(nil)

	results, err := runSteps(t, base, nil,
		steps.Script("this.foo = 'bar'; return this.foo"),
		steps.AsyncScript("if (this.foo !== 'bar') throw new Error('no foo'); this.bar = 'baz'; done(null, this.bar)"),
		steps.Script("if (this.bar !== 'baz') throw new Error('no bar'); return 'qux'"),
	)
	require.NoError(t, err)
	assert.Equal(t, []any{"bar", "baz", "qux"}, results)
	assert.Equal(t, "bar", base.Context().Get("foo"))
}

func TestScript_UndefinedResult(t *testing.T) {
	results, err := runSteps(t, iterator.New(nil), nil, steps.Script("this.x = 1"))
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, results)
}

func TestScript_ThrowSettled(t *testing.T) {
	results, err := runSteps(t, iterator.New(nil), &iterator.Options{Settle: true},
		steps.Script("return 1"),
		steps.Script("throw new Error('two err')"),
		steps.AsyncScript("done(null, 3)"),
	)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.EqualValues(t, 1, results[0])
	assert.EqualValues(t, 3, results[2])

	var scriptErr *models.ScriptError
	require.ErrorAs(t, results[1].(error), &scriptErr)
	assert.Equal(t, "two err", scriptErr.Message)
}

func TestScript_ThrowString(t *testing.T) {
	_, err := runSteps(t, iterator.New(nil), nil, steps.Script("throw 'E'"))
	assert.EqualError(t, err, "E")
}

func TestAsyncScript_DoneWithError(t *testing.T) {
	_, err := runSteps(t, iterator.New(nil), nil, steps.AsyncScript("done(new Error('nope'))"))
	assert.EqualError(t, err, "nope")
}

func TestAsyncScript_DoneNotCalled(t *testing.T) {
	_, err := runSteps(t, iterator.New(nil), nil, steps.AsyncScript("var x = 1"))
	assert.ErrorContains(t, err, "without calling done")
}

func TestAsyncScript_ThrowBeforeDone(t *testing.T) {
	_, err := runSteps(t, iterator.New(nil), nil, steps.AsyncScript("throw new Error('early')"))
	assert.EqualError(t, err, "early")
}

func TestJsStep_Into(t *testing.T) {
	base := iterator.New(nil)
	step := buildStep(t, "js", map[string]any{"code": "return 40 + 2", "into": "answer"})

	_, err := runSteps(t, base, nil, step)
	require.NoError(t, err)
	assert.EqualValues(t, 42, base.Context().Get("answer"))
}

func TestJsStep_MissingCode(t *testing.T) {
	_, err := builder.CreateStep("js", builder.Definition{Config: map[string]any{}})
	var missing *models.MissingConfigError
	assert.ErrorAs(t, err, &missing)
}

func TestDelayStep(t *testing.T) {
	step := buildStep(t, "delay", map[string]any{"ms": 2})
	assert.Equal(t, models.StepKindAsync, step.Kind())

	results, err := runSteps(t, iterator.New(nil), nil, step)
	require.NoError(t, err)
	assert.Equal(t, []any{2}, results)
}

func TestDelayStep_BadValue(t *testing.T) {
	_, err := runSteps(t, iterator.New(nil), nil, buildStep(t, "delay", map[string]any{"ms": "soon"}))
	assert.ErrorContains(t, err, "delay must be a number")

	_, err = runSteps(t, iterator.New(nil), nil, buildStep(t, "delay", map[string]any{"ms": -1}))
	assert.ErrorContains(t, err, "must not be negative")
}

func TestSetEchoFail(t *testing.T) {
	base := iterator.New(models.Context{"user": map[string]any{"name": "ada"}})
	set := buildStep(t, "set", map[string]any{
		"values": map[string]any{
			"greeting": "$js: 'hi ' + this.user.name",
			"count":    3,
		},
	})
	echo := buildStep(t, "echo", map[string]any{"value": "$path: greeting"})
	fail := buildStep(t, "fail", map[string]any{"message": "$js: 'bad ' + this.count"})

	results, err := runSteps(t, base, &iterator.Options{Settle: true}, set, echo, fail)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"greeting": "hi ada", "count": 3}, results[0])
	assert.Equal(t, "hi ada", results[1])
	assert.EqualError(t, results[2].(error), "bad 3")
	assert.Equal(t, 3, base.Context().Get("count"))
}

func TestJsonStep(t *testing.T) {
	base := iterator.New(models.Context{"raw": `{"items":[1,2]}`})
	step := buildStep(t, "json", map[string]any{"data": "$path: raw", "into": "parsed"})

	results, err := runSteps(t, base, nil, step)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"items": []any{1.0, 2.0}}, results[0])
	assert.Equal(t, results[0], base.Context().Get("parsed"))

	_, err = runSteps(t, base, nil, buildStep(t, "json", map[string]any{"data": "{"}))
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestFileStep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	results, err := runSteps(t, iterator.New(nil), nil, buildStep(t, "file", map[string]any{"path": path}))
	require.NoError(t, err)
	assert.Equal(t, []any{"content"}, results)
}

func TestHTTPClientStep(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"echo": body["name"]})
	}))
	defer server.Close()

	base := iterator.New(models.Context{"name": "ada"})
	step := buildStep(t, "http_client", map[string]any{
		"url":    server.URL,
		"method": "POST",
		"body":   "$js: ({name: this.name})",
		"into":   "response",
	})
	assert.Equal(t, models.StepKindAsync, step.Kind())

	results, err := runSteps(t, base, nil, step)
	require.NoError(t, err)

	resp, ok := results[0].(*steps.HTTPClientResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"echo": "ada"}, resp.Body)
	assert.Same(t, resp, base.Context().Get("response"))
}

func TestHTTPClientStep_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))
	defer server.Close()

	_, err := runSteps(t, iterator.New(nil), nil, buildStep(t, "http_client", map[string]any{"url": server.URL}))
	assert.ErrorContains(t, err, "status 418")
}

const sequenceYAML = `
name: share-context
settle: true
variables:
  suffix: "!"
steps:
  - name: one
    type: js
    config:
      code: "this.foo = 'bar'; return this.foo"
  - name: two
    type: js_async
    config:
      code: "this.bar = 'baz' + $vars.suffix; done(null, this.bar)"
  - name: broken
    type: fail
    config:
      message: two err
  - name: three
    type: echo
    config:
      value: "$path: bar"
`

func TestSequenceFromYAML(t *testing.T) {
	cfg, err := config.ParseSequence([]byte(sequenceYAML))
	require.NoError(t, err)

	list, err := builder.BuildSteps(cfg)
	require.NoError(t, err)

	base := iterator.New(cfg.InitialContext())
	var names []string
	base.OnBeforeEach(func(s *models.Step) { names = append(names, s.Name) })

	results, err := base.Run(context.Background(), list, &iterator.Options{Settle: cfg.Settle})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "bar", results[0])
	assert.Equal(t, "baz!", results[1])
	assert.EqualError(t, results[2].(error), "two err")
	assert.Equal(t, "baz!", results[3])
	assert.Equal(t, []string{"one", "two", "broken", "three"}, names)
}
