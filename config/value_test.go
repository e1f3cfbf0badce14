package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon020286/go-step-iterator/models"
)

func TestParseValue_Static(t *testing.T) {
	for _, raw := range []any{"hello", 42, true, nil} {
		vs := ParseValue(raw)
		assert.True(t, vs.IsStatic())

		val, ok := vs.GetStaticValue()
		assert.True(t, ok)
		assert.Equal(t, raw, val)
	}
}

func TestParseValue_Prefixes(t *testing.T) {
	assert.Equal(t,
		DynamicValue{Language: "js", Expression: "ctx.a + 10"},
		ParseValue("$js:   ctx.a + 10  "),
	)
	assert.Equal(t, VariableReference{Name: "region"}, ParseValue("$var:region"))
	assert.Equal(t, EnvReference{Name: "HOME"}, ParseValue("$env:HOME"))
	assert.Equal(t, PathReference{Path: "user.name"}, ParseValue("$path: user.name"))
}

func TestParseValue_KeepsValueSpec(t *testing.T) {
	vs := VariableReference{Name: "x"}
	assert.Equal(t, vs, ParseValue(vs))
}

func TestStaticValue_Resolve(t *testing.T) {
	result, err := NewStaticValue(42).Resolve(Scope{})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestDynamicValue_ResolveThis(t *testing.T) {
	scope := Scope{Context: models.Context{"foo": "bar"}}

	result, err := DynamicValue{Language: "js", Expression: "this.foo + '!'"}.Resolve(scope)
	require.NoError(t, err)
	assert.Equal(t, "bar!", result)

	result, err = DynamicValue{Expression: "ctx.foo.length"}.Resolve(scope)
	require.NoError(t, err)
	assert.EqualValues(t, 3, result)
}

func TestDynamicValue_ResolveVars(t *testing.T) {
	scope := Scope{
		Context:   models.NewContext(),
		Variables: map[string]any{"base": "https://example.com"},
	}

	result, err := DynamicValue{Expression: "$vars.base + '/api'"}.Resolve(scope)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api", result)
}

func TestDynamicValue_ResolveError(t *testing.T) {
	_, err := DynamicValue{Expression: "missing.field"}.Resolve(Scope{Context: models.NewContext()})
	require.Error(t, err)

	var scriptErr *models.ScriptError
	assert.ErrorAs(t, err, &scriptErr)
}

func TestDynamicValue_UnsupportedLanguage(t *testing.T) {
	_, err := DynamicValue{Language: "lua", Expression: "1"}.Resolve(Scope{})
	assert.EqualError(t, err, "unsupported language: lua")
}

func TestVariableReference_Resolve(t *testing.T) {
	ref := VariableReference{Name: "region"}

	_, err := ref.Resolve(Scope{})
	assert.Error(t, err)

	_, err = ref.Resolve(Scope{Variables: map[string]any{"other": 1}})
	assert.Error(t, err)

	val, err := ref.Resolve(Scope{Variables: map[string]any{"region": "eu"}})
	require.NoError(t, err)
	assert.Equal(t, "eu", val)
}

func TestEnvReference_Resolve(t *testing.T) {
	t.Setenv("STEPSEQ_TEST_VALUE", "on")

	val, err := EnvReference{Name: "STEPSEQ_TEST_VALUE"}.Resolve(Scope{})
	require.NoError(t, err)
	assert.Equal(t, "on", val)

	_, err = EnvReference{Name: "STEPSEQ_TEST_UNSET"}.Resolve(Scope{})
	assert.Error(t, err)
}

func TestPathReference_Resolve(t *testing.T) {
	scope := Scope{Context: models.Context{
		"user": map[string]any{"name": "ada", "tags": []any{"a", "b"}},
	}}

	val, err := PathReference{Path: "user.name"}.Resolve(scope)
	require.NoError(t, err)
	assert.Equal(t, "ada", val)

	val, err = PathReference{Path: "user.tags.#"}.Resolve(scope)
	require.NoError(t, err)
	assert.EqualValues(t, 2, val)

	_, err = PathReference{Path: "user.email"}.Resolve(scope)
	assert.Error(t, err)
}

func TestResolveAll(t *testing.T) {
	scope := Scope{Context: models.Context{"n": 2}}
	values := map[string]ValueSpec{
		"static":  NewStaticValue("x"),
		"dynamic": DynamicValue{Expression: "this.n * 2"},
	}

	resolved, err := ResolveAll(values, scope)
	require.NoError(t, err)
	assert.Equal(t, "x", resolved["static"])
	assert.EqualValues(t, 4, resolved["dynamic"])

	values["bad"] = VariableReference{Name: "nope"}
	_, err = ResolveAll(values, scope)
	assert.ErrorContains(t, err, "key 'bad'")
}
