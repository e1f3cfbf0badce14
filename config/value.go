package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/simon020286/go-step-iterator/models"
)

// Scope is what a value is resolved against: the shared context of the
// running sequence and the sequence variables
type Scope struct {
	Context   models.Context
	Variables map[string]any
}

// ValueSpec represents a value that can be static or dynamic
type ValueSpec interface {
	IsStatic() bool
	GetStaticValue() (any, bool)
	// Resolve resolves the value at the time the step runs
	Resolve(scope Scope) (any, error)
}

// ParseValue turns a raw configuration value into a ValueSpec.
// Recognized string prefixes: $js:, $var:, $env:, $path:
func ParseValue(v any) ValueSpec {
	if vs, ok := v.(ValueSpec); ok {
		return vs
	}

	str, ok := v.(string)
	if !ok {
		return StaticValue{Value: v}
	}

	switch {
	case strings.HasPrefix(str, "$js:"):
		return DynamicValue{
			Language:   "js",
			Expression: strings.TrimSpace(strings.TrimPrefix(str, "$js:")),
		}
	case strings.HasPrefix(str, "$var:"):
		return VariableReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$var:"))}
	case strings.HasPrefix(str, "$env:"):
		return EnvReference{Name: strings.TrimSpace(strings.TrimPrefix(str, "$env:"))}
	case strings.HasPrefix(str, "$path:"):
		return PathReference{Path: strings.TrimSpace(strings.TrimPrefix(str, "$path:"))}
	}
	return StaticValue{Value: v}
}

// StaticValue represents a literal value (number, string, bool, etc.)
type StaticValue struct {
	Value any
}

func NewStaticValue(value any) StaticValue {
	return StaticValue{
		Value: value,
	}
}

func (s StaticValue) IsStatic() bool {
	return true
}

func (s StaticValue) GetStaticValue() (any, bool) {
	return s.Value, true
}

func (s StaticValue) Resolve(Scope) (any, error) {
	return s.Value, nil
}

// DynamicValue represents an expression to be evaluated at runtime
type DynamicValue struct {
	Language   string // "js"
	Expression string
}

func (d DynamicValue) IsStatic() bool {
	return false
}

func (d DynamicValue) GetStaticValue() (any, bool) {
	return nil, false
}

func (d DynamicValue) Resolve(scope Scope) (any, error) {
	switch d.Language {
	case "js", "javascript", "":
		return d.resolveJS(scope)
	default:
		return nil, fmt.Errorf("unsupported language: %s", d.Language)
	}
}

func (d DynamicValue) resolveJS(scope Scope) (any, error) {
	script, err := NewScript(scope)
	if err != nil {
		return nil, err
	}

	result, err := script.Call("return "+d.Expression, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to execute JS expression '%s': %w", d.Expression, err)
	}
	return result, nil
}

// VariableReference represents a reference to a sequence variable ($var:name)
type VariableReference struct {
	Name string
}

func (v VariableReference) IsStatic() bool {
	return false
}

func (v VariableReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (v VariableReference) Resolve(scope Scope) (any, error) {
	if scope.Variables == nil {
		return nil, fmt.Errorf("variable '%s' not found: no variables defined", v.Name)
	}

	value, exists := scope.Variables[v.Name]
	if !exists {
		return nil, fmt.Errorf("variable '%s' not found", v.Name)
	}

	return value, nil
}

// EnvReference represents a reference to an environment variable ($env:NAME)
type EnvReference struct {
	Name string
}

func (e EnvReference) IsStatic() bool {
	return false
}

func (e EnvReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (e EnvReference) Resolve(Scope) (any, error) {
	value := os.Getenv(e.Name)
	if value == "" {
		return nil, fmt.Errorf("environment variable '%s' is not set or is empty", e.Name)
	}

	return value, nil
}

// PathReference reads a value out of the shared context by gjson path
// ($path:user.name)
type PathReference struct {
	Path string
}

func (p PathReference) IsStatic() bool {
	return false
}

func (p PathReference) GetStaticValue() (any, bool) {
	return nil, false
}

func (p PathReference) Resolve(scope Scope) (any, error) {
	value, ok := scope.Context.Lookup(p.Path)
	if !ok {
		return nil, fmt.Errorf("path '%s' not found in context", p.Path)
	}
	return value, nil
}

// ResolveAll resolves every value of a map, keeping keys
func ResolveAll(values map[string]ValueSpec, scope Scope) (map[string]any, error) {
	result := make(map[string]any, len(values))
	for k, v := range values {
		resolved, err := v.Resolve(scope)
		if err != nil {
			return nil, fmt.Errorf("key '%s': %w", k, err)
		}
		result[k] = resolved
	}
	return result, nil
}
