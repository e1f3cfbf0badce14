package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNilStep is reported when an iterator is handed a nil step
	ErrNilStep = errors.New("step is nil")
	// ErrInvalidStep is reported when a step has no body for its kind
	ErrInvalidStep = errors.New("step has no body")
	// ErrUnknownStepType is reported by the step registry
	ErrUnknownStepType = errors.New("unknown step type")
)

// PanicError carries a value recovered from a panicking step
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("step panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return "missing required configuration key: " + e.Key
}

func ErrMissingConfig(key string) error {
	return &MissingConfigError{Key: key}
}

// ScriptError is a failure raised from inside a script step
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}
