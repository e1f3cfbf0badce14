package models

// StepKind identifies the calling convention of a step
type StepKind string

const (
	// StepKindSync completes by returning
	StepKindSync StepKind = "sync"
	// StepKindAsync completes by invoking its Done callback
	StepKindAsync StepKind = "async"
)

// Done is the completion callback of an asynchronous step, and the
// per-step completion callback handed to an iterator by its runner
type Done func(err error, result any)

// SyncFunc is the body of a synchronous step
// The returned value (nil included) is the step result
type SyncFunc func(ctx Context) (any, error)

// AsyncFunc is the body of an asynchronous step
// Completion is signalled by calling done exactly once
type AsyncFunc func(ctx Context, done Done)

// Step is one unit of work in a sequence. The pointer is its identity:
// hooks and events receive the same *Step that was handed to the iterator
type Step struct {
	Name  string
	kind  StepKind
	sync  SyncFunc
	async AsyncFunc
}

// Sync declares a synchronous step
func Sync(fn SyncFunc) *Step {
	return &Step{kind: StepKindSync, sync: fn}
}

// Async declares an asynchronous step
func Async(fn AsyncFunc) *Step {
	return &Step{kind: StepKindAsync, async: fn}
}

// Named sets the display name of the step and returns it
func (s *Step) Named(name string) *Step {
	s.Name = name
	return s
}

// Kind reports the calling convention declared at construction
func (s *Step) Kind() StepKind {
	return s.kind
}

// SyncFunc returns the synchronous body, nil for async steps
func (s *Step) SyncFunc() SyncFunc {
	return s.sync
}

// AsyncFunc returns the asynchronous body, nil for sync steps
func (s *Step) AsyncFunc() AsyncFunc {
	return s.async
}

// Validate reports ErrInvalidStep when the step carries no body for its kind
func (s *Step) Validate() error {
	switch s.kind {
	case StepKindSync:
		if s.sync != nil {
			return nil
		}
	case StepKindAsync:
		if s.async != nil {
			return nil
		}
	}
	return ErrInvalidStep
}

func (s *Step) String() string {
	if s.Name != "" {
		return s.Name
	}
	return "<" + string(s.kind) + " step>"
}
