package iterator

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/simon020286/go-step-iterator/log"
	"github.com/simon020286/go-step-iterator/models"
)

// Options configures an iterator. The direct hooks replace the
// corresponding notifier event: a step triggers either the hook or the
// event, never both
type Options struct {
	// BeforeEach runs immediately before a step
	BeforeEach func(ctx models.Context, step *models.Step)
	// AfterEach observes the final (possibly settled) outcome of a step
	AfterEach func(ctx models.Context, err error, result any, step *models.Step)
	// Settle turns a step error into the step result
	Settle bool
}

// IteratorFunc invokes one step and reports its outcome to callback.
// A runner calls it once per step, strictly one at a time
type IteratorFunc func(step *models.Step, callback models.Done)

// Base binds a notifier and a shared context. Every iterator made from
// the same Base shares its context. The zero value is ready to use.
// A Base must not be copied after first use; share it by pointer
type Base struct {
	Notifier

	id     string
	ctx    models.Context
	logger *slog.Logger
	once   sync.Once
}

// New creates an instance around ctx, or around a fresh context when
// ctx is nil
func New(ctx models.Context) *Base {
	b := &Base{ctx: ctx}
	b.init()
	return b
}

func (b *Base) init() {
	b.once.Do(func() {
		b.id = uuid.NewString()
		if b.ctx == nil {
			b.ctx = models.NewContext()
		}
		if b.logger == nil {
			b.logger = slog.Default()
		}
	})
}

// ID returns the instance identifier used in log records
func (b *Base) ID() string {
	b.init()
	return b.id
}

// Context returns the context shared by this instance's steps and hooks
func (b *Base) Context() models.Context {
	b.init()
	return b.ctx
}

// Reset clears the shared context in place
func (b *Base) Reset() {
	b.init()
	b.ctx.Clear()
}

// SetLogger replaces the logger used for step lifecycle records
func (b *Base) SetLogger(logger *slog.Logger) {
	b.init()
	if logger != nil {
		b.logger = logger
	}
}

// MakeIterator returns an iterator bound to opts and to this instance's
// context. opts may be nil; it is copied, so later changes have no effect
func (b *Base) MakeIterator(opts *Options) IteratorFunc {
	b.init()

	var o Options
	if opts != nil {
		o = *opts
	}
	ctx := b.ctx
	logger := b.logger.With(log.InstanceID(b.id))

	return func(step *models.Step, callback models.Done) {
		if step == nil {
			callback(models.ErrNilStep, nil)
			return
		}
		if err := step.Validate(); err != nil {
			callback(err, nil)
			return
		}

		if o.BeforeEach != nil {
			o.BeforeEach(ctx, step)
		} else {
			b.Emit(models.EventBeforeEach, step)
		}
		logger.Debug("step started", log.Step(step), log.StepKind(step.Kind()))

		finish := func(err error, result any) {
			if err != nil {
				result = nil
				if o.Settle {
					err, result = nil, err
					logger.Debug("step error settled", log.Step(step), log.Error(result.(error)))
				}
			}

			if o.AfterEach != nil {
				o.AfterEach(ctx, err, result, step)
			} else {
				b.Emit(models.EventAfterEach, err, result, step)
			}
			logger.Debug("step completed", log.Step(step), log.Error(err))

			callback(err, result)
		}

		if step.Kind() == models.StepKindAsync {
			runAsync(ctx, step, logger, finish)
			return
		}
		result, err := runSync(ctx, step.SyncFunc())
		finish(err, result)
	}
}

// panicError keeps an error panic value as is, so settle mode captures
// the value that was thrown
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &models.PanicError{Value: r}
}

func runSync(ctx models.Context, fn models.SyncFunc) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, panicError(r)
		}
	}()
	return fn(ctx)
}

func runAsync(
	ctx models.Context, step *models.Step, logger *slog.Logger, finish models.Done,
) {
	var called atomic.Bool
	done := func(err error, result any) {
		if !called.CompareAndSwap(false, true) {
			logger.Warn("step completed more than once", log.Step(step))
			return
		}
		finish(err, result)
	}

	defer func() {
		if r := recover(); r != nil {
			// Once done has fired, the panic came from a hook or a later step
			if !called.CompareAndSwap(false, true) {
				panic(r)
			}
			finish(panicError(r), nil)
		}
	}()
	step.AsyncFunc()(ctx, done)
}
