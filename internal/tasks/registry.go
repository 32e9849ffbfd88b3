// Package tasks runs background task bodies on their own goroutines and keeps
// the process-wide registry that maps a task handle to its join channel and
// to the shared container its result is written to.
//
// A launched task hands its caller a disconnected snapshot of the container.
// The snapshot carries the handle and nothing else of value: once the task
// finishes, the result must be read back from the registry's container.
// Await does exactly that, in that order.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/funvibe/vybe/internal/config"
	"github.com/funvibe/vybe/internal/evaluator"
)

// TaskFunc is the body of a background task. env is a mirror of the launching
// environment and task is the shared result container. A non-nil returned
// value becomes the task result; returning nil leaves whatever the body
// stored in the container's result field.
type TaskFunc func(ctx context.Context, env *evaluator.SharedEnvironment, task *evaluator.SharedObjectData) (evaluator.Value, error)

type task struct {
	container *evaluator.SharedObjectData
	done      chan struct{}
	cancel    context.CancelFunc
	worker    *Worker

	// joined is set once the join channel has been claimed by an Await
	joined bool
}

// Registry tracks background tasks by handle.
type Registry struct {
	mu     sync.Mutex
	tasks  map[string]*task
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// NewRegistry creates a registry limited to s.MaxBackgroundTasks concurrently
// running bodies. A nil s uses the defaults; a nil logger uses slog.Default.
func NewRegistry(s *config.Settings, logger *slog.Logger) *Registry {
	limit := config.DefaultMaxBackgroundTasks
	if s != nil && s.MaxBackgroundTasks > 0 {
		limit = s.MaxBackgroundTasks
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tasks:  make(map[string]*task),
		sem:    semaphore.NewWeighted(int64(limit)),
		logger: logger,
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(nil, nil)
	})
	return defaultRegistry
}

// Launch mirrors env, registers a new task and starts body on its own
// goroutine. The returned Value is a point-in-time snapshot of the task
// object carrying its handle; it never observes the task's progress.
func (r *Registry) Launch(ctx context.Context, body TaskFunc, env *evaluator.Environment) (evaluator.Value, error) {
	if body == nil {
		return nil, evaluator.NewCustom("Task.Run requires a body")
	}
	return r.launch(ctx, config.TaskClassName, env, nil, body)
}

func (r *Registry) launch(ctx context.Context, className string, env *evaluator.Environment, w *Worker, body TaskFunc) (evaluator.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	shared := evaluator.NewSharedEnvironment()
	if env != nil {
		shared = env.ToShared()
	}

	handle := uuid.NewString()
	container := newContainer(className, handle)
	taskCtx, cancel := context.WithCancel(ctx)
	t := &task{
		container: container,
		done:      make(chan struct{}),
		cancel:    cancel,
		worker:    w,
	}
	if w != nil {
		w.Env = shared
		w.container = container
		container.SetValue(config.CancellationPendingField, evaluator.FALSE)
	}

	r.mu.Lock()
	r.tasks[handle] = t
	r.mu.Unlock()

	snapshot := container.ToValue()
	r.logger.Debug("task launched", slog.String("handle", handle), slog.String("class", className))

	go func() {
		defer close(t.done)
		defer cancel()
		v, err := r.run(taskCtx, body, shared, container)
		r.finish(handle, t, v, err)
	}()

	return snapshot, nil
}

// run executes body inside a semaphore slot, converting a panic into a
// failure.
func (r *Registry) run(ctx context.Context, body TaskFunc, env *evaluator.SharedEnvironment, container *evaluator.SharedObjectData) (v evaluator.Value, err error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	defer func() {
		if p := recover(); p != nil {
			v = nil
			err = evaluator.NewCustom("background task panicked: %v", p)
		}
	}()
	return body(ctx, env, container)
}

// finish records the outcome of a body in its container. Return and Exit
// signals are ordinary completions; any other error faults the task.
func (r *Registry) finish(handle string, t *task, v evaluator.Value, err error) {
	status := config.TaskStatusCompleted
	faulted, canceled := false, false
	var exception evaluator.Value = evaluator.NOTHING

	if sig, ok := evaluator.AsSignal(err); ok && sig.Kind == evaluator.SignalReturn {
		v = sig.Value
		if v == nil {
			v = evaluator.NOTHING
		}
		err = nil
	} else if evaluator.IsControlFlow(err) {
		v = evaluator.NOTHING
		err = nil
	}

	switch {
	case err == nil && t.worker != nil && t.worker.CancellationPending():
		canceled = true
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		canceled = true
	default:
		faulted = true
		exception = &evaluator.String{Value: err.Error()}
		evaluator.LogFailure(r.logger, err)
	}
	switch {
	case faulted:
		status = config.TaskStatusFaulted
	case canceled:
		status = config.TaskStatusCanceled
	}

	var result evaluator.SharedValue
	if v != nil {
		result = evaluator.ToShared(v)
	}
	exc := evaluator.ToShared(exception)
	t.container.Update(func(fields map[string]evaluator.SharedValue) {
		if result != nil {
			fields[config.ResultField] = result
		}
		fields[config.IsCompletedField] = evaluator.ToShared(evaluator.TRUE)
		fields[config.IsFaultedField] = sharedBool(faulted)
		fields[config.IsCancelledField] = sharedBool(canceled)
		fields[config.ExceptionField] = exc
		fields[config.StatusField] = evaluator.ToShared(&evaluator.String{Value: status})
	})

	r.logger.Debug("task finished", slog.String("handle", handle), slog.String("status", status))
}

// Await blocks until the task behind v finishes and returns its result.
func (r *Registry) Await(v evaluator.Value) (evaluator.Value, error) {
	return r.AwaitContext(context.Background(), v)
}

// AwaitContext is Await with a bound on the wait. When ctx ends first the
// task is left unjoined and may be awaited again.
//
// The join channel of a handle can be claimed only once; awaiting a handle
// twice, or one this registry never issued, fails. After the join the result
// is read from the registry's container, never from v.
func (r *Registry) AwaitContext(ctx context.Context, v evaluator.Value) (evaluator.Value, error) {
	obj, ok := v.(*evaluator.Object)
	if !ok {
		return nil, evaluator.NewTypeError(config.TaskClassName, v)
	}

	handle, ok := handleOf(obj)
	if !ok {
		// Task.FromResult and other local tasks carry their result directly.
		if completed, _ := obj.Get(config.IsCompletedField); evaluator.IsTruthy(completed) {
			if res, ok := obj.Get(config.ResultField); ok {
				return res, nil
			}
		}
		return evaluator.NOTHING, nil
	}

	r.mu.Lock()
	t, ok := r.tasks[handle]
	if !ok || t.joined {
		r.mu.Unlock()
		return nil, evaluator.NewCustom("Task '%s' was already awaited or is not registered", handle)
	}
	t.joined = true
	r.mu.Unlock()

	r.logger.Debug("task join", slog.String("handle", handle))
	select {
	case <-t.done:
	case <-ctx.Done():
		r.mu.Lock()
		t.joined = false
		r.mu.Unlock()
		return nil, evaluator.WrapCustom(ctx.Err(), "awaiting task "+handle)
	}

	return resultOf(t)
}

// resultOf reads a finished task's outcome from its shared container.
func resultOf(t *task) (evaluator.Value, error) {
	c := t.container
	if faulted, _ := c.GetValue(config.IsFaultedField); evaluator.IsTruthy(faulted) {
		msg := ""
		if exc, ok := c.GetValue(config.ExceptionField); ok && !evaluator.IsNothing(exc) {
			msg = evaluator.AsString(exc)
		}
		return nil, evaluator.NewException(config.AggregateExceptionName, "One or more errors occurred. ("+msg+")", msg)
	}
	if canceled, _ := c.GetValue(config.IsCancelledField); evaluator.IsTruthy(canceled) && t.worker == nil {
		return nil, evaluator.NewException(config.TaskCanceledExceptionName, "A task was canceled.", "")
	}
	res, ok := c.GetValue(config.ResultField)
	if !ok {
		return evaluator.NOTHING, nil
	}
	return res, nil
}

// WhenAll awaits every task concurrently and returns their results in order.
// The first failure is returned after all joins have completed.
func (r *Registry) WhenAll(values ...evaluator.Value) ([]evaluator.Value, error) {
	results := make([]evaluator.Value, len(values))
	var g errgroup.Group
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			res, err := r.Await(v)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FromResult returns an already completed task holding v.
func FromResult(v evaluator.Value) evaluator.Value {
	if v == nil {
		v = evaluator.NOTHING
	}
	obj := evaluator.NewObject(config.TaskClassName)
	obj.Set(config.ResultField, v)
	obj.Set(config.IsCompletedField, evaluator.TRUE)
	obj.Set(config.IsFaultedField, evaluator.FALSE)
	obj.Set(config.IsCancelledField, evaluator.FALSE)
	obj.Set(config.ExceptionField, evaluator.NOTHING)
	obj.Set(config.StatusField, &evaluator.String{Value: config.TaskStatusCompleted})
	return obj
}

// Lookup returns the live shared container for handle.
func (r *Registry) Lookup(handle string) (*evaluator.SharedObjectData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[handle]
	if !ok {
		return nil, false
	}
	return t.container, true
}

// Refresh returns a fresh snapshot of the task behind v, read from the
// registry. It is how a caller observes progress without joining.
func (r *Registry) Refresh(v evaluator.Value) (evaluator.Value, error) {
	obj, ok := v.(*evaluator.Object)
	if !ok {
		return nil, evaluator.NewTypeError(config.TaskClassName, v)
	}
	handle, ok := handleOf(obj)
	if !ok {
		return obj, nil
	}
	c, ok := r.Lookup(handle)
	if !ok {
		return nil, evaluator.NewCustom("Task '%s' is not registered", handle)
	}
	return c.ToValue(), nil
}

// Evict drops handle from the registry. A task that is still running is
// asked to stop through its context.
func (r *Registry) Evict(handle string) {
	r.mu.Lock()
	t, ok := r.tasks[handle]
	delete(r.tasks, handle)
	r.mu.Unlock()
	if ok {
		t.cancel()
		r.logger.Debug("task evicted", slog.String("handle", handle))
	}
}

// Pending is the number of registered tasks not yet awaited.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if !t.joined {
			n++
		}
	}
	return n
}

// IsBusy reports whether the task behind handle is still running.
func (r *Registry) IsBusy(handle string) bool {
	r.mu.Lock()
	t, ok := r.tasks[handle]
	r.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func newContainer(className, handle string) *evaluator.SharedObjectData {
	c := evaluator.NewSharedObject(className)
	c.SetValue(config.HandleField, &evaluator.String{Value: handle})
	c.SetValue(config.ResultField, evaluator.NOTHING)
	c.SetValue(config.IsCompletedField, evaluator.FALSE)
	c.SetValue(config.IsFaultedField, evaluator.FALSE)
	c.SetValue(config.IsCancelledField, evaluator.FALSE)
	c.SetValue(config.ExceptionField, evaluator.NOTHING)
	c.SetValue(config.StatusField, &evaluator.String{Value: config.TaskStatusRunning})
	return c
}

func handleOf(obj *evaluator.Object) (string, bool) {
	h, ok := obj.Get(config.HandleField)
	if !ok {
		return "", false
	}
	s, ok := h.(*evaluator.String)
	if !ok || s.Value == "" {
		return "", false
	}
	return s.Value, true
}

func sharedBool(b bool) evaluator.SharedValue {
	if b {
		return evaluator.ToShared(evaluator.TRUE)
	}
	return evaluator.ToShared(evaluator.FALSE)
}
