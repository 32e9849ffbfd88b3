package tasks

import (
	"context"
	"log/slog"

	"github.com/funvibe/vybe/internal/config"
	"github.com/funvibe/vybe/internal/evaluator"
)

// WorkerFunc is the DoWork body of a BackgroundWorker.
type WorkerFunc func(ctx context.Context, w *Worker) (evaluator.Value, error)

// Worker is the view a BackgroundWorker body has of itself. Cancellation is
// cooperative: CancelAsync only raises a flag (and cancels ctx), and the body
// decides when to stop.
type Worker struct {
	// Env mirrors the environment the worker was started from.
	Env *evaluator.SharedEnvironment

	container *evaluator.SharedObjectData
	progress  *evaluator.ConcurrentQueue
}

// CancellationPending reports whether CancelAsync was called.
func (w *Worker) CancellationPending() bool {
	v, _ := w.container.GetValue(config.CancellationPendingField)
	return evaluator.IsTruthy(v)
}

// ReportProgress queues a ProgressChanged event for the owner to drain with
// Registry.Progress, and records the latest percentage on the worker object.
func (w *Worker) ReportProgress(percent int, userState evaluator.Value) {
	if userState == nil {
		userState = evaluator.NOTHING
	}
	pct := &evaluator.Integer{Value: int32(percent)}
	ev := evaluator.NewObject(config.ProgressEventClassName)
	ev.Set(config.ProgressField, pct)
	ev.Set(config.UserStateField, userState)
	w.progress.Enqueue(ev)
	w.container.SetValue(config.ProgressField, pct)
}

// Container is the worker's shared object.
func (w *Worker) Container() *evaluator.SharedObjectData { return w.container }

// RunWorker starts body as a BackgroundWorker. Await on the returned
// snapshot yields the body's result; a cancelled worker completes normally
// with IsCanceled set instead of raising.
func (r *Registry) RunWorker(ctx context.Context, body WorkerFunc, env *evaluator.Environment) (evaluator.Value, error) {
	if body == nil {
		return nil, evaluator.NewCustom("BackgroundWorker requires a DoWork body")
	}
	w := &Worker{progress: evaluator.NewConcurrentQueue()}
	return r.launch(ctx, config.BackgroundWorkerClassName, env, w,
		func(ctx context.Context, _ *evaluator.SharedEnvironment, _ *evaluator.SharedObjectData) (evaluator.Value, error) {
			return body(ctx, w)
		})
}

// CancelAsync asks the worker or task behind handle to stop.
func (r *Registry) CancelAsync(handle string) error {
	r.mu.Lock()
	t, ok := r.tasks[handle]
	r.mu.Unlock()
	if !ok {
		return evaluator.NewCustom("Task '%s' is not registered", handle)
	}
	if t.worker != nil {
		t.container.SetValue(config.CancellationPendingField, evaluator.TRUE)
	}
	t.cancel()
	r.logger.Debug("cancellation requested", slog.String("handle", handle))
	return nil
}

// Progress drains the ProgressChanged events reported so far by the worker
// behind handle, oldest first.
func (r *Registry) Progress(handle string) ([]evaluator.Value, error) {
	r.mu.Lock()
	t, ok := r.tasks[handle]
	r.mu.Unlock()
	if !ok {
		return nil, evaluator.NewCustom("Task '%s' is not registered", handle)
	}
	if t.worker == nil {
		return nil, evaluator.NewCustom("Task '%s' is not a BackgroundWorker", handle)
	}
	var events []evaluator.Value
	for {
		ev, ok := t.worker.progress.TryDequeue()
		if !ok {
			return events, nil
		}
		events = append(events, ev)
	}
}
