package tasks

import (
	"context"
	"testing"

	"github.com/funvibe/vybe/internal/config"
	"github.com/funvibe/vybe/internal/evaluator"
)

func TestWorkerProgress(t *testing.T) {
	r := newTestRegistry(2)
	env := evaluator.NewEnvironment()
	env.Define("steps", &evaluator.Integer{Value: 3})

	body := func(ctx context.Context, w *Worker) (evaluator.Value, error) {
		v, err := w.Env.Get("steps")
		if err != nil {
			return nil, err
		}
		n, err := evaluator.AsInteger(v)
		if err != nil {
			return nil, err
		}
		for i := int32(1); i <= n; i++ {
			w.ReportProgress(int(i*10), &evaluator.String{Value: "step"})
		}
		return &evaluator.String{Value: "done"}, nil
	}

	snap, err := r.RunWorker(context.Background(), body, env)
	if err != nil {
		t.Fatal(err)
	}
	if snap.(*evaluator.Object).ClassName != config.BackgroundWorkerClassName {
		t.Errorf("class = %s", snap.(*evaluator.Object).ClassName)
	}
	got, err := r.Await(snap)
	if err != nil || evaluator.AsString(got) != "done" {
		t.Fatalf("Await = %v, %v", got, err)
	}

	handle := handleFromSnapshot(t, snap)
	events, err := r.Progress(handle)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d progress events, want 3", len(events))
	}
	for i, ev := range events {
		obj := ev.(*evaluator.Object)
		pct, _ := obj.Get(config.ProgressField)
		if n, _ := evaluator.AsInteger(pct); n != int32((i+1)*10) {
			t.Errorf("event %d percentage = %s", i, pct.Inspect())
		}
		if st, _ := obj.Get(config.UserStateField); evaluator.AsString(st) != "step" {
			t.Errorf("event %d user state = %s", i, st.Inspect())
		}
	}
	if again, _ := r.Progress(handle); len(again) != 0 {
		t.Errorf("Progress did not drain: %d events left", len(again))
	}

	container, _ := r.Lookup(handle)
	if pct, _ := container.GetValue(config.ProgressField); evaluator.AsString(pct) != "30" {
		t.Errorf("latest percentage = %v", pct)
	}
}

func TestWorkerCancellation(t *testing.T) {
	r := newTestRegistry(2)
	started := make(chan struct{})
	body := func(ctx context.Context, w *Worker) (evaluator.Value, error) {
		close(started)
		<-ctx.Done()
		if !w.CancellationPending() {
			return nil, evaluator.NewCustom("context ended without CancelAsync")
		}
		return &evaluator.String{Value: "stopped"}, nil
	}

	snap, _ := r.RunWorker(context.Background(), body, nil)
	handle := handleFromSnapshot(t, snap)
	<-started
	if !r.IsBusy(handle) {
		t.Error("IsBusy = false while the worker runs")
	}
	if err := r.CancelAsync(handle); err != nil {
		t.Fatal(err)
	}

	got, err := r.Await(snap)
	if err != nil {
		t.Fatalf("Await of a cancelled worker: %v", err)
	}
	if evaluator.AsString(got) != "stopped" {
		t.Errorf("result = %s", got.Inspect())
	}
	container, _ := r.Lookup(handle)
	if c, _ := container.GetValue(config.IsCancelledField); !evaluator.IsTruthy(c) {
		t.Error("IsCanceled not set")
	}
	if s, _ := container.GetValue(config.StatusField); evaluator.AsString(s) != config.TaskStatusCanceled {
		t.Errorf("status = %v", s)
	}
}

func TestCancelPlainTask(t *testing.T) {
	r := newTestRegistry(1)
	started := make(chan struct{})
	body := func(ctx context.Context, env *evaluator.SharedEnvironment, task *evaluator.SharedObjectData) (evaluator.Value, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	snap, _ := r.Launch(context.Background(), body, nil)
	<-started
	if err := r.CancelAsync(handleFromSnapshot(t, snap)); err != nil {
		t.Fatal(err)
	}
	_, err := r.Await(snap)
	sig, ok := evaluator.AsSignal(err)
	if !ok || sig.ExceptionType != config.TaskCanceledExceptionName {
		t.Errorf("error = %v, want %s", err, config.TaskCanceledExceptionName)
	}
}

func TestWorkerErrors(t *testing.T) {
	r := newTestRegistry(1)
	if _, err := r.RunWorker(context.Background(), nil, nil); err == nil {
		t.Error("RunWorker(nil) succeeded")
	}
	if err := r.CancelAsync("missing"); err == nil {
		t.Error("CancelAsync of an unknown handle succeeded")
	}
	if _, err := r.Progress("missing"); err == nil {
		t.Error("Progress of an unknown handle succeeded")
	}

	snap, _ := r.Launch(context.Background(), returning(evaluator.TRUE), nil)
	if _, err := r.Progress(handleFromSnapshot(t, snap)); err == nil {
		t.Error("Progress of a plain task succeeded")
	}
	if _, err := r.Await(snap); err != nil {
		t.Fatal(err)
	}
}
