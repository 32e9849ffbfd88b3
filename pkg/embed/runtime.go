// Package vybe is the embedding API of the vybe runtime: evaluate expression
// trees against a host-owned environment, run background tasks and await
// their results.
package vybe

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sync"

	"github.com/funvibe/vybe/internal/ast"
	"github.com/funvibe/vybe/internal/config"
	"github.com/funvibe/vybe/internal/datarows"
	"github.com/funvibe/vybe/internal/evaluator"
	"github.com/funvibe/vybe/internal/tasks"
)

// Runtime owns a global environment, an evaluator and a task registry.
// Its methods are safe for concurrent use.
type Runtime struct {
	mu         sync.Mutex
	env        *evaluator.Environment
	eval       *evaluator.Evaluator
	tasks      *tasks.Registry
	marshaller *Marshaller
	logger     *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used by the runtime and its task registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// NewRuntime creates a runtime from s. A nil s uses config.DefaultSettings.
// Without WithLogger, logs go to stderr at s.LogLevel.
func NewRuntime(s *config.Settings, opts ...Option) *Runtime {
	if s == nil {
		s = config.DefaultSettings()
	}
	r := &Runtime{
		env:        evaluator.NewEnvironment(),
		eval:       evaluator.NewFromSettings(s),
		marshaller: NewMarshaller(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: s.SlogLevel()}))
	}
	r.tasks = tasks.NewRegistry(s, r.logger)
	return r
}

// Env returns the runtime's global environment. Callers must not use it
// while another goroutine is evaluating on the same runtime.
func (r *Runtime) Env() *evaluator.Environment { return r.env }

// Tasks returns the runtime's task registry.
func (r *Runtime) Tasks() *tasks.Registry { return r.tasks }

// Set marshals val and defines it as a global variable.
func (r *Runtime) Set(name string, val interface{}) error {
	v, err := r.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.env.DefineGlobal(name, v)
	return nil
}

// Get retrieves a variable and converts it to a Go value.
func (r *Runtime) Get(name string) (interface{}, error) {
	r.mu.Lock()
	v, err := r.env.Get(name)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.marshaller.FromValue(v, nil)
}

// GetInto retrieves a variable converted to the type pointed to by out.
func (r *Runtime) GetInto(name string, out interface{}) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("GetInto needs a non-nil pointer, got %T", out)
	}
	r.mu.Lock()
	v, err := r.env.Get(name)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	target := ptr.Elem().Type()
	val, err := r.marshaller.FromValue(v, target)
	if err != nil {
		return fmt.Errorf("get %s: %w", name, err)
	}
	rv, err := assignable(val, target)
	if err != nil {
		return fmt.Errorf("get %s: %w", name, err)
	}
	ptr.Elem().Set(rv)
	return nil
}

// Eval evaluates expr against the global environment. A top-level Await
// evaluates its operand and joins the task it yields; Await anywhere else
// needs the statement interpreter and fails with NeedsInterpreter.
func (r *Runtime) Eval(ctx context.Context, expr ast.Expression) (evaluator.Value, error) {
	if aw, ok := expr.(*ast.Await); ok {
		task, err := r.evalLocked(ctx, aw.Operand)
		if err != nil {
			return nil, err
		}
		return r.tasks.AwaitContext(ctx, task)
	}
	return r.evalLocked(ctx, expr)
}

func (r *Runtime) evalLocked(ctx context.Context, expr ast.Expression) (evaluator.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eval.WithContext(ctx).Eval(expr, r.env)
}

// EvalYAML decodes a YAML expression tree and evaluates it.
func (r *Runtime) EvalYAML(ctx context.Context, src []byte) (evaluator.Value, error) {
	expr, err := ast.DecodeYAML(src)
	if err != nil {
		return nil, err
	}
	return r.Eval(ctx, expr)
}

// Launch evaluates expr on a background task against a mirror of the
// current global environment and returns the task snapshot.
func (r *Runtime) Launch(ctx context.Context, expr ast.Expression) (evaluator.Value, error) {
	ev := r.eval.Fork()
	body := func(ctx context.Context, env *evaluator.SharedEnvironment, _ *evaluator.SharedObjectData) (evaluator.Value, error) {
		return ev.WithContext(ctx).Eval(expr, env.ToEnvironment())
	}
	return r.LaunchFunc(ctx, body)
}

// LaunchFunc runs a host-supplied body as a background task.
func (r *Runtime) LaunchFunc(ctx context.Context, body tasks.TaskFunc) (evaluator.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks.Launch(ctx, body, r.env)
}

// RunWorker starts a BackgroundWorker body.
func (r *Runtime) RunWorker(ctx context.Context, body tasks.WorkerFunc) (evaluator.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks.RunWorker(ctx, body, r.env)
}

// Await joins task and returns its result.
func (r *Runtime) Await(ctx context.Context, task evaluator.Value) (evaluator.Value, error) {
	return r.tasks.AwaitContext(ctx, task)
}

// BindQuery runs query against db and defines the resulting DataTable as the
// global variable name.
func (r *Runtime) BindQuery(ctx context.Context, db *sql.DB, name, query string, args ...interface{}) error {
	params := make([]evaluator.Value, len(args))
	for i, a := range args {
		v, err := r.marshaller.ToValue(a)
		if err != nil {
			return fmt.Errorf("query parameter %d: %w", i+1, err)
		}
		params[i] = v
	}
	table, err := datarows.Query(ctx, db, query, params...)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.env.DefineGlobal(name, table)
	count, _ := table.Get(config.CountField)
	r.logger.Debug("table bound", slog.String("name", name), slog.String("rows", evaluator.AsString(count)))
	return nil
}
