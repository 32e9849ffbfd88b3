package vybe_test

import (
	"bytes"
	"context"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/funvibe/vybe/internal/ast"
	"github.com/funvibe/vybe/internal/config"
	"github.com/funvibe/vybe/internal/datarows"
	"github.com/funvibe/vybe/internal/evaluator"
	"github.com/funvibe/vybe/internal/tasks"
	vybe "github.com/funvibe/vybe/pkg/embed"
)

// User is a host struct marshalled into an Object.
type User struct {
	Name  string
	Score int
	Tags  []string
}

func quietRuntime() *vybe.Runtime {
	return vybe.NewRuntime(nil, vybe.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
}

func TestEmbedAPI(t *testing.T) {
	rt := quietRuntime()
	ctx := context.Background()

	if err := rt.Set("player", User{Name: "Alice", Score: 10, Tags: []string{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	if err := rt.Set("bonus", 5); err != nil {
		t.Fatal(err)
	}

	res, err := rt.EvalYAML(ctx, []byte(`
op: "+"
left: {member: Score, of: {var: player}}
right: {var: BONUS}
`))
	if err != nil {
		t.Fatalf("EvalYAML: %v", err)
	}
	if res.Inspect() != "Integer(15)" {
		t.Errorf("result = %s", res.Inspect())
	}

	name, err := rt.EvalYAML(ctx, []byte(`{member: name, of: {var: player}}`))
	if err != nil || evaluator.AsString(name) != "Alice" {
		t.Errorf("player.name = %v, %v", name, err)
	}

	var back User
	if err := rt.GetInto("player", &back); err != nil {
		t.Fatalf("GetInto: %v", err)
	}
	if !reflect.DeepEqual(back, User{Name: "Alice", Score: 10, Tags: []string{"a", "b"}}) {
		t.Errorf("round trip = %+v", back)
	}

	got, err := rt.Get("bonus")
	if err != nil || got != 5 {
		t.Errorf("Get(bonus) = %#v, %v", got, err)
	}
	if _, err := rt.Get("missing"); err == nil {
		t.Error("Get of an undefined variable succeeded")
	}
	if err := rt.GetInto("bonus", back); err == nil {
		t.Error("GetInto accepted a non-pointer")
	}
}

func TestLaunchUsesLaunchTimeEnvironment(t *testing.T) {
	rt := quietRuntime()
	ctx := context.Background()
	rt.Set("x", 20)

	expr, err := ast.DecodeYAML([]byte(`{op: "+", left: {var: x}, right: 1}`))
	if err != nil {
		t.Fatal(err)
	}
	task, err := rt.Launch(ctx, expr)
	if err != nil {
		t.Fatal(err)
	}
	rt.Set("x", 100)
	rt.Set("t", task)

	got, err := rt.EvalYAML(ctx, []byte(`{await: {var: t}}`))
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if got.Inspect() != "Integer(21)" {
		t.Errorf("task result = %s, want Integer(21)", got.Inspect())
	}

	if _, err := rt.EvalYAML(ctx, []byte(`{await: {var: t}}`)); err == nil {
		t.Error("second await of the same task succeeded")
	}
}

func TestLaunchFailureSurfacesOnAwait(t *testing.T) {
	rt := quietRuntime()
	ctx := context.Background()
	expr, _ := ast.DecodeYAML([]byte(`{op: "/", left: 1, right: {var: nope}}`))
	task, err := rt.Launch(ctx, expr)
	if err != nil {
		t.Fatal(err)
	}
	_, err = rt.Await(ctx, task)
	sig, ok := evaluator.AsSignal(err)
	if !ok || sig.ExceptionType != config.AggregateExceptionName {
		t.Fatalf("error = %v, want %s", err, config.AggregateExceptionName)
	}
	if sig.Inner != "Undefined variable: nope" {
		t.Errorf("inner = %q", sig.Inner)
	}
}

func TestNestedAwaitNeedsInterpreter(t *testing.T) {
	rt := quietRuntime()
	_, err := rt.EvalYAML(context.Background(), []byte(`{op: "+", left: 1, right: {await: {var: t}}}`))
	if !evaluator.IsNeedsInterpreter(err) {
		t.Errorf("error = %v, want NeedsInterpreter", err)
	}
}

func TestLaunchFuncAndWorker(t *testing.T) {
	rt := quietRuntime()
	ctx := context.Background()
	rt.Set("greeting", "hello")

	task, err := rt.LaunchFunc(ctx, func(ctx context.Context, env *evaluator.SharedEnvironment, _ *evaluator.SharedObjectData) (evaluator.Value, error) {
		v, err := env.Get("greeting")
		if err != nil {
			return nil, err
		}
		return &evaluator.String{Value: strings.ToUpper(evaluator.AsString(v))}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := rt.Await(ctx, task)
	if err != nil || evaluator.AsString(got) != "HELLO" {
		t.Errorf("LaunchFunc result = %v, %v", got, err)
	}

	worker, err := rt.RunWorker(ctx, func(ctx context.Context, w *tasks.Worker) (evaluator.Value, error) {
		w.ReportProgress(50, evaluator.NOTHING)
		return evaluator.TRUE, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, err := rt.Await(ctx, worker); err != nil || got != evaluator.TRUE {
		t.Errorf("worker result = %v, %v", got, err)
	}
	if rt.Tasks().Pending() != 0 {
		t.Errorf("Pending = %d", rt.Tasks().Pending())
	}
}

func TestAwaitHonoursContext(t *testing.T) {
	rt := quietRuntime()
	release := make(chan struct{})
	defer close(release)

	task, _ := rt.LaunchFunc(context.Background(), func(ctx context.Context, _ *evaluator.SharedEnvironment, _ *evaluator.SharedObjectData) (evaluator.Value, error) {
		<-release
		return nil, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := rt.Await(ctx, task); err == nil {
		t.Error("Await ignored the context deadline")
	}
}

func TestBindQuery(t *testing.T) {
	ctx := context.Background()
	db, err := datarows.Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, s := range []string{
		`CREATE TABLE orders (id INTEGER, total REAL)`,
		`INSERT INTO orders VALUES (1, 9.5), (2, 20), (3, 1.25)`,
	} {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}

	var logs bytes.Buffer
	rt := vybe.NewRuntime(nil, vybe.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	if err := rt.BindQuery(ctx, db, "Orders", `SELECT id, total FROM orders WHERE total > ? ORDER BY id`, 5); err != nil {
		t.Fatalf("BindQuery: %v", err)
	}
	count, err := rt.EvalYAML(ctx, []byte(`{member: count, of: {var: orders}}`))
	if err != nil || count.Inspect() != "Integer(2)" {
		t.Errorf("orders.count = %v, %v", count, err)
	}
	if !strings.Contains(logs.String(), `msg="table bound" name=Orders rows=2`) {
		t.Errorf("missing bind log: %q", logs.String())
	}

	table, err := rt.Get("orders")
	if err != nil {
		t.Fatal(err)
	}
	rows := table.(map[string]interface{})["rows"].([]interface{})
	if len(rows) != 2 || rows[1].(map[string]interface{})["total"] != 20.0 {
		t.Errorf("rows = %#v", rows)
	}

	if err := rt.BindQuery(ctx, db, "bad", `SELECT * FROM nowhere`); err == nil {
		t.Error("BindQuery of a missing table succeeded")
	}
}
