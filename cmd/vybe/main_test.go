package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/vybe/internal/datarows"
	vybe "github.com/funvibe/vybe/pkg/embed"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(args []string, stdin string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestEvalFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		tree   string
		code   int
		stdout string
		stderr string
	}{
		{"arithmetic", `{op: "*", left: 6, right: 7}`, 0, "42\n", ""},
		{"concat", `{op: "&", left: "a", right: {nothing: true}}`, 0, "aNothing\n", ""},
		{"like", `{op: Like, left: "abc123", right: "???###"}`, 0, "True\n", ""},
		{"division by zero", `{op: "/", left: 1, right: 0}`, 1, "", "Error: Division by zero\n"},
		{"needs interpreter", `{call: MsgBox, args: ["hi"]}`, 1, "", "Error: Expression must be evaluated in interpreter context\n"},
		{"bad tree", `{bogus: 1}`, 1, "", "Error: unknown expression node with keys [bogus]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.tree)
			code, stdout, stderr := runCLI([]string{"eval", path}, "")
			if code != tt.code || stdout != tt.stdout || stderr != tt.stderr {
				t.Errorf("eval = (%d, %q, %q), want (%d, %q, %q)", code, stdout, stderr, tt.code, tt.stdout, tt.stderr)
			}
		})
	}
}

func TestEvalStdin(t *testing.T) {
	code, stdout, _ := runCLI([]string{"eval", "-"}, "op: Mod\nleft: 17\nright: 5\n")
	if code != 0 || stdout != "2\n" {
		t.Errorf("eval - = (%d, %q)", code, stdout)
	}
}

func TestEvalUsageErrors(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "tree.txt", "1")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "Usage:"},
		{"unknown command", []string{"compile"}, `unknown command "compile"`},
		{"missing file", []string{"eval"}, "exactly one input file"},
		{"wrong extension", []string{"eval", txt}, "expected one of .yaml, .yml"},
		{"db without query", []string{"eval", "-", "--db", "x.db"}, "--db and --query must be given together"},
		{"unreadable file", []string{"eval", filepath.Join(dir, "absent.yaml")}, "reading input"},
		{"repl with file", []string{"repl", "x.yaml"}, "repl takes no input file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(tt.args, "")
			if code != 1 || !strings.Contains(stderr, tt.want) {
				t.Errorf("code=%d stderr=%q, want 1 and %q", code, stderr, tt.want)
			}
		})
	}

	if code, stdout, _ := runCLI([]string{"help"}, ""); code != 0 || !strings.Contains(stdout, "vybe eval") {
		t.Errorf("help = (%d, %q)", code, stdout)
	}
}

func TestSettingsNextToInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vybe.yaml", "max_eval_depth: 2\n")
	deep := writeFile(t, dir, "deep.yaml", `{op: "+", left: {op: "+", left: 1, right: 2}, right: 3}`)

	code, _, stderr := runCLI([]string{"eval", deep}, "")
	if code != 1 || !strings.Contains(stderr, "nesting too deep") {
		t.Errorf("depth limit from vybe.yaml not applied: %d %q", code, stderr)
	}

	loose := writeFile(t, t.TempDir(), "loose.yaml", "max_eval_depth: 50\n")
	code, stdout, _ := runCLI([]string{"eval", "--settings", loose, deep}, "")
	if code != 0 || stdout != "6\n" {
		t.Errorf("--settings not honoured: %d %q", code, stdout)
	}

	bad := writeFile(t, t.TempDir(), "bad.yaml", "log_level: loud\n")
	if code, _, stderr := runCLI([]string{"eval", "--settings", bad, deep}, ""); code != 1 || !strings.Contains(stderr, "unknown log_level") {
		t.Errorf("invalid settings accepted: %d %q", code, stderr)
	}
}

func TestEvalWithTable(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "shop.db")
	db, err := datarows.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{
		`CREATE TABLE items (name TEXT, qty INTEGER)`,
		`INSERT INTO items VALUES ('bolt', 10), ('nut', 0), ('gear', 3)`,
	} {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	tree := writeFile(t, dir, "count.yaml", `{member: Count, of: {var: table}}`)
	code, stdout, stderr := runCLI([]string{"eval", tree, "--db", dbPath, "--query", "SELECT name FROM items WHERE qty > 0"}, "")
	if code != 0 || stdout != "2\n" {
		t.Errorf("eval with table = (%d, %q, %q)", code, stdout, stderr)
	}

	code, _, stderr = runCLI([]string{"eval", tree, "--db", dbPath, "--query", "SELECT nope FROM items"}, "")
	if code != 1 || !strings.Contains(stderr, "query failed") {
		t.Errorf("bad query = (%d, %q)", code, stderr)
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if !useColor("always", &buf) || useColor("never", &buf) || useColor("auto", &buf) {
		t.Error("color mode resolution wrong for a non-terminal writer")
	}

	buf.Reset()
	printError(&buf, true, io.ErrUnexpectedEOF)
	if buf.String() != "\x1b[31mError: unexpected EOF\x1b[0m\n" {
		t.Errorf("colored error = %q", buf.String())
	}
}

// scriptedReader feeds fixed lines to the REPL loop.
type scriptedReader struct {
	lines []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestREPLLoop(t *testing.T) {
	rt := vybe.NewRuntime(nil)
	in := &scriptedReader{lines: []string{
		"",
		`{op: "+", left: 1, right: 2}`,
		`:set x {op: "*", left: 4, right: 5}`,
		`{var: X}`,
		`:go t {op: "-", left: {var: x}, right: 1}`,
		`:tasks`,
		`{await: {var: t}}`,
		`:tasks`,
		`{var: missing}`,
		`:set broken`,
		`:frobnicate`,
		`:quit`,
		`{op: "+", left: 100, right: 1}`,
	}}

	var out bytes.Buffer
	if err := replLoop(context.Background(), rt, in, &out, false); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Integer(3)",
		"Integer(20)",
		"1",
		"Integer(19)",
		"0",
		"Error: Undefined variable: missing",
		"Error: usage: :set NAME TREE",
		"Error: unknown command :frobnicate (try :help)",
		"",
	}, "\n")
	if out.String() != want {
		t.Errorf("repl output:\n%s\nwant:\n%s", out.String(), want)
	}
	if len(in.lines) != 1 {
		t.Errorf(":quit did not stop the loop; %d lines unread", len(in.lines))
	}
}
