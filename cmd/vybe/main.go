package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/vybe/internal/config"
	"github.com/funvibe/vybe/internal/datarows"
	"github.com/funvibe/vybe/internal/evaluator"
	vybe "github.com/funvibe/vybe/pkg/embed"
)

const usage = `Usage:
  vybe eval FILE.yaml [--settings vybe.yaml] [--db FILE --query SQL]
  vybe repl [--settings vybe.yaml] [--db FILE --query SQL]
  vybe help

FILE may be "-" to read the expression tree from stdin. With --db, the
query result is bound to the variable "table".
`

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the flags shared by eval and repl.
type options struct {
	settingsPath string
	dbPath       string
	query        string
	input        string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	case "eval", "repl":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 1
	}

	opts, err := parseOptions(cmd, args[1:], stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	settings, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: settings.SlogLevel()}))
	rt := vybe.NewRuntime(settings, vybe.WithLogger(logger))
	color := useColor(settings.Color, stdout)

	if opts.dbPath != "" {
		if err := bindTable(ctx, rt, opts); err != nil {
			printError(stderr, color, err)
			return 1
		}
	}

	if cmd == "repl" {
		if err := startREPL(ctx, rt, stdout, color); err != nil {
			printError(stderr, color, err)
			return 1
		}
		return 0
	}

	src, err := readInput(opts.input, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	result, err := rt.EvalYAML(ctx, src)
	if err != nil {
		printError(stderr, color, err)
		return 1
	}
	fmt.Fprintln(stdout, evaluator.AsString(result))
	return 0
}

func parseOptions(cmd string, args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("vybe "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.settingsPath, "settings", "", "path to "+config.SettingsFileName)
	fs.StringVar(&opts.dbPath, "db", "", "SQLite database to query")
	fs.StringVar(&opts.query, "query", "", "SQL query whose rows are bound to 'table'")

	// Allow the input file before or after the flags.
	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) > 0 {
			positional = append(positional, args[0])
			args = args[1:]
		}
	}

	if (opts.dbPath == "") != (opts.query == "") {
		return nil, fmt.Errorf("--db and --query must be given together")
	}
	switch {
	case cmd == "eval" && len(positional) != 1:
		return nil, fmt.Errorf("eval expects exactly one input file, got %d", len(positional))
	case cmd == "repl" && len(positional) != 0:
		return nil, fmt.Errorf("repl takes no input file")
	}
	if len(positional) == 1 {
		opts.input = positional[0]
		if opts.input != "-" && !isExprFile(opts.input) {
			return nil, fmt.Errorf("%s: expected one of %s", opts.input, strings.Join(config.ExprFileExtensions, ", "))
		}
	}
	return opts, nil
}

// isExprFile checks if a file has a recognized expression-tree extension
func isExprFile(path string) bool {
	for _, ext := range config.ExprFileExtensions {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return true
		}
	}
	return false
}

// loadSettings reads --settings, or vybe.yaml next to the input file when
// present, or falls back to the defaults.
func loadSettings(opts *options) (*config.Settings, error) {
	if opts.settingsPath != "" {
		return config.LoadSettings(opts.settingsPath)
	}
	if opts.input != "" && opts.input != "-" {
		candidate := filepath.Join(filepath.Dir(opts.input), config.SettingsFileName)
		if _, err := os.Stat(candidate); err == nil {
			return config.LoadSettings(candidate)
		}
	}
	return config.DefaultSettings(), nil
}

func bindTable(ctx context.Context, rt *vybe.Runtime, opts *options) error {
	db, err := datarows.Open(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return rt.BindQuery(ctx, db, "table", opts.query)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		input []byte
		err   error
	)
	if path == "-" {
		input, err = io.ReadAll(stdin)
	} else {
		input, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return input, nil
}

// useColor resolves the color setting. auto colours only terminals and
// honours NO_COLOR.
func useColor(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printError(w io.Writer, color bool, err error) {
	if color {
		fmt.Fprintf(w, "\x1b[31mError: %s\x1b[0m\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}
