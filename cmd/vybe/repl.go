package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/funvibe/vybe/internal/ast"
	"github.com/funvibe/vybe/internal/evaluator"
	vybe "github.com/funvibe/vybe/pkg/embed"
)

const replHelp = `Enter one flow-style YAML expression tree per line, e.g.
  {op: "+", left: 1, right: {var: x}}
Commands:
  :set NAME TREE   evaluate TREE and bind the result to NAME
  :go NAME TREE    evaluate TREE on a background task and bind the Task to
                   NAME; {await: {var: NAME}} joins it
  :tasks           number of launched tasks not yet awaited
  :help            this text
  :quit            leave
`

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
}

func startREPL(ctx context.Context, rt *vybe.Runtime, out io.Writer, color bool) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vybe> ",
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		Stdout:          out,
	})
	if err != nil {
		return fmt.Errorf("starting repl: %w", err)
	}
	defer rl.Close()
	return replLoop(ctx, rt, rl, out, color)
}

func replLoop(ctx context.Context, rt *vybe.Runtime, in lineReader, out io.Writer, color bool) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":q":
			return nil
		case line == ":help":
			fmt.Fprint(out, replHelp)
			continue
		case line == ":tasks":
			fmt.Fprintln(out, rt.Tasks().Pending())
			continue
		case strings.HasPrefix(line, ":set "):
			if err := replBind(ctx, rt, strings.TrimPrefix(line, ":set "), false); err != nil {
				printError(out, color, err)
			}
			continue
		case strings.HasPrefix(line, ":go "):
			if err := replBind(ctx, rt, strings.TrimPrefix(line, ":go "), true); err != nil {
				printError(out, color, err)
			}
			continue
		case strings.HasPrefix(line, ":"):
			printError(out, color, fmt.Errorf("unknown command %s (try :help)", strings.Fields(line)[0]))
			continue
		}

		v, err := rt.EvalYAML(ctx, []byte(line))
		if err != nil {
			printError(out, color, err)
			continue
		}
		fmt.Fprintln(out, v.Inspect())
	}
}

// replBind handles ":set NAME TREE" and, with launch, ":go NAME TREE".
func replBind(ctx context.Context, rt *vybe.Runtime, rest string, launch bool) error {
	name, tree, ok := strings.Cut(strings.TrimSpace(rest), " ")
	if !ok || strings.TrimSpace(tree) == "" {
		return fmt.Errorf("usage: :set NAME TREE")
	}
	expr, err := ast.DecodeYAML([]byte(tree))
	if err != nil {
		return err
	}
	var v evaluator.Value
	if launch {
		v, err = rt.Launch(ctx, expr)
	} else {
		v, err = rt.Eval(ctx, expr)
	}
	if err != nil {
		return err
	}
	return rt.Set(name, v)
}
