package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SignalKind classifies a RuntimeSignal.
type SignalKind int

const (
	SignalTypeError SignalKind = iota
	SignalUndefinedVariable
	SignalUndefinedFunction
	SignalDivisionByZero
	SignalExit
	SignalReturn
	SignalContinue
	SignalGoTo
	SignalException
	SignalCustom
	SignalNeedsInterpreter
)

var signalKindNames = [...]string{
	"TypeError", "UndefinedVariable", "UndefinedFunction", "DivisionByZero",
	"Exit", "Return", "Continue", "GoTo", "Exception", "Custom", "NeedsInterpreter",
}

func (k SignalKind) String() string {
	if int(k) < len(signalKindNames) {
		return signalKindNames[k]
	}
	return fmt.Sprintf("SignalKind(%d)", int(k))
}

// ExitKind is the block an Exit statement leaves.
type ExitKind int

const (
	ExitSub ExitKind = iota
	ExitFunction
	ExitFor
	ExitDo
	ExitWhile
	ExitSelect
	ExitTry
	ExitProperty
)

var exitKindNames = [...]string{"Sub", "Function", "For", "Do", "While", "Select", "Try", "Property"}

func (k ExitKind) String() string {
	if int(k) < len(exitKindNames) {
		return exitKindNames[k]
	}
	return fmt.Sprintf("ExitKind(%d)", int(k))
}

// ContinueKind is the loop a Continue statement targets.
type ContinueKind int

const (
	ContinueFor ContinueKind = iota
	ContinueDo
	ContinueWhile
)

func (k ContinueKind) String() string {
	switch k {
	case ContinueFor:
		return "For"
	case ContinueDo:
		return "Do"
	case ContinueWhile:
		return "While"
	}
	return fmt.Sprintf("ContinueKind(%d)", int(k))
}

// RuntimeSignal is the one error type produced by the core. It carries both
// genuine failures and control flow: Exit, Return, Continue and GoTo travel
// the error channel so statement interpreters can unwind through nested
// blocks, and are told apart with IsControlFlow rather than by message.
type RuntimeSignal struct {
	Kind SignalKind

	Expected string // TypeError
	Got      string // TypeError

	// Name is the variable or function name, the GoTo label, or the node kind
	// for NeedsInterpreter.
	Name string

	Exit     ExitKind
	Continue ContinueKind
	Value    Value // Return payload; nil for a bare Return

	ExceptionType string
	Message       string // Exception and Custom
	Inner         string // inner exception message, "" when absent

	Cause error
}

func (s *RuntimeSignal) Error() string {
	switch s.Kind {
	case SignalTypeError:
		return fmt.Sprintf("Type error: expected %s, got %s", s.Expected, s.Got)
	case SignalUndefinedVariable:
		return "Undefined variable: " + s.Name
	case SignalUndefinedFunction:
		return "Undefined function: " + s.Name
	case SignalDivisionByZero:
		return "Division by zero"
	case SignalExit:
		return "Exit: " + s.Exit.String()
	case SignalReturn:
		return "Return"
	case SignalContinue:
		return "Continue"
	case SignalGoTo:
		return "GoTo " + s.Name
	case SignalNeedsInterpreter:
		return "Expression must be evaluated in interpreter context"
	}
	return s.Message
}

func (s *RuntimeSignal) Unwrap() error { return s.Cause }

// IsControlFlow reports whether the signal is a normal early exit rather
// than a failure.
func (s *RuntimeSignal) IsControlFlow() bool {
	switch s.Kind {
	case SignalExit, SignalReturn, SignalContinue, SignalGoTo:
		return true
	}
	return false
}

// IsFailure reports whether the signal should reach user-facing error reporting.
func (s *RuntimeSignal) IsFailure() bool { return !s.IsControlFlow() }

func NewTypeError(expected string, got Value) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalTypeError, Expected: expected, Got: got.Inspect()}
}

func NewUndefinedVariable(name string) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalUndefinedVariable, Name: name}
}

func NewUndefinedFunction(name string) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalUndefinedFunction, Name: name}
}

func NewDivisionByZero() *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalDivisionByZero}
}

func NewExit(kind ExitKind) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalExit, Exit: kind}
}

// NewReturn builds a Return signal; v may be nil for a bare Return.
func NewReturn(v Value) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalReturn, Value: v}
}

func NewContinue(kind ContinueKind) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalContinue, Continue: kind}
}

func NewGoTo(label string) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalGoTo, Name: label}
}

func NewException(exceptionType, message, inner string) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalException, ExceptionType: exceptionType, Message: message, Inner: inner}
}

func NewCustom(format string, a ...interface{}) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalCustom, Message: fmt.Sprintf(format, a...)}
}

// WrapCustom converts a host error into a Custom signal that still unwraps
// to the original error.
func WrapCustom(err error, message string) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalCustom, Message: message + ": " + err.Error(), Cause: err}
}

func newNeedsInterpreter(kind string) *RuntimeSignal {
	return &RuntimeSignal{Kind: SignalNeedsInterpreter, Name: kind}
}

// AsSignal extracts the RuntimeSignal from err's chain.
func AsSignal(err error) (*RuntimeSignal, bool) {
	var s *RuntimeSignal
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// IsControlFlow reports whether err is an Exit, Return, Continue or GoTo signal.
func IsControlFlow(err error) bool {
	s, ok := AsSignal(err)
	return ok && s.IsControlFlow()
}

// IsFailure reports whether err is non-nil and not a control flow signal.
func IsFailure(err error) bool {
	return err != nil && !IsControlFlow(err)
}

// IsNeedsInterpreter reports whether err came from an expression kind the
// pure evaluator refuses to evaluate.
func IsNeedsInterpreter(err error) bool {
	s, ok := AsSignal(err)
	return ok && s.Kind == SignalNeedsInterpreter
}

// LogFailure logs err at Error level when it is a failure. Control flow
// signals are only ever logged at Debug.
func LogFailure(logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	s, ok := AsSignal(err)
	if !ok {
		logger.Error("runtime failure", "error", err)
		return
	}
	if s.IsControlFlow() {
		logger.Debug("control flow signal", "kind", s.Kind.String(), "signal", s.Error())
		return
	}
	attrs := []slog.Attr{slog.String("kind", s.Kind.String()), slog.String("error", s.Error())}
	if s.Kind == SignalException {
		attrs = append(attrs, slog.String("exception", s.ExceptionType))
	}
	logger.LogAttrs(context.Background(), slog.LevelError, "runtime failure", attrs...)
}
