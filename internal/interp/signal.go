package interp

import (
	"github.com/goloxlang/golox/internal/token"
	"github.com/goloxlang/golox/internal/value"
)

// breakSignal, continueSignal, and returnSignal are golox's three internal
// control-transfer signals (spec.md §4.3 "Control transfer"). They are
// distinct from RuntimeError and are modeled as sentinel error values —
// Go's idiomatic stand-in for the exception-based unwind a jlox-style
// interpreter uses, following the teacher's own use of sentinel Value/error
// return paths for non-local exits (internal/interp/statements_loops.go)
// adapted here to Go's error interface instead of boolean flag fields.
// They must never escape the evaluator's top-level loop (spec.md §7).
type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

type returnSignal struct {
	value value.Value
}

func (returnSignal) Error() string { return "return" }

// StackFrame names a user function active when a runtime error escaped it,
// used to render the one-line-per-frame call stack on an uncaught error
// (SPEC_FULL.md §2.2, §4 "Uncaught runtime errors print a one-line-per-frame
// call stack").
type StackFrame struct {
	FunctionName string
	Line         int
}

// RuntimeError is a fault during evaluation: the evaluator unwinds, the
// driver prints it, and batch mode exits 70 (spec.md §7 "RuntimeError").
type RuntimeError struct {
	Token   *token.Token
	Message string
	Stack   []StackFrame
}

func (e *RuntimeError) Error() string { return e.Message }
