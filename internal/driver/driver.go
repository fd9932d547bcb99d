// Package driver composes the scanner, parser, resolver, and evaluator into
// golox's two run modes: batch file execution and an interactive REPL
// (spec.md §4.5, §6).
package driver

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/goloxlang/golox/internal/ast"
	"github.com/goloxlang/golox/internal/interp"
	"github.com/goloxlang/golox/internal/lexer"
	"github.com/goloxlang/golox/internal/parser"
	"github.com/goloxlang/golox/internal/report"
	"github.com/goloxlang/golox/internal/resolver"
	"github.com/goloxlang/golox/internal/token"
)

// Exit codes for batch mode (spec.md §6 "Exit codes").
const (
	ExitOK         = 0
	ExitStaticErr  = 65
	ExitRuntimeErr = 70
	ExitUsage      = 1
)

// Driver owns the long-lived state shared across a batch run or a whole
// REPL session: the error sink and the interpreter's persistent global
// environment (spec.md §4.5, §6 "persistent global environment").
type Driver struct {
	Sink      *report.Sink
	Interp    *interp.Interpreter
	DumpAST   bool
	TraceCall bool
}

// New builds a Driver writing program output to out and reading native
// stdin-consuming builtins from in; reports go to errOut.
func New(out, errOut io.Writer, in io.Reader) *Driver {
	sink := report.New(errOut)
	return &Driver{
		Sink:   sink,
		Interp: interp.New(out, in),
	}
}

// RunFile executes the named script once in batch mode and returns the
// process exit code (spec.md §6 "One argument: batch mode").
func (d *Driver) RunFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(d.Sink.Out, err)
		return ExitUsage
	}
	d.Sink.Reset(string(src))
	d.run(string(src))

	switch {
	case d.Sink.HadStaticError:
		return ExitStaticErr
	case d.Sink.HadRuntimeError:
		return ExitRuntimeErr
	default:
		return ExitOK
	}
}

// RunREPL reads one line at a time from in, scanning, parsing, resolving,
// and evaluating each line in the persistent global environment, printing
// expression-statement results, until end-of-input (spec.md §6
// "No argument: interactive mode").
func (d *Driver) RunREPL(in io.Reader, out io.Writer) {
	d.Interp.SetInteractive(true)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(out, "==> ")
	for scanner.Scan() {
		line := scanner.Text()
		d.Sink.Reset(line)
		d.run(line)
		fmt.Fprint(out, "==> ")
	}
}

// run scans, parses, resolves, and (absent a static error) evaluates source,
// routing diagnostics through the sink. A program-level runtime error sets
// the sink's runtime-error flag and prints the fault plus its call stack
// (SPEC_FULL.md §4 "Uncaught runtime errors print a one-line-per-frame call
// stack").
func (d *Driver) run(source string) {
	tokens := lexer.ScanTokens(source, d.Sink)
	if d.Sink.HadStaticError {
		return
	}

	p := parser.New(tokens, d.Sink)
	program := p.ParseProgram()
	if d.Sink.HadStaticError {
		return
	}

	depths := resolver.Resolve(program, d.Sink)
	if d.Sink.HadStaticError {
		return
	}

	if d.DumpAST {
		fmt.Fprintln(d.Sink.Out, dumpAST(program))
	}
	d.Interp.Trace = d.TraceCall

	if rerr := d.Interp.Run(program, depths); rerr != nil {
		d.Sink.RuntimeError(rerr.Token, rerr.Message)
		if len(rerr.Stack) > 0 {
			fmt.Fprintln(d.Sink.Out, framesFromInterp(rerr.Stack).String())
		}
	}
}

func dumpAST(program *ast.Program) string {
	return program.String()
}

func framesFromInterp(stack []interp.StackFrame) report.StackTrace {
	frames := make(report.StackTrace, len(stack))
	for idx, f := range stack {
		frames[idx] = report.Frame{FunctionName: f.FunctionName, Pos: token.Position{Line: f.Line}}
	}
	return frames
}
