// Package report implements the error-reporting sink shared by the scanner,
// parser, resolver, and evaluator. It owns the two process-wide error flags
// the driver consults to choose an exit code, and formats diagnostics with
// a source-line-and-caret presentation.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/goloxlang/golox/internal/token"
)

// Sink collects diagnostics produced while scanning, parsing, resolving, and
// evaluating one program. A fresh Sink (or a Reset one) must be used per
// REPL line; batch mode uses one Sink for the whole run.
type Sink struct {
	Out             io.Writer
	Source          string
	HadStaticError  bool
	HadRuntimeError bool
}

// New creates a Sink that writes formatted diagnostics to out.
func New(out io.Writer) *Sink {
	return &Sink{Out: out}
}

// Reset clears both error flags and sets the source text used for
// caret-pointer context in subsequent diagnostics. The driver calls this at
// every REPL line boundary.
func (s *Sink) Reset(source string) {
	s.Source = source
	s.HadStaticError = false
	s.HadRuntimeError = false
}

// ScannerError reports a malformed-character or unterminated-string fault.
// A single bad token does not abort scanning, so this only sets the static
// error flag; the caller keeps scanning.
func (s *Sink) ScannerError(line int, msg string) {
	s.HadStaticError = true
	fmt.Fprint(s.Out, s.format(line, 0, msg))
}

// StaticError reports a parser or resolver violation. tok may be nil when no
// specific token is implicated.
func (s *Sink) StaticError(tok *token.Token, msg string) {
	s.HadStaticError = true
	line, col := 0, 0
	if tok != nil {
		line, col = tok.Pos.Line, tok.Pos.Column
		if tok.Type == token.EOS {
			msg = "at end: " + msg
		} else {
			msg = "at '" + tok.Lexeme + "': " + msg
		}
	}
	fmt.Fprint(s.Out, s.format(line, col, msg))
}

// RuntimeError reports a fault during evaluation. It sets the runtime-error
// flag; the evaluator has already unwound by the time this is called.
func (s *Sink) RuntimeError(tok *token.Token, msg string) {
	s.HadRuntimeError = true
	line, col := 0, 0
	if tok != nil {
		line, col = tok.Pos.Line, tok.Pos.Column
	}
	fmt.Fprint(s.Out, s.format(line, col, "runtime error: "+msg))
}

// format renders one diagnostic with a source-line-and-caret, mirroring the
// teacher's errors.CompilerError.Format presentation.
func (s *Sink) format(line, col int, msg string) string {
	var sb strings.Builder
	if line > 0 {
		fmt.Fprintf(&sb, "[line %d] %s\n", line, msg)
		if src := s.sourceLine(line); src != "" {
			prefix := fmt.Sprintf("%4d | ", line)
			sb.WriteString(prefix)
			sb.WriteString(src)
			sb.WriteString("\n")
			if col > 0 {
				sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
				sb.WriteString("^\n")
			}
		}
	} else {
		fmt.Fprintf(&sb, "%s\n", msg)
	}
	return sb.String()
}

func (s *Sink) sourceLine(line int) string {
	if s.Source == "" {
		return ""
	}
	lines := strings.Split(s.Source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Frame is one entry in a runtime call stack, oldest (outermost) call first.
type Frame struct {
	FunctionName string
	Pos          token.Position
}

func (f Frame) String() string {
	return fmt.Sprintf("%s [line %d]", f.FunctionName, f.Pos.Line)
}

// StackTrace is a call stack captured at the point a runtime error escaped a
// user function, stored outermost call first.
type StackTrace []Frame

// String renders the stack trace with one frame per line, innermost first,
// reversing the stored outermost-first order.
func (st StackTrace) String() string {
	lines := make([]string, len(st))
	for i := range st {
		lines[i] = "  at " + st[len(st)-1-i].String()
	}
	return strings.Join(lines, "\n")
}
