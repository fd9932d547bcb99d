package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goloxlang/golox/internal/interp"
	"github.com/goloxlang/golox/internal/lexer"
	"github.com/goloxlang/golox/internal/parser"
	"github.com/goloxlang/golox/internal/resolver"
	"github.com/goloxlang/golox/internal/token"
)

type stubSink struct {
	errors []string
}

func (s *stubSink) ScannerError(line int, msg string)        { s.errors = append(s.errors, msg) }
func (s *stubSink) StaticError(tok *token.Token, msg string) { s.errors = append(s.errors, msg) }

// run scans, parses, resolves, and evaluates src, returning stdout and any
// unhandled runtime error message.
func run(t *testing.T, src string) (string, string, *stubSink) {
	t.Helper()
	sink := &stubSink{}
	tokens := lexer.ScanTokens(src, sink)
	program := parser.New(tokens, sink).ParseProgram()
	if len(sink.errors) > 0 {
		return "", "", sink
	}
	depths := resolver.Resolve(program, sink)
	if len(sink.errors) > 0 {
		return "", "", sink
	}

	var out bytes.Buffer
	i := interp.New(&out, strings.NewReader(""))
	runtimeErr := ""
	if rerr := i.Run(program, depths); rerr != nil {
		runtimeErr = rerr.Message
	}
	return out.String(), runtimeErr, sink
}

func TestClosuresOverCounters(t *testing.T) {
	out, rerr, sink := run(t, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
var c = makeCounter();
print(c()); print(c()); print(c());
`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	want := "1\n2\n3\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestResolverCatchesSelfInitializer(t *testing.T) {
	_, _, sink := run(t, `
var a = "outer";
{ var a = a; }
`)
	if len(sink.errors) == 0 {
		t.Error("expected a static error for the self-referential initializer")
	}
}

func TestInheritanceAndSuper(t *testing.T) {
	out, rerr, sink := run(t, `
class A { speak() { print("A"); } }
class B : A { speak() { super.speak(); print("B"); } }
B().speak();
`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	want := "A\nB\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestForLoopContinueAndBreak(t *testing.T) {
	out, rerr, sink := run(t, `
for (var i = 0; i < 5; i = i + 1) {
  if (i == 1) { continue; }
  if (i == 3) { break; }
  print(i);
}
`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	want := "0\n2\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRuntimeTypeErrorOnSubtractString(t *testing.T) {
	_, rerr, sink := run(t, `print("x" - 1);`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected static errors: %v", sink.errors)
	}
	if rerr == "" {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(rerr, "number") {
		t.Errorf("got %q, want a message referencing numeric operands", rerr)
	}
}

func TestInstanceFieldShadowsMethod(t *testing.T) {
	out, rerr, sink := run(t, `
class P { m() { return 1; } }
var p = P();
p.m = 42;
print(p.m);
`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	want := "42\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestAndOrShortCircuitAndReturnBoolean(t *testing.T) {
	out, rerr, sink := run(t, `
fun boom() { print("should not run"); return true; }
print(false and boom());
print(true or boom());
`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	want := "false\ntrue\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestModuloRequiresIntegerOperands(t *testing.T) {
	_, rerr, sink := run(t, `print(5 % 2.5);`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected static errors: %v", sink.errors)
	}
	if rerr == "" {
		t.Fatal("expected a runtime error for a non-integer modulo operand")
	}
}

func TestModuloOnIntegersMatchesCRemainder(t *testing.T) {
	out, rerr, sink := run(t, `print(7 % 3); print(-7 % 3);`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	want := "1\n-1\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestPlusConcatenatesNumberAndString(t *testing.T) {
	out, rerr, sink := run(t, `print("count: " + 3); print(3 + " apples");`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	want := "count: 3\n3 apples\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, rerr, sink := run(t, `print(1 / 0);`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected static errors: %v", sink.errors)
	}
	if rerr == "" {
		t.Fatal("expected a runtime error for division by zero")
	}
}

func TestPrintWithNoArgumentsEmitsBareNewline(t *testing.T) {
	out, rerr, sink := run(t, `print();`)
	if len(sink.errors) != 0 || rerr != "" {
		t.Fatalf("unexpected errors: static=%v runtime=%q", sink.errors, rerr)
	}
	if out != "\n" {
		t.Errorf("got %q, want a bare newline", out)
	}
}

func TestRuntimeErrorStackIsRecordedOutermostFirst(t *testing.T) {
	sink := &stubSink{}
	src := `
fun outer() { return middle(); }
fun middle() { return inner(); }
fun inner() { return "x" - 1; }
outer();
`
	tokens := lexer.ScanTokens(src, sink)
	program := parser.New(tokens, sink).ParseProgram()
	if len(sink.errors) > 0 {
		t.Fatalf("unexpected static errors: %v", sink.errors)
	}
	depths := resolver.Resolve(program, sink)
	if len(sink.errors) > 0 {
		t.Fatalf("unexpected static errors: %v", sink.errors)
	}

	var out bytes.Buffer
	i := interp.New(&out, strings.NewReader(""))
	rerr := i.Run(program, depths)
	if rerr == nil {
		t.Fatal("expected a runtime error")
	}
	if len(rerr.Stack) != 3 {
		t.Fatalf("got %d stack frames, want 3: %+v", len(rerr.Stack), rerr.Stack)
	}
	// The interpreter's call stack is appended to as each call is entered, so
	// it is stored outermost-call-first; report.StackTrace.String() is what
	// reverses this to innermost-first for display (see report_test.go).
	wantOrder := []string{"outer", "middle", "inner"}
	for idx, name := range wantOrder {
		if rerr.Stack[idx].FunctionName != name {
			t.Errorf("frame %d: got %q, want %q", idx, rerr.Stack[idx].FunctionName, name)
		}
	}
}

func TestLookingUpInitializerByNameIsRuntimeError(t *testing.T) {
	_, rerr, sink := run(t, `
class P { P() { } }
var p = P();
print(p.P);
`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected static errors: %v", sink.errors)
	}
	if rerr == "" {
		t.Fatal("expected a runtime error looking up the initializer by name")
	}
}
