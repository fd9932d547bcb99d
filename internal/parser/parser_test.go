package parser_test

import (
	"testing"

	"github.com/goloxlang/golox/internal/ast"
	"github.com/goloxlang/golox/internal/lexer"
	"github.com/goloxlang/golox/internal/parser"
	"github.com/goloxlang/golox/internal/token"
)

type stubSink struct {
	errors []string
}

func (s *stubSink) ScannerError(line int, msg string)       { s.errors = append(s.errors, msg) }
func (s *stubSink) StaticError(tok *token.Token, msg string) { s.errors = append(s.errors, msg) }

func parseProgram(t *testing.T, src string) (*ast.Program, *stubSink) {
	t.Helper()
	sink := &stubSink{}
	tokens := lexer.ScanTokens(src, sink)
	p := parser.New(tokens, sink)
	return p.ParseProgram(), sink
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog, sink := parseProgram(t, "1 + 2 * 3;")
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors: %v", sink.errors)
	}
	got := prog.Statements[0].String()
	want := "(+ 1 (* 2 3));"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseVarDeclAndAssignment(t *testing.T) {
	prog, sink := parseProgram(t, "var x = 1; x = 2;")
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors: %v", sink.errors)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	if _, ok := prog.Statements[0].(*ast.VarDecl); !ok {
		t.Errorf("statement 0 is %T, want *ast.VarDecl", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*ast.Assign); !ok {
		t.Errorf("statement 1 is %T, want *ast.Assign", prog.Statements[1])
	}
}

func TestParseIfElifElse(t *testing.T) {
	prog, sink := parseProgram(t, `
if (x) { print(1); } elif (y) { print(2); } else { print(3); }
`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors: %v", sink.errors)
	}
	ifStmt, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.If", prog.Statements[0])
	}
	if len(ifStmt.Conditions) != 2 || ifStmt.Else == nil {
		t.Errorf("got %d conditions, else=%v; want 2 conditions and an else branch", len(ifStmt.Conditions), ifStmt.Else)
	}
}

func TestParseForDesugarsToWhileWithIncrement(t *testing.T) {
	prog, sink := parseProgram(t, `for (var i = 0; i < 3; i = i + 1) { print(i); }`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors: %v", sink.errors)
	}
	block, ok := prog.Statements[0].(*ast.Block)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.Block (for-initializer wrapper)", prog.Statements[0])
	}
	if len(block.Statements) != 2 {
		t.Fatalf("got %d statements in for-wrapper, want 2", len(block.Statements))
	}
	whileStmt, ok := block.Statements[1].(*ast.While)
	if !ok {
		t.Fatalf("second statement is %T, want *ast.While", block.Statements[1])
	}
	if whileStmt.Body.ForIncrement == nil {
		t.Error("expected while body to carry the for-loop increment")
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	prog, sink := parseProgram(t, `class B : A { init() { } speak() { } }`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors: %v", sink.errors)
	}
	class, ok := prog.Statements[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.ClassDecl", prog.Statements[0])
	}
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "A" {
		t.Errorf("got superclass %v, want A", class.Superclass)
	}
	if len(class.Methods) != 2 {
		t.Errorf("got %d methods, want 2", len(class.Methods))
	}
}

func TestParseClassSelfExtensionIsStaticError(t *testing.T) {
	_, sink := parseProgram(t, `class A : A { }`)
	if len(sink.errors) == 0 {
		t.Error("expected a static error for a class extending itself")
	}
}

func TestParseInvalidAssignmentTargetIsStaticError(t *testing.T) {
	_, sink := parseProgram(t, `1 + 2 = 3;`)
	if len(sink.errors) == 0 {
		t.Error("expected a static error for an invalid assignment target")
	}
}

func TestParsePrintCallsLikeAnyFunction(t *testing.T) {
	prog, sink := parseProgram(t, `print("hi", 1);`)
	if len(sink.errors) != 0 {
		t.Fatalf("unexpected errors: %v", sink.errors)
	}
	exprStmt, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.ExprStmt", prog.Statements[0])
	}
	call, ok := exprStmt.Expression.(*ast.Call)
	if !ok {
		t.Fatalf("expression is %T, want *ast.Call", exprStmt.Expression)
	}
	if callee, ok := call.Callee.(*ast.Identifier); !ok || callee.Name.Lexeme != "print" {
		t.Errorf("got callee %v, want identifier 'print'", call.Callee)
	}
}

func TestParseSyncRecoversAfterError(t *testing.T) {
	prog, sink := parseProgram(t, "var = ; var y = 1;")
	if len(sink.errors) == 0 {
		t.Fatal("expected at least one static error")
	}
	found := false
	for _, s := range prog.Statements {
		if v, ok := s.(*ast.VarDecl); ok && v.Name.Lexeme == "y" {
			found = true
		}
	}
	if !found {
		t.Error("expected parser to recover and parse the second declaration")
	}
}
