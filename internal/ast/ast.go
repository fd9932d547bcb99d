// Package ast defines the expression and statement node types built by the
// parser, following the sum-type shapes of spec.md §3.
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goloxlang/golox/internal/token"
)

// Node is the base interface every AST node implements.
type Node interface {
	// String renders the node in a parenthesized Lisp-style form, used by
	// `golox run --dump-ast`.
	String() string
}

// Expr is any node that produces a value. Identifier, This, and Super are
// the three variants the resolver annotates with a scope depth; each is a
// distinct pointer type, so its address is a stable identity for the
// resolver's side table (spec.md §9 "Identifier identity").
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that performs an action without producing a value.
type Stmt interface {
	Node
	stmtNode()
}

// ---- Expressions ----

// Literal is a constant nil, bool, number, or string value baked into the
// source (the literal field of its originating token).
type Literal struct {
	Value any // nil, bool, float64, or string
}

func (*Literal) exprNode() {}
func (l *Literal) String() string {
	if l.Value == nil {
		return "nil"
	}
	return fmt.Sprintf("%v", l.Value)
}

// Grouping is an explicit parenthesized expression, kept as its own node (not
// collapsed away) so the printer can reproduce source parenthesization.
type Grouping struct {
	Expression Expr
}

func (*Grouping) exprNode() {}
func (g *Grouping) String() string {
	return "(group " + g.Expression.String() + ")"
}

// Unary is a prefix `!` or `-` expression.
type Unary struct {
	Operator token.Token
	Right    Expr
}

func (*Unary) exprNode() {}
func (u *Unary) String() string {
	return "(" + u.Operator.Lexeme + " " + u.Right.String() + ")"
}

// Binary is a left-associative infix expression, including `and`/`or`, which
// the evaluator special-cases for short-circuiting (spec.md §4.3).
type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (*Binary) exprNode() {}
func (b *Binary) String() string {
	return "(" + b.Operator.Lexeme + " " + b.Left.String() + " " + b.Right.String() + ")"
}

// Identifier is a variable/function/class reference. Name is the token that
// both the resolver (side-table key) and the evaluator (error location)
// use.
type Identifier struct {
	Name token.Token
}

func (*Identifier) exprNode() {}
func (i *Identifier) String() string { return i.Name.Lexeme }

// This is a `this` reference inside a method body.
type This struct {
	Keyword token.Token
}

func (*This) exprNode() {}
func (t *This) String() string { return "this" }

// Super is a `super.method` reference inside a subclass method.
type Super struct {
	Keyword token.Token
	Method  token.Token
}

func (*Super) exprNode() {}
func (s *Super) String() string { return "(super " + s.Method.Lexeme + ")" }

// Call is a function/method/constructor invocation, possibly the tail of a
// `callee(...)`/`.field` chain (spec.md §4.1 "call").
type Call struct {
	Callee Expr
	Paren  token.Token // used for runtime-error location on arity mismatch
	Args   []Expr
}

func (*Call) exprNode() {}
func (c *Call) String() string {
	var sb strings.Builder
	sb.WriteString("(call " + c.Callee.String())
	for _, a := range c.Args {
		sb.WriteString(" " + a.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// GetField reads a field or method from an instance (`object.field`).
type GetField struct {
	Object Expr
	Field  token.Token
}

func (*GetField) exprNode() {}
func (g *GetField) String() string {
	return "(get " + g.Object.String() + " " + g.Field.Lexeme + ")"
}

// ---- Statements ----

// ExprStmt evaluates an expression for its side effects (and, in the REPL,
// prints the result).
type ExprStmt struct {
	Expression Expr
}

func (*ExprStmt) stmtNode() {}
func (e *ExprStmt) String() string { return e.Expression.String() + ";" }

// VarDecl declares a new binding in the current scope, `nil` if Init is nil.
type VarDecl struct {
	Name token.Token
	Init Expr // nil if absent
}

func (*VarDecl) stmtNode() {}
func (v *VarDecl) String() string {
	if v.Init == nil {
		return "(var " + v.Name.Lexeme + ")"
	}
	return "(var " + v.Name.Lexeme + " " + v.Init.String() + ")"
}

// Assign writes to an existing identifier binding.
type Assign struct {
	Target *Identifier
	Value  Expr
}

func (*Assign) stmtNode() {}
func (a *Assign) String() string {
	return "(= " + a.Target.String() + " " + a.Value.String() + ")"
}

// SetField writes to an instance field (`object.field = value`).
type SetField struct {
	Object Expr
	Field  token.Token
	Value  Expr
}

func (*SetField) stmtNode() {}
func (s *SetField) String() string {
	return "(set " + s.Object.String() + " " + s.Field.Lexeme + " " + s.Value.String() + ")"
}

// Block is a `{ ... }` statement sequence that pushes its own environment.
// ForIncrement is non-nil only for blocks synthesized by desugaring a `for`
// loop body; it runs after the block's statements complete, and continue
// executes it before unwinding (spec.md §4.1 "for desugars to").
type Block struct {
	Statements   []Stmt
	ForIncrement Stmt // nil unless this block is a desugared for-loop body
}

func (*Block) stmtNode() {}
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("(block")
	for _, s := range b.Statements {
		sb.WriteString(" " + s.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// If is an n-way `if`/`elif*`/`else?` statement: Conditions[i] guards
// Branches[i]; Else runs if no condition is truthy and Else is non-nil.
type If struct {
	Conditions []Expr
	Branches   []*Block
	Else       *Block // nil if absent
}

func (*If) stmtNode() {}
func (i *If) String() string {
	var sb strings.Builder
	sb.WriteString("(if")
	for idx, cond := range i.Conditions {
		sb.WriteString(" " + cond.String() + " " + i.Branches[idx].String())
	}
	if i.Else != nil {
		sb.WriteString(" else " + i.Else.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// While is a `while cond { body }` loop.
type While struct {
	Condition Expr
	Body      *Block
}

func (*While) stmtNode() {}
func (w *While) String() string {
	return "(while " + w.Condition.String() + " " + w.Body.String() + ")"
}

// Break raises a BreakSignal at evaluation time.
type Break struct {
	Keyword token.Token
}

func (*Break) stmtNode() {}
func (*Break) String() string { return "(break)" }

// Continue raises a ContinueSignal at evaluation time.
type Continue struct {
	Keyword token.Token
}

func (*Continue) stmtNode() {}
func (*Continue) String() string { return "(continue)" }

// Return raises a ReturnSignal at evaluation time. Value is nil if the
// `return;` form was used (implicit nil).
type Return struct {
	Keyword token.Token
	Value   Expr // nil if absent
}

func (*Return) stmtNode() {}
func (r *Return) String() string {
	if r.Value == nil {
		return "(return)"
	}
	return "(return " + r.Value.String() + ")"
}

// FunctionDecl declares a named function, binding Name in the enclosing
// scope. It also doubles as the method node inside ClassDecl.Methods.
type FunctionDecl struct {
	Name   token.Token
	Params []token.Token
	Body   *Block
}

func (*FunctionDecl) stmtNode() {}
func (f *FunctionDecl) String() string {
	var sb bytes.Buffer
	sb.WriteString("(fun " + f.Name.Lexeme + " (")
	for idx, p := range f.Params {
		if idx > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(p.Lexeme)
	}
	sb.WriteString(") " + f.Body.String() + ")")
	return sb.String()
}

// ClassDecl declares a class, optionally extending Superclass (nil if the
// class declares no superclass).
type ClassDecl struct {
	Name       token.Token
	Superclass *Identifier // nil if absent
	Methods    []*FunctionDecl
}

func (*ClassDecl) stmtNode() {}
func (c *ClassDecl) String() string {
	var sb strings.Builder
	sb.WriteString("(class " + c.Name.Lexeme)
	if c.Superclass != nil {
		sb.WriteString(" : " + c.Superclass.String())
	}
	for _, m := range c.Methods {
		sb.WriteString(" " + m.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Program is the root of the parsed AST: an ordered sequence of top-level
// statements (spec.md §4.1 "program = declaration*").
type Program struct {
	Statements []Stmt
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
