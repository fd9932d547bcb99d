// Package resolver implements the static pre-pass that annotates every
// resolved identifier use with its lexical scope depth and diagnoses
// misuses of this, super, return, break, continue, and duplicate
// declarations (spec.md §4.2).
package resolver

import (
	"github.com/goloxlang/golox/internal/ast"
	"github.com/goloxlang/golox/internal/token"
)

// ErrorSink receives static-error diagnostics.
type ErrorSink interface {
	StaticError(tok *token.Token, msg string)
}

type functionType int

const (
	ftNone functionType = iota
	ftFunction
	ftMethod
	ftInitializer
)

type classType int

const (
	ctNone classType = iota
	ctClass
	ctSubclass
)

// Depths maps a resolved-identifier-use node (an *ast.Identifier, *ast.This,
// or *ast.Super) to the number of enclosing scopes between the use and its
// binding. Keyed on the node's own pointer identity — a stable address for
// the lifetime of one parse, per spec.md §9 "Identifier identity".
type Depths map[ast.Node]int

// scope maps a name to whether its declaration has finished (defined) or is
// still being initialized (declared but not yet defined) — this is what
// lets `var x = x;` be rejected (spec.md §4.2).
type scope map[string]bool

// Resolver walks a parsed program and builds a Depths table, reporting
// static errors for scoping violations it finds along the way.
type Resolver struct {
	errs    ErrorSink
	scopes  []scope
	depths  Depths
	funcTy  functionType
	classTy classType
	loopDepth int
}

// globalNames seeds the initial (global) scope with the native built-ins, so
// every reference to them gets a depth entry into the global scope like any
// global declared earlier in the program (spec.md §4.4).
var globalNames = []string{"clock", "print", "read", "readline", "bool", "str", "num"}

// New creates a Resolver whose global scope is seeded with the built-in
// native names.
func New(errs ErrorSink) *Resolver {
	r := &Resolver{errs: errs, depths: make(Depths)}
	global := make(scope)
	for _, name := range globalNames {
		global[name] = true
	}
	r.scopes = []scope{global}
	return r
}

// Resolve walks the program and returns the resolved-depth table. Resolution
// continues through the whole program even after errors, to report as many
// diagnostics as possible (spec.md §4.2).
func Resolve(prog *ast.Program, errs ErrorSink) Depths {
	r := New(errs)
	r.resolveStmts(prog.Statements)
	return r.depths
}

// ---- scope stack ----

func (r *Resolver) push() {
	r.scopes = append(r.scopes, make(scope))
}

func (r *Resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) current() scope {
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	sc := r.current()
	if _, ok := sc[name.Lexeme]; ok {
		r.errs.StaticError(&name, "already a variable with this name in this scope")
	}
	sc[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	r.current()[name.Lexeme] = true
}

// resolveLocal records the depth from the innermost scope to the scope that
// declares name, if any is found. An unresolved name (e.g. a global used
// before its declaration in the source, or one declared on an earlier REPL
// line) is left out of the table entirely — the evaluator's dynamic
// fallback handles it (spec.md §4.4).
func (r *Resolver) resolveLocal(node ast.Node, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.depths[node] = len(r.scopes) - 1 - i
			return
		}
	}
}

// ---- statements ----

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.Expression)

	case *ast.VarDecl:
		r.declare(s.Name)
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name)

	case *ast.Assign:
		r.resolveExpr(s.Value)
		r.resolveLocal(s.Target, s.Target.Name.Lexeme)

	case *ast.SetField:
		r.resolveExpr(s.Value)
		r.resolveExpr(s.Object)

	case *ast.Block:
		r.push()
		r.resolveStmts(s.Statements)
		if s.ForIncrement != nil {
			r.resolveStmt(s.ForIncrement)
		}
		r.pop()

	case *ast.If:
		for i, cond := range s.Conditions {
			r.resolveExpr(cond)
			r.resolveStmt(s.Branches[i])
		}
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.While:
		r.resolveExpr(s.Condition)
		r.loopDepth++
		r.resolveStmt(s.Body)
		r.loopDepth--

	case *ast.Break:
		if r.loopDepth == 0 {
			r.errs.StaticError(&s.Keyword, "'break' outside a loop")
		}

	case *ast.Continue:
		if r.loopDepth == 0 {
			r.errs.StaticError(&s.Keyword, "'continue' outside a loop")
		}

	case *ast.Return:
		if r.funcTy == ftNone {
			r.errs.StaticError(&s.Keyword, "'return' outside a function")
		}
		if s.Value != nil {
			if r.funcTy == ftInitializer {
				r.errs.StaticError(&s.Keyword, "can't return a value from an initializer")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.FunctionDecl:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, ftFunction)

	case *ast.ClassDecl:
		r.resolveClass(s)

	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveFunction(fn *ast.FunctionDecl, typ functionType) {
	enclosingFunc := r.funcTy
	r.funcTy = typ
	r.push()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body.Statements)
	r.pop()
	r.funcTy = enclosingFunc
}

func (r *Resolver) resolveClass(c *ast.ClassDecl) {
	enclosingClass := r.classTy
	r.classTy = ctClass

	r.declare(c.Name)
	r.define(c.Name)

	if c.Superclass != nil {
		if c.Superclass.Name.Lexeme == c.Name.Lexeme {
			r.errs.StaticError(&c.Superclass.Name, "a class can't inherit from itself")
		}
		r.resolveExpr(c.Superclass)

		r.classTy = ctSubclass
		r.push()
		r.current()["super"] = true
	}

	r.push()
	r.current()["this"] = true

	for _, method := range c.Methods {
		methodType := ftMethod
		if method.Name.Lexeme == c.Name.Lexeme {
			methodType = ftInitializer
		}
		r.resolveFunction(method, methodType)
	}

	r.pop() // "this" scope

	if c.Superclass != nil {
		r.pop() // "super" scope
	}

	r.classTy = enclosingClass
}

// ---- expressions ----

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.Grouping:
		r.resolveExpr(e.Expression)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Identifier:
		if defined, ok := r.current()[e.Name.Lexeme]; ok && !defined {
			r.errs.StaticError(&e.Name, "can't read local variable in its own initializer")
		}
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.This:
		if r.classTy == ctNone {
			r.errs.StaticError(&e.Keyword, "can't use 'this' outside of a class")
			return
		}
		r.resolveLocal(e, "this")
	case *ast.Super:
		if r.classTy == ctNone {
			r.errs.StaticError(&e.Keyword, "can't use 'super' outside of a class")
		} else if r.classTy != ctSubclass {
			r.errs.StaticError(&e.Keyword, "can't use 'super' in a class with no superclass")
		}
		r.resolveLocal(e, "super")
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
	case *ast.GetField:
		r.resolveExpr(e.Object)
	default:
		panic("resolver: unhandled expression type")
	}
}
