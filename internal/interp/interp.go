// Package interp implements golox's tree-walking evaluator: it executes a
// resolved program by walking statements and evaluating expressions against
// a chain of environments (spec.md §4.3).
package interp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goloxlang/golox/internal/ast"
	"github.com/goloxlang/golox/internal/environment"
	"github.com/goloxlang/golox/internal/resolver"
	"github.com/goloxlang/golox/internal/token"
	"github.com/goloxlang/golox/internal/value"
)

// Interpreter walks a resolved program against a chain of environments.
// It is single-threaded with no suspension points (spec.md §5).
type Interpreter struct {
	Out         io.Writer
	in          *bufio.Reader
	globals     *environment.Environment
	env         *environment.Environment
	depths      resolver.Depths
	interactive bool
	Trace       bool
	callStack   []StackFrame
	callSitePos token.Position
}

// New creates an Interpreter whose global environment is preloaded with the
// built-in natives (spec.md §6 "Built-in globals").
func New(out io.Writer, in io.Reader) *Interpreter {
	i := &Interpreter{Out: out, in: bufio.NewReader(in)}
	i.globals = environment.New()
	i.env = i.globals
	installNatives(i)
	return i
}

// SetInteractive toggles REPL auto-print of expression-statement results
// (spec.md §4.3 "ExprStmt... in interactive mode, print the value's string
// form").
func (i *Interpreter) SetInteractive(v bool) { i.interactive = v }

// Globals exposes the global environment, which persists across Run calls
// on the same Interpreter and so across REPL lines (spec.md §6 "a
// persistent global environment").
func (i *Interpreter) Globals() *environment.Environment { return i.globals }

// Run executes every top-level statement in program using the resolver's
// depth table. It returns the first unhandled RuntimeError, if any; the
// three internal control signals must never reach here (spec.md §7).
func (i *Interpreter) Run(program *ast.Program, depths resolver.Depths) *RuntimeError {
	i.depths = depths
	for _, stmt := range program.Statements {
		if err := i.execute(stmt); err != nil {
			return i.toRuntimeError(err)
		}
	}
	return nil
}

func (i *Interpreter) toRuntimeError(err error) *RuntimeError {
	if re, ok := err.(*RuntimeError); ok {
		return re
	}
	// A control signal escaping to the top level is an interpreter bug, not
	// a user-facing fault; surface it loudly rather than hiding it.
	panic(fmt.Sprintf("interp: control signal escaped top level: %v", err))
}

func (i *Interpreter) pushFrame(name string, pos token.Position) {
	i.callStack = append(i.callStack, StackFrame{FunctionName: name, Line: pos.Line})
}

func (i *Interpreter) popFrame() {
	i.callStack = i.callStack[:len(i.callStack)-1]
}

// ---- statement execution ----

func (i *Interpreter) execute(stmt ast.Stmt) error {
	if i.Trace {
		fmt.Fprintln(i.Out, "trace:", stmt.String())
	}
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		v, err := i.eval(s.Expression)
		if err != nil {
			return err
		}
		if i.interactive {
			fmt.Fprintln(i.Out, v.String())
		}
		return nil

	case *ast.VarDecl:
		var v value.Value = value.Nil{}
		if s.Init != nil {
			var err error
			v, err = i.eval(s.Init)
			if err != nil {
				return err
			}
		}
		i.env.Define(s.Name.Lexeme, v)
		return nil

	case *ast.Assign:
		v, err := i.eval(s.Value)
		if err != nil {
			return err
		}
		return i.assignIdentifier(s.Target, v)

	case *ast.SetField:
		obj, err := i.eval(s.Object)
		if err != nil {
			return err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return i.runtimeErr(&s.Field, "only instances have fields")
		}
		v, err := i.eval(s.Value)
		if err != nil {
			return err
		}
		inst.Set(s.Field.Lexeme, v)
		return nil

	case *ast.Block:
		return i.executeBlock(s)

	case *ast.If:
		for idx, cond := range s.Conditions {
			v, err := i.eval(cond)
			if err != nil {
				return err
			}
			if value.Truthy(v) {
				return i.execute(s.Branches[idx])
			}
		}
		if s.Else != nil {
			return i.execute(s.Else)
		}
		return nil

	case *ast.While:
		for {
			cond, err := i.eval(s.Condition)
			if err != nil {
				return err
			}
			if !value.Truthy(cond) {
				return nil
			}
			err = i.execute(s.Body)
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			if err != nil {
				return err
			}
		}

	case *ast.Break:
		return breakSignal{}

	case *ast.Continue:
		return continueSignal{}

	case *ast.Return:
		var v value.Value = value.Nil{}
		if s.Value != nil {
			var err error
			v, err = i.eval(s.Value)
			if err != nil {
				return err
			}
		}
		return returnSignal{value: v}

	case *ast.FunctionDecl:
		fn := &Function{decl: s, closure: i.env}
		i.env.Define(s.Name.Lexeme, fn)
		return nil

	case *ast.ClassDecl:
		return i.executeClassDecl(s)

	default:
		panic("interp: unhandled statement type")
	}
}

// executeBlock pushes a new environment, executes the block's statements in
// order, and restores the enclosing environment on every exit path
// including control signals and runtime errors (spec.md §4.3 "Block",
// §7 "Propagation policy"). The block's recorded for-loop increment (if
// any) runs after its statements complete, and a ContinueSignal runs it
// before propagating, so `continue` advances the loop exactly once per
// skipped iteration (spec.md §8).
func (i *Interpreter) executeBlock(b *ast.Block) error {
	env := environment.NewEnclosed(i.env)
	return i.executeBlockBody(b, env)
}

func (i *Interpreter) executeBlockBody(b *ast.Block, env *environment.Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, stmt := range b.Statements {
		if err := i.execute(stmt); err != nil {
			if _, ok := err.(continueSignal); ok && b.ForIncrement != nil {
				if incErr := i.execute(b.ForIncrement); incErr != nil {
					return incErr
				}
			}
			return err
		}
	}
	if b.ForIncrement != nil {
		return i.execute(b.ForIncrement)
	}
	return nil
}

func (i *Interpreter) executeClassDecl(c *ast.ClassDecl) error {
	var superclass *Class
	if c.Superclass != nil {
		v, err := i.evalIdentifier(c.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*Class)
		if !ok {
			return i.runtimeErr(&c.Superclass.Name, "superclass must be a class")
		}
		superclass = sc
	}

	classEnv := i.env
	if superclass != nil {
		classEnv = environment.NewEnclosed(classEnv)
		classEnv.Define("super", superclass)
	}

	methods := make(map[string]*Function)
	for _, m := range c.Methods {
		methods[m.Name.Lexeme] = &Function{
			decl:          m,
			closure:       classEnv,
			isInitializer: m.Name.Lexeme == c.Name.Lexeme,
		}
	}

	class := &Class{name: c.Name.Lexeme, superclass: superclass, methods: methods}
	i.env.Define(c.Name.Lexeme, class)
	return nil
}

// ---- expression evaluation ----

func (i *Interpreter) eval(expr ast.Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e.Value), nil
	case *ast.Grouping:
		return i.eval(e.Expression)
	case *ast.Unary:
		return i.evalUnary(e)
	case *ast.Binary:
		return i.evalBinary(e)
	case *ast.Identifier:
		return i.evalIdentifier(e)
	case *ast.This:
		return i.lookupResolved(e, "this")
	case *ast.Super:
		return i.evalSuper(e)
	case *ast.Call:
		return i.evalCall(e)
	case *ast.GetField:
		return i.evalGetField(e)
	default:
		panic("interp: unhandled expression type")
	}
}

func literalValue(v any) value.Value {
	switch vv := v.(type) {
	case nil:
		return value.Nil{}
	case bool:
		return value.Bool(vv)
	case float64:
		return value.Number(vv)
	case string:
		return value.NewString(vv)
	default:
		panic("interp: unsupported literal type")
	}
}

func (i *Interpreter) evalUnary(u *ast.Unary) (value.Value, error) {
	right, err := i.eval(u.Right)
	if err != nil {
		return nil, err
	}
	switch u.Operator.Type {
	case token.Bang:
		return value.Bool(!value.Truthy(right)), nil
	case token.Minus:
		n, ok := right.(value.Number)
		if !ok {
			return nil, i.runtimeErr(&u.Operator, "operand must be a number")
		}
		return -n, nil
	}
	panic("interp: unhandled unary operator")
}

func (i *Interpreter) evalBinary(b *ast.Binary) (value.Value, error) {
	// and/or short-circuit: the right operand is evaluated only when the
	// left doesn't already determine the result (spec.md §4.3 "Binary").
	switch b.Operator.Type {
	case token.And:
		left, err := i.eval(b.Left)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(left) {
			return value.Bool(false), nil
		}
		right, err := i.eval(b.Right)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.Truthy(right)), nil

	case token.Or:
		left, err := i.eval(b.Left)
		if err != nil {
			return nil, err
		}
		if value.Truthy(left) {
			return value.Bool(true), nil
		}
		right, err := i.eval(b.Right)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.Truthy(right)), nil
	}

	left, err := i.eval(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Operator.Type {
	case token.Plus:
		return i.evalPlus(&b.Operator, left, right)

	case token.Minus, token.Star, token.Slash:
		ln, lok := left.(value.Number)
		rn, rok := right.(value.Number)
		if !lok || !rok {
			return nil, i.runtimeErr(&b.Operator, "operands must be numbers")
		}
		switch b.Operator.Type {
		case token.Minus:
			return ln - rn, nil
		case token.Star:
			return ln * rn, nil
		case token.Slash:
			if rn == 0 {
				return nil, i.runtimeErr(&b.Operator, "division by zero")
			}
			return ln / rn, nil
		}

	case token.Percent:
		ln, lok := left.(value.Number)
		rn, rok := right.(value.Number)
		if !lok || !rok {
			return nil, i.runtimeErr(&b.Operator, "operands must be numbers")
		}
		li, lok := exactInt(ln)
		ri, rok := exactInt(rn)
		if !lok || !rok {
			return nil, i.runtimeErr(&b.Operator, "'%' requires integer-valued operands")
		}
		if ri == 0 {
			return nil, i.runtimeErr(&b.Operator, "division by zero")
		}
		return value.Number(li % ri), nil

	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return i.evalComparison(&b.Operator, left, right)

	case token.EqualEqual:
		return value.Bool(value.Equal(left, right)), nil
	case token.BangEqual:
		return value.Bool(!value.Equal(left, right)), nil
	}
	panic("interp: unhandled binary operator")
}

func exactInt(n value.Number) (int64, bool) {
	f := float64(n)
	i := int64(f)
	return i, f == float64(i)
}

func (i *Interpreter) evalPlus(op *token.Token, left, right value.Value) (value.Value, error) {
	ln, lIsNum := left.(value.Number)
	rn, rIsNum := right.(value.Number)
	if lIsNum && rIsNum {
		return ln + rn, nil
	}
	ls, lIsStr := left.(value.String)
	rs, rIsStr := right.(value.String)
	if lIsStr && rIsStr {
		return value.NewString(string(ls) + string(rs)), nil
	}
	if lIsStr && rIsNum {
		return value.NewString(string(ls) + value.Stringify(rn)), nil
	}
	if lIsNum && rIsStr {
		return value.NewString(value.Stringify(ln) + string(rs)), nil
	}
	return nil, i.runtimeErr(op, "operands must be two numbers or involve at least one string")
}

func (i *Interpreter) evalComparison(op *token.Token, left, right value.Value) (value.Value, error) {
	if ln, ok := left.(value.Number); ok {
		rn, ok := right.(value.Number)
		if !ok {
			return nil, i.runtimeErr(op, "operands must be the same comparable kind")
		}
		return value.Bool(compareOrdered(op.Type, float64(ln), float64(rn))), nil
	}
	if ls, ok := left.(value.String); ok {
		rs, ok := right.(value.String)
		if !ok {
			return nil, i.runtimeErr(op, "operands must be the same comparable kind")
		}
		return value.Bool(compareStrings(op.Type, string(ls), string(rs))), nil
	}
	return nil, i.runtimeErr(op, "operands must be numbers or strings")
}

func compareOrdered(op token.Type, l, r float64) bool {
	switch op {
	case token.Less:
		return l < r
	case token.LessEqual:
		return l <= r
	case token.Greater:
		return l > r
	case token.GreaterEqual:
		return l >= r
	}
	panic("interp: unhandled comparison operator")
}

func compareStrings(op token.Type, l, r string) bool {
	switch op {
	case token.Less:
		return l < r
	case token.LessEqual:
		return l <= r
	case token.Greater:
		return l > r
	case token.GreaterEqual:
		return l >= r
	}
	panic("interp: unhandled comparison operator")
}

func (i *Interpreter) evalIdentifier(id *ast.Identifier) (value.Value, error) {
	return i.lookupResolved(id, id.Name.Lexeme)
}

// lookupResolved reads an identifier/this/super use at exactly the depth the
// resolver recorded, with no fallback walk; absence from the table means
// the name lives in the global scope, read dynamically instead (spec.md §3
// "Invariants", §4.4).
func (i *Interpreter) lookupResolved(node ast.Node, name string) (value.Value, error) {
	if depth, ok := i.depths[node]; ok {
		if v, ok := i.env.GetAt(depth, name); ok {
			return v, nil
		}
	} else if v, ok := i.globals.Get(name); ok {
		return v, nil
	}
	return nil, i.runtimeErrNode(node, "reference to non-existent identifier '"+name+"'")
}

func (i *Interpreter) assignIdentifier(id *ast.Identifier, v value.Value) error {
	if depth, ok := i.depths[id]; ok {
		if i.env.AssignAt(depth, id.Name.Lexeme, v) {
			return nil
		}
	} else if i.globals.Assign(id.Name.Lexeme, v) {
		return nil
	}
	return i.runtimeErr(&id.Name, "reference to non-existent identifier '"+id.Name.Lexeme+"'")
}

func (i *Interpreter) evalSuper(s *ast.Super) (value.Value, error) {
	depth := i.depths[s]
	superVal, ok := i.env.GetAt(depth, "super")
	if !ok {
		return nil, i.runtimeErr(&s.Keyword, "reference to non-existent identifier 'super'")
	}
	super := superVal.(*Class)

	thisVal, _ := i.env.GetAt(depth-1, "this")
	this := thisVal.(*Instance)

	method := super.findMethod(s.Method.Lexeme)
	if method == nil {
		return nil, i.runtimeErr(&s.Method, "undefined property '"+s.Method.Lexeme+"'")
	}
	return method.Bind(this), nil
}

func (i *Interpreter) evalGetField(g *ast.GetField) (value.Value, error) {
	obj, err := i.eval(g.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, i.runtimeErr(&g.Field, "only instances have properties")
	}
	v, ok := inst.Get(g.Field.Lexeme)
	if !ok {
		return nil, i.runtimeErr(&g.Field, "undefined property '"+g.Field.Lexeme+"'")
	}
	return v, nil
}

func (i *Interpreter) evalCall(c *ast.Call) (value.Value, error) {
	callee, err := i.eval(c.Callee)
	if err != nil {
		return nil, err
	}
	callable, ok := callee.(Callable)
	if !ok {
		return nil, i.runtimeErr(&c.Paren, "can only call functions and classes")
	}

	args := make([]value.Value, len(c.Args))
	for idx, a := range c.Args {
		v, err := i.eval(a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	if arity := callable.Arity(); arity >= 0 && arity != len(args) {
		return nil, i.runtimeErr(&c.Paren, fmt.Sprintf("expected %d argument(s) but got %d", arity, len(args)))
	}

	// Function.Call reads this to record the line the call happened at,
	// not the callee's declaration line, in the pushed stack frame.
	i.callSitePos = c.Paren.Pos
	return callable.Call(i, args)
}

// ---- error helpers ----

func (i *Interpreter) runtimeErr(tok *token.Token, msg string) *RuntimeError {
	stack := make([]StackFrame, len(i.callStack))
	copy(stack, i.callStack)
	return &RuntimeError{Token: tok, Message: msg, Stack: stack}
}

func (i *Interpreter) runtimeErrNode(node ast.Node, msg string) *RuntimeError {
	var tok token.Token
	switch n := node.(type) {
	case *ast.Identifier:
		tok = n.Name
	case *ast.This:
		tok = n.Keyword
	case *ast.Super:
		tok = n.Keyword
	}
	return i.runtimeErr(&tok, msg)
}
