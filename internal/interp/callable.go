package interp

import (
	"github.com/goloxlang/golox/internal/ast"
	"github.com/goloxlang/golox/internal/environment"
	"github.com/goloxlang/golox/internal/value"
)

// Callable is implemented by every invocable value: user functions, bound
// methods, classes (constructors), and native functions (spec.md §3
// "callable — polymorphic").
type Callable interface {
	value.Value
	// Arity returns the expected argument count, or -1 for a variadic
	// native marked "unlimited" (spec.md §4.3 "Call").
	Arity() int
	// Call invokes the callable with already-evaluated arguments.
	Call(i *Interpreter, args []value.Value) (value.Value, error)
}

// Function is a user-declared function or method, capturing the
// environment active at its declaration (spec.md §3 "Environment...
// lifecycle").
type Function struct {
	decl          *ast.FunctionDecl
	closure       *environment.Environment
	isInitializer bool
}

func (f *Function) Type() string   { return "FUNCTION" }
func (f *Function) String() string { return "<function " + f.decl.Name.Lexeme + ">" }
func (f *Function) Arity() int     { return len(f.decl.Params) }

// Bind returns a fresh callable whose environment captures this class scope
// (f.closure) with `this` bound to instance in a new method-level
// environment — never written into the shared class environment itself, so
// distinct receivers never clobber each other's `this` (spec.md §5
// "Shared resources").
func (f *Function) Bind(instance *Instance) *Function {
	env := environment.NewEnclosed(f.closure)
	env.Define("this", instance)
	return &Function{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

// Call pushes a fresh environment enclosed by the function's closure, binds
// each parameter, and executes the body. A ReturnSignal unwinds to here and
// supplies the result; falling off the end returns nil (or, for an
// initializer, the bound receiver — spec.md §4.3 "Class construction").
func (f *Function) Call(i *Interpreter, args []value.Value) (value.Value, error) {
	env := environment.NewEnclosed(f.closure)
	for idx, param := range f.decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	i.pushFrame(f.decl.Name.Lexeme, i.callSitePos)
	defer i.popFrame()

	err := i.executeBlockBody(f.decl.Body, env)
	if ret, ok := err.(returnSignal); ok {
		if f.isInitializer {
			this, _ := f.closure.GetAt(0, "this")
			return this, nil
		}
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}

	if f.isInitializer {
		this, _ := f.closure.GetAt(0, "this")
		return this, nil
	}
	return value.Nil{}, nil
}

// Class is a callable constructor implementing single inheritance with a
// method table consulted via superclass traversal (spec.md §4.3
// "GetField").
type Class struct {
	name       string
	superclass *Class
	methods    map[string]*Function
}

func (c *Class) Type() string   { return "CLASS" }
func (c *Class) String() string { return "<Class " + c.name + ">" }

// findMethod looks up name on the nearest class in the superclass chain
// that defines it, returning nil if none do (spec.md §8 "For every class
// with superclass chain").
func (c *Class) findMethod(name string) *Function {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil
}

// Arity is the initializer's parameter count, or zero if the class declares
// none (spec.md §4.3 "Class construction").
func (c *Class) Arity() int {
	if init := c.findMethod(c.name); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a fresh Instance and, if an initializer is defined, binds
// `this` and runs it with the call arguments.
func (c *Class) Call(i *Interpreter, args []value.Value) (value.Value, error) {
	instance := &Instance{class: c, fields: make(map[string]value.Value)}
	if init := c.findMethod(c.name); init != nil {
		if _, err := init.Bind(instance).Call(i, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// NativeFunction wraps a Go function as a golox callable (spec.md §6
// "Built-in globals").
type NativeFunction struct {
	Name  string
	ArgN  int // -1 for unlimited/variadic natives
	Fn    func(i *Interpreter, args []value.Value) (value.Value, error)
}

func (n *NativeFunction) Type() string   { return "NATIVE" }
func (n *NativeFunction) String() string { return "<native-fn " + n.Name + ">" }
func (n *NativeFunction) Arity() int     { return n.ArgN }
func (n *NativeFunction) Call(i *Interpreter, args []value.Value) (value.Value, error) {
	return n.Fn(i, args)
}

// Instance is a class instance with a mutable field map (spec.md §3
// "instance").
type Instance struct {
	class  *Class
	fields map[string]value.Value
}

func (inst *Instance) Type() string   { return "INSTANCE" }
func (inst *Instance) String() string { return "<Instance " + inst.class.name + ">" }

// Get looks up name as a field first (fields shadow methods of the same
// name, spec.md §8 scenario 6), then as a bound method via the class's
// superclass-aware method table.
func (inst *Instance) Get(name string) (value.Value, bool) {
	if v, ok := inst.fields[name]; ok {
		return v, true
	}
	if name == inst.class.name {
		// Looking up the initializer by name from an instance is a runtime
		// error, not a bound-method lookup (spec.md §4.3 "GetField").
		return nil, false
	}
	if m := inst.class.findMethod(name); m != nil {
		return m.Bind(inst), true
	}
	return nil, false
}

// Set mutates (or creates) a field by name.
func (inst *Instance) Set(name string, v value.Value) {
	inst.fields[name] = v
}
