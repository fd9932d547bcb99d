package interp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/goloxlang/golox/internal/value"
)

// installNatives preloads the global environment with golox's built-in
// functions (spec.md §6 "Built-in globals").
func installNatives(i *Interpreter) {
	register := func(name string, argn int, fn func(i *Interpreter, args []value.Value) (value.Value, error)) {
		i.globals.Define(name, &NativeFunction{Name: name, ArgN: argn, Fn: fn})
	}

	register("clock", 0, nativeClock)
	register("print", -1, nativePrint)
	register("read", 0, nativeRead)
	register("readline", 0, nativeReadline)
	register("bool", 1, nativeBool)
	register("str", 1, nativeStr)
	register("num", 1, nativeNum)
}

func nativeClock(i *Interpreter, args []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}

// nativePrint formats each argument and writes them separated by single
// spaces followed by a newline; with no arguments it still emits a bare
// newline (SPEC_FULL.md §4 "print() with zero args still emits a newline").
func nativePrint(i *Interpreter, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for idx, a := range args {
		parts[idx] = value.Stringify(a)
	}
	fmt.Fprintln(i.Out, strings.Join(parts, " "))
	return value.Nil{}, nil
}

func nativeRead(i *Interpreter, args []value.Value) (value.Value, error) {
	var sb strings.Builder
	for {
		r, _, err := i.in.ReadRune()
		if err != nil {
			break
		}
		if unicode.IsSpace(r) {
			if sb.Len() > 0 {
				break
			}
			continue
		}
		sb.WriteRune(r)
	}
	return value.NewString(sb.String()), nil
}

func nativeReadline(i *Interpreter, args []value.Value) (value.Value, error) {
	line, err := i.in.ReadString('\n')
	if err != nil && line == "" {
		return value.NewString(""), nil
	}
	return value.NewString(strings.TrimRight(line, "\r\n")), nil
}

func nativeBool(i *Interpreter, args []value.Value) (value.Value, error) {
	return value.Bool(value.Truthy(args[0])), nil
}

func nativeStr(i *Interpreter, args []value.Value) (value.Value, error) {
	return value.NewString(value.Stringify(args[0])), nil
}

func nativeNum(i *Interpreter, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Number:
		return v, nil
	case value.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return nil, i.runtimeErr(nil, "cannot convert string to number: '"+string(v)+"'")
		}
		return value.Number(f), nil
	case value.Bool:
		if v {
			return value.Number(1), nil
		}
		return value.Number(0), nil
	default:
		return nil, i.runtimeErr(nil, "cannot convert value to number")
	}
}
