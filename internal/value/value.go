// Package value defines golox's runtime value domain: nil, boolean, number,
// string, callable, and instance.
package value

import (
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Value is the sum type of every runtime value golox programs can produce.
// It mirrors the teacher's Value interface (Type()/String()) narrowed to the
// handful of kinds spec.md §3 names.
type Value interface {
	// Type returns the kind name, used only for diagnostics.
	Type() string
	// String returns the display form used by print() and the REPL,
	// following the format rules in spec.md §6.
	String() string
}

// Nil is golox's singular nil value.
type Nil struct{}

func (Nil) Type() string   { return "NIL" }
func (Nil) String() string { return "nil" }

// Bool wraps a boolean value.
type Bool bool

func (Bool) Type() string { return "BOOL" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number wraps a 64-bit float, golox's only numeric type.
type Number float64

func (Number) Type() string { return "NUMBER" }

// String formats the number per spec.md §6: integers display without a
// decimal point, non-integers display with exactly two decimal places.
func (n Number) String() string {
	f := float64(n)
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// String wraps an immutable string value. Strings are normalized to NFC on
// construction (NewString) so structural equality and ordering behave
// consistently regardless of the normalization form the source text used.
type String string

func (String) Type() string   { return "STRING" }
func (s String) String() string { return string(s) }

// NewString normalizes s to Unicode NFC, grounded on the teacher's use of
// golang.org/x/text/unicode/norm for string-comparison helpers
// (internal/interp/string_helpers.go).
func NewString(s string) String {
	return String(norm.NFC.String(s))
}

// Truthy implements golox's truthiness rule (spec.md §4.3): false and nil are
// falsy; the empty string and the literal string "false" are falsy; every
// other value is truthy. The string-literal carve-out is a deliberate,
// documented deviation — see spec.md §9 "Open question: string truthiness".
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(vv)
	case String:
		s := string(vv)
		return s != "" && s != "false"
	}
	return true
}

// Equal implements golox's total, never-faulting equality (spec.md §4.3
// "=="/"!="): same-kind structural equality; a bool operand coerces the
// other side via Truthy before comparing; otherwise cross-kind is false.
func Equal(a, b Value) bool {
	if _, ok := a.(Bool); ok {
		return Truthy(a) == Truthy(b)
	}
	if _, ok := b.(Bool); ok {
		return Truthy(a) == Truthy(b)
	}
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	default:
		return a == b
	}
}

// Stringify formats any value for concatenation with "+": numbers use
// Number.String(), other values use their own String() form.
func Stringify(v Value) string {
	return v.String()
}
