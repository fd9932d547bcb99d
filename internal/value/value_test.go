package value_test

import (
	"testing"

	"github.com/goloxlang/golox/internal/value"
)

func TestTruthiness(t *testing.T) {
	cases := []struct {
		v    value.Value
		want bool
	}{
		{value.Nil{}, false},
		{value.Bool(false), false},
		{value.Bool(true), true},
		{value.NewString(""), false},
		{value.NewString("false"), false},
		{value.NewString("0"), true},
		{value.Number(0), true},
		{value.NewString("hi"), true},
	}
	for _, c := range cases {
		if got := value.Truthy(c.v); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestNumberStringFormat(t *testing.T) {
	cases := []struct {
		n    value.Number
		want string
	}{
		{value.Number(3), "3"},
		{value.Number(-3), "-3"},
		{value.Number(3.5), "3.50"},
		{value.Number(0), "0"},
	}
	for _, c := range cases {
		if got := c.n.String(); got != c.want {
			t.Errorf("Number(%v).String() = %q, want %q", float64(c.n), got, c.want)
		}
	}
}

func TestEqualCrossKindWithBoolCoercion(t *testing.T) {
	if !value.Equal(value.Bool(true), value.NewString("hi")) {
		t.Error("true == \"hi\" should be true (non-empty string is truthy)")
	}
	if value.Equal(value.Bool(true), value.NewString("")) {
		t.Error("true == \"\" should be false (empty string is falsy)")
	}
	if value.Equal(value.Number(1), value.NewString("1")) {
		t.Error("1 == \"1\" should be false: cross-kind comparison not involving bool")
	}
}

func TestEqualSameKindStructural(t *testing.T) {
	if !value.Equal(value.Number(1), value.Number(1)) {
		t.Error("1 == 1 should be true")
	}
	if !value.Equal(value.NewString("hi"), value.NewString("hi")) {
		t.Error("\"hi\" == \"hi\" should be true")
	}
	if !value.Equal(value.Nil{}, value.Nil{}) {
		t.Error("nil == nil should be true")
	}
}

func TestNewStringNormalizesToNFC(t *testing.T) {
	// "é" as e + combining acute accent (NFD) should normalize to the
	// single precomposed code point (NFC) so structural equality is
	// consistent regardless of source encoding.
	decomposed := value.NewString("é")
	composed := value.NewString("é")
	if !value.Equal(decomposed, composed) {
		t.Error("NewString should normalize to NFC so equivalent forms compare equal")
	}
}
