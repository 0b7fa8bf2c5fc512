package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShiftAndBitOrPrecedence(t *testing.T) {
	v := Eval("1 << 4 | 2", nil)
	n, ok := v.AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(18), n)
}

func TestEqualityBindsTighterThanBitwiseAnd(t *testing.T) {
	v := Eval("0x10 & 0xF0 == 0x10", nil)
	n, ok := v.AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(0), n)
	assert.False(t, v.truthy())
}

func TestIdentifierBindingWithArrowNormalization(t *testing.T) {
	vars := Bindings{"id->idVendor": Int(0x1234)}
	v := Eval("id->idVendor == 0x1234", vars)
	assert.Equal(t, KindBool, v.Kind)
	assert.True(t, v.Bool)
}

func TestParenthesesRoundTripProperty(t *testing.T) {
	cases := []struct{ a, op, b string }{
		{"3", "+", "4"},
		{"10", "-", "2"},
		{"6", "*", "7"},
		{"20", "/", "4"},
		{"5", "%", "2"},
		{"1", "<<", "3"},
		{"16", ">>", "2"},
		{"3", "&", "1"},
		{"3", "|", "4"},
		{"5", "^", "1"},
		{"2", "<", "3"},
		{"2", "==", "2"},
		{"1", "&&", "0"},
		{"1", "||", "0"},
	}
	for _, c := range cases {
		plain := Eval(c.a+" "+c.op+" "+c.b, nil)
		parenthesized := Eval("("+c.a+" "+c.op+" "+c.b+")", nil)
		assert.Equal(t, plain, parenthesized, "operator %s", c.op)
	}
}

func TestNegationRoundTripProperty(t *testing.T) {
	vars := Bindings{"x": Bool(true)}
	negated := Eval("!(x)", vars)
	direct := Eval("x", vars)
	assert.Equal(t, !direct.truthy(), negated.truthy())
}

func TestNullLiterals(t *testing.T) {
	assert.Equal(t, KindNull, Eval("NULL", nil).Kind)
	assert.Equal(t, KindNull, Eval("nullptr", nil).Kind)
	assert.Equal(t, KindNull, Eval("null", nil).Kind)
}

func TestUnknownIdentifierIsUnknown(t *testing.T) {
	assert.Equal(t, KindUnknown, Eval("some_unbound_var", nil).Kind)
}
