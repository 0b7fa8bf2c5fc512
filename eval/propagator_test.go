package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNullCheckDefinitive(t *testing.T) {
	p := NewPropagator(Bindings{"ptr": Int(0)})
	assert.Equal(t, AlwaysTrue, p.Classify("ptr == NULL"))
	assert.Equal(t, AlwaysFalse, p.Classify("ptr != NULL"))
	assert.Equal(t, AlwaysFalse, p.Classify("ptr"))
	assert.Equal(t, AlwaysTrue, p.Classify("!ptr"))
}

func TestClassifyNonNullPointer(t *testing.T) {
	p := NewPropagator(Bindings{"ptr": Int(0x1000)})
	assert.Equal(t, AlwaysFalse, p.Classify("ptr == NULL"))
	assert.Equal(t, AlwaysTrue, p.Classify("ptr != NULL"))
	assert.Equal(t, AlwaysTrue, p.Classify("ptr"))
}

func TestClassifyRangeComparisonDecidable(t *testing.T) {
	p := NewPropagator(Bindings{"count": Range(1, 5)})
	assert.Equal(t, AlwaysTrue, p.Classify("count < 10"))
	assert.Equal(t, AlwaysFalse, p.Classify("count > 10"))
}

func TestClassifyRangeComparisonUndecidable(t *testing.T) {
	p := NewPropagator(Bindings{"count": Range(1, 10)})
	assert.Equal(t, VerdictUnknown, p.Classify("count < 5"))
}

func TestClassifyPlainExpression(t *testing.T) {
	p := NewPropagator(nil)
	assert.Equal(t, AlwaysTrue, p.Classify("1 << 4 | 2"))
	assert.Equal(t, AlwaysFalse, p.Classify("0x10 & 0xF0 == 0x10"))
}
