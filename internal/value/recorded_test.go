package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordedValueTruthy(t *testing.T) {
	assert.False(t, RNoneVal().Truthy())
	assert.False(t, RBoolVal(false).Truthy())
	assert.True(t, RBoolVal(true).Truthy())
	assert.False(t, RIntVal(0).Truthy())
	assert.True(t, RIntVal(-1).Truthy())
	assert.False(t, RFloatVal(0).Truthy())
	assert.False(t, RStringVal("").Truthy())
	assert.True(t, RStringVal("x").Truthy())
	assert.False(t, RBytesVal(nil).Truthy())
	assert.True(t, RBytesVal([]byte{0}).Truthy())
	assert.False(t, RListVal(nil).Truthy())
	assert.True(t, RListVal([]RecordedValue{RNoneVal()}).Truthy())

	empty := RDictVal(NewOrderedDict())
	assert.False(t, empty.Truthy())
	d := NewOrderedDict()
	d.Set("a", RIntVal(1))
	assert.True(t, RDictVal(d).Truthy())
}

func TestRecordedValueEqualCrossKindNumericPromotion(t *testing.T) {
	assert.True(t, RIntVal(2).Equal(RFloatVal(2.0)))
	assert.True(t, RFloatVal(2.0).Equal(RIntVal(2)))
	assert.False(t, RIntVal(2).Equal(RFloatVal(2.5)))
	assert.False(t, RIntVal(1).Equal(RStringVal("1")))
}

func TestRecordedValueEqualLists(t *testing.T) {
	a := RListVal([]RecordedValue{RIntVal(1), RStringVal("x")})
	b := RListVal([]RecordedValue{RIntVal(1), RStringVal("x")})
	c := RListVal([]RecordedValue{RIntVal(1), RStringVal("y")})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRecordedValueEqualDicts(t *testing.T) {
	d1 := NewOrderedDict()
	d1.Set("a", RIntVal(1))
	d1.Set("b", RIntVal(2))

	d2 := NewOrderedDict()
	d2.Set("b", RIntVal(2)) // different insertion order, same contents
	d2.Set("a", RIntVal(1))

	assert.True(t, RDictVal(d1).Equal(RDictVal(d2)))

	d3 := NewOrderedDict()
	d3.Set("a", RIntVal(1))
	assert.False(t, RDictVal(d1).Equal(RDictVal(d3)))
}

func TestOrderedDictPreservesInsertionOrderAndSortsSeparately(t *testing.T) {
	d := NewOrderedDict()
	d.Set("z", RIntVal(1))
	d.Set("a", RIntVal(2))
	d.Set("m", RIntVal(3))

	assert.Equal(t, []string{"z", "a", "m"}, d.Keys())
	assert.Equal(t, []string{"a", "m", "z"}, d.SortedKeys())
	assert.Equal(t, 3, d.Len())

	d.Set("a", RIntVal(99)) // overwrite, not a new key
	assert.Equal(t, []string{"z", "a", "m"}, d.Keys())
	v, ok := d.Get("a")
	assert.True(t, ok)
	assert.Equal(t, RIntVal(99), v)
}

func TestRecordedValueStringFormatsPythonStyle(t *testing.T) {
	assert.Equal(t, "None", RNoneVal().String())
	assert.Equal(t, "True", RBoolVal(true).String())
	assert.Equal(t, "False", RBoolVal(false).String())
	assert.Equal(t, "7", RIntVal(7).String())
}
