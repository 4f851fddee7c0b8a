package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecordedRoundTripsScalars(t *testing.T) {
	rv, err := ToRecorded(Int(42))
	require.NoError(t, err)
	assert.Equal(t, RIntVal(42), rv)

	rv, err = ToRecorded(String("hi"))
	require.NoError(t, err)
	assert.Equal(t, RStringVal("hi"), rv)

	rv, err = ToRecorded(None)
	require.NoError(t, err)
	assert.Equal(t, RNoneVal(), rv)
}

func TestToRecordedList(t *testing.T) {
	l := ListVal(NewList([]Value{Int(1), Int(2), String("x")}))
	rv, err := ToRecorded(l)
	require.NoError(t, err)
	assert.Equal(t, RListVal([]RecordedValue{RIntVal(1), RIntVal(2), RStringVal("x")}), rv)
}

func TestToRecordedDictPreservesKeyOrder(t *testing.T) {
	d := NewDict()
	d.Set("b", Int(2))
	d.Set("a", Int(1))
	rv, err := ToRecorded(DictVal(d))
	require.NoError(t, err)
	require.Equal(t, RDict, rv.Kind)
	assert.Equal(t, []string{"b", "a"}, rv.Dict.Keys())
}

func TestToRecordedFunctionIsUserFacingError(t *testing.T) {
	_, err := ToRecorded(FuncVal(&Function{}))
	assert.Error(t, err)
}

func TestFromRecordedRoundTripsScalars(t *testing.T) {
	assert.Equal(t, Int(5), FromRecorded(RIntVal(5)))
	assert.Equal(t, String("x"), FromRecorded(RStringVal("x")))
	assert.Equal(t, None, FromRecorded(RNoneVal()))
}

func TestFromRecordedList(t *testing.T) {
	v := FromRecorded(RListVal([]RecordedValue{RIntVal(1), RIntVal(2)}))
	require.Equal(t, KindList, v.Kind())
	assert.Equal(t, []Value{Int(1), Int(2)}, v.AsList().Items)
}

func TestRoundTripThroughBothConversions(t *testing.T) {
	original := ListVal(NewList([]Value{Int(1), String("a"), Bool(true)}))
	rv, err := ToRecorded(original)
	require.NoError(t, err)
	back := FromRecorded(rv)
	assert.Equal(t, original.AsList().Items, back.AsList().Items)
}
