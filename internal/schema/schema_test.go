package schema

import (
	"testing"

	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
)

func TestComputeInputsDedupesAndPreservesOrder(t *testing.T) {
	op := SchemaOp{
		Kind:  OpConcat,
		Left:  ListOf([]SchemaValue{OpRef(3, nil), OpRef(1, nil), OpRef(3, nil)}),
		Right: OpRef(2, nil),
	}
	assert.Equal(t, []int{3, 1, 2}, ComputeInputs(op))
}

func TestIsConcreteFalseWhenAnyOperandIsSymbolic(t *testing.T) {
	concrete := SchemaOp{Kind: OpAdd, Left: Literal(value.RIntVal(1)), Right: Literal(value.RIntVal(2))}
	assert.True(t, concrete.IsConcrete())

	symbolic := SchemaOp{Kind: OpAdd, Left: Literal(value.RIntVal(1)), Right: OpRef(5, nil)}
	assert.False(t, symbolic.IsConcrete())

	envDependent := SchemaOp{Kind: OpAdd, Left: Literal(value.RIntVal(1)), Right: EnvRef("HOME")}
	assert.False(t, envDependent.IsConcrete())
}

func TestIsPureCoversArithmeticAndExcludesSideEffects(t *testing.T) {
	assert.True(t, OpAdd.IsPure())
	assert.True(t, OpJsonEncode.IsPure())
	assert.False(t, OpWriteFile.IsPure())
	assert.False(t, OpHttpRequest.IsPure())
	assert.False(t, OpExec.IsPure())
}

func TestSchemaValueOpIDsDescendsIntoListsNotSubPlans(t *testing.T) {
	sv := ListOf([]SchemaValue{OpRef(1, nil), Literal(value.RIntVal(9)), OpRef(2, nil)})
	assert.Equal(t, []int{1, 2}, sv.OpIDs())

	plain := Literal(value.RIntVal(1))
	assert.Nil(t, plain.OpIDs())
}

func TestSchemaValueIsSymbolic(t *testing.T) {
	assert.False(t, Literal(value.RIntVal(1)).IsSymbolic())
	assert.True(t, OpRef(1, nil).IsSymbolic())
	assert.True(t, ParamRef("x").IsSymbolic())
	assert.True(t, EnvRef("HOME").IsSymbolic())
	assert.True(t, ConfigRef("key").IsSymbolic())
	assert.True(t, ListOf([]SchemaValue{Literal(value.RIntVal(1)), OpRef(2, nil)}).IsSymbolic())
	assert.False(t, ListOf([]SchemaValue{Literal(value.RIntVal(1)), Literal(value.RIntVal(2))}).IsSymbolic())
}

func TestSchemaByIDAndSubPlanByID(t *testing.T) {
	s := Schema{Entries: []SchemaEntry{{ID: 1}, {ID: 5}}}
	e, ok := s.ByID(5)
	assert.True(t, ok)
	assert.Equal(t, 5, e.ID)
	_, ok = s.ByID(99)
	assert.False(t, ok)

	sp := SchemaSubPlan{Entries: []SchemaEntry{{ID: 1}, {ID: 2}}}
	e2, ok := sp.ByID(2)
	assert.True(t, ok)
	assert.Equal(t, 2, e2.ID)
}

func TestOutputZeroWithNoEntriesYieldsNoneByConvention(t *testing.T) {
	sp := SchemaSubPlan{Output: 0}
	_, ok := sp.ByID(0)
	assert.False(t, ok) // no entry with id 0; resolver/interpreter treat this as None
}
