package interpreter

import (
	"bytes"
	"context"
	"testing"

	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor() *Executor {
	return &Executor{
		MaxConcurrent: DefaultMaxConcurrent,
		Env:           OSEnvironment{},
		Stdout:        &bytes.Buffer{},
	}
}

func TestRunLinearArithmeticChain(t *testing.T) {
	// #1 = 2 + 3, #2 = #1 * 10
	ops := []plan.Op{
		{ID: 1, Payload: plan.Payload{Kind: plan.OpAdd, Left: plan.Lit(value.RIntVal(2)), Right: plan.Lit(value.RIntVal(3))}},
		{ID: 2, Payload: plan.Payload{Kind: plan.OpMul, Left: plan.OpOutput(1, nil), Right: plan.Lit(value.RIntVal(10))}, Inputs: []int{1}},
	}
	p := &plan.Plan{Ops: ops}

	x := newTestExecutor()
	cache, err := x.Run(context.Background(), p)
	require.NoError(t, err)

	v1, ok := cache.Get(1)
	require.True(t, ok)
	assert.Equal(t, value.RIntVal(5), v1)

	v2, ok := cache.Get(2)
	require.True(t, ok)
	assert.Equal(t, value.RIntVal(50), v2)
}

func TestRunDryRunResolvesEveryOpToNone(t *testing.T) {
	ops := []plan.Op{
		{ID: 1, Payload: plan.Payload{Kind: plan.OpAdd, Left: plan.Lit(value.RIntVal(2)), Right: plan.Lit(value.RIntVal(3))}},
		{ID: 2, Payload: plan.Payload{Kind: plan.OpMul, Left: plan.OpOutput(1, nil), Right: plan.Lit(value.RIntVal(10))}, Inputs: []int{1}},
	}
	p := &plan.Plan{Ops: ops}

	x := newTestExecutor()
	x.DryRun = true
	cache, err := x.Run(context.Background(), p)
	require.NoError(t, err)

	for _, id := range []int{1, 2} {
		v, ok := cache.Get(id)
		require.True(t, ok)
		assert.Equal(t, value.RNoneVal(), v)
	}
}

func TestRunPropagatesOpError(t *testing.T) {
	// Index out of range on a literal empty list.
	ops := []plan.Op{
		{ID: 1, Payload: plan.Payload{
			Kind:       plan.OpIndex,
			Collection: plan.Lit(value.RListVal(nil)),
			Index:      plan.Lit(value.RIntVal(0)),
		}},
	}
	p := &plan.Plan{Ops: ops}

	x := newTestExecutor()
	_, err := x.Run(context.Background(), p)
	require.Error(t, err)
}

func TestRunIndependentOpsAllComplete(t *testing.T) {
	// Three ops with no edges between them; all must still resolve.
	ops := []plan.Op{
		{ID: 1, Payload: plan.Payload{Kind: plan.OpNot, Value: plan.Lit(value.RBoolVal(false))}},
		{ID: 2, Payload: plan.Payload{Kind: plan.OpNeg, Value: plan.Lit(value.RIntVal(7))}},
		{ID: 3, Payload: plan.Payload{Kind: plan.OpLen, Value: plan.Lit(value.RStringVal("abcd"))}},
	}
	p := &plan.Plan{Ops: ops}

	x := newTestExecutor()
	cache, err := x.Run(context.Background(), p)
	require.NoError(t, err)

	v1, _ := cache.Get(1)
	v2, _ := cache.Get(2)
	v3, _ := cache.Get(3)
	assert.Equal(t, value.RBoolVal(true), v1)
	assert.Equal(t, value.RIntVal(-7), v2)
	assert.Equal(t, value.RIntVal(4), v3)
}

func TestRunPrintWritesToStdout(t *testing.T) {
	var buf bytes.Buffer
	ops := []plan.Op{
		{ID: 1, Payload: plan.Payload{Kind: plan.OpPrint, Message: plan.Lit(value.RStringVal("hello"))}},
	}
	p := &plan.Plan{Ops: ops}

	x := newTestExecutor()
	x.Stdout = &buf
	_, err := x.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", buf.String())
}

func TestRunSocketOpsRejectedInStreamingMode(t *testing.T) {
	ops := []plan.Op{
		{ID: 1, Payload: plan.Payload{Kind: plan.OpTcpListen}},
	}
	p := &plan.Plan{Ops: ops}

	x := newTestExecutor()
	_, err := x.Run(context.Background(), p)
	require.Error(t, err)
}
