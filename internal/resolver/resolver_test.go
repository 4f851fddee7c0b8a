package resolver

import (
	"testing"

	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/config"
	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapEnv map[string]string

func (m mapEnv) Lookup(name string) (string, bool) { v, ok := m[name]; return v, ok }

func TestResolveLiteralPassesThrough(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpWriteFile,
				Path:    schema.Literal(value.RStringVal("out.txt")),
				Content: schema.Literal(value.RStringVal("hi"))}},
		},
		NextID: 2,
	}

	p, err := Resolve(s, mapEnv{}, nil, "linux")
	require.NoError(t, err)
	require.Len(t, p.Ops, 1)
	op := p.Ops[0]
	assert.Equal(t, plan.OpWriteFile, op.Payload.Kind)
	assert.Equal(t, plan.RefLiteral, op.Payload.Path.Kind)
	assert.Equal(t, "out.txt", op.Payload.Path.Literal.Str)
}

func TestResolveEnvRef(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpEnvGet, Name: schema.EnvRef("HOME")}},
		},
	}

	p, err := Resolve(s, mapEnv{"HOME": "/root"}, nil, "linux")
	require.NoError(t, err)
	assert.Equal(t, plan.RefLiteral, p.Ops[0].Payload.Name.Kind)
	assert.Equal(t, "/root", p.Ops[0].Payload.Name.Literal.Str)
}

func TestResolveEnvRefUnset(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpEnvGet, Name: schema.EnvRef("MISSING")}},
		},
	}

	_, err := Resolve(s, mapEnv{}, nil, "linux")
	require.Error(t, err)
	var bpErr *bperrors.Error
	require.ErrorAs(t, err, &bpErr)
	assert.Equal(t, bperrors.KindUnresolvedEnvVar, bpErr.Kind)
}

func TestResolveConfigRefTwoStage(t *testing.T) {
	cfg := &config.ProjectConfig{
		Paths:     map[string]config.PathMapping{"data_dir": {Default: "/data", Linux: "/var/data"}},
		Variables: map[string]string{"region": "us-east-1"},
	}
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpReadFile, Path: schema.ConfigRef("data_dir")}},
			{ID: 2, Op: schema.SchemaOp{Kind: schema.OpEnvGet, Name: schema.ConfigRef("region")}},
		},
	}

	p, err := Resolve(s, mapEnv{}, cfg, "linux")
	require.NoError(t, err)
	assert.Equal(t, "/var/data", p.Ops[0].Payload.Path.Literal.Str)
	assert.Equal(t, "us-east-1", p.Ops[1].Payload.Name.Literal.Str)
}

func TestResolveConfigRefUndefined(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpReadFile, Path: schema.ConfigRef("nope")}},
		},
	}

	_, err := Resolve(s, mapEnv{}, nil, "linux")
	require.Error(t, err)
	var bpErr *bperrors.Error
	require.ErrorAs(t, err, &bpErr)
	assert.Equal(t, bperrors.KindUnresolvedConfig, bpErr.Kind)
}

func TestResolveExecShellLoweringNonWindows(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpExecShell, Command: schema.Literal(value.RStringVal("ls -la"))}},
		},
	}

	p, err := Resolve(s, mapEnv{}, nil, "linux")
	require.NoError(t, err)
	op := p.Ops[0]
	assert.Equal(t, plan.OpExec, op.Payload.Kind)
	assert.Equal(t, "sh", op.Payload.Command.Literal.Str)
	require.Equal(t, plan.RefList, op.Payload.Args.Kind)
	require.Len(t, op.Payload.Args.List, 2)
	assert.Equal(t, "-c", op.Payload.Args.List[0].Literal.Str)
	assert.Equal(t, "ls -la", op.Payload.Args.List[1].Literal.Str)
}

func TestResolveExecShellLoweringWindows(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpExecShell, Command: schema.Literal(value.RStringVal("dir"))}},
		},
	}

	p, err := Resolve(s, mapEnv{}, nil, "windows")
	require.NoError(t, err)
	op := p.Ops[0]
	assert.Equal(t, "cmd", op.Payload.Command.Literal.Str)
	assert.Equal(t, "/c", op.Payload.Args.List[0].Literal.Str)
}

func TestResolveParamRefBecomesDynamic(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpPrint, Message: schema.ParamRef("item")}},
		},
	}

	p, err := Resolve(s, mapEnv{}, nil, "linux")
	require.NoError(t, err)
	assert.Equal(t, plan.RefDynamic, p.Ops[0].Payload.Message.Kind)
	assert.Equal(t, "item", p.Ops[0].Payload.Message.Dynamic)
}

func TestResolveOpRefBecomesOpOutput(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpReadFile, Path: schema.Literal(value.RStringVal("a.txt"))}},
			{ID: 2, Op: schema.SchemaOp{Kind: schema.OpPrint, Message: schema.OpRef(1, nil)}, Inputs: []int{1}},
		},
	}

	p, err := Resolve(s, mapEnv{}, nil, "linux")
	require.NoError(t, err)
	msg := p.Ops[1].Payload.Message
	assert.Equal(t, plan.RefOpOutput, msg.Kind)
	assert.Equal(t, 1, msg.OpID)
	assert.Equal(t, []int{1}, p.Ops[1].Inputs)
}

func TestResolveSubPlanPreservesLocalIDs(t *testing.T) {
	body := schema.SchemaSubPlan{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpPrint, Message: schema.ParamRef("x")}},
		},
		Params: []string{"x"},
		Output: 1,
	}
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{
				Kind:     schema.OpForEach,
				Iterable: schema.Literal(value.RListVal(nil)),
				LoopVar:  "x",
				LoopBody: &body,
				Parallel: true,
			}},
		},
	}

	p, err := Resolve(s, mapEnv{}, nil, "linux")
	require.NoError(t, err)
	require.NotNil(t, p.Ops[0].Payload.LoopBody)
	assert.Equal(t, 1, p.Ops[0].Payload.LoopBody.Ops[0].ID)
	assert.Equal(t, 1, p.Ops[0].Payload.LoopBody.Output)
	assert.True(t, p.Ops[0].Payload.Parallel)
}

func TestResolveDanglingOpRefIsUnknownOpRef(t *testing.T) {
	s := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 2, Op: schema.SchemaOp{Kind: schema.OpPrint, Message: schema.OpRef(99, nil)}, Inputs: []int{99}},
		},
	}

	_, err := Resolve(s, mapEnv{}, nil, "linux")
	require.Error(t, err)
	var bpErr *bperrors.Error
	require.ErrorAs(t, err, &bpErr)
	assert.Equal(t, bperrors.KindUnknownOpRef, bpErr.Kind)
}
