package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectEnvRefsDedupesAndDescendsIntoLists(t *testing.T) {
	sc := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpConcat,
				Left:  schema.EnvRef("HOME"),
				Right: schema.ListOf([]schema.SchemaValue{schema.EnvRef("PATH"), schema.EnvRef("HOME")}),
			}},
		},
	}
	assert.Equal(t, []string{"HOME", "PATH"}, collectEnvRefs(sc))
}

func TestCollectConfigRefsDescendsIntoSubPlanBodies(t *testing.T) {
	sc := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{
				Kind: schema.OpForEach,
				LoopBody: &schema.SchemaSubPlan{
					Entries: []schema.SchemaEntry{
						{ID: 1, Op: schema.SchemaOp{Kind: schema.OpReadFile, Path: schema.ConfigRef("build_dir")}},
					},
				},
			}},
		},
	}
	assert.Equal(t, []string{"build_dir"}, collectConfigRefs(sc))
	assert.Empty(t, collectEnvRefs(sc))
}

func TestCollectRefsIgnoresLiteralOperands(t *testing.T) {
	sc := schema.Schema{
		Entries: []schema.SchemaEntry{
			{ID: 1, Op: schema.SchemaOp{Kind: schema.OpAdd, Left: schema.Literal(value.RIntVal(1)), Right: schema.Literal(value.RIntVal(2))}},
		},
	}
	assert.Empty(t, collectEnvRefs(sc))
	assert.Empty(t, collectConfigRefs(sc))
}

func TestLoadProjectConfigMissingFileReturnsNilNotError(t *testing.T) {
	cfg, err := loadProjectConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectConfigReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blueprint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variables:\n  greeting: hi\n"), 0o644))

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "hi", cfg.Variables["greeting"])
}

func TestFormatPlanRendersOpIDsAndInputs(t *testing.T) {
	p := &plan.Plan{Ops: []plan.Op{
		{ID: 1, Payload: plan.Payload{Kind: plan.OpAdd, Left: plan.Lit(value.RIntVal(1)), Right: plan.Lit(value.RIntVal(1))}},
		{ID: 2, Payload: plan.Payload{Kind: plan.OpMul, Left: plan.OpOutput(1, nil), Right: plan.Lit(value.RIntVal(2))}, Inputs: []int{1}},
	}}

	out := formatPlan(p, false)
	assert.Contains(t, out, "plan:")
	assert.Contains(t, out, "#1 Add")
	assert.Contains(t, out, "#2 Mul <- [1]")
}

func TestFormatPlanRendersGuardAndSubPlans(t *testing.T) {
	guard := 1
	p := &plan.Plan{Ops: []plan.Op{
		{ID: 1, Payload: plan.Payload{
			Kind: plan.OpForEach,
			LoopBody: &plan.SubPlan{
				Params: []string{"item"},
				Ops: []plan.Op{
					{ID: 1, Guard: &guard, Payload: plan.Payload{Kind: plan.OpPrint, Message: plan.Dyn("item")}},
				},
				Output: 1,
			},
		}},
	}}

	out := formatPlan(p, false)
	assert.Contains(t, out, "body(item, output=#1)")
	assert.Contains(t, out, "[guard #1]")
}

func TestFormatPlanNoColorOmitsAnsiEscapes(t *testing.T) {
	p := &plan.Plan{Ops: []plan.Op{
		{ID: 1, Payload: plan.Payload{Kind: plan.OpAdd, Left: plan.Lit(value.RIntVal(1)), Right: plan.Lit(value.RIntVal(1))}},
	}}
	out := formatPlan(p, false)
	assert.NotContains(t, out, "\033[")
}
