// Package resolver implements the Plan Resolver (spec.md §4.2): it lowers
// a Schema into a concrete Plan by resolving every EnvRef/ConfigRef to a
// literal, lowering ExecShell into Exec, and turning ParamRef/OpRef
// operands into the plan layer's ValueRef variants. Schema and sub-plan
// ids are carried over unchanged — sub-plans keep their own local id
// space, so no id is ever renumbered.
package resolver

import (
	"os"
	"runtime"

	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/config"
	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// Environment looks up a host environment variable by name, resolving
// VEnvRef operands (spec.md §4.2, rule 1).
type Environment interface {
	Lookup(name string) (string, bool)
}

// OSEnvironment implements Environment against the host process's
// actual environment.
type OSEnvironment struct{}

func (OSEnvironment) Lookup(name string) (string, bool) { return os.LookupEnv(name) }

// HostOS returns the platform name config.ProjectConfig.Lookup expects
// ("linux", "darwin", "windows"), defaulting to the running host.
func HostOS() string { return runtime.GOOS }

// Resolver holds the resolution context threaded through one Schema→Plan
// lowering pass.
type Resolver struct {
	env    Environment
	config *config.ProjectConfig
	osName string
}

// New creates a Resolver. cfg may be nil (config.ProjectConfig.Lookup
// treats a nil receiver as "no keys defined").
func New(env Environment, cfg *config.ProjectConfig, osName string) *Resolver {
	return &Resolver{env: env, config: cfg, osName: osName}
}

// Resolve lowers a generated Schema into a Plan (spec.md §4.2).
func Resolve(s schema.Schema, env Environment, cfg *config.ProjectConfig, osName string) (*plan.Plan, error) {
	r := New(env, cfg, osName)
	ops := make([]plan.Op, 0, len(s.Entries))
	for _, e := range s.Entries {
		op, err := r.resolveEntry(e)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := checkOpRefIntegrity(ops); err != nil {
		return nil, err
	}
	return &plan.Plan{Ops: ops}, nil
}

// checkOpRefIntegrity verifies every op's Inputs/Guard reference an id
// present among ops in the same id space — a violation means the
// generator emitted a dangling OpRef (spec.md §4.2's UnknownOpRef,
// "schema integrity bug").
func checkOpRefIntegrity(ops []plan.Op) error {
	ids := make(map[int]bool, len(ops))
	for _, op := range ops {
		ids[op.ID] = true
	}
	for _, op := range ops {
		for _, in := range op.Inputs {
			if !ids[in] {
				return bperrors.UnknownOpRef(in)
			}
		}
		if op.Guard != nil && !ids[*op.Guard] {
			return bperrors.UnknownOpRef(*op.Guard)
		}
	}
	return nil
}

func (r *Resolver) resolveEntry(e schema.SchemaEntry) (plan.Op, error) {
	payload, err := r.resolveOp(e.Op)
	if err != nil {
		return plan.Op{}, err
	}
	return plan.Op{
		ID:             e.ID,
		Payload:        payload,
		Inputs:         plan.ComputeInputs(payload),
		Guard:          e.Guard,
		SourceLocation: e.SourceLocation,
	}, nil
}

func (r *Resolver) resolveSubPlan(sp *schema.SchemaSubPlan) (*plan.SubPlan, error) {
	if sp == nil {
		return nil, nil
	}
	ops := make([]plan.Op, 0, len(sp.Entries))
	for _, e := range sp.Entries {
		op, err := r.resolveEntry(e)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := checkOpRefIntegrity(ops); err != nil {
		return nil, err
	}
	return &plan.SubPlan{Params: sp.Params, Ops: ops, Output: sp.Output}, nil
}

// valueResolver accumulates the first error hit while resolving a
// sequence of operands, so resolveOp can lower every field of a
// SchemaOp in one flat struct literal instead of an error check per field.
type valueResolver struct {
	r   *Resolver
	err error
}

func (vr *valueResolver) v(sv schema.SchemaValue) plan.ValueRef {
	if vr.err != nil {
		return plan.ValueRef{}
	}
	ref, err := vr.r.resolveValue(sv)
	if err != nil {
		vr.err = err
		return plan.ValueRef{}
	}
	return ref
}

func (r *Resolver) resolveOp(op schema.SchemaOp) (plan.Payload, error) {
	if op.Kind == schema.OpExecShell {
		return r.lowerExecShell(op)
	}

	vr := &valueResolver{r: r}
	payload := plan.Payload{
		Kind: op.Kind,

		Path: vr.v(op.Path), Content: vr.v(op.Content), Src: vr.v(op.Src), Dst: vr.v(op.Dst),
		Recursive: op.Recursive,

		Method: vr.v(op.Method), Url: vr.v(op.Url), Headers: vr.v(op.Headers), Body: vr.v(op.Body),

		Host: vr.v(op.Host), Port: vr.v(op.Port), Handle: vr.v(op.Handle),
		Data: vr.v(op.Data), MaxBytes: vr.v(op.MaxBytes),

		Command: vr.v(op.Command), Args: vr.v(op.Args),

		Name: vr.v(op.Name), Default: vr.v(op.Default),

		Seconds: vr.v(op.Seconds), Message: vr.v(op.Message),

		Value: vr.v(op.Value), Str: vr.v(op.Str),

		Left: vr.v(op.Left), Right: vr.v(op.Right),

		Values: vr.v(op.Values), Start: vr.v(op.Start),

		Collection: vr.v(op.Collection), Index: vr.v(op.Index), NewValue: vr.v(op.NewValue),

		Cond: vr.v(op.Cond), Then: vr.v(op.Then), Else: vr.v(op.Else),

		OperandIDs: op.OperandIDs, Dependency: op.Dependency,
		DependencyValue: vr.v(op.DependencyValue), Count: op.Count,

		FrozenName: op.FrozenName,

		Iterable: vr.v(op.Iterable), LoopVar: op.LoopVar, Parallel: op.Parallel,
	}
	if vr.err != nil {
		return plan.Payload{}, vr.err
	}

	loopBody, err := r.resolveSubPlan(op.LoopBody)
	if err != nil {
		return plan.Payload{}, err
	}
	thenBody, err := r.resolveSubPlan(op.ThenBody)
	if err != nil {
		return plan.Payload{}, err
	}
	elseBody, err := r.resolveSubPlan(op.ElseBody)
	if err != nil {
		return plan.Payload{}, err
	}
	payload.LoopBody = loopBody
	payload.ThenBody = thenBody
	payload.ElseBody = elseBody
	return payload, nil
}

// lowerExecShell implements spec.md §4.2 rule 3: ExecShell(cmd) becomes
// Exec(shell, [shell-flag, cmd]).
func (r *Resolver) lowerExecShell(op schema.SchemaOp) (plan.Payload, error) {
	cmd, err := r.resolveValue(op.Command)
	if err != nil {
		return plan.Payload{}, err
	}
	shell, flag := "sh", "-c"
	if r.osName == "windows" {
		shell, flag = "cmd", "/c"
	}
	return plan.Payload{
		Kind:    plan.OpExec,
		Command: plan.Lit(value.RStringVal(shell)),
		Args:    plan.List([]plan.ValueRef{plan.Lit(value.RStringVal(flag)), cmd}),
	}, nil
}

// resolveValue lowers one SchemaValue operand to its plan-layer
// ValueRef, implementing spec.md §4.2 rules 1, 2, 4 and 6.
func (r *Resolver) resolveValue(sv schema.SchemaValue) (plan.ValueRef, error) {
	switch sv.Kind {
	case schema.VLiteral:
		return plan.Lit(sv.Literal), nil

	case schema.VEnvRef:
		v, ok := r.env.Lookup(sv.EnvRef)
		if !ok {
			return plan.ValueRef{}, bperrors.UnresolvedEnvVar(sv.EnvRef)
		}
		return plan.Lit(value.RStringVal(v)), nil

	case schema.VConfigRef:
		v, ok := r.config.Lookup(sv.ConfigRef, r.osName)
		if !ok {
			return plan.ValueRef{}, bperrors.UnresolvedConfigKey(sv.ConfigRef)
		}
		return plan.Lit(value.RStringVal(v)), nil

	case schema.VOpRef:
		return plan.OpOutput(sv.OpRefID, sv.Path), nil

	case schema.VParamRef:
		return plan.Dyn(sv.ParamRef), nil

	case schema.VList:
		items := make([]plan.ValueRef, len(sv.List))
		for i, item := range sv.List {
			ref, err := r.resolveValue(item)
			if err != nil {
				return plan.ValueRef{}, err
			}
			items[i] = ref
		}
		return plan.List(items), nil

	default:
		return plan.ValueRef{}, bperrors.ResolutionFailed("schema value has unknown kind %d", sv.Kind)
	}
}
