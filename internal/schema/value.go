// Package schema implements the symbolic, environment-independent DAG
// produced by the Schema Generator (spec.md §3.2, §3.6, §4.1).
package schema

import "github.com/blueprint-lang/blueprint/internal/value"

// ValueKind identifies a SchemaValue's variant (spec.md §3.2).
type ValueKind int

const (
	VLiteral ValueKind = iota
	VEnvRef
	VConfigRef
	VOpRef
	VParamRef
	VList
)

// SchemaValue is a symbolic pointer to a literal, an environment/config
// reference to be bound at resolution time, a deferred op's output, a
// sub-plan parameter, or a list of any of those.
type SchemaValue struct {
	Kind ValueKind

	Literal value.RecordedValue // VLiteral

	EnvRef    string // VEnvRef
	ConfigRef string // VConfigRef

	OpRefID int              // VOpRef
	Path    []value.Accessor // VOpRef: Field/Index accessor chain

	ParamRef string // VParamRef

	List []SchemaValue // VList
}

func Literal(v value.RecordedValue) SchemaValue { return SchemaValue{Kind: VLiteral, Literal: v} }
func EnvRef(name string) SchemaValue            { return SchemaValue{Kind: VEnvRef, EnvRef: name} }
func ConfigRef(key string) SchemaValue          { return SchemaValue{Kind: VConfigRef, ConfigRef: key} }
func OpRef(id int, path []value.Accessor) SchemaValue {
	return SchemaValue{Kind: VOpRef, OpRefID: id, Path: path}
}
func ParamRef(name string) SchemaValue { return SchemaValue{Kind: VParamRef, ParamRef: name} }
func ListOf(items []SchemaValue) SchemaValue {
	return SchemaValue{Kind: VList, List: items}
}

// IsSymbolic reports whether this operand still depends on something not
// known until resolution or execution (an env/config reference, an op
// output or a sub-plan parameter), directly or through a list.
func (sv SchemaValue) IsSymbolic() bool {
	switch sv.Kind {
	case VOpRef, VParamRef, VEnvRef, VConfigRef:
		return true
	case VList:
		for _, item := range sv.List {
			if item.IsSymbolic() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// OpIDs returns every OpId directly reachable from this value reference
// (spec.md §3.9's dependency-closure invariant), not descending into
// sub-plans (those have their own id space).
func (sv SchemaValue) OpIDs() []int {
	switch sv.Kind {
	case VOpRef:
		return []int{sv.OpRefID}
	case VList:
		var ids []int
		for _, item := range sv.List {
			ids = append(ids, item.OpIDs()...)
		}
		return ids
	default:
		return nil
	}
}
