// Package plan implements the concrete DAG produced by Plan Resolution
// (spec.md §3.2, §3.5, §3.6 plan layer): literals, op-output references,
// sub-plan parameters and lists of these remain; EnvRef/ConfigRef have
// been resolved away.
package plan

import "github.com/blueprint-lang/blueprint/internal/value"

// RefKind identifies a ValueRef's variant (spec.md §3.2).
type RefKind int

const (
	RefLiteral RefKind = iota
	RefOpOutput
	RefDynamic
	RefList
)

// ValueRef is a plan-layer value reference: a literal, a reference to
// another op's (possibly path-projected) output, a sub-plan parameter,
// or a list of any of those.
type ValueRef struct {
	Kind RefKind

	Literal value.RecordedValue // RefLiteral

	OpID int              // RefOpOutput
	Path []value.Accessor // RefOpOutput

	Dynamic string // RefDynamic: sub-plan parameter name

	List []ValueRef // RefList
}

func Lit(v value.RecordedValue) ValueRef { return ValueRef{Kind: RefLiteral, Literal: v} }
func OpOutput(opID int, path []value.Accessor) ValueRef {
	return ValueRef{Kind: RefOpOutput, OpID: opID, Path: path}
}
func Dyn(name string) ValueRef { return ValueRef{Kind: RefDynamic, Dynamic: name} }
func List(items []ValueRef) ValueRef {
	return ValueRef{Kind: RefList, List: items}
}

// OpIDs returns every OpId this reference touches directly, used to
// compute an Op's Inputs (spec.md §3.9).
func (r ValueRef) OpIDs() []int {
	switch r.Kind {
	case RefOpOutput:
		return []int{r.OpID}
	case RefList:
		var ids []int
		for _, item := range r.List {
			ids = append(ids, item.OpIDs()...)
		}
		return ids
	default:
		return nil
	}
}
