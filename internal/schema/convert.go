package schema

import (
	"fmt"

	"github.com/blueprint-lang/blueprint/internal/value"
)

// FromValue projects a generator-time value.Value into the SchemaValue
// operand representation an op payload carries (spec.md §3.2): a
// deferred op's output, a sub-plan parameter, a list of either, or (for
// everything else) the value's literal projection.
func FromValue(v value.Value) (SchemaValue, error) {
	switch v.Kind() {
	case value.KindOpRef:
		ref := v.AsOpRef()
		return OpRef(ref.ID, ref.Path), nil
	case value.KindParamRef:
		return ParamRef(v.AsParamRef()), nil
	case value.KindEnvRef:
		return EnvRef(v.AsEnvRef()), nil
	case value.KindConfigRef:
		return ConfigRef(v.AsConfigRef()), nil
	case value.KindList:
		l := v.AsList()
		if l == nil || !v.IsSymbolic() {
			break
		}
		items := make([]SchemaValue, len(l.Items))
		for i, item := range l.Items {
			sv, err := FromValue(item)
			if err != nil {
				return SchemaValue{}, err
			}
			items[i] = sv
		}
		return ListOf(items), nil
	}
	rv, err := value.ToRecorded(v)
	if err != nil {
		return SchemaValue{}, fmt.Errorf("cannot use a %s value as an operand: %w", v.Kind(), err)
	}
	return Literal(rv), nil
}
