package value

import "fmt"

// ToRecorded projects a generator-time Value to its literal RecordedValue.
// Only called when the caller already knows the value is not symbolic
// (v.IsSymbolic() == false); functions and partials can never project
// and return an error instead of panicking, since a script that tries to
// use a function where a plain value is expected is a user-facing
// TypeError, not a programmer bug.
func ToRecorded(v Value) (RecordedValue, error) {
	switch v.Kind() {
	case KindNone:
		return RNoneVal(), nil
	case KindBool:
		return RBoolVal(v.AsBool()), nil
	case KindInt:
		return RIntVal(v.AsInt()), nil
	case KindFloat:
		return RFloatVal(v.AsFloat()), nil
	case KindString:
		return RStringVal(v.AsString()), nil
	case KindBytes:
		return RBytesVal(v.AsBytes()), nil
	case KindList:
		l := v.AsList()
		items := make([]RecordedValue, 0)
		if l != nil {
			items = make([]RecordedValue, len(l.Items))
			for i, item := range l.Items {
				rv, err := ToRecorded(item)
				if err != nil {
					return RecordedValue{}, err
				}
				items[i] = rv
			}
		}
		return RListVal(items), nil
	case KindTuple:
		items := make([]RecordedValue, len(v.AsTuple()))
		for i, item := range v.AsTuple() {
			rv, err := ToRecorded(item)
			if err != nil {
				return RecordedValue{}, err
			}
			items[i] = rv
		}
		return RListVal(items), nil
	case KindDict:
		d := v.AsDict()
		out := NewOrderedDict()
		if d != nil {
			for _, k := range d.Keys() {
				ev, _ := d.Get(k)
				rv, err := ToRecorded(ev)
				if err != nil {
					return RecordedValue{}, err
				}
				out.Set(k, rv)
			}
		}
		return RDictVal(out), nil
	case KindSet:
		s := v.AsSet()
		items := make([]RecordedValue, 0)
		if s != nil {
			for _, item := range s.Items() {
				rv, err := ToRecorded(item)
				if err != nil {
					return RecordedValue{}, err
				}
				items = append(items, rv)
			}
		}
		return RListVal(items), nil
	default:
		return RecordedValue{}, fmt.Errorf("value of kind %s cannot be recorded as a literal", v.Kind())
	}
}

// FromRecorded lifts a RecordedValue back into the generator-time Value
// universe (used when a literal RecordedValue flows back through partial
// evaluation, e.g. after resolving a ConfigRef at generation-adjacent
// test time, or when constructing Value fixtures in tests).
func FromRecorded(r RecordedValue) Value {
	switch r.Kind {
	case RNone:
		return None
	case RBool:
		return Bool(r.Bool)
	case RInt:
		return Int(r.Int)
	case RFloat:
		return Float(r.Float)
	case RString:
		return String(r.Str)
	case RBytes:
		return Bytes(r.Bytes)
	case RList:
		items := make([]Value, len(r.List))
		for i, item := range r.List {
			items[i] = FromRecorded(item)
		}
		return ListVal(NewList(items))
	case RDict:
		d := NewDict()
		if r.Dict != nil {
			for _, k := range r.Dict.Keys() {
				rv, _ := r.Dict.Get(k)
				d.Set(k, FromRecorded(rv))
			}
		}
		return DictVal(d)
	default:
		return None
	}
}
