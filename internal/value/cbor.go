package value

import "github.com/fxamacker/cbor/v2"

// orderedDictEntry is OrderedDict's wire form: a key-ordered slice of
// pairs, since OrderedDict's insertion order is semantically meaningful
// (spec.md §3.1 "ordered-map<String, RecordedValue>") and cbor cannot
// see unexported fields directly.
type orderedDictEntry struct {
	Key   string
	Value RecordedValue
}

// MarshalCBOR implements cbor.Marshaler.
func (d *OrderedDict) MarshalCBOR() ([]byte, error) {
	if d == nil {
		return cbor.Marshal([]orderedDictEntry{})
	}
	entries := make([]orderedDictEntry, 0, len(d.keys))
	for _, k := range d.keys {
		v, _ := d.values[k]
		entries = append(entries, orderedDictEntry{Key: k, Value: v})
	}
	return cbor.Marshal(entries)
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (d *OrderedDict) UnmarshalCBOR(data []byte) error {
	var entries []orderedDictEntry
	if err := cbor.Unmarshal(data, &entries); err != nil {
		return err
	}
	d.keys = nil
	d.values = make(map[string]RecordedValue, len(entries))
	for _, e := range entries {
		d.Set(e.Key, e.Value)
	}
	return nil
}
