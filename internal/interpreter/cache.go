// Package interpreter implements the streaming DAG executor (spec.md
// §4.3, §4.4): a bounded worker-pool scheduler that runs a Plan's ops in
// dependency order, plus the sequential sub-plan evaluator that backs
// ForEach/Map/Filter/IfBlock.
package interpreter

import (
	"encoding/binary"
	"hash"
	"math"
	"sync"

	"github.com/blueprint-lang/blueprint/internal/value"
	"golang.org/x/crypto/blake2b"
)

// entry is one OpCache row: the op's final value plus a stable digest of
// its resolved inputs (spec.md §3.8).
type entry struct {
	val  value.RecordedValue
	hash [blake2b.Size256]byte
}

// OpCache maps OpId to its final value and input hash. It is written
// from the scheduler's worker goroutines as tasks complete and read
// concurrently by sibling tasks resolving their own operands, so access
// goes through a single RWMutex (spec.md §5: "a single mutable map
// guarded by interior synchronization; readers observe fully-written
// entries").
type OpCache struct {
	mu   sync.RWMutex
	rows map[int]entry
}

func newOpCache() *OpCache {
	return &OpCache{rows: make(map[int]entry)}
}

func (c *OpCache) set(id int, v value.RecordedValue, hash [blake2b.Size256]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[id] = entry{val: v, hash: hash}
}

// Get returns the recorded value for an op id, if present.
func (c *OpCache) Get(id int) (value.RecordedValue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.rows[id]
	return e.val, ok
}

// Stale reports whether id's cached input hash differs from newHash —
// the forward-compatibility hook spec.md §9 calls for: nothing in this
// interpreter consults it to skip execution (no incremental re-run),
// but a future caller building an incremental-rebuild mode has a real
// comparison to call instead of recomputing one from scratch.
func (c *OpCache) Stale(id int, newHash [blake2b.Size256]byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.rows[id]
	if !ok {
		return true
	}
	return e.hash != newHash
}

// inputHash digests an op's resolved input values into a stable
// fingerprint (spec.md §3.8), using blake2b for speed on the hot
// resolution path, the same digest the schema layer uses for
// source_hash.
func inputHash(inputs []value.RecordedValue) [blake2b.Size256]byte {
	h, _ := blake2b.New256(nil)
	for _, in := range inputs {
		writeHashed(h, in)
	}
	var out [blake2b.Size256]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeHashed(h hash.Hash, v value.RecordedValue) {
	var buf [9]byte
	buf[0] = byte(v.Kind)
	switch v.Kind {
	case value.RNone:
		h.Write(buf[:1])
	case value.RBool:
		if v.Bool {
			buf[1] = 1
		}
		h.Write(buf[:2])
	case value.RInt:
		binary.LittleEndian.PutUint64(buf[1:9], uint64(v.Int))
		h.Write(buf[:9])
	case value.RFloat:
		binary.LittleEndian.PutUint64(buf[1:9], math.Float64bits(v.Float))
		h.Write(buf[:9])
	case value.RString:
		h.Write(buf[:1])
		h.Write([]byte(v.Str))
	case value.RBytes:
		h.Write(buf[:1])
		h.Write(v.Bytes)
	case value.RList:
		h.Write(buf[:1])
		for _, item := range v.List {
			writeHashed(h, item)
		}
	case value.RDict:
		h.Write(buf[:1])
		if v.Dict != nil {
			for _, k := range v.Dict.SortedKeys() {
				dv, _ := v.Dict.Get(k)
				h.Write([]byte(k))
				writeHashed(h, dv)
			}
		}
	}
}
