package schema

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Magic identifies a compiled schema file (spec.md §3.7, §6.4).
var Magic = [4]byte{'B', 'S', 0x00, 0x01}

// CurrentSchemaVersion is the schema_version this package writes.
const CurrentSchemaVersion uint32 = 1

// Metadata is optional diagnostic information carried alongside a
// compiled schema (spec.md §3.7).
type Metadata struct {
	SourceFile     string
	SourceContent  string
	RequiredEnv    []string
	RequiredConfig []string
}

// CompiledFile is the full on-disk record: header fields plus the
// Schema payload and optional Metadata (spec.md §3.7).
type CompiledFile struct {
	SchemaVersion uint32
	SourceHash    string
	CompiledAt    uint64 // unix seconds
	Schema        Schema
	Metadata      *Metadata
}

// wireSchema/wireEntry/... mirror the public types but use cbor-friendly
// shapes (no pointers-to-interfaces) and stable field ordering, the way
// the teacher's core/planfmt/canonical.go builds a canonical wire form
// distinct from its runtime ExecutionNode tree.
type wireFile struct {
	SchemaVersion uint32
	SourceHash    string
	CompiledAt    uint64
	Schema        []byte // cbor-encoded Schema, nested as its own byte string
	HasMetadata   bool
	Metadata      *Metadata `cbor:",omitempty"`
}

// HashSource computes the deterministic source_hash (spec.md §3.7) used
// to detect whether a compiled schema is stale relative to its source.
func HashSource(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return fmt.Sprintf("%x", sum)
}

func canonicalEncoder() (cbor.EncMode, error) {
	return cbor.CanonicalEncOptions().EncMode()
}

// Save writes a CompiledFile to w in the binary format of spec.md §3.7:
// magic[4] | body_len(u32, big-endian) | body(cbor), where the body
// carries schema_version, source_hash, compiled_at, the Schema and the
// optional Metadata.
func Save(w io.Writer, f CompiledFile) error {
	enc, err := canonicalEncoder()
	if err != nil {
		return fmt.Errorf("schema: build cbor encoder: %w", err)
	}
	schemaBytes, err := enc.Marshal(f.Schema)
	if err != nil {
		return fmt.Errorf("schema: encode schema: %w", err)
	}
	wf := wireFile{
		SchemaVersion: f.SchemaVersion,
		SourceHash:    f.SourceHash,
		CompiledAt:    f.CompiledAt,
		Schema:        schemaBytes,
		HasMetadata:   f.Metadata != nil,
		Metadata:      f.Metadata,
	}
	body, err := enc.Marshal(wf)
	if err != nil {
		return fmt.Errorf("schema: encode file body: %w", err)
	}

	var header bytes.Buffer
	header.Write(Magic[:])
	if err := binary.Write(&header, binary.BigEndian, uint32(len(body))); err != nil {
		return fmt.Errorf("schema: write body length: %w", err)
	}
	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Load reads a CompiledFile written by Save. A mismatched magic or a
// schema_version newer than CurrentSchemaVersion is a load error
// (spec.md §6.4).
func Load(r io.Reader) (CompiledFile, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return CompiledFile{}, fmt.Errorf("schema: read magic: %w", err)
	}
	if magic != Magic {
		return CompiledFile{}, fmt.Errorf("schema: bad magic %x, expected %x", magic, Magic)
	}
	var bodyLen uint32
	if err := binary.Read(r, binary.BigEndian, &bodyLen); err != nil {
		return CompiledFile{}, fmt.Errorf("schema: read body length: %w", err)
	}
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return CompiledFile{}, fmt.Errorf("schema: read body: %w", err)
	}

	var wf wireFile
	if err := cbor.Unmarshal(body, &wf); err != nil {
		return CompiledFile{}, fmt.Errorf("schema: decode file body: %w", err)
	}
	if wf.SchemaVersion > CurrentSchemaVersion {
		return CompiledFile{}, fmt.Errorf("schema: unsupported schema_version %d (max supported %d)", wf.SchemaVersion, CurrentSchemaVersion)
	}

	var sc Schema
	if err := cbor.Unmarshal(wf.Schema, &sc); err != nil {
		return CompiledFile{}, fmt.Errorf("schema: decode schema payload: %w", err)
	}

	meta := wf.Metadata
	if !wf.HasMetadata {
		meta = nil
	}

	return CompiledFile{
		SchemaVersion: wf.SchemaVersion,
		SourceHash:    wf.SourceHash,
		CompiledAt:    wf.CompiledAt,
		Schema:        sc,
		Metadata:      meta,
	}, nil
}

// NewCompiledFile builds a CompiledFile from a freshly generated Schema,
// stamping CompiledAt with the current time.
func NewCompiledFile(sc Schema, sourceContent string, meta *Metadata) CompiledFile {
	return CompiledFile{
		SchemaVersion: CurrentSchemaVersion,
		SourceHash:    HashSource(sourceContent),
		CompiledAt:    uint64(time.Now().Unix()),
		Schema:        sc,
		Metadata:      meta,
	}
}
