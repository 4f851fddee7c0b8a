package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blueprint-lang/blueprint/internal/ast"
)

// Frontend parses a Blueprint source file into the AST the generator
// consumes. Parsing the Python-subset surface syntax (spec.md §6.1) is
// an external collaborator (spec.md §1), so this CLI ships no lexer or
// parser of its own: Frontend is the seam a real front-end plugs into.
// Leaving it unset is a deliberate, documented gap, not an oversight —
// `compile` reports a clear error instead of silently doing nothing.
var Frontend func(file string, source []byte) (*ast.Module, error)

func parseSource(path string) (*ast.Module, []byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if Frontend == nil {
		return nil, nil, fmt.Errorf("no source front-end is registered in this build; blueprint's parser is an external collaborator (see internal/ast) and cmd/blueprint.Frontend must be set by whatever links one in")
	}
	mod, err := Frontend(path, source)
	if err != nil {
		return nil, nil, err
	}
	return mod, source, nil
}

// fsSourceLoader implements generator.SourceLoader against the local
// filesystem, resolving load() paths relative to the project root the
// top-level file was compiled from.
type fsSourceLoader struct {
	root string
}

func newFSSourceLoader(entryFile string) *fsSourceLoader {
	return &fsSourceLoader{root: filepath.Dir(entryFile)}
}

func (l *fsSourceLoader) Load(path string) (*ast.Module, error) {
	full := filepath.Join(l.root, path)
	mod, _, err := parseSource(full)
	return mod, err
}
