package generator

import (
	"strings"

	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/builtins"
	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/mod/module"
)

// SourceLoader resolves a load() path that isn't a built-in @bp/ module
// to its parsed source. cmd/blueprint supplies the concrete filesystem
// implementation; tests can substitute an in-memory one.
type SourceLoader interface {
	Load(path string) (*ast.Module, error)
}

// moduleLoader resolves load() statements (spec.md §4.1 "Module
// loading"): built-in @bp/* tables resolve directly; user module paths
// are parsed and generated recursively, with cycle detection and a
// cache keyed by the load() path as written.
type moduleLoader struct {
	builtinTables map[string]builtins.Module
	source        SourceLoader
	cache         map[string]map[string]value.Value
	stack         []string
}

func newModuleLoader(e builtins.Emitter, source SourceLoader) *moduleLoader {
	return &moduleLoader{
		builtinTables: builtins.Modules(e),
		source:        source,
		cache:         make(map[string]map[string]value.Value),
	}
}

// Load resolves path and returns the requested names' bound values
// (spec.md §4.1 "Module loading").
func (g *Generator) Load(path string, names []string, pos ast.Position) (map[string]value.Value, error) {
	if strings.HasPrefix(path, "@bp/") {
		mod, ok := g.modules.builtinTables[path]
		if !ok {
			return nil, bperrors.ImportError(&pos, "no built-in module %q", path)
		}
		return filterExports(mod.Members, names, path, pos)
	}

	if path == "" {
		return nil, bperrors.ImportError(&pos, "empty load() path")
	}
	if strings.HasPrefix(path, "_") || strings.Contains(path, "/_") {
		return nil, bperrors.ImportError(&pos, "cannot import %q: private module paths cannot be loaded", path)
	}
	if err := module.CheckImportPath(path); err != nil {
		return nil, bperrors.ImportError(&pos, "%q is not a valid load path: %s", path, err.Error())
	}

	for _, p := range g.modules.stack {
		if p == path {
			chain := append(append([]string{}, g.modules.stack...), path)
			return nil, bperrors.CircularImport(&pos, chain)
		}
	}

	if exports, ok := g.modules.cache[path]; ok {
		return filterExports(exports, names, path, pos)
	}

	if g.modules.source == nil {
		return nil, bperrors.ImportError(&pos, "cannot load %q: no source loader configured", path)
	}
	mod, err := g.modules.source.Load(path)
	if err != nil {
		return nil, bperrors.ImportError(&pos, "loading %q: %s", path, err.Error())
	}

	g.modules.stack = append(g.modules.stack, path)
	defer func() { g.modules.stack = g.modules.stack[:len(g.modules.stack)-1] }()

	child := newChild(path, g.modules)
	for _, stmt := range mod.Stmts {
		switch stmt.(type) {
		case *ast.IfStmt, *ast.ForStmt:
			p := stmt.Pos()
			return nil, bperrors.ArgumentError(&p, "if/for statements are only allowed inside a function body")
		}
		if _, ctrl, err := child.execStmt(child.global, stmt); err != nil {
			return nil, err
		} else if ctrl != ctrlNone {
			p := stmt.Pos()
			return nil, bperrors.ArgumentError(&p, "return/break/continue are only allowed inside a function body")
		}
	}

	exports := make(map[string]value.Value)
	for k, v := range child.global.Bindings() {
		if strings.HasPrefix(k, "_") {
			continue
		}
		exports[k] = v
	}
	g.modules.cache[path] = exports

	return filterExports(exports, names, path, pos)
}

func filterExports(exports map[string]value.Value, names []string, path string, pos ast.Position) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, "_") {
			return nil, bperrors.ImportError(&pos, "cannot import private name %q from %q", name, path)
		}
		v, ok := exports[name]
		if !ok {
			err := bperrors.NameError(&pos, "module %q has no member %q", path, name)
			if s := suggest(name, keysOf(exports)); s != "" {
				err = err.WithSuggestion(s)
			}
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func keysOf(m map[string]value.Value) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// suggest returns the closest fuzzy match for name among candidates, or
// "" if nothing is close (spec.md's "did you mean" NameError hints).
func suggest(name string, candidates []string) string {
	matches := fuzzy.RankFindFold(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Distance < best.Distance {
			best = m
		}
	}
	return best.Target
}
