package builtins

import (
	"testing"

	"github.com/blueprint-lang/blueprint/internal/ast"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEmitter captures every Emit call instead of actually folding or
// appending schema entries, so module wiring can be tested in isolation
// from the generator.
type recordingEmitter struct {
	kind schema.OpKind
	op   schema.SchemaOp
	pos  ast.Position
}

func (e *recordingEmitter) Emit(kind schema.OpKind, op schema.SchemaOp, pos ast.Position) (value.Value, error) {
	e.kind = kind
	e.op = op
	e.pos = pos
	return value.OpRefVal(1), nil
}

func call(args ...value.Value) value.CallArgs {
	return value.CallArgs{Args: args}
}

func TestIoModuleWiresReadFile(t *testing.T) {
	e := &recordingEmitter{}
	mod := ioModule(e)
	fn, ok := mod.Members["read_file"]
	require.True(t, ok)

	_, err := fn.AsBuiltin().Fn(call(value.String("a.txt")))
	require.NoError(t, err)
	assert.Equal(t, schema.OpReadFile, e.kind)
	assert.Equal(t, schema.Literal(value.RStringVal("a.txt")), e.op.Path)
}

func TestIoModuleWiresWriteFileWithContent(t *testing.T) {
	e := &recordingEmitter{}
	mod := ioModule(e)
	fn := mod.Members["write_file"]

	_, err := fn.AsBuiltin().Fn(call(value.String("a.txt"), value.String("hi")))
	require.NoError(t, err)
	assert.Equal(t, schema.OpWriteFile, e.kind)
	assert.Equal(t, schema.Literal(value.RStringVal("a.txt")), e.op.Path)
	assert.Equal(t, schema.Literal(value.RStringVal("hi")), e.op.Content)
}

func TestIoModuleMkdirRecursiveDefaultsFalse(t *testing.T) {
	e := &recordingEmitter{}
	mod := ioModule(e)
	fn := mod.Members["mkdir"]

	_, err := fn.AsBuiltin().Fn(call(value.String("dir")))
	require.NoError(t, err)
	assert.False(t, e.op.Recursive)

	_, err = fn.AsBuiltin().Fn(call(value.String("dir"), value.Bool(true)))
	require.NoError(t, err)
	assert.True(t, e.op.Recursive)
}

func TestExecModuleShellEmitsExecShellWithArgsKwarg(t *testing.T) {
	e := &recordingEmitter{}
	mod := execModule(e)
	fn := mod.Members["shell"]

	c := value.CallArgs{
		Args:   []value.Value{value.String("echo hi")},
		Kwargs: map[string]value.Value{"args": value.ListVal(value.NewList([]value.Value{value.String("-n")}))},
	}
	_, err := fn.AsBuiltin().Fn(c)
	require.NoError(t, err)
	assert.Equal(t, schema.OpExecShell, e.kind)
	assert.Equal(t, schema.Literal(value.RStringVal("echo hi")), e.op.Command)
}

func TestExecModuleRunEmitsExec(t *testing.T) {
	e := &recordingEmitter{}
	mod := execModule(e)
	fn := mod.Members["run"]

	_, err := fn.AsBuiltin().Fn(call(value.String("ls"), value.ListVal(value.NewList([]value.Value{value.String("-la")}))))
	require.NoError(t, err)
	assert.Equal(t, schema.OpExec, e.kind)
}

func TestBaseSymbolicPrintEmitsMessage(t *testing.T) {
	e := &recordingEmitter{}
	base := BaseSymbolic(e)
	fn := base["print"]

	_, err := fn.AsBuiltin().Fn(call(value.String("hello")))
	require.NoError(t, err)
	assert.Equal(t, schema.OpPrint, e.kind)
	assert.Equal(t, schema.Literal(value.RStringVal("hello")), e.op.Message)
}

func TestBaseSymbolicSumWithExplicitStart(t *testing.T) {
	e := &recordingEmitter{}
	base := BaseSymbolic(e)
	fn := base["sum"]

	items := value.ListVal(value.NewList([]value.Value{value.Int(1), value.Int(2)}))
	_, err := fn.AsBuiltin().Fn(call(items, value.Int(10)))
	require.NoError(t, err)
	assert.Equal(t, schema.OpSum, e.kind)
	assert.Equal(t, schema.Literal(value.RIntVal(10)), e.op.Start)
}

func TestBaseSymbolicSumWithoutStartLeavesStartUnset(t *testing.T) {
	e := &recordingEmitter{}
	base := BaseSymbolic(e)
	fn := base["sum"]

	items := value.ListVal(value.NewList([]value.Value{value.Int(1)}))
	_, err := fn.AsBuiltin().Fn(call(items))
	require.NoError(t, err)
	assert.Equal(t, schema.SchemaValue{}, e.op.Start)
}

func TestModulesReturnsAllFourBuiltinTables(t *testing.T) {
	e := &recordingEmitter{}
	mods := Modules(e)
	for _, name := range []string{"@bp/io", "@bp/http", "@bp/exec", "@bp/json"} {
		_, ok := mods[name]
		assert.True(t, ok, "missing module %s", name)
	}
}
