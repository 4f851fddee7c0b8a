package builtins

import (
	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/blueprint-lang/blueprint/internal/value"
)

func sv(v value.Value) (schema.SchemaValue, error) { return schema.FromValue(v) }

// ioModule wires @bp/io's filesystem builtins (spec.md §6.2, §3.3).
func ioModule(e Emitter) Module {
	one := func(kind schema.OpKind, name string) value.Value {
		return fn(name, func(call value.CallArgs) (value.Value, error) {
			path, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "%s() path: %s", name, err.Error())
			}
			return e.Emit(kind, schema.SchemaOp{Path: path}, call.Pos)
		})
	}

	members := map[string]value.Value{
		"read_file":    one(schema.OpReadFile, "read_file"),
		"delete_file":  one(schema.OpDeleteFile, "delete_file"),
		"list_dir":     one(schema.OpListDir, "list_dir"),
		"file_exists":  one(schema.OpFileExists, "file_exists"),
		"is_dir":       one(schema.OpIsDir, "is_dir"),
		"is_file":      one(schema.OpIsFile, "is_file"),
		"file_size":    one(schema.OpFileSize, "file_size"),

		"write_file": fn("write_file", func(call value.CallArgs) (value.Value, error) {
			path, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "write_file() path: %s", err.Error())
			}
			content, err := sv(arg(call, 1))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "write_file() content: %s", err.Error())
			}
			return e.Emit(schema.OpWriteFile, schema.SchemaOp{Path: path, Content: content}, call.Pos)
		}),

		"append_file": fn("append_file", func(call value.CallArgs) (value.Value, error) {
			path, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "append_file() path: %s", err.Error())
			}
			content, err := sv(arg(call, 1))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "append_file() content: %s", err.Error())
			}
			return e.Emit(schema.OpAppendFile, schema.SchemaOp{Path: path, Content: content}, call.Pos)
		}),

		"mkdir": fn("mkdir", func(call value.CallArgs) (value.Value, error) {
			path, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "mkdir() path: %s", err.Error())
			}
			recursive := argOr(call, 1, value.Bool(false)).Truthy()
			return e.Emit(schema.OpMkdir, schema.SchemaOp{Path: path, Recursive: recursive}, call.Pos)
		}),

		"rmdir": fn("rmdir", func(call value.CallArgs) (value.Value, error) {
			path, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "rmdir() path: %s", err.Error())
			}
			recursive := argOr(call, 1, value.Bool(false)).Truthy()
			return e.Emit(schema.OpRmdir, schema.SchemaOp{Path: path, Recursive: recursive}, call.Pos)
		}),

		"copy_file": fn("copy_file", func(call value.CallArgs) (value.Value, error) {
			src, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "copy_file() src: %s", err.Error())
			}
			dst, err := sv(arg(call, 1))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "copy_file() dst: %s", err.Error())
			}
			return e.Emit(schema.OpCopyFile, schema.SchemaOp{Src: src, Dst: dst}, call.Pos)
		}),

		"move_file": fn("move_file", func(call value.CallArgs) (value.Value, error) {
			src, err := sv(arg(call, 0))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "move_file() src: %s", err.Error())
			}
			dst, err := sv(arg(call, 1))
			if err != nil {
				return value.None, bperrors.TypeError(&call.Pos, "move_file() dst: %s", err.Error())
			}
			return e.Emit(schema.OpMoveFile, schema.SchemaOp{Src: src, Dst: dst}, call.Pos)
		}),
	}
	return Module{Name: "@bp/io", Members: members}
}
