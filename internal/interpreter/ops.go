package interpreter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blueprint-lang/blueprint/internal/bperrors"
	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/value"
)

// errNotUTF8 is the wrapped cause of an IoError raised when ReadFile's
// contents are not valid UTF-8 (spec.md's RecordedValue keeps String and
// Bytes distinct, so ReadFile never silently falls back to Bytes).
var errNotUTF8 = errors.New("file contents are not valid UTF-8")

// Environment supplies EnvGet's host lookup (spec.md §6.3's
// ExecutionContext.env); kept as an interface, mirroring the resolver
// package's Environment, so tests can substitute a fixed map.
type Environment interface {
	Lookup(name string) (string, bool)
}

// OSEnvironment implements Environment against the real process
// environment.
type OSEnvironment struct{}

func (OSEnvironment) Lookup(name string) (string, bool) { return os.LookupEnv(name) }

// execOp runs one concrete op, implementing spec.md §4.3's per-op
// execution contracts. field resolves a Payload field on demand (lazily,
// since most kinds only touch a handful of the struct's many optional
// members).
func (x *Executor) execOp(p plan.Payload, rc resolveCtx) (value.RecordedValue, error) {
	field := func(ref plan.ValueRef) (value.RecordedValue, error) { return resolveRef(rc, ref) }

	switch p.Kind {
	// Filesystem
	case plan.OpReadFile:
		return x.readFile(field, p)
	case plan.OpWriteFile:
		return x.writeFile(field, p, false)
	case plan.OpAppendFile:
		return x.writeFile(field, p, true)
	case plan.OpDeleteFile:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if err := os.Remove(path.Str); err != nil {
			return value.RecordedValue{}, bperrors.IOError(nil, err)
		}
		return value.RNoneVal(), nil
	case plan.OpMkdir:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if p.Recursive {
			err = os.MkdirAll(path.Str, 0o755)
		} else {
			err = os.Mkdir(path.Str, 0o755)
		}
		if err != nil {
			return value.RecordedValue{}, bperrors.IOError(nil, err)
		}
		return value.RNoneVal(), nil
	case plan.OpRmdir:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if p.Recursive {
			err = os.RemoveAll(path.Str)
		} else {
			err = os.Remove(path.Str)
		}
		if err != nil {
			return value.RecordedValue{}, bperrors.IOError(nil, err)
		}
		return value.RNoneVal(), nil
	case plan.OpListDir:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		entries, err := os.ReadDir(path.Str)
		if err != nil {
			return value.RecordedValue{}, bperrors.IOError(nil, err)
		}
		names := make([]value.RecordedValue, len(entries))
		for i, e := range entries {
			names[i] = value.RStringVal(e.Name())
		}
		return value.RListVal(names), nil
	case plan.OpCopyFile:
		return x.copyFile(field, p)
	case plan.OpMoveFile:
		src, err := field(p.Src)
		if err != nil {
			return value.RecordedValue{}, err
		}
		dst, err := field(p.Dst)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if err := os.Rename(src.Str, dst.Str); err != nil {
			return value.RecordedValue{}, bperrors.IOError(nil, err)
		}
		return value.RNoneVal(), nil
	case plan.OpFileExists:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		_, statErr := os.Stat(path.Str)
		return value.RBoolVal(statErr == nil), nil
	case plan.OpIsDir:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		fi, statErr := os.Stat(path.Str)
		return value.RBoolVal(statErr == nil && fi.IsDir()), nil
	case plan.OpIsFile:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		fi, statErr := os.Stat(path.Str)
		return value.RBoolVal(statErr == nil && !fi.IsDir()), nil
	case plan.OpFileSize:
		path, err := field(p.Path)
		if err != nil {
			return value.RecordedValue{}, err
		}
		fi, statErr := os.Stat(path.Str)
		if statErr != nil {
			return value.RecordedValue{}, bperrors.IOError(nil, statErr)
		}
		return value.RIntVal(fi.Size()), nil

	// Network
	case plan.OpHttpRequest:
		return x.httpRequest(field, p)
	case plan.OpTcpConnect, plan.OpTcpSend, plan.OpTcpRecv, plan.OpTcpClose,
		plan.OpTcpListen, plan.OpTcpAccept,
		plan.OpUdpBind, plan.OpUdpSendTo, plan.OpUdpRecvFrom, plan.OpUdpClose,
		plan.OpUnixConnect, plan.OpUnixSend, plan.OpUnixRecv, plan.OpUnixClose,
		plan.OpUnixListen, plan.OpUnixAccept:
		return value.RecordedValue{}, bperrors.InvalidOp(nil, "%s requires direct execution mode, not the streaming interpreter", p.Kind)

	// Process / env
	case plan.OpExec:
		return x.execProcess(field, p)
	case plan.OpEnvGet:
		return x.envGet(field, p)
	case plan.OpSleep:
		return x.sleep(field, p)
	case plan.OpNow:
		return value.RFloatVal(float64(time.Now().UnixNano()) / 1e9), nil
	case plan.OpPrint:
		msg, err := field(p.Message)
		if err != nil {
			return value.RecordedValue{}, err
		}
		fmt.Fprintln(x.Stdout, msg.String())
		return value.RNoneVal(), nil

	// Encoding
	case plan.OpJsonEncode:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return jsonEncodeR(v)
	case plan.OpJsonDecode:
		s, err := field(p.Str)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return jsonDecodeR(s.Str)

	// Arithmetic / logic
	case plan.OpAdd, plan.OpSub, plan.OpMul, plan.OpDiv, plan.OpFloorDiv, plan.OpMod:
		l, err := field(p.Left)
		if err != nil {
			return value.RecordedValue{}, err
		}
		r, err := field(p.Right)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return arith(p.Kind, l, r)
	case plan.OpEq, plan.OpNe:
		l, err := field(p.Left)
		if err != nil {
			return value.RecordedValue{}, err
		}
		r, err := field(p.Right)
		if err != nil {
			return value.RecordedValue{}, err
		}
		eq := l.Equal(r)
		if p.Kind == plan.OpNe {
			eq = !eq
		}
		return value.RBoolVal(eq), nil
	case plan.OpLt, plan.OpLe, plan.OpGt, plan.OpGe:
		l, err := field(p.Left)
		if err != nil {
			return value.RecordedValue{}, err
		}
		r, err := field(p.Right)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return compareR(p.Kind, l, r)
	case plan.OpNeg:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return negR(v)
	case plan.OpNot:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return value.RBoolVal(!v.Truthy()), nil
	case plan.OpConcat:
		l, err := field(p.Left)
		if err != nil {
			return value.RecordedValue{}, err
		}
		r, err := field(p.Right)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return concatR(l, r)
	case plan.OpContains:
		l, err := field(p.Left)
		if err != nil {
			return value.RecordedValue{}, err
		}
		r, err := field(p.Right)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return containsR(l, r)
	case plan.OpLen:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return lenR(v)
	case plan.OpIndex:
		coll, err := field(p.Collection)
		if err != nil {
			return value.RecordedValue{}, err
		}
		idx, err := field(p.Index)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return indexR(coll, idx)
	case plan.OpSetIndex:
		coll, err := field(p.Collection)
		if err != nil {
			return value.RecordedValue{}, err
		}
		idx, err := field(p.Index)
		if err != nil {
			return value.RecordedValue{}, err
		}
		newVal, err := field(p.NewValue)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return setIndexR(coll, idx, newVal)

	// Collection
	case plan.OpMin, plan.OpMax:
		v, err := field(p.Values)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return minMaxR(p.Kind, v)
	case plan.OpSum:
		v, err := field(p.Values)
		if err != nil {
			return value.RecordedValue{}, err
		}
		start := value.RIntVal(0)
		if p.Start.Kind != plan.RefLiteral || p.Start.Literal.Kind != value.RNone {
			sv, err := field(p.Start)
			if err != nil {
				return value.RecordedValue{}, err
			}
			start = sv
		}
		return sumR(v, start)
	case plan.OpAbs:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return absR(v)
	case plan.OpSorted:
		v, err := field(p.Values)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return sortedR(v)
	case plan.OpReversed:
		v, err := field(p.Values)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return reversedR(v)

	// Conversion
	case plan.OpToBool:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return value.RBoolVal(v.Truthy()), nil
	case plan.OpToInt:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return toIntR(v)
	case plan.OpToFloat:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return toFloatR(v)
	case plan.OpToStr:
		v, err := field(p.Value)
		if err != nil {
			return value.RecordedValue{}, err
		}
		return value.RStringVal(v.String()), nil

	// Synchronization combinators
	case plan.OpAll:
		items := make([]value.RecordedValue, len(p.OperandIDs))
		for i, id := range p.OperandIDs {
			v, ok := rc.lookupOp(id)
			if !ok {
				return value.RecordedValue{}, bperrors.ResolutionFailed("op %d has no recorded output yet", id)
			}
			items[i] = v
		}
		return value.RListVal(items), nil
	case plan.OpAny:
		for _, id := range p.OperandIDs {
			if v, ok := rc.lookupOp(id); ok {
				return v, nil
			}
		}
		return value.RNoneVal(), nil
	case plan.OpAtLeast, plan.OpAtMost:
		n := 0
		for _, id := range p.OperandIDs {
			if _, ok := rc.lookupOp(id); ok {
				n++
			}
		}
		if p.Kind == plan.OpAtLeast {
			return value.RBoolVal(n >= p.Count), nil
		}
		return value.RBoolVal(n <= p.Count), nil
	case plan.OpAfter:
		if _, ok := rc.lookupOp(p.Dependency); !ok {
			return value.RecordedValue{}, bperrors.ResolutionFailed("op %d has no recorded output yet", p.Dependency)
		}
		return field(p.DependencyValue)

	// Control flow (ternary)
	case plan.OpIf:
		cond, err := field(p.Cond)
		if err != nil {
			return value.RecordedValue{}, err
		}
		thenV, err := field(p.Then)
		if err != nil {
			return value.RecordedValue{}, err
		}
		elseV, err := field(p.Else)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if cond.Truthy() {
			return thenV, nil
		}
		return elseV, nil

	// Other
	case plan.OpFrozenValue:
		return field(p.Value)

	case plan.OpGeneratorDef, plan.OpGeneratorYield:
		return value.RecordedValue{}, bperrors.InvalidOp(nil, "%s is unreachable from standard compilation", p.Kind)

	default:
		return value.RecordedValue{}, bperrors.InvalidOp(nil, "unhandled op kind %s", p.Kind)
	}
}

func (x *Executor) readFile(field func(plan.ValueRef) (value.RecordedValue, error), p plan.Payload) (value.RecordedValue, error) {
	path, err := field(p.Path)
	if err != nil {
		return value.RecordedValue{}, err
	}
	data, err := os.ReadFile(path.Str)
	if err != nil {
		return value.RecordedValue{}, bperrors.IOError(nil, err)
	}
	if !utf8.Valid(data) {
		return value.RecordedValue{}, bperrors.IOError(nil, fmt.Errorf("%s: %w", path.Str, errNotUTF8))
	}
	return value.RStringVal(string(data)), nil
}

func (x *Executor) writeFile(field func(plan.ValueRef) (value.RecordedValue, error), p plan.Payload, appendMode bool) (value.RecordedValue, error) {
	path, err := field(p.Path)
	if err != nil {
		return value.RecordedValue{}, err
	}
	content, err := field(p.Content)
	if err != nil {
		return value.RecordedValue{}, err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path.Str, flags, 0o644)
	if err != nil {
		return value.RecordedValue{}, bperrors.IOError(nil, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content.Str); err != nil {
		return value.RecordedValue{}, bperrors.IOError(nil, err)
	}
	return value.RNoneVal(), nil
}

func (x *Executor) copyFile(field func(plan.ValueRef) (value.RecordedValue, error), p plan.Payload) (value.RecordedValue, error) {
	src, err := field(p.Src)
	if err != nil {
		return value.RecordedValue{}, err
	}
	dst, err := field(p.Dst)
	if err != nil {
		return value.RecordedValue{}, err
	}
	in, err := os.Open(src.Str)
	if err != nil {
		return value.RecordedValue{}, bperrors.IOError(nil, err)
	}
	defer in.Close()
	out, err := os.Create(filepath.Clean(dst.Str))
	if err != nil {
		return value.RecordedValue{}, bperrors.IOError(nil, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return value.RecordedValue{}, bperrors.IOError(nil, err)
	}
	return value.RNoneVal(), nil
}

func (x *Executor) httpRequest(field func(plan.ValueRef) (value.RecordedValue, error), p plan.Payload) (value.RecordedValue, error) {
	method, err := field(p.Method)
	if err != nil {
		return value.RecordedValue{}, err
	}
	url, err := field(p.Url)
	if err != nil {
		return value.RecordedValue{}, err
	}
	var bodyReader io.Reader
	if p.Body.Kind != plan.RefLiteral || p.Body.Literal.Kind != value.RNone {
		body, err := field(p.Body)
		if err != nil {
			return value.RecordedValue{}, err
		}
		bodyReader = strings.NewReader(body.Str)
	}
	req, err := http.NewRequest(method.Str, url.Str, bodyReader)
	if err != nil {
		return value.RecordedValue{}, bperrors.HTTPError(nil, err)
	}
	if p.Headers.Kind != plan.RefLiteral || p.Headers.Literal.Kind != value.RNone {
		headers, err := field(p.Headers)
		if err != nil {
			return value.RecordedValue{}, err
		}
		if headers.Kind == value.RDict && headers.Dict != nil {
			for _, k := range headers.Dict.Keys() {
				v, _ := headers.Dict.Get(k)
				req.Header.Set(k, v.Str)
			}
		}
	}
	resp, err := x.HTTPClient.Do(req)
	if err != nil {
		return value.RecordedValue{}, bperrors.HTTPError(nil, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return value.RecordedValue{}, bperrors.HTTPError(nil, err)
	}
	headerDict := value.NewOrderedDict()
	for k := range resp.Header {
		headerDict.Set(k, value.RStringVal(resp.Header.Get(k)))
	}
	out := value.NewOrderedDict()
	out.Set("status", value.RIntVal(int64(resp.StatusCode)))
	out.Set("headers", value.RDictVal(headerDict))
	out.Set("body", value.RStringVal(string(respBody)))
	return value.RDictVal(out), nil
}

func (x *Executor) execProcess(field func(plan.ValueRef) (value.RecordedValue, error), p plan.Payload) (value.RecordedValue, error) {
	command, err := field(p.Command)
	if err != nil {
		return value.RecordedValue{}, err
	}
	var args []string
	if p.Args.Kind != plan.RefLiteral || p.Args.Literal.Kind != value.RNone {
		argsVal, err := field(p.Args)
		if err != nil {
			return value.RecordedValue{}, err
		}
		for _, a := range argsVal.List {
			args = append(args, a.Str)
		}
	}
	cmd := exec.Command(command.Str, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	code := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			return value.RecordedValue{}, bperrors.CommandFailed(nil, "%s: %s", command.Str, runErr.Error())
		}
	}
	out := value.NewOrderedDict()
	out.Set("code", value.RIntVal(int64(code)))
	out.Set("stdout", value.RStringVal(stdout.String()))
	out.Set("stderr", value.RStringVal(stderr.String()))
	return value.RDictVal(out), nil
}

func (x *Executor) envGet(field func(plan.ValueRef) (value.RecordedValue, error), p plan.Payload) (value.RecordedValue, error) {
	name, err := field(p.Name)
	if err != nil {
		return value.RecordedValue{}, err
	}
	if v, ok := x.Env.Lookup(name.Str); ok {
		return value.RStringVal(v), nil
	}
	return field(p.Default)
}

func (x *Executor) sleep(field func(plan.ValueRef) (value.RecordedValue, error), p plan.Payload) (value.RecordedValue, error) {
	seconds, err := field(p.Seconds)
	if err != nil {
		return value.RecordedValue{}, err
	}
	secs := seconds.Float
	if seconds.Kind == value.RInt {
		secs = float64(seconds.Int)
	}
	if !x.DryRun {
		time.Sleep(time.Duration(secs * float64(time.Second)))
	}
	return value.RNoneVal(), nil
}

func jsonEncodeR(v value.RecordedValue) (value.RecordedValue, error) {
	b, err := json.Marshal(recordedToJSONR(v))
	if err != nil {
		return value.RecordedValue{}, bperrors.ValueError(nil, "json.encode(): %s", err.Error())
	}
	return value.RStringVal(string(b)), nil
}

func jsonDecodeR(s string) (value.RecordedValue, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return value.RecordedValue{}, bperrors.ValueError(nil, "json.decode(): %s", err.Error())
	}
	return jsonToRecordedR(doc), nil
}

// recordedToJSONR implements spec.md §4.3's JsonEncode contract: Bytes
// become base64 strings, the same encoding the generator-time fold path
// (fold.go's recordedToJSON) uses.
func recordedToJSONR(r value.RecordedValue) interface{} {
	switch r.Kind {
	case value.RNone:
		return nil
	case value.RBool:
		return r.Bool
	case value.RInt:
		return r.Int
	case value.RFloat:
		return r.Float
	case value.RString:
		return r.Str
	case value.RBytes:
		return base64.StdEncoding.EncodeToString(r.Bytes)
	case value.RList:
		out := make([]interface{}, len(r.List))
		for i, item := range r.List {
			out[i] = recordedToJSONR(item)
		}
		return out
	case value.RDict:
		out := make(map[string]interface{})
		if r.Dict != nil {
			for _, k := range r.Dict.Keys() {
				v, _ := r.Dict.Get(k)
				out[k] = recordedToJSONR(v)
			}
		}
		return out
	default:
		return nil
	}
}

func jsonToRecordedR(doc interface{}) value.RecordedValue {
	switch d := doc.(type) {
	case nil:
		return value.RNoneVal()
	case bool:
		return value.RBoolVal(d)
	case float64:
		if d == float64(int64(d)) {
			return value.RIntVal(int64(d))
		}
		return value.RFloatVal(d)
	case string:
		return value.RStringVal(d)
	case []interface{}:
		items := make([]value.RecordedValue, len(d))
		for i, item := range d {
			items[i] = jsonToRecordedR(item)
		}
		return value.RListVal(items)
	case map[string]interface{}:
		out := value.NewOrderedDict()
		for k, v := range d {
			out.Set(k, jsonToRecordedR(v))
		}
		return value.RDictVal(out)
	default:
		return value.RNoneVal()
	}
}
