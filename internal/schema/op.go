package schema

// OpKind enumerates every operation the generator can emit (spec.md §3.3).
type OpKind string

const (
	// Filesystem
	OpReadFile    OpKind = "ReadFile"
	OpWriteFile   OpKind = "WriteFile"
	OpAppendFile  OpKind = "AppendFile"
	OpDeleteFile  OpKind = "DeleteFile"
	OpMkdir       OpKind = "Mkdir"
	OpRmdir       OpKind = "Rmdir"
	OpListDir     OpKind = "ListDir"
	OpCopyFile    OpKind = "CopyFile"
	OpMoveFile    OpKind = "MoveFile"
	OpFileExists  OpKind = "FileExists"
	OpIsDir       OpKind = "IsDir"
	OpIsFile      OpKind = "IsFile"
	OpFileSize    OpKind = "FileSize"

	// Network
	OpHttpRequest OpKind = "HttpRequest"
	OpTcpConnect  OpKind = "TcpConnect"
	OpTcpSend     OpKind = "TcpSend"
	OpTcpRecv     OpKind = "TcpRecv"
	OpTcpClose    OpKind = "TcpClose"
	OpTcpListen   OpKind = "TcpListen"
	OpTcpAccept   OpKind = "TcpAccept"
	OpUdpBind     OpKind = "UdpBind"
	OpUdpSendTo   OpKind = "UdpSendTo"
	OpUdpRecvFrom OpKind = "UdpRecvFrom"
	OpUdpClose    OpKind = "UdpClose"
	OpUnixConnect OpKind = "UnixConnect"
	OpUnixSend    OpKind = "UnixSend"
	OpUnixRecv    OpKind = "UnixRecv"
	OpUnixClose   OpKind = "UnixClose"
	OpUnixListen  OpKind = "UnixListen"
	OpUnixAccept  OpKind = "UnixAccept"

	// Process / env
	OpExec      OpKind = "Exec"
	OpExecShell OpKind = "ExecShell" // lowered to Exec by the resolver (spec.md §4.2.3)
	OpEnvGet    OpKind = "EnvGet"
	OpSleep     OpKind = "Sleep"
	OpNow       OpKind = "Now"
	OpPrint     OpKind = "Print"

	// Encoding
	OpJsonEncode OpKind = "JsonEncode"
	OpJsonDecode OpKind = "JsonDecode"

	// Arithmetic / logic
	OpAdd      OpKind = "Add"
	OpSub      OpKind = "Sub"
	OpMul      OpKind = "Mul"
	OpDiv      OpKind = "Div"
	OpFloorDiv OpKind = "FloorDiv"
	OpMod      OpKind = "Mod"
	OpNeg      OpKind = "Neg"
	OpEq       OpKind = "Eq"
	OpNe       OpKind = "Ne"
	OpLt       OpKind = "Lt"
	OpLe       OpKind = "Le"
	OpGt       OpKind = "Gt"
	OpGe       OpKind = "Ge"
	OpNot      OpKind = "Not"
	OpConcat   OpKind = "Concat"
	OpContains OpKind = "Contains"
	OpLen      OpKind = "Len"
	OpIndex    OpKind = "Index"
	OpSetIndex OpKind = "SetIndex"

	// Collection
	OpMin      OpKind = "Min"
	OpMax      OpKind = "Max"
	OpSum      OpKind = "Sum"
	OpAbs      OpKind = "Abs"
	OpSorted   OpKind = "Sorted"
	OpReversed OpKind = "Reversed"

	// Conversion
	OpToBool  OpKind = "ToBool"
	OpToInt   OpKind = "ToInt"
	OpToFloat OpKind = "ToFloat"
	OpToStr   OpKind = "ToStr"

	// Synchronization combinators
	OpAll     OpKind = "All"
	OpAny     OpKind = "Any"
	OpAtLeast OpKind = "AtLeast"
	OpAtMost  OpKind = "AtMost"
	OpAfter   OpKind = "After"

	// Control flow (ternary)
	OpIf OpKind = "If"

	// Control flow (blocks)
	OpForEach  OpKind = "ForEach"
	OpMap      OpKind = "Map"
	OpFilter   OpKind = "Filter"
	OpIfBlock  OpKind = "IfBlock"
	OpBreak    OpKind = "Break"
	OpContinue OpKind = "Continue"

	// Other
	OpFrozenValue     OpKind = "FrozenValue"
	OpGeneratorDef    OpKind = "GeneratorDef"    // unreachable from standard compilation (spec.md §9)
	OpGeneratorYield  OpKind = "GeneratorYield"  // unreachable from standard compilation (spec.md §9)
)

// RequiresApproval reports the classification bit from spec.md §3.3:
// true for FS-mutating, network-originating, and process-spawning ops.
func (k OpKind) RequiresApproval() bool {
	switch k {
	case OpWriteFile, OpAppendFile, OpDeleteFile, OpMkdir, OpRmdir, OpCopyFile, OpMoveFile,
		OpHttpRequest,
		OpTcpConnect, OpTcpSend, OpTcpListen, OpTcpAccept,
		OpUdpBind, OpUdpSendTo,
		OpUnixConnect, OpUnixSend, OpUnixListen, OpUnixAccept,
		OpExec, OpExecShell:
		return true
	default:
		return false
	}
}

// IsPure reports whether the op has no side effects and is eligible for
// compile-time constant folding when all operands are literal (spec.md
// §4.1's "literal purity" / testable property #4).
func (k OpKind) IsPure() bool {
	switch k {
	case OpJsonEncode, OpJsonDecode,
		OpAdd, OpSub, OpMul, OpDiv, OpFloorDiv, OpMod, OpNeg,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpNot,
		OpConcat, OpContains, OpLen, OpIndex, OpSetIndex,
		OpMin, OpMax, OpSum, OpAbs, OpSorted, OpReversed,
		OpToBool, OpToInt, OpToFloat, OpToStr,
		OpIf:
		return true
	default:
		return false
	}
}

// SchemaOp is the operand payload of one entry in a Schema. Only the
// fields relevant to Kind are populated; see the doc comment on each
// field for which kinds use it.
type SchemaOp struct {
	Kind OpKind

	Path    SchemaValue // ReadFile/WriteFile/.../FileExists/FileSize/ListDir/Mkdir/Rmdir: target path
	Content SchemaValue // WriteFile/AppendFile: bytes to write
	Src     SchemaValue // CopyFile/MoveFile: source path
	Dst     SchemaValue // CopyFile/MoveFile: destination path
	Recursive bool      // Mkdir/Rmdir

	Method  SchemaValue // HttpRequest
	Url     SchemaValue // HttpRequest
	Headers SchemaValue // HttpRequest
	Body    SchemaValue // HttpRequest

	Host     SchemaValue // Tcp/Udp/Unix connect/bind/listen
	Port     SchemaValue // Tcp/Udp connect/bind/listen
	Handle   SchemaValue // Tcp/Udp/Unix send/recv/close, accept's listener
	Data     SchemaValue // Tcp/Udp/Unix send
	MaxBytes SchemaValue // Tcp/Udp/Unix recv

	Command SchemaValue // Exec: program name, or shell command for ExecShell
	Args    SchemaValue // Exec: argument list

	Name    SchemaValue // EnvGet: variable name
	Default SchemaValue // EnvGet: fallback value

	Seconds SchemaValue // Sleep
	Message SchemaValue // Print

	Value SchemaValue // JsonEncode/ToBool/ToInt/ToFloat/ToStr/Neg/Not/Abs/Len/FrozenValue: sole operand
	Str   SchemaValue // JsonDecode: source string

	Left  SchemaValue // binary arithmetic/comparison/Concat/Contains(haystack): left operand
	Right SchemaValue // binary arithmetic/comparison/Concat/Contains(needle): right operand

	Values SchemaValue // Min/Max/Sorted/Reversed: source collection
	Start  SchemaValue // Sum: accumulator seed

	Collection SchemaValue // Index/SetIndex: receiver
	Index      SchemaValue // Index/SetIndex: index expression
	NewValue   SchemaValue // SetIndex: value to store

	Cond SchemaValue // If/IfBlock: condition
	Then SchemaValue // If: then-branch value
	Else SchemaValue // If: else-branch value

	OperandIDs []int // All/Any/AtLeast/AtMost: schema-entry ids of the operand ops
	Dependency int    // After: ordering-edge op id
	DependencyValue SchemaValue // After: value to forward once Dependency has run
	Count int          // AtLeast/AtMost: threshold n

	// FrozenValue
	FrozenName string

	// ForEach / Map / Filter: iterate Iterable, binding LoopVar inside LoopBody.
	Iterable SchemaValue
	LoopVar  string
	LoopBody *SchemaSubPlan
	Parallel bool // ForEach only (spec.md §4.1 loop-parallelism analysis)

	// IfBlock: Then/ElseBody are sub-plans (Cond above selects between them).
	ThenBody *SchemaSubPlan
	ElseBody *SchemaSubPlan // nil if no else clause
}

// IsConcrete reports whether every operand of op is a plain literal, i.e.
// none of them depend on an op output, a sub-plan parameter, or an
// env/config reference still awaiting resolution. Combined with
// IsPure(), this decides whether Emit can fold op to a literal at
// generation time (spec.md §4.1's "literal purity" / testable property #4).
func (op SchemaOp) IsConcrete() bool {
	concrete := true
	check := func(values ...SchemaValue) {
		for _, v := range values {
			if v.IsSymbolic() {
				concrete = false
			}
		}
	}
	check(op.Path, op.Content, op.Src, op.Dst,
		op.Method, op.Url, op.Headers, op.Body,
		op.Host, op.Port, op.Handle, op.Data, op.MaxBytes,
		op.Command, op.Args, op.Name, op.Default,
		op.Seconds, op.Message, op.Value, op.Str,
		op.Left, op.Right, op.Values, op.Start,
		op.Collection, op.Index, op.NewValue,
		op.Cond, op.Then, op.Else,
		op.DependencyValue, op.Iterable)
	return concrete
}

// ReferencedOpIDs returns every schema-entry id this op's operands
// reference directly (not descending into sub-plans, which have an
// independent id space), in first-appearance order with duplicates kept
// for the caller to dedupe — used to compute SchemaEntry.Inputs.
func (op SchemaOp) ReferencedOpIDs() []int {
	var ids []int
	collect := func(values ...SchemaValue) {
		for _, v := range values {
			ids = append(ids, v.OpIDs()...)
		}
	}
	collect(op.Path, op.Content, op.Src, op.Dst,
		op.Method, op.Url, op.Headers, op.Body,
		op.Host, op.Port, op.Handle, op.Data, op.MaxBytes,
		op.Command, op.Args, op.Name, op.Default,
		op.Seconds, op.Message, op.Value, op.Str,
		op.Left, op.Right, op.Values, op.Start,
		op.Collection, op.Index, op.NewValue,
		op.Cond, op.Then, op.Else,
		op.DependencyValue, op.Iterable)
	if op.Kind == OpAfter {
		ids = append(ids, op.Dependency)
	}
	if op.Kind == OpAll || op.Kind == OpAny || op.Kind == OpAtLeast || op.Kind == OpAtMost {
		ids = append(ids, op.OperandIDs...)
	}
	return ids
}
