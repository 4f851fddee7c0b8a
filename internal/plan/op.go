package plan

import "github.com/blueprint-lang/blueprint/internal/schema"

// OpKind reuses the schema layer's enumeration (spec.md §3.3 describes a
// single tagged union shared by both layers; only the operand
// representation differs between SchemaValue and ValueRef).
type OpKind = schema.OpKind

const (
	OpReadFile   = schema.OpReadFile
	OpWriteFile  = schema.OpWriteFile
	OpAppendFile = schema.OpAppendFile
	OpDeleteFile = schema.OpDeleteFile
	OpMkdir      = schema.OpMkdir
	OpRmdir      = schema.OpRmdir
	OpListDir    = schema.OpListDir
	OpCopyFile   = schema.OpCopyFile
	OpMoveFile   = schema.OpMoveFile
	OpFileExists = schema.OpFileExists
	OpIsDir      = schema.OpIsDir
	OpIsFile     = schema.OpIsFile
	OpFileSize   = schema.OpFileSize

	OpHttpRequest = schema.OpHttpRequest
	OpTcpConnect  = schema.OpTcpConnect
	OpTcpSend     = schema.OpTcpSend
	OpTcpRecv     = schema.OpTcpRecv
	OpTcpClose    = schema.OpTcpClose
	OpTcpListen   = schema.OpTcpListen
	OpTcpAccept   = schema.OpTcpAccept
	OpUdpBind     = schema.OpUdpBind
	OpUdpSendTo   = schema.OpUdpSendTo
	OpUdpRecvFrom = schema.OpUdpRecvFrom
	OpUdpClose    = schema.OpUdpClose
	OpUnixConnect = schema.OpUnixConnect
	OpUnixSend    = schema.OpUnixSend
	OpUnixRecv    = schema.OpUnixRecv
	OpUnixClose   = schema.OpUnixClose
	OpUnixListen  = schema.OpUnixListen
	OpUnixAccept  = schema.OpUnixAccept

	OpExec      = schema.OpExec
	OpExecShell = schema.OpExecShell
	OpEnvGet    = schema.OpEnvGet
	OpSleep     = schema.OpSleep
	OpNow       = schema.OpNow
	OpPrint     = schema.OpPrint

	OpJsonEncode = schema.OpJsonEncode
	OpJsonDecode = schema.OpJsonDecode

	OpAdd      = schema.OpAdd
	OpSub      = schema.OpSub
	OpMul      = schema.OpMul
	OpDiv      = schema.OpDiv
	OpFloorDiv = schema.OpFloorDiv
	OpMod      = schema.OpMod
	OpNeg      = schema.OpNeg
	OpEq       = schema.OpEq
	OpNe       = schema.OpNe
	OpLt       = schema.OpLt
	OpLe       = schema.OpLe
	OpGt       = schema.OpGt
	OpGe       = schema.OpGe
	OpNot      = schema.OpNot
	OpConcat   = schema.OpConcat
	OpContains = schema.OpContains
	OpLen      = schema.OpLen
	OpIndex    = schema.OpIndex
	OpSetIndex = schema.OpSetIndex

	OpMin      = schema.OpMin
	OpMax      = schema.OpMax
	OpSum      = schema.OpSum
	OpAbs      = schema.OpAbs
	OpSorted   = schema.OpSorted
	OpReversed = schema.OpReversed

	OpToBool  = schema.OpToBool
	OpToInt   = schema.OpToInt
	OpToFloat = schema.OpToFloat
	OpToStr   = schema.OpToStr

	OpAll     = schema.OpAll
	OpAny     = schema.OpAny
	OpAtLeast = schema.OpAtLeast
	OpAtMost  = schema.OpAtMost
	OpAfter   = schema.OpAfter

	OpIf = schema.OpIf

	OpForEach  = schema.OpForEach
	OpMap      = schema.OpMap
	OpFilter   = schema.OpFilter
	OpIfBlock  = schema.OpIfBlock
	OpBreak    = schema.OpBreak
	OpContinue = schema.OpContinue

	OpFrozenValue    = schema.OpFrozenValue
	OpGeneratorDef   = schema.OpGeneratorDef
	OpGeneratorYield = schema.OpGeneratorYield
)

// Payload is the operand payload of one Op, mirroring schema.SchemaOp
// but using ValueRef instead of SchemaValue (spec.md §3.2 plan layer).
type Payload struct {
	Kind OpKind

	Path      ValueRef
	Content   ValueRef
	Src       ValueRef
	Dst       ValueRef
	Recursive bool

	Method  ValueRef
	Url     ValueRef
	Headers ValueRef
	Body    ValueRef

	Host     ValueRef
	Port     ValueRef
	Handle   ValueRef
	Data     ValueRef
	MaxBytes ValueRef

	Command ValueRef
	Args    ValueRef

	Name    ValueRef
	Default ValueRef

	Seconds ValueRef
	Message ValueRef

	Value ValueRef
	Str   ValueRef

	Left  ValueRef
	Right ValueRef

	Values ValueRef
	Start  ValueRef

	Collection ValueRef
	Index      ValueRef
	NewValue   ValueRef

	Cond ValueRef
	Then ValueRef
	Else ValueRef

	OperandIDs      []int
	Dependency      int
	DependencyValue ValueRef
	Count           int

	FrozenName string

	Iterable ValueRef
	LoopVar  string
	LoopBody *SubPlan // ForEach/Map/Filter body
	Parallel bool

	ThenBody *SubPlan
	ElseBody *SubPlan
}

// ReferencedOpIDs mirrors schema.SchemaOp.ReferencedOpIDs for the plan layer.
func (p Payload) ReferencedOpIDs() []int {
	var ids []int
	collect := func(refs ...ValueRef) {
		for _, r := range refs {
			ids = append(ids, r.OpIDs()...)
		}
	}
	collect(p.Path, p.Content, p.Src, p.Dst,
		p.Method, p.Url, p.Headers, p.Body,
		p.Host, p.Port, p.Handle, p.Data, p.MaxBytes,
		p.Command, p.Args, p.Name, p.Default,
		p.Seconds, p.Message, p.Value, p.Str,
		p.Left, p.Right, p.Values, p.Start,
		p.Collection, p.Index, p.NewValue,
		p.Cond, p.Then, p.Else,
		p.DependencyValue, p.Iterable)
	if p.Kind == OpAfter {
		ids = append(ids, p.Dependency)
	}
	if p.Kind == OpAll || p.Kind == OpAny || p.Kind == OpAtLeast || p.Kind == OpAtMost {
		ids = append(ids, p.OperandIDs...)
	}
	return ids
}
