package generator

import "github.com/blueprint-lang/blueprint/internal/schema"

// isForEachParallel implements spec.md §4.1's loop-parallelism analysis:
// a ForEach body may run its iterations concurrently iff every op in it
// is parallelizable under the loop variable.
func isForEachParallel(body *schema.SchemaSubPlan, loopVar string) bool {
	for _, e := range body.Entries {
		if !opParallelizable(e.Op, loopVar, body) {
			return false
		}
	}
	return true
}

func opParallelizable(op schema.SchemaOp, loopVar string, body *schema.SchemaSubPlan) bool {
	switch op.Kind {
	case schema.OpPrint, schema.OpBreak, schema.OpContinue:
		return false

	case schema.OpTcpConnect, schema.OpTcpSend, schema.OpTcpRecv, schema.OpTcpClose, schema.OpTcpListen, schema.OpTcpAccept,
		schema.OpUdpBind, schema.OpUdpSendTo, schema.OpUdpRecvFrom, schema.OpUdpClose,
		schema.OpUnixConnect, schema.OpUnixSend, schema.OpUnixRecv, schema.OpUnixClose, schema.OpUnixListen, schema.OpUnixAccept:
		return false

	case schema.OpAppendFile:
		return false

	case schema.OpWriteFile, schema.OpDeleteFile, schema.OpMkdir, schema.OpRmdir:
		return dependsOnLoopVar(op.Path, loopVar, body)

	case schema.OpCopyFile, schema.OpMoveFile:
		return dependsOnLoopVar(op.Dst, loopVar, body)

	case schema.OpForEach:
		if !op.Parallel {
			return false
		}
		if op.LoopBody == nil {
			return true
		}
		return isForEachParallel(op.LoopBody, loopVar)

	default:
		return true
	}
}

// dependsOnLoopVar reports whether sv is, or transitively derives from
// (via a chain of OpOutput references within the same sub-plan), the
// loop variable's ParamRef.
func dependsOnLoopVar(sv schema.SchemaValue, loopVar string, body *schema.SchemaSubPlan) bool {
	switch sv.Kind {
	case schema.VParamRef:
		return sv.ParamRef == loopVar
	case schema.VOpRef:
		e, ok := body.ByID(sv.OpRefID)
		if !ok {
			return false
		}
		for _, operand := range opOperands(e.Op) {
			if dependsOnLoopVar(operand, loopVar, body) {
				return true
			}
		}
		return false
	case schema.VList:
		for _, item := range sv.List {
			if dependsOnLoopVar(item, loopVar, body) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// opOperands lists every SchemaValue-typed field an op carries, mirroring
// SchemaOp.ReferencedOpIDs' field set but returning the values themselves
// rather than just the OpRef ids within them.
func opOperands(op schema.SchemaOp) []schema.SchemaValue {
	return []schema.SchemaValue{
		op.Path, op.Content, op.Src, op.Dst,
		op.Method, op.Url, op.Headers, op.Body,
		op.Host, op.Port, op.Handle, op.Data, op.MaxBytes,
		op.Command, op.Args, op.Name, op.Default,
		op.Seconds, op.Message, op.Value, op.Str,
		op.Left, op.Right, op.Values, op.Start,
		op.Collection, op.Index, op.NewValue,
		op.Cond, op.Then, op.Else,
		op.DependencyValue, op.Iterable,
	}
}
