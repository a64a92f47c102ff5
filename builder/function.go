package builder

import (
	"slices"

	"github.com/wippyai/wasm-builder/wasm"
)

// FunctionDefinition is a function's signature together with its body.
type FunctionDefinition struct {
	Signature Signature
	Body      wasm.FuncBody
}

// FunctionBuilder composes a FunctionDefinition. A function without an
// explicit signature takes and returns nothing; one without a body has a
// body consisting of end only.
type FunctionBuilder[R any] struct {
	next continuation[FunctionDefinition, R]
	err  error
	def  FunctionDefinition
	body bool
}

// NewFunction starts a standalone function builder whose Build returns the
// definition.
func NewFunction() *FunctionBuilder[FunctionDefinition] {
	return FunctionWithCallback[FunctionDefinition](Identity[FunctionDefinition])
}

// FunctionWithCallback starts a function builder that hands the definition to cb.
func FunctionWithCallback[R any](cb Invoke[FunctionDefinition, R]) *FunctionBuilder[R] {
	return &FunctionBuilder[R]{next: newContinuation[FunctionDefinition, R](cb)}
}

func (b *FunctionBuilder[R]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// WithSignature sets the signature.
func (b *FunctionBuilder[R]) WithSignature(sig Signature) *FunctionBuilder[R] {
	b.def.Signature = sig
	return b
}

// WithTypeRef sets the signature to an existing type index.
func (b *FunctionBuilder[R]) WithTypeRef(idx uint32) *FunctionBuilder[R] {
	return b.WithSignature(TypeReference(idx))
}

// Signature starts an inline signature for this function.
func (b *FunctionBuilder[R]) Signature() *SignatureBuilder[*FunctionBuilder[R]] {
	return SignatureWithCallback[*FunctionBuilder[R]](func(ft wasm.FuncType) *FunctionBuilder[R] {
		return b.WithSignature(InlineSignature{Type: ft})
	})
}

// WithBody sets an already encoded body. Code must include the final end.
func (b *FunctionBuilder[R]) WithBody(body wasm.FuncBody) *FunctionBuilder[R] {
	b.def.Body = body
	b.body = true
	return b
}

// Body starts the body of this function.
func (b *FunctionBuilder[R]) Body() *BodyBuilder[*FunctionBuilder[R]] {
	return BodyWithCallback[*FunctionBuilder[R]](b.WithBody)
}

// Build hands the definition to the continuation.
func (b *FunctionBuilder[R]) Build() R {
	def := b.def
	if def.Signature == nil {
		def.Signature = InlineSignature{}
	}
	if !b.body {
		def.Body = wasm.FuncBody{Code: []byte{wasm.OpEnd}}
	}
	return b.next.invoke(def, b.err)
}

// BodyBuilder accumulates locals and instructions of a function body.
// Build encodes the instructions and appends the terminating end.
type BodyBuilder[R any] struct {
	next   continuation[wasm.FuncBody, R]
	locals []wasm.LocalEntry
	instrs []wasm.Instruction
}

// NewBody starts a standalone body builder whose Build returns the body.
func NewBody() *BodyBuilder[wasm.FuncBody] {
	return BodyWithCallback[wasm.FuncBody](Identity[wasm.FuncBody])
}

// BodyWithCallback starts a body builder that hands the body to cb.
func BodyWithCallback[R any](cb Invoke[wasm.FuncBody, R]) *BodyBuilder[R] {
	return &BodyBuilder[R]{next: newContinuation[wasm.FuncBody, R](cb)}
}

// WithLocals declares count locals of type vt. Consecutive declarations of
// the same type are merged into one entry.
func (b *BodyBuilder[R]) WithLocals(count uint32, vt wasm.ValType) *BodyBuilder[R] {
	if count == 0 {
		return b
	}
	if n := len(b.locals); n > 0 && b.locals[n-1].ValType == vt {
		b.locals[n-1].Count += count
		return b
	}
	b.locals = append(b.locals, wasm.LocalEntry{Count: count, ValType: vt})
	return b
}

// WithLocal declares one local of type vt.
func (b *BodyBuilder[R]) WithLocal(vt wasm.ValType) *BodyBuilder[R] {
	return b.WithLocals(1, vt)
}

// WithInstructions appends already formed instructions.
func (b *BodyBuilder[R]) WithInstructions(instrs ...wasm.Instruction) *BodyBuilder[R] {
	b.instrs = append(b.instrs, instrs...)
	return b
}

// Instr appends one instruction. imm must be the immediate type the opcode
// expects, or nil.
func (b *BodyBuilder[R]) Instr(op byte, imm any) *BodyBuilder[R] {
	return b.WithInstructions(wasm.Instruction{Opcode: op, Imm: imm})
}

// Op appends an instruction without immediates.
func (b *BodyBuilder[R]) Op(op byte) *BodyBuilder[R] {
	return b.Instr(op, nil)
}

// Block opens a block with block type bt (a BlockType constant or type index).
func (b *BodyBuilder[R]) Block(bt int32) *BodyBuilder[R] {
	return b.Instr(wasm.OpBlock, wasm.BlockImm{Type: bt})
}

// Loop opens a loop with block type bt.
func (b *BodyBuilder[R]) Loop(bt int32) *BodyBuilder[R] {
	return b.Instr(wasm.OpLoop, wasm.BlockImm{Type: bt})
}

// If opens an if with block type bt.
func (b *BodyBuilder[R]) If(bt int32) *BodyBuilder[R] {
	return b.Instr(wasm.OpIf, wasm.BlockImm{Type: bt})
}

// Else starts the else arm of the innermost if.
func (b *BodyBuilder[R]) Else() *BodyBuilder[R] { return b.Op(wasm.OpElse) }

// End closes the innermost block. The function's own end is added by Build.
func (b *BodyBuilder[R]) End() *BodyBuilder[R] { return b.Op(wasm.OpEnd) }

// Br branches to the label at relative depth label.
func (b *BodyBuilder[R]) Br(label uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpBr, wasm.BranchImm{LabelIdx: label})
}

// BrIf branches to label when the top of the stack is non-zero.
func (b *BodyBuilder[R]) BrIf(label uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpBrIf, wasm.BranchImm{LabelIdx: label})
}

// Return appends return.
func (b *BodyBuilder[R]) Return() *BodyBuilder[R] { return b.Op(wasm.OpReturn) }

// Drop discards the top of the stack.
func (b *BodyBuilder[R]) Drop() *BodyBuilder[R] { return b.Op(wasm.OpDrop) }

// Call appends a call. idx is in the function index space, imports first.
func (b *BodyBuilder[R]) Call(idx uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpCall, wasm.CallImm{FuncIdx: idx})
}

// LocalGet pushes local idx. Parameters come first in the local index space.
func (b *BodyBuilder[R]) LocalGet(idx uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpLocalGet, wasm.LocalImm{LocalIdx: idx})
}

// LocalSet pops into local idx.
func (b *BodyBuilder[R]) LocalSet(idx uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpLocalSet, wasm.LocalImm{LocalIdx: idx})
}

// LocalTee stores into local idx and keeps the value on the stack.
func (b *BodyBuilder[R]) LocalTee(idx uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpLocalTee, wasm.LocalImm{LocalIdx: idx})
}

// GlobalGet pushes global idx.
func (b *BodyBuilder[R]) GlobalGet(idx uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpGlobalGet, wasm.GlobalImm{GlobalIdx: idx})
}

// GlobalSet pops into global idx.
func (b *BodyBuilder[R]) GlobalSet(idx uint32) *BodyBuilder[R] {
	return b.Instr(wasm.OpGlobalSet, wasm.GlobalImm{GlobalIdx: idx})
}

// I32Const pushes an i32 constant.
func (b *BodyBuilder[R]) I32Const(v int32) *BodyBuilder[R] {
	return b.Instr(wasm.OpI32Const, wasm.I32Imm{Value: v})
}

// I64Const pushes an i64 constant.
func (b *BodyBuilder[R]) I64Const(v int64) *BodyBuilder[R] {
	return b.Instr(wasm.OpI64Const, wasm.I64Imm{Value: v})
}

// F32Const pushes an f32 constant.
func (b *BodyBuilder[R]) F32Const(v float32) *BodyBuilder[R] {
	return b.Instr(wasm.OpF32Const, wasm.F32Imm{Value: v})
}

// F64Const pushes an f64 constant.
func (b *BodyBuilder[R]) F64Const(v float64) *BodyBuilder[R] {
	return b.Instr(wasm.OpF64Const, wasm.F64Imm{Value: v})
}

// Load appends a load or store with the given alignment exponent and offset.
func (b *BodyBuilder[R]) Load(op byte, align uint32, offset uint64) *BodyBuilder[R] {
	return b.Instr(op, wasm.MemoryImm{Align: align, Offset: offset})
}

// Store is Load for store opcodes.
func (b *BodyBuilder[R]) Store(op byte, align uint32, offset uint64) *BodyBuilder[R] {
	return b.Load(op, align, offset)
}

// Build encodes the body and hands it to the continuation. The delivered
// body owns its locals; later changes to the builder do not reach it.
func (b *BodyBuilder[R]) Build() R {
	code := wasm.EncodeInstructions(b.instrs)
	code = append(code, wasm.OpEnd)
	return b.next.invoke(wasm.FuncBody{Locals: slices.Clone(b.locals), Code: code}, nil)
}
