package wasm

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-builder/wasm/internal/binary"
)

// Instruction represents a decoded WebAssembly instruction
type Instruction struct {
	Imm    any
	Opcode byte
}

// BlockImm holds the block type for block, loop, and if instructions.
type BlockImm struct {
	Type int32 // Block type: -64=void, -1=i32, -2=i64, -3=f32, -4=f64, >=0=type index
}

// BranchImm holds the label index for br and br_if instructions.
type BranchImm struct {
	LabelIdx uint32
}

// BrTableImm holds the label table for br_table instruction.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallImm holds the function index for call instruction.
type CallImm struct {
	FuncIdx uint32
}

// CallIndirectImm holds type and table indices for call_indirect instruction.
type CallIndirectImm struct {
	TypeIdx  uint32
	TableIdx uint32
}

// LocalImm holds the local index for local.get, local.set, local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm holds the global index for global.get and global.set.
type GlobalImm struct {
	GlobalIdx uint32
}

// MemoryImm holds memory access parameters for load and store instructions.
type MemoryImm struct {
	Offset uint64
	Align  uint32
	MemIdx uint32
}

// MemoryIdxImm holds memory index for memory.size, memory.grow
type MemoryIdxImm struct {
	MemIdx uint32
}

// I32Imm holds the constant value for i32.const instruction.
type I32Imm struct {
	Value int32
}

// I64Imm holds the constant value for i64.const instruction.
type I64Imm struct {
	Value int64
}

// F32Imm holds the constant value for f32.const instruction.
type F32Imm struct {
	Value float32
}

// F64Imm holds the constant value for f64.const instruction.
type F64Imm struct {
	Value float64
}

// String renders the instruction in text-format style.
func (i Instruction) String() string {
	name := OpcodeName(i.Opcode)
	if name == "" {
		name = fmt.Sprintf("<0x%02x>", i.Opcode)
	}
	switch imm := i.Imm.(type) {
	case nil:
		return name
	case BlockImm:
		if imm.Type == BlockTypeVoid {
			return name
		}
		if imm.Type >= 0 {
			return fmt.Sprintf("%s (type %d)", name, imm.Type)
		}
		return fmt.Sprintf("%s (result %s)", name, ValType(byte(imm.Type&0x7f)))
	case BranchImm:
		return fmt.Sprintf("%s %d", name, imm.LabelIdx)
	case BrTableImm:
		var b strings.Builder
		b.WriteString(name)
		for _, l := range imm.Labels {
			fmt.Fprintf(&b, " %d", l)
		}
		fmt.Fprintf(&b, " %d", imm.Default)
		return b.String()
	case CallImm:
		return fmt.Sprintf("%s %d", name, imm.FuncIdx)
	case CallIndirectImm:
		return fmt.Sprintf("%s %d (type %d)", name, imm.TableIdx, imm.TypeIdx)
	case LocalImm:
		return fmt.Sprintf("%s %d", name, imm.LocalIdx)
	case GlobalImm:
		return fmt.Sprintf("%s %d", name, imm.GlobalIdx)
	case MemoryImm:
		return fmt.Sprintf("%s offset=%d align=%d", name, imm.Offset, uint32(1)<<imm.Align)
	case MemoryIdxImm:
		if imm.MemIdx == 0 {
			return name
		}
		return fmt.Sprintf("%s %d", name, imm.MemIdx)
	case I32Imm:
		return fmt.Sprintf("%s %d", name, imm.Value)
	case I64Imm:
		return fmt.Sprintf("%s %d", name, imm.Value)
	case F32Imm:
		return fmt.Sprintf("%s %g", name, imm.Value)
	case F64Imm:
		return fmt.Sprintf("%s %g", name, imm.Value)
	default:
		return fmt.Sprintf("%s %v", name, imm)
	}
}

// DecodeInstructions decodes an instruction sequence.
func DecodeInstructions(code []byte) ([]Instruction, error) {
	r := binary.NewReader(code)
	// Pre-allocate based on estimation: roughly 2 bytes per instruction on average
	instrs := make([]Instruction, 0, len(code)/2)

	for r.Len() > 0 {
		pos := r.Position()
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}

		info := opcodesByByte[op]
		if info == nil {
			return nil, fmt.Errorf("at position %d: unsupported opcode 0x%02x", pos, op)
		}

		instr := Instruction{Opcode: op}

		switch info.Imm {
		case ImmNone:
		case ImmBlock:
			bt, err := r.ReadS64()
			if err != nil {
				return nil, err
			}
			instr.Imm = BlockImm{Type: int32(bt)}
		case ImmIndex:
			idx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			instr.Imm = indexImm(op, idx)
		case ImmBrTable:
			count, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			if int(count) > r.Len() {
				return nil, fmt.Errorf("at position %d: br_table label count %d exceeds body", pos, count)
			}
			labels := make([]uint32, count)
			for i := range labels {
				labels[i], err = r.ReadU32()
				if err != nil {
					return nil, err
				}
			}
			def, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			instr.Imm = BrTableImm{Labels: labels, Default: def}
		case ImmCallIndirect:
			typeIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			tableIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			instr.Imm = CallIndirectImm{TypeIdx: typeIdx, TableIdx: tableIdx}
		case ImmMemarg:
			memImm, err := readMemArg(r)
			if err != nil {
				return nil, err
			}
			instr.Imm = memImm
		case ImmMemIdx:
			idx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			instr.Imm = MemoryIdxImm{MemIdx: idx}
		case ImmI32:
			v, err := r.ReadS32()
			if err != nil {
				return nil, err
			}
			instr.Imm = I32Imm{Value: v}
		case ImmI64:
			v, err := r.ReadS64()
			if err != nil {
				return nil, err
			}
			instr.Imm = I64Imm{Value: v}
		case ImmF32:
			v, err := r.ReadF32()
			if err != nil {
				return nil, err
			}
			instr.Imm = F32Imm{Value: v}
		case ImmF64:
			v, err := r.ReadF64()
			if err != nil {
				return nil, err
			}
			instr.Imm = F64Imm{Value: v}
		}

		instrs = append(instrs, instr)
	}

	return instrs, nil
}

func indexImm(op byte, idx uint32) any {
	switch op {
	case OpBr, OpBrIf:
		return BranchImm{LabelIdx: idx}
	case OpCall:
		return CallImm{FuncIdx: idx}
	case OpLocalGet, OpLocalSet, OpLocalTee:
		return LocalImm{LocalIdx: idx}
	default:
		return GlobalImm{GlobalIdx: idx}
	}
}

// EncodeInstructions encodes an instruction sequence.
// Immediates of the wrong type for their opcode are encoded as zero values.
func EncodeInstructions(instrs []Instruction) []byte {
	w := binary.NewWriter()
	for i := range instrs {
		encodeInstruction(w, &instrs[i])
	}
	return w.Bytes()
}

func encodeInstruction(w *binary.Writer, instr *Instruction) {
	w.Byte(instr.Opcode)

	switch imm := instr.Imm.(type) {
	case BlockImm:
		w.WriteS64(int64(imm.Type))
	case BranchImm:
		w.WriteU32(imm.LabelIdx)
	case BrTableImm:
		w.WriteU32(uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			w.WriteU32(l)
		}
		w.WriteU32(imm.Default)
	case CallImm:
		w.WriteU32(imm.FuncIdx)
	case CallIndirectImm:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.TableIdx)
	case LocalImm:
		w.WriteU32(imm.LocalIdx)
	case GlobalImm:
		w.WriteU32(imm.GlobalIdx)
	case MemoryImm:
		writeMemArg(w, imm)
	case MemoryIdxImm:
		w.WriteU32(imm.MemIdx)
	case I32Imm:
		w.WriteS64(int64(imm.Value))
	case I64Imm:
		w.WriteS64(imm.Value)
	case F32Imm:
		w.WriteF32(imm.Value)
	case F64Imm:
		w.WriteF64(imm.Value)
	case nil:
		// memory.size/grow always carry a memory index
		if info := opcodesByByte[instr.Opcode]; info != nil && info.Imm == ImmMemIdx {
			w.Byte(0)
		}
	}
}

func readMemArg(r *binary.Reader) (MemoryImm, error) {
	alignRaw, err := r.ReadU32()
	if err != nil {
		return MemoryImm{}, err
	}

	var memIdx uint32
	if alignRaw&memArgMultiMemBit != 0 {
		memIdx, err = r.ReadU32()
		if err != nil {
			return MemoryImm{}, err
		}
	}

	offset, err := r.ReadU64()
	if err != nil {
		return MemoryImm{}, err
	}

	return MemoryImm{
		Align:  alignRaw &^ uint32(memArgMultiMemBit),
		Offset: offset,
		MemIdx: memIdx,
	}, nil
}

// writeMemArg writes a memarg with multi-memory support.
func writeMemArg(w *binary.Writer, imm MemoryImm) {
	alignRaw := imm.Align
	if imm.MemIdx != 0 {
		alignRaw |= memArgMultiMemBit
	}
	w.WriteU32(alignRaw)
	if imm.MemIdx != 0 {
		w.WriteU32(imm.MemIdx)
	}
	w.WriteU64(imm.Offset)
}
