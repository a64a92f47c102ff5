package manifest

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

var parenStripper = strings.NewReplacer("(", " ", ")", " ")

// ParseInstruction parses one instruction in text form. funcs resolves
// $name operands of call.
func ParseInstruction(text string, funcs map[string]uint32) (wasm.Instruction, error) {
	fields := strings.Fields(parenStripper.Replace(text))
	if len(fields) == 0 {
		return wasm.Instruction{}, instrError(text, "empty instruction")
	}

	info, ok := wasm.LookupOpcode(fields[0])
	if !ok {
		return wasm.Instruction{}, instrError(text, "unknown opcode")
	}
	args := fields[1:]
	instr := wasm.Instruction{Opcode: info.Opcode}

	var err error
	switch info.Imm {
	case wasm.ImmNone:
		if len(args) != 0 {
			return instr, instrError(text, "unexpected operands")
		}
	case wasm.ImmIndex:
		instr.Imm, err = parseIndexImm(info.Opcode, args, funcs)
	case wasm.ImmI32:
		instr.Imm, err = parseI32(args)
	case wasm.ImmI64:
		instr.Imm, err = parseI64(args)
	case wasm.ImmF32:
		var v float64
		v, err = parseFloat(args, 32)
		instr.Imm = wasm.F32Imm{Value: float32(v)}
	case wasm.ImmF64:
		var v float64
		v, err = parseFloat(args, 64)
		instr.Imm = wasm.F64Imm{Value: v}
	case wasm.ImmBlock:
		instr.Imm, err = parseBlockType(args)
	case wasm.ImmMemarg:
		instr.Imm, err = parseMemArg(args, info.NaturalAlign)
	case wasm.ImmMemIdx:
		var idx uint32
		if len(args) > 0 {
			idx, err = parseIndex(args)
		}
		instr.Imm = wasm.MemoryIdxImm{MemIdx: idx}
	case wasm.ImmBrTable:
		instr.Imm, err = parseBrTable(args)
	case wasm.ImmCallIndirect:
		instr.Imm, err = parseCallIndirect(args)
	}
	if err != nil {
		return wasm.Instruction{}, errors.New(errors.PhaseManifest, errors.KindInvalidInput).
			Value(text).
			Cause(err).
			Detail("instruction %q", text).
			Build()
	}
	return instr, nil
}

func instrError(text, detail string) error {
	return errors.New(errors.PhaseManifest, errors.KindInvalidInput).
		Value(text).
		Detail("instruction %q: %s", text, detail).
		Build()
}

func parseIndex(args []string) (uint32, error) {
	if len(args) != 1 {
		return 0, errors.InvalidInput(errors.PhaseManifest, "expected one index operand")
	}
	v, err := strconv.ParseUint(args[0], 0, 32)
	return uint32(v), err
}

func parseIndexImm(op byte, args []string, funcs map[string]uint32) (any, error) {
	if op == wasm.OpCall && len(args) == 1 && strings.HasPrefix(args[0], "$") {
		idx, ok := funcs[args[0][1:]]
		if !ok {
			return nil, errors.NotFound(errors.PhaseManifest, "function", args[0][1:])
		}
		return wasm.CallImm{FuncIdx: idx}, nil
	}

	idx, err := parseIndex(args)
	if err != nil {
		return nil, err
	}
	switch op {
	case wasm.OpBr, wasm.OpBrIf:
		return wasm.BranchImm{LabelIdx: idx}, nil
	case wasm.OpCall:
		return wasm.CallImm{FuncIdx: idx}, nil
	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee:
		return wasm.LocalImm{LocalIdx: idx}, nil
	default:
		return wasm.GlobalImm{GlobalIdx: idx}, nil
	}
}

func oneOperand(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.InvalidInput(errors.PhaseManifest, "expected one operand")
	}
	return args[0], nil
}

// parseI32 accepts signed values and unsigned values up to 2^32-1.
func parseI32(args []string) (wasm.I32Imm, error) {
	s, err := oneOperand(args)
	if err != nil {
		return wasm.I32Imm{}, err
	}
	if v, err := strconv.ParseInt(s, 0, 32); err == nil {
		return wasm.I32Imm{Value: int32(v)}, nil
	}
	u, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return wasm.I32Imm{}, err
	}
	return wasm.I32Imm{Value: int32(uint32(u))}, nil
}

func parseI64(args []string) (wasm.I64Imm, error) {
	s, err := oneOperand(args)
	if err != nil {
		return wasm.I64Imm{}, err
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return wasm.I64Imm{Value: v}, nil
	}
	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return wasm.I64Imm{}, err
	}
	return wasm.I64Imm{Value: int64(u)}, nil
}

func parseFloat(args []string, bitSize int) (float64, error) {
	s, err := oneOperand(args)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, bitSize)
}

// parseBlockType accepts nothing (void), a value type, "result T" or "type N".
func parseBlockType(args []string) (wasm.BlockImm, error) {
	switch {
	case len(args) == 0:
		return wasm.BlockImm{Type: wasm.BlockTypeVoid}, nil
	case len(args) == 2 && args[0] == "type":
		idx, err := strconv.ParseUint(args[1], 0, 31)
		if err != nil {
			return wasm.BlockImm{}, err
		}
		return wasm.BlockImm{Type: int32(idx)}, nil
	case len(args) == 2 && args[0] == "result":
		args = args[1:]
	}
	if len(args) != 1 {
		return wasm.BlockImm{}, errors.InvalidInput(errors.PhaseManifest, "block type takes at most one result")
	}
	vt, ok := coreType(args[0])
	if !ok {
		return wasm.BlockImm{}, errors.InvalidInput(errors.PhaseManifest, "unknown block type "+args[0])
	}
	// value type bytes are the 7-bit signed LEB encoding of a negative number
	return wasm.BlockImm{Type: int32(vt) - 0x80}, nil
}

// parseMemArg reads offset=N and align=N, where align is in bytes.
func parseMemArg(args []string, naturalAlign uint32) (wasm.MemoryImm, error) {
	imm := wasm.MemoryImm{Align: naturalAlign}
	for _, a := range args {
		key, val, ok := strings.Cut(a, "=")
		if !ok {
			return imm, errors.InvalidInput(errors.PhaseManifest, "memory operand must be key=value: "+a)
		}
		n, err := strconv.ParseUint(val, 0, 64)
		if err != nil {
			return imm, err
		}
		switch key {
		case "offset":
			imm.Offset = n
		case "align":
			if n == 0 || n&(n-1) != 0 {
				return imm, errors.InvalidInput(errors.PhaseManifest, "align must be a power of two")
			}
			imm.Align = uint32(bits.TrailingZeros64(n))
		case "memory":
			imm.MemIdx = uint32(n)
		default:
			return imm, errors.InvalidInput(errors.PhaseManifest, "unknown memory operand "+key)
		}
	}
	return imm, nil
}

func parseBrTable(args []string) (wasm.BrTableImm, error) {
	if len(args) == 0 {
		return wasm.BrTableImm{}, errors.InvalidInput(errors.PhaseManifest, "br_table needs a default label")
	}
	labels := make([]uint32, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 32)
		if err != nil {
			return wasm.BrTableImm{}, err
		}
		labels[i] = uint32(v)
	}
	return wasm.BrTableImm{Labels: labels[:len(labels)-1], Default: labels[len(labels)-1]}, nil
}

// parseCallIndirect accepts "N" (type index), "type N" or "T type N" with a
// table index T.
func parseCallIndirect(args []string) (wasm.CallIndirectImm, error) {
	var imm wasm.CallIndirectImm
	switch {
	case len(args) == 1:
		idx, err := parseIndex(args)
		imm.TypeIdx = idx
		return imm, err
	case len(args) == 2 && args[0] == "type":
		idx, err := parseIndex(args[1:])
		imm.TypeIdx = idx
		return imm, err
	case len(args) == 3 && args[1] == "type":
		table, err := parseIndex(args[:1])
		if err != nil {
			return imm, err
		}
		idx, err := parseIndex(args[2:])
		imm.TableIdx = table
		imm.TypeIdx = idx
		return imm, err
	}
	return imm, errors.InvalidInput(errors.PhaseManifest, "call_indirect expects a type index")
}
