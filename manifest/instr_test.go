package manifest

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

func TestParseInstruction(t *testing.T) {
	funcs := map[string]uint32{"helper": 4}

	tests := []struct {
		text string
		want string
	}{
		{"i32.add", "i32.add"},
		{"local.get 2", "local.get 2"},
		{"global.set 1", "global.set 1"},
		{"call 3", "call 3"},
		{"call $helper", "call 4"},
		{"br_if 0", "br_if 0"},
		{"i32.const -5", "i32.const -5"},
		{"i32.const 0xffffffff", "i32.const -1"},
		{"i64.const 9223372036854775807", "i64.const 9223372036854775807"},
		{"f32.const 1.5", "f32.const 1.5"},
		{"f64.const -0.125", "f64.const -0.125"},
		{"block", "block"},
		{"loop i32", "loop (result i32)"},
		{"if (result i64)", "if (result i64)"},
		{"block (type 3)", "block (type 3)"},
		{"i32.load", "i32.load offset=0 align=4"},
		{"i64.store offset=8 align=4", "i64.store offset=8 align=4"},
		{"i32.load8_u offset=1", "i32.load8_u offset=1 align=1"},
		{"memory.size", "memory.size"},
		{"memory.grow 0", "memory.grow"},
		{"br_table 0 1 2", "br_table 0 1 2"},
		{"call_indirect 2", "call_indirect 0 (type 2)"},
		{"call_indirect 1 (type 5)", "call_indirect 1 (type 5)"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			instr, err := ParseInstruction(tt.text, funcs)
			if err != nil {
				t.Fatalf("ParseInstruction: %v", err)
			}
			if got := instr.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseInstructionRoundTripsString(t *testing.T) {
	instrs := []wasm.Instruction{
		{Opcode: wasm.OpBlock, Imm: wasm.BlockImm{Type: wasm.BlockTypeF64}},
		{Opcode: wasm.OpI32Store, Imm: wasm.MemoryImm{Align: 1, Offset: 12}},
		{Opcode: wasm.OpBrTable, Imm: wasm.BrTableImm{Labels: []uint32{2}, Default: 0}},
		{Opcode: wasm.OpF64Const, Imm: wasm.F64Imm{Value: 1e-300}},
	}
	for _, want := range instrs {
		got, err := ParseInstruction(want.String(), nil)
		if err != nil {
			t.Fatalf("ParseInstruction(%q): %v", want.String(), err)
		}
		if got.String() != want.String() {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestParseInstructionErrors(t *testing.T) {
	tests := []string{
		"",
		"i32.frobnicate",
		"i32.add 1",
		"local.get",
		"local.get x",
		"call $missing",
		"i32.const 1.5",
		"i32.load align=3",
		"i32.load offset",
		"i32.load size=4",
		"block i32 i64",
		"block string",
		"br_table",
		"call_indirect",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			_, err := ParseInstruction(text, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseManifest {
				t.Errorf("error = %v, want manifest phase error", err)
			}
		})
	}
}
