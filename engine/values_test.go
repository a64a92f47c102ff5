package engine

import (
	"math"
	"testing"

	"github.com/tetratelabs/wazero/api"
)

func TestEncodeArgs(t *testing.T) {
	tests := []struct {
		name  string
		typ   api.ValueType
		arg   string
		want  uint64
		isErr bool
	}{
		{"i32 positive", api.ValueTypeI32, "42", 42, false},
		{"i32 negative", api.ValueTypeI32, "-1", api.EncodeI32(-1), false},
		{"i32 unsigned", api.ValueTypeI32, "4294967295", api.EncodeU32(math.MaxUint32), false},
		{"i32 hex", api.ValueTypeI32, "0x10", 16, false},
		{"i32 overflow", api.ValueTypeI32, "4294967296", 0, true},
		{"i64", api.ValueTypeI64, "-2", api.EncodeI64(-2), false},
		{"i64 unsigned", api.ValueTypeI64, "18446744073709551615", math.MaxUint64, false},
		{"f32", api.ValueTypeF32, "1.5", api.EncodeF32(1.5), false},
		{"f64", api.ValueTypeF64, "-0.25", api.EncodeF64(-0.25), false},
		{"not a number", api.ValueTypeF64, "abc", 0, true},
		{"externref", api.ValueTypeExternref, "0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeArgs([]api.ValueType{tt.typ}, []string{tt.arg})
			if tt.isErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeArgs: %v", err)
			}
			if got[0] != tt.want {
				t.Errorf("got %#x, want %#x", got[0], tt.want)
			}
		})
	}

	if _, err := EncodeArgs([]api.ValueType{api.ValueTypeI32}, nil); err == nil {
		t.Error("expected arity error")
	}
}

func TestFormatResults(t *testing.T) {
	types := []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64, api.ValueTypeExternref}
	values := []uint64{api.EncodeI32(-7), api.EncodeI64(1 << 40), api.EncodeF32(0.5), api.EncodeF64(2.25), 0xff}
	want := []string{"-7", "1099511627776", "0.5", "2.25", "0xff"}

	got := FormatResults(types, values)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %q, want %q", i, got[i], want[i])
		}
	}
}
