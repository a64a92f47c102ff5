package manifest

import (
	"testing"

	"github.com/wippyai/wasm-builder/wasm"
)

func TestValueTypes(t *testing.T) {
	tests := []struct {
		name  string
		want  []wasm.ValType
		isErr bool
	}{
		{"i32", []wasm.ValType{wasm.ValI32}, false},
		{"i64", []wasm.ValType{wasm.ValI64}, false},
		{"f32", []wasm.ValType{wasm.ValF32}, false},
		{"f64", []wasm.ValType{wasm.ValF64}, false},
		{"externref", []wasm.ValType{wasm.ValExtern}, false},
		{" i32 ", []wasm.ValType{wasm.ValI32}, false},
		{"bool", []wasm.ValType{wasm.ValI32}, false},
		{"u8", []wasm.ValType{wasm.ValI32}, false},
		{"s16", []wasm.ValType{wasm.ValI32}, false},
		{"char", []wasm.ValType{wasm.ValI32}, false},
		{"u64", []wasm.ValType{wasm.ValI64}, false},
		{"s64", []wasm.ValType{wasm.ValI64}, false},
		{"string", []wasm.ValType{wasm.ValI32, wasm.ValI32}, false},
		{"list<", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueTypes(tt.name)
			if tt.isErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValueTypes: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSignatureFuncType(t *testing.T) {
	ft, err := Signature{Params: []string{"string", "u32"}, Results: []string{"f64"}}.FuncType()
	if err != nil {
		t.Fatalf("FuncType: %v", err)
	}
	want := wasm.FuncType{
		Params:  []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32},
		Results: []wasm.ValType{wasm.ValF64},
	}
	if !ft.Equal(want) {
		t.Errorf("got %s, want %s", ft, want)
	}

	if _, err := (Signature{Results: []string{"list<"}}).FuncType(); err == nil {
		t.Error("expected error for bad result type")
	}
}
