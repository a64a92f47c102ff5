package manifest

import (
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

var coreTypes = map[string]wasm.ValType{
	"i32":       wasm.ValI32,
	"i64":       wasm.ValI64,
	"f32":       wasm.ValF32,
	"f64":       wasm.ValF64,
	"v128":      wasm.ValV128,
	"funcref":   wasm.ValFuncRef,
	"externref": wasm.ValExtern,
}

// coreType parses a single core value type name.
func coreType(name string) (wasm.ValType, bool) {
	vt, ok := coreTypes[strings.TrimSpace(name)]
	return vt, ok
}

// ValueTypes lowers a type name to core value types. Core names map to
// themselves; WIT types are flattened the way the canonical ABI passes them.
func ValueTypes(name string) ([]wasm.ValType, error) {
	if vt, ok := coreType(name); ok {
		return []wasm.ValType{vt}, nil
	}

	t, err := wit.ParseType(strings.TrimSpace(name))
	if err != nil {
		return nil, errors.New(errors.PhaseManifest, errors.KindInvalidInput).
			Value(name).
			Cause(err).
			Detail("unknown value type %q", name).
			Build()
	}

	switch t := t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return []wasm.ValType{wasm.ValI32}, nil
	case wit.U64, wit.S64:
		return []wasm.ValType{wasm.ValI64}, nil
	case wit.F32:
		return []wasm.ValType{wasm.ValF32}, nil
	case wit.F64:
		return []wasm.ValType{wasm.ValF64}, nil
	case wit.String:
		return []wasm.ValType{wasm.ValI32, wasm.ValI32}, nil
	case *wit.TypeDef:
		if _, ok := t.Kind.(*wit.List); ok {
			return []wasm.ValType{wasm.ValI32, wasm.ValI32}, nil
		}
	}
	return nil, errors.Unsupported(errors.PhaseManifest, "value type "+name)
}

func valueTypeList(names []string) ([]wasm.ValType, error) {
	var out []wasm.ValType
	for _, n := range names {
		vts, err := ValueTypes(n)
		if err != nil {
			return nil, err
		}
		out = append(out, vts...)
	}
	return out, nil
}

// FuncType lowers the signature to a core function type.
func (s Signature) FuncType() (wasm.FuncType, error) {
	params, err := valueTypeList(s.Params)
	if err != nil {
		return wasm.FuncType{}, err
	}
	results, err := valueTypeList(s.Results)
	if err != nil {
		return wasm.FuncType{}, err
	}
	return wasm.FuncType{Params: params, Results: results}, nil
}

func typeNames(vts []wasm.ValType) []string {
	if len(vts) == 0 {
		return nil
	}
	out := make([]string, len(vts))
	for i, vt := range vts {
		out[i] = vt.String()
	}
	return out
}
