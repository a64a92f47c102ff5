package wasm_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/wasm-builder/wasm"
)

func TestEncodeEmptyModule(t *testing.T) {
	m := wasm.NewModule()
	data := m.Encode()

	if len(data) != 8 {
		t.Errorf("expected 8 bytes for empty module, got %d", len(data))
	}
	if !bytes.Equal(data[:4], []byte{0x00, 0x61, 0x73, 0x6D}) {
		t.Error("invalid magic number")
	}
	if !bytes.Equal(data[4:8], []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Error("invalid version")
	}
}

func TestEncodeTypes(t *testing.T) {
	m := wasm.NewModule(&wasm.TypeSection{Types: []wasm.FuncType{
		{Params: nil, Results: nil},
		{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
		{Params: []wasm.ValType{wasm.ValI32, wasm.ValI64}, Results: []wasm.ValType{wasm.ValF32, wasm.ValF64}},
	}})

	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	ts := parsed.TypeSection()
	if ts == nil || ts.Len() != 3 {
		t.Fatalf("expected 3 types, got %v", ts)
	}
	if len(ts.Types[0].Params) != 0 || len(ts.Types[0].Results) != 0 {
		t.Error("type 0 should be () -> ()")
	}
	want := wasm.FuncType{Params: []wasm.ValType{wasm.ValI32, wasm.ValI64}, Results: []wasm.ValType{wasm.ValF32, wasm.ValF64}}
	if !ts.Types[2].Equal(want) {
		t.Errorf("type 2 = %s, want %s", ts.Types[2], want)
	}
}

func TestEncodeFunctionsAndCode(t *testing.T) {
	m := wasm.NewModule(
		&wasm.TypeSection{Types: []wasm.FuncType{{}, {Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}}}},
		&wasm.FunctionSection{Entries: []wasm.Func{{TypeIdx: 0}, {TypeIdx: 1}, {TypeIdx: 0}}},
		&wasm.CodeSection{Bodies: []wasm.FuncBody{
			{Code: []byte{wasm.OpEnd}},
			{Locals: []wasm.LocalEntry{{Count: 2, ValType: wasm.ValI64}}, Code: []byte{wasm.OpLocalGet, 0, wasm.OpEnd}},
			{Code: []byte{wasm.OpEnd}},
		}},
	)

	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	if fs := parsed.FunctionSection(); fs == nil || fs.Len() != 3 {
		t.Fatalf("expected 3 funcs, got %v", fs)
	}
	cs := parsed.CodeSection()
	if cs == nil || cs.Len() != 3 {
		t.Fatalf("expected 3 code entries, got %v", cs)
	}
	body := cs.Bodies[1]
	if body.NumLocals() != 2 || body.Locals[0].ValType != wasm.ValI64 {
		t.Errorf("locals mismatch: %+v", body.Locals)
	}
	if !bytes.Equal(body.Code, []byte{wasm.OpLocalGet, 0, wasm.OpEnd}) {
		t.Errorf("code mismatch: %v", body.Code)
	}
}

func TestEncodeImportsExports(t *testing.T) {
	max := uint64(4)
	m := wasm.NewModule(
		&wasm.TypeSection{Types: []wasm.FuncType{{}}},
		&wasm.ImportSection{Entries: []wasm.Import{
			{Module: "env", Name: "log", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}},
			{Module: "env", Name: "mem", Desc: wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{Limits: wasm.Limits{Min: 1, Max: &max}}}},
			{Module: "env", Name: "g", Desc: wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &wasm.GlobalType{ValType: wasm.ValI64, Mutable: true}}},
			{Module: "env", Name: "tbl", Desc: wasm.ImportDesc{Kind: wasm.KindTable, Table: &wasm.TableType{ElemType: wasm.ValFuncRef, Limits: wasm.Limits{Min: 2}}}},
		}},
		&wasm.FunctionSection{Entries: []wasm.Func{{TypeIdx: 0}}},
		&wasm.ExportSection{Entries: []wasm.Export{{Name: "main", Kind: wasm.KindFunc, Idx: 1}}},
		&wasm.CodeSection{Bodies: []wasm.FuncBody{{Code: []byte{wasm.OpEnd}}}},
	)

	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	imp := parsed.ImportSection()
	if imp == nil || imp.Len() != 4 {
		t.Fatalf("expected 4 imports, got %v", imp)
	}
	if imp.Functions() != 1 {
		t.Errorf("expected 1 function import, got %d", imp.Functions())
	}
	mem := imp.Entries[1].Desc.Memory
	if mem == nil || mem.Limits.Min != 1 || mem.Limits.Max == nil || *mem.Limits.Max != 4 {
		t.Errorf("memory import mismatch: %+v", mem)
	}
	if g := imp.Entries[2].Desc.Global; g == nil || !g.Mutable || g.ValType != wasm.ValI64 {
		t.Errorf("global import mismatch: %+v", g)
	}
	if tbl := imp.Entries[3].Desc.Table; tbl == nil || tbl.ElemType != wasm.ValFuncRef {
		t.Errorf("table import mismatch: %+v", tbl)
	}

	exp, ok := parsed.ExportSection().Lookup("main")
	if !ok || exp.Idx != 1 || exp.Kind != wasm.KindFunc {
		t.Errorf("export mismatch: %+v, %v", exp, ok)
	}
}

func TestEncodeCanonicalOrder(t *testing.T) {
	// Builder-style order: function before import, code before memory.
	m := wasm.NewModule(
		&wasm.TypeSection{Types: []wasm.FuncType{{}}},
		&wasm.FunctionSection{Entries: []wasm.Func{{TypeIdx: 0}}},
		&wasm.ImportSection{Entries: []wasm.Import{{Module: "env", Name: "f", Desc: wasm.ImportDesc{Kind: wasm.KindFunc}}}},
		&wasm.CodeSection{Bodies: []wasm.FuncBody{{Code: []byte{wasm.OpEnd}}}},
		&wasm.MemorySection{Entries: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}}},
		&wasm.ExportSection{Entries: []wasm.Export{{Name: "f", Kind: wasm.KindFunc, Idx: 1}}},
	)

	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	want := []byte{wasm.SectionType, wasm.SectionImport, wasm.SectionFunction, wasm.SectionMemory, wasm.SectionExport, wasm.SectionCode}
	if len(parsed.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(parsed.Sections))
	}
	for i, s := range parsed.Sections {
		if s.ID() != want[i] {
			t.Errorf("section %d: got %s, want %s", i, wasm.SectionName(s.ID()), wasm.SectionName(want[i]))
		}
	}
}

func TestEncodeCustomSectionAnchoring(t *testing.T) {
	m := wasm.NewModule(
		&wasm.CustomSection{Name: "first", Data: []byte{1}},
		&wasm.FunctionSection{Entries: []wasm.Func{{TypeIdx: 0}}},
		&wasm.CustomSection{Name: "after-func", Data: []byte{2}},
		&wasm.TypeSection{Types: []wasm.FuncType{{}}},
	)

	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	var got []string
	for _, s := range parsed.Sections {
		if cs, ok := s.(*wasm.CustomSection); ok {
			got = append(got, cs.Name)
		} else {
			got = append(got, wasm.SectionName(s.ID()))
		}
	}
	want := []string{"first", "type", "function", "after-func"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEncodeRawSectionPassthrough(t *testing.T) {
	// global section: one immutable i32 initialised to 42
	payload := []byte{0x01, byte(wasm.ValI32), 0x00, wasm.OpI32Const, 42, wasm.OpEnd}
	m := wasm.NewModule(&wasm.RawSection{SectionID: wasm.SectionGlobal, Payload: payload})

	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	raw, ok := parsed.Sections[0].(*wasm.RawSection)
	if !ok {
		t.Fatalf("expected RawSection, got %T", parsed.Sections[0])
	}
	if raw.ID() != wasm.SectionGlobal || !bytes.Equal(raw.Payload, payload) {
		t.Errorf("raw section mismatch: id=%d payload=%v", raw.ID(), raw.Payload)
	}
}

func TestGetFuncType(t *testing.T) {
	m := wasm.NewModule(
		&wasm.TypeSection{Types: []wasm.FuncType{{}, {Params: []wasm.ValType{wasm.ValI32}}}},
		&wasm.ImportSection{Entries: []wasm.Import{{Module: "env", Name: "f", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 1}}}},
		&wasm.FunctionSection{Entries: []wasm.Func{{TypeIdx: 0}}},
	)

	if ft := m.GetFuncType(0); ft == nil || len(ft.Params) != 1 {
		t.Errorf("func 0 (import) type = %v", ft)
	}
	if ft := m.GetFuncType(1); ft == nil || len(ft.Params) != 0 {
		t.Errorf("func 1 (local) type = %v", ft)
	}
	if ft := m.GetFuncType(2); ft != nil {
		t.Errorf("func 2 should be out of range, got %v", ft)
	}
}
