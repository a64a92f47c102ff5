// Package wasm provides the section-level model of a WebAssembly module
// and its binary encoding.
//
// A Module is an ordered list of sections. The sections the assembler
// reasons about (type, import, function, code, export, memory, start,
// custom) are decoded into typed containers; the remaining kinds are kept
// as RawSection payloads so they round-trip byte for byte.
//
// # Parsing
//
//	data, _ := os.ReadFile("module.wasm")
//	module, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ParseModule enforces canonical section order and rejects duplicate
// non-custom sections.
//
// # Encoding
//
//	encoded := module.Encode()
//
// Encode writes known sections in canonical binary order even when the
// section list holds them in another order, so a list produced by the
// builder package always encodes to a well-ordered binary.
//
// # Section containers
//
// Containers expose ordered, append-only entries:
//
//	ts := &wasm.TypeSection{}
//	idx := ts.Append(wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}})
//
// # Instructions
//
//	instrs, err := wasm.DecodeInstructions(body.Code)
//	code := wasm.EncodeInstructions(instrs)
//
// LookupOpcode and OpcodeName map between opcodes and their text-format names.
package wasm
