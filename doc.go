// Package wasmbuilder assembles WebAssembly core modules programmatically.
//
// Modules are built as ordered section lists. The builder keeps the index
// relationships between the type, function, import and code sections as
// entries are appended, and leaves every other section untouched.
//
// # Architecture Overview
//
//	wasmbuilder/
//	├── builder/         Module scaffold, index resolution, chained builders
//	├── wasm/            Section containers, binary encode/decode, instructions
//	├── manifest/        Declarative module descriptions (TOML, YAML, JSON)
//	├── engine/          wazero integration for validation and execution
//	├── errors/          Structured error types
//	└── cmd/wasmbuild/   Command line assembler, inspector and runner
//
// # Quick Start
//
// Build a module exporting a function that adds two i32 values:
//
//	m, err := builder.Module().
//	    Function().
//	        Signature().WithParams(wasm.ValI32, wasm.ValI32).WithResult(wasm.ValI32).Build().
//	        Body().LocalGet(0).LocalGet(1).Op(wasm.OpI32Add).Build().
//	        Build().
//	    Export().Field("add").Func(0).Build().
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := m.Encode()
//
// Extend an existing module:
//
//	seed, err := wasm.ParseModule(data)
//	...
//	b := builder.FromModule(seed)
//	idx, err := b.PushSignature(builder.Inline([]wasm.ValType{wasm.ValI64}, nil))
//
// # Validation
//
// The builder does not check that the result is well formed. Compile it with
// engine.WazeroEngine.Validate to catch out-of-range references:
//
//	e, _ := engine.NewWazeroEngine(ctx)
//	defer e.Close(ctx)
//	if err := e.Validate(ctx, m); err != nil {
//	    ...
//	}
package wasmbuilder
