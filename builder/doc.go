// Package builder assembles WebAssembly modules programmatically.
//
// A ModuleBuilder holds a Scaffold: four tracked slots (types, functions,
// imports, code) and the ordered list of every other section. Callers append
// signatures, function definitions and imports; the builder keeps the index
// relationships between the slots and Build reassembles one section list.
//
// Basic usage:
//
//	m, err := builder.Module().
//		Functions().
//			Signature().WithParam(wasm.ValI32).WithResult(wasm.ValI32).Build().
//			Bind().
//		Build()
//
// Sub-builders (SignaturesBuilder, SignatureBuilder, ImportBuilder,
// FunctionBuilder, BodyBuilder, ExportBuilder) finish by handing their result
// to the parent through an Invoke continuation and returning the parent, so a
// whole module can be described as one chain.
//
// Indices handed out by the builder are positions within the builder's own
// slots. Function indices do not account for imported functions; callers
// that reference functions from code add the import count themselves.
//
// The builder does not validate the module. Use the engine package to compile
// the result and report invalid references.
//
// A builder is single-use: Build takes the scaffold, and any operation after
// that reports ErrFinalized.
package builder
