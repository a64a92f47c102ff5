// Package manifest describes modules declaratively and assembles them with
// the builder package.
//
// A manifest lists types, imports, memories, functions and exports. Files are
// read through viper, so TOML, YAML and JSON all work:
//
//	name = "adder"
//
//	[[functions]]
//	name = "add"
//	params = ["i32", "i32"]
//	results = ["i32"]
//	body = ["local.get 0", "local.get 1", "i32.add"]
//	export = "add"
//
// Value types are core names (i32, i64, f32, f64, v128, funcref, externref)
// or WIT primitives, which are lowered to their core representation: bool,
// u8-u32, s8-s32 and char become i32, u64 and s64 become i64, string and
// list<T> become a pointer and length pair of i32.
//
// Function bodies are instruction text, one instruction per entry, in the
// form Instruction.String produces. Calls may name a function or an import
// alias with a leading $.
//
// Describe goes the other way: it turns a parsed module into a manifest that
// assembles back to an equivalent module.
package manifest
