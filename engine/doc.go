// Package engine compiles and runs assembled modules on wazero.
//
// The builder package does not check that a module is well formed; it only
// keeps index bookkeeping consistent. The engine is the downstream validator:
// Validate compiles a module and reports anything wazero rejects, such as a
// type reference past the end of the type section.
//
// # Usage
//
//	e, err := engine.NewWazeroEngine(ctx)
//	if err != nil {
//	    return err
//	}
//	defer e.Close(ctx)
//
//	mod, err := e.Compile(ctx, m)
//	if err != nil {
//	    return err
//	}
//	inst, err := mod.InstantiateWithConfig(ctx, &engine.InstanceConfig{StubImports: true})
//	if err != nil {
//	    return err
//	}
//	results, err := inst.Call(ctx, "add", 1, 2)
//
// # Imports
//
// Function imports are satisfied by host modules already instantiated in the
// engine's runtime (see DefineHostModule and InitWASI). With StubImports set,
// any function import still missing is replaced by a stub that logs its
// arguments and returns zero values. Memory, table and global imports cannot
// be stubbed.
//
// # Thread Safety
//
// WazeroEngine and WazeroModule are safe for concurrent use.
// WazeroInstance is NOT thread-safe and should be used by a single goroutine.
package engine
