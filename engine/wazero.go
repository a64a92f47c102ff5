package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

// WazeroEngine compiles and instantiates modules on one wazero runtime.
type WazeroEngine struct {
	runtime      wazero.Runtime
	hostMu       sync.Mutex
	wasiInitMu   sync.Mutex
	wasiInitDone atomic.Bool
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// EnableThreads enables the WebAssembly threads proposal (experimental).
	// This allows atomic operations and shared memory within WASM modules.
	EnableThreads bool

	// EnableWASI instantiates wasi_snapshot_preview1 when the engine is created.
	EnableWASI bool
}

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.EnableThreads {
			runtimeCfg = runtimeCfg.WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
		}
	}

	e := &WazeroEngine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}
	if cfg != nil && cfg.EnableWASI {
		if err := e.InitWASI(ctx); err != nil {
			_ = e.runtime.Close(ctx)
			return nil, err
		}
	}
	return e, nil
}

// Compile encodes m and compiles it.
func (e *WazeroEngine) Compile(ctx context.Context, m *wasm.Module) (*WazeroModule, error) {
	return e.LoadModule(ctx, m.Encode())
}

// LoadModule compiles a module binary.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte) (*WazeroModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Compile(err)
	}

	Logger().Debug("module compiled",
		zap.Int("bytes", len(wasmBytes)),
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(compiled.ExportedFunctions())))

	return &WazeroModule{engine: e, compiled: compiled}, nil
}

// Validate compiles m and discards the result. It reports the errors the
// builder does not check for, such as out-of-range type references.
func (e *WazeroEngine) Validate(ctx context.Context, m *wasm.Module) error {
	mod, err := e.Compile(ctx, m)
	if err != nil {
		return err
	}
	return mod.Close(ctx)
}

// DefineHostModule instantiates a host module exporting the given Go
// functions. Each value must be a function accepted by wazero's WithFunc.
func (e *WazeroEngine) DefineHostModule(ctx context.Context, name string, funcs map[string]any) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()

	names := make([]string, 0, len(funcs))
	for n := range funcs {
		names = append(names, n)
	}
	sort.Strings(names)

	builder := e.runtime.NewHostModuleBuilder(name)
	for _, n := range names {
		builder = builder.NewFunctionBuilder().WithFunc(funcs[n]).Export(n)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindInstantiation, err,
			fmt.Sprintf("host module %q", name))
	}
	return nil
}

func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// InitWASI instantiates the WASI singleton for this engine's runtime.
// Safe for concurrent calls from multiple modules sharing the same engine.
func (e *WazeroEngine) InitWASI(ctx context.Context) error {
	if e.wasiInitDone.Load() {
		return nil
	}

	e.wasiInitMu.Lock()
	defer e.wasiInitMu.Unlock()

	if e.wasiInitDone.Load() {
		return nil
	}

	if e.runtime.Module(wasiModuleName) == nil {
		if _, err := instantiateWASI(ctx, e.runtime); err != nil {
			return errors.Wrap(errors.PhaseRuntime, errors.KindInstantiation, err, "instantiate WASI")
		}
	}

	e.wasiInitDone.Store(true)
	return nil
}

// WazeroModule is a compiled WASM module
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
}

// InstanceConfig holds configuration for module instantiation
type InstanceConfig struct {
	// Name of the instance in the runtime. Empty leaves it anonymous.
	Name string

	// StubImports replaces missing function imports with logging stubs.
	StubImports bool
}

// ExportNames returns the names of exported functions, sorted.
func (m *WazeroModule) ExportNames() []string {
	exports := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExportedFunction returns the definition of an exported function, or nil.
func (m *WazeroModule) ExportedFunction(name string) api.FunctionDefinition {
	return m.compiled.ExportedFunctions()[name]
}

func (m *WazeroModule) Instantiate(ctx context.Context) (*WazeroInstance, error) {
	return m.InstantiateWithConfig(ctx, nil)
}

func (m *WazeroModule) InstantiateWithConfig(ctx context.Context, cfg *InstanceConfig) (*WazeroInstance, error) {
	modCfg := wazero.NewModuleConfig()
	if cfg != nil {
		if cfg.Name != "" {
			modCfg = modCfg.WithName(cfg.Name)
		}
		if cfg.StubImports {
			if err := m.engine.stubImports(ctx, m.compiled.ImportedFunctions()); err != nil {
				return nil, err
			}
		}
	}

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modCfg)
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	Logger().Debug("module instantiated", zap.String("name", mod.Name()))
	return &WazeroInstance{module: mod}, nil
}

func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// WazeroInstance is an instantiated module.
type WazeroInstance struct {
	module api.Module
}

// GetExportedFunction returns the exported function, or nil.
func (i *WazeroInstance) GetExportedFunction(name string) api.Function {
	return i.module.ExportedFunction(name)
}

// Call invokes an exported function with raw core values.
func (i *WazeroInstance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}
	if want := len(fn.Definition().ParamTypes()); want != len(args) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Detail("%s expects %d arguments, got %d", name, want, len(args)).
			Build()
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "call "+name)
	}
	return results, nil
}

// CallText parses textual arguments by the export's parameter types, calls
// it, and formats the results.
func (i *WazeroInstance) CallText(ctx context.Context, name string, args []string) ([]string, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}
	def := fn.Definition()
	raw, err := EncodeArgs(def.ParamTypes(), args)
	if err != nil {
		return nil, err
	}
	results, err := i.Call(ctx, name, raw...)
	if err != nil {
		return nil, err
	}
	return FormatResults(def.ResultTypes(), results), nil
}

// MemorySize returns the size of the default memory in bytes, or 0.
func (i *WazeroInstance) MemorySize() uint32 {
	if mem := i.module.Memory(); mem != nil {
		return mem.Size()
	}
	return 0
}

func (i *WazeroInstance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}
