package engine

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-builder/errors"
)

// stubImports instantiates host modules for imported functions whose module
// is not yet present in the runtime. Each stub logs its arguments and returns
// zero values.
func (e *WazeroEngine) stubImports(ctx context.Context, imports []api.FunctionDefinition) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()

	byModule := make(map[string]map[string]api.FunctionDefinition)
	for _, def := range imports {
		moduleName, name, ok := def.Import()
		if !ok || e.runtime.Module(moduleName) != nil {
			continue
		}
		funcs := byModule[moduleName]
		if funcs == nil {
			funcs = make(map[string]api.FunctionDefinition)
			byModule[moduleName] = funcs
		}
		funcs[name] = def
	}

	moduleNames := make([]string, 0, len(byModule))
	for name := range byModule {
		moduleNames = append(moduleNames, name)
	}
	sort.Strings(moduleNames)

	for _, moduleName := range moduleNames {
		funcs := byModule[moduleName]
		names := make([]string, 0, len(funcs))
		for name := range funcs {
			names = append(names, name)
		}
		sort.Strings(names)

		builder := e.runtime.NewHostModuleBuilder(moduleName)
		for _, name := range names {
			def := funcs[name]
			builder = builder.NewFunctionBuilder().
				WithGoModuleFunction(stubFunc(moduleName, name, def), def.ParamTypes(), def.ResultTypes()).
				Export(name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Wrap(errors.PhaseRuntime, errors.KindInstantiation, err,
				"stub imports of "+moduleName)
		}
		Logger().Debug("stubbed imports", zap.String("module", moduleName), zap.Strings("functions", names))
	}
	return nil
}

func stubFunc(moduleName, name string, def api.FunctionDefinition) api.GoModuleFunc {
	params := def.ParamTypes()
	nResults := len(def.ResultTypes())
	return func(_ context.Context, _ api.Module, stack []uint64) {
		Logger().Info("stub called",
			zap.String("module", moduleName),
			zap.String("name", name),
			zap.Strings("args", FormatResults(params, stack[:len(params)])))
		for i := 0; i < nResults; i++ {
			stack[i] = 0
		}
	}
}
