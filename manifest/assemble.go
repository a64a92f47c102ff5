package manifest

import (
	"strconv"

	"github.com/wippyai/wasm-builder/builder"
	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

var kindsByName = map[string]byte{
	"":       wasm.KindFunc,
	"func":   wasm.KindFunc,
	"table":  wasm.KindTable,
	"memory": wasm.KindMemory,
	"global": wasm.KindGlobal,
}

// assembler carries the state of one Assemble call.
type assembler struct {
	b     *builder.ModuleBuilder[*wasm.Module]
	funcs map[string]uint32
}

// Assemble builds the module described by man on top of seed, which may be nil.
// Entries are added in manifest order: types, imports, memories, functions,
// exports, then the start function. seed is left unchanged.
//
// Function imports cannot be added to a seed that already defines functions:
// they would shift the seed's function indices under its calls, exports and
// start function. Memories extend the seed's memory section and a start
// function replaces the seed's.
func Assemble(man *Manifest, seed *wasm.Module) (*wasm.Module, error) {
	a := &assembler{
		b:     builder.FromModule(seed),
		funcs: make(map[string]uint32),
	}
	if man.DedupTypes {
		a.b.WithTypeDedup()
	}

	steps := []func(*Manifest) error{
		a.types,
		a.imports,
		a.memories,
		a.functions,
		a.exports,
		a.start,
	}
	for _, step := range steps {
		if err := step(man); err != nil {
			return nil, err
		}
	}
	return a.b.Build()
}

func entryError(section string, i int, cause error, detail string) error {
	return errors.New(errors.PhaseManifest, errors.KindInvalidInput).
		Section(section).
		Index(i).
		Cause(cause).
		Detail("%s", detail).
		Build()
}

func (a *assembler) name(section string, i int, name string, idx uint32) error {
	if name == "" {
		return nil
	}
	if _, dup := a.funcs[name]; dup {
		return entryError(section, i, nil, "duplicate function name "+strconv.Quote(name))
	}
	a.funcs[name] = idx
	return nil
}

func (a *assembler) types(man *Manifest) error {
	for i, sig := range man.Types {
		ft, err := sig.FuncType()
		if err != nil {
			return entryError("type", i, err, "invalid signature")
		}
		if _, err := a.b.PushType(ft); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) imports(man *Manifest) error {
	for i, imp := range man.Imports {
		kind, ok := kindsByName[imp.Kind]
		if !ok {
			return entryError("import", i, nil, "unknown kind "+strconv.Quote(imp.Kind))
		}

		ib := builder.NewImport().Path(imp.Module, imp.Name)
		switch kind {
		case wasm.KindFunc:
			typeIdx, err := a.typeIndex(imp.Type, Signature{Params: imp.Params, Results: imp.Results})
			if err != nil {
				return entryError("import", i, err, "invalid signature")
			}
			ib.Func(typeIdx)
		case wasm.KindMemory:
			ib.Memory(wasm.Limits{Min: imp.Min, Max: imp.Max})
		case wasm.KindTable:
			elem := wasm.ValFuncRef
			if imp.Elem != "" {
				vt, ok := coreType(imp.Elem)
				if !ok {
					return entryError("import", i, nil, "unknown element type "+strconv.Quote(imp.Elem))
				}
				elem = vt
			}
			ib.Table(elem, wasm.Limits{Min: imp.Min, Max: imp.Max})
		case wasm.KindGlobal:
			vt, ok := coreType(imp.ValueType)
			if !ok {
				return entryError("import", i, nil, "unknown global type "+strconv.Quote(imp.ValueType))
			}
			ib.Global(vt, imp.Mutable)
		}

		if kind == wasm.KindFunc {
			sc := a.b.Scaffold()
			if sc.Functions.Len() > 0 || sc.Code.Len() > 0 {
				return errors.New(errors.PhaseManifest, errors.KindUnsupported).
					Section("import").
					Index(i).
					Detail("function import %s.%s would renumber the %d functions already defined", imp.Module, imp.Name, sc.Functions.Len()).
					Build()
			}
			// the new import takes the next slot in the function index space
			idx := uint32(sc.Imports.Functions())
			if err := a.name("import", i, imp.As, idx); err != nil {
				return err
			}
		}
		if err := a.b.PushImport(ib.Build()); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) typeIndex(ref *uint32, sig Signature) (uint32, error) {
	if ref != nil {
		return *ref, nil
	}
	ft, err := sig.FuncType()
	if err != nil {
		return 0, err
	}
	return a.b.PushType(ft)
}

func (a *assembler) memories(man *Manifest) error {
	if len(man.Memories) == 0 {
		return nil
	}
	sc := a.b.Scaffold()

	// defined memories follow imported ones in the memory index space
	base := 0
	for _, imp := range sc.Imports.Entries {
		if imp.Desc.Kind == wasm.KindMemory {
			base++
		}
	}

	sec := otherSection[*wasm.MemorySection](sc)
	if sec == nil {
		sec = &wasm.MemorySection{}
		a.b.WithSection(sec)
	}
	base += len(sec.Entries)

	for i, mem := range man.Memories {
		sec.Entries = append(sec.Entries, wasm.MemoryType{Limits: wasm.Limits{Min: mem.Min, Max: mem.Max}})
		if mem.Export != "" {
			a.b.WithExport(wasm.Export{Name: mem.Export, Kind: wasm.KindMemory, Idx: uint32(base + i)})
		}
	}
	return nil
}

// otherSection returns the first untracked section of type T, or nil.
func otherSection[T wasm.Section](sc *builder.Scaffold) T {
	var zero T
	for _, sec := range sc.Other {
		if s, ok := sec.(T); ok {
			return s
		}
	}
	return zero
}

func (a *assembler) functions(man *Manifest) error {
	sc := a.b.Scaffold()
	base := uint32(sc.Imports.Functions() + sc.Functions.Len())
	for i, fn := range man.Functions {
		if err := a.name("function", i, fn.Name, base+uint32(i)); err != nil {
			return err
		}
	}

	for i, fn := range man.Functions {
		def, err := a.function(fn)
		if err != nil {
			return entryError("function", i, err, "invalid function "+strconv.Quote(fn.Name))
		}
		loc, err := a.b.PushFunction(def)
		if err != nil {
			return err
		}
		if fn.Export != "" {
			idx := uint32(sc.Imports.Functions()) + loc.Signature
			a.b.WithExport(wasm.Export{Name: fn.Export, Kind: wasm.KindFunc, Idx: idx})
		}
	}
	return nil
}

func (a *assembler) function(fn Function) (builder.FunctionDefinition, error) {
	fb := builder.NewFunction()
	if fn.Type != nil {
		fb.WithTypeRef(*fn.Type)
	} else {
		ft, err := Signature{Params: fn.Params, Results: fn.Results}.FuncType()
		if err != nil {
			return builder.FunctionDefinition{}, err
		}
		fb.WithSignature(builder.InlineSignature{Type: ft})
	}

	body := fb.Body()
	for _, name := range fn.Locals {
		vts, err := ValueTypes(name)
		if err != nil {
			return builder.FunctionDefinition{}, err
		}
		for _, vt := range vts {
			body.WithLocal(vt)
		}
	}
	for _, text := range fn.Body {
		instr, err := ParseInstruction(text, a.funcs)
		if err != nil {
			return builder.FunctionDefinition{}, err
		}
		body.WithInstructions(instr)
	}
	return body.Build().Build(), nil
}

func (a *assembler) exports(man *Manifest) error {
	for i, exp := range man.Exports {
		kind, ok := kindsByName[exp.Kind]
		if !ok {
			return entryError("export", i, nil, "unknown kind "+strconv.Quote(exp.Kind))
		}

		var idx uint32
		switch {
		case exp.Index != nil:
			idx = *exp.Index
		case exp.Function != "" && kind == wasm.KindFunc:
			fi, ok := a.funcs[exp.Function]
			if !ok {
				return entryError("export", i, errors.NotFound(errors.PhaseManifest, "function", exp.Function), "unresolved export")
			}
			idx = fi
		default:
			return entryError("export", i, nil, "export needs an index or a function name")
		}
		a.b.WithExport(wasm.Export{Name: exp.Name, Kind: kind, Idx: idx})
	}
	return nil
}

func (a *assembler) start(man *Manifest) error {
	if man.Start == "" {
		return nil
	}
	idx, ok := a.funcs[man.Start]
	if !ok {
		n, err := strconv.ParseUint(man.Start, 0, 32)
		if err != nil {
			return errors.NotFound(errors.PhaseManifest, "start function", man.Start)
		}
		idx = uint32(n)
	}
	if st := otherSection[*wasm.StartSection](a.b.Scaffold()); st != nil {
		st.FuncIdx = idx
		return nil
	}
	a.b.WithSection(&wasm.StartSection{FuncIdx: idx})
	return nil
}
