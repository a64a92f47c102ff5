package manifest

import (
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

// Describe converts a module into a manifest that assembles back to an
// equivalent module. Types are listed explicitly and referenced by index so
// type indices survive the round trip. Sections a manifest cannot express
// (tables, globals, data, element, custom) are left out and their names
// returned as skipped.
func Describe(m *wasm.Module) (*Manifest, []string, error) {
	man := &Manifest{}
	var skipped []string

	if ts := m.TypeSection(); ts != nil {
		for _, ft := range ts.Types {
			man.Types = append(man.Types, Signature{Params: typeNames(ft.Params), Results: typeNames(ft.Results)})
		}
	}

	if is := m.ImportSection(); is != nil {
		for i, imp := range is.Entries {
			entry, err := describeImport(imp)
			if err != nil {
				return nil, nil, errors.New(errors.PhaseManifest, errors.KindUnsupported).
					Section("import").
					Index(i).
					Cause(err).
					Build()
			}
			man.Imports = append(man.Imports, entry)
		}
	}

	if ms := m.MemorySection(); ms != nil {
		for _, mem := range ms.Entries {
			man.Memories = append(man.Memories, Memory{Min: mem.Limits.Min, Max: mem.Limits.Max})
		}
	}

	if err := describeFunctions(m, man); err != nil {
		return nil, nil, err
	}

	if es := m.ExportSection(); es != nil {
		for _, e := range es.Entries {
			idx := e.Idx
			man.Exports = append(man.Exports, Export{Name: e.Name, Kind: wasm.KindName(e.Kind), Index: &idx})
		}
	}

	for _, sec := range m.Sections {
		switch sec := sec.(type) {
		case *wasm.TypeSection, *wasm.ImportSection, *wasm.FunctionSection,
			*wasm.CodeSection, *wasm.MemorySection, *wasm.ExportSection:
		case *wasm.StartSection:
			man.Start = strconv.FormatUint(uint64(sec.FuncIdx), 10)
		case *wasm.CustomSection:
			skipped = append(skipped, "custom:"+sec.Name)
		default:
			skipped = append(skipped, wasm.SectionName(sec.ID()))
		}
	}

	return man, skipped, nil
}

func describeImport(imp wasm.Import) (Import, error) {
	out := Import{Module: imp.Module, Name: imp.Name}
	switch imp.Desc.Kind {
	case wasm.KindFunc:
		idx := imp.Desc.TypeIdx
		out.Type = &idx
	case wasm.KindMemory:
		out.Kind = "memory"
		out.Min = imp.Desc.Memory.Limits.Min
		out.Max = imp.Desc.Memory.Limits.Max
	case wasm.KindTable:
		out.Kind = "table"
		out.Elem = imp.Desc.Table.ElemType.String()
		out.Min = imp.Desc.Table.Limits.Min
		out.Max = imp.Desc.Table.Limits.Max
	case wasm.KindGlobal:
		out.Kind = "global"
		out.ValueType = imp.Desc.Global.ValType.String()
		out.Mutable = imp.Desc.Global.Mutable
	default:
		return out, errors.Unsupported(errors.PhaseManifest, wasm.KindName(imp.Desc.Kind)+" import")
	}
	return out, nil
}

func describeFunctions(m *wasm.Module, man *Manifest) error {
	fs := m.FunctionSection()
	if fs == nil {
		return nil
	}
	cs := m.CodeSection()
	if cs == nil || cs.Len() != fs.Len() {
		return errors.InvalidData(errors.PhaseManifest, "code", "function and code section lengths differ")
	}

	for i, f := range fs.Entries {
		body := cs.Bodies[i]
		instrs, err := wasm.DecodeInstructions(body.Code)
		if err != nil {
			return errors.New(errors.PhaseManifest, errors.KindInvalidData).
				Section("code").
				Index(i).
				Cause(err).
				Build()
		}
		// the builder appends the function's own end
		if n := len(instrs); n > 0 && instrs[n-1].Opcode == wasm.OpEnd {
			instrs = instrs[:n-1]
		}

		typeIdx := f.TypeIdx
		fn := Function{Type: &typeIdx}
		for _, l := range body.Locals {
			for j := uint32(0); j < l.Count; j++ {
				fn.Locals = append(fn.Locals, l.ValType.String())
			}
		}
		for _, instr := range instrs {
			fn.Body = append(fn.Body, instr.String())
		}
		man.Functions = append(man.Functions, fn)
	}
	return nil
}

// Marshal renders a manifest as toml or yaml.
func Marshal(man *Manifest, format string) ([]byte, error) {
	switch format {
	case "toml":
		return toml.Marshal(man)
	case "yaml", "yml":
		return yaml.Marshal(man)
	default:
		return nil, errors.Unsupported(errors.PhaseManifest, "manifest format "+strconv.Quote(format))
	}
}
