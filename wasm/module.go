package wasm

// Module is a WebAssembly module as an ordered list of sections.
// Section order is preserved as given; Encode writes the canonical binary order.
type Module struct {
	Sections []Section
}

// NewModule creates a module from an ordered section list.
func NewModule(sections ...Section) *Module {
	return &Module{Sections: sections}
}

func findSection[T Section](m *Module) T {
	var zero T
	if m == nil {
		return zero
	}
	for _, s := range m.Sections {
		if t, ok := s.(T); ok {
			return t
		}
	}
	return zero
}

// TypeSection returns the first type section, or nil.
func (m *Module) TypeSection() *TypeSection { return findSection[*TypeSection](m) }

// FunctionSection returns the first function section, or nil.
func (m *Module) FunctionSection() *FunctionSection { return findSection[*FunctionSection](m) }

// ImportSection returns the first import section, or nil.
func (m *Module) ImportSection() *ImportSection { return findSection[*ImportSection](m) }

// CodeSection returns the first code section, or nil.
func (m *Module) CodeSection() *CodeSection { return findSection[*CodeSection](m) }

// ExportSection returns the first export section, or nil.
func (m *Module) ExportSection() *ExportSection { return findSection[*ExportSection](m) }

// MemorySection returns the first memory section, or nil.
func (m *Module) MemorySection() *MemorySection { return findSection[*MemorySection](m) }

// CustomSections returns all custom sections in list order.
func (m *Module) CustomSections() []*CustomSection {
	var out []*CustomSection
	for _, s := range m.Sections {
		if cs, ok := s.(*CustomSection); ok {
			out = append(out, cs)
		}
	}
	return out
}

// NumImportedFuncs returns the number of imported functions
func (m *Module) NumImportedFuncs() int {
	if imp := m.ImportSection(); imp != nil {
		return imp.Functions()
	}
	return 0
}

// GetFuncType returns the type of a function by its index in the function
// index space (imports first), or nil if any index is out of range.
func (m *Module) GetFuncType(funcIdx uint32) *FuncType {
	var typeIdx uint32
	numImported := uint32(m.NumImportedFuncs())
	if funcIdx < numImported {
		for _, imp := range m.ImportSection().Entries {
			if imp.Desc.Kind != KindFunc {
				continue
			}
			if funcIdx == 0 {
				typeIdx = imp.Desc.TypeIdx
				break
			}
			funcIdx--
		}
	} else {
		fs := m.FunctionSection()
		localIdx := funcIdx - numImported
		if fs == nil || int(localIdx) >= len(fs.Entries) {
			return nil
		}
		typeIdx = fs.Entries[localIdx].TypeIdx
	}

	ts := m.TypeSection()
	if ts == nil || int(typeIdx) >= len(ts.Types) {
		return nil
	}
	return &ts.Types[typeIdx]
}
