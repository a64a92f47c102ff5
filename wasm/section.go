package wasm

// Section is one entry of a module's ordered section list.
type Section interface {
	// ID returns the binary section ID.
	ID() byte
}

// TypeSection declares function types. Entries are addressed by type index.
type TypeSection struct {
	Types []FuncType
}

// ID implements Section.
func (*TypeSection) ID() byte { return SectionType }

// Len returns the number of declared types.
func (s *TypeSection) Len() int { return len(s.Types) }

// Append adds a type and returns its index.
func (s *TypeSection) Append(ft FuncType) uint32 {
	s.Types = append(s.Types, ft)
	return uint32(len(s.Types) - 1)
}

// Find returns the index of the first type equal to ft.
func (s *TypeSection) Find(ft FuncType) (uint32, bool) {
	for i, t := range s.Types {
		if t.Equal(ft) {
			return uint32(i), true
		}
	}
	return 0, false
}

// FunctionSection declares the type index of each function defined in the module.
type FunctionSection struct {
	Entries []Func
}

// ID implements Section.
func (*FunctionSection) ID() byte { return SectionFunction }

// Len returns the number of declared functions.
func (s *FunctionSection) Len() int { return len(s.Entries) }

// Append adds a declaration and returns its index within the section.
func (s *FunctionSection) Append(f Func) uint32 {
	s.Entries = append(s.Entries, f)
	return uint32(len(s.Entries) - 1)
}

// ImportSection declares imported definitions.
type ImportSection struct {
	Entries []Import
}

// ID implements Section.
func (*ImportSection) ID() byte { return SectionImport }

// Len returns the number of imports.
func (s *ImportSection) Len() int { return len(s.Entries) }

// Append adds an import entry.
func (s *ImportSection) Append(imp Import) {
	s.Entries = append(s.Entries, imp)
}

// Functions returns the number of function imports.
func (s *ImportSection) Functions() int {
	count := 0
	for _, imp := range s.Entries {
		if imp.Desc.Kind == KindFunc {
			count++
		}
	}
	return count
}

// CodeSection holds function bodies, positionally paired with FunctionSection entries.
type CodeSection struct {
	Bodies []FuncBody
}

// ID implements Section.
func (*CodeSection) ID() byte { return SectionCode }

// Len returns the number of bodies.
func (s *CodeSection) Len() int { return len(s.Bodies) }

// Append adds a body and returns its index within the section.
func (s *CodeSection) Append(body FuncBody) uint32 {
	s.Bodies = append(s.Bodies, body)
	return uint32(len(s.Bodies) - 1)
}

// ExportSection declares exported definitions.
type ExportSection struct {
	Entries []Export
}

// ID implements Section.
func (*ExportSection) ID() byte { return SectionExport }

// Len returns the number of exports.
func (s *ExportSection) Len() int { return len(s.Entries) }

// Lookup returns the export with the given name.
func (s *ExportSection) Lookup(name string) (Export, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

// MemorySection declares linear memories.
type MemorySection struct {
	Entries []MemoryType
}

// ID implements Section.
func (*MemorySection) ID() byte { return SectionMemory }

// StartSection names the start function.
type StartSection struct {
	FuncIdx uint32
}

// ID implements Section.
func (*StartSection) ID() byte { return SectionStart }

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// ID implements Section.
func (*CustomSection) ID() byte { return SectionCustom }

// RawSection keeps the undecoded payload of sections the module model
// does not interpret (table, global, element, data, datacount, tag).
type RawSection struct {
	Payload   []byte
	SectionID byte
}

// ID implements Section.
func (s *RawSection) ID() byte { return s.SectionID }
