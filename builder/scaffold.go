package builder

import (
	"slices"

	"github.com/wippyai/wasm-builder/wasm"
)

// Scaffold is the mutable form of a module under construction.
// The four tracked slots are never nil; Other keeps every untracked section
// in its original relative order.
type Scaffold struct {
	Types     *wasm.TypeSection
	Functions *wasm.FunctionSection
	Imports   *wasm.ImportSection
	Code      *wasm.CodeSection
	Other     []wasm.Section
}

// NewScaffold decomposes m into tracked slots and other sections.
// When a tracked kind appears more than once, the last one wins and the
// earlier ones are dropped. A nil module yields an empty scaffold.
//
// m is not modified by later builder operations: tracked sections and the
// export, memory and start sections are copied. Entry values and opaque
// sections are shared.
func NewScaffold(m *wasm.Module) *Scaffold {
	s := &Scaffold{}
	if m != nil {
		for _, sec := range m.Sections {
			switch sec := sec.(type) {
			case *wasm.TypeSection:
				s.Types = &wasm.TypeSection{Types: slices.Clone(sec.Types)}
			case *wasm.FunctionSection:
				s.Functions = &wasm.FunctionSection{Entries: slices.Clone(sec.Entries)}
			case *wasm.ImportSection:
				s.Imports = &wasm.ImportSection{Entries: slices.Clone(sec.Entries)}
			case *wasm.CodeSection:
				s.Code = &wasm.CodeSection{Bodies: slices.Clone(sec.Bodies)}
			case *wasm.ExportSection:
				s.Other = append(s.Other, &wasm.ExportSection{Entries: slices.Clone(sec.Entries)})
			case *wasm.MemorySection:
				s.Other = append(s.Other, &wasm.MemorySection{Entries: slices.Clone(sec.Entries)})
			case *wasm.StartSection:
				start := *sec
				s.Other = append(s.Other, &start)
			default:
				s.Other = append(s.Other, sec)
			}
		}
	}

	if s.Types == nil {
		s.Types = &wasm.TypeSection{}
	}
	if s.Functions == nil {
		s.Functions = &wasm.FunctionSection{}
	}
	if s.Imports == nil {
		s.Imports = &wasm.ImportSection{}
	}
	if s.Code == nil {
		s.Code = &wasm.CodeSection{}
	}
	return s
}

// Module reassembles the scaffold into a section list: type, function,
// import and code sections (each omitted when empty), then Other in stored
// order. The result shares section values with the scaffold.
func (s *Scaffold) Module() *wasm.Module {
	sections := make([]wasm.Section, 0, 4+len(s.Other))
	if s.Types.Len() > 0 {
		sections = append(sections, s.Types)
	}
	if s.Functions.Len() > 0 {
		sections = append(sections, s.Functions)
	}
	if s.Imports.Len() > 0 {
		sections = append(sections, s.Imports)
	}
	if s.Code.Len() > 0 {
		sections = append(sections, s.Code)
	}
	sections = append(sections, s.Other...)
	return wasm.NewModule(sections...)
}

// resolve returns the type index for sig. Inline signatures are appended to
// the type slot, or matched against existing entries when dedup is set.
// Type references are returned as given without a range check.
func (s *Scaffold) resolve(sig Signature, dedup bool) uint32 {
	switch sig := sig.(type) {
	case InlineSignature:
		if dedup {
			if idx, ok := s.Types.Find(sig.Type); ok {
				return idx
			}
		}
		return s.Types.Append(sig.Type)
	case TypeReference:
		return uint32(sig)
	default:
		// nil signature: nullary function type
		return s.resolve(InlineSignature{}, dedup)
	}
}

// exports returns the export section held in Other, appending a new one at
// the end when none exists.
func (s *Scaffold) exports() *wasm.ExportSection {
	for _, sec := range s.Other {
		if es, ok := sec.(*wasm.ExportSection); ok {
			return es
		}
	}
	es := &wasm.ExportSection{}
	s.Other = append(s.Other, es)
	return es
}
