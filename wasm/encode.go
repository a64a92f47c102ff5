package wasm

import (
	"sort"

	"github.com/wippyai/wasm-builder/wasm/internal/binary"
)

// Encode encodes the module to WebAssembly binary format.
//
// Known sections are written in canonical binary order regardless of their
// position in Sections; the sort is stable, so repeated sections of one kind
// keep their relative order. A custom section stays behind the known section
// that preceded it in the list.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()

	// Magic number and version
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	type ranked struct {
		s    Section
		rank int
	}
	sections := make([]ranked, 0, len(m.Sections))
	anchor := 0
	for _, s := range m.Sections {
		if s.ID() != SectionCustom {
			anchor = sectionOrder(s.ID())
		}
		sections = append(sections, ranked{s: s, rank: anchor})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].rank < sections[j].rank
	})

	for _, r := range sections {
		w.WriteSection(r.s.ID(), EncodeSection(r.s))
	}

	return w.Bytes()
}

// EncodeSection encodes a section payload without the id/size header.
func EncodeSection(s Section) []byte {
	sec := binary.NewWriter()

	switch s := s.(type) {
	case *TypeSection:
		sec.WriteU32(uint32(len(s.Types)))
		for _, ft := range s.Types {
			sec.Byte(FuncTypeByte)
			writeValTypes(sec, ft.Params)
			writeValTypes(sec, ft.Results)
		}

	case *ImportSection:
		sec.WriteU32(uint32(len(s.Entries)))
		for _, imp := range s.Entries {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(imp.Desc.Kind)
			switch imp.Desc.Kind {
			case KindFunc:
				sec.WriteU32(imp.Desc.TypeIdx)
			case KindTable:
				if imp.Desc.Table != nil {
					writeTableType(sec, *imp.Desc.Table)
				}
			case KindMemory:
				if imp.Desc.Memory != nil {
					writeLimits(sec, imp.Desc.Memory.Limits)
				}
			case KindGlobal:
				if imp.Desc.Global != nil {
					writeGlobalType(sec, *imp.Desc.Global)
				}
			case KindTag:
				if imp.Desc.Tag != nil {
					sec.Byte(imp.Desc.Tag.Attribute)
					sec.WriteU32(imp.Desc.Tag.TypeIdx)
				}
			}
		}

	case *FunctionSection:
		sec.WriteU32(uint32(len(s.Entries)))
		for _, f := range s.Entries {
			sec.WriteU32(f.TypeIdx)
		}

	case *MemorySection:
		sec.WriteU32(uint32(len(s.Entries)))
		for _, mem := range s.Entries {
			writeLimits(sec, mem.Limits)
		}

	case *ExportSection:
		sec.WriteU32(uint32(len(s.Entries)))
		for _, exp := range s.Entries {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}

	case *StartSection:
		sec.WriteU32(s.FuncIdx)

	case *CodeSection:
		sec.WriteU32(uint32(len(s.Bodies)))
		for _, body := range s.Bodies {
			bodyBuf := binary.NewWriter()
			bodyBuf.WriteU32(uint32(len(body.Locals)))
			for _, local := range body.Locals {
				bodyBuf.WriteU32(local.Count)
				bodyBuf.Byte(byte(local.ValType))
			}
			bodyBuf.WriteBytes(body.Code)
			sec.WriteU32(uint32(bodyBuf.Len()))
			sec.WriteBytes(bodyBuf.Bytes())
		}

	case *CustomSection:
		sec.WriteName(s.Name)
		sec.WriteBytes(s.Data)

	case *RawSection:
		sec.WriteBytes(s.Payload)
	}

	return sec.Bytes()
}

// sectionOrder returns the canonical ordering for a section ID.
// WASM spec requires sections in specific order, which differs from section IDs.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6 // Tag comes after Memory, before Global
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11 // DataCount must come before Code
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 100 // Unknown sections at end
	}
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)

	w.WriteU64(l.Min)
	if l.Max != nil {
		w.WriteU64(*l.Max)
	}
}

func writeTableType(w *binary.Writer, t TableType) {
	w.Byte(byte(t.ElemType))
	writeLimits(w, t.Limits)
}

func writeGlobalType(w *binary.Writer, g GlobalType) {
	w.Byte(byte(g.ValType))
	if g.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}
