package wasm

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm/internal/binary"
)

// Parsing errors returned by ParseModule.
var (
	ErrInvalidMagic   = stderrors.New("invalid wasm magic number")
	ErrInvalidVersion = stderrors.New("invalid wasm version")
)

// ParseModule parses a WebAssembly binary module into its section list.
// Sections are returned in file order. Table, global, element, data,
// datacount and tag payloads are kept as RawSection.
func ParseModule(data []byte) (*Module, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{}

	// Track section ordering using canonical order, not section IDs
	var lastSectionOrder int
	var lastSectionID byte

	for r.Len() > 0 {
		sectionID, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("section header", err)
		}

		// Custom sections can appear anywhere
		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 100 {
				return nil, errors.UnknownSection(sectionID)
			}
			if order == lastSectionOrder {
				return nil, errors.DuplicateSection(errors.PhaseDecode, SectionName(sectionID))
			}
			if order < lastSectionOrder {
				return nil, errors.OutOfOrder(SectionName(sectionID), SectionName(lastSectionID))
			}
			lastSectionOrder = order
			lastSectionID = sectionID
		}

		sectionSize, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}

		sr, err := r.Sub(int(sectionSize))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}

		sec, err := parseSection(sectionID, sr)
		if err != nil {
			return nil, fmt.Errorf("%s section: %w", SectionName(sectionID), err)
		}
		if sr.Len() != 0 {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Section(SectionName(sectionID)).
				Detail("%d trailing bytes", sr.Len()).
				Build()
		}
		m.Sections = append(m.Sections, sec)
	}

	return m, nil
}

// ParseSection decodes a single section payload (without id/size header).
func ParseSection(id byte, payload []byte) (Section, error) {
	return parseSection(id, binary.NewReader(payload))
}

func parseSection(id byte, r *binary.Reader) (Section, error) {
	switch id {
	case SectionCustom:
		return parseCustomSection(r)
	case SectionType:
		return parseTypeSection(r)
	case SectionImport:
		return parseImportSection(r)
	case SectionFunction:
		return parseFunctionSection(r)
	case SectionMemory:
		return parseMemorySection(r)
	case SectionExport:
		return parseExportSection(r)
	case SectionStart:
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		return &StartSection{FuncIdx: idx}, nil
	case SectionCode:
		return parseCodeSection(r)
	case SectionTable, SectionGlobal, SectionElement, SectionData, SectionDataCount, SectionTag:
		payload, err := r.ReadRemaining()
		if err != nil {
			return nil, err
		}
		return &RawSection{SectionID: id, Payload: payload}, nil
	default:
		return nil, errors.UnknownSection(id)
	}
}

func parseCustomSection(r *binary.Reader) (*CustomSection, error) {
	name, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	rest, err := r.ReadRemaining()
	if err != nil {
		return nil, err
	}
	return &CustomSection{Name: name, Data: rest}, nil
}

func parseTypeSection(r *binary.Reader) (*TypeSection, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	s := &TypeSection{Types: make([]FuncType, 0, count)}
	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if form != FuncTypeByte {
			return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
				Section("type").
				Index(int(i)).
				Value(form).
				Detail("unsupported type form 0x%02x", form).
				Build()
		}
		params, err := readValTypes(r)
		if err != nil {
			return nil, err
		}
		results, err := readValTypes(r)
		if err != nil {
			return nil, err
		}
		s.Types = append(s.Types, FuncType{Params: params, Results: results})
	}
	return s, nil
}

func parseImportSection(r *binary.Reader) (*ImportSection, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	s := &ImportSection{Entries: make([]Import, count)}
	for i := uint32(0); i < count; i++ {
		module, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}

		imp := Import{Module: module, Name: name, Desc: ImportDesc{Kind: kind}}

		switch kind {
		case KindFunc:
			imp.Desc.TypeIdx, err = r.ReadU32()
			if err != nil {
				return nil, err
			}
		case KindTable:
			table, err := readTableType(r)
			if err != nil {
				return nil, err
			}
			imp.Desc.Table = &table
		case KindMemory:
			limits, err := readLimits(r)
			if err != nil {
				return nil, err
			}
			imp.Desc.Memory = &MemoryType{Limits: limits}
		case KindGlobal:
			global, err := readGlobalType(r)
			if err != nil {
				return nil, err
			}
			imp.Desc.Global = &global
		case KindTag:
			attr, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			typeIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			imp.Desc.Tag = &TagType{Attribute: attr, TypeIdx: typeIdx}
		default:
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Section("import").
				Index(int(i)).
				Value(kind).
				Detail("unknown import kind: %d", kind).
				Build()
		}

		s.Entries[i] = imp
	}
	return s, nil
}

func parseFunctionSection(r *binary.Reader) (*FunctionSection, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	s := &FunctionSection{Entries: make([]Func, count)}
	for i := uint32(0); i < count; i++ {
		s.Entries[i].TypeIdx, err = r.ReadU32()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseMemorySection(r *binary.Reader) (*MemorySection, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	s := &MemorySection{Entries: make([]MemoryType, count)}
	for i := uint32(0); i < count; i++ {
		s.Entries[i].Limits, err = readLimits(r)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseExportSection(r *binary.Reader) (*ExportSection, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	s := &ExportSection{Entries: make([]Export, count)}
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		s.Entries[i] = Export{Name: name, Kind: kind, Idx: idx}
	}
	return s, nil
}

func parseCodeSection(r *binary.Reader) (*CodeSection, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	s := &CodeSection{Bodies: make([]FuncBody, count)}
	for i := uint32(0); i < count; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		br, err := r.Sub(int(size))
		if err != nil {
			return nil, err
		}

		localCount, err := br.ReadU32()
		if err != nil {
			return nil, err
		}
		var locals []LocalEntry
		for j := uint32(0); j < localCount; j++ {
			n, err := br.ReadU32()
			if err != nil {
				return nil, err
			}
			vt, err := br.ReadByte()
			if err != nil {
				return nil, err
			}
			locals = append(locals, LocalEntry{Count: n, ValType: ValType(vt)})
		}

		code, err := br.ReadRemaining()
		if err != nil {
			return nil, err
		}
		s.Bodies[i] = FuncBody{Locals: locals, Code: code}
	}
	return s, nil
}

func readValTypes(r *binary.Reader) ([]ValType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	types := make([]ValType, count)
	for i := uint32(0); i < count; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		types[i] = ValType(b)
	}
	return types, nil
}

func readLimits(r *binary.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	if flags&^(LimitsHasMax|LimitsShared|LimitsMemory64) != 0 {
		return Limits{}, fmt.Errorf("invalid limits flags: 0x%02x", flags)
	}

	l := Limits{
		Shared:   flags&LimitsShared != 0,
		Memory64: flags&LimitsMemory64 != 0,
	}
	l.Min, err = r.ReadU64()
	if err != nil {
		return Limits{}, err
	}
	if flags&LimitsHasMax != 0 {
		max, err := r.ReadU64()
		if err != nil {
			return Limits{}, err
		}
		l.Max = &max
	}
	return l, nil
}

func readTableType(r *binary.Reader) (TableType, error) {
	elem, err := r.ReadByte()
	if err != nil {
		return TableType{}, err
	}
	limits, err := readLimits(r)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: ValType(elem), Limits: limits}, nil
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	vt, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	mut, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	if mut > 1 {
		return GlobalType{}, fmt.Errorf("invalid global mutability: %d", mut)
	}
	return GlobalType{ValType: ValType(vt), Mutable: mut == 1}, nil
}
