package wasm_test

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func module(sections ...byte) []byte {
	return append(append([]byte(nil), header...), sections...)
}

func TestParseModuleHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", []byte{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00}, wasm.ErrInvalidMagic},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, wasm.ErrInvalidVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.ParseModule(tt.data)
			if !stderrors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := wasm.ParseModule([]byte{0x00, 0x61}); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestParseModuleEmpty(t *testing.T) {
	m, err := wasm.ParseModule(module())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Sections) != 0 {
		t.Errorf("expected 0 sections, got %d", len(m.Sections))
	}
}

func TestParseModuleSectionOrder(t *testing.T) {
	// function section (id 3) followed by type section (id 1)
	data := module(
		0x03, 0x01, 0x00,
		0x01, 0x01, 0x00,
	)
	_, err := wasm.ParseModule(data)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfOrder}) {
		t.Errorf("expected out-of-order error, got %v", err)
	}
}

func TestParseModuleDuplicateSection(t *testing.T) {
	data := module(
		0x01, 0x01, 0x00,
		0x01, 0x01, 0x00,
	)
	_, err := wasm.ParseModule(data)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindDuplicateSection}) {
		t.Errorf("expected duplicate-section error, got %v", err)
	}
}

func TestParseModuleUnknownSection(t *testing.T) {
	_, err := wasm.ParseModule(module(0x42, 0x00))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnknownSection}) {
		t.Errorf("expected unknown-section error, got %v", err)
	}
}

func TestParseModuleCustomAnywhere(t *testing.T) {
	data := module(
		0x00, 0x03, 0x01, 'a', 0xFF, // custom "a"
		0x01, 0x01, 0x00, // empty type section
		0x00, 0x02, 0x01, 'b', // custom "b"
	)
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	cs := m.CustomSections()
	if len(cs) != 2 || cs[0].Name != "a" || cs[1].Name != "b" {
		t.Fatalf("custom sections mismatch: %+v", cs)
	}
	if len(cs[0].Data) != 1 || cs[0].Data[0] != 0xFF {
		t.Errorf("custom data mismatch: %v", cs[0].Data)
	}
}

func TestParseModuleTruncatedSection(t *testing.T) {
	_, err := wasm.ParseModule(module(0x01, 0x05, 0x00))
	if err == nil {
		t.Fatal("expected error for truncated section")
	}
}

func TestParseModuleTrailingBytes(t *testing.T) {
	// function section declares 0 entries but carries an extra byte
	_, err := wasm.ParseModule(module(0x03, 0x02, 0x00, 0x00))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidData}) {
		t.Errorf("expected invalid-data error, got %v", err)
	}
}

func TestParseModuleBadImportKind(t *testing.T) {
	data := module(
		0x02, 0x07,
		0x01,                 // one import
		0x01, 'm', 0x01, 'f', // names
		0x09, 0x00,           // bogus kind
	)
	_, err := wasm.ParseModule(data)
	var werr *errors.Error
	if !stderrors.As(err, &werr) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if werr.Section != "import" || !werr.HasIdx || werr.Index != 0 {
		t.Errorf("unexpected error context: %+v", werr)
	}
}

func TestParseSection(t *testing.T) {
	s, err := wasm.ParseSection(wasm.SectionFunction, []byte{0x02, 0x00, 0x01})
	if err != nil {
		t.Fatalf("ParseSection: %v", err)
	}
	fs, ok := s.(*wasm.FunctionSection)
	if !ok || fs.Len() != 2 || fs.Entries[1].TypeIdx != 1 {
		t.Errorf("unexpected section: %#v", s)
	}
}
