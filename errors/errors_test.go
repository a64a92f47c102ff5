package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseDecode,
				Kind:    KindInvalidData,
				Section: "import",
				Index:   3,
				HasIdx:  true,
				Detail:  "unknown import kind",
			},
			contains: []string{"[decode]", "invalid_data", "import section", "entry 3", "unknown import kind"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseBuild,
				Kind:  KindFinalized,
			},
			contains: []string{"[build]", "finalized"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCompile,
				Kind:   KindInvalidData,
				Detail: "compile module",
				Cause:  errors.New("type index out of range"),
			},
			contains: []string{"[compile]", "compile module", "caused by", "type index out of range"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoIndexWhenUnset(t *testing.T) {
	err := &Error{Phase: PhaseDecode, Kind: KindInvalidData, Section: "code"}
	if strings.Contains(err.Error(), "entry") {
		t.Errorf("unexpected entry index in %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Finalized("module builder")

	if !err.Is(&Error{Phase: PhaseBuild, Kind: KindFinalized}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindFinalized}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseBuild, Kind: KindInvalidData}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Phase: PhaseBuild, Kind: KindFinalized}) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindInvalidData).
		Section("type").
		Index(2).
		Value(0x61).
		Cause(cause).
		Detail("expected form 0x%02x, got 0x%02x", 0x60, 0x61).
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindInvalidData {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
	}
	if err.Section != "type" {
		t.Errorf("Section = %q, want type", err.Section)
	}
	if !err.HasIdx || err.Index != 2 {
		t.Errorf("Index = %d (set=%v), want 2", err.Index, err.HasIdx)
	}
	if err.Value != 0x61 {
		t.Errorf("Value = %v, want 0x61", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected form 0x60, got 0x61" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Finalized", func(t *testing.T) {
		err := Finalized("signature builder")
		if err.Kind != KindFinalized || err.Phase != PhaseBuild {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "signature builder") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("DuplicateSection", func(t *testing.T) {
		err := DuplicateSection(PhaseDecode, "code")
		if err.Kind != KindDuplicateSection || err.Section != "code" {
			t.Errorf("got %v in %q", err.Kind, err.Section)
		}
	})

	t.Run("OutOfOrder", func(t *testing.T) {
		err := OutOfOrder("import", "function")
		if err.Kind != KindOutOfOrder {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfOrder)
		}
		if !strings.Contains(err.Error(), "function") {
			t.Errorf("message %q should name the preceding section", err.Error())
		}
	})

	t.Run("UnknownSection", func(t *testing.T) {
		err := UnknownSection(0x42)
		if err.Kind != KindUnknownSection {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownSection)
		}
		if !strings.Contains(err.Detail, "0x42") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseManifest, 70000, "memory pages")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 70000 {
			t.Errorf("Value = %v, want 70000", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseRuntime, "export", "add")
		if err.Kind != KindNotFound || !strings.Contains(err.Detail, `"add"`) {
			t.Errorf("got %v: %q", err.Kind, err.Detail)
		}
	})

	t.Run("Compile", func(t *testing.T) {
		cause := errors.New("bad")
		err := Compile(cause)
		if err.Phase != PhaseCompile || !errors.Is(err, cause) {
			t.Errorf("got %v, cause chain broken", err.Phase)
		}
	})

	t.Run("Instantiation", func(t *testing.T) {
		err := Instantiation(errors.New("missing import"))
		if err.Kind != KindInstantiation || err.Phase != PhaseRuntime {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})
}
