package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild    Phase = "build"    // builder bookkeeping
	PhaseEncode   Phase = "encode"   // module to binary
	PhaseDecode   Phase = "decode"   // binary to module
	PhaseManifest Phase = "manifest" // manifest loading and assembly
	PhaseCompile  Phase = "compile"  // downstream compilation
	PhaseRuntime  Phase = "runtime"  // instantiation and calls
)

// Kind categorizes the error
type Kind string

const (
	KindFinalized        Kind = "finalized"
	KindInvalidData      Kind = "invalid_data"
	KindOutOfOrder       Kind = "out_of_order"
	KindDuplicateSection Kind = "duplicate_section"
	KindUnknownSection   Kind = "unknown_section"
	KindUnsupported      Kind = "unsupported"
	KindOverflow         Kind = "overflow"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
	KindInstantiation    Kind = "instantiation"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Index   int
	HasIdx  bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
		b.WriteString(" section")
	}
	if e.HasIdx {
		b.WriteString(" at entry ")
		b.WriteString(strconv.Itoa(e.Index))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Section sets the section name
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Index sets the entry index within the section
func (b *Builder) Index(i int) *Builder {
	b.err.Index = i
	b.err.HasIdx = true
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Finalized reports an operation on a builder that has already been built.
func Finalized(what string) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindFinalized,
		Detail: fmt.Sprintf("%s already built", what),
	}
}

// DuplicateSection creates an error for a non-custom section seen twice
func DuplicateSection(phase Phase, section string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindDuplicateSection,
		Section: section,
		Detail:  "section appears more than once",
	}
}

// OutOfOrder creates a section ordering error
func OutOfOrder(section, after string) *Error {
	return &Error{
		Phase:   PhaseDecode,
		Kind:    KindOutOfOrder,
		Section: section,
		Detail:  fmt.Sprintf("must not follow %s section", after),
	}
}

// UnknownSection creates an error for an unrecognized section id
func UnknownSection(id byte) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownSection,
		Detail: fmt.Sprintf("unknown section ID: 0x%02x", id),
		Value:  id,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, section string, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidData,
		Section: section,
		Detail:  detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Compile creates a downstream compilation error
func Compile(cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindInvalidData,
		Detail: "compile module",
		Cause:  cause,
	}
}
