// Package errors provides structured error types for the wasm-builder library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the section being processed, an entry index when one
// applies, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Section("import").
//		Index(3).
//		Detail("unknown import kind 0x%02x", kind).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Finalized("module builder")
//	err := errors.DuplicateSection(errors.PhaseDecode, "type")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
