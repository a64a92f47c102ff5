package builder

import (
	"github.com/wippyai/wasm-builder/wasm"
)

// ExportBuilder composes one export entry. Without a kind the entry exports
// a function.
type ExportBuilder[R any] struct {
	next continuation[wasm.Export, R]
	exp  wasm.Export
}

// NewExport starts a standalone export builder whose Build returns the entry.
func NewExport() *ExportBuilder[wasm.Export] {
	return ExportWithCallback[wasm.Export](Identity[wasm.Export])
}

// ExportWithCallback starts an export builder that hands the entry to cb.
func ExportWithCallback[R any](cb Invoke[wasm.Export, R]) *ExportBuilder[R] {
	return &ExportBuilder[R]{
		next: newContinuation[wasm.Export, R](cb),
		exp:  wasm.Export{Kind: wasm.KindFunc},
	}
}

// Field sets the export name.
func (b *ExportBuilder[R]) Field(name string) *ExportBuilder[R] {
	b.exp.Name = name
	return b
}

// Func exports the function at idx in the function index space.
func (b *ExportBuilder[R]) Func(idx uint32) *ExportBuilder[R] {
	return b.internal(wasm.KindFunc, idx)
}

// Table exports the table at idx.
func (b *ExportBuilder[R]) Table(idx uint32) *ExportBuilder[R] {
	return b.internal(wasm.KindTable, idx)
}

// Memory exports the memory at idx.
func (b *ExportBuilder[R]) Memory(idx uint32) *ExportBuilder[R] {
	return b.internal(wasm.KindMemory, idx)
}

// Global exports the global at idx.
func (b *ExportBuilder[R]) Global(idx uint32) *ExportBuilder[R] {
	return b.internal(wasm.KindGlobal, idx)
}

func (b *ExportBuilder[R]) internal(kind byte, idx uint32) *ExportBuilder[R] {
	b.exp.Kind = kind
	b.exp.Idx = idx
	return b
}

// Build hands the entry to the continuation.
func (b *ExportBuilder[R]) Build() R {
	return b.next.invoke(b.exp, nil)
}
