package builder

import (
	"github.com/wippyai/wasm-builder/wasm"
)

// ImportBuilder composes one import entry. Without a descriptor the entry
// imports a function of type 0.
type ImportBuilder[R any] struct {
	next continuation[wasm.Import, R]
	imp  wasm.Import
}

// NewImport starts a standalone import builder whose Build returns the entry.
func NewImport() *ImportBuilder[wasm.Import] {
	return ImportWithCallback[wasm.Import](Identity[wasm.Import])
}

// ImportWithCallback starts an import builder that hands the entry to cb.
func ImportWithCallback[R any](cb Invoke[wasm.Import, R]) *ImportBuilder[R] {
	return &ImportBuilder[R]{
		next: newContinuation[wasm.Import, R](cb),
		imp:  wasm.Import{Desc: wasm.ImportDesc{Kind: wasm.KindFunc}},
	}
}

// Path sets the module and field names.
func (b *ImportBuilder[R]) Path(module, name string) *ImportBuilder[R] {
	b.imp.Module = module
	b.imp.Name = name
	return b
}

// Func imports a function of the given type index.
func (b *ImportBuilder[R]) Func(typeIdx uint32) *ImportBuilder[R] {
	b.imp.Desc = wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: typeIdx}
	return b
}

// Memory imports a linear memory.
func (b *ImportBuilder[R]) Memory(limits wasm.Limits) *ImportBuilder[R] {
	b.imp.Desc = wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{Limits: limits}}
	return b
}

// Table imports a table of elem references.
func (b *ImportBuilder[R]) Table(elem wasm.ValType, limits wasm.Limits) *ImportBuilder[R] {
	b.imp.Desc = wasm.ImportDesc{Kind: wasm.KindTable, Table: &wasm.TableType{ElemType: elem, Limits: limits}}
	return b
}

// Global imports a global.
func (b *ImportBuilder[R]) Global(vt wasm.ValType, mutable bool) *ImportBuilder[R] {
	b.imp.Desc = wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &wasm.GlobalType{ValType: vt, Mutable: mutable}}
	return b
}

// Build hands the entry to the continuation.
func (b *ImportBuilder[R]) Build() R {
	return b.next.invoke(b.imp, nil)
}

// Limits returns size limits with an optional maximum.
func Limits(initial uint64, maximum ...uint64) wasm.Limits {
	l := wasm.Limits{Min: initial}
	if len(maximum) > 0 {
		m := maximum[0]
		l.Max = &m
	}
	return l
}
