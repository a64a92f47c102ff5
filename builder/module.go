package builder

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-builder/errors"
	"github.com/wippyai/wasm-builder/wasm"
)

// ErrFinalized is reported by any operation on a builder after Build.
var ErrFinalized = errors.Finalized("module builder")

// CodeLocation locates a pushed function definition.
type CodeLocation struct {
	// Signature is the entry index in the function section.
	Signature uint32
	// Body is the entry index in the code section.
	Body uint32
}

// ModuleBuilder assembles a module and hands it to its continuation on Build.
// A builder is not safe for concurrent use.
type ModuleBuilder[R any] struct {
	callback Invoke[*wasm.Module, R]
	scaffold *Scaffold
	err      error
	dedup    bool
}

// Module starts an empty module builder whose Build returns the module.
func Module() *ModuleBuilder[*wasm.Module] {
	return WithCallback[*wasm.Module](Identity[*wasm.Module])
}

// FromModule starts a builder that extends an existing module. m itself is
// left unchanged; see NewScaffold.
func FromModule(m *wasm.Module) *ModuleBuilder[*wasm.Module] {
	return Module().WithModule(m)
}

// WithCallback starts an empty module builder that hands the built module to cb.
func WithCallback[R any](cb Invoke[*wasm.Module, R]) *ModuleBuilder[R] {
	return &ModuleBuilder[R]{
		callback: cb,
		scaffold: NewScaffold(nil),
	}
}

func (b *ModuleBuilder[R]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// live returns the scaffold, recording ErrFinalized when the builder has
// already been built.
func (b *ModuleBuilder[R]) live() *Scaffold {
	if b.scaffold == nil {
		b.fail(ErrFinalized)
	}
	return b.scaffold
}

// Scaffold returns the live scaffold, or nil after Build.
func (b *ModuleBuilder[R]) Scaffold() *Scaffold {
	return b.scaffold
}

// WithTypeDedup makes inline signatures reuse the first equal type already in
// the type slot instead of appending a new entry.
func (b *ModuleBuilder[R]) WithTypeDedup() *ModuleBuilder[R] {
	if b.live() != nil {
		b.dedup = true
	}
	return b
}

// WithModule replaces everything accumulated so far with the decomposition of m.
// m itself is left unchanged.
func (b *ModuleBuilder[R]) WithModule(m *wasm.Module) *ModuleBuilder[R] {
	if b.live() == nil {
		return b
	}
	b.scaffold = NewScaffold(m)
	Logger().Debug("module seeded",
		zap.Int("types", b.scaffold.Types.Len()),
		zap.Int("functions", b.scaffold.Functions.Len()),
		zap.Int("imports", b.scaffold.Imports.Len()),
		zap.Int("bodies", b.scaffold.Code.Len()),
		zap.Int("other", len(b.scaffold.Other)))
	return b
}

// WithSection appends a section to the untracked list.
func (b *ModuleBuilder[R]) WithSection(s wasm.Section) *ModuleBuilder[R] {
	if sc := b.live(); sc != nil {
		sc.Other = append(sc.Other, s)
	}
	return b
}

// WithSections appends sections to the untracked list in order.
func (b *ModuleBuilder[R]) WithSections(ss ...wasm.Section) *ModuleBuilder[R] {
	if sc := b.live(); sc != nil {
		sc.Other = append(sc.Other, ss...)
	}
	return b
}

// WithSignatures declares one function per binding.
func (b *ModuleBuilder[R]) WithSignatures(bindings SignatureBindings) *ModuleBuilder[R] {
	if _, err := b.PushSignatures(bindings); err != nil {
		b.fail(err)
	}
	return b
}

// PushSignatures resolves every binding first, then declares one function per
// binding, returning the function-section indices in binding order.
func (b *ModuleBuilder[R]) PushSignatures(bindings SignatureBindings) ([]uint32, error) {
	sc := b.scaffold
	if sc == nil {
		return nil, ErrFinalized
	}
	typeIdxs := make([]uint32, len(bindings))
	for i, sig := range bindings {
		typeIdxs[i] = sc.resolve(sig, b.dedup)
	}
	out := make([]uint32, len(typeIdxs))
	for i, t := range typeIdxs {
		out[i] = sc.Functions.Append(wasm.Func{TypeIdx: t})
	}
	return out, nil
}

// PushSignature declares one function and returns its function-section index.
func (b *ModuleBuilder[R]) PushSignature(sig Signature) (uint32, error) {
	sc := b.scaffold
	if sc == nil {
		return 0, ErrFinalized
	}
	return sc.Functions.Append(wasm.Func{TypeIdx: sc.resolve(sig, b.dedup)}), nil
}

// PushType adds a function type without declaring a function and returns
// its type index. It honors WithTypeDedup.
func (b *ModuleBuilder[R]) PushType(ft wasm.FuncType) (uint32, error) {
	sc := b.scaffold
	if sc == nil {
		return 0, ErrFinalized
	}
	return sc.resolve(InlineSignature{Type: ft}, b.dedup), nil
}

// PushFunction declares a function and appends its body, advancing the
// function and code slots together.
func (b *ModuleBuilder[R]) PushFunction(def FunctionDefinition) (CodeLocation, error) {
	sc := b.scaffold
	if sc == nil {
		return CodeLocation{}, ErrFinalized
	}
	typeIdx := sc.resolve(def.Signature, b.dedup)
	return CodeLocation{
		Signature: sc.Functions.Append(wasm.Func{TypeIdx: typeIdx}),
		Body:      sc.Code.Append(def.Body),
	}, nil
}

// WithFunction is the chainable form of PushFunction.
func (b *ModuleBuilder[R]) WithFunction(def FunctionDefinition) *ModuleBuilder[R] {
	if _, err := b.PushFunction(def); err != nil {
		b.fail(err)
	}
	return b
}

// PushImport appends an import entry.
func (b *ModuleBuilder[R]) PushImport(imp wasm.Import) error {
	sc := b.scaffold
	if sc == nil {
		return ErrFinalized
	}
	sc.Imports.Append(imp)
	return nil
}

// WithImport is the chainable form of PushImport.
func (b *ModuleBuilder[R]) WithImport(imp wasm.Import) *ModuleBuilder[R] {
	if err := b.PushImport(imp); err != nil {
		b.fail(err)
	}
	return b
}

// WithExport appends an export to the export section among the untracked
// sections, adding one at the end if there is none.
func (b *ModuleBuilder[R]) WithExport(e wasm.Export) *ModuleBuilder[R] {
	if sc := b.live(); sc != nil {
		es := sc.exports()
		es.Entries = append(es.Entries, e)
	}
	return b
}

// Functions starts a batch of signature bindings that are declared on Bind.
func (b *ModuleBuilder[R]) Functions() *SignaturesBuilder[*ModuleBuilder[R]] {
	return SignaturesWithCallback[*ModuleBuilder[R]](b.WithSignatures)
}

// Import starts an import entry that is appended on Build.
func (b *ModuleBuilder[R]) Import() *ImportBuilder[*ModuleBuilder[R]] {
	return ImportWithCallback[*ModuleBuilder[R]](b.WithImport)
}

// Function starts a function definition that is pushed on Build.
func (b *ModuleBuilder[R]) Function() *FunctionBuilder[*ModuleBuilder[R]] {
	return FunctionWithCallback[*ModuleBuilder[R]](b.WithFunction)
}

// Export starts an export entry that is appended on Build.
func (b *ModuleBuilder[R]) Export() *ExportBuilder[*ModuleBuilder[R]] {
	return ExportWithCallback[*ModuleBuilder[R]](b.WithExport)
}

// Build reassembles the scaffold and hands the module to the continuation.
// It returns the first usage error recorded on the builder or its
// sub-builders; after a successful or failed Build the builder is finalized.
func (b *ModuleBuilder[R]) Build() (R, error) {
	var zero R
	sc := b.scaffold
	if sc == nil {
		return zero, ErrFinalized
	}
	b.scaffold = nil
	if b.err != nil {
		return zero, b.err
	}

	m := sc.Module()
	Logger().Debug("module built",
		zap.Int("sections", len(m.Sections)),
		zap.Int("types", sc.Types.Len()),
		zap.Int("functions", sc.Functions.Len()),
		zap.Int("imports", sc.Imports.Len()),
		zap.Int("bodies", sc.Code.Len()))
	return b.callback(m), nil
}
