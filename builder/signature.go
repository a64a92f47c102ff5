package builder

import (
	"slices"

	"github.com/wippyai/wasm-builder/wasm"
)

// Signature selects the function type of a declared function: either a type
// defined inline or a reference to an existing type index.
type Signature interface {
	signature()
}

// InlineSignature defines a function type that is appended to the type slot.
type InlineSignature struct {
	Type wasm.FuncType
}

// TypeReference reuses an existing type index. The index is not range checked.
type TypeReference uint32

func (InlineSignature) signature() {}
func (TypeReference) signature()   {}

// Inline is shorthand for an InlineSignature over the given params and results.
func Inline(params, results []wasm.ValType) InlineSignature {
	return InlineSignature{Type: wasm.FuncType{Params: params, Results: results}}
}

// SignatureBindings is an ordered batch of signatures, one per declared function.
type SignatureBindings []Signature

// SignatureBuilder accumulates the params and results of one function type.
type SignatureBuilder[R any] struct {
	next continuation[wasm.FuncType, R]
	ft   wasm.FuncType
}

// NewSignature starts a standalone signature builder whose Build returns the
// function type.
func NewSignature() *SignatureBuilder[wasm.FuncType] {
	return SignatureWithCallback[wasm.FuncType](Identity[wasm.FuncType])
}

// SignatureWithCallback starts a signature builder that hands the finished
// function type to cb.
func SignatureWithCallback[R any](cb Invoke[wasm.FuncType, R]) *SignatureBuilder[R] {
	return &SignatureBuilder[R]{next: newContinuation[wasm.FuncType, R](cb)}
}

// WithParam appends one parameter.
func (b *SignatureBuilder[R]) WithParam(vt wasm.ValType) *SignatureBuilder[R] {
	b.ft.Params = append(b.ft.Params, vt)
	return b
}

// WithParams appends parameters in order.
func (b *SignatureBuilder[R]) WithParams(vts ...wasm.ValType) *SignatureBuilder[R] {
	b.ft.Params = append(b.ft.Params, vts...)
	return b
}

// WithResult appends one result.
func (b *SignatureBuilder[R]) WithResult(vt wasm.ValType) *SignatureBuilder[R] {
	b.ft.Results = append(b.ft.Results, vt)
	return b
}

// WithResults appends results in order.
func (b *SignatureBuilder[R]) WithResults(vts ...wasm.ValType) *SignatureBuilder[R] {
	b.ft.Results = append(b.ft.Results, vts...)
	return b
}

// Build hands a copy of the function type to the continuation. Later
// changes to the builder do not reach the delivered type.
func (b *SignatureBuilder[R]) Build() R {
	ft := wasm.FuncType{Params: slices.Clone(b.ft.Params), Results: slices.Clone(b.ft.Results)}
	return b.next.invoke(ft, nil)
}

// SignaturesBuilder accumulates a batch of signature bindings.
type SignaturesBuilder[R any] struct {
	next     continuation[SignatureBindings, R]
	err      error
	bindings SignatureBindings
}

// NewSignatures starts a standalone bindings builder whose Bind returns the
// collected bindings.
func NewSignatures() *SignaturesBuilder[SignatureBindings] {
	return SignaturesWithCallback[SignatureBindings](Identity[SignatureBindings])
}

// SignaturesWithCallback starts a bindings builder that hands the batch to cb.
func SignaturesWithCallback[R any](cb Invoke[SignatureBindings, R]) *SignaturesBuilder[R] {
	return &SignaturesBuilder[R]{next: newContinuation[SignatureBindings, R](cb)}
}

func (b *SignaturesBuilder[R]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// With appends a signature binding.
func (b *SignaturesBuilder[R]) With(sig Signature) *SignaturesBuilder[R] {
	b.bindings = append(b.bindings, sig)
	return b
}

// WithTypeRef appends a binding to an existing type index.
func (b *SignaturesBuilder[R]) WithTypeRef(idx uint32) *SignaturesBuilder[R] {
	return b.With(TypeReference(idx))
}

// Signature starts an inline signature; its Build appends the binding and
// returns to this builder.
func (b *SignaturesBuilder[R]) Signature() *SignatureBuilder[*SignaturesBuilder[R]] {
	return SignatureWithCallback[*SignaturesBuilder[R]](func(ft wasm.FuncType) *SignaturesBuilder[R] {
		return b.With(InlineSignature{Type: ft})
	})
}

// Bind hands a copy of the collected bindings to the continuation.
func (b *SignaturesBuilder[R]) Bind() R {
	return b.next.invoke(slices.Clone(b.bindings), b.err)
}
