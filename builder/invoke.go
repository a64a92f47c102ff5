package builder

// Invoke is a single-shot continuation that consumes a finished value.
// Standalone builders use Identity; sub-builders use a closure that hands the
// value to the parent and returns it.
type Invoke[T, R any] func(T) R

// Identity returns its argument unchanged.
func Identity[T any](v T) T { return v }

// failer is implemented by builders that record a sticky usage error.
type failer interface {
	fail(err error)
}

// propagate records err on r when r is a builder that tracks errors.
func propagate[R any](r R, err error) R {
	if err == nil {
		return r
	}
	if f, ok := any(r).(failer); ok {
		f.fail(err)
	}
	return r
}

// continuation wraps an Invoke so that it runs at most once. Later calls
// return the first result and report ErrFinalized to it.
type continuation[T, R any] struct {
	cb     Invoke[T, R]
	result R
	done   bool
}

func newContinuation[T, R any](cb Invoke[T, R]) continuation[T, R] {
	return continuation[T, R]{cb: cb}
}

func (c *continuation[T, R]) invoke(v T, err error) R {
	if c.done {
		return propagate(c.result, ErrFinalized)
	}
	c.done = true
	c.result = c.cb(v)
	return propagate(c.result, err)
}
