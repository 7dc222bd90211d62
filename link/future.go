package link

import (
	"context"
	"sync"
)

// Future is the single-assignment outcome of an operation.
//
// Callbacks registered with OnComplete run synchronously in the goroutine that
// completes the future, before Done is closed. Work they start (for example a
// dependent query) is therefore visible to anyone who observed Done.
type Future struct {
	mu        sync.Mutex
	completed bool
	res       *Result
	err       error
	callbacks []func(*Result, error)
	done      chan struct{}
}

// NewFuture returns an incomplete future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Completed returns a future that already holds res and err.
func Completed(res *Result, err error) *Future {
	f := NewFuture()
	f.Complete(res, err)
	return f
}

// Complete settles the future. Only the first call has an effect; it reports
// whether this call won.
func (f *Future) Complete(res *Result, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.res, f.err = res, err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(res, err)
	}
	close(f.done)
	return true
}

// OnComplete registers fn to run when the future settles. If it already has,
// fn runs immediately on the calling goroutine.
func (f *Future) OnComplete(fn func(*Result, error)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	res, err := f.res, f.err
	f.mu.Unlock()
	fn(res, err)
}

// Done is closed once the future has settled and its callbacks have run.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the future has completed.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
