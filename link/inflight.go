package link

import (
	"context"
	"sync"
	"sync/atomic"
)

// ResolveFunc runs the resolution pipeline for h. It is invoked at most once.
type ResolveFunc func(ctx context.Context, h *Handle) error

// Handle tracks one dispatched operation from dispatch until its resolution
// pipeline has produced an outcome.
type Handle struct {
	op  *Operation
	run ResolveFunc

	once     sync.Once
	done     chan struct{}
	err      error
	reported atomic.Bool
}

// NewHandle wraps op and the pipeline that resolves it.
func NewHandle(op *Operation, run ResolveFunc) *Handle {
	return &Handle{op: op, run: run, done: make(chan struct{})}
}

// Operation returns the wrapped operation.
func (h *Handle) Operation() *Operation { return h.op }

// ID returns the operation ID.
func (h *Handle) ID() string { return h.op.ID }

// Resolve starts the pipeline if nobody has yet and waits for its outcome.
//
// The pipeline is detached from ctx cancellation: if ctx ends first, Resolve
// returns ctx.Err() while the operation keeps resolving and reports to its
// sink when it finishes. Later calls observe the same outcome.
func (h *Handle) Resolve(ctx context.Context) error {
	h.once.Do(func() {
		runCtx := context.WithoutCancel(ctx)
		go func() {
			defer close(h.done)
			if h.run == nil {
				return
			}
			h.err = h.run(runCtx, h)
		}()
	})

	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the pipeline has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the pipeline outcome. It is nil until Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// MarkReported flips the handle to reported and returns true the first time.
// Observers use it to ignore duplicate resolution notices.
func (h *Handle) MarkReported() bool {
	return h.reported.CompareAndSwap(false, true)
}

// Sink observes operations entering and leaving the inflight state.
type Sink interface {
	// OnDispatched registers op and returns the handle that resolves it.
	OnDispatched(op *Operation, run ResolveFunc) *Handle
	// OnResolved is called once the handle's pipeline has an outcome.
	OnResolved(h *Handle)
}

// Inflight parks every operation until its handle is resolved by whoever
// holds it (normally a test controller), then forwards it down the chain.
type Inflight struct {
	sink Sink
}

var _ Link = (*Inflight)(nil)

// NewInflight reports operations to sink. A nil sink turns the link into a
// pass-through.
func NewInflight(sink Sink) *Inflight {
	return &Inflight{sink: sink}
}

// Request implements Link. The sink is notified before Request returns, so
// the operation is pending as soon as the caller holds its future.
func (l *Inflight) Request(ctx context.Context, op *Operation, forward Forward) *Future {
	if l.sink == nil {
		return forward(ctx, op)
	}

	out := NewFuture()
	l.sink.OnDispatched(op, func(runCtx context.Context, h *Handle) error {
		res, err := forward(runCtx, op).Wait(runCtx)
		l.sink.OnResolved(h)
		out.Complete(res, err)
		return err
	})
	return out
}
