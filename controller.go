package gqltest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mycelian/gqltest/client"
	"github.com/mycelian/gqltest/internal/pending"
	"github.com/mycelian/gqltest/link"
	"github.com/mycelian/gqltest/mock"
	"github.com/mycelian/gqltest/operations"
)

// Perform runs one drain step.
type Perform func(ctx context.Context) error

// Wrapper decorates a drain step. It may run perform zero, one or several
// times; each run re-reads the pending set.
type Wrapper interface {
	Wrap(ctx context.Context, perform Perform) error
}

// WrapperFunc adapts a function to a Wrapper.
type WrapperFunc func(ctx context.Context, perform Perform) error

// Wrap implements Wrapper for WrapperFunc.
func (f WrapperFunc) Wrap(ctx context.Context, perform Perform) error { return f(ctx, perform) }

// OperationError attributes a resolution failure to its operation.
type OperationError struct {
	Operation *link.Operation
	Err       error
}

func (e *OperationError) Error() string { return fmt.Sprintf("%s: %v", e.Operation, e.Err) }

// Unwrap returns the resolver's error.
func (e *OperationError) Unwrap() error { return e.Err }

// drainKey marks a context as being inside a drain of one controller. The
// value is the drain's operations.Filter.
type drainKey struct{ c *Controller }

// Controller tracks every operation dispatched through its client and lets a
// test resolve them on demand. Use one Controller per test.
type Controller struct {
	client     *client.Client
	operations *operations.Operations
	pending    *pending.Set[*link.Handle]

	mu       sync.Mutex
	wrappers []Wrapper

	links         []link.Link
	cacheOptions  client.CacheOptions
	possibleTypes []client.PossibleType
	log           zerolog.Logger
	metrics       bool
}

var _ link.Sink = (*Controller)(nil)

// New constructs a Controller whose client answers operations with resolver.
// A nil resolver fails every operation with a *mock.NoMockError.
//
// The client's chain is: links from WithLinks, the inflight tracker, then the
// resolver.
func New(resolver link.Resolver, opts ...Option) (*Controller, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		operations:   operations.New(),
		pending:      pending.New[*link.Handle](),
		cacheOptions: client.CacheOptions{},
		log:          newLogger(cfg),
		metrics:      cfg.Metrics,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if resolver == nil {
		resolver = mock.NoMock()
	}
	chain := slices.Clone(c.links)
	chain = append(chain, link.NewInflight(c), link.NewMock(resolver))

	c.client, err = client.New(chain,
		client.WithCacheOptions(c.cacheOptions),
		client.WithPossibleTypes(c.possibleTypes...),
		client.WithLogger(c.log),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Client returns the execution client application code should use.
func (c *Controller) Client() *client.Client { return c.client }

// Operations returns the log of resolved operations.
func (c *Controller) Operations() *operations.Operations { return c.operations }

// Pending lists the operations awaiting resolution, in dispatch order.
func (c *Controller) Pending() []*link.Operation {
	handles := c.pending.Snapshot()
	ops := make([]*link.Operation, len(handles))
	for i, h := range handles {
		ops[i] = h.Operation()
	}
	return ops
}

// PendingCount returns the number of operations awaiting resolution.
func (c *Controller) PendingCount() int { return c.pending.Len() }

func (c *Controller) pendingMatching(filter operations.Filter) int {
	if filter == (operations.Filter{}) {
		return c.pending.Len()
	}
	n := 0
	for _, h := range c.pending.Snapshot() {
		if filter.Match(h.Operation()) {
			n++
		}
	}
	return n
}

// OnDispatched implements link.Sink.
func (c *Controller) OnDispatched(op *link.Operation, run link.ResolveFunc) *link.Handle {
	if run != nil && c.metrics {
		pipeline := run
		run = func(ctx context.Context, h *link.Handle) error {
			err := pipeline(ctx, h)
			operationsResolvedTotal.WithLabelValues(op.Name, outcomeLabel(err)).Inc()
			return err
		}
	}
	h := link.NewHandle(op, run)
	if c.pending.Add(h) && c.metrics {
		operationsDispatchedTotal.WithLabelValues(op.Name).Inc()
		pendingOperations.Inc()
	}
	c.log.Debug().Str("operation", op.Name).Str("id", op.ID).Int("pending", c.pending.Len()).Msg("operation dispatched")
	return h
}

// OnResolved implements link.Sink. Unknown handles are not an error;
// repeated notices for the same handle are ignored.
func (c *Controller) OnResolved(h *link.Handle) {
	if c.pending.Remove(h) && c.metrics {
		pendingOperations.Dec()
	}
	if !h.MarkReported() {
		c.log.Debug().Str("id", h.ID()).Msg("duplicate resolution notice ignored")
		return
	}
	c.operations.Push(h.Operation())
	c.log.Debug().Str("operation", h.Operation().Name).Str("id", h.ID()).Msg("operation resolved")
}

// Wrap appends w to the drain wrapper chain. The first registered wrapper is
// the outermost: it runs first on the way in and last on the way out.
func (c *Controller) Wrap(w Wrapper) error {
	if isNil(w) {
		return ErrNilWrapper
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.wrappers {
		if sameWrapper(existing, w) {
			return ErrWrapperRegistered
		}
	}
	c.wrappers = append(c.wrappers, w)
	c.log.Debug().Int("wrappers", len(c.wrappers)).Msg("drain wrapper registered")
	return nil
}

// ResolveAll resolves every pending operation once, through the wrapper
// chain, and waits for all of them.
//
// Operations dispatched while resolving (for example by a callback on a
// resolved operation) stay pending unless a wrapper drains again or ResolveAll
// is called again. The returned error joins every operation failure; a
// failure never stops its siblings from resolving.
//
// If ctx ends first, ResolveAll returns early. Operations already started keep
// resolving in the background.
//
// A wrapper that calls ResolveAll on its own controller with the ctx it was
// given gets ErrReentrantDrain. Reentrancy is tracked through ctx only, because
// independent goroutines may drain the same controller concurrently: a wrapper
// that starts a drain from a fresh context is not detected and recurses.
func (c *Controller) ResolveAll(ctx context.Context) error {
	return c.drain(ctx, operations.Filter{})
}

// Resolve is ResolveAll restricted to pending operations matching filter.
func (c *Controller) Resolve(ctx context.Context, filter operations.Filter) error {
	return c.drain(ctx, filter)
}

// UntilIdle returns a wrapper that keeps draining until nothing is pending,
// for at most maxRounds rounds. Under Resolve only operations matching the
// drain's filter count.
func (c *Controller) UntilIdle(maxRounds int) Wrapper {
	return WrapperFunc(func(ctx context.Context, perform Perform) error {
		if maxRounds <= 0 {
			return ErrInvalidRounds
		}
		filter, _ := ctx.Value(drainKey{c: c}).(operations.Filter)
		var errs []error
		for round := 1; round <= maxRounds; round++ {
			if err := perform(ctx); err != nil {
				errs = append(errs, err)
			}
			if c.pendingMatching(filter) == 0 {
				return errors.Join(errs...)
			}
			if ctx.Err() != nil {
				break
			}
		}
		errs = append(errs, fmt.Errorf("%w: %d after %d rounds", ErrNotIdle, c.pendingMatching(filter), maxRounds))
		return errors.Join(errs...)
	})
}

func (c *Controller) drain(ctx context.Context, filter operations.Filter) error {
	key := drainKey{c: c}
	if ctx.Value(key) != nil {
		return ErrReentrantDrain
	}
	ctx = context.WithValue(ctx, key, filter)

	c.mu.Lock()
	wrappers := slices.Clone(c.wrappers)
	c.mu.Unlock()

	perform := Perform(func(ctx context.Context) error {
		return c.resolveSnapshot(ctx, filter)
	})
	for i := len(wrappers) - 1; i >= 0; i-- {
		w, inner := wrappers[i], perform
		perform = func(ctx context.Context) error { return w.Wrap(ctx, inner) }
	}

	start := time.Now()
	c.log.Debug().Int("pending", c.pending.Len()).Int("wrappers", len(wrappers)).Msg("drain started")
	err := perform(ctx)
	elapsed := time.Since(start)

	if c.metrics {
		drainsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		drainDuration.Observe(elapsed.Seconds())
	}
	evt := c.log.Debug()
	if err != nil {
		evt = c.log.Warn().Err(err)
	}
	evt.Dur("elapsed", elapsed).Int("pending", c.pending.Len()).Msg("drain finished")
	return err
}

// resolveSnapshot is the base drain action: resolve everything pending right
// now, concurrently, and wait for all of it.
func (c *Controller) resolveSnapshot(ctx context.Context, filter operations.Filter) error {
	snapshot := c.pending.Snapshot()
	errs := make([]error, len(snapshot))

	var wg sync.WaitGroup
	for i, h := range snapshot {
		if !filter.Match(h.Operation()) {
			continue
		}
		i, h := i, h
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.Resolve(ctx); err != nil {
				errs[i] = &OperationError{Operation: h.Operation(), Err: err}
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// sameWrapper reports whether a and b are equal values. Wrappers whose
// dynamic values cannot be compared, such as funcs or structs holding slices,
// are always distinct.
func sameWrapper(a, b Wrapper) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() || !av.Comparable() || !bv.Comparable() {
		return false
	}
	return a == b
}

func isNil(w Wrapper) bool {
	if w == nil {
		return true
	}
	v := reflect.ValueOf(w)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
