package link

import (
	"context"
	"errors"
	"fmt"
)

// ErrResolverPanic wraps a panic raised inside a Resolver.
var ErrResolverPanic = errors.New("resolver panicked")

// Resolver maps an operation to a result or an error.
type Resolver interface {
	Resolve(ctx context.Context, op *Operation) (*Result, error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(ctx context.Context, op *Operation) (*Result, error)

// Resolve implements Resolver for ResolverFunc.
func (f ResolverFunc) Resolve(ctx context.Context, op *Operation) (*Result, error) {
	return f(ctx, op)
}

// Mock is a terminating link that answers every operation with a Resolver.
// The resolver runs on its own goroutine so callers always get a pending
// future back.
type Mock struct {
	resolver Resolver
}

var _ Link = (*Mock)(nil)

// NewMock returns a terminating link backed by r.
func NewMock(r Resolver) *Mock {
	return &Mock{resolver: r}
}

// Request implements Link. forward is never called.
func (m *Mock) Request(ctx context.Context, op *Operation, _ Forward) *Future {
	f := NewFuture()
	go func() {
		res, err := m.resolve(ctx, op)
		f.Complete(res, err)
	}()
	return f
}

func (m *Mock) resolve(ctx context.Context, op *Operation) (res *Result, err error) {
	// Protect the chain from a misbehaving resolver.
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %s: %v", ErrResolverPanic, op, r)
		}
	}()
	if m.resolver == nil {
		return nil, ErrNoTerminatingLink
	}
	return m.resolver.Resolve(ctx, op)
}
