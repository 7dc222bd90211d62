package link

import (
	"context"
	"errors"
)

// ErrNoTerminatingLink is returned when an operation runs off the end of a
// chain without any link producing a result.
var ErrNoTerminatingLink = errors.New("no terminating link in chain")

// Forward hands an operation to the remainder of a chain.
type Forward func(ctx context.Context, op *Operation) *Future

// Link is one step of the interceptor chain. A link either produces the
// outcome itself or calls forward to delegate to the next link.
type Link interface {
	Request(ctx context.Context, op *Operation, forward Forward) *Future
}

// LinkFunc adapts a plain function to a Link.
type LinkFunc func(ctx context.Context, op *Operation, forward Forward) *Future

// Request implements Link for LinkFunc.
func (f LinkFunc) Request(ctx context.Context, op *Operation, forward Forward) *Future {
	return f(ctx, op, forward)
}

// From composes links left to right into a single Forward. Nil links are
// skipped.
func From(links ...Link) Forward {
	next := Forward(func(context.Context, *Operation) *Future {
		return Completed(nil, ErrNoTerminatingLink)
	})
	for i := len(links) - 1; i >= 0; i-- {
		l := links[i]
		if l == nil {
			continue
		}
		forward := next
		next = func(ctx context.Context, op *Operation) *Future {
			return l.Request(ctx, op, forward)
		}
	}
	return next
}
