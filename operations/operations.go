// Package operations records every operation that has finished resolving, in
// the order resolution completed, and offers lookups for test assertions.
package operations

import (
	"sync"

	"github.com/mycelian/gqltest/link"
)

// Filter narrows lookups. Zero fields match everything.
type Filter struct {
	ID   string
	Name string
	Kind link.Kind
}

// Match reports whether op satisfies every non-zero field of f.
func (f Filter) Match(op *link.Operation) bool {
	if op == nil {
		return false
	}
	if f.ID != "" && op.ID != f.ID {
		return false
	}
	if f.Name != "" && op.Name != f.Name {
		return false
	}
	if f.Kind != "" && op.Kind != f.Kind {
		return false
	}
	return true
}

// Operations is an append-only log. The zero value is ready to use.
type Operations struct {
	mu  sync.RWMutex
	ops []*link.Operation
}

// New returns an empty log.
func New() *Operations { return &Operations{} }

// Push appends op.
func (o *Operations) Push(op *link.Operation) {
	o.mu.Lock()
	o.ops = append(o.ops, op)
	o.mu.Unlock()
}

// All returns the operations matching every filter, oldest first.
func (o *Operations) All(filters ...Filter) []*link.Operation {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*link.Operation, 0, len(o.ops))
	for _, op := range o.ops {
		if matchAll(op, filters) {
			out = append(out, op)
		}
	}
	return out
}

// First returns the earliest matching operation.
func (o *Operations) First(filters ...Filter) (*link.Operation, bool) {
	return o.Nth(0, filters...)
}

// Last returns the most recent matching operation.
func (o *Operations) Last(filters ...Filter) (*link.Operation, bool) {
	return o.Nth(-1, filters...)
}

// Nth returns the i-th matching operation. Negative indexes count back from
// the end, so -1 is the last one.
func (o *Operations) Nth(i int, filters ...Filter) (*link.Operation, bool) {
	all := o.All(filters...)
	if i < 0 {
		i += len(all)
	}
	if i < 0 || i >= len(all) {
		return nil, false
	}
	return all[i], true
}

// Len returns the number of recorded operations.
func (o *Operations) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.ops)
}

// Names lists operation names in log order.
func (o *Operations) Names() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, len(o.ops))
	for i, op := range o.ops {
		names[i] = op.Name
	}
	return names
}

func matchAll(op *link.Operation, filters []Filter) bool {
	for _, f := range filters {
		if !f.Match(op) {
			return false
		}
	}
	return true
}
