package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mycelian/gqltest/link"
	"github.com/mycelian/gqltest/operations"
)

var (
	// ErrNoMock matches every *NoMockError.
	ErrNoMock = errors.New("no mocks were set")

	// ErrInvalidFixture is returned by FromMap for unsupported fixture values.
	ErrInvalidFixture = errors.New("invalid fixture")
)

// NoMockError reports an operation that no rule or fallback could answer.
type NoMockError struct {
	OperationName string
}

func (e *NoMockError) Error() string {
	return fmt.Sprintf("can't perform GraphQL operation '%s' because no mocks were set", e.OperationName)
}

// Is lets errors.Is(err, ErrNoMock) match.
func (e *NoMockError) Is(target error) bool { return target == ErrNoMock }

// NoMock is the resolver used when a controller is built without one: every
// operation fails with a *NoMockError.
func NoMock() link.ResolverFunc {
	return func(_ context.Context, op *link.Operation) (*link.Result, error) {
		return nil, &NoMockError{OperationName: op.Name}
	}
}

// Config configures a Mock.
type Config struct {
	// Fallback answers operations no rule matches. Nil means NoMock.
	Fallback link.Resolver
}

// Call records one resolution.
type Call struct {
	Operation *link.Operation
	// Matched is false when the fallback (or NoMock) answered.
	Matched bool
	Err     error
}

// RespondFunc produces the outcome for a matched operation.
type RespondFunc func(ctx context.Context, op *link.Operation) (*link.Result, error)

// Mock is a rule-based resolver. It is safe for concurrent use.
type Mock struct {
	mu       sync.Mutex
	fallback link.Resolver
	rules    []*Rule
	calls    []Call
}

var _ link.Resolver = (*Mock)(nil)

// New creates an empty Mock.
func New(cfg Config) *Mock {
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = NoMock()
	}
	return &Mock{fallback: fallback}
}

// On registers a rule for operations called name. Until configured otherwise
// the rule answers with an empty result.
func (m *Mock) On(name string) *Rule {
	r := &Rule{m: m, name: name, respond: dataResponse(nil)}
	m.mu.Lock()
	m.rules = append(m.rules, r)
	m.mu.Unlock()
	return r
}

// Resolve implements link.Resolver.
func (m *Mock) Resolve(ctx context.Context, op *link.Operation) (*link.Result, error) {
	respond, delay, matched := m.match(op)

	var (
		res *link.Result
		err error
	)
	if !matched {
		res, err = m.fallback.Resolve(ctx, op)
	} else {
		if err = wait(ctx, delay); err == nil {
			res, err = respond(ctx, op)
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Operation: op, Matched: matched, Err: err})
	m.mu.Unlock()
	return res, err
}

// Calls returns a copy of every recorded resolution, in completion order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Mock) match(op *link.Operation) (RespondFunc, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rules) - 1; i >= 0; i-- {
		r := m.rules[i]
		if !r.matches(op) {
			continue
		}
		if r.remaining > 0 {
			r.remaining--
			if r.remaining == 0 {
				r.exhausted = true
			}
		}
		return r.respond, r.delay, true
	}
	return nil, 0, false
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func dataResponse(data map[string]any) RespondFunc {
	return func(context.Context, *link.Operation) (*link.Result, error) {
		return &link.Result{Data: data}, nil
	}
}

// Rule is a fluent builder for one mocked response. Setters may be chained in
// any order.
type Rule struct {
	m *Mock

	name      string
	vars      map[string]any
	predicate func(*link.Operation) bool
	respond   RespondFunc
	delay     time.Duration
	remaining int
	exhausted bool
}

// WithVariables narrows the rule to operations whose variables contain vars.
func (r *Rule) WithVariables(vars map[string]any) *Rule {
	r.m.mu.Lock()
	r.vars = vars
	r.m.mu.Unlock()
	return r
}

// Matching narrows the rule with an arbitrary predicate.
func (r *Rule) Matching(fn func(*link.Operation) bool) *Rule {
	r.m.mu.Lock()
	r.predicate = fn
	r.m.mu.Unlock()
	return r
}

// ReturnData answers with a result carrying data.
func (r *Rule) ReturnData(data map[string]any) *Rule {
	return r.RespondWith(dataResponse(data))
}

// ReturnResult answers with res as-is.
func (r *Rule) ReturnResult(res *link.Result) *Rule {
	return r.RespondWith(func(context.Context, *link.Operation) (*link.Result, error) {
		return res, nil
	})
}

// ReturnError fails matching operations with err and hands back the Mock so
// the next rule can be declared.
func (r *Rule) ReturnError(err error) *Mock {
	r.RespondWith(func(context.Context, *link.Operation) (*link.Result, error) {
		return nil, err
	})
	return r.m
}

// RespondWith computes the outcome per operation.
func (r *Rule) RespondWith(fn RespondFunc) *Rule {
	r.m.mu.Lock()
	if fn != nil {
		r.respond = fn
	}
	r.m.mu.Unlock()
	return r
}

// After delays the response by d. The delay is cut short if the resolving
// context ends.
func (r *Rule) After(d time.Duration) *Rule {
	r.m.mu.Lock()
	r.delay = d
	r.m.mu.Unlock()
	return r
}

// Times limits the rule to n matches. n <= 0 means unlimited.
func (r *Rule) Times(n int) *Rule {
	r.m.mu.Lock()
	if n > 0 {
		r.remaining = n
	} else {
		r.remaining = 0
	}
	r.exhausted = false
	r.m.mu.Unlock()
	return r
}

// matches must be called with r.m.mu held.
func (r *Rule) matches(op *link.Operation) bool {
	if r.exhausted || op == nil || op.Name != r.name {
		return false
	}
	if r.vars != nil && !operations.VariablesMatch(r.vars, op.Variables) {
		return false
	}
	if r.predicate != nil && !r.predicate(op) {
		return false
	}
	return true
}

// FromMap builds a Mock from fixtures keyed by operation name. A fixture may
// be a map[string]any of data, a *link.Result, an error, or a
// func(*link.Operation) (map[string]any, error).
func FromMap(fixtures map[string]any) (*Mock, error) {
	m := New(Config{})
	for name, fixture := range fixtures {
		switch v := fixture.(type) {
		case map[string]any:
			m.On(name).ReturnData(v)
		case *link.Result:
			m.On(name).ReturnResult(v)
		case error:
			m.On(name).ReturnError(v)
		case func(*link.Operation) (map[string]any, error):
			m.On(name).RespondWith(func(_ context.Context, op *link.Operation) (*link.Result, error) {
				data, err := v(op)
				if err != nil {
					return nil, err
				}
				return &link.Result{Data: data}, nil
			})
		case nil:
			m.On(name)
		default:
			return nil, fmt.Errorf("%w: %q has type %T", ErrInvalidFixture, name, fixture)
		}
	}
	return m, nil
}
