// Package client is the shared execution client that application code issues
// operations through. It does no caching or normalization of its own: cache
// options and possible-type metadata are stored untouched for whatever sits
// behind the link chain.
package client

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mycelian/gqltest/link"
)

var (
	// ErrNoLinks is returned by New when the chain would be empty.
	ErrNoLinks = errors.New("at least one link is required")

	// ErrNilOperation is reported through the future when Execute gets nil.
	ErrNilOperation = errors.New("operation cannot be nil")
)

// CacheOptions are opaque cache settings carried for the underlying cache.
type CacheOptions map[string]any

// PossibleType lists the concrete members of a union or interface so results
// can be matched against abstract types.
type PossibleType struct {
	Kind          string   `json:"kind"`
	Name          string   `json:"name"`
	PossibleTypes []string `json:"possibleTypes,omitempty"`
}

// Client sends operations down a link chain.
type Client struct {
	chain         link.Forward
	cacheOptions  CacheOptions
	possibleTypes []PossibleType
	log           zerolog.Logger
}

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithCacheOptions stores cache settings for the underlying cache.
func WithCacheOptions(opts CacheOptions) Option {
	return func(c *Client) error {
		c.cacheOptions = opts
		return nil
	}
}

// WithPossibleTypes records union and interface membership.
func WithPossibleTypes(types ...PossibleType) Option {
	return func(c *Client) error {
		c.possibleTypes = append(c.possibleTypes, types...)
		return nil
	}
}

// WithLogger sets the logger used for per-operation debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// New builds a client over links, applied left to right.
func New(links []link.Link, opts ...Option) (*Client, error) {
	if len(links) == 0 {
		return nil, ErrNoLinks
	}
	c := &Client{
		chain:        link.From(links...),
		cacheOptions: CacheOptions{},
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Execute dispatches op. The returned future settles when the chain produces
// an outcome.
func (c *Client) Execute(ctx context.Context, op *link.Operation) *link.Future {
	if op == nil {
		return link.Completed(nil, ErrNilOperation)
	}
	c.log.Debug().Str("operation", op.Name).Str("kind", string(op.Kind)).Str("id", op.ID).Msg("dispatching operation")
	return c.chain(ctx, op)
}

// Query dispatches op as a query.
func (c *Client) Query(ctx context.Context, op *link.Operation) *link.Future {
	if op != nil {
		op.Kind = link.KindQuery
	}
	return c.Execute(ctx, op)
}

// Mutate dispatches op as a mutation.
func (c *Client) Mutate(ctx context.Context, op *link.Operation) *link.Future {
	if op != nil {
		op.Kind = link.KindMutation
	}
	return c.Execute(ctx, op)
}

// CacheOptions returns the configured cache settings.
func (c *Client) CacheOptions() CacheOptions { return c.cacheOptions }

// PossibleTypes returns the configured abstract type metadata.
func (c *Client) PossibleTypes() []PossibleType {
	return append([]PossibleType(nil), c.possibleTypes...)
}
