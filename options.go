package gqltest

// This file defines functional options that configure the Controller during
// construction.

import (
	"github.com/rs/zerolog"

	"github.com/mycelian/gqltest/client"
	"github.com/mycelian/gqltest/link"
)

// Option configures a Controller during construction in New.
type Option func(*Controller) error

// WithCacheOptions hands cache settings through to the execution client.
func WithCacheOptions(opts client.CacheOptions) Option {
	return func(c *Controller) error {
		c.cacheOptions = opts
		return nil
	}
}

// WithUnionOrIntersectionTypes hands abstract type metadata through to the
// execution client for union- and interface-aware matching.
func WithUnionOrIntersectionTypes(types ...client.PossibleType) Option {
	return func(c *Controller) error {
		c.possibleTypes = append(c.possibleTypes, types...)
		return nil
	}
}

// WithLinks inserts links ahead of the inflight tracker, so they see every
// operation before it is parked.
func WithLinks(links ...link.Link) Option {
	return func(c *Controller) error {
		c.links = append(c.links, links...)
		return nil
	}
}

// WithLogger replaces the environment-configured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) error {
		c.log = l
		return nil
	}
}

// WithMetrics overrides GQLTEST_METRICS.
func WithMetrics(enabled bool) Option {
	return func(c *Controller) error {
		c.metrics = enabled
		return nil
	}
}

// WithWrappers registers drain wrappers in order, as successive Wrap calls
// would.
func WithWrappers(wrappers ...Wrapper) Option {
	return func(c *Controller) error {
		for _, w := range wrappers {
			if err := c.Wrap(w); err != nil {
				return err
			}
		}
		return nil
	}
}
