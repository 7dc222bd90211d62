package gqltest

import "errors"

var (
	// ErrNilWrapper is returned by Wrap when given a nil wrapper.
	ErrNilWrapper = errors.New("wrapper cannot be nil")

	// ErrWrapperRegistered is returned by Wrap when the same wrapper value is
	// registered twice.
	ErrWrapperRegistered = errors.New("wrapper already registered")

	// ErrReentrantDrain is returned when ResolveAll is called from inside a
	// drain of the same controller.
	ErrReentrantDrain = errors.New("resolve called from inside a drain")

	// ErrNotIdle is returned by the UntilIdle wrapper when operations are still
	// pending after the last allowed round.
	ErrNotIdle = errors.New("operations still pending")

	// ErrInvalidRounds is returned by UntilIdle for a non-positive round limit.
	ErrInvalidRounds = errors.New("max rounds must be > 0")
)

// IsNotIdle reports whether err came from an UntilIdle drain that gave up.
func IsNotIdle(err error) bool { return errors.Is(err, ErrNotIdle) }
