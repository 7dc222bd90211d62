package operations

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// VariablesMatch reports whether every entry of want is present in got with an
// equal value. Extra entries in got are ignored.
func VariablesMatch(want, got map[string]any) bool {
	for k, v := range want {
		gv, ok := got[k]
		if !ok || !cmp.Equal(v, gv) {
			return false
		}
	}
	return true
}

// AssertPerformed fails t unless an operation called name was resolved with
// variables containing vars. A nil vars only checks the name.
func AssertPerformed(t assert.TestingT, ops *Operations, name string, vars map[string]any, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	matching := ops.All(Filter{Name: name})
	if len(matching) == 0 {
		return assert.Fail(t, fmt.Sprintf("expected operation %q to have been performed; performed: [%s]",
			name, strings.Join(ops.Names(), ", ")), msgAndArgs...)
	}
	if vars == nil {
		return true
	}
	for _, op := range matching {
		if VariablesMatch(vars, op.Variables) {
			return true
		}
	}
	last := matching[len(matching)-1]
	return assert.Fail(t, fmt.Sprintf("operation %q was performed but never with the expected variables:\n%s",
		name, cmp.Diff(vars, last.Variables)), msgAndArgs...)
}

// AssertNotPerformed fails t if an operation called name was resolved.
func AssertNotPerformed(t assert.TestingT, ops *Operations, name string, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if n := len(ops.All(Filter{Name: name})); n > 0 {
		return assert.Fail(t, fmt.Sprintf("expected operation %q not to be performed, found %d", name, n), msgAndArgs...)
	}
	return true
}
