package operations

import (
	"fmt"
	"testing"

	"github.com/mycelian/gqltest/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *Operations {
	ops := New()
	ops.Push(link.Query("Pets", map[string]any{"first": 10}))
	ops.Push(link.Mutation("AdoptPet", map[string]any{"id": "p1"}))
	ops.Push(link.Query("Pets", map[string]any{"first": 20}))
	return ops
}

func TestOperations_Lookups(t *testing.T) {
	t.Parallel()
	ops := seeded()

	assert.Equal(t, 3, ops.Len())
	assert.Equal(t, []string{"Pets", "AdoptPet", "Pets"}, ops.Names())
	assert.Len(t, ops.All(Filter{Name: "Pets"}), 2)
	assert.Len(t, ops.All(Filter{Kind: link.KindMutation}), 1)

	first, ok := ops.First(Filter{Name: "Pets"})
	require.True(t, ok)
	assert.Equal(t, 10, first.Variables["first"])

	last, ok := ops.Last(Filter{Name: "Pets"})
	require.True(t, ok)
	assert.Equal(t, 20, last.Variables["first"])

	second, ok := ops.Nth(1)
	require.True(t, ok)
	assert.Equal(t, "AdoptPet", second.Name)

	byID := ops.All(Filter{ID: second.ID})
	require.Len(t, byID, 1)
	assert.Same(t, second, byID[0])

	_, ok = ops.Nth(5)
	assert.False(t, ok)
	_, ok = ops.Nth(-4)
	assert.False(t, ok)
	_, ok = New().Last()
	assert.False(t, ok)
}

// fakeT captures assertion failures without failing the real test.
type fakeT struct{ failures []string }

func (f *fakeT) Errorf(format string, args ...any) {
	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

func TestAssertPerformed(t *testing.T) {
	t.Parallel()
	ops := seeded()

	tests := []struct {
		name   string
		op     string
		vars   map[string]any
		wantOK bool
	}{
		{name: "name only", op: "AdoptPet", wantOK: true},
		{name: "variables subset", op: "Pets", vars: map[string]any{"first": 20}, wantOK: true},
		{name: "variables mismatch", op: "Pets", vars: map[string]any{"first": 30}, wantOK: false},
		{name: "missing operation", op: "Owners", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeT{}
			got := AssertPerformed(ft, ops, tc.op, tc.vars)
			assert.Equal(t, tc.wantOK, got)
			assert.Equal(t, !tc.wantOK, len(ft.failures) > 0)
		})
	}
}

func TestAssertNotPerformed(t *testing.T) {
	t.Parallel()
	ops := seeded()

	ft := &fakeT{}
	assert.True(t, AssertNotPerformed(ft, ops, "Owners"))
	assert.False(t, AssertNotPerformed(ft, ops, "Pets"))
	require.Len(t, ft.failures, 1)
	assert.Contains(t, ft.failures[0], `"Pets"`)
}
