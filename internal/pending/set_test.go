package pending

import (
	"sync"
	"testing"
)

type item struct{ name string }

func TestSet_IdentityMembership(t *testing.T) {
	t.Parallel()
	s := New[*item]()
	a1 := &item{name: "Alpha"}
	a2 := &item{name: "Alpha"}

	if !s.Add(a1) || !s.Add(a2) {
		t.Fatal("equal-looking pointers must be tracked independently")
	}
	if s.Add(a1) {
		t.Fatal("duplicate add must report false")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", s.Len())
	}
}

func TestSet_RemoveIsIdempotent(t *testing.T) {
	t.Parallel()
	s := New[string]()
	s.Add("a")
	if !s.Remove("a") {
		t.Fatal("expected first remove to report true")
	}
	if s.Remove("a") {
		t.Fatal("expected second remove to be a no-op")
	}
	if s.Has("a") {
		t.Fatal("removed member still present")
	}
}

func TestSet_SnapshotOrderAndIsolation(t *testing.T) {
	t.Parallel()
	s := New[string]()
	for _, v := range []string{"c", "a", "b"} {
		s.Add(v)
	}
	snap := s.Snapshot()
	s.Remove("a")
	s.Add("d")

	want := []string{"c", "a", "b"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot %v, want %v", snap, want)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("snapshot %v, want %v", snap, want)
		}
	}
	if got := s.Snapshot(); len(got) != 3 || got[2] != "d" {
		t.Fatalf("unexpected live contents %v", got)
	}
}

func TestSet_ConcurrentAddRemove(t *testing.T) {
	t.Parallel()
	s := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Add(v)
			_ = s.Snapshot()
			s.Remove(v)
		}(i)
	}
	wg.Wait()
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %d", s.Len())
	}
}
