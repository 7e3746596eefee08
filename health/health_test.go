package health

import (
	"reflect"
	"testing"
)

func TestEdgeTriggered(t *testing.T) {
	tr := NewTracker([]string{"a", "b"})
	if got := tr.MarkBad("a"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("got %v", got)
	}
	if got := tr.MarkBad("a", "b"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("a is already bad, got %v", got)
	}
	if got := tr.MarkOK("a"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("got %v", got)
	}
	if got := tr.MarkOK("a"); len(got) != 0 {
		t.Fatalf("a is already ok, got %v", got)
	}
	if tr.Status("a") != StatusOK || !tr.IsBad("b") {
		t.Fatal("unexpected status")
	}
}

func TestAllBad(t *testing.T) {
	tr := NewTracker(nil)
	if tr.AllBad() {
		t.Fatal("empty catalog is never all bad")
	}
	tr.Reset([]string{"a", "b"})
	tr.MarkBad("a", "zz")
	if tr.AllBad() {
		t.Fatal("b is not bad yet")
	}
	tr.MarkBad("b")
	if !tr.AllBad() {
		t.Fatal("expected all bad")
	}
	counts := tr.Counts()
	if counts[StatusBad] != 2 || len(counts) != 1 {
		t.Fatalf("ids outside the catalog must not count, got %v", counts)
	}
	tr.Reset([]string{"a", "b"})
	if tr.AllBad() || tr.Status("a") != StatusUnknown {
		t.Fatal("reset should clear status")
	}
}
