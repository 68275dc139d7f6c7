package compositor

import (
	"testing"

	"github.com/jezek/xgb/xproto"
)

func collectOrder(f *Forest) []xproto.Window {
	var ids []xproto.Window
	it := f.BottomToTop()
	for {
		w, ok := it.Next()
		if !ok {
			break
		}
		ids = append(ids, w.ID)
	}
	return ids
}

func TestAppendNewChildGoesOnTop(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustAppend(t, f, 0, 2)
	mustAppend(t, f, 0, 3)

	got := collectOrder(f)
	want := []xproto.Window{1, 2, 3}
	assertOrder(t, got, want)
}

func TestPrependNewChildGoesOnBottom(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustPrepend(t, f, 0, 2)

	got := collectOrder(f)
	want := []xproto.Window{2, 1}
	assertOrder(t, got, want)
}

// L1: create then destroy is a no-op on the forest's externally visible
// state (window count and order of what remains).
func TestCreateThenDestroyIsNoOp(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	before := collectOrder(f)

	mustAppend(t, f, 0, 2)
	if !f.Remove(2) {
		t.Fatal("Remove(2) = false, want true")
	}

	after := collectOrder(f)
	assertOrder(t, before, after)
	if f.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", f.Len())
	}
}

// L2: configure to the bottom then configure with no reference (None)
// both land the window at the bottom of its siblings.
func TestConfigureToBottomThenNoneBothBottom(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustAppend(t, f, 0, 2)
	mustAppend(t, f, 0, 3)

	if err := f.Move(3, StackBefore, 1, true); err != nil {
		t.Fatalf("Move before sibling: %v", err)
	}
	afterSibling := collectOrder(f)

	if err := f.Move(3, StackBefore, 0, false); err != nil {
		t.Fatalf("Move to bottom: %v", err)
	}
	afterNone := collectOrder(f)

	want := []xproto.Window{3, 1, 2}
	assertOrder(t, afterSibling, want)
	assertOrder(t, afterNone, want)
}

func TestMoveAfterSibling(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustAppend(t, f, 0, 2)
	mustAppend(t, f, 0, 3)

	if err := f.Move(1, StackAfter, 2, true); err != nil {
		t.Fatalf("Move after sibling: %v", err)
	}
	got := collectOrder(f)
	want := []xproto.Window{2, 1, 3}
	assertOrder(t, got, want)
}

func TestMoveToTopWithNoSibling(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustAppend(t, f, 0, 2)

	if err := f.Move(1, StackAfter, 0, false); err != nil {
		t.Fatalf("Move to top: %v", err)
	}
	got := collectOrder(f)
	want := []xproto.Window{2, 1}
	assertOrder(t, got, want)
}

// L3: reparent composes — reparenting twice ends up exactly where a
// single reparent straight to the final parent would.
func TestReparentComposability(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 10) // parent A
	mustAppend(t, f, 0, 20) // parent B
	mustAppend(t, f, 10, 1) // child under A

	if err := f.Reparent(1, 0); err != nil {
		t.Fatalf("reparent to root: %v", err)
	}
	if err := f.Reparent(1, 20); err != nil {
		t.Fatalf("reparent to B: %v", err)
	}
	w, ok := f.Lookup(1)
	if !ok || w.Parent.ID != 20 {
		t.Fatalf("window 1 parent = %v, want 20", w.Parent)
	}

	// Direct single-step reparent to the same destination from scratch
	// produces the same parent relationship.
	g := NewForest()
	mustAppend(t, g, 0, 10)
	mustAppend(t, g, 0, 20)
	mustAppend(t, g, 10, 1)
	if err := g.Reparent(1, 20); err != nil {
		t.Fatalf("direct reparent to B: %v", err)
	}
	w2, _ := g.Lookup(1)
	if w2.Parent.ID != w.Parent.ID {
		t.Fatalf("composed reparent parent %d != direct reparent parent %d", w.Parent.ID, w2.Parent.ID)
	}
	assertOrder(t, collectOrder(f), collectOrder(g))
}

// P4: every node's parent pointer is valid (reachable from root) after a
// sequence of mutations.
func TestParentPointersStayValid(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustAppend(t, f, 1, 2)
	mustAppend(t, f, 1, 3)
	if err := f.Reparent(2, 0); err != nil {
		t.Fatalf("reparent: %v", err)
	}
	f.Remove(3)

	for id, w := range f.byID {
		if w.Parent == nil && w != f.root {
			t.Fatalf("window %d has nil parent but is not root", id)
		}
		if w.Parent != nil {
			found := false
			for _, c := range w.Parent.children {
				if c == w {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("window %d not present in its parent's children", id)
			}
		}
	}
}

// P5: the bottom-to-top iterator visits each live node exactly once.
func TestIteratorVisitsEachNodeOnce(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustAppend(t, f, 1, 2)
	mustAppend(t, f, 1, 3)
	mustAppend(t, f, 0, 4)
	mustAppend(t, f, 4, 5)

	seen := map[xproto.Window]int{}
	it := f.BottomToTop()
	for {
		w, ok := it.Next()
		if !ok {
			break
		}
		seen[w.ID]++
	}
	if len(seen) != f.Len() {
		t.Fatalf("visited %d distinct nodes, want %d", len(seen), f.Len())
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("window %d visited %d times, want 1", id, count)
		}
	}
}

func TestIteratorSurvivesMidIterationRemoval(t *testing.T) {
	f := NewForest()
	mustAppend(t, f, 0, 1)
	mustAppend(t, f, 0, 2)
	mustAppend(t, f, 0, 3)

	it := f.BottomToTop()
	_, ok := it.Next()
	if !ok {
		t.Fatal("expected first node")
	}
	f.Remove(2)

	// Must not panic; further calls either terminate or return remaining
	// reachable nodes.
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
	}
}

func mustAppend(t *testing.T, f *Forest, parent, id xproto.Window) {
	t.Helper()
	if _, err := f.AppendNewChild(parent, id); err != nil {
		t.Fatalf("AppendNewChild(%d, %d): %v", parent, id, err)
	}
}

func mustPrepend(t *testing.T, f *Forest, parent, id xproto.Window) {
	t.Helper()
	if _, err := f.PrependNewChild(parent, id); err != nil {
		t.Fatalf("PrependNewChild(%d, %d): %v", parent, id, err)
	}
}

func assertOrder(t *testing.T, got, want []xproto.Window) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
