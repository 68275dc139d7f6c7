package compositor

import (
	"fmt"

	"github.com/jezek/xgb/damage"
	"github.com/jezek/xgb/render"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

// Window is one node of the stacking forest: a live client window plus
// the extension resources the compositor has attached to it. Children
// are kept in bottom-to-top order: children[0] is the bottommost
// sibling, the last element is the topmost.
type Window struct {
	ID     xproto.Window
	Parent *Window

	children []*Window

	X, Y          int16
	Width, Height uint16
	Visible       bool

	Picture   render.Picture
	hasPic    bool
	Region    xfixes.Region
	hasRegion bool
	Damage    damage.Damage
	hasDamage bool
}

// Rect returns the window's current geometry.
func (w *Window) Rect() Rect {
	return Rect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
}

// Forest is the rooted, ordered tree mirroring the server's stacking
// order. root is a synthetic node standing in for the X root window:
// it is never itself painted and has no ID allocated to it.
type Forest struct {
	root *Window
	byID map[xproto.Window]*Window
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{
		root: &Window{},
		byID: make(map[xproto.Window]*Window),
	}
}

// Lookup returns the node for id, if present.
func (f *Forest) Lookup(id xproto.Window) (*Window, bool) {
	w, ok := f.byID[id]
	return w, ok
}

// Len reports how many live windows the forest currently holds (P1:
// should always equal the size of any parallel window table the caller
// maintains).
func (f *Forest) Len() int {
	return len(f.byID)
}

// AppendNewChild inserts a brand-new node for id as the topmost child of
// parent (create-notify: "new window appears at the top of its
// siblings"). Pass 0 for parent to attach directly under the root.
func (f *Forest) AppendNewChild(parent, id xproto.Window) (*Window, error) {
	if _, exists := f.byID[id]; exists {
		return nil, fmt.Errorf("forest: window %d already present", id)
	}
	p, err := f.resolveParentOrRoot(parent)
	if err != nil {
		return nil, err
	}
	w := &Window{ID: id, Parent: p}
	p.children = append(p.children, w)
	f.byID[id] = w
	return w, nil
}

// PrependNewChild is AppendNewChild but places the node at the bottom of
// its siblings instead of the top.
func (f *Forest) PrependNewChild(parent, id xproto.Window) (*Window, error) {
	if _, exists := f.byID[id]; exists {
		return nil, fmt.Errorf("forest: window %d already present", id)
	}
	p, err := f.resolveParentOrRoot(parent)
	if err != nil {
		return nil, err
	}
	w := &Window{ID: id, Parent: p}
	p.children = append(p.children, nil)
	copy(p.children[1:], p.children[:len(p.children)-1])
	p.children[0] = w
	f.byID[id] = w
	return w, nil
}

func (f *Forest) resolveParentOrRoot(parent xproto.Window) (*Window, error) {
	if parent == 0 {
		return f.root, nil
	}
	p, ok := f.byID[parent]
	if !ok {
		return nil, fmt.Errorf("forest: unknown parent %d", parent)
	}
	return p, nil
}

// Remove detaches id (and whatever subtree still hangs beneath it — in
// practice the server destroys descendants first, so this is usually a
// leaf) from the forest, dropping it and its subtree from the ID index.
// Recursive search is unnecessary given the byID index, but the
// semantics match spec: find id anywhere in the tree, then detach.
func (f *Forest) Remove(id xproto.Window) bool {
	w, ok := f.byID[id]
	if !ok {
		return false
	}
	f.detachFromParent(w)
	f.dropSubtreeFromIndex(w)
	return true
}

func (f *Forest) detachFromParent(w *Window) {
	if w.Parent == nil {
		return
	}
	siblings := w.Parent.children
	for i, c := range siblings {
		if c == w {
			w.Parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	w.Parent = nil
}

func (f *Forest) dropSubtreeFromIndex(w *Window) {
	delete(f.byID, w.ID)
	for _, c := range w.children {
		f.dropSubtreeFromIndex(c)
	}
}

// Reparent detaches id and reattaches it as the topmost child of
// newParent (reparent-notify semantics).
func (f *Forest) Reparent(id, newParent xproto.Window) error {
	w, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("forest: unknown window %d", id)
	}
	p, err := f.resolveParentOrRoot(newParent)
	if err != nil {
		return err
	}
	f.detachFromParent(w)
	w.Parent = p
	p.children = append(p.children, w)
	return nil
}

// StackRef names where Move places a window relative to a sibling.
type StackRef int

const (
	// StackBefore places the window immediately below the reference
	// sibling (or, with no reference, at the very bottom).
	StackBefore StackRef = iota
	// StackAfter places the window immediately above the reference
	// sibling (or, with no reference, at the very top).
	StackAfter
)

// Move restacks id among its current siblings. With hasSibling false,
// id moves to the bottom (StackBefore) or top (StackAfter) of its
// sibling list — this is how configure-notify's above_sibling=None and
// circulate-notify map onto the forest. With hasSibling true, id is
// placed immediately before or after sibling, which must share id's
// parent.
func (f *Forest) Move(id xproto.Window, ref StackRef, sibling xproto.Window, hasSibling bool) error {
	w, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("forest: unknown window %d", id)
	}
	if w.Parent == nil {
		return fmt.Errorf("forest: window %d has no parent", id)
	}
	parent := w.Parent

	if !hasSibling {
		f.detachFromParent(w)
		w.Parent = parent
		switch ref {
		case StackBefore:
			parent.children = append([]*Window{w}, parent.children...)
		case StackAfter:
			parent.children = append(parent.children, w)
		}
		return nil
	}

	sib, ok := f.byID[sibling]
	if !ok {
		return fmt.Errorf("forest: unknown sibling %d", sibling)
	}
	if sib.Parent != parent {
		return fmt.Errorf("forest: window %d and sibling %d are not siblings", id, sibling)
	}

	f.detachFromParent(w)
	w.Parent = parent
	idx := -1
	for i, c := range parent.children {
		if c == sib {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Sibling vanished between detach and reinsert (shouldn't happen
		// under single-threaded dispatch); fall back to top.
		parent.children = append(parent.children, w)
		return nil
	}
	insertAt := idx
	if ref == StackAfter {
		insertAt = idx + 1
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[insertAt+1:], parent.children[insertAt:])
	parent.children[insertAt] = w
	return nil
}

// Iterator walks the forest bottom-to-top: a node is visited before its
// children, then traversal continues to the next sibling; at the end of
// a sibling list it walks back up via parent pointers until it finds an
// unvisited sibling. It allocates nothing after construction and holds
// only a current-position pointer, so a concurrent mutation of the
// child lists cannot make it crash, since the next step it takes depends
// only on pointers still reachable from its current position. The
// traversal is then no longer guaranteed correct: it may stop early,
// skip nodes, or yield a node a second time.
type Iterator struct {
	root    *Window
	cur     *Window
	started bool
}

// BottomToTop returns a fresh iterator over the forest.
func (f *Forest) BottomToTop() *Iterator {
	return &Iterator{root: f.root}
}

// Next advances the iterator and reports whether a node was produced.
func (it *Iterator) Next() (*Window, bool) {
	if !it.started {
		it.started = true
		if len(it.root.children) == 0 {
			return nil, false
		}
		it.cur = it.root.children[0]
		return it.cur, true
	}

	if it.cur == nil {
		return nil, false
	}

	if len(it.cur.children) > 0 {
		it.cur = it.cur.children[0]
		return it.cur, true
	}

	for it.cur.Parent != nil {
		siblings := it.cur.Parent.children
		idx := indexOf(siblings, it.cur)
		if idx >= 0 && idx+1 < len(siblings) {
			it.cur = siblings[idx+1]
			return it.cur, true
		}
		it.cur = it.cur.Parent
	}
	it.cur = nil
	return nil, false
}

func indexOf(siblings []*Window, w *Window) int {
	for i, c := range siblings {
		if c == w {
			return i
		}
	}
	return -1
}
