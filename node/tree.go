// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/rosen/internal/rlog"
)

// Errors returned by Tree.
var (
	// ErrUnknownNode is returned for an id that is not registered.
	ErrUnknownNode = errors.New("node: unknown node")

	// ErrDuplicateNode is returned when registering an id twice.
	ErrDuplicateNode = errors.New("node: duplicate node id")

	// ErrNotChild is returned when removing a node from a parent it is not
	// attached to.
	ErrNotChild = errors.New("node: not a child of parent")

	// ErrHasParent is returned when attaching a node that is already attached.
	ErrHasParent = errors.New("node: node already has a parent")

	// ErrCycle is returned when an edit would make a node its own ancestor.
	ErrCycle = errors.New("node: edit would create a cycle")

	// ErrNotSurface is returned by UpdateSurface for non-surface nodes.
	ErrNotSurface = errors.New("node: not a surface node")
)

type editOp uint8

const (
	editAdd editOp = iota
	editRemove
	editUpdate
	editUpdateSurface
	editMarkDirty
	editDestroy
	editCrossAttach
	editCrossDetach
)

type edit struct {
	op      editOp
	parent  ID
	child   ID
	index   int
	props   func(*Properties)
	surface func(*SurfaceProperties)
}

// Tree is the arena of render nodes, keyed by id.
//
// Nodes are registered immediately, but topology and property edits are
// queued and applied only by Commit, which the render thread calls between
// frames. The UI thread may queue edits while a traversal runs; the
// traversal never observes a half-applied edit.
type Tree struct {
	mu         sync.RWMutex
	nodes      map[ID]*Node
	pending    []edit
	generation uint64

	// crossDisplay indexes the surfaces shown on a display in addition to
	// its own subtree. It holds no ownership.
	crossDisplay map[ID][]ID
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[ID]*Node), crossDisplay: make(map[ID][]ID)}
}

// Register adds a detached node to the arena.
func (t *Tree) Register(n *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[n.id]; ok {
		return fmt.Errorf("register %s: %w", n.id, ErrDuplicateNode)
	}
	t.nodes[n.id] = n
	return nil
}

// AddChild queues attaching child to parent at index. A negative or out of
// range index appends.
func (t *Tree) AddChild(parent, child ID, index int) {
	t.queue(edit{op: editAdd, parent: parent, child: child, index: index})
}

// RemoveChild queues detaching child from parent. The area the child last
// covered is damaged on the next frame.
func (t *Tree) RemoveChild(parent, child ID) {
	t.queue(edit{op: editRemove, parent: parent, child: child})
}

// Update queues a property change. fn runs at Commit against the node's
// current properties.
func (t *Tree) Update(id ID, fn func(*Properties)) {
	t.queue(edit{op: editUpdate, child: id, props: fn})
}

// UpdateSurface queues a surface property change.
func (t *Tree) UpdateSurface(id ID, fn func(*SurfaceProperties)) {
	t.queue(edit{op: editUpdateSurface, child: id, surface: fn})
}

// MarkContentDirty queues a content invalidation, for example after the
// node's draw commands were replaced.
func (t *Tree) MarkContentDirty(id ID) {
	t.queue(edit{op: editMarkDirty, child: id})
}

// Destroy queues removal of a node and its descendants from the arena.
func (t *Tree) Destroy(id ID) {
	t.queue(edit{op: editDestroy, child: id})
}

// AttachCrossDisplay queues showing surface on display as well as on the
// display that owns it. The surface is prepared once per frame and mirrored
// on the other displays.
func (t *Tree) AttachCrossDisplay(display, surface ID) {
	t.queue(edit{op: editCrossAttach, parent: display, child: surface})
}

// DetachCrossDisplay queues removing a surface mirror from display.
func (t *Tree) DetachCrossDisplay(display, surface ID) {
	t.queue(edit{op: editCrossDetach, parent: display, child: surface})
}

func (t *Tree) queue(e edit) {
	t.mu.Lock()
	t.pending = append(t.pending, e)
	t.mu.Unlock()
}

// Pending returns the number of queued edits.
func (t *Tree) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending)
}

// Commit applies the queued edits in order and advances the generation.
//
// Invalid edits are dropped; every valid edit is still applied. The returned
// error joins the reasons of all dropped edits.
func (t *Tree) Commit() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for _, e := range t.pending {
		if err := t.apply(e); err != nil {
			errs = append(errs, err)
		}
	}
	t.pending = t.pending[:0]
	t.generation++
	return t.generation, errors.Join(errs...)
}

func (t *Tree) apply(e edit) error {
	switch e.op {
	case editAdd:
		return t.addChild(e.parent, e.child, e.index)
	case editRemove:
		return t.removeChild(e.parent, e.child)
	case editUpdate:
		n, ok := t.nodes[e.child]
		if !ok {
			return fmt.Errorf("update %s: %w", e.child, ErrUnknownNode)
		}
		old := n.props
		e.props(&n.props)
		n.flags.content = true
		if !old.geometryEqual(n.props) {
			n.flags.geometry = true
		}
		t.markSubtreeDirty(n)
	case editUpdateSurface:
		n, ok := t.nodes[e.child]
		if !ok {
			return fmt.Errorf("update surface %s: %w", e.child, ErrUnknownNode)
		}
		if n.surface == nil {
			return fmt.Errorf("update surface %s: %w", e.child, ErrNotSurface)
		}
		// The buffer may be edited in place, so its sequence is read first.
		seq, bg := bufferSequence(n.surface.Buffer), n.surface.Background
		e.surface(n.surface)
		if seq != bufferSequence(n.surface.Buffer) || bg != n.surface.Background {
			n.flags.content = true
		}
		t.markSubtreeDirty(n)
	case editMarkDirty:
		n, ok := t.nodes[e.child]
		if !ok {
			return fmt.Errorf("mark dirty %s: %w", e.child, ErrUnknownNode)
		}
		n.flags.content = true
		t.markSubtreeDirty(n)
	case editDestroy:
		n, ok := t.nodes[e.child]
		if !ok {
			return fmt.Errorf("destroy %s: %w", e.child, ErrUnknownNode)
		}
		if n.parent != 0 {
			if err := t.removeChild(n.parent, n.id); err != nil {
				return err
			}
		}
		t.destroy(n)
	case editCrossAttach:
		d, s, err := t.crossPair(e.parent, e.child)
		if err != nil {
			return fmt.Errorf("attach cross display: %w", err)
		}
		if !slices.Contains(t.crossDisplay[d.id], s.id) {
			t.crossDisplay[d.id] = append(t.crossDisplay[d.id], s.id)
		}
		s.surface.CrossDisplay = true
		t.markSubtreeDirty(d)
		t.markSubtreeDirty(s)
	case editCrossDetach:
		d, s, err := t.crossPair(e.parent, e.child)
		if err != nil {
			return fmt.Errorf("detach cross display: %w", err)
		}
		i := slices.Index(t.crossDisplay[d.id], s.id)
		if i < 0 {
			return fmt.Errorf("detach cross display %s from %s: %w", s.id, d.id, ErrNotChild)
		}
		t.crossDisplay[d.id] = slices.Delete(t.crossDisplay[d.id], i, i+1)
		s.surface.CrossDisplay = t.isMirrored(s.id)
		t.markSubtreeDirty(d)
		t.markSubtreeDirty(s)
	}
	return nil
}

func (t *Tree) isMirrored(id ID) bool {
	for _, ids := range t.crossDisplay {
		if slices.Contains(ids, id) {
			return true
		}
	}
	return false
}

func (t *Tree) crossPair(display, surface ID) (*Node, *Node, error) {
	d, ok := t.nodes[display]
	if !ok || d.kind != KindDisplay {
		return nil, nil, fmt.Errorf("display %s: %w", display, ErrUnknownNode)
	}
	s, ok := t.nodes[surface]
	if !ok {
		return nil, nil, fmt.Errorf("surface %s: %w", surface, ErrUnknownNode)
	}
	if s.surface == nil {
		return nil, nil, fmt.Errorf("surface %s: %w", surface, ErrNotSurface)
	}
	return d, s, nil
}

func (t *Tree) addChild(parentID, childID ID, index int) error {
	parent, ok := t.nodes[parentID]
	if !ok {
		return fmt.Errorf("add %s to %s: %w", childID, parentID, ErrUnknownNode)
	}
	child, ok := t.nodes[childID]
	if !ok {
		return fmt.Errorf("add %s to %s: %w", childID, parentID, ErrUnknownNode)
	}
	if child.parent != 0 {
		return fmt.Errorf("add %s to %s: %w", childID, parentID, ErrHasParent)
	}
	for a := parent; a != nil; a = t.nodes[a.parent] {
		if a.id == childID {
			return fmt.Errorf("add %s to %s: %w", childID, parentID, ErrCycle)
		}
		if a.parent == 0 {
			break
		}
	}
	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = slices.Insert(parent.children, index, childID)
	child.parent = parentID
	child.flags.content = true
	child.flags.geometry = true
	t.markSubtreeDirty(child)
	return nil
}

func (t *Tree) removeChild(parentID, childID ID) error {
	parent, ok := t.nodes[parentID]
	if !ok {
		return fmt.Errorf("remove %s from %s: %w", childID, parentID, ErrUnknownNode)
	}
	child, ok := t.nodes[childID]
	if !ok {
		return fmt.Errorf("remove %s from %s: %w", childID, parentID, ErrUnknownNode)
	}
	i := slices.Index(parent.children, childID)
	if child.parent != parentID || i < 0 {
		return fmt.Errorf("remove %s from %s: %w", childID, parentID, ErrNotChild)
	}
	parent.children = slices.Delete(parent.children, i, i+1)
	child.parent = 0
	parent.removedChildDirty = parent.removedChildDirty.
		JoinRect(child.Render.OldDirty).
		JoinRect(child.Render.SubtreeRect)
	t.markSubtreeDirty(parent)
	return nil
}

func (t *Tree) destroy(n *Node) {
	for _, c := range n.children {
		if child, ok := t.nodes[c]; ok && child.parent == n.id {
			t.destroy(child)
		}
	}
	delete(t.nodes, n.id)
	delete(t.crossDisplay, n.id)
	for d, ids := range t.crossDisplay {
		t.crossDisplay[d] = slices.DeleteFunc(ids, func(id ID) bool { return id == n.id })
	}
}

// markSubtreeDirty sets subtreeDirty on n and every ancestor. The walk always
// reaches the root: a detached node may carry a stale flag, so an already
// dirty ancestor does not prove the rest of the chain is marked.
func (t *Tree) markSubtreeDirty(n *Node) {
	for n != nil {
		n.flags.subtree = true
		if n.parent == 0 {
			return
		}
		n = t.nodes[n.parent]
	}
}

func bufferSequence(b *Buffer) uint64 {
	if b == nil {
		return 0
	}
	return b.Sequence
}

// Generation returns the number of commits so far.
func (t *Tree) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Len returns the number of registered nodes.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Get resolves an id. The second result is false if the node does not exist
// in this generation.
func (t *Tree) Get(id ID) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	return n, ok
}

// Parent resolves the parent of id.
func (t *Tree) Parent(id ID) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	if !ok || n.parent == 0 {
		return nil, false
	}
	p, ok := t.nodes[n.parent]
	return p, ok
}

// Children returns the children of id in paint order. Children that no
// longer exist, or whose parent link points elsewhere, are skipped.
func (t *Tree) Children(id ID) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		child, ok := t.nodes[c]
		if !ok || child.parent != id {
			rlog.Logger().Warn("node: inconsistent topology",
				"parent", id, "child", c, "found", ok)
			continue
		}
		out = append(out, child)
	}
	return out
}

// CrossDisplaySurfaces returns the surfaces mirrored onto display.
func (t *Tree) CrossDisplaySurfaces(display ID) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := t.crossDisplay[display]
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := t.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Ancestor returns the nearest ancestor of id with the given kind.
func (t *Tree) Ancestor(id ID, kind Kind) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	for ok && n.parent != 0 {
		n, ok = t.nodes[n.parent]
		if ok && n.kind == kind {
			return n, true
		}
	}
	return nil, false
}
