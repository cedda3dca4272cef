// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import (
	"errors"
	"testing"

	"github.com/gogpu/rosen/region"
)

func newTestTree(t *testing.T, nodes ...*Node) *Tree {
	t.Helper()
	tr := NewTree()
	for _, n := range nodes {
		if err := tr.Register(n); err != nil {
			t.Fatalf("Register(%s) error = %v", n.ID(), err)
		}
	}
	return tr
}

func mustCommit(t *testing.T, tr *Tree) {
	t.Helper()
	if _, err := tr.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func childIDs(ns []*Node) []ID {
	ids := make([]ID, len(ns))
	for i, n := range ns {
		ids[i] = n.ID()
	}
	return ids
}

func TestTreeRegisterDuplicate(t *testing.T) {
	tr := newTestTree(t, New(1, KindCanvas, "a"))
	err := tr.Register(New(1, KindCanvas, "b"))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("Register() error = %v, want %v", err, ErrDuplicateNode)
	}
}

func TestTreeEditsAreStaged(t *testing.T) {
	tr := newTestTree(t, NewDisplay(1, "display"), New(2, KindCanvas, "c"))
	tr.AddChild(1, 2, -1)

	if got := len(tr.Children(1)); got != 0 {
		t.Errorf("Children() before Commit = %d nodes, want 0", got)
	}
	if got := tr.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want 1", got)
	}

	gen, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if gen != 1 {
		t.Errorf("Commit() generation = %d, want 1", gen)
	}
	if got := childIDs(tr.Children(1)); len(got) != 1 || got[0] != 2 {
		t.Errorf("Children() = %v, want [2]", got)
	}
	if tr.Pending() != 0 {
		t.Errorf("Pending() after Commit = %d, want 0", tr.Pending())
	}
}

func TestTreeAddChildOrder(t *testing.T) {
	tr := newTestTree(t, NewDisplay(1, "d"),
		New(2, KindCanvas, "a"), New(3, KindCanvas, "b"), New(4, KindCanvas, "c"))
	tr.AddChild(1, 2, -1)
	tr.AddChild(1, 3, -1)
	tr.AddChild(1, 4, 0)
	mustCommit(t, tr)

	got := childIDs(tr.Children(1))
	want := []ID{4, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Children() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Children()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTreeCommitErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Tree)
		want error
	}{
		{"unknown parent", func(tr *Tree) { tr.AddChild(99, 2, -1) }, ErrUnknownNode},
		{"already attached", func(tr *Tree) { tr.AddChild(1, 3, -1) }, ErrHasParent},
		{"cycle", func(tr *Tree) { tr.AddChild(3, 1, -1) }, ErrCycle},
		{"not child", func(tr *Tree) { tr.RemoveChild(1, 3) }, ErrNotChild},
		{"update unknown", func(tr *Tree) { tr.Update(42, func(*Properties) {}) }, ErrUnknownNode},
		{"surface on canvas", func(tr *Tree) { tr.UpdateSurface(3, func(*SurfaceProperties) {}) }, ErrNotSurface},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTree(t, NewDisplay(1, "d"), New(2, KindCanvas, "a"), New(3, KindCanvas, "b"))
			tr.AddChild(1, 2, -1)
			tr.AddChild(2, 3, -1)
			mustCommit(t, tr)

			tt.edit(tr)
			_, err := tr.Commit()
			if !errors.Is(err, tt.want) {
				t.Errorf("Commit() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTreeCommitAppliesValidEdits(t *testing.T) {
	tr := newTestTree(t, NewDisplay(1, "d"), New(2, KindCanvas, "a"))
	tr.AddChild(1, 99, -1)
	tr.AddChild(1, 2, -1)
	_, err := tr.Commit()
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Commit() error = %v, want %v", err, ErrUnknownNode)
	}
	if got := len(tr.Children(1)); got != 1 {
		t.Errorf("Children() = %d nodes, want 1", got)
	}
}

func TestTreeDirtyPropagation(t *testing.T) {
	d, s, c := NewDisplay(1, "d"), NewSurface(2, "s", SurfaceAppWindow), New(3, KindCanvas, "c")
	tr := newTestTree(t, d, s, c)
	tr.AddChild(1, 2, -1)
	tr.AddChild(2, 3, -1)
	mustCommit(t, tr)
	for _, n := range []*Node{d, s, c} {
		n.ClearDirty()
	}

	tr.Update(3, func(p *Properties) { p.Alpha = 0.5 })
	mustCommit(t, tr)

	if !c.IsContentDirty() {
		t.Error("canvas IsContentDirty() = false, want true")
	}
	if c.IsGeometryDirty() {
		t.Error("alpha change should not set geometry dirty")
	}
	for _, n := range []*Node{d, s, c} {
		if !n.IsSubtreeDirty() {
			t.Errorf("%s IsSubtreeDirty() = false, want true", n.Name())
		}
	}
	if s.IsContentDirty() || d.IsContentDirty() {
		t.Error("ancestors should only be subtree dirty")
	}

	c.ClearDirty()
	s.ClearDirty()
	d.ClearDirty()
	tr.Update(3, func(p *Properties) { p.Bounds = region.RectF{W: 10, H: 10} })
	mustCommit(t, tr)
	if !c.IsGeometryDirty() {
		t.Error("bounds change should set geometry dirty")
	}
}

func TestTreePropagationPastStaleAncestor(t *testing.T) {
	d, s, c := NewDisplay(1, "d"), NewSurface(2, "s", SurfaceAppWindow), New(3, KindCanvas, "c")
	tr := newTestTree(t, d, s, c)
	tr.AddChild(1, 2, -1)
	tr.AddChild(2, 3, -1)
	mustCommit(t, tr)
	d.ClearDirty()
	c.ClearDirty()
	// s keeps a stale subtree flag.

	tr.MarkContentDirty(3)
	mustCommit(t, tr)
	if !d.IsSubtreeDirty() {
		t.Error("display IsSubtreeDirty() = false, want true")
	}
}

func TestTreeRemoveChildRecordsDamage(t *testing.T) {
	d, c := NewDisplay(1, "d"), New(2, KindCanvas, "c")
	tr := newTestTree(t, d, c)
	tr.AddChild(1, 2, -1)
	mustCommit(t, tr)
	c.Render.OldDirty = region.NewRect(10, 10, 20, 20)
	c.Render.SubtreeRect = region.NewRect(0, 0, 5, 5)
	d.ClearDirty()

	tr.RemoveChild(1, 2)
	mustCommit(t, tr)

	if want := region.FromLTRB(0, 0, 30, 30); d.RemovedChildDirty() != want {
		t.Errorf("RemovedChildDirty() = %v, want %v", d.RemovedChildDirty(), want)
	}
	if !d.IsSubtreeDirty() {
		t.Error("parent IsSubtreeDirty() = false, want true")
	}
	if c.ParentID() != 0 {
		t.Errorf("ParentID() = %v, want 0", c.ParentID())
	}
	if got := d.TakeRemovedChildDirty(); got.IsEmpty() || !d.RemovedChildDirty().IsEmpty() {
		t.Errorf("TakeRemovedChildDirty() = %v, leftover %v", got, d.RemovedChildDirty())
	}
}

func TestTreeDestroy(t *testing.T) {
	tr := newTestTree(t, NewDisplay(1, "d"), New(2, KindCanvas, "a"), New(3, KindCanvas, "b"))
	tr.AddChild(1, 2, -1)
	tr.AddChild(2, 3, -1)
	mustCommit(t, tr)

	tr.Destroy(2)
	mustCommit(t, tr)

	if _, ok := tr.Get(2); ok {
		t.Error("Get(2) found destroyed node")
	}
	if _, ok := tr.Get(3); ok {
		t.Error("Get(3) found descendant of destroyed node")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestTreeChildrenSkipsInconsistent(t *testing.T) {
	d, a, b := NewDisplay(1, "d"), New(2, KindCanvas, "a"), New(3, KindCanvas, "b")
	tr := newTestTree(t, d, a, b)
	tr.AddChild(1, 2, -1)
	tr.AddChild(1, 3, -1)
	mustCommit(t, tr)

	b.parent = 42
	if got := childIDs(tr.Children(1)); len(got) != 1 || got[0] != 2 {
		t.Errorf("Children() = %v, want [2]", got)
	}
}

func TestTreeAncestor(t *testing.T) {
	tr := newTestTree(t, NewDisplay(1, "d"), NewSurface(2, "s", SurfaceAppWindow), New(3, KindCanvas, "c"))
	tr.AddChild(1, 2, -1)
	tr.AddChild(2, 3, -1)
	mustCommit(t, tr)

	if s, ok := tr.Ancestor(3, KindSurface); !ok || s.ID() != 2 {
		t.Errorf("Ancestor(3, Surface) = %v, %v, want 2", s, ok)
	}
	if d, ok := tr.Ancestor(3, KindDisplay); !ok || d.ID() != 1 {
		t.Errorf("Ancestor(3, Display) = %v, %v, want 1", d, ok)
	}
	if _, ok := tr.Ancestor(1, KindDisplay); ok {
		t.Error("Ancestor(1, Display) found an ancestor of the root")
	}
	if p, ok := tr.Parent(3); !ok || p.ID() != 2 {
		t.Errorf("Parent(3) = %v, %v, want 2", p, ok)
	}
}

func TestTreeSurfaceBufferMarksContent(t *testing.T) {
	s := NewSurface(2, "s", SurfaceSelfDrawing)
	tr := newTestTree(t, NewDisplay(1, "d"), s)
	tr.AddChild(1, 2, -1)
	mustCommit(t, tr)
	s.ClearDirty()

	tr.UpdateSurface(2, func(sp *SurfaceProperties) { sp.ZOrder = 4 })
	mustCommit(t, tr)
	if s.IsContentDirty() {
		t.Error("z-order change should not set content dirty")
	}
	if !s.IsSubtreeDirty() {
		t.Error("z-order change should set subtree dirty")
	}

	s.ClearDirty()
	tr.UpdateSurface(2, func(sp *SurfaceProperties) { sp.Buffer = &Buffer{Sequence: 1} })
	mustCommit(t, tr)
	if !s.IsContentDirty() {
		t.Error("new buffer should set content dirty")
	}
	if sp, _ := s.Surface(); sp.ZOrder != 4 {
		t.Errorf("ZOrder = %d, want 4", sp.ZOrder)
	}
}

func TestTreeCrossDisplay(t *testing.T) {
	d1, d2 := NewDisplay(1, "main"), NewDisplay(2, "mirror")
	s := NewSurface(3, "shared", SurfaceAppWindow)
	tr := newTestTree(t, d1, d2, s, New(4, KindCanvas, "c"))
	tr.AddChild(1, 3, -1)
	mustCommit(t, tr)
	d2.ClearDirty()

	tr.AttachCrossDisplay(2, 3)
	tr.AttachCrossDisplay(2, 3)
	mustCommit(t, tr)
	if got := childIDs(tr.CrossDisplaySurfaces(2)); len(got) != 1 || got[0] != 3 {
		t.Errorf("CrossDisplaySurfaces(2) = %v, want [3]", got)
	}
	if !d2.IsSubtreeDirty() {
		t.Error("attaching a mirror should dirty the display")
	}
	if sp, _ := s.Surface(); !sp.CrossDisplay {
		t.Error("attached surface should be marked CrossDisplay")
	}

	tr.AttachCrossDisplay(2, 4)
	if _, err := tr.Commit(); !errors.Is(err, ErrNotSurface) {
		t.Errorf("AttachCrossDisplay(canvas) error = %v, want %v", err, ErrNotSurface)
	}

	tr.Destroy(3)
	mustCommit(t, tr)
	if got := tr.CrossDisplaySurfaces(2); len(got) != 0 {
		t.Errorf("CrossDisplaySurfaces(2) after Destroy = %d nodes, want 0", len(got))
	}
}
