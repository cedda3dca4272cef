// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import (
	"golang.org/x/image/math/f64"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/region"
)

// flags are the per-node dirty bits. They are set by Tree.Commit and cleared
// by the traversal once the change has been accounted for.
type flags struct {
	content  bool
	geometry bool
	subtree  bool
}

// Node is one render node. All kinds share this struct; kind-specific data
// lives in the surface properties (surfaces) and the dirty manager
// (surfaces and displays).
//
// Topology and properties are only changed by [Tree.Commit]. The traversal
// writes [Node.Render] and clears the dirty flags.
type Node struct {
	id       ID
	kind     Kind
	name     string
	parent   ID
	children []ID

	props   Properties
	surface *SurfaceProperties
	flags   flags

	// removedChildDirty is the area last drawn by children detached since
	// the node was last prepared.
	removedChildDirty region.Rect

	// Dirty is the node's own dirty manager. Surfaces and displays get one
	// at construction; a nil manager makes the traversal skip the subtree.
	Dirty *dirty.Manager

	// Render is the state computed by the last traversal.
	Render RenderState
}

// RenderState is written by the quick-prepare pass.
type RenderState struct {
	// AbsMatrix maps the node space into screen space.
	AbsMatrix f64.Aff3

	// AbsRect is the screen-space bounds after clipping.
	AbsRect region.Rect

	// DrawRect is AbsRect grown by shadow and filter outsets.
	DrawRect region.Rect

	// OldDirty is the DrawRect of the previous frame.
	OldDirty region.Rect

	// OldDirtyInSurface is OldDirty clipped to the owning surface.
	OldDirtyInSurface region.Rect

	// SubtreeRect is the union of the draw rects of the node and all its
	// descendants in the last prepared frame.
	SubtreeRect region.Rect

	// Alpha is the accumulated opacity.
	Alpha float32

	// Prepared is true once the node has been visited.
	Prepared bool
}

// New creates a node of the given kind with default properties.
// Surface and display nodes get a dirty manager built with opts.
func New(id ID, kind Kind, name string, opts ...dirty.Option) *Node {
	n := &Node{
		id:    id,
		kind:  kind,
		name:  name,
		props: DefaultProperties(),
		flags: flags{content: true, geometry: true, subtree: true},
	}
	switch kind {
	case KindSurface:
		n.surface = &SurfaceProperties{}
		n.Dirty = dirty.NewManager(opts...)
	case KindDisplay:
		n.Dirty = dirty.NewManager(opts...)
	}
	return n
}

// NewSurface creates a surface node of the given type.
func NewSurface(id ID, name string, typ SurfaceType, opts ...dirty.Option) *Node {
	n := New(id, KindSurface, name, opts...)
	n.surface.Type = typ
	return n
}

// NewDisplay creates a display node.
func NewDisplay(id ID, name string, opts ...dirty.Option) *Node {
	return New(id, KindDisplay, name, opts...)
}

// ID returns the node id.
func (n *Node) ID() ID { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the debug name of the node.
func (n *Node) Name() string { return n.name }

// ParentID returns the parent id, zero for detached nodes.
func (n *Node) ParentID() ID { return n.parent }

// ChildIDs returns a copy of the child ids in paint order.
func (n *Node) ChildIDs() []ID {
	out := make([]ID, len(n.children))
	copy(out, n.children)
	return out
}

// Properties returns the resolved properties.
func (n *Node) Properties() Properties { return n.props }

// Surface returns the surface properties and true for surface nodes.
func (n *Node) Surface() (SurfaceProperties, bool) {
	if n.surface == nil {
		return SurfaceProperties{}, false
	}
	return *n.surface, true
}

// SurfaceType returns the surface type, SurfaceDefault for other kinds.
func (n *Node) SurfaceType() SurfaceType {
	if n.surface == nil {
		return SurfaceDefault
	}
	return n.surface.Type
}

// IsContentDirty reports whether the node's own content changed.
func (n *Node) IsContentDirty() bool { return n.flags.content }

// IsGeometryDirty reports whether the node moved or resized.
func (n *Node) IsGeometryDirty() bool { return n.flags.geometry }

// IsSubtreeDirty reports whether the node or any descendant changed.
func (n *Node) IsSubtreeDirty() bool { return n.flags.subtree }

// IsDirty reports whether the node's own content or geometry changed.
func (n *Node) IsDirty() bool { return n.flags.content || n.flags.geometry }

// ClearDirty clears all dirty flags. Called by the traversal once the node
// has been accounted for in the current frame.
func (n *Node) ClearDirty() { n.flags = flags{} }

// RemovedChildDirty returns the area left by detached children.
func (n *Node) RemovedChildDirty() region.Rect { return n.removedChildDirty }

// TakeRemovedChildDirty returns and resets the removed-children area.
func (n *Node) TakeRemovedChildDirty() region.Rect {
	r := n.removedChildDirty
	n.removedChildDirty = region.Rect{}
	return r
}
