// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"golang.org/x/image/math/f64"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// TraversalContext is the state accumulated from the display down to the
// node being visited.
//
// It is passed by value. A node hands a modified copy to its children, so
// the parent's state is restored on return without explicit bookkeeping.
type TraversalContext struct {
	// Matrix maps the parent space into screen space.
	Matrix f64.Aff3

	// Clip is the screen rectangle content is clipped to.
	Clip region.Rect

	// Alpha is the accumulated opacity of the ancestors.
	Alpha float32

	// Surface is the nearest enclosing surface, zero outside any surface.
	Surface node.ID

	// SurfaceRect is the destination rectangle of Surface.
	SurfaceRect region.Rect

	// WindowZ is the z-order of the top-level window being visited.
	WindowZ int

	// ParentDirty is set when an ancestor moved or resized, so every
	// descendant must recompute and damage its rectangles.
	ParentDirty bool

	// Animating is set inside an animating ancestor.
	Animating bool

	// Scaled is set inside an ancestor that scales its content.
	Scaled bool

	// Depth is the distance from the display.
	Depth int

	// Sibling is the paint index of the node among its siblings.
	Sibling int

	// dirty receives the damage of non-surface nodes: the enclosing
	// surface's manager, or the display's outside any surface.
	dirty *dirty.Manager
}

func rootContext(screen node.ScreenInfo, mgr *dirty.Manager, parentDirty bool) TraversalContext {
	return TraversalContext{
		Matrix:      node.Identity(),
		Clip:        screen.Rect(),
		Alpha:       1,
		ParentDirty: parentDirty,
		dirty:       mgr,
	}
}

// child returns the context for the children of a node with the given
// absolute matrix and properties.
func (c TraversalContext) child(abs f64.Aff3, props node.Properties, rect region.Rect, geometryDirty bool) TraversalContext {
	out := c
	out.Matrix = abs
	out.Alpha = c.Alpha * props.Alpha
	if props.ClipToBounds {
		out.Clip = c.Clip.Intersect(rect)
	}
	out.ParentDirty = c.ParentDirty || geometryDirty
	out.Animating = c.Animating || props.Animating
	out.Scaled = c.Scaled || node.HasScale(props.Matrix)
	out.Depth = c.Depth + 1
	return out
}
