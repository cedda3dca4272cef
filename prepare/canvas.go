// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// visitCanvas prepares a canvas, effect or root node. These nodes only
// update their draw rect, damage and filter bookkeeping; occlusion and
// hardware layers are surface concerns.
func (v *Visitor) visitCanvas(ctx TraversalContext, n *node.Node) region.Rect {
	id := n.ID()
	props := n.Properties()
	mgr := ctx.dirty

	if props.Hidden {
		if old := n.Render.OldDirty.JoinRect(n.Render.SubtreeRect); !old.IsEmpty() {
			mgr.MarkDirty(dirty.TypeContent, uint64(id), old)
		}
		n.Render.OldDirty = region.Rect{}
		n.Render.SubtreeRect = region.Rect{}
		n.ClearDirty()
		return region.Rect{}
	}

	abs := node.Concat(ctx.Matrix, props.Matrix)
	rect := node.MapRectI(abs, props.Bounds)
	draw := rect.Outset(props.Shadow.Outset() + props.Filter.Outset()).Intersect(ctx.Clip)

	changed := n.IsDirty() || ctx.ParentDirty
	if changed {
		mgr.MarkDirty(dirty.TypeContent, uint64(id), draw)
		mgr.MarkDirty(dirty.TypeContent, uint64(id), n.Render.OldDirty)
	}
	if r := n.TakeRemovedChildDirty(); !r.IsEmpty() {
		mgr.MarkDirty(dirty.TypeRemoveChild, uint64(id), r)
	}
	if props.NeedFilter() {
		v.registerFilter(ctx.Surface, id, draw, props.Filter, changed)
	}

	subtree := draw
	_, cached := v.subtrees[id]
	if n.IsSubtreeDirty() || ctx.ParentDirty || v.cfg.ForcePrepare || !cached {
		surfaces, filters := v.mark()
		subtree = subtree.JoinRect(v.visitChildren(ctx.child(abs, props, rect, n.IsGeometryDirty()), n, false))
		v.cacheSubtree(id, surfaces, filters)
	} else {
		subtree = subtree.JoinRect(n.Render.SubtreeRect)
		v.replaySubtree(id)
	}

	inSurface := draw
	if ctx.Surface != 0 {
		inSurface = draw.Intersect(ctx.SurfaceRect)
	}
	n.Render = node.RenderState{
		AbsMatrix:         abs,
		AbsRect:           rect.Intersect(ctx.Clip),
		DrawRect:          draw,
		OldDirty:          draw,
		OldDirtyInSurface: inSurface,
		SubtreeRect:       subtree,
		Alpha:             ctx.Alpha * props.Alpha,
		Prepared:          true,
	}
	n.ClearDirty()
	return subtree
}
