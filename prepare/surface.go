// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"math"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/internal/rlog"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// visitSurface prepares a surface node and its subtree.
func (v *Visitor) visitSurface(ctx TraversalContext, n *node.Node) region.Rect {
	log := rlog.Logger()
	id := n.ID()
	if owner, ok := v.crossOwner(n); ok && owner != v.f.display.ID() {
		v.mirrorCross(ctx, n, owner)
		return region.Rect{}
	}
	if n.Dirty == nil {
		log.Warn("prepare: surface has no dirty manager", "surface", id, "name", n.Name())
		return region.Rect{}
	}
	props := n.Properties()
	sp, _ := n.Surface()
	if props.Hidden {
		n.ClearDirty()
		if rec, ok := v.surfaces[id]; ok {
			rec.hasLast = false
		}
		if sp.CrossDisplay {
			v.cross[id] = crossEntry{vsync: v.vsync, owner: v.f.display.ID()}
		}
		return region.Rect{}
	}
	rec := v.surfaceRecord(n)

	abs := node.Concat(ctx.Matrix, props.Matrix)
	rect := node.MapRectI(abs, props.Bounds)
	dst := rect.Intersect(ctx.Clip)
	alpha := ctx.Alpha * props.Alpha
	s := &surfaceVisit{
		node:          n,
		id:            id,
		name:          n.Name(),
		sp:            sp,
		props:         props,
		parentSurface: ctx.Surface,
		windowZ:       ctx.WindowZ,
		depth:         ctx.Depth,
		sibling:       ctx.Sibling,
		order:         len(v.f.surfaces),
		rect:          rect,
		dst:           dst,
		draw:          rect.Outset(props.Shadow.Outset() + props.Filter.Outset()).Intersect(ctx.Clip),
		alpha:         alpha,
		transparent:   alpha < 1 || sp.IsTransparentContent(),
		animating:     ctx.Animating || props.Animating || sp.AttractionAnimating,
		scaled:        ctx.Scaled,
		axisAligned:   node.IsAxisAligned(abs),
	}
	if ctx.Surface == 0 {
		s.windowZ = sp.ZOrder
	}
	if props.NeedFilter() {
		s.filter = rect.Outset(props.Filter.Outset()).Intersect(ctx.Clip)
	}
	if rec.seen {
		s.zChanged = sp.ZOrder != rec.lastZ
		s.posChanged = dst != rec.lastDst
		s.shadowChanged = props.Shadow.IsValid() != rec.lastShadow
		s.outsetChanged = !s.posChanged && s.draw != rec.lastDraw
	}
	v.addSurface(s)

	mgr := n.Dirty
	mgr.Clear()
	mgr.SetSurfaceRect(dst)
	if n.IsDirty() || ctx.ParentDirty || s.posChanged {
		mgr.MarkDirty(dirty.TypeContent, uint64(id), dst)
	}
	if r := n.TakeRemovedChildDirty(); !r.IsEmpty() {
		mgr.MarkDirty(dirty.TypeRemoveChild, uint64(id), r)
	}

	v.updateOpaque(s, rec)
	ownFilters := len(v.f.filters)
	if props.NeedFilter() {
		v.registerFilter(id, id, s.filter, props.Filter, n.IsDirty() || s.posChanged)
	}

	needPrepare := n.IsSubtreeDirty() || ctx.ParentDirty || v.f.dirtyGlobalFilter ||
		!rec.lastOccluded || v.cfg.ForcePrepare
	if _, cached := v.subtrees[id]; !cached {
		needPrepare = true
	}
	subtree := s.draw
	surfaces, filters := v.mark()
	if needPrepare {
		cctx := ctx.child(abs, props, rect, n.IsGeometryDirty() || s.posChanged)
		if sp.Type.IsMainWindow() {
			cctx.Clip = ctx.Clip.Intersect(rect)
		}
		cctx.Alpha = alpha
		cctx.Animating = s.animating
		cctx.Surface = id
		cctx.SurfaceRect = dst
		cctx.WindowZ = s.windowZ
		cctx.dirty = mgr
		subtree = subtree.JoinRect(v.visitChildren(cctx, n, v.leashWithMainWindow(n, sp)))
		v.cacheSubtree(id, surfaces, filters)
	} else {
		log.Debug("prepare: surface subtree skipped", "surface", id, "name", s.name)
		subtree = subtree.JoinRect(n.Render.SubtreeRect)
		v.replaySubtree(id)
	}
	descendants := v.f.surfaces[surfaces:]

	if sp.Type.IsSelfDrawing() {
		s.hwcCandidate = true
		s.nodeReason = v.hwcNodeReason(s, abs)
		if s.nodeReason != node.HwcEnabled {
			v.disableHwc(s, s.nodeReason)
		}
	}

	v.mergeLocalFilters(mgr, id, ownFilters)
	mgr.ClipDirtyRectWithinSurface()
	s.dirty = mgr.CurrentFrameDirty()

	n.Render = node.RenderState{
		AbsMatrix:         abs,
		AbsRect:           dst,
		DrawRect:          s.draw,
		OldDirty:          s.draw,
		OldDirtyInSurface: s.draw,
		SubtreeRect:       subtree,
		Alpha:             alpha,
		Prepared:          true,
	}
	n.ClearDirty()

	if sp.CrossDisplay {
		v.cross[id] = crossEntry{
			vsync:   v.vsync,
			owner:   v.f.display.ID(),
			offsetX: v.f.screen.OffsetX,
			offsetY: v.f.screen.OffsetY,
			visits:  append([]*surfaceVisit{s}, descendants...),
		}
	}
	return subtree
}

// crossOwner returns the display a cross-display surface belongs to.
func (v *Visitor) crossOwner(n *node.Node) (node.ID, bool) {
	sp, ok := n.Surface()
	if !ok || !sp.CrossDisplay {
		return 0, false
	}
	d, ok := v.tree.Ancestor(n.ID(), node.KindDisplay)
	if !ok {
		return 0, false
	}
	return d.ID(), true
}

// mirrorCross adds a surface owned by another display, with its subtree,
// translated into this display's coordinates.
//
// When the owner has not been visited yet in this vsync the surfaces are
// shown as the owner last prepared them, and damaged in full the next time
// they are mirrored.
func (v *Visitor) mirrorCross(ctx TraversalContext, n *node.Node, owner node.ID) {
	log := rlog.Logger()
	id := n.ID()
	rec := v.f.rec
	if rec.staleCross == nil {
		rec.staleCross = make(map[node.ID]bool)
	}
	stale := rec.staleCross[id]
	visits, offX, offY, fresh := v.crossSource(id, owner)
	if fresh {
		delete(rec.staleCross, id)
	} else {
		rec.staleCross[id] = true
	}
	if len(visits) == 0 {
		log.Debug("prepare: cross-display surface not shown", "surface", id, "owner", owner, "fresh", fresh)
		return
	}

	dx := offX - v.f.screen.OffsetX
	dy := offY - v.f.screen.OffsetY
	clip := ctx.Clip
	root := visits[0]
	for _, src := range visits {
		target, ok := v.tree.Get(src.id)
		if !ok {
			continue
		}
		s := *src
		s.node = target
		s.windowZ = root.sp.ZOrder
		s.depth = ctx.Depth + src.depth - root.depth
		s.order = len(v.f.surfaces)
		if src == root {
			s.parentSurface = 0
			s.sibling = ctx.Sibling
		}
		s.rect = src.rect.Offset(dx, dy)
		s.dst = src.dst.Offset(dx, dy).Intersect(clip)
		s.draw = src.draw.Offset(dx, dy).Intersect(clip)
		s.filter = src.filter.Offset(dx, dy).Intersect(clip)
		s.opaque = src.opaque.Offset(dx, dy).AndRect(clip)
		s.transparentRegion = src.transparentRegion.Offset(dx, dy).AndRect(clip)
		if stale {
			s.dirty = region.FromRect(s.dst)
		} else {
			s.dirty = src.dirty.Offset(dx, dy).AndRect(clip)
		}
		s.visible, s.occluded, s.cacheOccludes = region.Region{}, false, false
		s.hwcCandidate, s.disabled, s.reason = false, false, node.HwcEnabled
		s.mirror, s.replayed = true, false
		v.addSurface(&s)
	}
	log.Debug("prepare: cross-display mirror", "surface", id, "from", owner,
		"to", v.f.display.ID(), "surfaces", len(visits), "fresh", fresh, "dx", dx, "dy", dy)
}

// crossSource returns the surfaces to mirror for a cross-display surface and
// the offsets of the display they were prepared on. fresh reports whether
// they are current for this vsync: prepared by the owner, or left unchanged
// by an owner that was skipped.
func (v *Visitor) crossSource(id, owner node.ID) (visits []*surfaceVisit, offX, offY int, fresh bool) {
	if e, ok := v.cross[id]; ok && e.vsync == v.vsync && e.owner == owner {
		return e.visits, e.offsetX, e.offsetY, true
	}
	fresh = v.prepared[owner]
	d, ok := v.displays[owner]
	if !ok || d.frames == 0 {
		return nil, 0, 0, fresh
	}
	ids := append([]node.ID{id}, v.subtrees[id].surfaces...)
	for _, sid := range ids {
		rec, ok := v.surfaces[sid]
		if !ok || !rec.hasLast {
			continue
		}
		last := rec.last
		last.dirty = region.Region{}
		last.zChanged, last.posChanged, last.shadowChanged, last.outsetChanged = false, false, false, false
		visits = append(visits, &last)
	}
	if len(visits) == 0 || visits[0].id != id {
		return nil, 0, 0, fresh
	}
	return visits, d.lastScreen.OffsetX, d.lastScreen.OffsetY, fresh
}

// updateOpaque recomputes the cached opaque region when any of its inputs
// changed, and derives the transparent region from it.
func (v *Visitor) updateOpaque(s *surfaceVisit, rec *surfaceRecord) {
	base := opaqueBase{
		screen:      v.f.screen.Rect(),
		rotation:    v.f.screen.Rotation,
		radius:      s.props.CornerRadius,
		rect:        s.rect,
		dst:         s.dst,
		transparent: s.transparent,
		leash:       s.sp.Type.IsLeash(),
	}
	if !rec.baseValid || rec.base != base {
		if rec.baseValid {
			rlog.Logger().Debug("prepare: opaque region recomputed", "surface", s.id, "name", s.name)
		}
		rec.opaque = opaqueRegion(base)
		rec.base, rec.baseValid = base, true
	}
	s.opaque = rec.opaque
	if base.leash {
		// A leash groups windows and draws nothing itself.
		s.transparentRegion = region.Region{}
		return
	}
	s.transparentRegion = region.FromRect(s.dst).Sub(s.opaque)
}

// opaqueRegion returns the area a surface covers completely: its clipped
// rect minus the rounded corners, or nothing when it is blended.
func opaqueRegion(b opaqueBase) region.Region {
	if b.transparent || b.leash || b.dst.IsEmpty() {
		return region.Region{}
	}
	g := region.FromRect(b.dst)
	r := int(math.Ceil(b.radius))
	if r <= 0 {
		return g
	}
	rc := b.rect
	corners := region.FromRects(
		region.NewRect(rc.Left, rc.Top, r, r),
		region.NewRect(rc.Right()-r, rc.Top, r, r),
		region.NewRect(rc.Left, rc.Bottom()-r, r, r),
		region.NewRect(rc.Right()-r, rc.Bottom()-r, r, r),
	)
	return g.Sub(corners)
}

// leashWithMainWindow reports whether n is a leash wrapping a main window,
// whose children are then visited last child first.
func (v *Visitor) leashWithMainWindow(n *node.Node, sp node.SurfaceProperties) bool {
	if !sp.Type.IsLeash() {
		return false
	}
	for _, c := range v.tree.Children(n.ID()) {
		if c.SurfaceType().IsMainWindow() {
			return true
		}
	}
	return false
}

// mergeLocalFilters runs the filter fixed point of one surface: every
// non-global filter of the surface whose rect meets the surface damage is
// damaged as a whole.
func (v *Visitor) mergeLocalFilters(mgr *dirty.Manager, surface node.ID, from int) {
	var local []filterRecord
	for _, f := range v.f.filters[from:] {
		if f.surface == surface && !f.global {
			local = append(local, f)
		}
	}
	if len(local) == 0 {
		return
	}
	fixedPoint(mgr, local, make([]bool, len(local)), nil)
}
