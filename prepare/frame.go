// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"cmp"
	"slices"

	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/params"
	"github.com/gogpu/rosen/region"
)

// finish runs the post-walk passes over the collected surfaces and stages
// the display params.
func (v *Visitor) finish() params.DisplayParams {
	order := frontToBack(v.f.surfaces)

	v.updateFilterCaches(order)
	v.f.occlusion = v.foldOcclusion(order)
	v.mergeGlobalDirty(order)
	v.mergeOverlays()
	v.mergeDisplayFilters()
	v.updateHwcOverlap(order)
	v.mergeHwcTransitions(order)
	v.mergeDisplayFilters()
	v.f.mgr.ClipDirtyRectWithinSurface()

	return v.publish(order)
}

// publish builds the display params, stages them and rolls the per-surface
// and per-display records over to the next frame.
func (v *Visitor) publish(order []*surfaceVisit) params.DisplayParams {
	f := &v.f
	rec := f.rec
	p := params.DisplayParams{
		ID:        f.display.ID(),
		Frame:     f.frame,
		Screen:    f.screen,
		Occlusion: f.occlusion,
		Surfaces:  make([]params.SurfaceParams, 0, len(order)),
	}

	lastSurfaces := make(map[node.ID]region.Rect, len(order))
	for i, s := range order {
		sp := params.SurfaceParams{
			ID:                     s.id,
			Name:                   s.name,
			Type:                   s.sp.Type,
			DstRect:                s.dst,
			VisibleRegion:          s.visible,
			OpaqueRegion:           s.opaque.And(s.visible),
			TransparentRegion:      s.transparentRegion,
			ZOrder:                 s.sp.ZOrder,
			Alpha:                  s.alpha,
			Occluded:               s.occluded,
			HardwareForcedDisabled: s.disabled,
			Reason:                 s.reason,
		}
		if s.sp.Buffer != nil {
			sp.SrcRect = srcRect(s)
		}
		p.Surfaces = append(p.Surfaces, sp)
		if s.animating {
			p.Animating = true
		}
		if s.hwcEnabled() && !s.mirror {
			p.Layers = append(p.Layers, layerInfo(s, sp, len(order)-i))
		}
		lastSurfaces[s.id] = s.draw
		if !s.mirror {
			v.rollSurface(s)
		}
	}
	slices.SortStableFunc(p.Layers, func(a, b params.LayerInfo) int {
		return cmp.Compare(a.Z, b.Z)
	})

	if v.recorder != nil {
		v.recorder.RecordDirty(f.frame, p.ID, f.mgr.CurrentFrameDirty(), f.mgr.DirtyByType())
	}
	p.Dirty = f.mgr.Sync()

	rec.frames = f.frame
	rec.lastScreen = f.screen
	rec.lastSurfaces = lastSurfaces
	rec.lastParams = p
	v.store.Stage(p)
	v.prune()
	return p
}

// rollSurface stores the state of s for the next frame.
func (v *Visitor) rollSurface(s *surfaceVisit) {
	rec := v.surfaces[s.id]
	if rec == nil {
		return
	}
	rec.seen = true
	rec.lastDst = s.dst
	rec.lastDraw = s.draw
	rec.lastZ = s.sp.ZOrder
	rec.lastShadow = s.props.Shadow.IsValid()
	rec.lastTransparent = s.transparentRegion
	rec.lastOccluded = s.occluded
	rec.lastHwc = s.hwcEnabled()
	rec.lastBufferSeq = bufferSequence(s.sp.Buffer)
	rec.lastAttraction = region.Rect{}
	if s.sp.AttractionAnimating {
		rec.lastAttraction = s.sp.AttractionRect
	}
	rec.last = *s
	rec.last.node = nil
	rec.hasLast = true
}

// prune drops the records of nodes that no longer exist.
func (v *Visitor) prune() {
	for id := range v.surfaces {
		if _, ok := v.tree.Get(id); !ok {
			delete(v.surfaces, id)
		}
	}
	for id := range v.subtrees {
		if _, ok := v.tree.Get(id); !ok {
			delete(v.subtrees, id)
		}
	}
	for id := range v.displays {
		if _, ok := v.tree.Get(id); !ok {
			delete(v.displays, id)
		}
	}
}

func layerInfo(s *surfaceVisit, sp params.SurfaceParams, z int) params.LayerInfo {
	l := params.LayerInfo{
		NodeID:    s.id,
		Name:      s.name,
		Z:         z,
		Src:       sp.SrcRect,
		Dst:       s.dst,
		Alpha:     s.alpha,
		AlphaMode: s.sp.AlphaMode,
	}
	if b := s.sp.Buffer; b != nil {
		l.Format = b.Format
		l.Size = b.Size
		l.Transform = b.Transform
	}
	return l
}

// srcRect maps the visible part of the bounds back into buffer pixels.
func srcRect(s *surfaceVisit) region.Rect {
	bw, bh := s.sp.Buffer.OrientedSize()
	if s.rect.IsEmpty() || s.dst.IsEmpty() || bw <= 0 || bh <= 0 {
		return region.Rect{}
	}
	x0 := s.dst.Left - s.rect.Left
	y0 := s.dst.Top - s.rect.Top
	buffer := region.NewRect(0, 0, bw, bh)
	switch s.props.FrameGravity {
	case node.GravityResize:
		return region.FromLTRB(
			x0*bw/s.rect.Width, y0*bh/s.rect.Height,
			(x0+s.dst.Width)*bw/s.rect.Width, (y0+s.dst.Height)*bh/s.rect.Height)
	case node.GravityCenter:
		dx := (bw - s.rect.Width) / 2
		dy := (bh - s.rect.Height) / 2
		return region.NewRect(x0+dx, y0+dy, s.dst.Width, s.dst.Height).Intersect(buffer)
	default:
		return region.NewRect(x0, y0, s.dst.Width, s.dst.Height).Intersect(buffer)
	}
}
