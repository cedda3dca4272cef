// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"maps"
	"slices"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/internal/rlog"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// mergeGlobalDirty folds the per-surface changes into the display damage.
//
// The checks for one surface are independent: every one that fires adds its
// rectangles and none removes anything.
func (v *Visitor) mergeGlobalDirty(order []*surfaceVisit) {
	mgr := v.f.mgr
	last := v.f.rec.lastSurfaces
	seen := make(map[node.ID]bool, len(order))

	for _, s := range order {
		id := uint64(s.id)
		seen[s.id] = true
		lastDraw, existed := last[s.id]

		if s.mirror {
			// Cross-display surfaces bring the damage of the display they
			// were prepared on, moved into this display's space.
			mergeRegion(mgr, dirty.TypeCrossDisplay, id, s.dirty.And(s.visible))
			if !existed {
				mgr.MarkDirty(dirty.TypeCrossDisplay, id, s.draw)
			} else if lastDraw != s.draw {
				mgr.MarkDirty(dirty.TypeCrossDisplay, id, lastDraw)
				mgr.MarkDirty(dirty.TypeCrossDisplay, id, s.draw)
			}
			continue
		}

		if !s.hwcCandidate {
			// Self-drawing content is merged by mergeHwcTransitions once
			// the hardware layer decision is final.
			mergeRegion(mgr, dirty.TypeContent, id, s.dirty.And(s.visible))
		}
		if !existed {
			mgr.MarkDirty(dirty.TypeAppearance, id, s.draw)
		}
		if s.replayed {
			continue
		}

		rec := v.surfaces[s.id]
		if rec == nil || !rec.seen {
			continue
		}
		if s.transparent && !s.hwcCandidate {
			mergeRegion(mgr, dirty.TypeTransparent, id, s.dirty.AndRect(rec.lastDraw))
		}
		if !s.transparentRegion.Equal(rec.lastTransparent) {
			mergeRegion(mgr, dirty.TypeTransparent, id, s.transparentRegion.Xor(rec.lastTransparent))
		}
		if s.zChanged {
			mgr.MarkDirty(dirty.TypeZOrder, id, rec.lastDraw)
		}
		if s.posChanged || s.animating {
			mgr.MarkDirty(dirty.TypePosition, id, rec.lastDraw)
			mgr.MarkDirty(dirty.TypePosition, id, s.draw)
		}
		if s.shadowChanged || s.outsetChanged {
			// The shadow or filter outset grew or shrank around a fixed dst.
			mgr.MarkDirty(dirty.TypeShadow, id, rec.lastDraw)
			mgr.MarkDirty(dirty.TypeShadow, id, s.draw)
		}
		if s.sp.AttractionAnimating {
			mgr.MarkDirty(dirty.TypeAttraction, id, s.sp.AttractionRect)
		}
		if !rec.lastAttraction.IsEmpty() {
			mgr.MarkDirty(dirty.TypeAttraction, id, rec.lastAttraction)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(last)) {
		if seen[id] {
			continue
		}
		rlog.Logger().Debug("prepare: surface disappeared", "surface", id)
		mgr.MarkDirty(dirty.TypeAppearance, uint64(id), last[id])
	}
}

// mergeOverlays adds the round-corner cutouts and the refresh rate counter.
func (v *Visitor) mergeOverlays() {
	mgr := v.f.mgr
	for _, r := range v.f.cutouts {
		mgr.MarkDirty(dirty.TypeRoundCorner, 0, r)
	}
	if v.cfg.ShowRefreshRate {
		mgr.MarkDirty(dirty.TypeDebug, 0, v.cfg.RefreshRateRect)
	}
}

// mergeHwcTransitions damages self-drawing surfaces that change between
// hardware and GPU composition, and GPU-composed ones with new content.
// Hardware layers are composed by the display and add no damage.
func (v *Visitor) mergeHwcTransitions(order []*surfaceVisit) {
	mgr := v.f.mgr
	for _, s := range order {
		if !s.hwcCandidate || s.mirror {
			continue
		}
		enabled := s.hwcEnabled()
		if !enabled {
			mergeRegion(mgr, dirty.TypeContent, uint64(s.id), s.dirty.And(s.visible))
		}
		rec := v.surfaces[s.id]
		if rec == nil || !rec.seen {
			continue
		}
		if enabled != rec.lastHwc {
			mgr.MarkDirty(dirty.TypeHardware, uint64(s.id), s.dst)
			mgr.MarkDirty(dirty.TypeHardware, uint64(s.id), rec.lastDst)
		}
		if !enabled && bufferSequence(s.sp.Buffer) != rec.lastBufferSeq {
			mergeRegion(mgr, dirty.TypeHardware, uint64(s.id), s.visible)
		}
	}
}

func mergeRegion(mgr *dirty.Manager, typ dirty.Type, id uint64, g region.Region) {
	for _, r := range g.Rects() {
		mgr.MarkDirty(typ, id, r)
	}
}

func bufferSequence(b *node.Buffer) uint64 {
	if b == nil {
		return 0
	}
	return b.Sequence
}
