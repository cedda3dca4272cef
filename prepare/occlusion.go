// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/internal/rlog"
	"github.com/gogpu/rosen/region"
)

// updateFilterCaches decides, back to front, which surface filter caches
// may stand in for opaque content this frame.
//
// A cache is usable only if the cache subsystem marked it valid, the surface
// itself is unchanged and nothing behind it was damaged inside the filter
// rect. A valid cache that fails the last two tests is invalidated: its
// filter rect is damaged and it does not occlude.
func (v *Visitor) updateFilterCaches(order []*surfaceVisit) {
	var behind region.Region
	for i := len(order) - 1; i >= 0; i-- {
		s := order[i]
		if s.sp.FilterCacheValid && s.props.NeedFilter() && !s.mirror {
			self := !s.dirty.IsEmpty() || s.posChanged || s.zChanged
			if self || behind.IsIntersectWithRect(s.filter) {
				rlog.Logger().Debug("prepare: filter cache invalidated", "surface", s.id, "name", s.name)
				v.f.mgr.MarkDirty(dirty.TypeFilter, uint64(s.id), s.filter)
				v.f.filterDamage = v.f.filterDamage.OrRect(s.filter)
			} else {
				s.cacheOccludes = s.dst.IsInsideOf(s.filter)
			}
		}
		behind.OrSelf(s.dirty)
		if s.posChanged || s.zChanged {
			if rec := v.surfaces[s.id]; rec != nil {
				behind = behind.OrRect(rec.lastDraw)
			}
			behind = behind.OrRect(s.draw)
		}
	}
}

// foldOcclusion computes visible regions front to back and returns the
// accumulated opaque coverage.
//
// Every surface is occludable. Only main windows and leashes that are
// opaque, still, unscaled and axis aligned add their opaque region to the
// coverage; a usable filter cache adds the whole surface.
func (v *Visitor) foldOcclusion(order []*surfaceVisit) region.Region {
	var acc region.Region
	for _, s := range order {
		s.visible = region.FromRect(s.dst)
		if !v.cfg.OcclusionEnabled {
			continue
		}
		s.visible = s.visible.Sub(acc)
		s.occluded = s.visible.IsEmpty()
		if !s.contributesOcclusion() {
			continue
		}
		if s.cacheOccludes {
			acc = acc.OrRect(s.dst)
		} else {
			acc = acc.Or(s.opaque)
		}
	}
	return acc
}
