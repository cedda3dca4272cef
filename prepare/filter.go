// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/region"
)

// fixedPoint damages the whole rect of every filter in fs that meets the
// damage of mgr, rescanning until a pass adds nothing. A damaged filter can
// reach another filter, hence the loop. merged marks filters already
// handled and is updated in place; each filter is merged at most once, so
// the loop ends after at most len(fs)+1 passes. active, when not nil,
// excludes filters from the scan. The merged area is returned.
func fixedPoint(mgr *dirty.Manager, fs []filterRecord, merged []bool, active func(filterRecord) bool) region.Region {
	var added region.Region
	for changed := true; changed; {
		changed = false
		for i, f := range fs {
			if merged[i] || (active != nil && !active(f)) {
				continue
			}
			if !mgr.IsDirty(f.rect) {
				continue
			}
			merged[i] = true
			clipped := f.rect.Intersect(mgr.ActiveRect())
			if mgr.CurrentFrameDirty().ContainsRect(clipped) {
				continue
			}
			mgr.MarkDirty(dirty.TypeFilter, uint64(f.id), f.rect)
			added = added.OrRect(clipped)
			changed = true
		}
	}
	return added
}

// mergeDisplayFilters runs the display-level fixed point over global
// filters and the filters of visible surfaces.
func (v *Visitor) mergeDisplayFilters() {
	if len(v.f.filterMerged) < len(v.f.filters) {
		grown := make([]bool, len(v.f.filters))
		copy(grown, v.f.filterMerged)
		v.f.filterMerged = grown
	}
	added := fixedPoint(v.f.mgr, v.f.filters, v.f.filterMerged, v.filterActive)
	v.f.filterDamage.OrSelf(added)
}

// filterActive reports whether a filter takes part in the display fixed
// point: global filters always, surface filters while their surface is
// visible.
func (v *Visitor) filterActive(f filterRecord) bool {
	if f.global || f.surface == 0 {
		return true
	}
	s, ok := v.f.byID[f.surface]
	return ok && !s.occluded
}

// filterDirty reports whether the filter was changed or damaged this frame.
func (v *Visitor) filterDirty(i int) bool {
	return v.f.filters[i].dirty || (i < len(v.f.filterMerged) && v.f.filterMerged[i])
}
