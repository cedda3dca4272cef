// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"golang.org/x/image/math/f64"

	"github.com/gogpu/rosen/internal/rlog"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// hwcNodeReason runs the checks that depend on the surface alone.
func (v *Visitor) hwcNodeReason(s *surfaceVisit, abs f64.Aff3) node.HwcDisabledReason {
	bg := s.sp.Background.A
	switch {
	case !v.cfg.HwcEnabled:
		return node.HwcDisabledByConfig
	case s.sp.Buffer == nil:
		return node.HwcDisabledNoBuffer
	case s.alpha < 1:
		return node.HwcDisabledAlpha
	case !node.IsAxisAligned(abs):
		return node.HwcDisabledRotation
	// A zero alpha background is no background: nothing is painted
	// under the buffer, so only a partly transparent one blends.
	case bg > 0 && bg < 1 && !v.cfg.backgroundAllowed(s.name):
		return node.HwcDisabledBackground
	case !bufferCovers(s):
		return node.HwcDisabledBufferSize
	}
	return node.HwcEnabled
}

// bufferCovers reports whether the buffer, after its transform, fills the
// surface bounds. Resize gravity scales any non-empty buffer to fit.
func bufferCovers(s *surfaceVisit) bool {
	w, h := s.sp.Buffer.OrientedSize()
	if w <= 0 || h <= 0 {
		return false
	}
	if s.props.FrameGravity == node.GravityResize {
		return true
	}
	return w >= s.rect.Width && h >= s.rect.Height
}

// disableHwc forces a surface to GPU composition for the rest of the frame.
// The first reason wins; a disabled surface is never enabled again within
// the frame.
func (v *Visitor) disableHwc(s *surfaceVisit, reason node.HwcDisabledReason) {
	if s.disabled {
		return
	}
	s.disabled = true
	s.reason = reason
	rlog.Logger().Debug("prepare: hwc disabled", "surface", s.id, "name", s.name, "reason", reason)
	if v.recorder != nil {
		v.recorder.RecordHwcDisabled(v.f.frame, s.id, s.name, reason)
	}
}

// updateHwcOverlap runs the checks that depend on what is in front of each
// self-drawing surface. Protected surfaces cannot be read back by the GPU
// and are exempt.
func (v *Visitor) updateHwcOverlap(order []*surfaceVisit) {
	pos := make(map[*surfaceVisit]int, len(order))
	for i, s := range order {
		pos[s] = i
	}

	var claimed region.Region
	for i, s := range order {
		if !s.hwcCandidate || s.disabled || s.occluded {
			continue
		}
		if !s.sp.Protected {
			if claimed.IsIntersectWithRect(s.dst) && !v.cfg.overlapAllowed(s.name) {
				v.disableHwc(s, node.HwcDisabledOverlap)
				continue
			}
			if reason := v.filterInFront(s, i, pos); reason != node.HwcEnabled {
				v.disableHwc(s, reason)
				continue
			}
			if v.f.filterDamage.IsIntersectWithRect(s.dst) {
				v.disableHwc(s, node.HwcDisabledFilterInvalidation)
				continue
			}
		}
		claimed = claimed.OrRect(s.dst)
	}

	// Surfaces nested in a disabled self-drawing surface follow it.
	for _, s := range v.f.surfaces {
		if !s.hwcCandidate || s.disabled {
			continue
		}
		for p := s.parentSurface; p != 0; {
			ps, ok := v.f.byID[p]
			if !ok {
				break
			}
			if ps.hwcCandidate && ps.disabled {
				v.disableHwc(s, node.HwcDisabledParentDisabled)
				break
			}
			p = ps.parentSurface
		}
	}
}

// filterInFront returns the reason a filter drawn in front of s prevents it
// from being a hardware layer, or HwcEnabled.
func (v *Visitor) filterInFront(s *surfaceVisit, at int, pos map[*surfaceVisit]int) node.HwcDisabledReason {
	for i, f := range v.f.filters {
		if f.surface == s.id || !f.rect.Intersects(s.dst) {
			continue
		}
		if f.surface != 0 {
			owner, ok := v.f.byID[f.surface]
			if !ok || pos[owner] >= at {
				continue
			}
		}
		if v.filterDirty(i) {
			return node.HwcDisabledDirtyFilter
		}
		return node.HwcDisabledCleanFilter
	}
	return node.HwcEnabled
}
