// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/params"
	"github.com/gogpu/rosen/region"
)

// surfaceVisit is the per-frame state of one surface on one display.
type surfaceVisit struct {
	node  *node.Node
	id    node.ID
	name  string
	sp    node.SurfaceProperties
	props node.Properties

	parentSurface node.ID
	windowZ       int
	depth         int
	sibling       int
	order         int // DFS order on this display

	rect   region.Rect // unclipped screen bounds
	dst    region.Rect // rect clipped to the screen and ancestor clips
	draw   region.Rect // dst grown by shadow and filter outsets
	alpha  float32
	filter region.Rect // filter cache area

	transparent bool
	animating   bool
	scaled      bool
	axisAligned bool

	opaque            region.Region
	transparentRegion region.Region
	dirty             region.Region // surface damage in screen space

	zChanged      bool
	posChanged    bool
	shadowChanged bool
	outsetChanged bool // draw rect changed while dst stayed

	visible       region.Region
	occluded      bool
	cacheOccludes bool

	hwcCandidate bool
	nodeReason   node.HwcDisabledReason
	disabled     bool
	reason       node.HwcDisabledReason

	mirror   bool // shown here, prepared on another display
	replayed bool // reused from the last frame of a skipped subtree
}

// contributesOcclusion reports whether the surface's opaque area may hide
// the surfaces behind it.
func (s *surfaceVisit) contributesOcclusion() bool {
	if !s.sp.Type.IsMainWindow() && !s.sp.Type.IsLeash() {
		return false
	}
	if s.animating || s.scaled || !s.axisAligned {
		return false
	}
	return s.cacheOccludes || !s.transparent
}

// hwcEnabled reports whether the surface ends the frame as a hardware layer.
func (s *surfaceVisit) hwcEnabled() bool {
	return s.hwcCandidate && !s.disabled && !s.occluded
}

// surfaceRecord is the state a surface carries from one frame to the next.
type surfaceRecord struct {
	seen bool

	lastDst         region.Rect
	lastDraw        region.Rect
	lastZ           int
	lastShadow      bool
	lastTransparent region.Region
	lastOccluded    bool
	lastHwc         bool
	lastBufferSeq   uint64
	lastAttraction  region.Rect

	base      opaqueBase
	baseValid bool
	opaque    region.Region

	last    surfaceVisit
	hasLast bool
}

// opaqueBase is the input the cached opaque region was computed from.
type opaqueBase struct {
	screen      region.Rect
	rotation    node.Rotation
	radius      float64
	rect        region.Rect
	dst         region.Rect
	transparent bool
	leash       bool
}

// displayRecord is the state a display carries from one frame to the next.
type displayRecord struct {
	frames       uint64
	lastScreen   node.ScreenInfo
	lastSurfaces map[node.ID]region.Rect
	lastParams   params.DisplayParams

	// staleCross holds mirrored surfaces last shown without a preparation
	// from their owner in the same vsync.
	staleCross map[node.ID]bool
}

// subtreeCache lists what a node's subtree contributed when it was last
// prepared, so a skipped subtree can be replayed.
type subtreeCache struct {
	surfaces []node.ID
	filters  []filterRecord
}

// crossEntry is a cross-display surface prepared by its owner display
// during the current vsync. visits holds the surface first, then the
// surfaces of its subtree, all in the owner's coordinates.
type crossEntry struct {
	vsync   uint64
	owner   node.ID
	offsetX int
	offsetY int
	visits  []*surfaceVisit
}

// filterRecord is a background filter registered during the walk.
type filterRecord struct {
	id node.ID

	// surface owns the filter; zero for filters outside any surface.
	surface node.ID

	rect   region.Rect
	global bool
	dirty  bool
}
