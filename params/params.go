// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package params holds the render parameters produced by the quick-prepare
// pass and handed to the paint and present stages.
//
// The traversal writes into a staging area of a [Store]; [Store.Commit]
// publishes everything staged as one immutable [Snapshot]. Readers on other
// goroutines only ever see whole snapshots.
package params

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// SurfaceParams is the finalized per-frame state of one surface.
type SurfaceParams struct {
	ID   node.ID
	Name string
	Type node.SurfaceType

	// DstRect is the screen rectangle the surface is composed into,
	// clipped to the screen and to ancestor clips.
	DstRect region.Rect

	// SrcRect is the part of the buffer that maps to DstRect.
	SrcRect region.Rect

	// VisibleRegion is DstRect minus the opaque area of surfaces in front.
	VisibleRegion region.Region

	// OpaqueRegion is the part of VisibleRegion the surface fully covers.
	OpaqueRegion region.Region

	// TransparentRegion is the blended part of the surface rect.
	TransparentRegion region.Region

	ZOrder int
	Alpha  float32

	// Occluded is true when nothing of the surface is visible.
	Occluded bool

	// HardwareForcedDisabled is true for self-drawing surfaces that must be
	// blended by the GPU this frame. Reason holds the first cause.
	HardwareForcedDisabled bool
	Reason                 node.HwcDisabledReason
}

// IsHardwareLayer reports whether the surface is composed by the hardware
// composer this frame.
func (p SurfaceParams) IsHardwareLayer() bool {
	return p.Type.IsSelfDrawing() && !p.HardwareForcedDisabled && !p.Occluded
}

// LayerInfo describes one hardware layer for the composer device.
type LayerInfo struct {
	NodeID node.ID
	Name   string

	// Z is the composition order; higher is in front.
	Z int

	Src region.Rect
	Dst region.Rect

	Format    gputypes.TextureFormat
	Size      gputypes.Extent3D
	Transform node.TransformType
	Alpha     float32
	AlphaMode gputypes.CompositeAlphaMode
}

// DisplayParams is the finalized per-frame state of one display.
type DisplayParams struct {
	ID     node.ID
	Frame  uint64
	Screen node.ScreenInfo

	// Dirty is the synced display damage. Dirty.Damage(age) answers the
	// buffer-age question of the present stage.
	Dirty dirty.Snapshot

	// Skipped is true when the display subtree was clean and the previous
	// layer set was reused.
	Skipped bool

	// Animating is true when a surface was mid-animation, so another frame
	// is needed even without new edits.
	Animating bool

	// Occlusion is the opaque coverage accumulated over all surfaces.
	Occlusion region.Region

	// Surfaces are ordered front to back.
	Surfaces []SurfaceParams

	// Layers are the hardware layers in ascending z.
	Layers []LayerInfo
}

// Surface returns the params of the surface with the given id.
func (d DisplayParams) Surface(id node.ID) (SurfaceParams, bool) {
	for _, s := range d.Surfaces {
		if s.ID == id {
			return s, true
		}
	}
	return SurfaceParams{}, false
}
