// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import (
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/rosen/region"
)

// Properties are the resolved per-frame properties of a node.
//
// They are produced by the property/animation stage and applied through
// [Tree.Update]; the traversal only reads them.
type Properties struct {
	// Bounds is the node rectangle in its own coordinate space.
	Bounds region.RectF

	// Matrix maps the node space into its parent's space.
	// The zero matrix is treated as identity.
	Matrix f64.Aff3

	// Alpha is the node opacity (0.0 to 1.0).
	Alpha float32

	// CornerRadius rounds the corners of the bounds.
	CornerRadius float64

	// Hidden removes the node and its subtree from the frame.
	Hidden bool

	// ClipToBounds clips the subtree to the node bounds.
	ClipToBounds bool

	// Shadow is the node shadow; the zero value has none.
	Shadow Shadow

	// Filter is the node background filter; the zero value has none.
	Filter Filter

	// Animating marks geometry driven by a running animation. Animating
	// rects are not trusted for occlusion.
	Animating bool

	// FrameGravity positions buffer content that does not match the bounds.
	FrameGravity Gravity
}

// DefaultProperties returns the properties of a freshly created node.
func DefaultProperties() Properties {
	return Properties{
		Matrix: Identity(),
		Alpha:  1,
	}
}

// NeedFilter reports whether the node has a background filter.
func (p Properties) NeedFilter() bool { return p.Filter.Type != FilterNone }

// IsTransparent reports whether the node is blended with what is behind it.
func (p Properties) IsTransparent() bool { return p.Alpha < 1 }

// geometryEqual reports whether two property sets place the node at the
// same spot.
func (p Properties) geometryEqual(o Properties) bool {
	return p.Bounds == o.Bounds && orIdentity(p.Matrix) == orIdentity(o.Matrix) &&
		p.ClipToBounds == o.ClipToBounds && p.Hidden == o.Hidden
}

// Shadow describes a drop shadow drawn outside the node bounds.
type Shadow struct {
	Radius  float64
	OffsetX float64
	OffsetY float64
}

// IsValid reports whether the shadow draws anything.
func (s Shadow) IsValid() bool { return s.Radius > 0 }

// Outset returns how far the shadow reaches beyond the bounds.
func (s Shadow) Outset() int {
	if !s.IsValid() {
		return 0
	}
	return int(math.Ceil(s.Radius + math.Max(math.Abs(s.OffsetX), math.Abs(s.OffsetY))))
}

// FilterType identifies the kind of background filter.
type FilterType uint8

// Filter type constants.
const (
	// FilterNone represents no filter.
	FilterNone FilterType = iota

	// FilterBlur represents a Gaussian background blur.
	FilterBlur

	// FilterColorMatrix represents a color matrix transformation.
	FilterColorMatrix

	// FilterMaterial represents a blur plus tint material.
	FilterMaterial
)

// String returns a human-readable name for the filter type.
func (ft FilterType) String() string {
	switch ft {
	case FilterNone:
		return "None"
	case FilterBlur:
		return "Blur"
	case FilterColorMatrix:
		return "ColorMatrix"
	case FilterMaterial:
		return "Material"
	default:
		return "Unknown"
	}
}

// ExpandsOutput returns true if this filter type samples beyond its bounds.
func (ft FilterType) ExpandsOutput() bool {
	return ft == FilterBlur || ft == FilterMaterial
}

// Filter describes a background filter: the node reads and transforms the
// pixels painted behind it, so any damage below the filter rect damages the
// filter output too.
type Filter struct {
	Type   FilterType
	Radius float64

	// Global registers the filter with the display instead of its surface.
	// Global filters take part in the display-level fixed point even when
	// the damage comes from another window.
	Global bool
}

// Outset returns how far the filter samples outside its bounds.
func (f Filter) Outset() int {
	if !f.Type.ExpandsOutput() {
		return 0
	}
	return int(math.Ceil(f.Radius))
}

// Gravity positions buffer content inside node bounds of a different size.
type Gravity uint8

// Gravity constants.
const (
	// GravityResize scales the buffer to the bounds.
	GravityResize Gravity = iota
	// GravityTopLeft anchors the buffer at the top-left corner.
	GravityTopLeft
	// GravityCenter centers the buffer.
	GravityCenter
)

// TransformType is the transform the producer applied to its buffer.
type TransformType uint8

// Buffer transform constants.
const (
	TransformNone TransformType = iota
	TransformRotate90
	TransformRotate180
	TransformRotate270
	TransformFlipH
	TransformFlipV
)

// SwapsAxes reports whether the transform exchanges width and height.
func (t TransformType) SwapsAxes() bool {
	return t == TransformRotate90 || t == TransformRotate270
}

// Buffer describes the latest buffer of a self-drawing surface's consumer.
// The traversal never touches pixel data.
type Buffer struct {
	// Sequence increases every time the producer queues a buffer.
	Sequence uint64

	Size      gputypes.Extent3D
	Format    gputypes.TextureFormat
	Transform TransformType
}

// OrientedSize returns the buffer size after its transform is applied.
func (b Buffer) OrientedSize() (w, h int) {
	w, h = int(b.Size.Width), int(b.Size.Height)
	if b.Transform.SwapsAxes() {
		w, h = h, w
	}
	return w, h
}

// SurfaceProperties are the window-manager properties of a surface node.
type SurfaceProperties struct {
	Type SurfaceType

	// ZOrder is the global stacking order assigned by the window manager.
	// Higher values are in front.
	ZOrder int

	// AlphaMode tells how the content alpha is composited. Premultiplied and
	// unpremultiplied content is transparent; the other modes are opaque.
	AlphaMode gputypes.CompositeAlphaMode

	// Buffer is the consumer buffer of a self-drawing surface, nil if none
	// was queued yet.
	Buffer *Buffer

	// Background is the color painted behind the buffer.
	Background gputypes.Color

	// Protected marks DRM content that only the display hardware may read.
	Protected bool

	// CrossDisplay marks a surface shown on more than one display.
	CrossDisplay bool

	// FilterCacheValid is set by the cache subsystem when the surface's
	// filter output is cached and up to date.
	FilterCacheValid bool

	// AttractionAnimating marks a running attraction (genie) effect that
	// distorts the window inside AttractionRect.
	AttractionAnimating bool
	AttractionRect      region.Rect
}

// IsTransparentContent reports whether the alpha mode blends the content.
func (s SurfaceProperties) IsTransparentContent() bool {
	return s.AlphaMode == gputypes.CompositeAlphaModePremultiplied ||
		s.AlphaMode == gputypes.CompositeAlphaModeUnpremultiplied
}
