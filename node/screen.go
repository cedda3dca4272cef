// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import (
	"math"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/rosen/region"
)

// Rotation is the screen rotation in quarter turns.
type Rotation uint8

// Rotation constants.
const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// String returns the rotation in degrees.
func (r Rotation) String() string {
	switch r {
	case Rotation0:
		return "0"
	case Rotation90:
		return "90"
	case Rotation180:
		return "180"
	case Rotation270:
		return "270"
	default:
		return "Unknown"
	}
}

// ScreenInfo is the per-frame description of a physical screen, supplied at
// display entry and read-only during the traversal.
type ScreenInfo struct {
	// Width and Height are the screen size in device pixels.
	Width  int
	Height int

	// ActiveRect narrows presentation to part of the screen. The zero Rect
	// means the whole screen.
	ActiveRect region.Rect

	Rotation    Rotation
	RefreshRate int

	// OffsetX and OffsetY place this screen in the shared coordinate space
	// used by cross-display surfaces.
	OffsetX int
	OffsetY int
}

// Rect returns the screen rectangle.
func (s ScreenInfo) Rect() region.Rect {
	return region.NewRect(0, 0, s.Width, s.Height)
}

// ScreenFromWindow builds a ScreenInfo from a host window. The logical size
// is scaled to device pixels.
func ScreenFromWindow(wp gpucontext.WindowProvider, rot Rotation, refreshRate int) ScreenInfo {
	w, h := wp.Size()
	sf := wp.ScaleFactor()
	if sf <= 0 {
		sf = 1
	}
	return ScreenInfo{
		Width:       int(math.Round(float64(w) * sf)),
		Height:      int(math.Round(float64(h) * sf)),
		Rotation:    rot,
		RefreshRate: refreshRate,
	}
}
