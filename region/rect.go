// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package region provides integer rectangle and rectangle-set algebra in
// device pixels.
//
// A [Region] is an exact union of axis-aligned rectangles kept in a
// canonical banded form: rectangles never overlap, rows of equal horizontal
// coverage are merged vertically, and touching spans within a row are merged
// horizontally. All operations are exact; no rounding is introduced.
package region

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned integer rectangle given by its top-left corner
// and size. A rectangle with a non-positive width or height is empty.
type Rect struct {
	Left, Top     int
	Width, Height int
}

// NewRect creates a Rect from position and size.
func NewRect(left, top, width, height int) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// FromLTRB creates a Rect from its four edges.
func FromLTRB(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Top + r.Height }

// IsEmpty returns true if the rectangle has zero area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Area returns the rectangle area, zero for empty rectangles.
func (r Rect) Area() int {
	if r.IsEmpty() {
		return 0
	}
	return r.Width * r.Height
}

// Intersect returns the intersection of two rectangles.
// Returns the zero Rect if they don't overlap.
func (r Rect) Intersect(o Rect) Rect {
	l := max(r.Left, o.Left)
	t := max(r.Top, o.Top)
	rr := min(r.Right(), o.Right())
	b := min(r.Bottom(), o.Bottom())
	if rr <= l || b <= t {
		return Rect{}
	}
	return FromLTRB(l, t, rr, b)
}

// Intersects returns true if the two rectangles share a positive area.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).IsEmpty()
}

// JoinRect returns the bounding rectangle of r and o.
// Empty rectangles do not contribute.
func (r Rect) JoinRect(o Rect) Rect {
	switch {
	case o.IsEmpty():
		return r
	case r.IsEmpty():
		return o
	}
	return FromLTRB(
		min(r.Left, o.Left), min(r.Top, o.Top),
		max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom()))
}

// IsInsideOf reports whether r lies entirely within o.
// The empty rectangle is inside every rectangle.
func (r Rect) IsInsideOf(o Rect) bool {
	if r.IsEmpty() {
		return true
	}
	return r.Left >= o.Left && r.Top >= o.Top && r.Right() <= o.Right() && r.Bottom() <= o.Bottom()
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Outset returns r grown by n pixels on every side.
func (r Rect) Outset(n int) Rect {
	if r.IsEmpty() {
		return r
	}
	return FromLTRB(r.Left-n, r.Top-n, r.Right()+n, r.Bottom()+n)
}

// Align expands r outward so that all four edges are multiples of n.
// n <= 1 leaves r unchanged.
func (r Rect) Align(n int) Rect {
	if n <= 1 || r.IsEmpty() {
		return r
	}
	floor := func(v int) int {
		q := v / n
		if v%n != 0 && v < 0 {
			q--
		}
		return q * n
	}
	ceil := func(v int) int { return -floor(-v) }
	return FromLTRB(floor(r.Left), floor(r.Top), ceil(r.Right()), ceil(r.Bottom()))
}

// String returns the rectangle as "[left top width height]".
func (r Rect) String() string {
	return fmt.Sprintf("[%d %d %d %d]", r.Left, r.Top, r.Width, r.Height)
}

// RectF is a floating point rectangle used for node bounds before they are
// mapped into device pixels.
type RectF struct {
	X, Y, W, H float64
}

// IsEmpty returns true if the rectangle has zero area.
func (r RectF) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// roundEpsilon absorbs float noise from matrix mapping before rounding out.
const roundEpsilon = 1e-6

// RoundOut returns the smallest integer rectangle containing r.
// Coordinates within roundEpsilon of an integer snap to it.
func (r RectF) RoundOut() Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	return FromLTRB(
		int(math.Floor(r.X+roundEpsilon)), int(math.Floor(r.Y+roundEpsilon)),
		int(math.Ceil(r.X+r.W-roundEpsilon)), int(math.Ceil(r.Y+r.H-roundEpsilon)))
}
