// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/rosen/region"
)

// Matrices are f64.Aff3 in row-major order:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//
// so x' = m[0]*x + m[1]*y + m[2] and y' = m[3]*x + m[4]*y + m[5].

// axisEpsilon bounds the skew tolerated by IsAxisAligned.
const axisEpsilon = 1e-9

// Identity returns the identity transformation.
func Identity() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

// Translate creates a translation matrix.
func Translate(x, y float64) f64.Aff3 {
	return f64.Aff3{1, 0, x, 0, 1, y}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) f64.Aff3 {
	return f64.Aff3{x, 0, 0, 0, y, 0}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) f64.Aff3 {
	sin, cos := math.Sincos(angle)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// Concat returns m * o: o is applied first, then m.
func Concat(m, o f64.Aff3) f64.Aff3 {
	m, o = orIdentity(m), orIdentity(o)
	return f64.Aff3{
		m[0]*o[0] + m[1]*o[3],
		m[0]*o[1] + m[1]*o[4],
		m[0]*o[2] + m[1]*o[5] + m[2],
		m[3]*o[0] + m[4]*o[3],
		m[3]*o[1] + m[4]*o[4],
		m[3]*o[2] + m[4]*o[5] + m[5],
	}
}

// MapRect returns the bounding box of r transformed by m.
func MapRect(m f64.Aff3, r region.RectF) region.RectF {
	if r.IsEmpty() {
		return region.RectF{}
	}
	m = orIdentity(m)
	xs := [4]float64{r.X, r.X + r.W, r.X, r.X + r.W}
	ys := [4]float64{r.Y, r.Y, r.Y + r.H, r.Y + r.H}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		x := m[0]*xs[i] + m[1]*ys[i] + m[2]
		y := m[3]*xs[i] + m[4]*ys[i] + m[5]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return region.RectF{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// MapRectI maps r by m and rounds the result out to device pixels.
func MapRectI(m f64.Aff3, r region.RectF) region.Rect {
	return MapRect(m, r).RoundOut()
}

// IsAxisAligned reports whether m maps axis-aligned rectangles to
// axis-aligned rectangles (rotations by multiples of 90 degrees).
func IsAxisAligned(m f64.Aff3) bool {
	m = orIdentity(m)
	return (math.Abs(m[1]) < axisEpsilon && math.Abs(m[3]) < axisEpsilon) ||
		(math.Abs(m[0]) < axisEpsilon && math.Abs(m[4]) < axisEpsilon)
}

// IsQuarterTurn reports whether m swaps the x and y axes.
func IsQuarterTurn(m f64.Aff3) bool {
	m = orIdentity(m)
	return math.Abs(m[0]) < axisEpsilon && math.Abs(m[4]) < axisEpsilon
}

// HasScale reports whether m scales either axis.
func HasScale(m f64.Aff3) bool {
	m = orIdentity(m)
	sx := math.Hypot(m[0], m[3])
	sy := math.Hypot(m[1], m[4])
	return math.Abs(sx-1) > axisEpsilon || math.Abs(sy-1) > axisEpsilon
}

// orIdentity treats the zero matrix as identity so that zero-valued
// Properties behave like an untransformed node.
func orIdentity(m f64.Aff3) f64.Aff3 {
	if m == (f64.Aff3{}) {
		return Identity()
	}
	return m
}
