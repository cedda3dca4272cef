// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package region

import (
	"math"
	"slices"
	"strings"
)

// Region is a set of pixels represented as non-overlapping rectangles.
//
// The zero Region is empty and ready to use. Regions are values: the
// non-mutating operations (Or, And, Sub, Xor) return new regions and never
// alias their inputs, the *Self variants replace the receiver.
type Region struct {
	rects []Rect
	bound Rect
}

// FromRect creates a region covering r. An empty rect yields an empty region.
func FromRect(r Rect) Region {
	if r.IsEmpty() {
		return Region{}
	}
	return Region{rects: []Rect{r}, bound: r}
}

// FromRects creates the union of the given rectangles.
func FromRects(rs ...Rect) Region {
	return newRegion(combine(rs, nil, opOr))
}

func newRegion(rects []Rect) Region {
	g := Region{rects: rects}
	for _, r := range rects {
		g.bound = g.bound.JoinRect(r)
	}
	return g
}

// Rects returns a copy of the canonical rectangle list.
func (g Region) Rects() []Rect { return slices.Clone(g.rects) }

// Len returns the number of rectangles in the canonical decomposition.
func (g Region) Len() int { return len(g.rects) }

// Bound returns the bounding rectangle, the zero Rect for an empty region.
func (g Region) Bound() Rect { return g.bound }

// IsEmpty returns true if the region covers no pixels.
func (g Region) IsEmpty() bool { return len(g.rects) == 0 }

// Area returns the number of covered pixels.
func (g Region) Area() int {
	a := 0
	for _, r := range g.rects {
		a += r.Area()
	}
	return a
}

// Or returns the union of g and o.
func (g Region) Or(o Region) Region { return g.apply(o, opOr) }

// And returns the intersection of g and o.
func (g Region) And(o Region) Region { return g.apply(o, opAnd) }

// Sub returns the pixels of g that are not in o.
func (g Region) Sub(o Region) Region { return g.apply(o, opSub) }

// Xor returns the pixels covered by exactly one of g and o.
func (g Region) Xor(o Region) Region { return g.apply(o, opXor) }

// OrSelf replaces g with g ∪ o.
func (g *Region) OrSelf(o Region) { *g = g.Or(o) }

// AndSelf replaces g with g ∩ o.
func (g *Region) AndSelf(o Region) { *g = g.And(o) }

// SubSelf replaces g with g ∖ o.
func (g *Region) SubSelf(o Region) { *g = g.Sub(o) }

// XorSelf replaces g with g △ o.
func (g *Region) XorSelf(o Region) { *g = g.Xor(o) }

// OrRect returns g ∪ r.
func (g Region) OrRect(r Rect) Region { return g.Or(FromRect(r)) }

// AndRect returns g ∩ r.
func (g Region) AndRect(r Rect) Region { return g.And(FromRect(r)) }

// IsIntersectWith reports whether g and o share at least one pixel.
func (g Region) IsIntersectWith(o Region) bool {
	if g.IsEmpty() || o.IsEmpty() || !g.bound.Intersects(o.bound) {
		return false
	}
	for _, a := range g.rects {
		if !a.Intersects(o.bound) {
			continue
		}
		for _, b := range o.rects {
			if a.Intersects(b) {
				return true
			}
		}
	}
	return false
}

// IsIntersectWithRect reports whether g and r share at least one pixel.
func (g Region) IsIntersectWithRect(r Rect) bool {
	if g.IsEmpty() || !g.bound.Intersects(r) {
		return false
	}
	for _, a := range g.rects {
		if a.Intersects(r) {
			return true
		}
	}
	return false
}

// Contains reports whether o is a subset of g.
func (g Region) Contains(o Region) bool { return o.Sub(g).IsEmpty() }

// ContainsRect reports whether r is entirely covered by g.
func (g Region) ContainsRect(r Rect) bool { return g.Contains(FromRect(r)) }

// Equal reports whether g and o cover the same pixels.
func (g Region) Equal(o Region) bool {
	return slices.Equal(g.rects, o.rects)
}

// Offset returns g translated by (dx, dy).
func (g Region) Offset(dx, dy int) Region {
	if g.IsEmpty() {
		return g
	}
	out := make([]Rect, len(g.rects))
	for i, r := range g.rects {
		out[i] = r.Offset(dx, dy)
	}
	return Region{rects: out, bound: g.bound.Offset(dx, dy)}
}

// String lists the rectangles of the region.
func (g Region) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, r := range g.rects {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (g Region) apply(o Region, op setOp) Region {
	// Fast paths keep the common single-rect cases allocation-light.
	switch op {
	case opOr:
		if o.IsEmpty() {
			return g.clone()
		}
		if g.IsEmpty() {
			return o.clone()
		}
	case opAnd:
		if g.IsEmpty() || o.IsEmpty() || !g.bound.Intersects(o.bound) {
			return Region{}
		}
	case opSub:
		if g.IsEmpty() {
			return Region{}
		}
		if o.IsEmpty() || !g.bound.Intersects(o.bound) {
			return g.clone()
		}
	case opXor:
		if o.IsEmpty() {
			return g.clone()
		}
		if g.IsEmpty() {
			return o.clone()
		}
	}
	return newRegion(combine(g.rects, o.rects, op))
}

func (g Region) clone() Region {
	return Region{rects: slices.Clone(g.rects), bound: g.bound}
}

// setOp selects which pixels survive a binary operation.
type setOp uint8

const (
	opOr setOp = iota
	opAnd
	opSub
	opXor
)

func (op setOp) keep(inA, inB bool) bool {
	switch op {
	case opOr:
		return inA || inB
	case opAnd:
		return inA && inB
	case opSub:
		return inA && !inB
	default:
		return inA != inB
	}
}

// span is a half-open horizontal interval [l, r).
type span struct{ l, r int }

// combine runs a horizontal band sweep over the edges of a and b and emits
// the canonical decomposition of the result.
func combine(a, b []Rect, op setOp) []Rect {
	ys := make([]int, 0, 2*(len(a)+len(b)))
	for _, r := range a {
		if !r.IsEmpty() {
			ys = append(ys, r.Top, r.Bottom())
		}
	}
	for _, r := range b {
		if !r.IsEmpty() {
			ys = append(ys, r.Top, r.Bottom())
		}
	}
	if len(ys) == 0 {
		return nil
	}
	slices.Sort(ys)
	ys = slices.Compact(ys)

	var (
		out        []Rect
		prev       []span
		prevStart  int
		prevBottom = math.MinInt
	)
	for i := 0; i+1 < len(ys); i++ {
		y0, y1 := ys[i], ys[i+1]
		cur := mergeSpans(bandSpans(a, y0, y1), bandSpans(b, y0, y1), op)
		if len(cur) == 0 {
			prev = nil
			prevBottom = math.MinInt
			continue
		}
		if prevBottom == y0 && slices.Equal(prev, cur) {
			for j := prevStart; j < len(out); j++ {
				out[j].Height += y1 - y0
			}
		} else {
			prevStart = len(out)
			for _, s := range cur {
				out = append(out, Rect{Left: s.l, Top: y0, Width: s.r - s.l, Height: y1 - y0})
			}
			prev = cur
		}
		prevBottom = y1
	}
	return out
}

// bandSpans returns the sorted, merged horizontal coverage of rs within the
// band [y0, y1). Band edges come from the rect edges, so every rect either
// covers the whole band or none of it.
func bandSpans(rs []Rect, y0, y1 int) []span {
	var spans []span
	for _, r := range rs {
		if r.IsEmpty() || r.Top > y0 || r.Bottom() < y1 {
			continue
		}
		spans = append(spans, span{r.Left, r.Right()})
	}
	if len(spans) < 2 {
		return spans
	}
	slices.SortFunc(spans, func(p, q span) int { return p.l - q.l })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.l <= last.r {
			last.r = max(last.r, s.r)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func mergeSpans(a, b []span, op setOp) []span {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	xs := make([]int, 0, 2*(len(a)+len(b)))
	for _, s := range a {
		xs = append(xs, s.l, s.r)
	}
	for _, s := range b {
		xs = append(xs, s.l, s.r)
	}
	slices.Sort(xs)
	xs = slices.Compact(xs)

	var out []span
	ia, ib := 0, 0
	for i := 0; i+1 < len(xs); i++ {
		x0, x1 := xs[i], xs[i+1]
		for ia < len(a) && a[ia].r <= x0 {
			ia++
		}
		for ib < len(b) && b[ib].r <= x0 {
			ib++
		}
		inA := ia < len(a) && a[ia].l <= x0
		inB := ib < len(b) && b[ib].l <= x0
		if !op.keep(inA, inB) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].r == x0 {
			out[n-1].r = x1
			continue
		}
		out = append(out, span{x0, x1})
	}
	return out
}
