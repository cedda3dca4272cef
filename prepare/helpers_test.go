// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/params"
	"github.com/gogpu/rosen/region"
)

const testDisplay node.ID = 1

// scene is a single display tree driven frame by frame.
type scene struct {
	t      *testing.T
	tree   *node.Tree
	v      *Visitor
	screen node.ScreenInfo
}

func newScene(t *testing.T, w, h int, opts ...Option) *scene {
	t.Helper()
	tr := node.NewTree()
	if err := tr.Register(node.NewDisplay(testDisplay, "display")); err != nil {
		t.Fatalf("Register(display) error = %v", err)
	}
	return &scene{
		t:      t,
		tree:   tr,
		v:      New(tr, nil, opts...),
		screen: node.ScreenInfo{Width: w, Height: h},
	}
}

func rectF(r region.Rect) region.RectF {
	return region.RectF{X: float64(r.Left), Y: float64(r.Top), W: float64(r.Width), H: float64(r.Height)}
}

// add registers n under parent with bounds r.
func (s *scene) add(n *node.Node, parent node.ID, r region.Rect) *node.Node {
	s.t.Helper()
	if err := s.tree.Register(n); err != nil {
		s.t.Fatalf("Register(%s) error = %v", n.ID(), err)
	}
	s.tree.AddChild(parent, n.ID(), -1)
	s.tree.Update(n.ID(), func(p *node.Properties) { p.Bounds = rectF(r) })
	return n
}

func (s *scene) surface(id node.ID, name string, typ node.SurfaceType, parent node.ID, r region.Rect, z int) *node.Node {
	s.t.Helper()
	n := s.add(node.NewSurface(id, name, typ), parent, r)
	s.tree.UpdateSurface(id, func(sp *node.SurfaceProperties) { sp.ZOrder = z })
	return n
}

func (s *scene) window(id node.ID, name string, r region.Rect, z int) *node.Node {
	s.t.Helper()
	return s.surface(id, name, node.SurfaceAppWindow, testDisplay, r, z)
}

// video adds a self-drawing surface with a buffer matching its bounds.
func (s *scene) video(id node.ID, name string, parent node.ID, r region.Rect, z int) *node.Node {
	s.t.Helper()
	n := s.surface(id, name, node.SurfaceSelfDrawing, parent, r, z)
	s.tree.UpdateSurface(id, func(sp *node.SurfaceProperties) {
		sp.Buffer = &node.Buffer{
			Sequence: 1,
			Size:     gputypes.Extent3D{Width: uint32(r.Width), Height: uint32(r.Height), DepthOrArrayLayers: 1},
			Format:   gputypes.TextureFormatBGRA8Unorm,
		}
	})
	return n
}

func (s *scene) canvas(id node.ID, parent node.ID, r region.Rect) *node.Node {
	s.t.Helper()
	return s.add(node.New(id, node.KindCanvas, "canvas"), parent, r)
}

func (s *scene) frame() params.DisplayParams {
	s.t.Helper()
	if _, err := s.tree.Commit(); err != nil {
		s.t.Fatalf("Commit() error = %v", err)
	}
	return s.v.QuickPrepare(testDisplay, s.screen)
}

func surfaceOf(t *testing.T, p params.DisplayParams, id node.ID) params.SurfaceParams {
	t.Helper()
	sp, ok := p.Surface(id)
	if !ok {
		t.Fatalf("surface %s missing from display params", id)
	}
	return sp
}

type hwcEvent struct {
	frame  uint64
	id     node.ID
	reason node.HwcDisabledReason
}

type dirtyEvent struct {
	frame  uint64
	damage region.Region
	byType map[dirty.Type]map[uint64]region.Rect
}

// recorder captures diagnostics for assertions.
type recorder struct {
	hwc   []hwcEvent
	dirty []dirtyEvent
}

func (r *recorder) RecordHwcDisabled(frame uint64, id node.ID, _ string, reason node.HwcDisabledReason) {
	r.hwc = append(r.hwc, hwcEvent{frame, id, reason})
}

func (r *recorder) RecordDirty(frame uint64, _ node.ID, damage region.Region, byType map[dirty.Type]map[uint64]region.Rect) {
	r.dirty = append(r.dirty, dirtyEvent{frame, damage, byType})
}

func (r *recorder) hwcFor(frame uint64, id node.ID) []node.HwcDisabledReason {
	var out []node.HwcDisabledReason
	for _, e := range r.hwc {
		if e.frame == frame && e.id == id {
			out = append(out, e.reason)
		}
	}
	return out
}

func (r *recorder) last() dirtyEvent {
	if len(r.dirty) == 0 {
		return dirtyEvent{}
	}
	return r.dirty[len(r.dirty)-1]
}
