// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

func TestFullCoverHidesEverythingBehind(t *testing.T) {
	s := newScene(t, 1000, 1000)
	full := s.screen.Rect()
	s.window(10, "bottom", full, 1)
	s.window(11, "middle", region.NewRect(100, 100, 200, 200), 2)
	s.window(12, "top", full, 3)
	p := s.frame()

	if got := surfaceOf(t, p, 12); got.Occluded || !got.VisibleRegion.Equal(region.FromRect(full)) {
		t.Errorf("top = %+v, want fully visible", got.VisibleRegion)
	}
	for _, id := range []node.ID{10, 11} {
		got := surfaceOf(t, p, id)
		if !got.Occluded || !got.VisibleRegion.IsEmpty() {
			t.Errorf("surface %s Occluded = %v, VisibleRegion = %v, want hidden", id, got.Occluded, got.VisibleRegion)
		}
	}
	if p.Surfaces[0].ID != 12 {
		t.Errorf("Surfaces[0] = %s, want front surface first", p.Surfaces[0].ID)
	}
}

func TestNonOccludingFrontSurfaces(t *testing.T) {
	back := region.NewRect(0, 0, 500, 500)
	tests := []struct {
		name  string
		setup func(s *scene)
	}{
		{
			name:  "alpha",
			setup: func(s *scene) { s.tree.Update(11, func(p *node.Properties) { p.Alpha = 0.5 }) },
		},
		{
			name: "premultiplied content",
			setup: func(s *scene) {
				s.tree.UpdateSurface(11, func(sp *node.SurfaceProperties) {
					sp.AlphaMode = gputypes.CompositeAlphaModePremultiplied
				})
			},
		},
		{
			name:  "animating",
			setup: func(s *scene) { s.tree.Update(11, func(p *node.Properties) { p.Animating = true }) },
		},
		{
			name: "rotated",
			setup: func(s *scene) {
				s.tree.Update(11, func(p *node.Properties) { p.Matrix = node.Rotate(0.1) })
			},
		},
		{
			name: "not a window",
			setup: func(s *scene) {
				s.tree.Destroy(11)
				s.surface(12, "self", node.SurfaceSelfDrawing, testDisplay, s.screen.Rect(), 2)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, 1000, 1000)
			s.window(10, "back", back, 1)
			s.window(11, "front", s.screen.Rect(), 2)
			tt.setup(s)
			p := s.frame()

			got := surfaceOf(t, p, 10)
			if got.Occluded || !got.VisibleRegion.Equal(region.FromRect(back)) {
				t.Errorf("back Occluded = %v, VisibleRegion = %v, want fully visible", got.Occluded, got.VisibleRegion)
			}
		})
	}
}

func TestOcclusionDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OcclusionEnabled = false
	s := newScene(t, 1000, 1000, WithConfig(cfg))
	back := region.NewRect(0, 0, 500, 500)
	s.window(10, "back", back, 1)
	s.window(11, "front", s.screen.Rect(), 2)
	p := s.frame()

	if got := surfaceOf(t, p, 10); got.Occluded || !got.VisibleRegion.Equal(region.FromRect(back)) {
		t.Errorf("back Occluded = %v, VisibleRegion = %v", got.Occluded, got.VisibleRegion)
	}
	if !p.Occlusion.IsEmpty() {
		t.Errorf("Occlusion = %v, want empty", p.Occlusion)
	}
}

func TestRoundCornersLeakThrough(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "back", s.screen.Rect(), 1)
	s.window(11, "front", s.screen.Rect(), 2)
	s.tree.Update(11, func(p *node.Properties) { p.CornerRadius = 20 })
	p := s.frame()

	back := surfaceOf(t, p, 10)
	if back.Occluded {
		t.Fatal("back Occluded = true, corners should stay visible")
	}
	if got := back.VisibleRegion.Area(); got != 4*20*20 {
		t.Errorf("back visible area = %d, want %d", got, 4*20*20)
	}
	if !back.VisibleRegion.ContainsRect(region.NewRect(980, 980, 20, 20)) {
		t.Errorf("back VisibleRegion = %v, want bottom right corner", back.VisibleRegion)
	}
	front := surfaceOf(t, p, 11)
	if got := front.TransparentRegion.Area(); got != 4*20*20 {
		t.Errorf("front transparent area = %d, want %d", got, 4*20*20)
	}
}

func TestLeashDoesNotOccludeItsWindow(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.surface(10, "leash", node.SurfaceLeashWindow, testDisplay, s.screen.Rect(), 2)
	m := region.NewRect(100, 100, 300, 300)
	s.surface(11, "main", node.SurfaceAppWindow, 10, m, 2)
	p := s.frame()

	if got := surfaceOf(t, p, 11); got.Occluded || !got.VisibleRegion.Equal(region.FromRect(m)) {
		t.Errorf("main VisibleRegion = %v, want %v", got.VisibleRegion, m)
	}
	if got := surfaceOf(t, p, 10); !got.OpaqueRegion.IsEmpty() || !got.TransparentRegion.IsEmpty() {
		t.Errorf("leash opaque = %v, transparent = %v, want both empty", got.OpaqueRegion, got.TransparentRegion)
	}
}

func TestFilterCacheOcclusion(t *testing.T) {
	s := newScene(t, 1000, 1000)
	glass := region.NewRect(0, 0, 1000, 600)
	s.window(10, "back", region.NewRect(0, 0, 1000, 500), 1)
	s.window(11, "glass", glass, 2)
	s.tree.Update(11, func(p *node.Properties) {
		p.Filter = node.Filter{Type: node.FilterMaterial, Radius: 8}
	})
	s.tree.UpdateSurface(11, func(sp *node.SurfaceProperties) {
		sp.AlphaMode = gputypes.CompositeAlphaModePremultiplied
		sp.FilterCacheValid = true
	})
	s.window(12, "far", region.NewRect(0, 900, 100, 100), 3)

	// A new surface has no usable cache yet.
	p := s.frame()
	if surfaceOf(t, p, 10).Occluded {
		t.Error("frame 1: back occluded by an invalidated filter cache")
	}

	// An untouched cache stands in for opaque content.
	s.tree.MarkContentDirty(12)
	p = s.frame()
	if !surfaceOf(t, p, 10).Occluded {
		t.Error("frame 2: back not occluded by a valid filter cache")
	}
	if p.Dirty.Current.IsIntersectWithRect(glass) {
		t.Errorf("frame 2: damage %v touches the clean cache", p.Dirty.Current)
	}

	// Damage behind the cache invalidates it.
	s.tree.MarkContentDirty(10)
	p = s.frame()
	if surfaceOf(t, p, 10).Occluded {
		t.Error("frame 3: back occluded by an invalidated filter cache")
	}
	if !p.Dirty.Current.ContainsRect(glass) {
		t.Errorf("frame 3: damage %v does not contain the filter rect %v", p.Dirty.Current, glass)
	}
}

func TestFilterFixedPoint(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "w", s.screen.Rect(), 1)
	f1 := region.NewRect(0, 0, 100, 100)
	f2 := region.NewRect(90, 0, 100, 100)
	f3 := region.NewRect(800, 800, 100, 100)
	for i, r := range []region.Rect{f1, f2, f3} {
		id := node.ID(20 + i)
		s.canvas(id, 10, r)
		s.tree.Update(id, func(p *node.Properties) {
			p.Filter = node.Filter{Type: node.FilterColorMatrix}
		})
	}
	s.canvas(30, 10, region.NewRect(0, 0, 10, 10))
	s.frame()

	s.tree.MarkContentDirty(30)
	p := s.frame()
	want := region.FromRects(f1, f2)
	if !p.Dirty.Current.Equal(want) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, want)
	}
}

func TestGlobalFilterSeesOtherWindows(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "app", region.NewRect(0, 0, 500, 500), 1)
	s.window(11, "panel", region.NewRect(0, 400, 1000, 600), 2)
	s.tree.UpdateSurface(11, func(sp *node.SurfaceProperties) {
		sp.AlphaMode = gputypes.CompositeAlphaModePremultiplied
	})
	blur := region.NewRect(0, 400, 1000, 200)
	s.canvas(20, 11, blur)
	s.tree.Update(20, func(p *node.Properties) {
		p.Filter = node.Filter{Type: node.FilterColorMatrix, Global: true}
	})
	s.frame()

	s.tree.MarkContentDirty(10)
	p := s.frame()
	want := region.FromRects(region.NewRect(0, 0, 500, 500), blur)
	if !p.Dirty.Current.Equal(want) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, want)
	}
}
