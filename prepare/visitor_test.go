// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"testing"

	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

func TestTwoHalvesFirstFrameAndCleanFrame(t *testing.T) {
	s := newScene(t, 1200, 2000)
	a := region.NewRect(0, 0, 600, 2000)
	b := region.NewRect(600, 0, 600, 2000)
	s.window(10, "A", a, 0)
	s.window(11, "B", b, 1)

	p := s.frame()
	if p.Skipped {
		t.Fatal("first frame Skipped = true")
	}
	if got := surfaceOf(t, p, 10).VisibleRegion; !got.Equal(region.FromRect(a)) {
		t.Errorf("A VisibleRegion = %v, want %v", got, a)
	}
	if got := surfaceOf(t, p, 11).VisibleRegion; !got.Equal(region.FromRect(b)) {
		t.Errorf("B VisibleRegion = %v, want %v", got, b)
	}
	if got := p.Occlusion.Area(); got != 1200*2000 {
		t.Errorf("Occlusion.Area() = %d, want %d", got, 1200*2000)
	}
	if full := region.FromRect(s.screen.Rect()); !p.Dirty.Current.Equal(full) {
		t.Errorf("first frame damage = %v, want %v", p.Dirty.Current, full)
	}

	p = s.frame()
	if !p.Skipped {
		t.Error("unchanged frame Skipped = false, want true")
	}
	if !p.Dirty.Current.IsEmpty() {
		t.Errorf("unchanged frame damage = %v, want empty", p.Dirty.Current)
	}
	if len(p.Surfaces) != 2 {
		t.Errorf("skipped frame reused %d surfaces, want 2", len(p.Surfaces))
	}
}

func TestLeashChildZOrderChangeDamagesOldRect(t *testing.T) {
	s := newScene(t, 1200, 2000)
	s.window(5, "wallpaper", s.screen.Rect(), 1)
	s.surface(10, "leash", node.SurfaceLeashWindow, testDisplay, s.screen.Rect(), 2)
	m := s.surface(11, "main", node.SurfaceAppWindow, 10, region.NewRect(100, 100, 500, 800), 2)
	s.frame()

	s.tree.UpdateSurface(11, func(sp *node.SurfaceProperties) { sp.ZOrder = 5 })
	p := s.frame()

	want := region.FromRect(m.Render.OldDirtyInSurface)
	if !p.Dirty.Current.Equal(want) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, want)
	}
	if m.Render.OldDirtyInSurface != region.NewRect(100, 100, 500, 800) {
		t.Errorf("OldDirtyInSurface = %v", m.Render.OldDirtyInSurface)
	}
}

func TestZOrderChangeAmongSiblings(t *testing.T) {
	s := newScene(t, 1000, 1000)
	moved := region.NewRect(100, 100, 300, 300)
	s.window(10, "a", moved, 1)
	s.window(11, "b", region.NewRect(200, 200, 300, 300), 2)
	s.window(12, "c", region.NewRect(600, 600, 300, 300), 3)
	s.frame()

	s.tree.UpdateSurface(10, func(sp *node.SurfaceProperties) { sp.ZOrder = 3 })
	s.tree.UpdateSurface(12, func(sp *node.SurfaceProperties) { sp.ZOrder = 1 })
	p := s.frame()

	if !p.Dirty.Current.ContainsRect(moved) {
		t.Errorf("damage %v does not contain moved surface %v", p.Dirty.Current, moved)
	}
	if a := surfaceOf(t, p, 10); !a.VisibleRegion.Equal(region.FromRect(moved)) {
		t.Errorf("front surface VisibleRegion = %v, want %v", a.VisibleRegion, moved)
	}
}

func TestPositionChangeDamagesOldAndNew(t *testing.T) {
	s := newScene(t, 1000, 1000)
	old := region.NewRect(0, 0, 100, 100)
	moved := region.NewRect(500, 500, 100, 100)
	s.window(10, "w", old, 1)
	s.frame()

	s.tree.Update(10, func(p *node.Properties) { p.Bounds = rectF(moved) })
	p := s.frame()

	want := region.FromRects(old, moved)
	if !p.Dirty.Current.Equal(want) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, want)
	}
}

func TestShadowToggleDamagesShadowArea(t *testing.T) {
	s := newScene(t, 1000, 1000)
	r := region.NewRect(100, 100, 100, 100)
	s.window(10, "w", r, 1)
	s.frame()

	s.tree.Update(10, func(p *node.Properties) { p.Shadow = node.Shadow{Radius: 10} })
	p := s.frame()
	if want := r.Outset(10); !p.Dirty.Current.ContainsRect(want) {
		t.Errorf("damage %v does not contain shadow rect %v", p.Dirty.Current, want)
	}

	s.tree.Update(10, func(p *node.Properties) { p.Shadow = node.Shadow{} })
	p = s.frame()
	if want := r.Outset(10); !p.Dirty.Current.ContainsRect(want) {
		t.Errorf("damage %v does not contain removed shadow rect %v", p.Dirty.Current, want)
	}
}

func TestDrawRectChangeAroundFixedBounds(t *testing.T) {
	r := region.NewRect(400, 400, 100, 100)
	tests := []struct {
		name     string
		from, to node.Properties
	}{
		{
			name: "shadow grows",
			from: node.Properties{Shadow: node.Shadow{Radius: 10}},
			to:   node.Properties{Shadow: node.Shadow{Radius: 50}},
		},
		{
			name: "shadow shrinks",
			from: node.Properties{Shadow: node.Shadow{Radius: 50}},
			to:   node.Properties{Shadow: node.Shadow{Radius: 10}},
		},
		{
			name: "filter outset grows",
			from: node.Properties{Filter: node.Filter{Type: node.FilterBlur, Radius: 5}},
			to:   node.Properties{Filter: node.Filter{Type: node.FilterBlur, Radius: 40}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t, 1000, 1000)
			s.window(10, "w", r, 1)
			s.tree.Update(10, func(p *node.Properties) {
				p.Shadow, p.Filter = tt.from.Shadow, tt.from.Filter
			})
			s.frame()
			s.frame()

			s.tree.Update(10, func(p *node.Properties) {
				p.Shadow, p.Filter = tt.to.Shadow, tt.to.Filter
			})
			p := s.frame()
			if got := surfaceOf(t, p, 10).DstRect; got != r {
				t.Fatalf("DstRect = %v, want %v", got, r)
			}
			for _, props := range []node.Properties{tt.from, tt.to} {
				want := r.Outset(props.Shadow.Outset() + props.Filter.Outset())
				if !p.Dirty.Current.ContainsRect(want) {
					t.Errorf("damage %v does not contain draw rect %v", p.Dirty.Current, want)
				}
			}
		})
	}
}

func TestAppearAndDisappear(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "base", region.NewRect(0, 0, 10, 10), 0)
	s.frame()

	r := region.NewRect(300, 300, 200, 100)
	s.window(11, "popup", r, 1)
	p := s.frame()
	if !p.Dirty.Current.ContainsRect(r) {
		t.Errorf("appear damage %v does not contain %v", p.Dirty.Current, r)
	}

	s.tree.RemoveChild(testDisplay, 11)
	p = s.frame()
	if !p.Dirty.Current.Equal(region.FromRect(r)) {
		t.Errorf("disappear damage = %v, want %v", p.Dirty.Current, r)
	}
	if _, ok := p.Surface(11); ok {
		t.Error("removed surface still in params")
	}
}

func TestRemovedChildDamage(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "w", region.NewRect(0, 0, 500, 500), 1)
	c := region.NewRect(10, 10, 50, 50)
	s.canvas(20, 10, c)
	s.frame()

	s.tree.RemoveChild(10, 20)
	p := s.frame()
	if !p.Dirty.Current.Equal(region.FromRect(c)) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, c)
	}
}

func TestCanvasContentChangeStaysInSurface(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "w", region.NewRect(0, 0, 500, 500), 1)
	// The canvas overflows the window and is clipped to it.
	s.canvas(20, 10, region.NewRect(400, 400, 300, 300))
	s.frame()

	s.tree.MarkContentDirty(20)
	p := s.frame()
	if want := region.FromRect(region.NewRect(400, 400, 100, 100)); !p.Dirty.Current.Equal(want) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, want)
	}
}

func TestOccludedSubtreeIsReplayed(t *testing.T) {
	s := newScene(t, 1200, 2000)
	s.window(10, "back", region.NewRect(0, 0, 600, 600), 1)
	s.video(11, "video", 10, region.NewRect(100, 100, 200, 200), 1)
	front := region.NewRect(0, 0, 1200, 1000)
	s.window(12, "front", front, 2)
	p := s.frame()
	if !surfaceOf(t, p, 10).Occluded || !surfaceOf(t, p, 11).Occluded {
		t.Fatal("back window and its video should be occluded")
	}

	s.tree.MarkContentDirty(12)
	p = s.frame()
	if !p.Dirty.Current.Equal(region.FromRect(front)) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, front)
	}
	if v := surfaceOf(t, p, 11); !v.Occluded {
		t.Error("replayed video should stay occluded")
	}
	if len(p.Layers) != 0 {
		t.Errorf("Layers = %d, want 0 for an occluded video", len(p.Layers))
	}
}

func TestRotationForcesFullInvalidation(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "w", region.NewRect(0, 0, 10, 10), 1)
	s.frame()

	s.screen.Rotation = node.Rotation90
	p := s.frame()
	if p.Skipped {
		t.Fatal("rotated frame Skipped = true")
	}
	if full := region.FromRect(s.screen.Rect()); !p.Dirty.Current.Equal(full) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, full)
	}
}

func TestActiveRectChangeForcesFullInvalidation(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "w", region.NewRect(0, 0, 10, 10), 1)
	s.frame()

	s.screen.ActiveRect = region.NewRect(0, 0, 1000, 500)
	p := s.frame()
	if want := region.FromRect(s.screen.ActiveRect); !p.Dirty.Current.Equal(want) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, want)
	}
}

func TestPartialRenderDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PartialRender = false
	s := newScene(t, 1000, 1000, WithConfig(cfg))
	s.window(10, "w", region.NewRect(0, 0, 10, 10), 1)
	s.frame()

	s.tree.MarkContentDirty(10)
	p := s.frame()
	if full := region.FromRect(s.screen.Rect()); !p.Dirty.Current.Equal(full) {
		t.Errorf("damage = %v, want %v", p.Dirty.Current, full)
	}
}

func TestBufferAgeDamage(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "w", region.NewRect(0, 0, 10, 10), 1)
	s.frame()

	s.tree.MarkContentDirty(10)
	p := s.frame()
	if want := region.FromRect(region.NewRect(0, 0, 10, 10)); !p.Dirty.Damage(1).Equal(want) {
		t.Errorf("Damage(1) = %v, want %v", p.Dirty.Damage(1), want)
	}
	full := region.FromRect(s.screen.Rect())
	if !p.Dirty.Damage(2).Equal(full) {
		t.Errorf("Damage(2) = %v, want full screen", p.Dirty.Damage(2))
	}
	if !p.Dirty.Damage(9).Equal(full) {
		t.Errorf("Damage(9) = %v, want full screen", p.Dirty.Damage(9))
	}
}

func TestMissingCollaborators(t *testing.T) {
	s := newScene(t, 1000, 1000)
	if p := s.v.QuickPrepare(99, s.screen); !p.Skipped {
		t.Error("QuickPrepare(unknown) Skipped = false")
	}

	w := s.window(10, "broken", region.NewRect(0, 0, 100, 100), 1)
	s.window(11, "ok", region.NewRect(200, 0, 100, 100), 1)
	w.Dirty = nil
	p := s.frame()
	if _, ok := p.Surface(10); ok {
		t.Error("surface without dirty manager should be skipped")
	}
	if _, ok := p.Surface(11); !ok {
		t.Error("sibling of a broken surface should still be prepared")
	}

	d, _ := s.tree.Get(testDisplay)
	d.Dirty = nil
	if p := s.frame(); !p.Skipped {
		t.Error("display without dirty manager Skipped = false")
	}
}

func TestStagedParamsArePublishedOnCommit(t *testing.T) {
	s := newScene(t, 1000, 1000)
	s.window(10, "w", region.NewRect(0, 0, 10, 10), 1)
	s.frame()

	if _, ok := s.v.Store().Snapshot().Display(testDisplay); ok {
		t.Error("params visible before Store.Commit")
	}
	s.v.Store().Commit()
	d, ok := s.v.Store().Snapshot().Display(testDisplay)
	if !ok || d.Frame != 1 {
		t.Errorf("published display = %+v, %v", d.Frame, ok)
	}
}

func TestTraversalContextChild(t *testing.T) {
	parent := TraversalContext{Matrix: node.Identity(), Clip: region.NewRect(0, 0, 100, 100), Alpha: 0.5}
	props := node.DefaultProperties()
	props.Alpha = 0.5
	props.ClipToBounds = true
	props.Animating = true

	c := parent.child(node.Translate(10, 10), props, region.NewRect(10, 10, 20, 20), true)
	if c.Alpha != 0.25 || !c.ParentDirty || !c.Animating || c.Depth != 1 {
		t.Errorf("child() = %+v", c)
	}
	if want := region.NewRect(10, 10, 20, 20); c.Clip != want {
		t.Errorf("child().Clip = %v, want %v", c.Clip, want)
	}
	if parent.Alpha != 0.5 || parent.Clip != region.NewRect(0, 0, 100, 100) || parent.Depth != 0 {
		t.Errorf("parent context modified: %+v", parent)
	}
}
