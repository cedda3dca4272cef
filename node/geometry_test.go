// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import (
	"math"
	"testing"

	"github.com/gogpu/gpucontext"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/rosen/region"
)

func TestMapRect(t *testing.T) {
	r := region.RectF{X: 0, Y: 0, W: 100, H: 50}
	tests := []struct {
		name string
		m    f64.Aff3
		want region.Rect
	}{
		{"zero matrix", f64.Aff3{}, region.NewRect(0, 0, 100, 50)},
		{"identity", Identity(), region.NewRect(0, 0, 100, 50)},
		{"translate", Translate(10, 20), region.NewRect(10, 20, 100, 50)},
		{"scale", Scale(2, 0.5), region.NewRect(0, 0, 200, 25)},
		{"quarter turn", Rotate(math.Pi / 2), region.NewRect(-50, 0, 50, 100)},
		{"concat", Concat(Translate(5, 5), Scale(2, 2)), region.NewRect(5, 5, 200, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapRectI(tt.m, r); got != tt.want {
				t.Errorf("MapRectI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAxisAlignment(t *testing.T) {
	tests := []struct {
		name        string
		m           f64.Aff3
		aligned     bool
		quarterTurn bool
		scaled      bool
	}{
		{"identity", Identity(), true, false, false},
		{"translate", Translate(3, 4), true, false, false},
		{"scale", Scale(2, 2), true, false, true},
		{"rotate 90", Rotate(math.Pi / 2), true, true, false},
		{"rotate 45", Rotate(math.Pi / 4), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAxisAligned(tt.m); got != tt.aligned {
				t.Errorf("IsAxisAligned() = %v, want %v", got, tt.aligned)
			}
			if got := IsQuarterTurn(tt.m); got != tt.quarterTurn {
				t.Errorf("IsQuarterTurn() = %v, want %v", got, tt.quarterTurn)
			}
			if got := HasScale(tt.m); got != tt.scaled {
				t.Errorf("HasScale() = %v, want %v", got, tt.scaled)
			}
		})
	}
}

func TestIDParts(t *testing.T) {
	id := MakeID(7, 42)
	if id.Pid() != 7 || id.Local() != 42 {
		t.Errorf("MakeID(7, 42) parts = %d, %d", id.Pid(), id.Local())
	}
	if got := id.String(); got != "7:42" {
		t.Errorf("String() = %q, want %q", got, "7:42")
	}
}

func TestShadowAndFilterOutset(t *testing.T) {
	if got := (Shadow{Radius: 4, OffsetX: -2.5}).Outset(); got != 7 {
		t.Errorf("Shadow.Outset() = %d, want 7", got)
	}
	if got := (Shadow{}).Outset(); got != 0 {
		t.Errorf("zero Shadow.Outset() = %d, want 0", got)
	}
	if got := (Filter{Type: FilterBlur, Radius: 9.2}).Outset(); got != 10 {
		t.Errorf("blur Filter.Outset() = %d, want 10", got)
	}
	if got := (Filter{Type: FilterColorMatrix, Radius: 9}).Outset(); got != 0 {
		t.Errorf("color matrix Filter.Outset() = %d, want 0", got)
	}
}

func TestBufferOrientedSize(t *testing.T) {
	b := Buffer{Transform: TransformRotate90}
	b.Size.Width, b.Size.Height = 1080, 1920
	if w, h := b.OrientedSize(); w != 1920 || h != 1080 {
		t.Errorf("OrientedSize() = %d x %d, want 1920 x 1080", w, h)
	}
}

func TestScreenFromWindow(t *testing.T) {
	wp := gpucontext.NullWindowProvider{W: 600, H: 1000, SF: 2}
	s := ScreenFromWindow(wp, Rotation90, 120)
	if s.Width != 1200 || s.Height != 2000 {
		t.Errorf("ScreenFromWindow() size = %d x %d, want 1200 x 2000", s.Width, s.Height)
	}
	if s.Rotation != Rotation90 || s.RefreshRate != 120 {
		t.Errorf("ScreenFromWindow() = %+v", s)
	}
	if want := region.NewRect(0, 0, 1200, 2000); s.Rect() != want {
		t.Errorf("Rect() = %v, want %v", s.Rect(), want)
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{KindSurface.String(), "Surface"},
		{Kind(200).String(), "Unknown"},
		{SurfaceLeashWindow.String(), "LeashWindow"},
		{FilterBlur.String(), "Blur"},
		{HwcDisabledOverlap.String(), "overlaps hardware layer above"},
		{Rotation270.String(), "270"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
