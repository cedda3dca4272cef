// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"slices"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/region"
)

// Config holds the switches of the quick-prepare pass.
// The toml tags match the keys accepted by rosen.LoadConfig.
type Config struct {
	// PartialRender enables incremental damage. When false every prepared
	// frame damages the whole screen.
	PartialRender bool `toml:"partial_render"`

	// HwcEnabled allows self-drawing surfaces to become hardware layers.
	HwcEnabled bool `toml:"hwc_enabled"`

	// OcclusionEnabled turns on the occlusion fold. When false every surface
	// is fully visible.
	OcclusionEnabled bool `toml:"occlusion_enabled"`

	// ForcePrepare visits every subtree even when it is clean.
	ForcePrepare bool `toml:"force_prepare"`

	// ShowRefreshRate damages RefreshRateRect every frame so an on-screen
	// refresh rate counter stays current.
	ShowRefreshRate bool        `toml:"show_refresh_rate"`
	RefreshRateRect region.Rect `toml:"refresh_rate_rect"`

	// DirtyAlignment aligns damage rectangles to a pixel grid; 0 disables.
	DirtyAlignment int `toml:"dirty_alignment"`

	// MaxDirtyRects collapses a damage region into its bound once it has
	// more rectangles.
	MaxDirtyRects int `toml:"max_dirty_rects"`

	// HistoryDepth is the number of frames kept for buffer-age damage.
	HistoryDepth int `toml:"history_depth"`

	// HwcOverlapWhitelist names surfaces that may overlap another hardware
	// layer.
	HwcOverlapWhitelist []string `toml:"hwc_overlap_whitelist"`

	// HwcBackgroundWhitelist names surfaces whose translucent background
	// does not disqualify them.
	HwcBackgroundWhitelist []string `toml:"hwc_background_whitelist"`

	// DebugDirtyTypes records damage per dirty type for debug overlays.
	DebugDirtyTypes bool `toml:"debug_dirty_types"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PartialRender:    true,
		HwcEnabled:       true,
		OcclusionEnabled: true,
		MaxDirtyRects:    dirty.DefaultMaxRects,
		HistoryDepth:     dirty.DefaultHistoryDepth,
	}
}

// DirtyOptions returns the dirty manager options implied by c.
func (c Config) DirtyOptions() []dirty.Option {
	return []dirty.Option{
		dirty.WithHistoryDepth(c.HistoryDepth),
		dirty.WithMaxRects(c.MaxDirtyRects),
		dirty.WithAlignment(c.DirtyAlignment),
		dirty.WithDebugTypes(c.DebugDirtyTypes),
	}
}

func (c Config) overlapAllowed(name string) bool {
	return slices.Contains(c.HwcOverlapWhitelist, name)
}

func (c Config) backgroundAllowed(name string) bool {
	return slices.Contains(c.HwcBackgroundWhitelist, name)
}
