// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// Recorder receives diagnostics from the traversal. Recorders only observe;
// nothing they hold is read back by the traversal.
type Recorder interface {
	// RecordHwcDisabled is called once per surface and frame when a
	// self-drawing surface is denied a hardware layer.
	RecordHwcDisabled(frame uint64, id node.ID, name string, reason node.HwcDisabledReason)

	// RecordDirty is called at the end of each prepared frame with the
	// display damage broken down by type. byType is empty unless
	// Config.DebugDirtyTypes is set.
	RecordDirty(frame uint64, display node.ID, damage region.Region, byType map[dirty.Type]map[uint64]region.Rect)
}

// RoundCorner reports the screen areas of a round-corner display overlay
// that must be repainted this frame. It is asked once per display and
// frame; a non-empty answer keeps an otherwise clean display from being
// skipped.
type RoundCorner interface {
	CutoutDirty(screen node.ScreenInfo) []region.Rect
}

// RoundCornerFunc adapts a function to RoundCorner.
type RoundCornerFunc func(screen node.ScreenInfo) []region.Rect

// CutoutDirty calls f.
func (f RoundCornerFunc) CutoutDirty(screen node.ScreenInfo) []region.Rect { return f(screen) }

// Option configures a Visitor.
type Option func(*Visitor)

// WithConfig sets the traversal configuration.
func WithConfig(c Config) Option {
	return func(v *Visitor) {
		v.cfg = c
	}
}

// WithRecorder sets the diagnostics recorder.
func WithRecorder(r Recorder) Option {
	return func(v *Visitor) {
		v.recorder = r
	}
}

// WithRoundCorner sets the round-corner overlay collaborator.
func WithRoundCorner(rc RoundCorner) Option {
	return func(v *Visitor) {
		v.roundCorner = rc
	}
}
