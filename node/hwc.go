// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

// HwcDisabledReason records why a self-drawing surface was denied a hardware
// layer for the current frame.
type HwcDisabledReason uint8

// Disabled reason constants.
const (
	HwcEnabled HwcDisabledReason = iota
	HwcDisabledByConfig
	HwcDisabledNoBuffer
	HwcDisabledAlpha
	HwcDisabledRotation
	HwcDisabledBackground
	HwcDisabledBufferSize
	HwcDisabledOverlap
	HwcDisabledCleanFilter
	HwcDisabledDirtyFilter
	HwcDisabledFilterInvalidation
	HwcDisabledParentDisabled
)

// String returns a human-readable name for the reason.
func (r HwcDisabledReason) String() string {
	switch r {
	case HwcEnabled:
		return "enabled"
	case HwcDisabledByConfig:
		return "disabled by config"
	case HwcDisabledNoBuffer:
		return "no buffer"
	case HwcDisabledAlpha:
		return "alpha"
	case HwcDisabledRotation:
		return "non axis-aligned rotation"
	case HwcDisabledBackground:
		return "transparent background"
	case HwcDisabledBufferSize:
		return "buffer smaller than bounds"
	case HwcDisabledOverlap:
		return "overlaps hardware layer above"
	case HwcDisabledCleanFilter:
		return "below clean transparent filter"
	case HwcDisabledDirtyFilter:
		return "below dirty transparent filter"
	case HwcDisabledFilterInvalidation:
		return "intersects filter invalidation"
	case HwcDisabledParentDisabled:
		return "parent surface disabled"
	default:
		return "unknown"
	}
}
