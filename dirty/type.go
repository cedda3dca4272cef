// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dirty

// Type classifies why a rectangle was merged. It only feeds debug overlays.
type Type uint8

// Dirty type constants.
const (
	// TypeContent is a node whose content or geometry changed.
	TypeContent Type = iota

	// TypeRemoveChild is the area left behind by a detached child.
	TypeRemoveChild

	// TypeZOrder is a surface whose stacking order changed.
	TypeZOrder

	// TypePosition is a moved or animating surface.
	TypePosition

	// TypeShadow is a surface whose shadow appeared or disappeared.
	TypeShadow

	// TypeTransparent is damage below a transparent surface.
	TypeTransparent

	// TypeFilter is a filter whose input intersects the damage.
	TypeFilter

	// TypeAttraction is the region of an attraction (genie) animation.
	TypeAttraction

	// TypeAppearance is a surface that appeared or disappeared.
	TypeAppearance

	// TypeCrossDisplay is a surface shared with another display.
	TypeCrossDisplay

	// TypeRoundCorner is a round-corner display cutout.
	TypeRoundCorner

	// TypeDebug is an always-dirty debug overlay.
	TypeDebug

	// TypeHardware is a self-drawing layer that moved between hardware and
	// GPU composition or received a buffer while GPU composed.
	TypeHardware

	// TypeFullInvalidation is a whole-surface invalidation.
	TypeFullInvalidation

	typeCount
)

// String returns a human-readable name for the dirty type.
func (t Type) String() string {
	switch t {
	case TypeContent:
		return "Content"
	case TypeRemoveChild:
		return "RemoveChild"
	case TypeZOrder:
		return "ZOrder"
	case TypePosition:
		return "Position"
	case TypeShadow:
		return "Shadow"
	case TypeTransparent:
		return "Transparent"
	case TypeFilter:
		return "Filter"
	case TypeAttraction:
		return "Attraction"
	case TypeAppearance:
		return "Appearance"
	case TypeCrossDisplay:
		return "CrossDisplay"
	case TypeRoundCorner:
		return "RoundCorner"
	case TypeDebug:
		return "Debug"
	case TypeHardware:
		return "Hardware"
	case TypeFullInvalidation:
		return "FullInvalidation"
	default:
		return "Unknown"
	}
}

// Types returns every dirty type in declaration order.
func Types() []Type {
	ts := make([]Type, 0, typeCount)
	for t := TypeContent; t < typeCount; t++ {
		ts = append(ts, t)
	}
	return ts
}
