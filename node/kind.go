// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package node

import "fmt"

// Kind identifies the variant of a render node.
type Kind uint8

// Node kind constants.
const (
	// KindDisplay is a physical screen. It owns the display dirty manager
	// and is the entry point of the quick-prepare pass.
	KindDisplay Kind = iota

	// KindSurface is a window-level node: app window, leash, self-drawing
	// layer and so on (see SurfaceType).
	KindSurface

	// KindEffect applies a filter to the content of its children.
	KindEffect

	// KindCanvas draws content inside a surface.
	KindCanvas

	// KindRoot is the root of an application's canvas tree inside a surface.
	KindRoot
)

// String returns a human-readable name for the node kind.
func (k Kind) String() string {
	switch k {
	case KindDisplay:
		return "Display"
	case KindSurface:
		return "Surface"
	case KindEffect:
		return "Effect"
	case KindCanvas:
		return "Canvas"
	case KindRoot:
		return "Root"
	default:
		return "Unknown"
	}
}

// SurfaceType refines KindSurface nodes.
type SurfaceType uint8

// Surface type constants.
const (
	SurfaceDefault SurfaceType = iota
	SurfaceAppWindow
	SurfaceLeashWindow
	SurfaceSelfDrawing
	SurfaceAbilityComponent
	SurfaceStartingWindow
)

// String returns a human-readable name for the surface type.
func (t SurfaceType) String() string {
	switch t {
	case SurfaceDefault:
		return "Default"
	case SurfaceAppWindow:
		return "AppWindow"
	case SurfaceLeashWindow:
		return "LeashWindow"
	case SurfaceSelfDrawing:
		return "SelfDrawing"
	case SurfaceAbilityComponent:
		return "AbilityComponent"
	case SurfaceStartingWindow:
		return "StartingWindow"
	default:
		return "Unknown"
	}
}

// IsMainWindow reports whether the surface is a content-bearing window.
func (t SurfaceType) IsMainWindow() bool {
	return t == SurfaceAppWindow || t == SurfaceStartingWindow
}

// IsLeash reports whether the surface is a window-manager grouping node.
func (t SurfaceType) IsLeash() bool { return t == SurfaceLeashWindow }

// IsSelfDrawing reports whether the surface is fed by a producer buffer and
// may be composed by the hardware composer.
func (t SurfaceType) IsSelfDrawing() bool { return t == SurfaceSelfDrawing }

// ID identifies a render node. The high 32 bits carry the id of the process
// that allocated the node.
type ID uint64

// MakeID builds an id from a process id and a process-local counter.
func MakeID(pid, local uint32) ID {
	return ID(uint64(pid)<<32 | uint64(local))
}

// Pid returns the process id embedded in the id.
func (id ID) Pid() uint32 { return uint32(id >> 32) }

// Local returns the process-local part of the id.
func (id ID) Local() uint32 { return uint32(id) }

// String formats the id as "pid:local".
func (id ID) String() string { return fmt.Sprintf("%d:%d", id.Pid(), id.Local()) }
