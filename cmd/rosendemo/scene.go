// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/region"
)

// errScene is returned for scene files that do not describe a valid tree.
var errScene = errors.New("rosendemo: invalid scene")

// sceneFile is the TOML layout of a demo scene.
//
//	[[display]]
//	id = 1
//	width = 1200
//	height = 2000
//
//	[[node]]
//	id = 10
//	parent = 1
//	kind = "surface"
//	type = "app"
//	rect = { left = 0, top = 0, width = 600, height = 2000 }
//	z = 1
//
//	[[frame]]
//	dirty = [10]
//	move = [{ id = 10, rect = { left = 50, top = 0, width = 600, height = 2000 } }]
type sceneFile struct {
	Display []displaySpec `toml:"display"`
	Node    []nodeSpec    `toml:"node"`
	Frame   []frameSpec   `toml:"frame"`
}

type displaySpec struct {
	ID       uint64   `toml:"id"`
	Name     string   `toml:"name"`
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Rotation int      `toml:"rotation"`
	OffsetX  int      `toml:"offset_x"`
	OffsetY  int      `toml:"offset_y"`
	Mirror   []uint64 `toml:"mirror"`
}

type nodeSpec struct {
	ID     uint64      `toml:"id"`
	Parent uint64      `toml:"parent"`
	Name   string      `toml:"name"`
	Kind   string      `toml:"kind"`
	Type   string      `toml:"type"`
	Rect   region.Rect `toml:"rect"`
	Z      int         `toml:"z"`
	Alpha  *float32    `toml:"alpha"`
	Radius float64     `toml:"corner_radius"`
	Shadow float64     `toml:"shadow"`
	Blur   float64     `toml:"blur"`
	Buffer *bufferSpec `toml:"buffer"`
	Blend  bool        `toml:"blend"`
}

type bufferSpec struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type frameSpec struct {
	Dirty   []uint64   `toml:"dirty"`
	Buffer  []uint64   `toml:"buffer"`
	Move    []moveSpec `toml:"move"`
	ZOrder  []zSpec    `toml:"z"`
	Remove  []uint64   `toml:"remove"`
	Animate []uint64   `toml:"animate"`
}

type moveSpec struct {
	ID   uint64      `toml:"id"`
	Rect region.Rect `toml:"rect"`
}

type zSpec struct {
	ID uint64 `toml:"id"`
	Z  int    `toml:"z"`
}

func decodeScene(r io.Reader) (*sceneFile, error) {
	var s sceneFile
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("rosendemo: decode scene: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", errScene, keys[0])
	}
	if len(s.Display) == 0 {
		return nil, fmt.Errorf("%w: no display", errScene)
	}
	return &s, nil
}

func surfaceType(name string) (node.SurfaceType, error) {
	switch name {
	case "", "app":
		return node.SurfaceAppWindow, nil
	case "leash":
		return node.SurfaceLeashWindow, nil
	case "self":
		return node.SurfaceSelfDrawing, nil
	case "starting":
		return node.SurfaceStartingWindow, nil
	case "ability":
		return node.SurfaceAbilityComponent, nil
	case "default":
		return node.SurfaceDefault, nil
	}
	return 0, fmt.Errorf("%w: surface type %q", errScene, name)
}

func rectF(r region.Rect) region.RectF {
	return region.RectF{X: float64(r.Left), Y: float64(r.Top), W: float64(r.Width), H: float64(r.Height)}
}

// build registers the scene in tree and queues its initial edits.
func (s *sceneFile) build(tree *node.Tree) (map[node.ID]node.ScreenInfo, error) {
	screens := make(map[node.ID]node.ScreenInfo, len(s.Display))
	for _, d := range s.Display {
		id := node.ID(d.ID)
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("display-%d", d.ID)
		}
		if err := tree.Register(node.NewDisplay(id, name)); err != nil {
			return nil, err
		}
		screens[id] = node.ScreenInfo{
			Width:    d.Width,
			Height:   d.Height,
			Rotation: node.Rotation(d.Rotation / 90 % 4),
			OffsetX:  d.OffsetX,
			OffsetY:  d.OffsetY,
		}
	}

	for _, ns := range s.Node {
		id := node.ID(ns.ID)
		name := ns.Name
		if name == "" {
			name = fmt.Sprintf("node-%d", ns.ID)
		}
		var n *node.Node
		switch ns.Kind {
		case "", "surface":
			typ, err := surfaceType(ns.Type)
			if err != nil {
				return nil, err
			}
			n = node.NewSurface(id, name, typ)
		case "canvas":
			n = node.New(id, node.KindCanvas, name)
		case "effect":
			n = node.New(id, node.KindEffect, name)
		default:
			return nil, fmt.Errorf("%w: node kind %q", errScene, ns.Kind)
		}
		if err := tree.Register(n); err != nil {
			return nil, err
		}
		tree.AddChild(node.ID(ns.Parent), id, -1)
		tree.Update(id, func(p *node.Properties) {
			p.Bounds = rectF(ns.Rect)
			if ns.Alpha != nil {
				p.Alpha = *ns.Alpha
			}
			p.CornerRadius = ns.Radius
			if ns.Shadow > 0 {
				p.Shadow = node.Shadow{Radius: ns.Shadow}
			}
			if ns.Blur > 0 {
				p.Filter = node.Filter{Type: node.FilterBlur, Radius: ns.Blur}
			}
		})
		if n.Kind() != node.KindSurface {
			continue
		}
		tree.UpdateSurface(id, func(sp *node.SurfaceProperties) {
			sp.ZOrder = ns.Z
			if ns.Blend {
				sp.AlphaMode = gputypes.CompositeAlphaModePremultiplied
			}
			if b := ns.Buffer; b != nil {
				sp.Buffer = &node.Buffer{
					Sequence: 1,
					Size:     gputypes.Extent3D{Width: b.Width, Height: b.Height, DepthOrArrayLayers: 1},
					Format:   gputypes.TextureFormatBGRA8Unorm,
				}
			}
		})
	}

	for _, d := range s.Display {
		for _, m := range d.Mirror {
			tree.AttachCrossDisplay(node.ID(d.ID), node.ID(m))
		}
	}
	return screens, nil
}

// apply queues the edits of frame i. Frames past the end of the script
// change nothing.
func (s *sceneFile) apply(tree *node.Tree, i int) {
	if i >= len(s.Frame) {
		return
	}
	f := s.Frame[i]
	for _, id := range f.Dirty {
		tree.MarkContentDirty(node.ID(id))
	}
	for _, id := range f.Buffer {
		tree.UpdateSurface(node.ID(id), func(sp *node.SurfaceProperties) {
			if sp.Buffer != nil {
				sp.Buffer.Sequence++
			}
		})
	}
	for _, m := range f.Move {
		tree.Update(node.ID(m.ID), func(p *node.Properties) { p.Bounds = rectF(m.Rect) })
	}
	for _, z := range f.ZOrder {
		tree.UpdateSurface(node.ID(z.ID), func(sp *node.SurfaceProperties) { sp.ZOrder = z.Z })
	}
	for _, id := range f.Remove {
		if n, ok := tree.Get(node.ID(id)); ok {
			tree.RemoveChild(n.ParentID(), n.ID())
		}
	}
	for _, id := range f.Animate {
		tree.Update(node.ID(id), func(p *node.Properties) { p.Animating = !p.Animating })
	}
}
