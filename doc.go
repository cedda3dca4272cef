// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package rosen is the quick-prepare stage of a retained-mode compositor.
//
// # Overview
//
// Every vsync the UI side edits a tree of render nodes: displays, window
// surfaces and the canvas nodes drawn inside them. Before anything is
// painted, rosen walks the tree once per display and decides
//   - which screen area must be repainted (the damage),
//   - which parts of every surface are hidden by opaque windows above it,
//   - which self-drawing surfaces (video, camera) can bypass the GPU and be
//     composed directly by the display hardware.
//
// The results are published as immutable [params.Snapshot] values that the
// paint stage reads without locking.
//
// # Quick Start
//
//	tree := node.NewTree()
//	_ = tree.Register(node.NewDisplay(1, "builtin"))
//	_ = tree.Register(node.NewSurface(10, "launcher", node.SurfaceAppWindow))
//	tree.AddChild(1, 10, -1)
//	tree.Update(10, func(p *node.Properties) { p.Bounds = region.RectF{W: 1200, H: 2000} })
//
//	c := rosen.New(tree)
//	snap, err := c.RenderFrame(map[node.ID]node.ScreenInfo{
//	    1: {Width: 1200, Height: 2000},
//	})
//
// # Architecture
//
// The module is organized into:
//   - region: integer rectangles and the region algebra
//   - dirty: per-surface and per-display damage accumulation
//   - node: the render node tree with staged edits
//   - prepare: the traversal, occlusion, hardware layer selection and
//     global damage aggregation
//   - params: the published per-frame results
//   - diag: diagnostics recorders and reports
//
// # Coordinate System
//
// All rectangles are in screen pixels:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
package rosen
