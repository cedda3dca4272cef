// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rosen

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/rosen/internal/rlog"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/params"
	"github.com/gogpu/rosen/prepare"
)

// Compositor drives the quick-prepare stage frame by frame.
//
// The UI side edits the tree at any time; RenderFrame applies the queued
// edits, prepares every display and publishes the results. RenderFrame
// calls are serialized. Readers of [Compositor.Snapshot] never block.
type Compositor struct {
	mu      sync.Mutex
	tree    *node.Tree
	store   *params.Store
	visitor *prepare.Visitor
	window  gpucontext.WindowProvider
}

// New creates a Compositor over tree.
func New(tree *node.Tree, opts ...Option) *Compositor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = params.NewStore()
	}

	vopts := []prepare.Option{prepare.WithConfig(o.cfg)}
	if o.recorder != nil {
		vopts = append(vopts, prepare.WithRecorder(o.recorder))
	}
	if o.roundCorner != nil {
		vopts = append(vopts, prepare.WithRoundCorner(o.roundCorner))
	}
	return &Compositor{
		tree:    tree,
		store:   o.store,
		visitor: prepare.New(tree, o.store, vopts...),
		window:  o.window,
	}
}

// Tree returns the render node tree.
func (c *Compositor) Tree() *node.Tree { return c.tree }

// Config returns the traversal configuration.
func (c *Compositor) Config() prepare.Config { return c.visitor.Config() }

// Snapshot returns the latest published frame.
func (c *Compositor) Snapshot() *params.Snapshot { return c.store.Snapshot() }

// WindowScreen describes the host window as a screen. Without a window set
// by [WithWindow] it returns the zero ScreenInfo and false.
func (c *Compositor) WindowScreen(rot node.Rotation, refreshRate int) (node.ScreenInfo, bool) {
	if c.window == nil {
		return node.ScreenInfo{}, false
	}
	return node.ScreenFromWindow(c.window, rot, refreshRate), true
}

// RenderFrame runs one vsync: queued tree edits are committed, the given
// displays are prepared with owners of cross-display surfaces first and
// otherwise in ascending id order, and the results are published
// atomically.
//
// Edits the tree had to drop are reported in the returned error; the frame
// is still rendered with every valid edit applied, and the snapshot is
// never nil.
func (c *Compositor) RenderFrame(screens map[node.ID]node.ScreenInfo) (*params.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	log := rlog.Logger()

	gen, err := c.tree.Commit()
	if err != nil {
		log.Warn("rosen: dropped tree edits", "generation", gen, "err", err)
		err = fmt.Errorf("rosen: commit generation %d: %w", gen, err)
	}

	animating := false
	for _, p := range c.visitor.PrepareFrame(screens) {
		animating = animating || p.Animating
	}
	snap := c.store.Commit()

	if animating && c.window != nil {
		c.window.RequestRedraw()
	}
	return snap, err
}
