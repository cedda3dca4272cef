// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package prepare

import (
	"cmp"
	"maps"
	"slices"

	"github.com/gogpu/rosen/dirty"
	"github.com/gogpu/rosen/internal/rlog"
	"github.com/gogpu/rosen/node"
	"github.com/gogpu/rosen/params"
	"github.com/gogpu/rosen/region"
)

// Visitor runs the quick-prepare pass.
type Visitor struct {
	tree        *node.Tree
	store       *params.Store
	cfg         Config
	recorder    Recorder
	roundCorner RoundCorner

	vsync    uint64
	prepared map[node.ID]bool // displays prepared in this vsync
	cross    map[node.ID]crossEntry

	surfaces map[node.ID]*surfaceRecord
	displays map[node.ID]*displayRecord
	subtrees map[node.ID]subtreeCache

	f frameState
}

// frameState is reset at every display entry and dropped at its end.
type frameState struct {
	display *node.Node
	screen  node.ScreenInfo
	mgr     *dirty.Manager
	rec     *displayRecord
	frame   uint64

	surfaces []*surfaceVisit
	byID     map[node.ID]*surfaceVisit

	filters           []filterRecord
	filterMerged      []bool
	filterDamage      region.Region
	dirtyGlobalFilter bool

	occlusion region.Region
	cutouts   []region.Rect
}

// New creates a Visitor over tree. Results are staged into store; a nil
// store gets a private one.
func New(tree *node.Tree, store *params.Store, opts ...Option) *Visitor {
	if store == nil {
		store = params.NewStore()
	}
	v := &Visitor{
		tree:     tree,
		store:    store,
		cfg:      DefaultConfig(),
		prepared: make(map[node.ID]bool),
		cross:    make(map[node.ID]crossEntry),
		surfaces: make(map[node.ID]*surfaceRecord),
		displays: make(map[node.ID]*displayRecord),
		subtrees: make(map[node.ID]subtreeCache),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Config returns the traversal configuration.
func (v *Visitor) Config() Config { return v.cfg }

// Store returns the params store results are staged into.
func (v *Visitor) Store() *params.Store { return v.store }

// BeginFrame starts a new vsync. Displays prepared after it share the
// cross-display bookkeeping: a surface shown on several displays is prepared
// by the display it belongs to and mirrored on the others, so owners should
// be prepared first. PrepareFrame does that ordering.
//
// Preparing a display twice without BeginFrame starts a new vsync.
func (v *Visitor) BeginFrame() {
	v.vsync++
	clear(v.prepared)
	clear(v.cross)
}

// PrepareFrame starts a vsync and prepares every display in screens. A
// display owning cross-display surfaces goes before the displays mirroring
// them; otherwise displays go in ascending id order. The params are
// returned in preparation order.
func (v *Visitor) PrepareFrame(screens map[node.ID]node.ScreenInfo) []params.DisplayParams {
	v.BeginFrame()
	order := v.prepareOrder(slices.Sorted(maps.Keys(screens)))
	out := make([]params.DisplayParams, 0, len(order))
	for _, id := range order {
		out = append(out, v.QuickPrepare(id, screens[id]))
	}
	return out
}

// prepareOrder sorts ids so that the owners of mirrored surfaces come
// before the displays mirroring them. Mutual mirroring keeps id order for
// the display reached first.
func (v *Visitor) prepareOrder(ids []node.ID) []node.ID {
	wanted := make(map[node.ID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	done := make(map[node.ID]bool, len(ids))
	out := make([]node.ID, 0, len(ids))
	var add func(id node.ID)
	add = func(id node.ID) {
		if done[id] {
			return
		}
		done[id] = true
		for _, owner := range v.crossOwners(id) {
			if wanted[owner] {
				add(owner)
			}
		}
		out = append(out, id)
	}
	for _, id := range ids {
		add(id)
	}
	return out
}

// crossOwners returns the displays owning the surfaces mirrored onto
// display, in ascending order.
func (v *Visitor) crossOwners(display node.ID) []node.ID {
	var owners []node.ID
	for _, n := range v.tree.CrossDisplaySurfaces(display) {
		if owner, ok := v.crossOwner(n); ok && owner != display && !slices.Contains(owners, owner) {
			owners = append(owners, owner)
		}
	}
	slices.Sort(owners)
	return owners
}

// QuickPrepare runs the pass for one display and stages its params.
//
// A missing display or a display without a dirty manager is logged and
// yields Skipped params; nothing else is touched.
func (v *Visitor) QuickPrepare(id node.ID, screen node.ScreenInfo) params.DisplayParams {
	log := rlog.Logger()
	d, ok := v.tree.Get(id)
	if !ok || d.Kind() != node.KindDisplay {
		log.Warn("prepare: missing display", "display", id)
		return params.DisplayParams{ID: id, Screen: screen, Skipped: true}
	}
	if d.Dirty == nil {
		log.Warn("prepare: display has no dirty manager", "display", id)
		return params.DisplayParams{ID: id, Screen: screen, Skipped: true}
	}
	if v.prepared[id] || v.vsync == 0 {
		v.BeginFrame()
	}
	v.prepared[id] = true

	rec, ok := v.displays[id]
	if !ok {
		rec = &displayRecord{}
		v.displays[id] = rec
		d.Dirty.Reconfigure(v.cfg.DirtyOptions()...)
	}
	mgr := d.Dirty
	resized := mgr.SetSurfaceRect(screen.Rect())
	mgr.SetActiveRect(screen.ActiveRect)
	mgr.Clear()

	var cutouts []region.Rect
	if v.roundCorner != nil {
		cutouts = v.roundCorner.CutoutDirty(screen)
	}

	first := rec.frames == 0
	rotated := !first && screen.Rotation != rec.lastScreen.Rotation
	if !first && !rotated && !resized && !d.IsSubtreeDirty() && !v.crossDirty(id, rec) &&
		!v.cfg.ForcePrepare && !v.cfg.ShowRefreshRate && len(cutouts) == 0 &&
		screen.ActiveRect == rec.lastScreen.ActiveRect {
		return v.skipDisplay(d, screen, rec)
	}

	v.f = frameState{
		display: d,
		screen:  screen,
		mgr:     mgr,
		rec:     rec,
		frame:   rec.frames + 1,
		byID:    make(map[node.ID]*surfaceVisit),
		cutouts: cutouts,
	}
	full := first || rotated || resized || !v.cfg.PartialRender
	if full {
		log.Debug("prepare: full invalidation", "display", id,
			"first", first, "rotated", rotated, "resized", resized)
		mgr.MergeSurfaceRect()
	}
	if r := d.TakeRemovedChildDirty(); !r.IsEmpty() {
		mgr.MarkDirty(dirty.TypeRemoveChild, uint64(id), r)
	}

	ctx := rootContext(screen, mgr, full || d.IsGeometryDirty())
	top := v.topLevel(d)
	for i, c := range top {
		cctx := ctx
		cctx.Sibling = len(top) - 1 - i
		v.visit(cctx, c)
	}
	d.Render.AbsMatrix = node.Identity()
	d.Render.AbsRect = screen.Rect()
	d.Render.DrawRect = screen.Rect()
	d.Render.Prepared = true
	d.ClearDirty()

	return v.finish()
}

// skipDisplay reuses the previous layer set for a clean display.
func (v *Visitor) skipDisplay(d *node.Node, screen node.ScreenInfo, rec *displayRecord) params.DisplayParams {
	rlog.Logger().Debug("prepare: display clean, reusing layers", "display", d.ID())
	rec.frames++
	p := rec.lastParams
	p.ID = d.ID()
	p.Frame = rec.frames
	p.Screen = screen
	p.Skipped = true
	p.Animating = false
	d.Dirty.ClipDirtyRectWithinSurface()
	p.Dirty = d.Dirty.Sync()
	rec.lastScreen = screen
	rec.lastParams = p
	v.store.Stage(p)
	return p
}

// crossDirty reports whether a surface mirrored onto the display, or any
// surface of its subtree, changed.
func (v *Visitor) crossDirty(display node.ID, rec *displayRecord) bool {
	if len(rec.staleCross) > 0 {
		return true
	}
	for _, n := range v.tree.CrossDisplaySurfaces(display) {
		owner, ok := v.crossOwner(n)
		if !ok || owner == display {
			continue
		}
		e, ok := v.cross[n.ID()]
		if !ok || e.vsync != v.vsync {
			if n.IsSubtreeDirty() {
				return true
			}
			continue
		}
		if _, shown := rec.lastSurfaces[n.ID()]; shown && len(e.visits) == 0 {
			return true
		}
		for _, s := range e.visits {
			if _, shown := rec.lastSurfaces[s.id]; !shown {
				return true
			}
			if !s.dirty.IsEmpty() || s.posChanged || s.zChanged || s.shadowChanged || s.outsetChanged {
				return true
			}
		}
	}
	return false
}

// topLevel returns the display children and mirrored surfaces front to
// back: higher z first, later siblings first among equal z.
func (v *Visitor) topLevel(d *node.Node) []*node.Node {
	children := v.tree.Children(d.ID())
	for _, n := range v.tree.CrossDisplaySurfaces(d.ID()) {
		if owner, ok := v.crossOwner(n); !ok || owner != d.ID() {
			children = append(children, n)
		}
	}
	type entry struct {
		n     *node.Node
		z     int
		index int
	}
	entries := make([]entry, len(children))
	for i, c := range children {
		entries[i] = entry{n: c, index: i}
		if sp, ok := c.Surface(); ok {
			entries[i].z = sp.ZOrder
		}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.z, a.z); c != 0 {
			return c
		}
		return cmp.Compare(b.index, a.index)
	})
	out := make([]*node.Node, len(entries))
	for i, e := range entries {
		out[i] = e.n
	}
	return out
}

// visit dispatches on the node kind and returns the subtree draw rect.
func (v *Visitor) visit(ctx TraversalContext, n *node.Node) region.Rect {
	switch n.Kind() {
	case node.KindSurface:
		return v.visitSurface(ctx, n)
	case node.KindEffect, node.KindCanvas, node.KindRoot:
		return v.visitCanvas(ctx, n)
	default:
		rlog.Logger().Warn("prepare: unexpected node kind", "node", n.ID(), "kind", n.Kind())
		return region.Rect{}
	}
}

// visitChildren visits the children of n with ctx and returns the union of
// their subtree rects. reverse visits the last child first.
func (v *Visitor) visitChildren(ctx TraversalContext, n *node.Node, reverse bool) region.Rect {
	children := v.tree.Children(n.ID())
	var subtree region.Rect
	one := func(i int) {
		c := ctx
		c.Sibling = i
		subtree = subtree.JoinRect(v.visit(c, children[i]))
	}
	if reverse {
		for i := len(children) - 1; i >= 0; i-- {
			one(i)
		}
		return subtree
	}
	for i := range children {
		one(i)
	}
	return subtree
}

// mark returns the current lengths of the surface and filter lists.
func (v *Visitor) mark() (surfaces, filters int) {
	return len(v.f.surfaces), len(v.f.filters)
}

// cacheSubtree remembers what the subtree of id added since mark.
func (v *Visitor) cacheSubtree(id node.ID, surfaces, filters int) {
	c := subtreeCache{
		surfaces: make([]node.ID, 0, len(v.f.surfaces)-surfaces),
		filters:  slices.Clone(v.f.filters[filters:]),
	}
	for _, s := range v.f.surfaces[surfaces:] {
		c.surfaces = append(c.surfaces, s.id)
	}
	v.subtrees[id] = c
}

// replaySubtree re-adds the surfaces and filters of a skipped subtree as
// they were last prepared.
func (v *Visitor) replaySubtree(id node.ID) {
	c := v.subtrees[id]
	for _, sid := range c.surfaces {
		rec, ok := v.surfaces[sid]
		if !ok || !rec.hasLast {
			continue
		}
		n, ok := v.tree.Get(sid)
		if !ok {
			continue
		}
		s := rec.last
		s.node = n
		s.order = len(v.f.surfaces)
		s.dirty = region.Region{}
		s.zChanged, s.posChanged, s.shadowChanged, s.outsetChanged = false, false, false, false
		s.visible, s.occluded, s.cacheOccludes = region.Region{}, false, false
		s.disabled, s.reason = false, node.HwcEnabled
		s.mirror, s.replayed = false, true
		if n.Dirty != nil {
			n.Dirty.Clear()
		}
		v.addSurface(&s)
		if s.hwcCandidate && s.nodeReason != node.HwcEnabled {
			v.disableHwc(&s, s.nodeReason)
		}
	}
	for _, f := range c.filters {
		f.dirty = false
		v.f.filters = append(v.f.filters, f)
	}
}

func (v *Visitor) addSurface(s *surfaceVisit) {
	v.f.surfaces = append(v.f.surfaces, s)
	v.f.byID[s.id] = s
}

// registerFilter records a background filter for the fixed point and the
// hardware layer checks.
func (v *Visitor) registerFilter(owner node.ID, id node.ID, rect region.Rect, f node.Filter, changed bool) {
	if rect.IsEmpty() {
		return
	}
	r := filterRecord{
		id:      id,
		surface: owner,
		rect:    rect,
		global:  f.Global || owner == 0,
		dirty:   changed,
	}
	v.f.filters = append(v.f.filters, r)
	if r.global && r.dirty {
		v.f.dirtyGlobalFilter = true
	}
}

// surfaceRecord returns the persistent record of a surface, creating it on
// first sight.
func (v *Visitor) surfaceRecord(n *node.Node) *surfaceRecord {
	rec, ok := v.surfaces[n.ID()]
	if !ok {
		rec = &surfaceRecord{}
		v.surfaces[n.ID()] = rec
		n.Dirty.Reconfigure(v.cfg.DirtyOptions()...)
	}
	return rec
}

// frontToBack returns the collected surfaces sorted front to back: by
// window z, then nesting depth (children above parents), own z, paint index
// and visit order.
func frontToBack(list []*surfaceVisit) []*surfaceVisit {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b *surfaceVisit) int {
		if c := cmp.Compare(b.windowZ, a.windowZ); c != 0 {
			return c
		}
		if c := cmp.Compare(b.depth, a.depth); c != 0 {
			return c
		}
		if c := cmp.Compare(b.sp.ZOrder, a.sp.ZOrder); c != 0 {
			return c
		}
		if c := cmp.Compare(b.sibling, a.sibling); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	return out
}
