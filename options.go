// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rosen

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/rosen/params"
	"github.com/gogpu/rosen/prepare"
)

// Option configures a Compositor during creation.
//
// Example:
//
//	cfg, err := rosen.LoadConfig("rosen.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c := rosen.New(tree, rosen.WithConfig(cfg), rosen.WithWindow(win))
type Option func(*options)

// options holds optional configuration for Compositor creation.
type options struct {
	cfg         prepare.Config
	window      gpucontext.WindowProvider
	roundCorner prepare.RoundCorner
	recorder    prepare.Recorder
	store       *params.Store
}

// defaultOptions returns the default compositor options.
func defaultOptions() options {
	return options{
		cfg: prepare.DefaultConfig(),
	}
}

// WithConfig sets the traversal configuration.
func WithConfig(cfg prepare.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithWindow sets the host window. The compositor asks it for another frame
// while animations are running, and [Compositor.WindowScreen] derives the
// screen size from it.
func WithWindow(w gpucontext.WindowProvider) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithRoundCorner sets the round-corner overlay whose cutouts are repainted
// every prepared frame.
func WithRoundCorner(rc prepare.RoundCorner) Option {
	return func(o *options) {
		o.roundCorner = rc
	}
}

// WithRecorder sets a diagnostics recorder, typically a diag.Recorder.
func WithRecorder(r prepare.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithStore publishes results into an existing params store, for example
// one shared with the paint stage.
func WithStore(s *params.Store) Option {
	return func(o *options) {
		o.store = s
	}
}
