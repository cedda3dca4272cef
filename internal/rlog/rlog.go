// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package rlog holds the logger shared by all rosen sub-packages.
//
// The root package owns configuration (rosen.SetLogger); sub-packages only
// read the current logger through Logger, which avoids an import cycle
// between the facade and the packages it drives.
package rlog

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// Logger returns the current package logger.
func Logger() *slog.Logger { return loggerPtr.Load() }

// SetLogger updates the shared logger. Nil restores the silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}
