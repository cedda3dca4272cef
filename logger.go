// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rosen

import (
	"log/slog"

	"github.com/gogpu/rosen/internal/rlog"
)

// SetLogger configures the logger for rosen and all its sub-packages.
// By default, rosen produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by rosen:
//   - [slog.LevelDebug]: per-frame decisions (display skip, full invalidation,
//     hardware layer disqualification)
//   - [slog.LevelInfo]: lifecycle events (configuration loaded)
//   - [slog.LevelWarn]: degraded subtrees (missing dirty manager, inconsistent
//     topology, dropped tree edits)
//
// Example:
//
//	rosen.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	rlog.SetLogger(l)
}

// Logger returns the current logger used by rosen.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return rlog.Logger()
}
