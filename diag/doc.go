// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package diag collects the diagnostics of the quick-prepare pass.
//
// A [Recorder] is passed to prepare.WithRecorder. It keeps a bounded log of
// hardware layer disqualifications and the latest damage breakdown of each
// display, and renders both as a localized text [Report]:
//
//	rec := diag.NewRecorder(diag.WithLimit(256))
//	v := prepare.New(tree, nil, prepare.WithRecorder(rec))
//	...
//	_ = rec.Report().Format(os.Stdout, language.English)
package diag
