// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rosen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/rosen/internal/rlog"
	"github.com/gogpu/rosen/prepare"
)

// Config errors.
var (
	// ErrUnknownConfigKey is returned for keys the configuration does not
	// define, usually a typo.
	ErrUnknownConfigKey = errors.New("rosen: unknown config key")

	// ErrInvalidConfig is returned for values out of range.
	ErrInvalidConfig = errors.New("rosen: invalid config")
)

// LoadConfig reads a TOML configuration file. Keys missing from the file
// keep their [prepare.DefaultConfig] values.
func LoadConfig(path string) (prepare.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return prepare.Config{}, fmt.Errorf("rosen: load config: %w", err)
	}
	defer f.Close()

	cfg, err := DecodeConfig(f)
	if err != nil {
		return prepare.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	rlog.Logger().Info("rosen: config loaded", "path", path)
	return cfg, nil
}

// DecodeConfig decodes a TOML configuration on top of the defaults.
//
// Example:
//
//	partial_render = true
//	hwc_enabled = true
//	dirty_alignment = 32
//	hwc_overlap_whitelist = ["pip"]
//	refresh_rate_rect = { left = 0, top = 0, width = 200, height = 60 }
func DecodeConfig(r io.Reader) (prepare.Config, error) {
	cfg := prepare.DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return prepare.Config{}, fmt.Errorf("rosen: decode config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return prepare.Config{}, fmt.Errorf("%w: %s", ErrUnknownConfigKey, strings.Join(names, ", "))
	}
	if err := validateConfig(cfg); err != nil {
		return prepare.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg prepare.Config) error {
	var errs []error
	if cfg.DirtyAlignment < 0 {
		errs = append(errs, fmt.Errorf("%w: dirty_alignment %d is negative", ErrInvalidConfig, cfg.DirtyAlignment))
	}
	if cfg.MaxDirtyRects < 1 {
		errs = append(errs, fmt.Errorf("%w: max_dirty_rects %d is below 1", ErrInvalidConfig, cfg.MaxDirtyRects))
	}
	if cfg.HistoryDepth < 1 {
		errs = append(errs, fmt.Errorf("%w: history_depth %d is below 1", ErrInvalidConfig, cfg.HistoryDepth))
	}
	return errors.Join(errs...)
}
