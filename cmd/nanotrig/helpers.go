// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/config"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/dataset"
)

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}

// openDataset opens path with the summary cache wired per configuration.
// Cache trouble degrades to a plain scan. The returned closer releases
// the cache and is non-nil in every case.
func openDataset(path string, noCache bool) (*dataset.Dataset, func(), error) {
	if noCache || !config.Global.Cache.Enabled {
		d, err := dataset.Open(path)
		return d, func() {}, err
	}

	cache, err := dataset.OpenCache(dataset.CacheConfig{
		Path:   expandHome(config.Global.Cache.Dir),
		Logger: appLogger.Slog(),
	})
	if err != nil {
		appLogger.Warn("summary cache unavailable", "error", err)
		d, openErr := dataset.Open(path)
		return d, func() {}, openErr
	}

	d, err := dataset.OpenCached(path, cache, appLogger)
	if err != nil {
		_ = cache.Close()
		return nil, nil, err
	}
	return d, func() { _ = cache.Close() }, nil
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
