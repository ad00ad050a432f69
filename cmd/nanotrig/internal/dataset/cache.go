// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/lourdesurda/ZZAnalysis/pkg/logging"
	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
)

// =============================================================================
// Summary cache
// =============================================================================
//
// Scanning run records is cheap but not free, and the same dataset files get
// analyzed over and over while a trigger list is being tuned. SummaryCache
// memoizes DatasetSummary values in a local Badger store, keyed by file
// identity (path, size, mtime). A stale or corrupt entry is never fatal: the
// caller falls back to a fresh scan.

// CacheConfig holds options for opening a summary cache.
type CacheConfig struct {
	// Path is the directory for the Badger database files.
	Path string

	// InMemory runs the store without touching disk. Used in tests.
	InMemory bool

	// SyncWrites makes writes durable before returning. The cache holds
	// only recomputable data, so this defaults to off.
	SyncWrites bool

	// Logger receives Badger's internal log output at debug level.
	// When nil, Badger is silent.
	Logger *slog.Logger
}

// DefaultCacheConfig returns the standard on-disk configuration.
func DefaultCacheConfig(path string) CacheConfig {
	return CacheConfig{
		Path:   path,
		Logger: logging.Default().Slog(),
	}
}

// InMemoryCacheConfig returns a configuration suitable for tests.
func InMemoryCacheConfig() CacheConfig {
	return CacheConfig{InMemory: true}
}

// SummaryCache persists dataset summaries between invocations.
type SummaryCache struct {
	db *badger.DB
}

// OpenCache opens a summary cache with the given configuration.
func OpenCache(cfg CacheConfig) (*SummaryCache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("cache path is required for on-disk cache")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &SummaryCache{db: db}, nil
}

// Get looks up a cached summary. The second return is false on a miss.
func (c *SummaryCache) Get(key string) (nanoevent.DatasetSummary, bool, error) {
	var sum nanoevent.DatasetSummary
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(val, &sum)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nanoevent.DatasetSummary{}, false, nil
	}
	if err != nil {
		return nanoevent.DatasetSummary{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	return sum, true, nil
}

// Put stores a summary under the given key, replacing any previous value.
func (c *SummaryCache) Put(key string, sum nanoevent.DatasetSummary) error {
	val, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Close releases the underlying store.
func (c *SummaryCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Key derives the cache key for a dataset file from its identity. Any
// rewrite of the file changes size or mtime and invalidates the entry.
func Key(path string, fi os.FileInfo) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return fmt.Sprintf("%s|%d|%d", abs, fi.Size(), fi.ModTime().UnixNano())
}

// OpenCached opens a dataset, serving its summary from the cache when
// possible. Cache trouble is logged and degrades to a fresh scan; a nil
// cache always scans.
func OpenCached(path string, cache *SummaryCache, log *logging.Logger) (*Dataset, error) {
	if log == nil {
		log = logging.Default()
	}
	if cache == nil {
		return Open(path)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	key := Key(path, fi)

	sum, ok, err := cache.Get(key)
	if err != nil {
		log.Warn("summary cache read failed, rescanning", "path", path, "error", err)
	}
	if ok {
		log.Debug("summary cache hit", "path", path, "entries", sum.Entries)
		return &Dataset{path: path, summary: sum}, nil
	}

	d, openErr := Open(path)
	if openErr != nil {
		return nil, openErr
	}
	if err := cache.Put(key, d.summary); err != nil {
		log.Warn("summary cache write failed", "path", path, "error", err)
	}
	return d, nil
}

// badgerLogger adapts Badger's logger interface onto slog. Badger is
// chatty about compactions, so everything lands at debug except real
// errors.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
