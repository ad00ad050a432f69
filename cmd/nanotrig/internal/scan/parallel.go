// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
)

// filterParallel partitions the stream across opts.Workers goroutines.
//
// The stream is single-use, so partitioning is dynamic: a mutex-guarded
// puller hands each worker the next record. Every worker owns a private
// Counts; partials are merged after the group drains. The first error
// cancels the remaining workers through the errgroup context.
func filterParallel(ctx context.Context, s nanoevent.Stream, opts Options) (Counts, error) {
	names := opts.Triggers.Names()

	var (
		mu    sync.Mutex
		drawn int64
	)
	// pull returns the next record, honoring the examine limit. ok=false
	// means a clean end of the partition.
	pull := func() (nanoevent.Event, bool, error) {
		mu.Lock()
		defer mu.Unlock()
		if opts.Limit != nil && drawn >= *opts.Limit {
			return nanoevent.Event{}, false, nil
		}
		if !s.Next() {
			return nanoevent.Event{}, false, s.Err()
		}
		drawn++
		return s.Event(), true, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	parts := make([]Counts, opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		part := &parts[i]
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("scan interrupted: %w", err)
				}
				ev, ok, err := pull()
				if err != nil {
					return fmt.Errorf("read event stream: %w", err)
				}
				if !ok {
					return nil
				}
				if err := examine(ev, names, opts.RefField, opts.WeightField, part); err != nil {
					return fmt.Errorf("scan: %w", err)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}

	var total Counts
	for i := range parts {
		total.Merge(parts[i])
	}
	return total, nil
}
