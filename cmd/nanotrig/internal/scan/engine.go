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
	"time"

	"golang.org/x/time/rate"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/triggers"
	"github.com/lourdesurda/ZZAnalysis/pkg/logging"
	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
)

// progressInterval throttles scan progress logging.
const progressInterval = 2 * time.Second

// Options configures a selection scan.
type Options struct {
	// Triggers is the OR-combined trigger set. Must be non-empty.
	Triggers triggers.Set

	// RefField is the reference-selection flag; an event is selected only
	// when this field equals 1 exactly.
	RefField string

	// WeightField is the per-event weight summed over selected events.
	WeightField string

	// Limit optionally caps how many records are examined. Nil scans the
	// whole stream.
	Limit *int64

	// Workers > 1 partitions the stream across that many goroutines and
	// merges the partial counts. Order of examination is then unspecified;
	// the final counts are not.
	Workers int

	// Log receives progress output. Nil falls back to the default logger.
	Log *logging.Logger
}

func (o *Options) validate() error {
	if o.Triggers.Len() == 0 {
		return fmt.Errorf("scan: %w", triggers.ErrEmptySet)
	}
	if o.RefField == "" {
		return fmt.Errorf("scan: reference field not configured")
	}
	if o.WeightField == "" {
		return fmt.Errorf("scan: weight field not configured")
	}
	if o.Log == nil {
		o.Log = logging.Default()
	}
	return nil
}

// Filter scans the event stream once and accumulates selection counts.
//
// # Description
//
// A record is selected when at least one configured trigger flag is set
// (nonzero, short-circuit OR in list order) and the reference field equals
// 1. Selected records contribute their weight to the weighted sum; a
// negative weight is recorded as a data-quality warning and summed
// unchanged.
//
// A configured field missing from a record aborts the scan with a
// *nanoevent.MissingFieldError and no partial counts: the configuration
// does not match the dataset and any result would be wrong. Lookups follow
// the selection logic, so fields after a short-circuit are not touched.
//
// # Inputs
//
//   - ctx: cancellation is polled between records; a cancelled scan
//     returns the context error, not partial counts.
//   - s: single-use event stream, consumed in order.
//   - opts: see Options.
//
// # Outputs
//
//   - Counts: final accumulator, including data-quality warnings.
//   - error: configuration, missing-field, stream read, or context error.
func Filter(ctx context.Context, s nanoevent.Stream, opts Options) (Counts, error) {
	if ctx == nil {
		return Counts{}, fmt.Errorf("scan: nil context")
	}
	if err := opts.validate(); err != nil {
		return Counts{}, err
	}

	start := time.Now()
	var (
		counts Counts
		err    error
	)
	if opts.Workers > 1 {
		counts, err = filterParallel(ctx, s, opts)
	} else {
		counts, err = filterSequential(ctx, s, opts)
	}
	if err != nil {
		return Counts{}, err
	}

	observeScan(counts, time.Since(start))
	opts.Log.Info("scan finished",
		"seen", counts.Seen,
		"passed", counts.Passed,
		"weighted_passed", counts.WeightedPassed,
		"negative_weights", counts.NegativeWeights,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return counts, nil
}

func filterSequential(ctx context.Context, s nanoevent.Stream, opts Options) (Counts, error) {
	names := opts.Triggers.Names()
	limiter := rate.NewLimiter(rate.Every(progressInterval), 1)

	var c Counts
	for (opts.Limit == nil || c.Seen < *opts.Limit) && s.Next() {
		if err := ctx.Err(); err != nil {
			return Counts{}, fmt.Errorf("scan interrupted: %w", err)
		}
		if err := examine(s.Event(), names, opts.RefField, opts.WeightField, &c); err != nil {
			return Counts{}, fmt.Errorf("scan: %w", err)
		}
		if limiter.Allow() {
			opts.Log.Debug("scan progress", "seen", c.Seen, "passed", c.Passed)
		}
	}
	if err := s.Err(); err != nil {
		return Counts{}, fmt.Errorf("read event stream: %w", err)
	}
	return c, nil
}

// examine applies the selection predicate to one record, updating c.
func examine(ev nanoevent.Event, names []string, refField, weightField string, c *Counts) error {
	c.Seen++

	passed := false
	for _, name := range names {
		set, err := ev.FlagSet(name)
		if err != nil {
			return err
		}
		if set {
			passed = true
			break
		}
	}
	if !passed {
		return nil
	}

	ref, err := ev.Lookup(refField)
	if err != nil {
		return err
	}
	if ref != 1 {
		return nil
	}

	c.Passed++
	w, err := ev.Lookup(weightField)
	if err != nil {
		return err
	}
	if w < 0 {
		c.noteNegativeWeight(ev.Index, weightField, w)
	}
	c.WeightedPassed += w
	return nil
}
