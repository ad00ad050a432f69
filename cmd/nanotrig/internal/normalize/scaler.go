// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package normalize derives the weighted denominator for efficiency
// measurements from generator-level sums.
package normalize

import (
	"errors"
	"fmt"

	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
)

// ErrNoEntries is returned when a capped normalization is asked to divide
// by a zero processed-entry count.
var ErrNoEntries = errors.New("zero processed entries while capping")

// Scaled is a normalized denominator: the generator-level weighted sum and
// the effective entry count it corresponds to.
type Scaled struct {
	Sumw    float64 `json:"sumw"`
	Entries int64   `json:"entries"`
}

// Normalize computes the weighted denominator for a dataset.
//
// Without a cap the denominator is the plain generator sumw. When a capped
// scan consumed only the first maxEntries of processed available entries,
// the generator sum must shrink by the same fraction:
//
//	sumw' = sumw * maxEntries / processed
//
// The scale only applies when processed exceeds the cap; a dataset smaller
// than its cap was read in full and keeps the exact sum. Re-normalizing an
// already-capped result with processed = maxEntries is therefore a no-op.
//
// Pure arithmetic on the summary, no dataset access. Returns ErrNoEntries
// if the scaling branch is reached with processed == 0 (only possible with
// a negative cap).
func Normalize(sum nanoevent.DatasetSummary, processed int64, maxEntries *int64) (Scaled, error) {
	if maxEntries == nil || processed <= *maxEntries {
		return Scaled{Sumw: sum.GenEventSumw, Entries: processed}, nil
	}
	if processed == 0 {
		return Scaled{}, fmt.Errorf("normalize with cap %d: %w", *maxEntries, ErrNoEntries)
	}
	return Scaled{
		Sumw:    sum.GenEventSumw * float64(*maxEntries) / float64(processed),
		Entries: *maxEntries,
	}, nil
}
