// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nanoevent

// Run is the generator-level bookkeeping record written once per run block.
//
// GenEventCount is the number of generated events in the block and
// GenEventSumw the sum of their generator weights. Samples produced in
// several jobs carry several run blocks; totals are the field-wise sum.
type Run struct {
	GenEventCount int64   `json:"gen_event_count"`
	GenEventSumw  float64 `json:"gen_event_sumw"`
}

// DatasetSummary aggregates the run blocks of one dataset.
type DatasetSummary struct {
	GenEventCount int64   `json:"gen_event_count"`
	GenEventSumw  float64 `json:"gen_event_sumw"`
	Entries       int64   `json:"entries"`
}

// Summarize sums run blocks field-wise and records the event entry count.
// Safe on an empty slice: the zero summary.
func Summarize(runs []Run, entries int64) DatasetSummary {
	var s DatasetSummary
	for _, r := range runs {
		s.GenEventCount += r.GenEventCount
		s.GenEventSumw += r.GenEventSumw
	}
	s.Entries = entries
	return s
}
