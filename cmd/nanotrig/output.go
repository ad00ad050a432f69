// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/analysis"
	"github.com/lourdesurda/ZZAnalysis/pkg/stats"
	"github.com/lourdesurda/ZZAnalysis/pkg/ux"
)

// renderReport prints the human-readable form of an efficiency report.
func renderReport(r *analysis.Report) {
	ux.Title("Trigger efficiency: " + r.Dataset)
	ux.KeyValue("triggers", fmt.Sprintf("%s (%d)", strings.Join(r.Triggers, ", "), len(r.Triggers)))
	ux.KeyValue("reference", r.RefField)
	ux.KeyValue("selected", fmt.Sprintf("%d / %d events", r.Counts.Passed, r.Counts.Seen))
	ux.KeyValue("gen sumw", fmt.Sprintf("%.6g over %d entries", r.Normalized.Sumw, r.Normalized.Entries))
	ux.KeyValue("raw", formatEfficiency(r.Raw))
	ux.KeyValue("weighted", formatEfficiency(r.Weighted))
	ux.KeyValue("level", fmt.Sprintf("%.1f%%", r.Level*100))
	ux.KeyValue("elapsed", r.Elapsed.Round(time.Millisecond).String())

	if r.Counts.NegativeWeights > 0 {
		ux.Warning(fmt.Sprintf("%d selected events carried negative weights", r.Counts.NegativeWeights))
	}
	for _, e := range r.Errors {
		ux.Warning(e)
	}
}

// formatEfficiency renders a point estimate with its asymmetric bounds.
func formatEfficiency(e *stats.Efficiency) string {
	if e == nil {
		return "undefined"
	}
	if math.IsNaN(e.ErrUp) || math.IsNaN(e.ErrDown) {
		return fmt.Sprintf("%.4f (bounds undefined)", e.Value)
	}
	return fmt.Sprintf("%.4f +%.4f -%.4f", e.Value, e.ErrUp, e.ErrDown)
}
