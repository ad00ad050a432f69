// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ==============================================================================
// Prometheus Metrics
// ==============================================================================

var (
	scanEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nanotrig_scan_events_total",
		Help: "Event records examined by selection scans",
	})

	scanSelectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nanotrig_scan_selected_total",
		Help: "Event records passing the trigger selection",
	})

	scanNegativeWeightTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nanotrig_scan_negative_weight_total",
		Help: "Selected records carrying a negative event weight",
	})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nanotrig_scan_duration_seconds",
		Help:    "Selection scan wall time",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})
)

// observeScan records one completed scan. Counters are bumped in bulk after
// the pass rather than per record to keep the hot loop free of metric
// overhead.
func observeScan(c Counts, elapsed time.Duration) {
	scanEventsTotal.Add(float64(c.Seen))
	scanSelectedTotal.Add(float64(c.Passed))
	scanNegativeWeightTotal.Add(float64(c.NegativeWeights))
	scanDuration.Observe(elapsed.Seconds())
}
