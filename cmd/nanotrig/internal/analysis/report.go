// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"time"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/normalize"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/scan"
	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
	"github.com/lourdesurda/ZZAnalysis/pkg/stats"
)

// APIVersion identifies the report schema. Bump on breaking changes.
const APIVersion = "nanotrig/v1"

// Report is the complete result of one trigger-efficiency run. It is
// stable JSON: downstream consumers (dashboards, the Influx sink, diff
// tooling) key off api_version.
type Report struct {
	APIVersion string    `json:"api_version"`
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`

	Dataset  string   `json:"dataset"`
	Triggers []string `json:"triggers"`
	RefField string   `json:"ref_field"`

	Counts     scan.Counts              `json:"counts"`
	GenSummary nanoevent.DatasetSummary `json:"gen_summary"`
	Normalized normalize.Scaled         `json:"normalized"`

	// Raw is selected/seen; Weighted is the weighted selection over the
	// normalized generator sumw. Either is nil when its denominator was
	// zero, with the cause recorded in Errors.
	Raw      *stats.Efficiency `json:"raw,omitempty"`
	Weighted *stats.Efficiency `json:"weighted,omitempty"`

	Level   float64       `json:"level"`
	Elapsed time.Duration `json:"elapsed_ns"`

	// Errors lists non-fatal per-estimate failures. A report with both
	// estimates missing is still a valid report.
	Errors []string `json:"errors,omitempty"`
}
