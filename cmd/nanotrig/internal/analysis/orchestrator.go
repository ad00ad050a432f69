// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analysis runs the full trigger-efficiency measurement: load the
// trigger list, scan the event stream, normalize the generator sums and
// turn the tallies into efficiencies with confidence bounds.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/normalize"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/scan"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/triggers"
	"github.com/lourdesurda/ZZAnalysis/pkg/logging"
	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
	"github.com/lourdesurda/ZZAnalysis/pkg/stats"
	"github.com/lourdesurda/ZZAnalysis/pkg/validation"
)

// =============================================================================
// Tracing
// =============================================================================

var (
	tracerOnce     sync.Once
	analysisTracer trace.Tracer
)

// getTracer returns the OTel tracer, initializing it lazily if needed.
// This prevents panics if OTel is not configured at startup.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		analysisTracer = otel.Tracer("nanotrig/analysis")
	})
	return analysisTracer
}

// =============================================================================
// Inputs
// =============================================================================

// Source supplies one dataset to an analysis run. *dataset.Dataset
// satisfies it; tests use in-memory implementations.
type Source interface {
	// Label names the dataset in reports and logs.
	Label() string

	// Summary returns the generator-level bookkeeping for the full
	// dataset, independent of any entry cap applied to the scan.
	Summary() nanoevent.DatasetSummary

	// Events opens a fresh single-use stream over the event records.
	Events() (nanoevent.Stream, error)
}

// Options configures a run.
type Options struct {
	// TriggerPath is the trigger list file, one HLT path name per line.
	TriggerPath string

	// RefField is the reference-selection flag; an event enters the
	// denominator logic only when this field equals 1 exactly.
	RefField string

	// WeightField names the per-event weight summed for selected events.
	WeightField string

	// MaxEntries caps both the number of entries scanned and the
	// generator normalization. Nil means the whole dataset.
	MaxEntries *int64

	// Level is the confidence level for the efficiency bounds.
	// Zero means stats.DefaultConfidenceLevel.
	Level float64

	// Workers sets the scan parallelism. Values below 2 scan on the
	// calling goroutine.
	Workers int

	// Log overrides the default logger.
	Log *logging.Logger
}

// =============================================================================
// Run
// =============================================================================

// Run executes a complete trigger-efficiency measurement over one dataset.
//
// # Description
//
// The run proceeds in phases: load and validate the trigger list, take the
// generator-level summary from the source, stream the events through the
// selection filter, down-scale the generator sumw when an entry cap was
// applied, and finally estimate the raw and weighted efficiencies with
// Clopper-Pearson bounds.
//
// Structural failures (unreadable trigger list, missing event fields, a
// cancelled context) abort the run with no report. A zero denominator in
// either efficiency is not structural: that estimate comes back nil and
// the cause is recorded in Report.Errors, while the rest of the report
// stands.
//
// # Inputs
//
//   - ctx: must be non-nil; cancellation is honored between events.
//   - src: the dataset under study.
//   - opts: run configuration; see Options.
//
// # Outputs
//
//   - *Report: the completed measurement, never partial.
//   - error: non-nil only for structural failures.
func Run(ctx context.Context, src Source, opts Options) (*Report, error) {
	if ctx == nil {
		return nil, fmt.Errorf("nil context")
	}
	if src == nil {
		return nil, fmt.Errorf("nil source")
	}
	if opts.TriggerPath == "" {
		return nil, fmt.Errorf("trigger list path is required")
	}
	if err := validation.ValidateField(opts.RefField); err != nil {
		return nil, fmt.Errorf("reference field: %w", err)
	}
	if err := validation.ValidateField(opts.WeightField); err != nil {
		return nil, fmt.Errorf("weight field: %w", err)
	}
	log := opts.Log
	if log == nil {
		log = logging.Default()
	}

	level := opts.Level
	if level == 0 {
		level = stats.DefaultConfidenceLevel
	}
	// Reject a bad level before paying for the scan.
	if level <= 0 || level >= 1 {
		return nil, fmt.Errorf("confidence level %v: %w", level, stats.ErrBadLevel)
	}

	ctx, span := getTracer().Start(ctx, "analysis.Run",
		trace.WithAttributes(
			attribute.String("dataset", src.Label()),
			attribute.String("ref_field", opts.RefField),
			attribute.Float64("level", level),
		),
	)
	defer span.End()

	start := time.Now()

	// Phase 1: trigger list.
	set, err := triggers.Load(opts.TriggerPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "trigger list")
		return nil, err
	}
	span.AddEvent("triggers_loaded",
		trace.WithAttributes(attribute.Int("count", set.Len())),
	)

	// Phase 2: generator summary.
	sum := src.Summary()
	log.Info("dataset summary",
		"dataset", src.Label(),
		"gen_event_count", sum.GenEventCount,
		"gen_event_sumw", sum.GenEventSumw,
		"entries", sum.Entries)

	// Phase 3: event scan.
	stream, err := src.Events()
	if err != nil {
		err = fmt.Errorf("open event stream: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "event stream")
		return nil, err
	}
	counts, err := scan.Filter(ctx, stream, scan.Options{
		Triggers:    set,
		RefField:    opts.RefField,
		WeightField: opts.WeightField,
		Limit:       opts.MaxEntries,
		Workers:     opts.Workers,
		Log:         log,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan")
		return nil, err
	}
	span.AddEvent("scan_complete",
		trace.WithAttributes(
			attribute.Int64("seen", counts.Seen),
			attribute.Int64("passed", counts.Passed),
		),
	)

	report := &Report{
		APIVersion: APIVersion,
		ID:         uuid.NewString(),
		CreatedAt:  start.UTC(),
		Dataset:    src.Label(),
		Triggers:   set.Names(),
		RefField:   opts.RefField,
		Counts:     counts,
		GenSummary: sum,
		Level:      level,
	}

	// Phase 4: normalization. A failure here only costs the weighted
	// estimate.
	scaled, normErr := normalize.Normalize(sum, sum.Entries, opts.MaxEntries)
	if normErr != nil {
		report.note("normalize generator sumw", normErr)
	} else {
		report.Normalized = scaled
	}

	// Phase 5: efficiencies.
	if raw, err := stats.Estimate(float64(counts.Seen), float64(counts.Passed), level); err != nil {
		report.note("raw efficiency", err)
	} else {
		report.Raw = &raw
	}
	if normErr == nil {
		if weighted, err := stats.Estimate(scaled.Sumw, counts.WeightedPassed, level); err != nil {
			report.note("weighted efficiency", err)
		} else {
			report.Weighted = &weighted
		}
	}

	report.Elapsed = time.Since(start)

	log.Info("analysis complete",
		"dataset", src.Label(),
		"seen", counts.Seen,
		"passed", counts.Passed,
		"raw", effValue(report.Raw),
		"weighted", effValue(report.Weighted),
		"estimate_errors", len(report.Errors),
		"elapsed", report.Elapsed.Round(time.Millisecond))
	span.SetStatus(codes.Ok, "analysis complete")
	return report, nil
}

// note records a per-estimate failure on the report.
func (r *Report) note(what string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", what, err))
}

func effValue(e *stats.Efficiency) any {
	if e == nil {
		return nil
	}
	return e.Value
}
