// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
	"github.com/lourdesurda/ZZAnalysis/pkg/stats"
)

type memSource struct {
	label   string
	summary nanoevent.DatasetSummary
	events  []nanoevent.Event
	openErr error
}

func (m *memSource) Label() string                     { return m.label }
func (m *memSource) Summary() nanoevent.DatasetSummary { return m.summary }

func (m *memSource) Events() (nanoevent.Stream, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return nanoevent.NewEventSlice(m.events), nil
}

func writeTriggerList(t *testing.T, names ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triggers.txt")
	content := ""
	for _, n := range names {
		content += n + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func analysisEvent(a, b, ref, w float64) nanoevent.Event {
	return nanoevent.Event{Values: map[string]float64{
		"HLT_A":              a,
		"HLT_B":              b,
		"HLT_passZZ4l":       ref,
		"overallEventWeight": w,
	}}
}

// testSource builds a 10-event dataset with 3 selected events carrying a
// weight sum of 3.5.
func testSource() *memSource {
	evs := []nanoevent.Event{
		analysisEvent(1, 0, 1, 0.5),
		analysisEvent(0, 1, 1, 1.0),
		analysisEvent(1, 1, 1, 2.0),
		analysisEvent(1, 0, 0, 9.9),
		analysisEvent(0, 0, 1, 9.9),
	}
	for i := 0; i < 5; i++ {
		evs = append(evs, analysisEvent(0, 0, 0, 1.0))
	}
	return &memSource{
		label:   "ggH125",
		summary: nanoevent.DatasetSummary{GenEventCount: 100, GenEventSumw: 1000, Entries: 10},
		events:  evs,
	}
}

func testRunOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		TriggerPath: writeTriggerList(t, "HLT_A", "HLT_B"),
		RefField:    "HLT_passZZ4l",
		WeightField: "overallEventWeight",
	}
}

func TestRun_EndToEnd(t *testing.T) {
	report, err := Run(context.Background(), testSource(), testRunOptions(t))
	require.NoError(t, err)

	assert.Equal(t, APIVersion, report.APIVersion)
	assert.Len(t, report.ID, 36)
	assert.False(t, report.CreatedAt.IsZero())
	assert.Equal(t, "ggH125", report.Dataset)
	assert.Equal(t, []string{"HLT_A", "HLT_B"}, report.Triggers)
	assert.Equal(t, "HLT_passZZ4l", report.RefField)

	assert.Equal(t, int64(10), report.Counts.Seen)
	assert.Equal(t, int64(3), report.Counts.Passed)
	assert.InDelta(t, 3.5, report.Counts.WeightedPassed, 1e-12)

	assert.InDelta(t, 1000.0, report.Normalized.Sumw, 1e-9)
	assert.Equal(t, int64(10), report.Normalized.Entries)

	require.NotNil(t, report.Raw)
	assert.InDelta(t, 0.3, report.Raw.Value, 1e-12)
	low, high := report.Raw.Bounds()
	assert.Less(t, low, report.Raw.Value)
	assert.Greater(t, high, report.Raw.Value)

	require.NotNil(t, report.Weighted)
	assert.InDelta(t, 0.0035, report.Weighted.Value, 1e-12)

	assert.Equal(t, stats.DefaultConfidenceLevel, report.Level)
	assert.Empty(t, report.Errors)
	assert.GreaterOrEqual(t, report.Elapsed.Nanoseconds(), int64(0))
}

func TestRun_MaxEntriesScalesNormalization(t *testing.T) {
	limit := int64(4)
	opts := testRunOptions(t)
	opts.MaxEntries = &limit

	report, err := Run(context.Background(), testSource(), opts)
	require.NoError(t, err)

	// Only the first four entries are scanned; three of them pass.
	assert.Equal(t, int64(4), report.Counts.Seen)
	assert.Equal(t, int64(3), report.Counts.Passed)

	// The generator sumw is down-scaled by 4/10.
	assert.InDelta(t, 400.0, report.Normalized.Sumw, 1e-9)
	assert.Equal(t, int64(4), report.Normalized.Entries)

	require.NotNil(t, report.Raw)
	assert.InDelta(t, 0.75, report.Raw.Value, 1e-12)
	require.NotNil(t, report.Weighted)
	assert.InDelta(t, 3.5/400.0, report.Weighted.Value, 1e-12)
}

func TestRun_ZeroSumwCostsOnlyWeighted(t *testing.T) {
	src := testSource()
	src.summary.GenEventSumw = 0

	report, err := Run(context.Background(), src, testRunOptions(t))
	require.NoError(t, err)

	require.NotNil(t, report.Raw)
	assert.InDelta(t, 0.3, report.Raw.Value, 1e-12)
	assert.Nil(t, report.Weighted)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "weighted efficiency")
}

func TestRun_EmptyDatasetCostsOnlyRaw(t *testing.T) {
	src := &memSource{
		label:   "empty",
		summary: nanoevent.DatasetSummary{GenEventCount: 100, GenEventSumw: 1000, Entries: 0},
	}

	report, err := Run(context.Background(), src, testRunOptions(t))
	require.NoError(t, err)

	assert.Equal(t, int64(0), report.Counts.Seen)
	assert.Nil(t, report.Raw)
	require.NotNil(t, report.Weighted)
	assert.Equal(t, 0.0, report.Weighted.Value)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "raw efficiency")
}

func TestRun_MissingTriggerList(t *testing.T) {
	opts := testRunOptions(t)
	opts.TriggerPath = filepath.Join(t.TempDir(), "absent.txt")

	_, err := Run(context.Background(), testSource(), opts)
	require.Error(t, err)
}

func TestRun_MissingWeightFieldIsStructural(t *testing.T) {
	src := testSource()
	delete(src.events[0].Values, "overallEventWeight")

	_, err := Run(context.Background(), src, testRunOptions(t))
	require.Error(t, err)

	var missing *nanoevent.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "overallEventWeight", missing.Field)
}

func TestRun_BadLevelRejectedBeforeScan(t *testing.T) {
	opts := testRunOptions(t)
	opts.Level = 1.5

	_, err := Run(context.Background(), testSource(), opts)
	require.ErrorIs(t, err, stats.ErrBadLevel)
}

func TestRun_CustomLevelRecorded(t *testing.T) {
	opts := testRunOptions(t)
	opts.Level = 0.95

	report, err := Run(context.Background(), testSource(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0.95, report.Level)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testSource(), testRunOptions(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	seq, err := Run(context.Background(), testSource(), testRunOptions(t))
	require.NoError(t, err)

	opts := testRunOptions(t)
	opts.Workers = 4
	par, err := Run(context.Background(), testSource(), opts)
	require.NoError(t, err)

	assert.Equal(t, seq.Counts.Seen, par.Counts.Seen)
	assert.Equal(t, seq.Counts.Passed, par.Counts.Passed)
	assert.InDelta(t, seq.Counts.WeightedPassed, par.Counts.WeightedPassed, 1e-9)
	require.NotNil(t, par.Raw)
	assert.InDelta(t, seq.Raw.Value, par.Raw.Value, 1e-12)
}

func TestRun_NilArguments(t *testing.T) {
	_, err := Run(context.Background(), nil, testRunOptions(t))
	require.Error(t, err)

	var nilCtx context.Context
	_, err = Run(nilCtx, testSource(), testRunOptions(t))
	require.Error(t, err)

	opts := testRunOptions(t)
	opts.TriggerPath = ""
	_, err = Run(context.Background(), testSource(), opts)
	require.Error(t, err)
	assert.ErrorContains(t, err, "trigger list")
}

func TestRun_MalformedFieldNamesRejected(t *testing.T) {
	opts := testRunOptions(t)
	opts.RefField = "not a branch"
	_, err := Run(context.Background(), testSource(), opts)
	require.Error(t, err)
	assert.ErrorContains(t, err, "reference field")

	opts = testRunOptions(t)
	opts.WeightField = ""
	_, err = Run(context.Background(), testSource(), opts)
	require.Error(t, err)
	assert.ErrorContains(t, err, "weight field")
}
