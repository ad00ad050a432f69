// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
)

func TestCountActivations(t *testing.T) {
	stream := nanoevent.NewEventSlice([]nanoevent.Event{
		{Values: map[string]float64{"HLT_A": 1, "HLT_B": 0, "overallEventWeight": 0.5}},
		{Values: map[string]float64{"HLT_A": 1, "HLT_B": 1, "overallEventWeight": 0.5}},
		{Values: map[string]float64{"HLT_A": 0, "HLT_B": 1, "overallEventWeight": 0.5}},
	})

	tally, seen, err := CountActivations(context.Background(), stream, "HLT_")
	require.NoError(t, err)

	assert.Equal(t, int64(3), seen)
	assert.Equal(t, int64(2), tally["HLT_A"])
	assert.Equal(t, int64(2), tally["HLT_B"])
	assert.NotContains(t, tally, "overallEventWeight",
		"prefix filter keeps non-trigger fields out")
}

func TestCountActivationsSparseFields(t *testing.T) {
	// Records need not carry every flag; discovery is per record.
	stream := nanoevent.NewEventSlice([]nanoevent.Event{
		{Values: map[string]float64{"HLT_A": 1}},
		{Values: map[string]float64{"HLT_B": 1}},
	})

	tally, seen, err := CountActivations(context.Background(), stream, "HLT_")
	require.NoError(t, err)
	assert.Equal(t, int64(2), seen)
	assert.Equal(t, int64(1), tally["HLT_A"])
	assert.Equal(t, int64(1), tally["HLT_B"])
}

func TestCountCoincidence(t *testing.T) {
	stream := nanoevent.NewEventSlice([]nanoevent.Event{
		{Values: map[string]float64{"HLT_Base": 1, "HLT_Probe": 1}},
		{Values: map[string]float64{"HLT_Base": 1, "HLT_Probe": 0}},
		{Values: map[string]float64{"HLT_Base": 1, "HLT_Probe": 1}},
		{Values: map[string]float64{"HLT_Base": 0, "HLT_Probe": 1}},
		{Values: map[string]float64{"HLT_Base": 0, "HLT_Probe": 0}},
	})

	c, err := CountCoincidence(context.Background(), stream, "HLT_Base", "HLT_Probe")
	require.NoError(t, err)

	assert.Equal(t, Coincidence{Seen: 5, Base: 3, Both: 2}, c)
}

func TestCountCoincidenceProbeOnlyCheckedOnBase(t *testing.T) {
	// The probe flag is absent where base did not fire; that is fine.
	stream := nanoevent.NewEventSlice([]nanoevent.Event{
		{Values: map[string]float64{"HLT_Base": 0}},
		{Values: map[string]float64{"HLT_Base": 1, "HLT_Probe": 1}},
	})

	c, err := CountCoincidence(context.Background(), stream, "HLT_Base", "HLT_Probe")
	require.NoError(t, err)
	assert.Equal(t, Coincidence{Seen: 2, Base: 1, Both: 1}, c)
}

func TestCountCoincidenceMissingBase(t *testing.T) {
	stream := nanoevent.NewEventSlice([]nanoevent.Event{
		{Values: map[string]float64{"HLT_Other": 1}},
	})

	_, err := CountCoincidence(context.Background(), stream, "HLT_Base", "HLT_Probe")
	require.Error(t, err)

	var mfe *nanoevent.MissingFieldError
	assert.True(t, errors.As(err, &mfe))
}

func TestCountCoincidenceValidation(t *testing.T) {
	_, err := CountCoincidence(context.Background(), nanoevent.NewEventSlice(nil), "", "HLT_Probe")
	assert.Error(t, err)

	_, err = CountCoincidence(context.Background(), nanoevent.NewEventSlice(nil), "HLT_Base", "")
	assert.Error(t, err)
}
