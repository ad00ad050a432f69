// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateZeroSelected(t *testing.T) {
	eff, err := Estimate(10, 0, DefaultConfidenceLevel)
	require.NoError(t, err)

	assert.Equal(t, 0.0, eff.Value)
	assert.Equal(t, 0.0, eff.ErrDown, "lower bound is pinned to zero")
	// Closed form for k=0: upper = 1 - (alpha/2)^(1/n).
	assert.InDelta(t, 0.1682, eff.ErrUp, 0.005)
}

func TestEstimateFullSelection(t *testing.T) {
	eff, err := Estimate(10, 10, DefaultConfidenceLevel)
	require.NoError(t, err)

	assert.Equal(t, 1.0, eff.Value)
	assert.Equal(t, 0.0, eff.ErrUp, "upper bound is pinned to one")
	assert.InDelta(t, 0.1682, eff.ErrDown, 0.005)
}

func TestEstimateHalf(t *testing.T) {
	eff, err := Estimate(100, 50, DefaultConfidenceLevel)
	require.NoError(t, err)

	assert.Equal(t, 0.5, eff.Value)
	// One-sigma binomial error at n=100, p=0.5 is ~0.05; the exact interval
	// is slightly wider.
	assert.InDelta(t, 0.0545, eff.ErrUp, 0.006)
	assert.InDelta(t, 0.0545, eff.ErrDown, 0.006)

	low, high := eff.Bounds()
	assert.Less(t, low, eff.Value)
	assert.Greater(t, high, eff.Value)
}

func TestEstimateBracketsPoint(t *testing.T) {
	cases := []struct {
		total, selected float64
	}{
		{20, 5},
		{1000, 999},
		{3, 1},
		{50000, 12345},
	}
	for _, tc := range cases {
		eff, err := Estimate(tc.total, tc.selected, DefaultConfidenceLevel)
		require.NoError(t, err)

		low, high := eff.Bounds()
		assert.GreaterOrEqual(t, eff.ErrUp, 0.0)
		assert.GreaterOrEqual(t, eff.ErrDown, 0.0)
		assert.GreaterOrEqual(t, low, 0.0)
		assert.LessOrEqual(t, high, 1.0)
		assert.LessOrEqual(t, low, eff.Value)
		assert.LessOrEqual(t, eff.Value, high)
	}
}

func TestEstimateWidthShrinksWithSample(t *testing.T) {
	small, err := Estimate(10, 5, DefaultConfidenceLevel)
	require.NoError(t, err)
	large, err := Estimate(1000, 500, DefaultConfidenceLevel)
	require.NoError(t, err)

	assert.Less(t, large.ErrUp+large.ErrDown, small.ErrUp+small.ErrDown)
}

func TestEstimateWiderAtHigherLevel(t *testing.T) {
	sigma1, err := Estimate(200, 60, DefaultConfidenceLevel)
	require.NoError(t, err)
	sigma2, err := Estimate(200, 60, 0.95)
	require.NoError(t, err)

	assert.Greater(t, sigma2.ErrUp, sigma1.ErrUp)
	assert.Greater(t, sigma2.ErrDown, sigma1.ErrDown)
}

func TestEstimateWeightedInputs(t *testing.T) {
	// Weighted sums produce non-integer shape parameters; the interval must
	// still be finite and ordered.
	eff, err := Estimate(95.5, 40.25, DefaultConfidenceLevel)
	require.NoError(t, err)

	assert.InDelta(t, 40.25/95.5, eff.Value, 1e-12)
	assert.Greater(t, eff.ErrUp, 0.0)
	assert.Greater(t, eff.ErrDown, 0.0)
	low, high := eff.Bounds()
	assert.True(t, low < eff.Value && eff.Value < high)
}

func TestEstimateDegenerateWeights(t *testing.T) {
	// Numerator above the denominator: the honest ratio is reported, the
	// bounds are undefined.
	eff, err := Estimate(10, 12, DefaultConfidenceLevel)
	require.NoError(t, err)

	assert.InDelta(t, 1.2, eff.Value, 1e-12)
	assert.True(t, math.IsNaN(eff.ErrUp))
	assert.True(t, math.IsNaN(eff.ErrDown))
}

func TestEstimateZeroTotal(t *testing.T) {
	_, err := Estimate(0, 0, DefaultConfidenceLevel)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZeroTotal))
}

func TestEstimateBadLevel(t *testing.T) {
	for _, level := range []float64{0, 1, -0.2, 1.7} {
		_, err := Estimate(10, 5, level)
		require.Error(t, err, "level %v", level)
		assert.True(t, errors.Is(err, ErrBadLevel))
	}
}
