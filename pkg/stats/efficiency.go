// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stats implements frequentist efficiency estimation with exact
// Clopper-Pearson confidence intervals.
//
// The interval is the standard central one built from the quantiles of the
// Beta distribution. Inputs are float64 on purpose: weighted analyses feed
// weighted event sums through the same formula, which yields non-integer
// shape parameters. That is an approximation (Clopper-Pearson coverage is
// only guaranteed for true binomial counts) but it is the convention used
// for weighted trigger efficiencies here and is kept as-is.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidenceLevel is one Gaussian sigma (68.3%), the conventional
// band for efficiency error bars.
const DefaultConfidenceLevel = 0.683

// ErrZeroTotal is returned when the denominator is zero and no efficiency
// can be formed.
var ErrZeroTotal = errors.New("zero total count: efficiency undefined")

// ErrBadLevel is returned for a confidence level outside (0, 1).
var ErrBadLevel = errors.New("confidence level outside (0, 1)")

// Efficiency is an efficiency point with asymmetric confidence deltas.
//
// ErrUp and ErrDown are distances from Value to the interval bounds, not
// the bounds themselves: the band is [Value-ErrDown, Value+ErrUp]. For
// valid binomial inputs both deltas are non-negative.
type Efficiency struct {
	Value   float64 `json:"value"`
	ErrUp   float64 `json:"err_up"`
	ErrDown float64 `json:"err_down"`
}

// Bounds returns the interval endpoints [low, high].
func (e Efficiency) Bounds() (low, high float64) {
	return e.Value - e.ErrDown, e.Value + e.ErrUp
}

// Estimate computes selected/total with a central Clopper-Pearson interval.
//
// # Description
//
// The point estimate is the plain ratio and is never clamped: weighted
// inputs can legitimately push it outside [0, 1] and callers see the honest
// value. The bounds are the exact Beta-quantile ones:
//
//	lower = BetaQuantile(alpha/2;   selected,   total-selected+1)
//	upper = BetaQuantile(1-alpha/2; selected+1, total-selected)
//
// with alpha = 1-level, and the closed edges handled exactly: selected == 0
// pins the lower bound to 0, selected == total pins the upper bound to 1.
//
// # Inputs
//
//   - total: denominator; must be nonzero.
//   - selected: numerator; integer counts or weighted sums.
//   - level: confidence level in (0, 1); DefaultConfidenceLevel for the
//     usual one-sigma band.
//
// # Outputs
//
//   - Efficiency: point plus delta-form bounds.
//   - error: ErrZeroTotal when total == 0, ErrBadLevel for a bad level.
//
// # Limitations
//
// Degenerate weighted inputs (selected < 0, or selected > total) make one
// or both Beta shape parameters non-positive; the affected bound comes back
// NaN rather than panicking, and it is the caller's job to treat such input
// as a data-quality problem.
func Estimate(total, selected, level float64) (Efficiency, error) {
	if level <= 0 || level >= 1 {
		return Efficiency{}, fmt.Errorf("level %v: %w", level, ErrBadLevel)
	}
	if total == 0 {
		return Efficiency{}, ErrZeroTotal
	}

	value := selected / total
	lower := clopperPearsonLow(total, selected, level)
	upper := clopperPearsonHigh(total, selected, level)

	return Efficiency{
		Value:   value,
		ErrUp:   upper - value,
		ErrDown: value - lower,
	}, nil
}

// clopperPearsonLow is the lower interval bound. Exactly 0 when nothing was
// selected: no downward fluctuation is possible below an empty numerator.
func clopperPearsonLow(total, selected, level float64) float64 {
	if selected == 0 {
		return 0
	}
	alpha := 1 - level
	return betaQuantile(alpha/2, selected, total-selected+1)
}

// clopperPearsonHigh is the upper interval bound, exactly 1 at full
// selection.
func clopperPearsonHigh(total, selected, level float64) float64 {
	if selected == total {
		return 1
	}
	alpha := 1 - level
	return betaQuantile(1-alpha/2, selected+1, total-selected)
}

// betaQuantile evaluates the Beta(a, b) quantile at p. Shape parameters
// must be positive for the distribution to exist; anything else reports
// NaN instead of panicking inside the special-function code.
func betaQuantile(p, a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return math.NaN()
	}
	return distuv.Beta{Alpha: a, Beta: b}.Quantile(p)
}
