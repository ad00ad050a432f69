// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scan implements the single-pass trigger selection scan over an
// event stream.
package scan

// maxStoredWarnings caps the warning records kept on a Counts so the
// accumulator stays O(1) on pathological datasets. The NegativeWeights
// tally always counts every occurrence.
const maxStoredWarnings = 16

// WarnNegativeWeight marks an event weight below zero. The weight still
// enters the sum unchanged; the warning only flags the dataset for review.
const WarnNegativeWeight = "negative_weight"

// Warning is a non-fatal data-quality finding attached to scan results.
type Warning struct {
	Kind  string  `json:"kind"`
	Entry int64   `json:"entry"`
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

// Counts is the scan accumulator: how many records were examined, how many
// passed the selection, and the weighted sum of the passing ones.
//
// The zero value is ready to use. State is constant-size regardless of
// stream length; Warnings holds at most maxStoredWarnings records.
type Counts struct {
	Seen            int64     `json:"seen"`
	Passed          int64     `json:"passed"`
	WeightedPassed  float64   `json:"weighted_passed"`
	NegativeWeights int64     `json:"negative_weights"`
	Warnings        []Warning `json:"warnings,omitempty"`
}

// Merge folds other into c by field-wise summation. This is the only safe
// way to combine partial counts from a partitioned scan; integer fields
// merge exactly, the weighted sum up to float rounding.
func (c *Counts) Merge(other Counts) {
	c.Seen += other.Seen
	c.Passed += other.Passed
	c.WeightedPassed += other.WeightedPassed
	c.NegativeWeights += other.NegativeWeights
	for _, w := range other.Warnings {
		if len(c.Warnings) >= maxStoredWarnings {
			break
		}
		c.Warnings = append(c.Warnings, w)
	}
}

// noteNegativeWeight records a data-quality hit for entry.
func (c *Counts) noteNegativeWeight(entry int64, field string, value float64) {
	c.NegativeWeights++
	if len(c.Warnings) < maxStoredWarnings {
		c.Warnings = append(c.Warnings, Warning{
			Kind:  WarnNegativeWeight,
			Entry: entry,
			Field: field,
			Value: value,
		})
	}
}
