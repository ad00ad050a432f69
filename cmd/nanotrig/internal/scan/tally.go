// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"context"
	"fmt"
	"strings"

	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
)

// Coincidence counts how often two triggers fire together. A probe firing
// on only a fraction of the base's events usually means the probe is
// prescaled.
type Coincidence struct {
	Seen int64 `json:"seen"`
	Base int64 `json:"base"`
	Both int64 `json:"both"`
}

// CountActivations tallies, per trigger name with the given prefix, how
// many records have the flag set.
//
// This is an unweighted diagnostic: it tells you which triggers fire at
// all, nothing about efficiency. Names are discovered from the records
// themselves, so sparse layouts where not every record carries every flag
// are counted as-is.
func CountActivations(ctx context.Context, s nanoevent.Stream, prefix string) (map[string]int64, int64, error) {
	if ctx == nil {
		return nil, 0, fmt.Errorf("count activations: nil context")
	}

	tally := make(map[string]int64)
	var seen int64
	for s.Next() {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("count activations interrupted: %w", err)
		}
		seen++
		for name, v := range s.Event().Values {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			if v != 0 {
				tally[name]++
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, 0, fmt.Errorf("read event stream: %w", err)
	}
	return tally, seen, nil
}

// CountCoincidence counts records where base fires and where base and
// probe fire together.
//
// The probe flag is only looked up on records where base fired, mirroring
// the selection scan's short-circuit lookups. A missing base field aborts
// with *nanoevent.MissingFieldError.
func CountCoincidence(ctx context.Context, s nanoevent.Stream, base, probe string) (Coincidence, error) {
	if ctx == nil {
		return Coincidence{}, fmt.Errorf("count coincidence: nil context")
	}
	if base == "" || probe == "" {
		return Coincidence{}, fmt.Errorf("count coincidence: base and probe triggers required")
	}

	var c Coincidence
	for s.Next() {
		if err := ctx.Err(); err != nil {
			return Coincidence{}, fmt.Errorf("count coincidence interrupted: %w", err)
		}
		c.Seen++
		ev := s.Event()

		b, err := ev.FlagSet(base)
		if err != nil {
			return Coincidence{}, fmt.Errorf("count coincidence: %w", err)
		}
		if !b {
			continue
		}
		c.Base++

		p, err := ev.FlagSet(probe)
		if err != nil {
			return Coincidence{}, fmt.Errorf("count coincidence: %w", err)
		}
		if p {
			c.Both++
		}
	}
	if err := s.Err(); err != nil {
		return Coincidence{}, fmt.Errorf("read event stream: %w", err)
	}
	return c, nil
}
