// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package nanoevent defines the flat event/run data model shared by the
// trigger-efficiency tooling.
//
// An Event is a single collision record flattened to named scalar fields,
// the way an n-tuple row looks after export: trigger decision flags stored
// as 0/1, event weights as arbitrary floats. A Run carries the
// generator-level bookkeeping written once per run block. Events arrive
// through a Stream, which is a single-use forward iterator; nothing in this
// package buffers the dataset.
package nanoevent

import "fmt"

// Event is one collision record with flat scalar fields.
//
// Values holds every scalar field by name. Boolean trigger branches are
// stored as 0/1; weights and other quantities keep their native value.
// Index is the zero-based position of the record in its stream and is
// carried for diagnostics only.
type Event struct {
	Index  int64
	Values map[string]float64
}

// MissingFieldError reports a configured field name that is absent from an
// event record. A missing field means the configuration does not match the
// dataset layout, so callers treat it as fatal rather than as a false flag.
type MissingFieldError struct {
	Field string
	Entry int64
}

var _ error = (*MissingFieldError)(nil)

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("event field %q not present (entry %d)", e.Field, e.Entry)
}

// Lookup returns the named scalar field.
//
// Returns a *MissingFieldError when the field is absent. Absence is never
// reported as a zero value.
func (e Event) Lookup(name string) (float64, error) {
	v, ok := e.Values[name]
	if !ok {
		return 0, &MissingFieldError{Field: name, Entry: e.Index}
	}
	return v, nil
}

// FlagSet reports whether the named flag field is set, using the truthy
// convention for trigger branches: any nonzero value counts as set.
func (e Event) FlagSet(name string) (bool, error) {
	v, err := e.Lookup(name)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
