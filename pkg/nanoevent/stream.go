// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package nanoevent

// Stream is a single-use forward iterator over event records.
//
// # Description
//
// Streams preserve dataset order and cannot be restarted: once Next returns
// false the stream is exhausted. Err must be checked after the final Next
// to distinguish end-of-stream from a read failure.
//
// # Example
//
//	for s.Next() {
//	    ev := s.Event()
//	    // ...
//	}
//	if err := s.Err(); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Implementations are not required to be safe for concurrent use; callers
// that fan a stream out to workers must serialize Next/Event pairs.
type Stream interface {
	// Next advances to the next record. Returns false at end of stream or
	// on error.
	Next() bool

	// Event returns the record at the current position. Only valid after a
	// Next call that returned true.
	Event() Event

	// Err returns the terminal error, or nil after a clean end of stream.
	Err() error
}

// EventSlice adapts an in-memory slice to a Stream.
type EventSlice struct {
	events []Event
	pos    int
}

var _ Stream = (*EventSlice)(nil)

// NewEventSlice builds a single-use stream over evs. Indexes are assigned
// by position.
func NewEventSlice(evs []Event) *EventSlice {
	for i := range evs {
		evs[i].Index = int64(i)
	}
	return &EventSlice{events: evs, pos: -1}
}

func (s *EventSlice) Next() bool {
	if s.pos+1 >= len(s.events) {
		return false
	}
	s.pos++
	return true
}

func (s *EventSlice) Event() Event { return s.events[s.pos] }

func (s *EventSlice) Err() error { return nil }
