// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dataset reads flattened event datasets in NDJSON form and caches
// their generator-level summaries.
//
// The interchange format is one JSON object per line:
//
//	{"type":"run","genEventCount":100,"genEventSumw":950.5}
//	{"type":"event","HLT_PFJet500":1,"HLT_passZZ4l":1,"overallEventWeight":0.93}
//
// Run records carry generator bookkeeping and may appear anywhere in the
// file. Event records hold every scalar field flat on the object; boolean
// values are normalized to 0/1 and non-scalar fields are ignored. The
// "type" key is the record discriminator and is reserved: it never becomes
// a data field.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lourdesurda/ZZAnalysis/pkg/nanoevent"
)

// maxLineBytes bounds a single NDJSON line. Flat trigger menus run to a
// few hundred fields, well under this.
const maxLineBytes = 8 * 1024 * 1024

// Dataset is an NDJSON event file with its generator-level summary.
//
// Open scans run records eagerly (they are rare and the summary is needed
// up front); events are exposed lazily through Events. The summary may
// instead come from a cache, in which case Runs is empty.
type Dataset struct {
	path    string
	summary nanoevent.DatasetSummary
	runs    []nanoevent.Run
}

// Open reads the dataset at path, collecting run records and counting
// event entries in a single pass.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	d := &Dataset{path: path}
	var entries int64

	scanner := newLineScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if isBlank(line) {
			continue
		}

		kind, err := recordType(line)
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, lineNo, err)
		}
		switch kind {
		case "run":
			var r runRecord
			if err := json.Unmarshal(line, &r); err != nil {
				return nil, fmt.Errorf("parse %s line %d: %w", path, lineNo, err)
			}
			d.runs = append(d.runs, nanoevent.Run{
				GenEventCount: r.GenEventCount,
				GenEventSumw:  r.GenEventSumw,
			})
		case "event":
			entries++
		default:
			return nil, fmt.Errorf("parse %s line %d: unknown record type %q", path, lineNo, kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	d.summary = nanoevent.Summarize(d.runs, entries)
	return d, nil
}

// Path returns the dataset file path.
func (d *Dataset) Path() string { return d.path }

// Label returns a short name for the dataset, used in reports and logs.
func (d *Dataset) Label() string { return d.path }

// Summary returns the generator-level summary.
func (d *Dataset) Summary() nanoevent.DatasetSummary { return d.summary }

// Runs returns the run records collected by Open. Empty when the summary
// was served from a cache.
func (d *Dataset) Runs() []nanoevent.Run { return d.runs }

// Events opens a fresh single-use stream over the event records, in file
// order. Each call re-opens the file.
func (d *Dataset) Events() (nanoevent.Stream, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return &eventReader{
		path:    d.path,
		f:       f,
		scanner: newLineScanner(f),
		index:   -1,
	}, nil
}

type runRecord struct {
	Type          string  `json:"type"`
	GenEventCount int64   `json:"genEventCount"`
	GenEventSumw  float64 `json:"genEventSumw"`
}

// eventReader streams event records from the file, skipping run records
// and blank lines.
type eventReader struct {
	path    string
	f       *os.File
	scanner *bufio.Scanner
	lineNo  int
	index   int64
	current nanoevent.Event
	err     error
	done    bool
}

var _ nanoevent.Stream = (*eventReader)(nil)

func (r *eventReader) Next() bool {
	if r.done {
		return false
	}
	for r.scanner.Scan() {
		r.lineNo++
		line := r.scanner.Bytes()
		if isBlank(line) {
			continue
		}

		kind, err := recordType(line)
		if err != nil {
			r.fail(fmt.Errorf("parse %s line %d: %w", r.path, r.lineNo, err))
			return false
		}
		if kind != "event" {
			continue
		}

		ev, err := decodeEvent(line)
		if err != nil {
			r.fail(fmt.Errorf("parse %s line %d: %w", r.path, r.lineNo, err))
			return false
		}
		r.index++
		ev.Index = r.index
		r.current = ev
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.fail(fmt.Errorf("read %s: %w", r.path, err))
		return false
	}
	r.stop(nil)
	return false
}

func (r *eventReader) Event() nanoevent.Event { return r.current }

func (r *eventReader) Err() error { return r.err }

func (r *eventReader) fail(err error) { r.stop(err) }

func (r *eventReader) stop(err error) {
	if r.done {
		return
	}
	r.done = true
	r.err = err
	if closeErr := r.f.Close(); closeErr != nil && r.err == nil {
		r.err = fmt.Errorf("close %s: %w", r.path, closeErr)
	}
}

// decodeEvent flattens one event object into scalar fields. Numbers pass
// through, booleans become 0/1, everything else (strings, arrays, nested
// objects, null) is dropped.
func decodeEvent(line []byte) (nanoevent.Event, error) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return nanoevent.Event{}, err
	}

	values := make(map[string]float64, len(raw))
	for name, v := range raw {
		if name == "type" {
			continue
		}
		switch x := v.(type) {
		case float64:
			values[name] = x
		case bool:
			if x {
				values[name] = 1
			} else {
				values[name] = 0
			}
		}
	}
	return nanoevent.Event{Values: values}, nil
}

// recordType extracts the discriminator without decoding the full record.
func recordType(line []byte) (string, error) {
	var t struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &t); err != nil {
		return "", err
	}
	if t.Type == "" {
		return "", fmt.Errorf("record has no type field")
	}
	return t.Type, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return scanner
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' && b != '\r' {
			return false
		}
	}
	return true
}
