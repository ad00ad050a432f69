// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package triggers loads and watches the trigger name lists that drive a
// selection scan.
package triggers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lourdesurda/ZZAnalysis/pkg/validation"
)

// ErrEmptySet is returned when a trigger list contains no usable names.
// Scanning with an empty set would silently select nothing, so it is
// rejected up front.
var ErrEmptySet = errors.New("trigger set is empty")

// Set is an ordered, deduplicated collection of trigger names.
type Set struct {
	names []string
}

// Parse reads newline-separated trigger names.
//
// Surrounding whitespace is trimmed, blank lines and # comments are
// skipped and duplicate names are dropped keeping the first occurrence's
// position. A line that is not a well-formed branch name fails the whole
// parse. Returns ErrEmptySet when nothing remains.
func Parse(r io.Reader) (Set, error) {
	var (
		names []string
		seen  = make(map[string]struct{})
		line  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if err := validation.ValidateField(name); err != nil {
			return Set{}, fmt.Errorf("line %d: %w", line, err)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return Set{}, fmt.Errorf("read trigger list: %w", err)
	}
	if len(names) == 0 {
		return Set{}, ErrEmptySet
	}

	return Set{names: names}, nil
}

// Load parses the trigger list file at path.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("open trigger list: %w", err)
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return Set{}, fmt.Errorf("parse trigger list %s: %w", path, err)
	}
	return set, nil
}

// Names returns the trigger names in list order. The returned slice is a
// copy.
func (s Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of triggers in the set.
func (s Set) Len() int { return len(s.names) }
