// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for user-supplied identifiers.
//
// This package contains validators for branch names arriving from trigger
// list files and command-line flags. These names are used to index event
// records and end up in cache keys, log lines and published reports, so a
// pasted file path or stray punctuation should fail loudly instead of
// producing a zero-match scan.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// fieldPattern matches valid NanoAOD branch names.
// Allows: letters, digits, underscores; must not start with a digit
// (HLT_Ele32_WPTight_Gsf, overallEventWeight, nJet)
var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MaxFieldLength caps accepted branch names. The longest HLT paths in
// production menus sit well under this.
const MaxFieldLength = 128

// ValidateField validates a single branch name.
//
// Valid names:
//   - 1-128 characters
//   - Letters A-Z a-z, digits 0-9 and underscores
//   - First character is not a digit
//
// Returns an error describing the problem if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateField(name); err != nil {
//	    return fmt.Errorf("reference field: %w", err)
//	}
//	// Safe to use as an event lookup key
func ValidateField(name string) error {
	if name == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if len(name) > MaxFieldLength {
		return fmt.Errorf("field name too long: %d chars (max %d)", len(name), MaxFieldLength)
	}
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("invalid field name %q (letters, digits and underscores only, not starting with a digit)", name)
	}
	return nil
}

// ValidateFields validates multiple branch names.
// Returns an error listing all invalid names if any fail validation.
func ValidateFields(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateField(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid field names: %v", invalid)
	}
	return nil
}

// SanitizeField trims and validates a branch name from interactive input.
// Case is preserved, branch names are case-sensitive.
func SanitizeField(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateField(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
