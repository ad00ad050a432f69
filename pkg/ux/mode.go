// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Mode controls how much styling CLI output carries.
type Mode string

const (
	// ModeRich enables colors, icons and boxes.
	ModeRich Mode = "rich"

	// ModePlain keeps icons but drops colors, for dumb terminals.
	ModePlain Mode = "plain"

	// ModeMachine emits prefix-tagged plain lines suitable for scripting.
	ModeMachine Mode = "machine"
)

var (
	currentMode = ModeRich
	modeMu      sync.RWMutex
)

// GetMode returns the active output mode.
func GetMode() Mode {
	modeMu.RLock()
	defer modeMu.RUnlock()
	return currentMode
}

// SetMode overrides the active output mode.
func SetMode(m Mode) {
	modeMu.Lock()
	defer modeMu.Unlock()
	currentMode = m
}

// ParseMode converts a string to a Mode. Unknown values fall back to rich.
func ParseMode(s string) Mode {
	switch strings.ToLower(s) {
	case "rich", "r":
		return ModeRich
	case "plain", "p":
		return ModePlain
	case "machine", "m", "quiet", "q":
		return ModeMachine
	default:
		return ModeRich
	}
}

// InitMode picks the output mode from the environment: the
// NANOTRIG_OUTPUT variable wins, otherwise piped output means machine
// mode and a terminal means rich.
func InitMode() {
	if env := os.Getenv("NANOTRIG_OUTPUT"); env != "" {
		SetMode(ParseMode(env))
		return
	}
	if !IsTerminal() {
		SetMode(ModeMachine)
		return
	}
	SetMode(ModeRich)
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ShouldAnimate reports whether animated output (spinners) is acceptable.
func ShouldAnimate() bool {
	return GetMode() == ModeRich && IsTerminal()
}
