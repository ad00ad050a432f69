// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the nanotrig CLI.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// nanotrig color palette - detector-hall blues with beam-dump amber
var (
	// Primary palette (brightest to darkest)
	ColorSkyBright   = lipgloss.Color("#55B7F0") // Bright sky - highlights, success
	ColorBeamPrimary = lipgloss.Color("#2E94D8") // Primary blue - main brand color
	ColorBeamDeep    = lipgloss.Color("#1E6FB0") // Deep blue - borders, accents
	ColorCavern      = lipgloss.Color("#174F80") // Cavern blue - subtle accents

	// Dark palette (for muted elements)
	ColorShaft   = lipgloss.Color("#28415A") // Shaft gray-blue - muted text
	ColorBedrock = lipgloss.Color("#131E2B") // Bedrock - near black

	// Semantic colors
	ColorSuccess = lipgloss.Color("#55B7F0") // Bright sky for success
	ColorWarning = lipgloss.Color("#E8B339") // Amber for warnings
	ColorError   = lipgloss.Color("#D64541") // Red for errors
	ColorMuted   = lipgloss.Color("#28415A") // Shaft for muted text
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	// Text styles
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	// Box styles
	Box        lipgloss.Style
	WarningBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorSkyBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorBeamPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorShaft),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorSkyBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBeamDeep).
		Padding(0, 1),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	if GetMode() != ModeRich {
		return string(i)
	}
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Print helpers that respect the output mode

// Title prints a styled title
func Title(text string) {
	switch GetMode() {
	case ModeMachine:
		return
	case ModePlain:
		fmt.Println(text)
	default:
		fmt.Println(Styles.Title.Render(text))
	}
}

// Success prints a success message with checkmark
func Success(text string) {
	switch GetMode() {
	case ModeMachine:
		fmt.Fprintf(os.Stdout, "OK: %s\n", text)
	case ModePlain:
		fmt.Printf("%s %s\n", IconSuccess, text)
	default:
		fmt.Printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func Warning(text string) {
	switch GetMode() {
	case ModeMachine:
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
	case ModePlain:
		fmt.Printf("%s %s\n", IconWarning, text)
	default:
		fmt.Printf("%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func Error(text string) {
	switch GetMode() {
	case ModeMachine:
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
	case ModePlain:
		fmt.Printf("%s %s\n", IconError, text)
	default:
		fmt.Printf("%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func Info(text string) {
	switch GetMode() {
	case ModeMachine:
		fmt.Println(text)
	case ModePlain:
		fmt.Printf("| %s\n", text)
	default:
		fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
	}
}

// Muted prints muted/secondary text
func Muted(text string) {
	switch GetMode() {
	case ModeMachine:
		return
	case ModePlain:
		fmt.Println(text)
	default:
		fmt.Println(Styles.Muted.Render(text))
	}
}

// KeyValue prints an aligned key/value line. In machine mode it emits
// key=value for easy parsing.
func KeyValue(key, value string) {
	switch GetMode() {
	case ModeMachine:
		fmt.Printf("%s=%s\n", key, value)
	case ModePlain:
		fmt.Printf("  %-12s %s\n", key+":", value)
	default:
		fmt.Printf("  %s %s\n", Styles.Muted.Render(fmt.Sprintf("%-12s", key+":")), value)
	}
}

// Box prints text in a rounded box
func Box(title, content string) {
	switch GetMode() {
	case ModeMachine:
		fmt.Printf("%s: %s\n", title, content)
	case ModePlain:
		fmt.Printf("%s\n%s\n", title, content)
	default:
		boxStyle := Styles.Box.Width(60)
		titleLine := Styles.Title.Render(title)
		fmt.Println(boxStyle.Render(titleLine + "\n" + content))
	}
}
