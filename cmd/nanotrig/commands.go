// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	appVersion = "0.4.0"

	logLevel   string // CLI override for logging.level
	outputMode string // Output style (rich/plain/machine)
	traceSpans bool   // Export analysis spans to stdout

	rootCmd = &cobra.Command{
		Use:   "nanotrig",
		Short: "Measure HLT trigger efficiencies on flattened event datasets",
		Long: `nanotrig measures trigger efficiencies over flattened collision-event
				datasets, with Clopper-Pearson confidence bounds and generator-level
				weight normalization.`,
	}

	// --- Analysis ---
	analyzeCmd = &cobra.Command{
		Use:   "analyze [dataset.ndjson]",
		Short: "Measure trigger efficiency for a dataset",
		Args:  cobra.ExactArgs(1),
		Run:   runAnalyze, // Defined in cmd_analyze.go
	}

	// --- Generator sums ---
	sumwCmd = &cobra.Command{
		Use:   "sumw [dataset.ndjson]",
		Short: "Show generator-level event counts and weight sums",
		Args:  cobra.ExactArgs(1),
		Run:   runSumw, // Defined in cmd_sumw.go
	}

	// --- Trigger inspection ---
	triggersCmd = &cobra.Command{
		Use:   "triggers",
		Short: "Inspect trigger activity in a dataset",
	}
	triggerCountsCmd = &cobra.Command{
		Use:   "counts [dataset.ndjson]",
		Short: "Count activations per trigger flag",
		Args:  cobra.ExactArgs(1),
		Run:   runTriggerCounts, // Defined in cmd_triggers.go
	}
	triggerOverlapCmd = &cobra.Command{
		Use:   "overlap [dataset.ndjson]",
		Short: "Count coincidences between two trigger flags",
		Args:  cobra.ExactArgs(1),
		Run:   runTriggerOverlap, // Defined in cmd_triggers.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the nanotrig version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("nanotrig " + appVersion)
		},
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log verbosity: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&outputMode, "output", "",
		"Output style: rich (default), plain, or machine (scripting)")
	rootCmd.PersistentFlags().BoolVar(&traceSpans, "trace", false,
		"Export analysis spans to stdout")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(sumwCmd)
	rootCmd.AddCommand(triggersCmd)
	triggersCmd.AddCommand(triggerCountsCmd)
	triggersCmd.AddCommand(triggerOverlapCmd)
	rootCmd.AddCommand(versionCmd)
}
