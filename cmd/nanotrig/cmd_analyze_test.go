// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/config"
)

// resetAnalyzeState zeroes the analyze flag globals and the loaded
// configuration for one test, restoring both afterwards.
func resetAnalyzeState(t *testing.T) {
	t.Helper()
	prevTrig, prevRef, prevWeight := analyzeTriggerPath, analyzeRefField, analyzeWeightField
	prevMax, prevLevel, prevWorkers := analyzeMaxEntries, analyzeLevel, analyzeWorkers
	prevCfg := config.Global
	t.Cleanup(func() {
		analyzeTriggerPath, analyzeRefField, analyzeWeightField = prevTrig, prevRef, prevWeight
		analyzeMaxEntries, analyzeLevel, analyzeWorkers = prevMax, prevLevel, prevWorkers
		config.Global = prevCfg
	})
	analyzeTriggerPath, analyzeRefField, analyzeWeightField = "", "", ""
	analyzeMaxEntries, analyzeLevel, analyzeWorkers = 0, 0, 0
	config.Global = config.NanotrigConfig{}
}

// scratchAnalyzeCmd builds a throwaway command carrying the max-entries
// flag so tests can control its Changed state.
func scratchAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "analyze"}
	cmd.Flags().Int64Var(&analyzeMaxEntries, "max-entries", 0, "")
	return cmd
}

// TestAnalyzeOptionsConfigDefaults verifies config values fill in when no
// flags are set.
func TestAnalyzeOptionsConfigDefaults(t *testing.T) {
	resetAnalyzeState(t)
	config.Global.Analysis = config.AnalysisConfig{
		TriggerPath: "/etc/nanotrig/triggers.txt",
		RefField:    "HLT_passZZ4l",
		WeightField: "overallEventWeight",
		Level:       0.95,
		Workers:     8,
	}

	opts, err := analyzeOptions(scratchAnalyzeCmd())
	if err != nil {
		t.Fatalf("analyzeOptions failed: %v", err)
	}
	if opts.TriggerPath != "/etc/nanotrig/triggers.txt" {
		t.Errorf("trigger path: got %q", opts.TriggerPath)
	}
	if opts.RefField != "HLT_passZZ4l" || opts.WeightField != "overallEventWeight" {
		t.Errorf("fields: got %q / %q", opts.RefField, opts.WeightField)
	}
	if opts.Level != 0.95 || opts.Workers != 8 {
		t.Errorf("level/workers: got %v / %d", opts.Level, opts.Workers)
	}
	if opts.MaxEntries != nil {
		t.Errorf("expected nil MaxEntries, got %d", *opts.MaxEntries)
	}
}

// TestAnalyzeOptionsFlagsWin verifies explicit flags override the config.
func TestAnalyzeOptionsFlagsWin(t *testing.T) {
	resetAnalyzeState(t)
	config.Global.Analysis = config.AnalysisConfig{
		TriggerPath: "/etc/nanotrig/triggers.txt",
		RefField:    "HLT_passZZ4l",
		WeightField: "overallEventWeight",
		Level:       0.683,
		Workers:     2,
	}
	analyzeTriggerPath = "/tmp/custom.txt"
	analyzeRefField = "HLT_passZZ2l2q"
	analyzeWeightField = "puWeight"
	analyzeLevel = 0.9
	analyzeWorkers = 16

	opts, err := analyzeOptions(scratchAnalyzeCmd())
	if err != nil {
		t.Fatalf("analyzeOptions failed: %v", err)
	}
	if opts.TriggerPath != "/tmp/custom.txt" {
		t.Errorf("trigger path: got %q", opts.TriggerPath)
	}
	if opts.RefField != "HLT_passZZ2l2q" || opts.WeightField != "puWeight" {
		t.Errorf("fields: got %q / %q", opts.RefField, opts.WeightField)
	}
	if opts.Level != 0.9 || opts.Workers != 16 {
		t.Errorf("level/workers: got %v / %d", opts.Level, opts.Workers)
	}
}

// TestAnalyzeOptionsMissingTriggers verifies the fail-fast when neither a
// flag nor the config names a trigger list.
func TestAnalyzeOptionsMissingTriggers(t *testing.T) {
	resetAnalyzeState(t)

	_, err := analyzeOptions(scratchAnalyzeCmd())
	if err == nil {
		t.Fatal("expected an error without a trigger list")
	}
	if !strings.Contains(err.Error(), "no trigger list") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestAnalyzeOptionsMaxEntries verifies the cap is only applied when the
// flag was set, including an explicit zero.
func TestAnalyzeOptionsMaxEntries(t *testing.T) {
	resetAnalyzeState(t)
	config.Global.Analysis.TriggerPath = "/etc/nanotrig/triggers.txt"

	cmd := scratchAnalyzeCmd()
	if err := cmd.Flags().Set("max-entries", "123"); err != nil {
		t.Fatal(err)
	}
	opts, err := analyzeOptions(cmd)
	if err != nil {
		t.Fatalf("analyzeOptions failed: %v", err)
	}
	if opts.MaxEntries == nil || *opts.MaxEntries != 123 {
		t.Fatalf("expected MaxEntries 123, got %v", opts.MaxEntries)
	}
}

// TestAnalyzeOptionsMaxEntriesZero verifies an explicit zero cap survives.
func TestAnalyzeOptionsMaxEntriesZero(t *testing.T) {
	resetAnalyzeState(t)
	config.Global.Analysis.TriggerPath = "/etc/nanotrig/triggers.txt"

	cmd := scratchAnalyzeCmd()
	if err := cmd.Flags().Set("max-entries", "0"); err != nil {
		t.Fatal(err)
	}
	opts, err := analyzeOptions(cmd)
	if err != nil {
		t.Fatalf("analyzeOptions failed: %v", err)
	}
	if opts.MaxEntries == nil || *opts.MaxEntries != 0 {
		t.Fatalf("expected MaxEntries 0, got %v", opts.MaxEntries)
	}
}

// TestAnalyzeOptionsNegativeMaxEntries verifies negative caps are rejected.
func TestAnalyzeOptionsNegativeMaxEntries(t *testing.T) {
	resetAnalyzeState(t)
	config.Global.Analysis.TriggerPath = "/etc/nanotrig/triggers.txt"

	cmd := scratchAnalyzeCmd()
	if err := cmd.Flags().Set("max-entries", "-5"); err != nil {
		t.Fatal(err)
	}
	if _, err := analyzeOptions(cmd); err == nil {
		t.Fatal("expected an error for a negative cap")
	}
}

// TestCommandTree verifies the subcommand and persistent flag wiring.
func TestCommandTree(t *testing.T) {
	want := map[string]bool{
		"analyze":  false,
		"sumw":     false,
		"triggers": false,
		"version":  false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	for _, flag := range []string{"log-level", "output", "trace"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag %q not registered", flag)
		}
	}

	var sub []string
	for _, c := range triggersCmd.Commands() {
		sub = append(sub, c.Name())
	}
	joined := strings.Join(sub, " ")
	if !strings.Contains(joined, "counts") || !strings.Contains(joined, "overlap") {
		t.Errorf("triggers subcommands incomplete: %v", sub)
	}
}
