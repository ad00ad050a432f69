// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/config"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/analysis"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/sink"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/triggers"
	"github.com/lourdesurda/ZZAnalysis/pkg/ux"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeTriggerPath string // Trigger list file
	analyzeRefField    string // Reference selection flag override
	analyzeWeightField string // Weight field override
	analyzeMaxEntries  int64  // Entry cap
	analyzeLevel       float64
	analyzeWorkers     int
	analyzeJSON        bool // Print the full report as JSON
	analyzePublish     bool // Push efficiencies to InfluxDB
	analyzeWatch       bool // Re-run on trigger list edits
	analyzeNoCache     bool // Bypass the summary cache
)

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTriggerPath, "triggers", "t", "",
		"Trigger list file, one HLT path per line (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeRefField, "ref", "",
		"Reference selection flag (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeWeightField, "weight", "",
		"Per-event weight field (default from config)")
	analyzeCmd.Flags().Int64Var(&analyzeMaxEntries, "max-entries", 0,
		"Cap on scanned entries; the normalization is scaled to match")
	analyzeCmd.Flags().Float64Var(&analyzeLevel, "level", 0,
		"Confidence level for the efficiency bounds (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0,
		"Parallel scan workers (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false,
		"Print the full report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzePublish, "publish", false,
		"Publish the efficiencies to InfluxDB")
	analyzeCmd.Flags().BoolVar(&analyzeWatch, "watch", false,
		"Keep running and re-measure when the trigger list changes")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false,
		"Bypass the dataset summary cache")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runAnalyze measures the trigger efficiency for one dataset and renders
// the report. With --watch it stays resident and re-measures on every
// trigger list edit until interrupted.
func runAnalyze(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	opts, err := analyzeOptions(cmd)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	datasetPath := args[0]

	runOnce := func() error {
		d, closeCache, err := openDataset(datasetPath, analyzeNoCache)
		if err != nil {
			return err
		}
		defer closeCache()

		spin := ux.NewSpinner(fmt.Sprintf("scanning %s", filepath.Base(datasetPath)))
		spin.Start()
		report, err := analysis.Run(ctx, d, opts)
		spin.Stop()
		if err != nil {
			return err
		}

		if analyzeJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Println(string(out))
		} else {
			renderReport(report)
		}

		if analyzePublish {
			return publishReport(ctx, report)
		}
		return nil
	}

	if !analyzeWatch {
		if err := runOnce(); err != nil {
			ux.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	// Watch mode: a failed run is not fatal, the next edit gets another
	// chance.
	if err := runOnce(); err != nil {
		ux.Error(err.Error())
	}

	rerun := make(chan struct{}, 1)
	watcher, err := triggers.NewWatcher(opts.TriggerPath, appLogger, func() {
		select {
		case rerun <- struct{}{}:
		default:
		}
	})
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	go func() {
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("trigger list watcher stopped", "error", err)
		}
	}()

	ux.Muted(fmt.Sprintf("watching %s for changes, ctrl-c to stop", opts.TriggerPath))
	for {
		select {
		case <-ctx.Done():
			return
		case <-rerun:
			ux.Info("trigger list changed, re-measuring")
			if err := runOnce(); err != nil {
				ux.Error(err.Error())
			}
		}
	}
}

// analyzeOptions merges command-line flags over the configured defaults.
func analyzeOptions(cmd *cobra.Command) (analysis.Options, error) {
	cfg := config.Global.Analysis

	triggerPath := analyzeTriggerPath
	if triggerPath == "" {
		triggerPath = cfg.TriggerPath
	}
	if triggerPath == "" {
		return analysis.Options{}, fmt.Errorf(
			"no trigger list: pass --triggers or set analysis.trigger_path in the config")
	}

	opts := analysis.Options{
		TriggerPath: triggerPath,
		RefField:    firstNonEmpty(analyzeRefField, cfg.RefField),
		WeightField: firstNonEmpty(analyzeWeightField, cfg.WeightField),
		Level:       analyzeLevel,
		Workers:     analyzeWorkers,
		Log:         appLogger,
	}
	if opts.Level == 0 {
		opts.Level = cfg.Level
	}
	if opts.Workers == 0 {
		opts.Workers = cfg.Workers
	}
	if cmd.Flags().Changed("max-entries") {
		if analyzeMaxEntries < 0 {
			return analysis.Options{}, fmt.Errorf("--max-entries must be non-negative")
		}
		limit := analyzeMaxEntries
		opts.MaxEntries = &limit
	}
	return opts, nil
}

// publishReport pushes the report's efficiencies to the configured
// InfluxDB bucket.
func publishReport(ctx context.Context, report *analysis.Report) error {
	pub := sink.New(sink.Config{
		URL:    config.Global.Influx.URL,
		Token:  config.Global.Influx.Token,
		Org:    config.Global.Influx.Org,
		Bucket: config.Global.Influx.Bucket,
	})
	defer pub.Close()

	if !pub.Enabled() {
		return fmt.Errorf("influx is not configured: set influx.url and influx.token in the config")
	}
	if err := pub.Publish(ctx, report); err != nil {
		return err
	}
	ux.Success(fmt.Sprintf("published report %s to InfluxDB", report.ID))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
