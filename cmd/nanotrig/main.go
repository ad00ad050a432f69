// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/config"
	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/telemetry"
	"github.com/lourdesurda/ZZAnalysis/pkg/logging"
	"github.com/lourdesurda/ZZAnalysis/pkg/ux"
)

var (
	appLogger   *logging.Logger
	stopTracing func(context.Context) error
)

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := config.Load(); err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}

		if outputMode != "" {
			ux.SetMode(ux.ParseMode(outputMode))
		} else {
			ux.InitMode()
		}

		level := config.Global.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		appLogger = logging.New(logging.Config{
			Level:   logging.ParseLevel(level),
			LogDir:  config.Global.Logging.Dir,
			Service: "nanotrig",
			JSON:    config.Global.Logging.JSON,
		})

		exporter := config.Global.Telemetry.Exporter
		if traceSpans {
			exporter = "stdout"
		}
		shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
			Exporter: exporter,
			Service:  "nanotrig",
			Version:  appVersion,
		})
		if err != nil {
			appLogger.Warn("telemetry init failed", "error", err)
		} else {
			stopTracing = shutdown
		}
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if stopTracing != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := stopTracing(ctx); err != nil {
				appLogger.Warn("telemetry shutdown failed", "error", err)
			}
		}
		if appLogger != nil {
			_ = appLogger.Close()
		}
	}
}
