// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// NanotrigConfig is the persisted CLI configuration. Command-line flags
// override whatever is set here.
type NanotrigConfig struct {
	// Analysis: defaults for the efficiency measurement itself
	Analysis AnalysisConfig `yaml:"analysis"`

	// Logging: verbosity and log file placement
	Logging LoggingConfig `yaml:"logging"`

	// Cache: the on-disk dataset summary cache
	Cache CacheConfig `yaml:"cache"`

	// Telemetry: trace export for debugging the pipeline
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Influx: optional efficiency dashboard sink
	Influx InfluxConfig `yaml:"influx"`
}

type AnalysisConfig struct {
	// TriggerPath is the default trigger list file.
	TriggerPath string `yaml:"trigger_path"`

	// RefField and WeightField name the reference flag and the per-event
	// weight in the dataset, e.g. HLT_passZZ4l and overallEventWeight.
	RefField    string `yaml:"ref_field"`
	WeightField string `yaml:"weight_field"`

	// Level is the confidence level for efficiency bounds.
	Level float64 `yaml:"level" validate:"omitempty,gt=0,lt=1"`

	// Workers sets the scan parallelism; 0 means sequential.
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type TelemetryConfig struct {
	// Exporter can be "stdout" or "none".
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=stdout none"`
}

type InfluxConfig struct {
	URL    string `yaml:"url" validate:"omitempty,url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// configValidate is the shared validator instance for config structs.
var configValidate = validator.New()

// Validate checks the structural constraints on the configuration.
func (c *NanotrigConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func DefaultConfig() NanotrigConfig {
	return NanotrigConfig{
		Analysis: AnalysisConfig{
			RefField:    "HLT_passZZ4l",
			WeightField: "overallEventWeight",
			Level:       0.683,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.nanotrig/logs",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "~/.nanotrig/cache",
		},
		Telemetry: TelemetryConfig{
			Exporter: "none",
		},
	}
}
