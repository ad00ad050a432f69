// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sink publishes finished efficiency reports to InfluxDB so runs
// can be tracked on a dashboard over time.
package sink

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/analysis"
)

// measurement is the InfluxDB measurement name for efficiency points.
const measurement = "trigger_efficiency"

// Config holds the InfluxDB connection settings. Leaving URL or Token
// empty disables publishing.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Publisher writes efficiency reports to InfluxDB. The zero value is a
// disabled publisher whose Publish is a no-op.
type Publisher struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// New creates a publisher for the given connection settings. When the
// configuration is incomplete the publisher is disabled rather than
// failing: publishing is an optional side channel.
func New(cfg Config) *Publisher {
	if cfg.URL == "" || cfg.Token == "" {
		return &Publisher{}
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Publisher{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

// Enabled reports whether this publisher will actually write.
func (p *Publisher) Enabled() bool {
	return p != nil && p.writeAPI != nil
}

// Publish writes one point per available efficiency estimate. Estimates
// missing from the report are simply not written; a report with no
// estimates produces no points and no error.
func (p *Publisher) Publish(ctx context.Context, report *analysis.Report) error {
	if !p.Enabled() {
		return nil
	}
	if report == nil {
		return fmt.Errorf("nil report")
	}

	points := make([]*write.Point, 0, 2)
	if report.Raw != nil {
		points = append(points, influxdb2.NewPoint(
			measurement,
			map[string]string{
				"dataset":   report.Dataset,
				"kind":      "raw",
				"report_id": report.ID,
			},
			map[string]interface{}{
				"value":    report.Raw.Value,
				"err_up":   report.Raw.ErrUp,
				"err_down": report.Raw.ErrDown,
				"total":    float64(report.Counts.Seen),
				"selected": float64(report.Counts.Passed),
			},
			report.CreatedAt,
		))
	}
	if report.Weighted != nil {
		points = append(points, influxdb2.NewPoint(
			measurement,
			map[string]string{
				"dataset":   report.Dataset,
				"kind":      "weighted",
				"report_id": report.ID,
			},
			map[string]interface{}{
				"value":    report.Weighted.Value,
				"err_up":   report.Weighted.ErrUp,
				"err_down": report.Weighted.ErrDown,
				"total":    report.Normalized.Sumw,
				"selected": report.Counts.WeightedPassed,
			},
			report.CreatedAt,
		))
	}
	if len(points) == 0 {
		return nil
	}

	if err := p.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write efficiency points: %w", err)
	}
	return nil
}

// Close releases the underlying client. Safe on a disabled publisher.
func (p *Publisher) Close() {
	if p != nil && p.client != nil {
		p.client.Close()
	}
}
