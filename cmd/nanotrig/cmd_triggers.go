// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/scan"
	"github.com/lourdesurda/ZZAnalysis/pkg/ux"
	"github.com/lourdesurda/ZZAnalysis/pkg/validation"
)

var (
	countsPrefix string
	countsTop    int
	countsJSON   bool

	overlapBase  string
	overlapProbe string
	overlapJSON  bool
)

func init() {
	triggerCountsCmd.Flags().StringVar(&countsPrefix, "prefix", "HLT_",
		"Only count fields carrying this prefix")
	triggerCountsCmd.Flags().IntVar(&countsTop, "top", 0,
		"Show only the N most active flags (0 shows all)")
	triggerCountsCmd.Flags().BoolVar(&countsJSON, "json", false, "Output as JSON")

	triggerOverlapCmd.Flags().StringVar(&overlapBase, "base", "", "Base trigger flag")
	triggerOverlapCmd.Flags().StringVar(&overlapProbe, "probe", "", "Probe trigger flag")
	triggerOverlapCmd.Flags().BoolVar(&overlapJSON, "json", false, "Output as JSON")
	_ = triggerOverlapCmd.MarkFlagRequired("base")
	_ = triggerOverlapCmd.MarkFlagRequired("probe")
}

// runTriggerCounts tallies how often each trigger flag fired in the
// dataset, which is the first thing to check when an efficiency comes out
// suspiciously low.
func runTriggerCounts(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	d, closeCache, err := openDataset(args[0], true)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	defer closeCache()

	s, err := d.Events()
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	counts, seen, err := scan.CountActivations(ctx, s, countsPrefix)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	if countsJSON {
		out, err := json.MarshalIndent(struct {
			Seen   int64            `json:"seen"`
			Counts map[string]int64 `json:"counts"`
		}{seen, counts}, "", "  ")
		if err != nil {
			ux.Error(fmt.Sprintf("encode counts: %v", err))
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	type flagCount struct {
		name string
		n    int64
	}
	ordered := make([]flagCount, 0, len(counts))
	for name, n := range counts {
		ordered = append(ordered, flagCount{name, n})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].n != ordered[j].n {
			return ordered[i].n > ordered[j].n
		}
		return ordered[i].name < ordered[j].name
	})
	if countsTop > 0 && len(ordered) > countsTop {
		ordered = ordered[:countsTop]
	}

	ux.Title(fmt.Sprintf("Trigger activations over %d events", seen))
	if len(ordered) == 0 {
		ux.Muted(fmt.Sprintf("no fields with prefix %q", countsPrefix))
		return
	}
	for _, fc := range ordered {
		pct := 0.0
		if seen > 0 {
			pct = 100 * float64(fc.n) / float64(seen)
		}
		ux.KeyValue(fc.name, fmt.Sprintf("%d (%.1f%%)", fc.n, pct))
	}
}

// runTriggerOverlap reports how often the probe flag fired among events
// where the base flag fired.
func runTriggerOverlap(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()

	if err := validation.ValidateFields([]string{overlapBase, overlapProbe}); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	d, closeCache, err := openDataset(args[0], true)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	defer closeCache()

	s, err := d.Events()
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	co, err := scan.CountCoincidence(ctx, s, overlapBase, overlapProbe)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	if overlapJSON {
		out, err := json.MarshalIndent(co, "", "  ")
		if err != nil {
			ux.Error(fmt.Sprintf("encode overlap: %v", err))
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	ux.Title(fmt.Sprintf("Coincidence: %s with %s", overlapProbe, overlapBase))
	ux.KeyValue("events", fmt.Sprintf("%d", co.Seen))
	ux.KeyValue("base fired", fmt.Sprintf("%d", co.Base))
	ux.KeyValue("both fired", fmt.Sprintf("%d", co.Both))
	if co.Base > 0 {
		ux.KeyValue("conditional", fmt.Sprintf("%.4f", float64(co.Both)/float64(co.Base)))
	} else {
		ux.Muted("base trigger never fired")
	}
}
