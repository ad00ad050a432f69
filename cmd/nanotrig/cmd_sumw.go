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
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lourdesurda/ZZAnalysis/cmd/nanotrig/internal/dataset"
	"github.com/lourdesurda/ZZAnalysis/pkg/ux"
)

var (
	sumwJSON    bool
	sumwNoCache bool
)

func init() {
	sumwCmd.Flags().BoolVar(&sumwJSON, "json", false, "Output as JSON")
	sumwCmd.Flags().BoolVar(&sumwNoCache, "no-cache", false, "Bypass the dataset summary cache")
}

// runSumw prints the generator-level bookkeeping for a dataset. Results
// come from the summary cache when the file has not changed since the
// last scan.
func runSumw(cmd *cobra.Command, args []string) {
	var (
		d          *dataset.Dataset
		closeCache func()
	)
	err := ux.WithSpinner("reading generator sums", func() error {
		var err error
		d, closeCache, err = openDataset(args[0], sumwNoCache)
		return err
	})
	if err != nil {
		os.Exit(1)
	}
	defer closeCache()

	sum := d.Summary()
	if sumwJSON {
		out, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			ux.Error(fmt.Sprintf("encode summary: %v", err))
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	ux.Title("Generator summary: " + filepath.Base(args[0]))
	ux.KeyValue("events", strconv.FormatInt(sum.GenEventCount, 10))
	ux.KeyValue("sumw", fmt.Sprintf("%.6g", sum.GenEventSumw))
	ux.KeyValue("entries", strconv.FormatInt(sum.Entries, 10))
	if runs := len(d.Runs()); runs > 0 {
		ux.KeyValue("runs", strconv.Itoa(runs))
	} else {
		ux.Muted("summary served from cache")
	}
}
