// Copyright (C) 2025 Lourdes Urda (lourdes.urda@cern.ch)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package triggers

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{
			name:  "simple list",
			input: "HLT_PFJet500\nHLT_PFHT1050\n",
			want:  []string{"HLT_PFJet500", "HLT_PFHT1050"},
		},
		{
			name:  "blank lines and whitespace",
			input: "  HLT_PFJet500  \n\n\t\nHLT_PFHT1050\n   \n",
			want:  []string{"HLT_PFJet500", "HLT_PFHT1050"},
		},
		{
			name:  "duplicates keep first position",
			input: "HLT_A\nHLT_B\nHLT_A\nHLT_C\nHLT_B\n",
			want:  []string{"HLT_A", "HLT_B", "HLT_C"},
		},
		{
			name:  "no trailing newline",
			input: "HLT_PFMET120_PFMHT120_IDTight",
			want:  []string{"HLT_PFMET120_PFMHT120_IDTight"},
		},
		{
			name:  "comments skipped",
			input: "# 2022 dilepton menu\nHLT_A\n  # indented comment\nHLT_B\n",
			want:  []string{"HLT_A", "HLT_B"},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrEmptySet,
		},
		{
			name:    "only blank lines",
			input:   "\n \n\t\n",
			wantErr: ErrEmptySet,
		},
		{
			name:    "comments only",
			input:   "# nothing enabled\n# still nothing\n",
			wantErr: ErrEmptySet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if got := set.Names(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Names() = %v, want %v", got, tt.want)
			}
			if set.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", set.Len(), len(tt.want))
			}
		})
	}
}

func TestParseRejectsMalformedNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine string
	}{
		{"pasted path", "HLT_A\n/data/list_HLT.txt\n", "line 2"},
		{"embedded space", "HLT A\n", "line 1"},
		{"leading digit", "HLT_A\nHLT_B\n2mu2e\n", "line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Parse() accepted a malformed name")
			}
			if !strings.Contains(err.Error(), tt.wantLine) {
				t.Errorf("Parse() error = %v, want mention of %s", err, tt.wantLine)
			}
		})
	}
}

func TestNamesReturnsCopy(t *testing.T) {
	set, err := Parse(strings.NewReader("HLT_A\nHLT_B\n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	names := set.Names()
	names[0] = "mutated"

	if set.Names()[0] != "HLT_A" {
		t.Error("Names() exposed internal slice")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list_HLT.txt")
	content := "HLT_AK8PFJet400_TrimMass30\nHLT_PFHT1050\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	want := []string{"HLT_AK8PFJet400_TrimMass30", "HLT_PFHT1050"}
	if got := set.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err == nil {
		t.Fatal("Load() succeeded on missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrEmptySet) {
		t.Fatalf("Load() error = %v, want ErrEmptySet", err)
	}
}
