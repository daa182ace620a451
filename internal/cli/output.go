// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cohortlens/internal/cohort"
)

// writeJSON writes v as indented JSON to --output, or to stdout when unset.
func (a *app) writeJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if a.outputPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(a.outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.outputPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", a.outputPath)
	return nil
}

// parseDate parses a --date flag. An empty value is the zero time, which the
// report service resolves to yesterday.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(cohort.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
