// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cohortlens/internal/database"
)

// importResult is the import command's output.
type importResult struct {
	Table string           `json:"table"`
	Files map[string]int64 `json:"files"`
	Total int64            `json:"total"`
}

func (a *app) newImportCommand() *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "import --table TABLE FILE...",
		Short: "Load CSV files into a warehouse table",
		Long: `Append CSV files with a header row to a warehouse table. Columns are
matched by name.

Tables: ` + strings.Join(database.Tables, ", "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				return errors.New("--table is required")
			}
			return a.withDB(func(db *database.DB) error {
				res := importResult{Table: table, Files: make(map[string]int64, len(args))}
				for _, path := range args {
					n, err := db.ImportCSV(cmd.Context(), table, path)
					if err != nil {
						return err
					}
					res.Files[path] = n
					res.Total += n
				}
				if err := db.Checkpoint(cmd.Context()); err != nil {
					return fmt.Errorf("failed to checkpoint after import: %w", err)
				}
				return a.writeJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "target table")
	return cmd
}

func (a *app) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show warehouse location and row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *database.DB) error {
				if err := db.Ping(cmd.Context()); err != nil {
					return fmt.Errorf("warehouse unreachable: %w", err)
				}
				counts, err := db.TableCounts(cmd.Context())
				if err != nil {
					return err
				}
				return a.writeJSON(cmd, struct {
					Path   string           `json:"path"`
					Tables map[string]int64 `json:"tables"`
				}{db.Path(), counts})
			})
		},
	}
}

func (a *app) newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
