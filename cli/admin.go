// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/committee-roster/db"
	"github.com/danielhkuo/committee-roster/flagging"
	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/terms"
	"github.com/danielhkuo/committee-roster/weights"
)

func migrateCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := o.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.CreateSchema(cmd.Context(), conn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema ready\n", color.New(color.FgGreen).Sprint("OK"))
			return nil
		},
	}
}

func flagsCmd(o *overrides) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "BOE eligibility flags",
	}

	var termID string
	run := &cobra.Command{
		Use:   "run",
		Short: "Rescan memberships against current voter records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := o.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close()

			summary, err := flagging.NewService(conn, nil).Run(cmd.Context(), termID)
			if err != nil {
				return err
			}
			PrintFlagSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	run.Flags().StringVar(&termID, "term", "", "Term ID (default: active term)")

	cmd.AddCommand(run)
	return cmd
}

func weightsCmd(o *overrides) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Designation weights",
	}

	var termID string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an LTED weight table (.csv or .xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := weights.ReadWeightTable(f, filepath.Base(args[0]))
			if err != nil {
				return err
			}

			_, conn, err := o.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close()

			report, err := weights.NewService(conn, nil).ImportWeightTable(cmd.Context(), termID, rows)
			if err != nil {
				return err
			}
			PrintImportReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	importCmd.Flags().StringVar(&termID, "term", "", "Term ID (default: active term)")

	cmd.AddCommand(importCmd)
	return cmd
}

func termCmd(o *overrides) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Committee terms",
	}

	var actor string
	activate := &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a term the single active term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := o.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close()

			term, err := terms.NewService(conn).Activate(cmd.Context(), args[0], actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
				color.New(color.FgGreen).Sprint("ACTIVE"), term.Name, term.ID)
			return nil
		},
	}
	activate.Flags().StringVar(&actor, "actor", "cli", "Operator recorded in the log")

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an inactive term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := o.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close()

			term, err := terms.NewService(conn).Create(cmd.Context(), args[0], nil, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
				color.New(color.FgBlue).Sprint("CREATED"), term.Name, term.ID)
			return nil
		},
	}

	cmd.AddCommand(activate, create)
	return cmd
}

// PrintFlagSummary writes a flag run summary, reasons sorted by name
func PrintFlagSummary(w io.Writer, s models.FlagRunSummary) {
	fmt.Fprintf(w, "Flag run for term %s\n", s.TermID)
	fmt.Fprintf(w, "  scanned:         %d\n", s.Scanned)
	fmt.Fprintf(w, "  flagged:         %s\n", count(s.Flagged, color.FgYellow))
	fmt.Fprintf(w, "  already flagged: %d\n", s.AlreadyFlagged)
	fmt.Fprintf(w, "  cleared:         %s\n", count(s.Cleared, color.FgGreen))
	fmt.Fprintf(w, "  clean:           %d\n", s.Clean)

	reasons := make([]string, 0, len(s.ByReason))
	for r := range s.ByReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "    %-28s %d\n", r, s.ByReason[r])
	}
}

// PrintImportReport writes a weight import report and its row errors
func PrintImportReport(w io.Writer, r models.ImportReport) {
	fmt.Fprintf(w, "Weight import for term %s\n", r.TermID)
	fmt.Fprintf(w, "  matched:              %s\n", count(r.Matched, color.FgGreen))
	fmt.Fprintf(w, "  committees updated:   %d\n", r.CommitteesUpdated)
	fmt.Fprintf(w, "  skipped no committee: %s\n", count(r.SkippedNoCommittee, color.FgYellow))
	fmt.Fprintf(w, "  skipped invalid:      %s\n", count(r.SkippedInvalid, color.FgYellow))
	fmt.Fprintf(w, "  failed:               %s\n", count(r.Failed, color.FgRed))
	for _, e := range r.Errors {
		fmt.Fprintf(w, "    line %d %q: %s\n", e.Line, e.LTED, e.Error)
	}
}

// count highlights non-zero values
func count(n int, attr color.Attribute) string {
	if n == 0 {
		return "0"
	}
	return color.New(attr).Sprint(n)
}
