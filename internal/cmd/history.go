package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/browserscout/internal/config"
	"github.com/quantmind-br/browserscout/internal/history"
	"github.com/quantmind-br/browserscout/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command with its subcommands
func NewHistoryCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved detection runs",
	}

	cmd.AddCommand(newHistoryListCmd(cfg, log))
	cmd.AddCommand(newHistoryClearCmd(cfg, log))

	return cmd
}

// newHistoryListCmd creates the history list subcommand
func newHistoryListCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved scans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			db, err := history.New(ctx, cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("failed to open history database: %v", err)
				return fmt.Errorf("open history: %w", err)
			}
			defer db.Close()

			records, err := db.List(ctx)
			if err != nil {
				ui.PrintError("failed to list scans: %v", err)
				return fmt.Errorf("list scans: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				ui.PrintInfo("No saved scans")
				return nil
			}

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Scan ID", "Date", "Requested", "Found"}),
				tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)

			for _, rec := range records {
				requested := strings.Join(rec.Requested, ", ")
				if requested == "" {
					requested = "all"
				}
				table.Append(
					rec.ScanID,
					rec.ScanDate.Format("2006-01-02 15:04"),
					requested,
					fmt.Sprintf("%d", len(rec.Results)),
				)
			}
			table.Render()

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}

// newHistoryClearCmd creates the history clear subcommand
func newHistoryClearCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved scans",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()

			if !yes {
				confirmed, err := ui.ConfirmDangerousAction("clear the scan history", cfg.Paths.DBFile)
				if err != nil {
					return fmt.Errorf("confirm: %w", err)
				}
				if !confirmed {
					ui.PrintInfo("Aborted")
					return nil
				}
			}

			db, err := history.New(ctx, cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("failed to open history database: %v", err)
				return fmt.Errorf("open history: %w", err)
			}
			defer db.Close()

			removed, err := db.Clear(ctx)
			if err != nil {
				ui.PrintError("failed to clear history: %v", err)
				return fmt.Errorf("clear history: %w", err)
			}

			log.Info().Int64("scans_removed", removed).Msg("history cleared")
			ui.PrintSuccess("Removed %d saved scan(s)", removed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
