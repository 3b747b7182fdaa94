package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/browserscout/internal/browsers"
	"github.com/quantmind-br/browserscout/internal/config"
	"github.com/quantmind-br/browserscout/internal/core"
	"github.com/quantmind-br/browserscout/internal/detect"
	"github.com/quantmind-br/browserscout/internal/history"
	"github.com/quantmind-br/browserscout/internal/peinfo"
	"github.com/quantmind-br/browserscout/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewDetectCmd creates the detect command
func NewDetectCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		save       bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "detect [browser...]",
		Short: "Detect installed browsers",
		Long: `Run every discovery probe for the named browsers and print what was
found. With no arguments every known browser is probed. Browsers that
are not installed simply produce no rows; only an unknown browser name
is an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			registry := browsers.NewRegistry(cfg.Detect.ChromeChannels)
			opts := detect.Options{
				Browsers:     registry,
				Log:          log,
				ProbeTimeout: cfg.Detect.ProbeTimeout,
			}

			var bar *ui.ProbeBar
			if !jsonOutput && !noProgress {
				probeCount := detect.New(opts).TotalProbes(args...)
				if probeCount > 0 {
					bar = ui.NewProbeBar(probeCount, "probing")
					opts.OnProbeDone = func() { _ = bar.Add(1) }
				}
			}

			detector := detect.New(opts)
			results, err := detector.Detect(ctx, args...)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				ui.PrintError("detection failed: %v", err)
				return fmt.Errorf("detect: %w", err)
			}

			if save {
				scanID, err := saveScan(ctx, cfg, args, results)
				if err != nil {
					ui.PrintError("failed to save scan: %v", err)
					return fmt.Errorf("save scan: %w", err)
				}
				log.Info().Str("scan_id", scanID).Msg("scan saved")
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				ui.PrintInfo("No browsers found")
				return nil
			}

			printResultsTable(cmd, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&save, "save", false, "record this scan in the history database")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the probe progress bar")

	return cmd
}

// saveScan stores one detection run in the history database
func saveScan(ctx context.Context, cfg *config.Config, requested []string, results []core.ExecutableInfo) (string, error) {
	db, err := history.New(ctx, cfg.Paths.DBFile)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.Save(ctx, requested, results)
}

// printResultsTable renders detection results as a table
func printResultsTable(cmd *cobra.Command, results []core.ExecutableInfo) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Browser", "Channel", "Version", "Arch", "Path"}),
		tablewriter.WithAlignment(tw.MakeAlign(5, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, res := range results {
		channel := string(res.Channel)
		if channel == "" {
			channel = "-"
		}

		table.Append(
			res.Name,
			ui.ColorizeChannel(channel),
			res.Version,
			peinfo.ArchName(res.Architecture),
			res.Path,
		)
	}

	table.Render()
}
