package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/browserscout/internal/browsers"
	"github.com/quantmind-br/browserscout/internal/config"
	"github.com/quantmind-br/browserscout/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var showProbes bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known browsers and their probes",
		Long:  `List every browser the detect command knows about, with its default binary and the number of discovery probes defined for it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := browsers.NewRegistry(cfg.Detect.ChromeChannels)

			ui.PrintHeader("Known Browsers")
			fmt.Println()

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Browser", "Binary", "Probes", "Hooks"}),
				tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)

			for _, id := range registry.IDs() {
				def, _ := registry.Lookup(id)

				hooks := "-"
				switch {
				case def.Pre != nil && def.Post != nil:
					hooks = "pre, post"
				case def.Pre != nil:
					hooks = "pre"
				case def.Post != nil:
					hooks = "post"
				}

				table.Append(def.ID, def.Binary, fmt.Sprintf("%d", len(def.Probes)), hooks)
			}
			table.Render()

			if showProbes {
				for _, id := range registry.IDs() {
					def, _ := registry.Lookup(id)
					ui.PrintSubheader(def.ID)
					items := make([]string, 0, len(def.Probes))
					for _, p := range def.Probes {
						items = append(items, describeProbe(p))
					}
					ui.PrintList(items)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&showProbes, "probes", "p", false, "list every probe per browser")

	return cmd
}

// describeProbe renders one probe descriptor for display
func describeProbe(p browsers.Probe) string {
	switch {
	case p.EnvVar != "" && p.RelPath != "":
		return fmt.Sprintf("%s: %%%s%%\\%s", p.Kind, p.EnvVar, p.RelPath)
	case p.EnvVar != "":
		return fmt.Sprintf("%s: %%%s%%", p.Kind, p.EnvVar)
	case p.VersionKey != "":
		return fmt.Sprintf("%s: %s @ %s", p.Kind, p.ValueName, p.Key)
	case p.Key != "":
		if p.ValueName == "" {
			return fmt.Sprintf("%s: %s", p.Kind, p.Key)
		}
		return fmt.Sprintf("%s: %s @ %s", p.Kind, p.ValueName, p.Key)
	case p.Pattern != "":
		return fmt.Sprintf("%s: %q", p.Kind, p.Pattern)
	default:
		return string(p.Kind)
	}
}
