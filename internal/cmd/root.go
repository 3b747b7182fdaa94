package cmd

import (
	"github.com/quantmind-br/browserscout/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "browserscout",
		Short:        "Locate installed web browsers",
		Long:         `Finds installed web-browser executables on Windows by probing the filesystem, environment, registry, Start Menu, and PATH, and enriches each hit with version and architecture metadata.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewDetectCmd(cfg, log))
	cmd.AddCommand(NewListCmd(cfg, log))
	cmd.AddCommand(NewHistoryCmd(cfg, log))
	cmd.AddCommand(NewDoctorCmd(cfg, log))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
