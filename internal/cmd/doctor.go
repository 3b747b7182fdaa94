package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/browserscout/internal/config"
	"github.com/quantmind-br/browserscout/internal/history"
	"github.com/quantmind-br/browserscout/internal/ui"
	"github.com/quantmind-br/browserscout/internal/winreg"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the detection environment",
		Long:  `Check the environment variables, registry access, directories, and history database that detection relies on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintHeader("Environment Diagnostics")
			fmt.Println()

			var issues []string
			var warnings []string

			// 1. Environment variables probes depend on
			ui.PrintSubheader("Environment Variables")
			envVars := []struct {
				name   string
				needed bool
			}{
				{"ProgramFiles", true},
				{"ProgramFiles(x86)", false},
				{"LOCALAPPDATA", true},
				{"APPDATA", false},
				{"PATH", true},
			}

			for _, env := range envVars {
				value := os.Getenv(env.name)
				switch {
				case value != "":
					ui.PrintSuccess("%s: set", env.name)
				case env.needed:
					ui.PrintWarning("%s: not set", env.name)
					warnings = append(warnings, fmt.Sprintf("Environment variable not set: %s (its probes will find nothing)", env.name))
				default:
					ui.PrintInfo("%s: not set", env.name)
				}
			}

			fmt.Println()

			// 2. Registry access
			ui.PrintSubheader("Registry")
			ctx := context.Background()
			reg := winreg.NewOSReader()
			_, err := reg.QueryValue(ctx, `Microsoft\Windows\CurrentVersion`, "ProgramFilesDir")
			switch {
			case err == nil:
				ui.PrintSuccess("Registry: accessible")
			case errors.Is(err, winreg.ErrUnsupported):
				ui.PrintWarning("Registry: not available on this platform")
				warnings = append(warnings, "Registry probes are disabled on this platform")
			case errors.Is(err, winreg.ErrNotExist):
				ui.PrintSuccess("Registry: accessible")
			default:
				ui.PrintError("Registry: %v", err)
				issues = append(issues, fmt.Sprintf("Registry access failed: %v", err))
			}

			fmt.Println()

			// 3. Directory structure
			ui.PrintSubheader("Directory Structure")
			dirs := []struct {
				path string
				name string
			}{
				{cfg.Paths.DataDir, "Data directory"},
				{filepath.Dir(cfg.Paths.DBFile), "Database directory"},
				{filepath.Dir(cfg.Paths.LogFile), "Log directory"},
			}

			for _, dir := range dirs {
				if checkDirectory(dir.path) {
					ui.PrintSuccess("%s: %s", dir.name, dir.path)
				} else {
					ui.PrintError("%s: NOT ACCESSIBLE (%s)", dir.name, dir.path)
					issues = append(issues, fmt.Sprintf("Directory not accessible: %s", dir.path))
				}
			}

			fmt.Println()

			// 4. History database
			ui.PrintSubheader("History Database")
			db, err := history.New(ctx, cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("Database: NOT ACCESSIBLE")
				issues = append(issues, fmt.Sprintf("Cannot open database: %v", err))
			} else {
				ui.PrintSuccess("Database: accessible (%s)", cfg.Paths.DBFile)
				defer db.Close()

				records, err := db.List(ctx)
				if err != nil {
					ui.PrintWarning("Cannot list saved scans: %v", err)
					warnings = append(warnings, "Cannot list saved scans")
				} else {
					ui.PrintInfo("Saved scans: %d", len(records))
				}
			}

			fmt.Println()

			// Summary
			ui.PrintHeader("Summary")
			fmt.Println()

			if len(issues) == 0 {
				ui.PrintSuccess("All critical checks passed!")
			} else {
				ui.PrintError("Found %d issue(s):", len(issues))
				ui.PrintList(issues)
				fmt.Println()
			}

			if len(warnings) > 0 {
				ui.PrintWarning("Found %d warning(s):", len(warnings))
				ui.PrintList(warnings)
			}

			fmt.Println()

			if len(issues) > 0 {
				return fmt.Errorf("environment check failed with %d issue(s)", len(issues))
			}

			return nil
		},
	}

	return cmd
}

// checkDirectory checks if a directory exists and is writable
func checkDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return false
			}
			return true
		}
		return false
	}

	if !info.IsDir() {
		return false
	}

	testFile := filepath.Join(path, ".browserscout-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return false
	}
	os.Remove(testFile)

	return true
}
