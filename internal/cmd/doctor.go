package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/quantmind-br/appcenter/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system dependencies and configuration",
		Long:  `Check the flatpak command, the user installation, appcenter directories and the metadata cache.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ui.PrintHeader("System Diagnostics")
			fmt.Println()

			var issues []string
			var warnings []string

			// 1. Check the flatpak command
			ui.PrintSubheader("Dependencies")
			command := cfg.Flatpak.Command
			if command == "" {
				command = "flatpak"
			}
			if !cfg.Flatpak.Enabled {
				ui.PrintInfo("flatpak backend disabled")
			} else if path, ok := checkDependency(deps.Runner, command); ok {
				ui.PrintSuccess("%s: %s", command, path)
			} else {
				ui.PrintError("%s: NOT FOUND", command)
				issues = append(issues, fmt.Sprintf("Missing required dependency: %s (list and inspect Flatpak apps)", command))
			}

			fmt.Println()

			// 2. Check directory structure
			ui.PrintSubheader("Directory Structure")
			userDir := deps.Paths.FlatpakUserDir()
			switch checkUserDir(deps.Fs, userDir) {
			case dirOK:
				ui.PrintSuccess("Flatpak user installation: %s", userDir)
			case dirMissing:
				ui.PrintWarning("Flatpak user installation: not created yet (%s)", userDir)
				warnings = append(warnings, "No user installation, nothing will be listed")
			default:
				ui.PrintError("Flatpak user installation: NOT A DIRECTORY (%s)", userDir)
				issues = append(issues, fmt.Sprintf("Flatpak user dir is not a directory: %s", userDir))
			}

			dirs := []struct {
				path string
				name string
			}{
				{cfg.Paths.DataDir, "Data directory"},
				{filepath.Dir(cfg.Paths.LogFile), "Log directory"},
			}

			for _, dir := range dirs {
				if checkDirectory(deps.Fs, dir.path) {
					ui.PrintSuccess("%s: %s", dir.name, dir.path)
				} else {
					ui.PrintError("%s: NOT ACCESSIBLE (%s)", dir.name, dir.path)
					issues = append(issues, fmt.Sprintf("Directory not accessible: %s", dir.path))
				}
			}

			fmt.Println()

			// 3. Check backends
			ui.PrintSubheader("Backends")
			registry, err := deps.Registry(ctx)
			if err != nil {
				ui.PrintError("Backends: NOT AVAILABLE")
				issues = append(issues, fmt.Sprintf("Cannot open backends: %v", err))
			} else {
				ui.PrintSuccess("Backends: %v", registry.ListBackends())

				pkgs, err := registry.Installed(ctx)
				if err != nil {
					ui.PrintWarning("Cannot list installed applications: %v", err)
					warnings = append(warnings, "Cannot list installed applications")
				} else {
					ui.PrintInfo("Installed applications: %d", len(pkgs))

					if verbose {
						// Check that every application still has metadata
						var broken []string
						for _, pkg := range pkgs {
							if _, err := registry.Appstream(ctx, pkg); err != nil {
								broken = append(broken, fmt.Sprintf("%s (%s)", pkg.Ref(), kindLabel(err)))
							}
						}
						if len(broken) > 0 {
							ui.PrintWarning("Found %d applications without usable metadata:", len(broken))
							ui.PrintList(broken)
							warnings = append(warnings, fmt.Sprintf("%d applications have no usable metadata", len(broken)))
						} else {
							ui.PrintSuccess("All installed applications have metadata")
						}
					}
				}

				stats := registry.Cache().Stats()
				ui.PrintInfo("Cache: %d entries, %d loads, %d load errors", stats.Entries, stats.Loads, stats.LoadErrors)
			}

			if deps.Metrics != nil {
				families, err := deps.Metrics.Gather()
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("Cannot gather metrics: %v", err))
				} else {
					ui.PrintInfo("Metric families: %d", len(families))
				}
			}

			fmt.Println()

			// 4. Check environment
			ui.PrintSubheader("Environment")
			checkEnvironment()

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

			log.Debug().
				Int("issues", len(issues)).
				Int("warnings", len(warnings)).
				Msg("doctor finished")

			if len(issues) > 0 {
				return fmt.Errorf("system check failed with %d issue(s)", len(issues))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also load the metadata of every application")

	return cmd
}

// checkDependency reports whether a command is on PATH and where
func checkDependency(runner helpers.CommandRunner, command string) (string, bool) {
	path, err := runner.LookPath(command)
	if err != nil {
		return "", false
	}
	return path, true
}

type dirState int

const (
	dirOK dirState = iota
	dirMissing
	dirInvalid
)

// checkUserDir inspects the flatpak user installation. A missing one is
// valid and simply holds no applications.
func checkUserDir(fs afero.Fs, path string) dirState {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dirMissing
		}
		return dirInvalid
	}
	if !info.IsDir() {
		return dirInvalid
	}
	return dirOK
}

// checkDirectory checks if a directory exists and is writable,
// creating it when missing
func checkDirectory(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		// Try to create if it doesn't exist
		if os.IsNotExist(err) {
			return fs.MkdirAll(path, 0755) == nil
		}
		return false
	}

	if !info.IsDir() {
		return false
	}

	// Check if writable
	testFile := filepath.Join(path, ".appcenter-test")
	if err := afero.WriteFile(fs, testFile, []byte("test"), 0644); err != nil {
		return false
	}
	_ = fs.Remove(testFile)

	return true
}

// checkEnvironment checks environment variables
func checkEnvironment() {
	envVars := []string{
		"FLATPAK_USER_DIR",
		"XDG_DATA_HOME",
		"XDG_DATA_DIRS",
		"XDG_CONFIG_HOME",
	}

	for _, name := range envVars {
		if value := os.Getenv(name); value != "" {
			ui.PrintSuccess("%s: %s", name, value)
		} else {
			ui.PrintInfo("%s: not set (using defaults)", name)
		}
	}
}
