package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd(_ *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var (
		jsonOutput    bool
		filterName    string
		filterBackend string
		sortBy        string
		showDetails   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed applications",
		Long:  `List the applications installed in every enabled backend.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			registry, err := deps.Registry(ctx)
			if err != nil {
				ui.PrintError("failed to open backends: %v", err)
				return err
			}

			pkgs, err := registry.Installed(ctx)
			if err != nil {
				ui.PrintError("failed to list applications: %v", err)
				return err
			}

			// Apply filters
			filtered := filterPackages(pkgs, filterBackend, filterName)

			// Apply sorting
			sortPackages(filtered, sortBy)

			log.Debug().
				Int("installed", len(pkgs)).
				Int("shown", len(filtered)).
				Msg("listed applications")

			// JSON output
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(filtered)
			}

			// Check if empty
			if len(filtered) == 0 {
				if filterBackend != "" || filterName != "" {
					ui.PrintWarning("No applications found matching filters")
				} else {
					ui.PrintInfo("No applications installed")
				}
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d applications", len(pkgs))
			if len(filtered) != len(pkgs) {
				fmt.Fprintf(cmd.OutOrStdout(), " (showing %d filtered)", len(filtered))
			}
			fmt.Fprintln(cmd.OutOrStdout())

			// Table output
			if showDetails {
				printDetailedTable(cmd, filtered)
			} else {
				printCompactTable(cmd, filtered)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&filterName, "name", "", "filter by name or id (partial match)")
	cmd.Flags().StringVar(&filterBackend, "backend", "", "filter by backend (flatpak)")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "sort by: name, id, version, none")
	cmd.Flags().BoolVarP(&showDetails, "details", "d", false, "show arch, branch and icon")

	return cmd
}

// filterPackages filters packages by backend and name
func filterPackages(pkgs []core.Package, filterBackend, filterName string) []core.Package {
	filtered := make([]core.Package, 0, len(pkgs))
	needle := strings.ToLower(filterName)

	for _, pkg := range pkgs {
		if filterBackend != "" && !strings.EqualFold(pkg.Backend, filterBackend) {
			continue
		}

		// Filter by name (case-insensitive partial match on name or id)
		if needle != "" &&
			!strings.Contains(strings.ToLower(pkg.Name), needle) &&
			!strings.Contains(strings.ToLower(pkg.ID), needle) {
			continue
		}

		filtered = append(filtered, pkg)
	}

	return filtered
}

// sortPackages sorts packages by the specified field. "none" keeps the
// backend enumeration order.
func sortPackages(pkgs []core.Package, sortBy string) {
	byName := func(i, j int) bool {
		a, b := strings.ToLower(pkgs[i].Name), strings.ToLower(pkgs[j].Name)
		if a == b {
			return pkgs[i].Ref() < pkgs[j].Ref()
		}
		return a < b
	}

	switch strings.ToLower(sortBy) {
	case "none":
		return
	case "id":
		sort.SliceStable(pkgs, func(i, j int) bool {
			return pkgs[i].Ref() < pkgs[j].Ref()
		})
	case "version":
		sort.SliceStable(pkgs, func(i, j int) bool {
			if pkgs[i].Version == pkgs[j].Version {
				return byName(i, j)
			}
			return pkgs[i].Version < pkgs[j].Version
		})
	default:
		sort.SliceStable(pkgs, byName)
	}
}

// printCompactTable prints a compact table view
func printCompactTable(cmd *cobra.Command, pkgs []core.Package) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Name", "ID", "Version", "Branch"}),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, pkg := range pkgs {
		table.Append(
			pkg.Name,
			pkg.ID,
			ui.OrDash(pkg.Version),
			ui.OrDash(pkg.ExtraValue(core.ExtraBranch)),
		)
	}

	table.Render()
}

// printDetailedTable prints a detailed table view
func printDetailedTable(cmd *cobra.Command, pkgs []core.Package) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Name", "ID", "Backend", "Version", "Arch", "Branch", "Icon", "Summary"}),
		tablewriter.WithAlignment(tw.MakeAlign(8, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	for _, pkg := range pkgs {
		icon := pkg.Icon.Path
		if icon == "" {
			icon = "(theme) " + pkg.Icon.Name
		} else if len(icon) > 40 {
			icon = "..." + icon[len(icon)-37:]
		}

		summary := pkg.Summary
		if len(summary) > 50 {
			summary = summary[:47] + "..."
		}

		table.Append(
			pkg.Name,
			pkg.ID,
			ui.ColorizeBackend(pkg.Backend),
			ui.OrDash(pkg.Version),
			ui.OrDash(pkg.ExtraValue(core.ExtraArch)),
			ui.OrDash(pkg.ExtraValue(core.ExtraBranch)),
			icon,
			ui.OrDash(summary),
		)
	}

	table.Render()
}
