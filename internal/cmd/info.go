package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/appcenter/internal/appstream"
	"github.com/quantmind-br/appcenter/internal/backends"
	"github.com/quantmind-br/appcenter/internal/backends/flatpak"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/desktop"
	"github.com/quantmind-br/appcenter/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// infoResult is the JSON shape of the info command
type infoResult struct {
	Package   core.Package         `json:"package"`
	Component *appstream.Component `json:"component,omitempty"`
	Origin    string               `json:"origin,omitempty"`
	Launcher  *desktop.Entry       `json:"launcher,omitempty"`
}

// NewInfoCmd creates the info command
func NewInfoCmd(_ *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var (
		jsonOutput bool
		arch       string
		branch     string
	)

	cmd := &cobra.Command{
		Use:   "info [app-id or name]",
		Short: "Show application metadata",
		Long:  `Show the AppStream metadata of an installed application.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
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

			matches, suggestions := backends.Find(pkgs, query)
			matches = filterRefs(matches, arch, branch)
			if len(matches) == 0 {
				ui.PrintError("application not found: %s", query)
				if len(suggestions) > 0 {
					ui.PrintInfo("Did you mean:")
					ui.PrintList(suggestions)
				} else {
					ui.PrintInfo("Use 'appcenter list' to see installed applications")
				}
				return core.NewError(core.ErrRefNotFound, "", "info", query, nil)
			}

			pkg, err := choosePackage(matches, log)
			if err != nil {
				return err
			}

			coll, err := registry.Appstream(ctx, pkg)
			if err != nil {
				ui.PrintError("failed to load metadata for %s: %v", pkg.Ref(), err)
				return err
			}

			comp := coll.Find(pkg.ID)
			if comp == nil {
				log.Warn().
					Str("id", pkg.ID).
					Int("components", coll.Len()).
					Msg("appdata does not describe the application")
			}

			launcher := lookupLauncher(deps, pkg, comp, log)

			log.Debug().
				Str("ref", pkg.Ref()).
				Str("backend", pkg.Backend).
				Msg("displayed application info")

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infoResult{Package: pkg, Component: comp, Origin: coll.Origin, Launcher: launcher})
			}

			printPackageInfo(cmd.OutOrStdout(), pkg, comp, launcher)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&arch, "arch", "", "only consider refs for this architecture")
	cmd.Flags().StringVar(&branch, "branch", "", "only consider refs on this branch")

	return cmd
}

// filterRefs keeps the packages matching the given arch and branch;
// empty filters match everything
func filterRefs(pkgs []core.Package, arch, branch string) []core.Package {
	if arch == "" && branch == "" {
		return pkgs
	}

	var out []core.Package
	for _, p := range pkgs {
		if arch != "" && p.ExtraValue(core.ExtraArch) != arch {
			continue
		}
		if branch != "" && p.ExtraValue(core.ExtraBranch) != branch {
			continue
		}
		out = append(out, p)
	}
	return out
}

// choosePackage asks the user when a query matched several refs. Without a
// terminal the first match wins.
func choosePackage(matches []core.Package, log *zerolog.Logger) (core.Package, error) {
	if len(matches) == 1 {
		return matches[0], nil
	}

	if !ui.IsInteractive() {
		ui.PrintWarning("%d refs match, showing %s (use --arch/--branch to pick another)",
			len(matches), matches[0].Ref())
		return matches[0], nil
	}

	options := make([]ui.SelectOption, len(matches))
	for i, p := range matches {
		options[i] = ui.SelectOption{
			Label:  p.Name,
			Detail: p.Backend + " " + p.Ref(),
			Value:  p.Ref(),
		}
	}

	idx, _, err := ui.SelectPromptDetailed("Select application", options)
	if err != nil {
		log.Debug().Err(err).Msg("selection aborted")
		return core.Package{}, err
	}
	return matches[idx], nil
}

// lookupLauncher finds the desktop entry flatpak exported for pkg. The
// component's desktop-id launchable wins over the application id.
func lookupLauncher(deps *Deps, pkg core.Package, comp *appstream.Component, log *zerolog.Logger) *desktop.Entry {
	if pkg.Backend != flatpak.BackendName || deps.Paths == nil {
		return nil
	}

	desktopID := pkg.ID
	if comp != nil {
		for _, l := range comp.Launchables {
			if l.Type == "desktop-id" && l.Value != "" {
				desktopID = l.Value
				break
			}
		}
	}

	dir := filepath.Join(deps.Paths.FlatpakExportsDir(), "applications")
	entry, err := desktop.Lookup(deps.Fs, dir, desktopID)
	if err != nil {
		log.Debug().
			Err(err).
			Str("desktop_id", desktopID).
			Msg("no exported launcher")
		return nil
	}
	return entry
}

// printPackageInfo prints the package record followed by its AppStream data
func printPackageInfo(w io.Writer, pkg core.Package, comp *appstream.Component, launcher *desktop.Entry) {
	kv := func(key, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "%s %s\n", ui.Bold.Sprintf("%-14s", key+":"), value)
	}

	fmt.Fprintln(w, ui.Highlight.Sprint(pkg.Name))
	kv("ID", pkg.ID)
	kv("Backend", ui.ColorizeBackend(pkg.Backend))
	kv("Version", pkg.Version)
	kv("Arch", pkg.ExtraValue(core.ExtraArch))
	kv("Branch", pkg.ExtraValue(core.ExtraBranch))
	if pkg.Icon.Resolved() {
		kv("Icon", pkg.Icon.Path)
	} else {
		kv("Icon", pkg.Icon.Name+" (theme)")
	}
	if launcher != nil {
		kv("Launch", launcher.CommandLine())
	}

	if comp == nil {
		kv("Summary", pkg.Summary)
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.Muted.Sprint("No AppStream component for this application"))
		return
	}

	kv("Summary", comp.Summary)
	kv("Developer", comp.DeveloperName)
	kv("License", comp.ProjectLicense)
	kv("Homepage", comp.URL("homepage"))
	kv("Bug tracker", comp.URL("bugtracker"))
	if len(comp.Categories) > 0 {
		kv("Categories", strings.Join(comp.Categories, ", "))
	}
	if rel := comp.LatestRelease(); rel != nil {
		released := rel.Version
		if rel.Date != "" {
			released += " (" + rel.Date + ")"
		}
		kv("Latest", released)
	}
	if shot := comp.DefaultScreenshot(); shot != nil && len(shot.Images) > 0 {
		kv("Screenshot", shot.Images[0].URL)
	}

	if comp.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, comp.Description)
	}
}
