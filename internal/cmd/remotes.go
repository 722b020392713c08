package cmd

import (
	"context"
	"encoding/json"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/appcenter/internal/backends/flatpak"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// remoteLister is implemented by backends that know their remotes
type remoteLister interface {
	Remotes(ctx context.Context) ([]flatpak.Remote, error)
}

type remoteRow struct {
	Backend      string `json:"backend"`
	Name         string `json:"name"`
	AppstreamDir string `json:"appstream_dir"`
}

// NewRemotesCmd creates the remotes command
func NewRemotesCmd(_ *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "remotes",
		Short: "List configured remotes",
		Long: `List the remotes of every backend together with their local AppStream checkout.

Backends also log their remotes when they start, but that output is
informational only. This command is the supported way to get the listing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			registry, err := deps.Registry(ctx)
			if err != nil {
				ui.PrintError("failed to open backends: %v", err)
				return err
			}

			rows := []remoteRow{}
			for _, name := range registry.ListBackends() {
				b, err := registry.GetBackend(name)
				if err != nil {
					return err
				}
				lister, ok := b.(remoteLister)
				if !ok {
					log.Debug().Str("backend", name).Msg("backend has no remotes")
					continue
				}

				remotes, err := lister.Remotes(ctx)
				if err != nil {
					ui.PrintError("failed to list %s remotes: %v", name, err)
					return err
				}
				for _, r := range remotes {
					rows = append(rows, remoteRow{Backend: name, Name: r.Name, AppstreamDir: r.AppstreamDir})
				}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				ui.PrintInfo("No remotes configured")
				return nil
			}

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Backend", "Remote", "AppStream"}),
				tablewriter.WithAlignment(tw.MakeAlign(3, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)
			for _, r := range rows {
				dir := r.AppstreamDir
				if dir == "" {
					dir = "(not synced)"
				}
				table.Append(ui.ColorizeBackend(r.Backend), r.Name, dir)
			}
			table.Render()

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}
