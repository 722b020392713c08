package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// warmReport summarizes a warm run
type warmReport struct {
	Total    int            `json:"total"`
	Loaded   int            `json:"loaded"`
	Failed   int            `json:"failed"`
	ByKind   map[string]int `json:"failures_by_kind,omitempty"`
	Hits     uint64         `json:"cache_hits"`
	Misses   uint64         `json:"cache_misses"`
	Entries  int            `json:"cache_entries"`
	Failures []string       `json:"failures,omitempty"`
}

// NewWarmCmd creates the warm command
func NewWarmCmd(cfg *config.Config, log *zerolog.Logger, deps *Deps) *cobra.Command {
	var (
		jsonOutput bool
		failFast   bool
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Preload AppStream metadata",
		Long: `Load the AppStream metadata of every installed application into the
cache, using a bounded number of concurrent workers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if workers <= 0 {
				workers = cfg.Cache.WarmWorkers
			}
			if workers <= 0 {
				workers = 1
			}

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

			bar := ui.NewProgressBar(len(pkgs), "Loading metadata", !jsonOutput && len(pkgs) > 0)

			var (
				mu     sync.Mutex
				report = warmReport{Total: len(pkgs), ByKind: map[string]int{}}
			)

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(workers)

			for _, pkg := range pkgs {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}

					_, err := registry.Appstream(gctx, pkg)

					mu.Lock()
					defer mu.Unlock()
					_ = bar.Add(1)

					if err == nil {
						report.Loaded++
						return nil
					}

					report.Failed++
					report.ByKind[kindLabel(err)]++
					report.Failures = append(report.Failures, pkg.Ref())
					log.Warn().
						Err(err).
						Str("ref", pkg.Ref()).
						Msg("failed to load metadata")

					if failFast {
						return err
					}
					return nil
				})
			}

			waitErr := g.Wait()
			_ = bar.Finish()

			stats := registry.Cache().Stats()
			report.Hits = stats.Hits
			report.Misses = stats.Misses
			report.Entries = stats.Entries
			sort.Strings(report.Failures)

			log.Info().
				Int("total", report.Total).
				Int("loaded", report.Loaded).
				Int("failed", report.Failed).
				Int("workers", workers).
				Msg("cache warmed")

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printWarmReport(cmd, report)
			}

			if waitErr != nil {
				return waitErr
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failure")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent loads (default cache.warm_workers)")

	return cmd
}

// kindLabel names the error kind for reporting
func kindLabel(err error) string {
	if kind := core.KindOf(err); kind != nil {
		return kind.Error()
	}
	return "other"
}

func printWarmReport(cmd *cobra.Command, r warmReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d of %d applications\n", r.Loaded, r.Total)

	if r.Failed > 0 {
		kinds := make([]string, 0, len(r.ByKind))
		for k := range r.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(out, "  %s %s: %d\n", ui.CrossMark, k, r.ByKind[k])
		}
	}

	fmt.Fprintf(out, "Cache: %d entries, %d hits, %d misses\n", r.Entries, r.Hits, r.Misses)
}
