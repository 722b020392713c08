package cmd

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quantmind-br/appcenter/internal/backends"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/quantmind-br/appcenter/internal/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// RegistryFactory builds the backend registry a command works on
type RegistryFactory func(ctx context.Context) (*backends.Registry, error)

// Deps are the collaborators shared by every command
type Deps struct {
	Registry RegistryFactory
	Metrics  *prometheus.Registry
	Runner   helpers.CommandRunner
	Fs       afero.Fs
	Paths    *paths.Resolver
}

// DefaultDeps wires the commands to the real system
func DefaultDeps(cfg *config.Config, log *zerolog.Logger) *Deps {
	reg := prometheus.NewRegistry()

	// cache metrics register once per prometheus registry
	var (
		mu       sync.Mutex
		registry *backends.Registry
	)
	factory := func(ctx context.Context) (*backends.Registry, error) {
		mu.Lock()
		defer mu.Unlock()
		if registry != nil {
			return registry, nil
		}
		r, err := backends.NewRegistry(ctx, cfg, log, reg)
		if err != nil {
			return nil, err
		}
		registry = r
		return r, nil
	}

	return &Deps{
		Registry: factory,
		Metrics:  reg,
		Runner:   helpers.NewOSCommandRunner(),
		Fs:       afero.NewOsFs(),
		Paths:    paths.NewResolver(cfg),
	}
}

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	return NewRootCmdWithDeps(cfg, log, version, DefaultDeps(cfg, log))
}

// NewRootCmdWithDeps creates the root command over injected dependencies
func NewRootCmdWithDeps(cfg *config.Config, log *zerolog.Logger, version string, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "appcenter",
		Short:         "Browse installed applications",
		Long:          `Lists applications installed from user package sources (Flatpak) and shows their AppStream metadata.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	cmd.AddCommand(NewListCmd(cfg, log, deps))
	cmd.AddCommand(NewInfoCmd(cfg, log, deps))
	cmd.AddCommand(NewRemotesCmd(cfg, log, deps))
	cmd.AddCommand(NewWarmCmd(cfg, log, deps))
	cmd.AddCommand(NewDoctorCmd(cfg, log, deps))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
