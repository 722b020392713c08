package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/appcenter/internal/cmd"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/quantmind-br/appcenter/internal/logging"
	"github.com/quantmind-br/appcenter/internal/ui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return core.ExitGeneral
	}

	ui.InitColors(cfg.Logging.Color)

	// Initialize logger
	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: logging.NoColorFor(cfg.Logging.Color),
	})

	// Execute root command
	rootCmd := cmd.NewRootCmd(cfg, log, version)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(ctx)
	if err == nil {
		return core.ExitSuccess
	}

	log.Error().Err(err).Msg("command failed")
	return exitCode(ctx, err)
}

// exitCode maps a command failure to the process exit status
func exitCode(ctx context.Context, err error) int {
	switch {
	case errors.Is(err, helpers.ErrCommandNotFound):
		return core.ExitCommandNotFound
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return core.ExitInterrupted
	default:
		return core.ExitCode(err)
	}
}
