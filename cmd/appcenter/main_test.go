package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestRun_Version(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	code := run(context.Background(), []string{"version"})
	assert.Equal(t, core.ExitSuccess, code)
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	code := run(context.Background(), []string{"frobnicate"})
	assert.Equal(t, core.ExitGeneral, code)
}

func TestExitCode(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want int
	}{
		{
			name: "command not found",
			ctx:  context.Background(),
			err:  fmt.Errorf("flatpak: %w", helpers.ErrCommandNotFound),
			want: core.ExitCommandNotFound,
		},
		{
			name: "interrupted",
			ctx:  cancelled,
			err:  errors.New("listing aborted"),
			want: core.ExitInterrupted,
		},
		{
			name: "context canceled",
			ctx:  context.Background(),
			err:  fmt.Errorf("load: %w", context.Canceled),
			want: core.ExitInterrupted,
		},
		{
			name: "classified",
			ctx:  context.Background(),
			err:  core.NewError(core.ErrRefNotFound, "flatpak", "appstream", "org.example.App", nil),
			want: core.ExitNotFound,
		},
		{
			name: "plain",
			ctx:  context.Background(),
			err:  errors.New("boom"),
			want: core.ExitGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.ctx, tt.err))
		})
	}
}
