package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/quantmind-br/appcenter/internal/backends"
	backendbase "github.com/quantmind-br/appcenter/internal/backends/base"
	"github.com/quantmind-br/appcenter/internal/backends/flatpak"
	"github.com/quantmind-br/appcenter/internal/cache"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/quantmind-br/appcenter/internal/metrics"
	"github.com/quantmind-br/appcenter/internal/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testHome = "/home/test"

func appdataBlob(t *testing.T, id, name, summary string) []byte {
	t.Helper()
	doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<components version="0.14" origin="flathub">
  <component type="desktop-application">
    <id>%s</id>
    <name>%s</name>
    <summary>%s</summary>
    <developer_name>Example Devs</developer_name>
    <project_license>GPL-3.0-or-later</project_license>
    <url type="homepage">https://example.org/%s</url>
    <description><p>Does useful things.</p></description>
    <categories><category>Utility</category></categories>
    <releases><release version="2.0" date="2024-05-01"/></releases>
  </component>
</components>`, id, name, summary, name)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func appRef(t *testing.T, id, name, branch string) *flatpak.InstalledRef {
	t.Helper()
	blob := appdataBlob(t, id, name, name+" summary")
	return &flatpak.InstalledRef{
		Kind:           flatpak.KindApp,
		Name:           id,
		Arch:           "x86_64",
		Branch:         branch,
		AppdataName:    name,
		AppdataSummary: name + " summary",
		AppdataVersion: "2.0",
		Origin:         "flathub",
		Appdata: func(context.Context) ([]byte, error) {
			return blob, nil
		},
	}
}

func testInstallation(t *testing.T) *flatpak.MemoryInstallation {
	t.Helper()
	return &flatpak.MemoryInstallation{
		Remotes: []flatpak.Remote{
			{Name: "flathub", AppstreamDir: testHome + "/.local/share/flatpak/appstream/flathub/x86_64/active"},
			{Name: "fresh"},
		},
		Refs: []*flatpak.InstalledRef{
			appRef(t, "org.gnome.Calculator", "Calculator", "stable"),
			appRef(t, "org.gnome.Maps", "Maps", "stable"),
			appRef(t, "org.gnome.Maps", "Maps", "beta"),
			{Kind: flatpak.KindApp, Name: "org.example.NoData", Arch: "x86_64", Branch: "stable"},
			{Kind: flatpak.KindRuntime, Name: "org.gnome.Platform", Arch: "x86_64", Branch: "46"},
		},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Paths.DataDir = testHome + "/.local/share/appcenter"
	cfg.Paths.LogFile = testHome + "/.local/share/appcenter/appcenter.log"
	cfg.Cache.WarmWorkers = 2
	return cfg
}

// testDeps wires commands to an in-memory installation
func testDeps(t *testing.T, inst *flatpak.MemoryInstallation) *Deps {
	t.Helper()

	cfg := testConfig()
	nop := zerolog.Nop()
	fs := afero.NewMemMapFs()
	runner := &helpers.MockCommandRunner{
		LookPathFunc: func(name string) (string, error) {
			return "/usr/bin/" + name, nil
		},
	}
	resolver := paths.NewResolverWithHome(cfg, testHome).WithEnv(func(string) string { return "" })
	reg := prometheus.NewRegistry()

	shared := cache.New(cache.Options{MaxEntries: 16, Metrics: metrics.NewCacheMetrics(reg)})
	var registry *backends.Registry

	return &Deps{
		Registry: func(ctx context.Context) (*backends.Registry, error) {
			if registry != nil {
				return registry, nil
			}
			base := backendbase.NewWithPaths(cfg, &nop, fs, runner, resolver)
			fp, err := flatpak.NewWithOpener(ctx, base, inst.Opener(), shared)
			if err != nil {
				return nil, err
			}
			registry = backends.NewRegistryWithCache(shared, &nop)
			registry.Register(fp)
			return registry, nil
		},
		Metrics: reg,
		Runner:  runner,
		Fs:      fs,
		Paths:   resolver,
	}
}

func failingDeps(t *testing.T, err error) *Deps {
	t.Helper()
	deps := testDeps(t, &flatpak.MemoryInstallation{})
	deps.Registry = func(context.Context) (*backends.Registry, error) {
		return nil, err
	}
	return deps
}

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
