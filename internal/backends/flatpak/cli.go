package flatpak

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	backendbase "github.com/quantmind-br/appcenter/internal/backends/base"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/fsops"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/quantmind-br/appcenter/internal/paths"
	"github.com/quantmind-br/appcenter/internal/security"
	"github.com/spf13/afero"
)

// DefaultCommand is the flatpak binary looked up in PATH
const DefaultCommand = "flatpak"

// MaxAppdataSize caps the compressed AppStream blob read from a deploy dir
const MaxAppdataSize = 16 * 1024 * 1024

// listColumns are requested from `flatpak list`, in this order
var listColumns = []string{"application", "arch", "branch", "name", "description", "version", "origin"}

// appdataDirs are tried in order below <deploy>/files/share
var appdataDirs = []string{
	filepath.Join("app-info", "xmls"),
	filepath.Join("swcatalog", "xml"),
}

// CLIInstallation reads the per-user installation through the flatpak
// command and the deploy tree on disk.
type CLIInstallation struct {
	fs      afero.Fs
	runner  helpers.CommandRunner
	command string
	userDir string
}

// OpenUser opens the per-user installation
func OpenUser(ctx context.Context, fs afero.Fs, runner helpers.CommandRunner, resolver *paths.Resolver, command string) (*CLIInstallation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if command == "" {
		command = DefaultCommand
	}
	if err := runner.RequireCommand(command); err != nil {
		return nil, err
	}

	userDir := resolver.FlatpakUserDir()
	if !filepath.IsAbs(userDir) {
		return nil, fmt.Errorf("flatpak user dir %q is not absolute", userDir)
	}
	if fsops.Exists(fs, userDir) && !fsops.IsDir(fs, userDir) {
		return nil, fmt.Errorf("flatpak user dir %q is not a directory", userDir)
	}

	return &CLIInstallation{
		fs:      fs,
		runner:  runner,
		command: command,
		userDir: userDir,
	}, nil
}

// UserOpener returns an Opener over the dependencies of b
func UserOpener(b *backendbase.BaseBackend) Opener {
	command := DefaultCommand
	if b.Cfg != nil && b.Cfg.Flatpak.Command != "" {
		command = b.Cfg.Flatpak.Command
	}
	return func(ctx context.Context) (Installation, error) {
		return OpenUser(ctx, b.Fs, b.Runner, b.Paths, command)
	}
}

// UserDir returns the installation directory
func (i *CLIInstallation) UserDir() string {
	return i.userDir
}

func (i *CLIInstallation) run(ctx context.Context, args ...string) (string, error) {
	env := []string{paths.FlatpakUserDirEnv + "=" + i.userDir}
	return i.runner.RunCommandEnv(ctx, env, i.command, args...)
}

// DefaultArch returns the architecture flatpak installs by default
func (i *CLIInstallation) DefaultArch(ctx context.Context) (string, error) {
	out, err := i.run(ctx, "--default-arch")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ListRemotes implements Installation.ListRemotes
func (i *CLIInstallation) ListRemotes(ctx context.Context) ([]Remote, error) {
	out, err := i.run(ctx, "--user", "remotes", "--columns=name")
	if err != nil {
		return nil, err
	}

	// A missing default arch only hides the appstream dirs.
	arch, _ := i.DefaultArch(ctx)

	var remotes []Remote
	for _, line := range splitLines(out) {
		name := strings.TrimSpace(line)
		if name == "" || strings.EqualFold(name, "name") {
			continue
		}
		remotes = append(remotes, Remote{
			Name:         name,
			AppstreamDir: i.appstreamDir(name, arch),
		})
	}
	return remotes, nil
}

func (i *CLIInstallation) appstreamDir(remote, arch string) string {
	if arch == "" || security.ValidateArch(arch) != nil || strings.ContainsAny(remote, `/\`) {
		return ""
	}
	dir := filepath.Join(i.userDir, "appstream", remote, arch, "active")
	if !fsops.IsDir(i.fs, dir) {
		return ""
	}
	return dir
}

// ListInstalledRefsByKind implements Installation.ListInstalledRefsByKind
func (i *CLIInstallation) ListInstalledRefsByKind(ctx context.Context, kind RefKind) ([]*InstalledRef, error) {
	if kind != KindApp && kind != KindRuntime {
		return nil, fmt.Errorf("unsupported ref kind %q", kind)
	}

	out, err := i.run(ctx, "--user", "list", "--"+string(kind), "--columns="+strings.Join(listColumns, ","))
	if err != nil {
		return nil, err
	}

	var refs []*InstalledRef
	for _, line := range splitLines(out) {
		ref, ok := i.parseListLine(kind, line)
		if !ok {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// InstalledRef implements Installation.InstalledRef
func (i *CLIInstallation) InstalledRef(ctx context.Context, kind RefKind, name, arch, branch string) (*InstalledRef, error) {
	if err := security.ValidateRef(name, arch, branch); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrRefNotFound, err)
	}

	refs, err := i.ListInstalledRefsByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	return matchRef(refs, kind, name, arch, branch)
}

// parseListLine converts one tab separated `flatpak list` row
func (i *CLIInstallation) parseListLine(kind RefKind, line string) (*InstalledRef, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	fields := strings.Split(line, "\t")
	for len(fields) < len(listColumns) {
		fields = append(fields, "")
	}
	for n := range fields {
		fields[n] = strings.TrimSpace(fields[n])
	}

	// header row when stdout is a terminal
	if fields[0] == "Application ID" || fields[0] == "Application" {
		return nil, false
	}

	ref := &InstalledRef{
		Kind:           kind,
		Name:           fields[0],
		Arch:           fields[1],
		Branch:         fields[2],
		AppdataName:    fields[3],
		AppdataSummary: fields[4],
		AppdataVersion: fields[5],
		Origin:         fields[6],
	}

	if ref.Name != "" && security.ValidateRef(ref.Name, ref.Arch, ref.Branch) == nil && ref.Arch != "" && ref.Branch != "" {
		ref.DeployDir = filepath.Join(i.userDir, string(kind), ref.Name, ref.Arch, ref.Branch, "active")
		ref.Appdata = i.appdataLoader(ref)
	}
	return ref, true
}

func (i *CLIInstallation) appdataLoader(ref *InstalledRef) func(context.Context) ([]byte, error) {
	deployDir := ref.DeployDir
	name := ref.Name
	return func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, dir := range appdataDirs {
			path := filepath.Join(deployDir, "files", "share", dir, name+".xml.gz")
			if ok, _ := security.IsPathWithinDirectory(path, i.userDir); !ok {
				return nil, fmt.Errorf("%w: %s escapes %s", core.ErrMetadataUnavailable, path, i.userDir)
			}

			data, err := fsops.ReadFileLimit(i.fs, path, MaxAppdataSize)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %w", core.ErrMetadataUnavailable, err)
			}
			return data, nil
		}
		return nil, fmt.Errorf("%w: no appdata in %s", core.ErrMetadataUnavailable, deployDir)
	}
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
