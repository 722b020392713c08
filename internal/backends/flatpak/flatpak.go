package flatpak

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantmind-br/appcenter/internal/appstream"
	backendbase "github.com/quantmind-br/appcenter/internal/backends/base"
	"github.com/quantmind-br/appcenter/internal/cache"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/quantmind-br/appcenter/internal/security"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// BackendName identifies packages produced by this backend
const BackendName = "flatpak"

// FlatpakBackend lists applications of the per-user flatpak installation and
// resolves their AppStream metadata. It never keeps an installation handle:
// every operation opens its own.
//
//nolint:revive // exported backend names are kept for consistency across packages.
type FlatpakBackend struct {
	*backendbase.BaseBackend
	open  Opener
	cache *cache.AppstreamCache
}

// New creates a flatpak backend over the system command and filesystem
func New(ctx context.Context, cfg *config.Config, log *zerolog.Logger, shared *cache.AppstreamCache) (*FlatpakBackend, error) {
	return NewWithDeps(ctx, cfg, log, afero.NewOsFs(), helpers.NewOSCommandRunner(), shared)
}

// NewWithDeps creates a flatpak backend with injected fs and runner
func NewWithDeps(ctx context.Context, cfg *config.Config, log *zerolog.Logger, fs afero.Fs, runner helpers.CommandRunner, shared *cache.AppstreamCache) (*FlatpakBackend, error) {
	base := backendbase.NewWithDeps(cfg, log, fs, runner)
	return NewWithOpener(ctx, base, UserOpener(base), shared)
}

// NewWithOpener creates a flatpak backend reading installations from open.
// The installation is opened once to log the configured remotes. They are
// logged without a level so they show regardless of the console level. A nil
// shared cache is replaced by a private one sized from the configuration.
func NewWithOpener(ctx context.Context, base *backendbase.BaseBackend, open Opener, shared *cache.AppstreamCache) (*FlatpakBackend, error) {
	b := &FlatpakBackend{
		BaseBackend: base,
		open:        open,
	}

	remotes, err := b.Remotes(ctx)
	if err != nil {
		return nil, err
	}
	for _, remote := range remotes {
		b.Log.Log().
			Str("remote", remote.Name).
			Str("appstream_dir", remote.AppstreamDir).
			Msg("flatpak remote")
	}

	if shared == nil {
		opts := cache.Options{Log: base.Log}
		if base.Cfg != nil {
			opts.MaxEntries = base.Cfg.Cache.MaxEntries
			opts.TTL = base.Cfg.Cache.TTL
		}
		shared = cache.New(opts)
	}
	b.cache = shared

	return b, nil
}

// Name returns the backend name
func (b *FlatpakBackend) Name() string {
	return BackendName
}

// AppstreamCache returns the cache shared with other backends
func (b *FlatpakBackend) AppstreamCache() *cache.AppstreamCache {
	return b.cache
}

func (b *FlatpakBackend) openInstallation(ctx context.Context, op, ref string) (Installation, error) {
	inst, err := b.open(ctx)
	if err != nil {
		return nil, core.NewError(core.ErrInstallationUnavailable, BackendName, op, ref, err)
	}
	return inst, nil
}

// Remotes lists the configured remotes
func (b *FlatpakBackend) Remotes(ctx context.Context) ([]Remote, error) {
	inst, err := b.openInstallation(ctx, "remotes", "")
	if err != nil {
		return nil, err
	}

	remotes, err := inst.ListRemotes(ctx)
	if err != nil {
		return nil, core.NewError(core.ErrRemoteListingFailed, BackendName, "remotes", "", err)
	}
	return remotes, nil
}

// Installed enumerates installed applications in installation order.
// Runtimes and refs without a name are skipped.
func (b *FlatpakBackend) Installed(ctx context.Context) ([]core.Package, error) {
	inst, err := b.openInstallation(ctx, "installed", "")
	if err != nil {
		return nil, err
	}

	refs, err := inst.ListInstalledRefsByKind(ctx, KindApp)
	if err != nil {
		return nil, core.NewError(core.ErrRefEnumerationFailed, BackendName, "installed", "", err)
	}

	pkgs := make([]core.Package, 0, len(refs))
	for _, ref := range refs {
		if ref == nil || ref.Kind != KindApp || ref.Name == "" {
			continue
		}
		pkgs = append(pkgs, b.toPackage(ref))
	}

	b.Log.Debug().
		Int("refs", len(refs)).
		Int("packages", len(pkgs)).
		Msg("listed installed flatpak applications")

	return pkgs, nil
}

func (b *FlatpakBackend) toPackage(ref *InstalledRef) core.Package {
	extra := make(map[string]string, 2)
	if ref.Arch != "" {
		extra[core.ExtraArch] = ref.Arch
	}
	if ref.Branch != "" {
		extra[core.ExtraBranch] = ref.Branch
	}

	name := ref.AppdataName
	if name == "" {
		name = ref.Name
	}

	return core.Package{
		ID:      ref.Name,
		Backend: BackendName,
		Icon:    b.Icons.Resolve(ref.Name, b.IconSize()),
		Name:    name,
		Summary: ref.AppdataSummary,
		Version: ref.AppdataVersion,
		Extra:   extra,
	}
}

// Appstream returns the parsed AppStream metadata of pkg. The result is
// cached by id, arch and branch; concurrent calls for the same package
// parse the document once.
func (b *FlatpakBackend) Appstream(ctx context.Context, pkg core.Package) (*appstream.Collection, error) {
	if pkg.Backend != "" && pkg.Backend != BackendName {
		return nil, core.NewError(core.ErrRefNotFound, BackendName, "appstream", pkg.Ref(),
			fmt.Errorf("package belongs to backend %q", pkg.Backend))
	}

	// invalid identifiers never reach the cache
	if err := security.ValidateRef(pkg.ID, pkg.ExtraValue(core.ExtraArch), pkg.ExtraValue(core.ExtraBranch)); err != nil {
		return nil, core.NewError(core.ErrRefNotFound, BackendName, "appstream", pkg.Ref(), err)
	}

	key := cache.KeyFor(BackendName, pkg)
	return b.cache.GetOrLoad(ctx, key, func(loadCtx context.Context) (*appstream.Collection, error) {
		return b.loadAppstream(loadCtx, pkg)
	})
}

func (b *FlatpakBackend) loadAppstream(ctx context.Context, pkg core.Package) (*appstream.Collection, error) {
	arch := pkg.ExtraValue(core.ExtraArch)
	branch := pkg.ExtraValue(core.ExtraBranch)
	refStr := pkg.Ref()

	inst, err := b.openInstallation(ctx, "appstream", refStr)
	if err != nil {
		return nil, err
	}

	ref, err := inst.InstalledRef(ctx, KindApp, pkg.ID, arch, branch)
	if err != nil {
		return nil, core.NewError(refLookupKind(err), BackendName, "appstream", refStr, err)
	}

	blob, err := ref.LoadAppdata(ctx)
	if err != nil {
		return nil, core.NewError(core.ErrMetadataUnavailable, BackendName, "appstream", refStr, err)
	}

	coll, err := appstream.Load(blob)
	if err != nil {
		kind := core.KindOf(err)
		if kind == nil {
			kind = core.ErrMetadataConversionFailed
		}
		return nil, core.NewError(kind, BackendName, "appstream", refStr, err)
	}

	b.Log.Debug().
		Str("ref", ref.Ref()).
		Int("components", coll.Len()).
		Msg("loaded appstream metadata")

	return coll, nil
}

// refLookupKind classifies an InstalledRef failure. Only an explicit miss
// is RefNotFound; a failed enumeration or cancellation is not.
func refLookupKind(err error) error {
	if errors.Is(err, core.ErrRefNotFound) {
		return core.ErrRefNotFound
	}
	return core.ErrRefEnumerationFailed
}
