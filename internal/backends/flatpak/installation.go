package flatpak

import (
	"context"
	"fmt"

	"github.com/quantmind-br/appcenter/internal/core"
)

// RefKind is the kind of an installed ref
type RefKind string

const (
	KindApp     RefKind = "app"
	KindRuntime RefKind = "runtime"
)

// Remote is a configured remote repository
type Remote struct {
	Name string
	// AppstreamDir is the local AppStream checkout for the default arch.
	// Empty when the remote has not been synced.
	AppstreamDir string
}

// InstalledRef is one deployed ref and the attributes flatpak reports for it.
// Any attribute may be empty.
type InstalledRef struct {
	Kind           RefKind
	Name           string
	Arch           string
	Branch         string
	AppdataName    string
	AppdataSummary string
	AppdataVersion string
	Origin         string
	DeployDir      string

	// Appdata loads the compressed AppStream blob of the ref
	Appdata func(ctx context.Context) ([]byte, error)
}

// LoadAppdata returns the raw compressed AppStream blob of the ref
func (r *InstalledRef) LoadAppdata(ctx context.Context) ([]byte, error) {
	if r.Appdata == nil {
		return nil, fmt.Errorf("%w: no appdata for %s", core.ErrMetadataUnavailable, r.Ref())
	}
	return r.Appdata(ctx)
}

// Ref formats the ref as kind/name/arch/branch
func (r *InstalledRef) Ref() string {
	return fmt.Sprintf("%s/%s/%s/%s", r.Kind, r.Name, r.Arch, r.Branch)
}

// Installation is a read-only view over a flatpak installation. A value is
// obtained per operation through an Opener and must not be shared between
// goroutines.
type Installation interface {
	// ListRemotes returns the configured remotes
	ListRemotes(ctx context.Context) ([]Remote, error)

	// ListInstalledRefsByKind returns the installed refs of one kind in
	// installation order
	ListInstalledRefsByKind(ctx context.Context, kind RefKind) ([]*InstalledRef, error)

	// InstalledRef resolves a single installed ref. Empty arch or branch
	// match any value.
	InstalledRef(ctx context.Context, kind RefKind, name, arch, branch string) (*InstalledRef, error)
}

// Opener opens a fresh installation handle
type Opener func(ctx context.Context) (Installation, error)

// matchRef returns the first ref matching name and the non-empty disambiguators
func matchRef(refs []*InstalledRef, kind RefKind, name, arch, branch string) (*InstalledRef, error) {
	for _, ref := range refs {
		if ref.Kind != kind || ref.Name != name {
			continue
		}
		if arch != "" && ref.Arch != arch {
			continue
		}
		if branch != "" && ref.Branch != branch {
			continue
		}
		return ref, nil
	}
	return nil, fmt.Errorf("%w: %s/%s/%s/%s is not installed", core.ErrRefNotFound, kind, name, arch, branch)
}
