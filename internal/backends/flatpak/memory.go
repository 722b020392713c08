package flatpak

import (
	"context"
)

// MemoryInstallation is an Installation backed by in-memory data. It is used
// by tests and by callers embedding a fixed set of refs.
type MemoryInstallation struct {
	Remotes []Remote
	Refs    []*InstalledRef
}

// Opener returns an Opener that always yields m
func (m *MemoryInstallation) Opener() Opener {
	return func(context.Context) (Installation, error) {
		return m, nil
	}
}

// ListRemotes implements Installation.ListRemotes
func (m *MemoryInstallation) ListRemotes(context.Context) ([]Remote, error) {
	return append([]Remote(nil), m.Remotes...), nil
}

// ListInstalledRefsByKind implements Installation.ListInstalledRefsByKind
func (m *MemoryInstallation) ListInstalledRefsByKind(_ context.Context, kind RefKind) ([]*InstalledRef, error) {
	var refs []*InstalledRef
	for _, ref := range m.Refs {
		if ref.Kind == kind {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// InstalledRef implements Installation.InstalledRef
func (m *MemoryInstallation) InstalledRef(_ context.Context, kind RefKind, name, arch, branch string) (*InstalledRef, error) {
	return matchRef(m.Refs, kind, name, arch, branch)
}
