package flatpak

import (
	"context"
)

// MockInstallation is a mock implementation of Installation for testing
type MockInstallation struct {
	ListRemotesFunc             func(ctx context.Context) ([]Remote, error)
	ListInstalledRefsByKindFunc func(ctx context.Context, kind RefKind) ([]*InstalledRef, error)
	InstalledRefFunc            func(ctx context.Context, kind RefKind, name, arch, branch string) (*InstalledRef, error)
}

// ListRemotes implements Installation.ListRemotes
func (m *MockInstallation) ListRemotes(ctx context.Context) ([]Remote, error) {
	if m.ListRemotesFunc != nil {
		return m.ListRemotesFunc(ctx)
	}
	return nil, nil
}

// ListInstalledRefsByKind implements Installation.ListInstalledRefsByKind
func (m *MockInstallation) ListInstalledRefsByKind(ctx context.Context, kind RefKind) ([]*InstalledRef, error) {
	if m.ListInstalledRefsByKindFunc != nil {
		return m.ListInstalledRefsByKindFunc(ctx, kind)
	}
	return nil, nil
}

// InstalledRef implements Installation.InstalledRef
func (m *MockInstallation) InstalledRef(ctx context.Context, kind RefKind, name, arch, branch string) (*InstalledRef, error) {
	if m.InstalledRefFunc != nil {
		return m.InstalledRefFunc(ctx, kind, name, arch, branch)
	}
	return matchRef(nil, kind, name, arch, branch)
}
