package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendError_Is(t *testing.T) {
	cause := errors.New("no such file")
	err := NewError(ErrMetadataUnavailable, "flatpak", "appstream", "org.example.Foo/x86_64/stable", cause)

	assert.ErrorIs(t, err, ErrMetadataUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRefNotFound)

	wrapped := fmt.Errorf("registry: %w", err)
	assert.ErrorIs(t, wrapped, ErrMetadataUnavailable)

	var be *BackendError
	require.ErrorAs(t, wrapped, &be)
	assert.Equal(t, "flatpak", be.Backend)
	assert.Equal(t, "appstream", be.Op)
}

func TestBackendError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BackendError
		expected string
	}{
		{
			name:     "With ref",
			err:      NewError(ErrRefNotFound, "flatpak", "appstream", "org.example.Foo//", nil),
			expected: "flatpak: appstream org.example.Foo//: ref not found",
		},
		{
			name:     "Op only",
			err:      NewError(ErrInstallationUnavailable, "flatpak", "open", "", errors.New("flatpak not found")),
			expected: "flatpak: open: installation unavailable: flatpak not found",
		},
		{
			name:     "Cause already names kind",
			err:      NewError(ErrDecompressionFailed, "flatpak", "appstream", "org.example.Foo/x86_64/stable", fmt.Errorf("%w: gzip: bad header", ErrDecompressionFailed)),
			expected: "flatpak: appstream org.example.Foo/x86_64/stable: decompression failed: gzip: bad header",
		},
		{
			name:     "Bare kind",
			err:      NewError(ErrDecompressionFailed, "", "", "", nil),
			expected: "decompression failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestBackendError_StackTrace(t *testing.T) {
	err := NewError(ErrRefEnumerationFailed, "flatpak", "installed", "", errors.New("boom"))
	assert.NotEmpty(t, err.StackTrace())

	bare := NewError(ErrRefEnumerationFailed, "flatpak", "installed", "", nil)
	assert.Empty(t, bare.StackTrace())
}

func TestKindOf(t *testing.T) {
	assert.Nil(t, KindOf(nil))
	assert.Nil(t, KindOf(errors.New("plain")))
	assert.Equal(t, ErrMetadataParseFailed, KindOf(fmt.Errorf("x: %w", ErrMetadataParseFailed)))
	assert.Equal(t, ErrRefNotFound, KindOf(NewError(ErrRefNotFound, "flatpak", "appstream", "a//", nil)))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"Nil", nil, ExitSuccess},
		{"Plain", errors.New("x"), ExitGeneral},
		{"Installation", ErrInstallationUnavailable, ExitBackendUnavailable},
		{"Remotes", ErrRemoteListingFailed, ExitBackendUnavailable},
		{"Enumeration", ErrRefEnumerationFailed, ExitBackendUnavailable},
		{"NotFound", ErrRefNotFound, ExitNotFound},
		{"Unavailable", ErrMetadataUnavailable, ExitMetadataUnavailable},
		{"Decompression", ErrDecompressionFailed, ExitMetadataInvalid},
		{"Parse", ErrMetadataParseFailed, ExitMetadataInvalid},
		{"Conversion", ErrMetadataConversionFailed, ExitMetadataInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}
