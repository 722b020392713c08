package core

import (
	"sort"
	"strings"
)

// Keys written into Package.Extra by the flatpak backend. They are read back
// verbatim when the package is resolved again.
const (
	ExtraArch   = "arch"
	ExtraBranch = "branch"
)

// DefaultIconSize is the display size icons are resolved at
const DefaultIconSize = 128

// Icon is a handle to a renderable icon.
// An empty Path means the icon is only known by name and must be looked up
// through the icon theme by the renderer.
type Icon struct {
	Name string `json:"name"`
	Size int    `json:"size"`
	Path string `json:"path,omitempty"`
}

// Resolved reports whether the icon points at a concrete file
func (i Icon) Resolved() bool {
	return i.Path != ""
}

// Package is the backend-agnostic description of one installed application.
// ID is unique within a backend only; Backend plus ID identifies it globally.
type Package struct {
	ID      string            `json:"id"`
	Backend string            `json:"backend"`
	Icon    Icon              `json:"icon"`
	Name    string            `json:"name"`
	Summary string            `json:"summary"`
	Version string            `json:"version"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// ExtraValue returns the value stored under key, or "" when absent
func (p Package) ExtraValue(key string) string {
	if p.Extra == nil {
		return ""
	}
	return p.Extra[key]
}

// Ref formats the package as id/arch/branch, leaving missing parts empty
func (p Package) Ref() string {
	return strings.Join([]string{p.ID, p.ExtraValue(ExtraArch), p.ExtraValue(ExtraBranch)}, "/")
}

// ExtraKeys returns the extra keys in sorted order
func (p Package) ExtraKeys() []string {
	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Exit codes returned by the CLI
const (
	ExitSuccess             = 0
	ExitGeneral             = 1
	ExitInvalidArgs         = 2
	ExitBackendUnavailable  = 3
	ExitNotFound            = 4
	ExitMetadataUnavailable = 5
	ExitMetadataInvalid     = 6
	ExitCommandNotFound     = 8
	ExitInterrupted         = 130
)
