// Package desktop reads the desktop entries applications export for
// launchers.
package desktop

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/appcenter/internal/fsops"
	"github.com/spf13/afero"
)

// MaxEntrySize bounds the desktop files Lookup accepts
const MaxEntrySize = 256 * 1024

// Suffix is the file extension of desktop entries
const Suffix = ".desktop"

// Entry is the [Desktop Entry] group of a desktop file. Localized keys are
// ignored; only the untranslated values are kept.
type Entry struct {
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	GenericName    string   `json:"generic_name,omitempty"`
	Comment        string   `json:"comment,omitempty"`
	Exec           string   `json:"exec,omitempty"`
	Icon           string   `json:"icon,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	Terminal       bool     `json:"terminal,omitempty"`
	NoDisplay      bool     `json:"no_display,omitempty"`
	StartupWMClass string   `json:"startup_wm_class,omitempty"`
}

// Parse parses a .desktop file from a reader
func Parse(r io.Reader) (*Entry, error) {
	de := &Entry{}
	scanner := bufio.NewScanner(r)
	inDesktopEntry := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Section headers; only [Desktop Entry] is read
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		}

		if !inDesktopEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Type":
			de.Type = value
		case "Name":
			de.Name = value
		case "GenericName":
			de.GenericName = value
		case "Comment":
			de.Comment = value
		case "Exec":
			de.Exec = value
		case "Icon":
			de.Icon = value
		case "Categories":
			de.Categories = parseSemicolonList(value)
		case "Keywords":
			de.Keywords = parseSemicolonList(value)
		case "Terminal":
			de.Terminal = value == "true"
		case "NoDisplay":
			de.NoDisplay = value == "true"
		case "StartupWMClass":
			de.StartupWMClass = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan desktop file: %w", err)
	}

	return de, nil
}

// Validate checks if the desktop entry has required fields
func Validate(de *Entry) error {
	if de.Type == "" {
		return fmt.Errorf("Type field is required")
	}
	if de.Name == "" {
		return fmt.Errorf("Name field is required")
	}
	if de.Type == "Application" && de.Exec == "" {
		return fmt.Errorf("Exec field is required")
	}
	return nil
}

// CommandLine returns Exec without field codes such as %U or %f
func (de *Entry) CommandLine() string {
	fields := strings.Fields(de.Exec)
	out := fields[:0]
	for _, f := range fields {
		if len(f) == 2 && f[0] == '%' {
			if f[1] == '%' {
				out = append(out, "%")
			}
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// FileName returns the desktop file name for a desktop id, adding the
// suffix when missing
func FileName(desktopID string) string {
	if strings.HasSuffix(desktopID, Suffix) {
		return desktopID
	}
	return desktopID + Suffix
}

// Lookup reads and parses the desktop entry desktopID from dir
func Lookup(fs afero.Fs, dir, desktopID string) (*Entry, error) {
	name := FileName(desktopID)
	if name == Suffix || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid desktop id %q", desktopID)
	}

	data, err := fsops.ReadFileLimit(fs, filepath.Join(dir, name), MaxEntrySize)
	if err != nil {
		return nil, err
	}

	de, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := Validate(de); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return de, nil
}

// parseSemicolonList parses semicolon-separated list
func parseSemicolonList(value string) []string {
	value = strings.TrimSuffix(value, ";")
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
