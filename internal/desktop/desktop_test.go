package desktop

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calculatorEntry = `# exported by flatpak
[Desktop Entry]
Name=Calculator
Name[de]=Rechner
Comment=Perform arithmetic
Exec=/usr/bin/flatpak run --branch=stable --arch=x86_64 --command=gnome-calculator org.gnome.Calculator %U
Icon=org.gnome.Calculator
Terminal=false
Type=Application
Categories=GNOME;GTK;Utility;Calculator;
Keywords=calculation;arithmetic;
StartupWMClass=gnome-calculator

[Desktop Action new-window]
Name=New Window
Exec=gnome-calculator --new-window
`

func TestParse(t *testing.T) {
	de, err := Parse(strings.NewReader(calculatorEntry))
	require.NoError(t, err)

	assert.Equal(t, "Application", de.Type)
	assert.Equal(t, "Calculator", de.Name)
	assert.Equal(t, "Perform arithmetic", de.Comment)
	assert.Equal(t, "org.gnome.Calculator", de.Icon)
	assert.Equal(t, []string{"GNOME", "GTK", "Utility", "Calculator"}, de.Categories)
	assert.Equal(t, []string{"calculation", "arithmetic"}, de.Keywords)
	assert.Equal(t, "gnome-calculator", de.StartupWMClass)
	assert.False(t, de.Terminal)
	// action groups do not override the main entry
	assert.Contains(t, de.Exec, "flatpak run")
}

func TestParse_IgnoresKeysOutsideEntry(t *testing.T) {
	de, err := Parse(strings.NewReader("Name=Stray\n[Other]\nName=Other\n"))
	require.NoError(t, err)
	assert.Empty(t, de.Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{"complete", Entry{Type: "Application", Name: "App", Exec: "app"}, false},
		{"link without exec", Entry{Type: "Link", Name: "Docs"}, false},
		{"missing type", Entry{Name: "App", Exec: "app"}, true},
		{"missing name", Entry{Type: "Application", Exec: "app"}, true},
		{"application without exec", Entry{Type: "Application", Name: "App"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.entry)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		exec string
		want string
	}{
		{"app %U", "app"},
		{"app --file %f --name %c", "app --file --name"},
		{"app 100%%", "app 100%%"},
		{"app %% done", "app % done"},
		{"", ""},
	}

	for _, tt := range tests {
		de := &Entry{Exec: tt.exec}
		assert.Equal(t, tt.want, de.CommandLine(), tt.exec)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "org.gnome.Maps.desktop", FileName("org.gnome.Maps"))
	assert.Equal(t, "org.gnome.Maps.desktop", FileName("org.gnome.Maps.desktop"))
}

func TestLookup(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/exports/share/applications"
	require.NoError(t, afero.WriteFile(fs, dir+"/org.gnome.Calculator.desktop", []byte(calculatorEntry), 0644))
	require.NoError(t, afero.WriteFile(fs, dir+"/broken.desktop", []byte("[Desktop Entry]\nType=Application\n"), 0644))

	de, err := Lookup(fs, dir, "org.gnome.Calculator")
	require.NoError(t, err)
	assert.Equal(t, "Calculator", de.Name)

	de, err = Lookup(fs, dir, "org.gnome.Calculator.desktop")
	require.NoError(t, err)
	assert.Equal(t, "Calculator", de.Name)

	_, err = Lookup(fs, dir, "org.gnome.Missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Lookup(fs, dir, "broken")
	assert.Error(t, err)

	_, err = Lookup(fs, dir, "../../etc/passwd")
	assert.Error(t, err)

	_, err = Lookup(fs, dir, "")
	assert.Error(t, err)
}
