package security

import (
	"strings"
	"testing"
)

func TestValidateAppID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid reverse dns", id: "org.example.Foo", wantErr: false},
		{name: "valid with dashes in last element", id: "org.example.foo-bar", wantErr: false},
		{name: "valid with underscores", id: "io.github.some_user.App", wantErr: false},
		{name: "valid digits inside element", id: "org.kde.k3b", wantErr: false},
		{name: "empty id", id: "", wantErr: true},
		{name: "two elements only", id: "example.Foo", wantErr: true},
		{name: "element starting with digit", id: "org.7zip.App", wantErr: true},
		{name: "empty element", id: "org..Foo", wantErr: true},
		{name: "path traversal", id: "../../../etc/passwd", wantErr: true},
		{name: "slash", id: "org.example/Foo.App", wantErr: true},
		{name: "spaces", id: "org.example.Foo App", wantErr: true},
		{name: "null byte injection", id: "org.example.Foo\x00", wantErr: true},
		{name: "very long id", id: "org.example." + strings.Repeat("a", 300), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAppID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAppID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArch(t *testing.T) {
	tests := []struct {
		arch    string
		wantErr bool
	}{
		{"", false},
		{"x86_64", false},
		{"aarch64", false},
		{"i386", false},
		{"x86 64", true},
		{"../x86_64", true},
		{"X86_64", true},
	}

	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			err := ValidateArch(tt.arch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArch(%q) error = %v, wantErr %v", tt.arch, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBranch(t *testing.T) {
	tests := []struct {
		branch  string
		wantErr bool
	}{
		{"", false},
		{"stable", false},
		{"beta", false},
		{"23.08", false},
		{"master", false},
		{"-stable", true},
		{".hidden", true},
		{"a..b", true},
		{"stable/../../x", true},
		{strings.Repeat("b", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			err := ValidateBranch(tt.branch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBranch(%q) error = %v, wantErr %v", tt.branch, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRef(t *testing.T) {
	if err := ValidateRef("org.example.Foo", "x86_64", "stable"); err != nil {
		t.Errorf("ValidateRef() unexpected error = %v", err)
	}
	if err := ValidateRef("org.example.Foo", "", ""); err != nil {
		t.Errorf("ValidateRef() unexpected error = %v", err)
	}
	if err := ValidateRef("bad", "x86_64", "stable"); err == nil {
		t.Error("expected error for invalid id")
	}
	if err := ValidateRef("org.example.Foo", "x86/64", "stable"); err == nil {
		t.Error("expected error for invalid arch")
	}
	if err := ValidateRef("org.example.Foo", "x86_64", "../x"); err == nil {
		t.Error("expected error for invalid branch")
	}
}

func TestIsPathWithinDirectory(t *testing.T) {
	tests := []struct {
		name       string
		targetPath string
		basePath   string
		want       bool
		wantErr    bool
	}{
		{
			name:       "path inside base",
			targetPath: "/home/user/.local/share/flatpak/app/org.example.Foo",
			basePath:   "/home/user/.local/share/flatpak",
			want:       true,
		},
		{
			name:       "path equal to base",
			targetPath: "/home/user/.local/share/flatpak",
			basePath:   "/home/user/.local/share/flatpak",
			want:       true,
		},
		{
			name:       "path escaping base",
			targetPath: "/home/user/.local/share/flatpak/app/../../../../etc",
			basePath:   "/home/user/.local/share/flatpak",
			want:       false,
		},
		{
			name:       "sibling directory",
			targetPath: "/home/user/.local/share/flatpak-other",
			basePath:   "/home/user/.local/share/flatpak",
			want:       false,
		},
		{
			name:       "file named with leading dots stays inside",
			targetPath: "/base/..data",
			basePath:   "/base",
			want:       true,
		},
		{
			name:       "relative target",
			targetPath: "app/org.example.Foo",
			basePath:   "/base",
			wantErr:    true,
		},
		{
			name:       "relative base",
			targetPath: "/base/app",
			basePath:   "base",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsPathWithinDirectory(tt.targetPath, tt.basePath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsPathWithinDirectory() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsPathWithinDirectory() = %v, want %v", got, tt.want)
			}
		})
	}
}
