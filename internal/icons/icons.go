package icons

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/spf13/afero"
)

// fallbackSizes are tried, largest first, when the requested size is missing
var fallbackSizes = []int{512, 256, 128, 96, 64, 48, 32, 24, 16}

var sizeDirRe = regexp.MustCompile(`(\d+)x(\d+)`)

// Resolver looks icons up in hicolor themes below a list of icon roots
type Resolver struct {
	fs    afero.Fs
	roots []string
}

// NewResolver creates a resolver searching roots in order
func NewResolver(fs afero.Fs, roots []string) *Resolver {
	return &Resolver{
		fs:    fs,
		roots: roots,
	}
}

// Roots returns the icon roots in lookup order
func (r *Resolver) Roots() []string {
	return r.roots
}

// Resolve returns an icon handle for name at size. It never fails: when no
// file is found the handle carries only the name and the requested size.
func (r *Resolver) Resolve(name string, size int) core.Icon {
	icon := core.Icon{Name: name, Size: size}
	if name == "" || !validIconName(name) {
		return icon
	}

	for _, candidate := range r.candidates(name, size) {
		if ok, _ := afero.Exists(r.fs, candidate); ok {
			icon.Path = candidate
			return icon
		}
	}

	return icon
}

// candidates lists lookup paths: the exact size in every root, then the
// scalable svg, then the other fixed sizes from largest to smallest.
func (r *Resolver) candidates(name string, size int) []string {
	var out []string
	for _, root := range r.roots {
		out = append(out, sizedPath(root, size, name))
	}
	for _, root := range r.roots {
		out = append(out, filepath.Join(root, "hicolor", "scalable", "apps", name+".svg"))
	}
	for _, s := range fallbackSizes {
		if s == size {
			continue
		}
		for _, root := range r.roots {
			out = append(out, sizedPath(root, s, name))
		}
	}
	return out
}

func sizedPath(root string, size int, name string) string {
	dir := fmt.Sprintf("%dx%d", size, size)
	return filepath.Join(root, "hicolor", dir, "apps", name+".png")
}

// validIconName rejects names that would escape the theme directory
func validIconName(name string) bool {
	return !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

// SizeFromPath extracts the pixel size from a theme path like
// .../48x48/apps/foo.png. Scalable or unknown paths return 0.
func SizeFromPath(iconPath string) int {
	matches := sizeDirRe.FindStringSubmatch(iconPath)
	if len(matches) < 2 {
		return 0
	}
	size, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return size
}
