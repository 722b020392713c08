package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/appcenter/internal/config"
)

// FlatpakUserDirEnv overrides the per-user flatpak installation directory.
const FlatpakUserDirEnv = "FLATPAK_USER_DIR"

// Resolver centraliza caminhos padrão do appcenter.
// Ele calcula diretórios base a partir de HOME, das variáveis XDG e da configuração.
type Resolver struct {
	homeDir string
	cfg     *config.Config
	getenv  func(string) string
}

// NewResolver cria um Resolver usando o HOME do usuário atual.
func NewResolver(cfg *config.Config) *Resolver {
	homeDir, _ := os.UserHomeDir()
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
		getenv:  os.Getenv,
	}
}

// NewResolverWithHome cria um Resolver com homeDir explícito (útil para testes).
func NewResolverWithHome(cfg *config.Config, homeDir string) *Resolver {
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
		getenv:  os.Getenv,
	}
}

// WithEnv replaces the environment lookup, mostly for tests.
func (r *Resolver) WithEnv(getenv func(string) string) *Resolver {
	r.getenv = getenv
	return r
}

// HomeDir retorna o diretório HOME resolvido.
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// DataHome returns $XDG_DATA_HOME, or ~/.local/share when unset or relative.
func (r *Resolver) DataHome() string {
	if dir := r.getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(r.homeDir, ".local", "share")
}

// DataDirs returns $XDG_DATA_DIRS, defaulting to /usr/local/share and /usr/share.
func (r *Resolver) DataDirs() []string {
	var dirs []string
	for _, dir := range strings.Split(r.getenv("XDG_DATA_DIRS"), ":") {
		if filepath.IsAbs(dir) {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{"/usr/local/share", "/usr/share"}
	}
	return dirs
}

// ConfigDir retorna ~/.config/appcenter (respeitando XDG_CONFIG_HOME).
func (r *Resolver) ConfigDir() string {
	base := r.getenv("XDG_CONFIG_HOME")
	if !filepath.IsAbs(base) {
		base = filepath.Join(r.homeDir, ".config")
	}
	return filepath.Join(base, "appcenter")
}

// DataDir retorna o diretório de dados do appcenter.
// Por padrão: ~/.local/share/appcenter, respeitando cfg.Paths.DataDir se definido.
func (r *Resolver) DataDir() string {
	if r.cfg != nil && r.cfg.Paths.DataDir != "" {
		return r.cfg.Paths.DataDir
	}
	return filepath.Join(r.DataHome(), "appcenter")
}

// FlatpakUserDir returns the per-user flatpak installation directory.
// Precedence: $FLATPAK_USER_DIR, cfg.Flatpak.UserDir, $XDG_DATA_HOME/flatpak.
func (r *Resolver) FlatpakUserDir() string {
	if dir := r.getenv(FlatpakUserDirEnv); dir != "" {
		return dir
	}
	if r.cfg != nil && r.cfg.Flatpak.UserDir != "" {
		return r.cfg.Flatpak.UserDir
	}
	return filepath.Join(r.DataHome(), "flatpak")
}

// FlatpakExportsDir retorna <userdir>/exports/share.
func (r *Resolver) FlatpakExportsDir() string {
	return filepath.Join(r.FlatpakUserDir(), "exports", "share")
}

// IconThemeDirs returns the icon theme roots in lookup order: flatpak
// exports first, then the user data home, then the system data dirs.
func (r *Resolver) IconThemeDirs() []string {
	dirs := []string{
		filepath.Join(r.FlatpakExportsDir(), "icons"),
		filepath.Join(r.DataHome(), "icons"),
	}
	for _, dir := range r.DataDirs() {
		dirs = append(dirs, filepath.Join(dir, "icons"))
	}
	return dirs
}
