package base

import (
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/quantmind-br/appcenter/internal/icons"
	"github.com/quantmind-br/appcenter/internal/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// BaseBackend contém dependências comuns a todos os backends.
// Ele não implementa a interface Backend; é embedado pelos backends concretos.
//
//nolint:revive // exported name is kept for clarity across internal packages.
type BaseBackend struct {
	Fs     afero.Fs
	Runner helpers.CommandRunner
	Paths  *paths.Resolver
	Icons  *icons.Resolver
	Log    *zerolog.Logger
	Cfg    *config.Config
}

// New cria BaseBackend com dependências padrão do sistema.
func New(cfg *config.Config, log *zerolog.Logger) *BaseBackend {
	return NewWithDeps(cfg, log, afero.NewOsFs(), helpers.NewOSCommandRunner())
}

// NewWithDeps cria BaseBackend com dependências injetadas (para testes).
func NewWithDeps(cfg *config.Config, log *zerolog.Logger, fs afero.Fs, runner helpers.CommandRunner) *BaseBackend {
	return NewWithPaths(cfg, log, fs, runner, paths.NewResolver(cfg))
}

// NewWithPaths cria BaseBackend com um Resolver explícito.
func NewWithPaths(cfg *config.Config, log *zerolog.Logger, fs afero.Fs, runner helpers.CommandRunner, resolver *paths.Resolver) *BaseBackend {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &BaseBackend{
		Fs:     fs,
		Runner: runner,
		Paths:  resolver,
		Icons:  icons.NewResolver(fs, resolver.IconThemeDirs()),
		Log:    log,
		Cfg:    cfg,
	}
}

// IconSize retorna o tamanho de exibição configurado para ícones.
func (b *BaseBackend) IconSize() int {
	if b.Cfg != nil && b.Cfg.Flatpak.IconSize > 0 {
		return b.Cfg.Flatpak.IconSize
	}
	return core.DefaultIconSize
}
