package backends

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quantmind-br/appcenter/internal/appstream"
	"github.com/quantmind-br/appcenter/internal/backends/flatpak"
	"github.com/quantmind-br/appcenter/internal/cache"
	"github.com/quantmind-br/appcenter/internal/config"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/quantmind-br/appcenter/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrBackendNotFound is returned when no registered backend has the requested name
var ErrBackendNotFound = errors.New("backend not found")

// Backend interface that all package sources must implement
type Backend interface {
	// Name returns the backend name
	Name() string

	// Installed enumerates the installed applications
	Installed(ctx context.Context) ([]core.Package, error)

	// Appstream resolves the metadata of a package produced by Installed
	Appstream(ctx context.Context, pkg core.Package) (*appstream.Collection, error)

	// AppstreamCache exposes the cache the backend reads through
	AppstreamCache() *cache.AppstreamCache
}

// Registry manages all available backends. Backends share one cache.
type Registry struct {
	backends []Backend
	cache    *cache.AppstreamCache
	logger   *zerolog.Logger
}

// NewRegistry creates a backend registry with every enabled backend.
// Cache metrics are registered on reg when it is not nil.
func NewRegistry(ctx context.Context, cfg *config.Config, log *zerolog.Logger, reg prometheus.Registerer) (*Registry, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	shared := cache.New(cache.Options{
		MaxEntries: cfg.Cache.MaxEntries,
		TTL:        cfg.Cache.TTL,
		Metrics:    metrics.NewCacheMetrics(reg),
		Log:        log,
	})
	registry := NewRegistryWithCache(shared, log)

	if cfg.Flatpak.Enabled {
		fp, err := flatpak.New(ctx, cfg, log, shared)
		if err != nil {
			return nil, err
		}
		registry.Register(fp)
	}

	return registry, nil
}

// NewRegistryWithCache creates an empty registry around an existing cache
func NewRegistryWithCache(shared *cache.AppstreamCache, log *zerolog.Logger) *Registry {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	if shared == nil {
		shared = cache.New(cache.Options{Log: log})
	}
	return &Registry{
		backends: make([]Backend, 0),
		cache:    shared,
		logger:   log,
	}
}

// Register appends a backend. Backends are queried in registration order.
func (r *Registry) Register(b Backend) {
	if b.AppstreamCache() != r.cache {
		r.logger.Warn().
			Str("backend", b.Name()).
			Msg("backend does not use the shared appstream cache")
	}
	r.backends = append(r.backends, b)
}

// Cache returns the shared AppStream cache
func (r *Registry) Cache() *cache.AppstreamCache {
	return r.cache
}

// Installed enumerates the installed packages of every backend, in
// registration order. A failing backend fails the whole call.
func (r *Registry) Installed(ctx context.Context) ([]core.Package, error) {
	var all []core.Package
	for _, b := range r.backends {
		pkgs, err := b.Installed(ctx)
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("backend", b.Name()).
				Msg("listing installed packages failed")
			return nil, wrapBackendErr(b.Name(), "installed", err)
		}
		for i := range pkgs {
			if pkgs[i].Backend == "" {
				pkgs[i].Backend = b.Name()
			}
		}
		all = append(all, pkgs...)
	}

	if all == nil {
		all = []core.Package{}
	}
	return all, nil
}

// Appstream resolves metadata through the backend that produced pkg
func (r *Registry) Appstream(ctx context.Context, pkg core.Package) (*appstream.Collection, error) {
	b, err := r.GetBackend(pkg.Backend)
	if err != nil {
		return nil, err
	}

	coll, err := b.Appstream(ctx, pkg)
	if err != nil {
		return nil, wrapBackendErr(b.Name(), "appstream", err)
	}
	return coll, nil
}

// GetBackend retrieves a backend by name
func (r *Registry) GetBackend(name string) (Backend, error) {
	for _, backend := range r.backends {
		if backend.Name() == name {
			return backend, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
}

// ListBackends returns all registered backend names
func (r *Registry) ListBackends() []string {
	names := make([]string, len(r.backends))
	for i, backend := range r.backends {
		names[i] = backend.Name()
	}
	return names
}

// wrapBackendErr names the backend unless a classified error already does
func wrapBackendErr(name, op string, err error) error {
	var be *core.BackendError
	if errors.As(err, &be) && be.Backend != "" {
		return err
	}
	return fmt.Errorf("%s: %s: %w", name, op, err)
}
