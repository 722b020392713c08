// Package metrics holds the Prometheus collectors exported by appcenter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics instruments the AppStream cache
type CacheMetrics struct {
	Hits       prometheus.Counter
	Misses     prometheus.Counter
	Loads      prometheus.Counter
	LoadErrors *prometheus.CounterVec
	Evictions  prometheus.Counter
	Entries    prometheus.Gauge
}

// NewCacheMetrics creates the cache collectors and registers them on reg.
// A nil reg leaves the collectors unregistered.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appcenter_appstream_cache_hits_total",
			Help: "Total number of AppStream cache lookups served from the cache",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appcenter_appstream_cache_misses_total",
			Help: "Total number of AppStream cache lookups that missed",
		}),
		Loads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appcenter_appstream_cache_loads_total",
			Help: "Total number of AppStream documents loaded and parsed",
		}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appcenter_appstream_cache_load_errors_total",
			Help: "Total number of failed AppStream loads by error kind",
		}, []string{"kind"}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appcenter_appstream_cache_evictions_total",
			Help: "Total number of AppStream cache entries evicted",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "appcenter_appstream_cache_entries",
			Help: "Current number of AppStream cache entries",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Loads, m.LoadErrors, m.Evictions, m.Entries)
	}

	return m
}
