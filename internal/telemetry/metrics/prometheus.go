package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewRegistry returns the registry served on /metrics: build info, Go runtime
// and process collectors plus the given ones, e.g. the pgx pool collector.
// A collector that clashes with an already registered one is an error.
func NewRegistry(extraCollectors ...prometheus.Collector) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	base := []prometheus.Collector{
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range append(base, extraCollectors...) {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return registry, nil
}
