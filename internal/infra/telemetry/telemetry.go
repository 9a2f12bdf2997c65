package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/campusio/intl-office/internal/infra/config"
)

// Provider holds process-level collectors that are not tied to a single
// HTTP route.
type Provider struct {
	statusTransitions *prometheus.CounterVec
	reportsGenerated  *prometheus.CounterVec
}

// Attach registers the collectors with the default registry.
func Attach(cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	namespace := cfg.Telemetry.Namespace
	if namespace == "" {
		namespace = "intl_office"
	}

	transitions := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of workflow status transitions partitioned by entity and target status.",
	}, []string{"entity", "to_status"})

	reports := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_generated_total",
		Help:      "Total number of generated reports partitioned by entity and format.",
	}, []string{"entity", "format"})

	return &Provider{
		statusTransitions: transitions,
		reportsGenerated:  reports,
	}, nil
}

// ObserveTransition increments the transition counter.
func (p *Provider) ObserveTransition(entity, toStatus string) {
	if p == nil || p.statusTransitions == nil {
		return
	}
	p.statusTransitions.WithLabelValues(entity, toStatus).Inc()
}

// ObserveReport increments the report counter.
func (p *Provider) ObserveReport(entity, format string) {
	if p == nil || p.reportsGenerated == nil {
		return
	}
	p.reportsGenerated.WithLabelValues(entity, format).Inc()
}
