package prometheus

import (
	"errors"
	"fmt"

	"github.com/abczzz13/forwarded"
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	resolutionTotalName = "forwarded_resolution_total"
	securityEventsName  = "forwarded_security_events_total"
)

// PrometheusMetrics is a Prometheus-backed implementation of forwarded.Metrics.
type PrometheusMetrics struct {
	resolutionTotal *prom.CounterVec
	securityEvents  *prom.CounterVec
}

// WithMetrics returns a forwarded option that installs Prometheus-backed
// metrics using prom.DefaultRegisterer.
func WithMetrics() forwarded.Option {
	return withMetricsFactory(New)
}

// WithRegisterer returns a forwarded option that installs Prometheus-backed
// metrics using the provided registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used.
func WithRegisterer(registerer prom.Registerer) forwarded.Option {
	return withMetricsFactory(func() (*PrometheusMetrics, error) {
		return NewWithRegisterer(registerer)
	})
}

// withMetricsFactory adapts a PrometheusMetrics constructor into a lazy
// forwarded.Option, so collectors are only registered once the rest of the
// configuration is valid.
func withMetricsFactory(factory func() (*PrometheusMetrics, error)) forwarded.Option {
	return forwarded.WithMetricsFactory(func() (forwarded.Metrics, error) {
		metrics, err := factory()
		if err != nil {
			return nil, err
		}
		return metrics, nil
	})
}

// New creates PrometheusMetrics and registers its collectors on
// prom.DefaultRegisterer.
func New() (*PrometheusMetrics, error) {
	return NewWithRegisterer(prom.DefaultRegisterer)
}

// NewWithRegisterer creates PrometheusMetrics and registers its collectors on
// the given registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used. If the metrics are
// already registered, existing compatible collectors are reused.
func NewWithRegisterer(registerer prom.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}

	resolutionTotalCollector := prom.NewCounterVec(
		prom.CounterOpts{
			Name: resolutionTotalName,
			Help: "Total number of Forwarded client address resolutions by policy (depth, allowlist) and result (resolved, peer, no_header).",
		},
		[]string{"policy", "result"},
	)
	securityEventsCollector := prom.NewCounterVec(
		prom.CounterOpts{
			Name: securityEventsName,
			Help: "Security-related events during Forwarded chain validation, labeled by event.",
		},
		[]string{"event"},
	)

	resolutionTotal, err := registerCounterVec(registerer, resolutionTotalCollector, resolutionTotalName)
	if err != nil {
		return nil, err
	}

	securityEvents, err := registerCounterVec(registerer, securityEventsCollector, securityEventsName)
	if err != nil {
		return nil, err
	}

	return &PrometheusMetrics{
		resolutionTotal: resolutionTotal,
		securityEvents:  securityEvents,
	}, nil
}

func registerCounterVec(registerer prom.Registerer, collector *prom.CounterVec, metricName string) (*prom.CounterVec, error) {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prom.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(*prom.CounterVec)
			if ok {
				return existing, nil
			}
			return nil, fmt.Errorf("metric %q already registered with incompatible collector type %T", metricName, alreadyRegistered.ExistingCollector)
		}

		return nil, fmt.Errorf("register metric %q: %w", metricName, err)
	}

	return collector, nil
}

// RecordResolution increments forwarded_resolution_total for the provided
// policy and result.
func (m *PrometheusMetrics) RecordResolution(policy, result string) {
	m.resolutionTotal.WithLabelValues(policy, result).Inc()
}

// RecordSecurityEvent increments forwarded_security_events_total for the
// provided event label.
func (m *PrometheusMetrics) RecordSecurityEvent(event string) {
	m.securityEvents.WithLabelValues(event).Inc()
}
