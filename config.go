package forwarded

import (
	"fmt"
	"maps"
	"slices"
)

// Option configures a Resolver.
//
// Construct options using package-provided option builder functions.
type Option func(*config) error

// setValue represents an optional setting that records whether it was
// explicitly provided, so that "unset" and "zero" stay distinguishable.
type setValue[T any] struct {
	v   T
	set bool
}

// set marks a value as explicitly provided.
func set[T any](value T) setValue[T] {
	return setValue[T]{v: value, set: true}
}

// isSet reports whether a value was explicitly provided.
func (s setValue[T]) isSet() bool {
	return s.set
}

// value returns the stored value.
func (s setValue[T]) value() T {
	return s.v
}

// config holds resolver configuration state.
//
// It is mutated by Option functions during construction only.
type config struct {
	trustedDepth   setValue[int]
	trustedProxies setValue[[]string]

	policy Policy

	debugMode bool

	logger  Logger
	metrics Metrics

	metricsFactory    func() (Metrics, error)
	useMetricsFactory bool
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

// allowlistIDs returns the identities of an allowlist in a stable order.
func allowlistIDs(allowlist Allowlist) []string {
	return slices.Sorted(maps.Keys(allowlist))
}

func defaultConfig() *config {
	return &config{
		debugMode: false,
		logger:    noopLogger{},
		metrics:   noopMetrics{},
	}
}

func applyOptions(c *config, opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			return fmt.Errorf("option cannot be nil")
		}
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

func configFromOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()

	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory && cfg.metricsFactory == nil {
		return nil, fmt.Errorf("metrics factory cannot be nil")
	}

	validationConfig := cfg
	if cfg.useMetricsFactory {
		validationConfig = cfg.clone()
		validationConfig.metrics = noopMetrics{}
	}

	policy, err := validationConfig.validate()
	if err != nil {
		return nil, err
	}
	cfg.policy = policy

	if cfg.useMetricsFactory {
		metrics, err := cfg.metricsFactory()
		if err != nil {
			return nil, err
		}
		cfg.metrics = metrics

		if _, err := cfg.validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *config) clone() *config {
	return &config{
		trustedDepth:      c.trustedDepth,
		trustedProxies:    setValue[[]string]{v: cloneStrings(c.trustedProxies.value()), set: c.trustedProxies.isSet()},
		policy:            c.policy,
		debugMode:         c.debugMode,
		logger:            c.logger,
		metrics:           c.metrics,
		metricsFactory:    c.metricsFactory,
		useMetricsFactory: c.useMetricsFactory,
	}
}
