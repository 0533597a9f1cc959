package forwarded

import "fmt"

// TrustedDepth trusts the nearest depth proxies unconditionally.
//
// Use it only when exactly depth proxies always sit in front of the
// application; no identity checks are made between hops.
func TrustedDepth(depth int) Option {
	return func(c *config) error {
		c.trustedDepth = set(depth)
		return nil
	}
}

// TrustedProxies trusts only the listed proxy identities, validated hop by hop
// through the by parameter.
func TrustedProxies(ids ...string) Option {
	ids = cloneStrings(ids)
	if ids == nil {
		ids = []string{}
	}

	return func(c *config) error {
		c.trustedProxies = set(cloneStrings(ids))
		return nil
	}
}

// WithPolicy installs a prebuilt trust policy.
func WithPolicy(policy Policy) Option {
	return func(c *config) error {
		switch policy.Kind() {
		case PolicyDepth:
			c.trustedDepth = set(policy.Depth())
		case PolicyAllowlist:
			c.trustedProxies = set(allowlistIDs(policy.allowlist))
		default:
			return fmt.Errorf("invalid trust policy %d (must be PolicyDepth=1 or PolicyAllowlist=2)", policy.Kind())
		}
		return nil
	}
}

// WithLogger sets the logger implementation used for warning events.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics sets a concrete metrics implementation.
//
// If previously configured, a metrics factory is disabled.
func WithMetrics(metrics Metrics) Option {
	return func(c *config) error {
		c.metrics = metrics
		c.metricsFactory = nil
		c.useMetricsFactory = false
		return nil
	}
}

// WithMetricsFactory configures a lazy metrics constructor.
//
// The factory is invoked only for the final winning metrics option after
// option validation succeeds.
func WithMetricsFactory(factory func() (Metrics, error)) Option {
	return func(c *config) error {
		if factory == nil {
			return fmt.Errorf("metrics factory cannot be nil")
		}

		c.metricsFactory = factory
		c.useMetricsFactory = true
		return nil
	}
}

// WithDebugInfo controls whether the parsed chain is included in results.
func WithDebugInfo(enable bool) Option {
	return func(c *config) error {
		c.debugMode = enable
		return nil
	}
}
