package forwarded

import (
	"fmt"
	"reflect"
)

// validate checks the configuration and builds the trust policy it selects.
func (c *config) validate() (Policy, error) {
	policy, err := c.trustPolicy()
	if err != nil {
		return Policy{}, err
	}

	if isNilLogger(c.logger) {
		return Policy{}, fmt.Errorf("logger cannot be nil")
	}
	if isNilMetrics(c.metrics) {
		return Policy{}, fmt.Errorf("metrics cannot be nil")
	}
	return policy, nil
}

// trustPolicy requires exactly one trust policy and never falls back to a
// default one.
func (c *config) trustPolicy() (Policy, error) {
	hasDepth := c.trustedDepth.isSet()
	hasList := c.trustedProxies.isSet()

	switch {
	case hasDepth && hasList:
		return Policy{}, &ConfigError{Option: "trust policy", Err: ErrConflictingTrustPolicy}
	case hasDepth:
		return DepthPolicy(c.trustedDepth.value())
	case hasList:
		return AllowlistPolicy(c.trustedProxies.value()...)
	default:
		return Policy{}, &ConfigError{Option: "trust policy", Err: ErrNoTrustPolicy}
	}
}

func isNilLogger(logger Logger) bool {
	return isNilInterface(logger)
}

func isNilMetrics(metrics Metrics) bool {
	return isNilInterface(metrics)
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
