package forwarded

import (
	"errors"
	"fmt"
)

var (
	ErrNoTrustPolicy = errors.New("no trust policy configured: set exactly one of " + EnvTrustedProxyDepth + " or " + EnvTrustedProxyList)

	ErrConflictingTrustPolicy = errors.New("conflicting trust policies: " + EnvTrustedProxyDepth + " and " + EnvTrustedProxyList + " are mutually exclusive")

	ErrInvalidDepth = errors.New("trusted proxy depth must be an integer >= 1")

	ErrInvalidProxyIdentity = errors.New("trusted proxy identity must be a non-empty string")
)

// ConfigError describes a rejected trust policy setting.
type ConfigError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("%s: %v (value=%q)", e.Option, e.Err, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
