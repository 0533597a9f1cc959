package forwarded

import (
	"os"
	"strconv"
	"strings"
)

const (
	// EnvTrustedProxyDepth holds a positive integer selecting the depth policy.
	EnvTrustedProxyDepth = "TRUSTED_PROXY_DEPTH"
	// EnvTrustedProxyList holds a comma-separated list of proxy identities
	// selecting the allowlist policy.
	EnvTrustedProxyList = "TRUSTED_PROXY_LIST"
)

// FromEnv reads the trust policy from the process environment.
//
// See FromLookup for the accepted format.
func FromEnv() Option {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the trust policy through lookup, which has the signature of
// os.LookupEnv.
//
// TRUSTED_PROXY_DEPTH must be a positive integer. TRUSTED_PROXY_LIST is a
// comma-separated list of identities; surrounding whitespace is trimmed and
// blank entries are rejected. Variables that are unset or blank count as
// absent. Exactly one of the two must be present once all options are applied.
func FromLookup(lookup func(string) (string, bool)) Option {
	return func(c *config) error {
		if lookup == nil {
			return &ConfigError{Option: "environment", Err: ErrNoTrustPolicy}
		}

		if raw, ok := lookupNonBlank(lookup, EnvTrustedProxyDepth); ok {
			depth, err := strconv.Atoi(raw)
			if err != nil {
				return &ConfigError{Option: EnvTrustedProxyDepth, Value: raw, Err: ErrInvalidDepth}
			}
			c.trustedDepth = set(depth)
		}

		if raw, ok := lookupNonBlank(lookup, EnvTrustedProxyList); ok {
			ids, err := parseProxyList(raw)
			if err != nil {
				return err
			}
			c.trustedProxies = set(ids)
		}

		return nil
	}
}

func lookupNonBlank(lookup func(string) (string, bool), key string) (string, bool) {
	raw, ok := lookup(key)
	if !ok {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func parseProxyList(raw string) ([]string, error) {
	ids := make([]string, 0, strings.Count(raw, ",")+1)
	for part := range strings.SplitSeq(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			return nil, &ConfigError{Option: EnvTrustedProxyList, Value: raw, Err: ErrInvalidProxyIdentity}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
