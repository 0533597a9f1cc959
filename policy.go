package forwarded

import (
	"fmt"
	"strings"
)

// PolicyKind identifies which trust strategy a Policy applies.
type PolicyKind int

const (
	// Start at 1 so that a zero Policy is explicitly invalid.
	//
	// PolicyDepth trusts the nearest N hops unconditionally.
	PolicyDepth PolicyKind = iota + 1
	// PolicyAllowlist trusts only hops whose by identity is allowlisted and
	// matches the party that handed the request on.
	PolicyAllowlist
)

// String returns the canonical text representation of k.
func (k PolicyKind) String() string {
	switch k {
	case PolicyDepth:
		return "depth"
	case PolicyAllowlist:
		return "allowlist"
	default:
		return "unknown"
	}
}

// valid reports whether k is a supported policy kind.
func (k PolicyKind) valid() bool {
	return k == PolicyDepth || k == PolicyAllowlist
}

// Allowlist is a set of trusted proxy identities, compared verbatim against
// the by parameter of each hop.
type Allowlist map[string]struct{}

// NewAllowlist builds an Allowlist from identity tokens.
func NewAllowlist(ids ...string) Allowlist {
	allowlist := make(Allowlist, len(ids))
	for _, id := range ids {
		allowlist[id] = struct{}{}
	}
	return allowlist
}

// Contains reports whether id is allowlisted.
func (a Allowlist) Contains(id string) bool {
	_, ok := a[id]
	return ok
}

// Policy is the trust configuration of a Resolver: either a fixed depth or an
// allowlist of proxy identities, never both.
//
// A Policy is immutable once built and safe for concurrent use.
type Policy struct {
	kind      PolicyKind
	depth     int
	allowlist Allowlist
}

// DepthPolicy returns a Policy trusting the nearest depth hops.
func DepthPolicy(depth int) (Policy, error) {
	if depth < 1 {
		return Policy{}, &ConfigError{
			Option: EnvTrustedProxyDepth,
			Value:  fmt.Sprint(depth),
			Err:    ErrInvalidDepth,
		}
	}

	return Policy{kind: PolicyDepth, depth: depth}, nil
}

// AllowlistPolicy returns a Policy trusting the given proxy identities.
//
// Identities are used verbatim, so they must be written the way proxies
// emit them in by= (for IPv6 without brackets, since the parser strips
// them). An empty list is valid and trusts no hop at all.
func AllowlistPolicy(ids ...string) (Policy, error) {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return Policy{}, &ConfigError{
				Option: EnvTrustedProxyList,
				Value:  id,
				Err:    ErrInvalidProxyIdentity,
			}
		}
	}

	return Policy{kind: PolicyAllowlist, allowlist: NewAllowlist(ids...)}, nil
}

// Kind returns the strategy applied by p.
func (p Policy) Kind() PolicyKind {
	return p.kind
}

// Depth returns the trusted depth, or 0 for allowlist policies.
func (p Policy) Depth() int {
	return p.depth
}

// Trusts reports whether id is an allowlisted proxy identity.
func (p Policy) Trusts(id string) bool {
	return p.allowlist.Contains(id)
}

// String returns a short description of p.
func (p Policy) String() string {
	switch p.kind {
	case PolicyDepth:
		return fmt.Sprintf("depth(%d)", p.depth)
	case PolicyAllowlist:
		return fmt.Sprintf("allowlist(%d)", len(p.allowlist))
	default:
		return "unknown"
	}
}

// Resolve returns the originating client address for chain according to
// policy. An invalid zero Policy trusts nothing and returns peerAddr.
func Resolve(chain Chain, peerAddr string, policy Policy) string {
	return policy.walk(chain, peerAddr).addr
}

// ResolveByDepth trusts the trailing depth hops of chain unconditionally and
// returns the first non-empty for value found in that window, scanning
// oldest first. It returns peerAddr when the window carries no usable for.
func ResolveByDepth(chain Chain, peerAddr string, depth int) string {
	return walkDepth(chain, peerAddr, depth).addr
}

// ResolveByAllowlist walks chain from the hop nearest this process backwards.
// A hop is trusted when its by value equals the last trusted address (the peer
// address to begin with) and is allowlisted; its for value then becomes the
// last trusted address. The walk stops at the first hop lacking by or for, or
// failing either check, and returns the last trusted address.
func ResolveByAllowlist(chain Chain, peerAddr string, allowlist Allowlist) string {
	return walkAllowlist(chain, peerAddr, allowlist).addr
}

// stopReason records why a chain walk ended.
type stopReason int

const (
	stopExhausted stopReason = iota
	stopEmptyWindow
	stopMissingIdentity
	stopUntrustedHop
)

// walkResult is the outcome of a chain walk.
//
// index is the chain index of the hop that ended the walk, or -1 when the
// walk ran off the chain.
type walkResult struct {
	addr    string
	trusted int
	reason  stopReason
	index   int
}

func (p Policy) walk(chain Chain, peerAddr string) walkResult {
	switch p.kind {
	case PolicyDepth:
		return walkDepth(chain, peerAddr, p.depth)
	case PolicyAllowlist:
		return walkAllowlist(chain, peerAddr, p.allowlist)
	default:
		return walkResult{addr: peerAddr, reason: stopEmptyWindow, index: -1}
	}
}

func walkDepth(chain Chain, peerAddr string, depth int) walkResult {
	if depth < 1 || len(chain) == 0 {
		return walkResult{addr: peerAddr, reason: stopEmptyWindow, index: -1}
	}

	start := max(len(chain)-depth, 0)
	window := chain[start:]

	for i, element := range window {
		if forAddr := element.For(); forAddr != "" {
			return walkResult{
				addr:    forAddr,
				trusted: len(window) - i,
				reason:  stopExhausted,
				index:   start + i,
			}
		}
	}

	return walkResult{addr: peerAddr, reason: stopEmptyWindow, index: -1}
}

func walkAllowlist(chain Chain, peerAddr string, allowlist Allowlist) walkResult {
	lastTrusted := peerAddr
	trusted := 0

	for i := len(chain) - 1; i >= 0; i-- {
		element := chain[i]

		by, hasBy := element[ParamBy]
		forAddr, hasFor := element[ParamFor]
		if !hasBy || !hasFor {
			return walkResult{addr: lastTrusted, trusted: trusted, reason: stopMissingIdentity, index: i}
		}

		if by != lastTrusted || !allowlist.Contains(by) {
			return walkResult{addr: lastTrusted, trusted: trusted, reason: stopUntrustedHop, index: i}
		}

		lastTrusted = forAddr
		trusted++
	}

	return walkResult{addr: lastTrusted, trusted: trusted, reason: stopExhausted, index: -1}
}
