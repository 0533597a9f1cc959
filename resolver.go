package forwarded

import (
	"context"
	"fmt"
	"net/http"
)

// HeaderName is the canonical name of the RFC 7239 header.
const HeaderName = "Forwarded"

// Resolver resolves the originating client address of requests that passed
// through trusted reverse proxies.
//
// Resolver instances are immutable and safe for concurrent reuse. They are
// typically created once at startup.
type Resolver struct {
	config *config
}

// Resolution describes the outcome of resolving one request.
type Resolution struct {
	// Addr is the resolved client address. It equals PeerAddr when nothing
	// beyond the immediate peer could be trusted.
	Addr string
	// PeerAddr is the address of the immediate peer connection, without port.
	PeerAddr string
	// Policy is the trust strategy that produced Addr.
	Policy PolicyKind
	// TrustedHops is the number of hops that were trusted to reach Addr.
	TrustedHops int
	// Chain is the parsed header. It is only set when debug info is enabled.
	Chain Chain
}

// Changed reports whether the resolved address differs from the peer.
func (r Resolution) Changed() bool {
	return r.Addr != r.PeerAddr
}

// New creates a Resolver from one or more Option builders.
//
// Exactly one trust policy must be configured, through TrustedDepth,
// TrustedProxies, WithPolicy or the environment options. Any other
// combination is rejected; there is no default policy.
func New(opts ...Option) (*Resolver, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Resolver{config: cfg}, nil
}

// Policy returns the trust policy applied by r.
func (r *Resolver) Policy() Policy {
	return r.config.policy
}

// Resolve returns the client address for a raw Forwarded header value and the
// immediate peer address. An empty header returns peerAddr unchanged.
func (r *Resolver) Resolve(header, peerAddr string) string {
	var values []string
	if header != "" {
		values = []string{header}
	}

	return r.resolve(context.Background(), values, peerAddr, requestMeta{remoteAddr: peerAddr}).Addr
}

// ResolveChain applies the trust policy to an already parsed chain.
func (r *Resolver) ResolveChain(chain Chain, peerAddr string) string {
	return Resolve(chain, peerAddr, r.config.policy)
}

// ResolveRequest resolves the client address of req from its Forwarded header
// lines and RemoteAddr.
func (r *Resolver) ResolveRequest(req *http.Request) Resolution {
	ctx := requestContext(req)
	if req == nil {
		req = &http.Request{}
	}

	return r.resolve(ctx, req.Header.Values(HeaderName), peerHost(req.RemoteAddr), requestMeta{
		path:       requestPath(req),
		remoteAddr: req.RemoteAddr,
	})
}

// ResolveFrom resolves the client address from framework-agnostic request
// input.
func (r *Resolver) ResolveFrom(input RequestInput) Resolution {
	return r.resolve(requestInputContext(input), headerValues(input.Headers, HeaderName), peerHost(input.RemoteAddr), requestMeta{
		path:       input.Path,
		remoteAddr: input.RemoteAddr,
	})
}

// requestMeta carries request details used only for log attributes.
type requestMeta struct {
	path       string
	remoteAddr string
}

func (r *Resolver) resolve(ctx context.Context, values []string, peerAddr string, meta requestMeta) Resolution {
	policy := r.config.policy
	resolution := Resolution{
		Addr:     peerAddr,
		PeerAddr: peerAddr,
		Policy:   policy.Kind(),
	}

	if len(values) == 0 {
		r.config.metrics.RecordResolution(policy.Kind().String(), ResultNoHeader)
		return resolution
	}

	chain, dropped := parseValues(values)
	if dropped > 0 {
		r.config.metrics.RecordSecurityEvent(securityEventMalformedParameter)
	}

	walk := policy.walk(chain, peerAddr)
	resolution.Addr = walk.addr
	resolution.TrustedHops = walk.trusted
	if r.config.debugMode {
		resolution.Chain = chain
	}

	r.recordStop(ctx, chain, walk, meta)

	result := ResultPeer
	if resolution.Changed() {
		result = ResultResolved
	}
	r.config.metrics.RecordResolution(policy.Kind().String(), result)

	return resolution
}

func (r *Resolver) recordStop(ctx context.Context, chain Chain, walk walkResult, meta requestMeta) {
	switch walk.reason {
	case stopUntrustedHop:
		hop := chain[walk.index]
		r.config.metrics.RecordSecurityEvent(securityEventUntrustedHop)
		r.logSecurityWarning(ctx, meta, securityEventUntrustedHop, "Forwarded chain contains a hop that cannot be attributed to a trusted proxy",
			"hop_index", walk.index,
			"hop_by", hop.By(),
			"last_trusted", walk.addr,
			"trusted_hops", walk.trusted,
		)
	case stopMissingIdentity:
		r.config.metrics.RecordSecurityEvent(securityEventMissingIdentity)
	case stopEmptyWindow:
		if len(chain) > 0 {
			r.config.metrics.RecordSecurityEvent(securityEventEmptyWindow)
		}
	}
}

func (r *Resolver) logSecurityWarning(ctx context.Context, meta requestMeta, event, msg string, attrs ...any) {
	baseAttrs := []any{
		"event", event,
		"policy", r.config.policy.Kind().String(),
		"path", meta.path,
		"remote_addr", meta.remoteAddr,
	}

	baseAttrs = append(baseAttrs, attrs...)
	r.config.logger.WarnContext(ctx, msg, baseAttrs...)
}
