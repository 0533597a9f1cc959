// Package forwarded resolves the originating client address of HTTP requests
// from the RFC 7239 Forwarded header, validating the proxy chain against an
// operator-configured trust policy instead of trusting the outermost for=
// value, which any client can spoof.
//
// # Features
//
//   - Lenient header parsing that never fails: malformed parameters are dropped
//   - Two trust policies, chosen once at construction: fixed depth or allowlist
//   - Allowlist validation walks the chain hop by hop from the real peer
//   - Strict configuration: exactly one policy, no silent default
//   - Middleware for net/http compatible routers
//   - Optional observability with context-aware logging and pluggable metrics
//
// # Parsing
//
// Parse splits a header into a Chain of Elements, oldest hop first:
//
//	chain := forwarded.Parse(`for="[2001:db8::1]";by=10.0.0.1, for=10.0.0.1;by=10.0.0.2`)
//	chain[0].For() // "2001:db8::1"
//
// # Depth Policy
//
// When exactly N proxies always sit in front of the application, trust the
// nearest N hops:
//
//	resolver, err := forwarded.New(forwarded.TrustedDepth(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	addr := resolver.Resolve("for=192.0.2.60;proto=https", "10.0.0.1")
//
// # Allowlist Policy
//
// Trust only hops whose by identity matches the party that handed the request
// on and is allowlisted:
//
//	resolver, err := forwarded.New(forwarded.TrustedProxies("10.0.0.1", "10.0.0.2"))
//
// The walk starts at the peer connection and stops at the first hop that does
// not check out. The for value of that hop is never used.
//
// # Environment
//
// FromEnv reads TRUSTED_PROXY_DEPTH or TRUSTED_PROXY_LIST (comma-separated).
// Setting neither or both is a configuration error.
//
// # Middleware
//
//	router.Use(resolver.Middleware)
//
// Middleware replaces Request.RemoteAddr with the resolved address and stores
// the Resolution in the request context (see FromContext).
//
// # Observability
//
// (Prometheus adapter package: github.com/abczzz13/forwarded/prometheus)
// The logger receives the request context, allowing trace/span IDs to flow
// through.
//
//	resolver, err := forwarded.New(
//	    forwarded.FromEnv(),
//	    forwarded.WithLogger(slog.Default()),
//	    forwardedprom.WithMetrics(),
//	)
//
// # Thread Safety
//
// Resolver and Policy values are immutable after construction and safe for
// concurrent use.
package forwarded
