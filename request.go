package forwarded

import (
	"context"
	"net"
	"net/http"
	"strings"
)

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}

	return r.Context()
}

func requestPath(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Path
}

// peerHost returns the host part of a connection's remote address.
//
// Addresses without a port are returned trimmed, with IPv6 brackets removed
// so they compare equal to by values, which lose their brackets when parsed.
func peerHost(remoteAddr string) string {
	remoteAddr = strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}

	return trimMatchedPair(remoteAddr, '[', ']')
}
