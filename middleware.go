package forwarded

import (
	"context"
	"net/http"
)

type resolutionContextKey struct{}

// NewContext returns a copy of ctx carrying resolution.
func NewContext(ctx context.Context, resolution Resolution) context.Context {
	return context.WithValue(ctx, resolutionContextKey{}, resolution)
}

// FromContext returns the Resolution stored by Middleware, if any.
func FromContext(ctx context.Context) (Resolution, bool) {
	resolution, ok := ctx.Value(resolutionContextKey{}).(Resolution)
	return resolution, ok
}

// Middleware resolves the client address of every request and hands a copy
// of the request to next.
//
// When the resolved address differs from the peer, it replaces RemoteAddr;
// otherwise RemoteAddr keeps its original host:port form. The Resolution is
// available downstream through FromContext. Middleware never writes a
// response itself.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resolution := r.ResolveRequest(req)

		req = req.WithContext(NewContext(req.Context(), resolution))
		if resolution.Changed() {
			req.RemoteAddr = resolution.Addr
		}

		next.ServeHTTP(w, req)
	})
}
