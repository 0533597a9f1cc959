package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abczzz13/forwarded"
	"github.com/abczzz13/forwarded/internal/config"
)

type echoResponse struct {
	ClientAddr  string `json:"client_addr"`
	PeerAddr    string `json:"peer_addr"`
	Policy      string `json:"policy"`
	TrustedHops int    `json:"trusted_hops"`
	RequestID   string `json:"request_id,omitempty"`
}

func newRouter(cfg *config.Config, resolver *forwarded.Resolver, gatherer prom.Gatherer) http.Handler {
	r := chi.NewRouter()

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept"},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(resolver.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/", echoHandler)
	r.Method(http.MethodGet, cfg.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	resolution, _ := forwarded.FromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(echoResponse{
		ClientAddr:  resolution.Addr,
		PeerAddr:    resolution.PeerAddr,
		Policy:      resolution.Policy.String(),
		TrustedHops: resolution.TrustedHops,
		RequestID:   middleware.GetReqID(r.Context()),
	})
}
