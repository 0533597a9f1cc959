// Command forwarded-echo is a small HTTP service that answers every request
// with the client address resolved from its Forwarded header. It is meant to
// be deployed behind the proxies being configured, to check a trust policy
// before rolling it out.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/abczzz13/forwarded"
	"github.com/abczzz13/forwarded/internal/config"
	forwardedprom "github.com/abczzz13/forwarded/prometheus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	if err := run(); err != nil {
		slog.Error("forwarded-echo failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	resolver, err := forwarded.New(
		forwarded.FromEnv(),
		forwarded.WithLogger(logger),
		forwardedprom.WithRegisterer(registry),
	)
	if err != nil {
		return err
	}
	logger.Info("trust policy configured", "policy", resolver.Policy().String())

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(cfg, resolver, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runWithGracefulShutdown(ctx, server, logger, cfg.ShutdownTimeout)
}
