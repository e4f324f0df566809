package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gonkalabs/reviewsense/internal/api"
	"github.com/gonkalabs/reviewsense/internal/classify"
	"github.com/gonkalabs/reviewsense/internal/completion"
	"github.com/gonkalabs/reviewsense/internal/config"
	"github.com/gonkalabs/reviewsense/internal/httpserver"
	"github.com/gonkalabs/reviewsense/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	auth, err := authorizer(cfg)
	if err != nil {
		slog.Error("credentials error", "provider", cfg.Provider, "err", err)
		os.Exit(1)
	}
	client := completion.New(cfg.BaseURL, auth)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	classifier := classify.New(client, classify.Config{
		Model:     cfg.Model,
		Timeout:   cfg.Timeout,
		Filter:    classify.Params(cfg.Filter),
		Sentiment: classify.Params(cfg.Sentiment),
	}, classify.WithMetrics(classify.NewMetrics(reg)))

	handler := api.New(classifier, client, reg, slog.Default())

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2*cfg.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("starting gateway",
		"addr", cfg.ListenAddr,
		"provider", cfg.Provider,
		"base_url", cfg.BaseURL,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
	)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := httpserver.Run(ctx, srv, 10*time.Second); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// authorizer builds the credentials for the configured completion provider.
func authorizer(cfg *config.Cfg) (completion.Authorizer, error) {
	if cfg.Provider != config.ProviderGonka {
		return completion.BearerToken(cfg.APIKey), nil
	}
	pool, err := wallet.FromConfig(cfg.Wallets)
	if err != nil {
		return nil, err
	}
	slog.Info("gonka wallets loaded", "wallets", pool.Len(), "transfer_address", cfg.TransferAddress)
	return &completion.SignedRequests{Pool: pool, TransferAddress: cfg.TransferAddress}, nil
}
