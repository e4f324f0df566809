package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gonkalabs/reviewsense/internal/config"
	"github.com/gonkalabs/reviewsense/internal/frontend"
	"github.com/gonkalabs/reviewsense/internal/gatewayclient"
	"github.com/gonkalabs/reviewsense/internal/httpserver"
)

func main() {
	cfg, err := config.LoadFrontend()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	gw := gatewayclient.New(cfg.GatewayAddr, cfg.Timeout)
	handler, err := frontend.New(gw, slog.Default())
	if err != nil {
		slog.Error("template error", "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("starting frontend", "addr", cfg.ListenAddr, "gateway", gatewayclient.BaseURL(cfg.GatewayAddr))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := httpserver.Run(ctx, srv, 10*time.Second); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
