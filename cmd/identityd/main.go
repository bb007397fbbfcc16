// Package main runs the development identity server. It serves the four
// auth endpoints against in-memory stores, so it is suitable for local
// development and integration testing only.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Pixelynx/pfn-client-go/internal/identityserver"
	"github.com/Pixelynx/pfn-client-go/internal/platform/config"
	"github.com/Pixelynx/pfn-client-go/internal/platform/logger"
)

func main() {
	cfg := config.ServerFromEnv()
	log := logger.New()

	log.Info("initializing identityd",
		"addr", cfg.Addr,
		"access_token_ttl", cfg.AccessTokenTTL,
		"refresh_token_ttl", cfg.RefreshTokenTTL,
	)

	server := identityserver.New(cfg, identityserver.WithLogger(log))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
