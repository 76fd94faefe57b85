/*
Package main is the entry point for the relaychat server.

It is responsible for loading configuration, initializing the global logging system,
starting the TCP chat relay and the HTTP ops server (health, peers, announcements,
WebSocket transport), and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chamathjayasekara99/relaychat/internal/app/relay"
	"github.com/chamathjayasekara99/relaychat/internal/configs"
	"github.com/chamathjayasekara99/relaychat/internal/handler"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/logx"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// A missing .env file is fine; the environment itself takes precedence.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("chat_port", cfg.ChatPort).
		Int("http_port", cfg.HTTPPort).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayServer := relay.NewServer(cfg)

	go func() {
		if err := relayServer.ListenAndServe(); err != nil {
			logx.Fatal(err, "Chat relay failed to start")
		}
	}()

	router := handler.Router(&handler.AppDeps{
		Relay:  relayServer,
		Config: cfg,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:         httpAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Ops server starting on http://localhost%s", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Ops server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Ops server forced to shutdown")
	}

	if err := relayServer.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Chat relay forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
