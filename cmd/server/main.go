package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skill-hire/internal/app"
	"skill-hire/internal/config"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatalf("invalid HTTP port: %v", err)
	}

	server, cleanup, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("failed to bootstrap app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server status=listening addr=%s", addr)
		errCh <- server.Fiber.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("server status=error err=%v", err)
		}
	case <-ctx.Done():
		log.Printf("server status=shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server status=shutdown_error err=%v", err)
		}
		cancel()
	}

	// In-flight quiz generations finish inside cleanup before the pools close.
	if err := cleanup(); err != nil {
		log.Printf("cleanup error: %v", err)
	}
}
