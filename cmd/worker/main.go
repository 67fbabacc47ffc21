package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"skill-hire/internal/app"
	"skill-hire/internal/config"
	"skill-hire/internal/infrastructure/queue"
)

// worker drains the quiz generation queue. Scale it out instead of the API
// when generation is the bottleneck.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg, log.Default())
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	if !c.Queue.Enabled() {
		log.Fatalf("worker needs RABBITMQ_URL: %v", queue.ErrDisabled)
	}

	go c.Hub.Run()
	defer c.Hub.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker status=started queue=%s", cfg.Queue.GenerationQueue)
	if err := c.Queue.Consume(ctx, c.QuizAssembly.HandleJob); err != nil {
		log.Printf("worker status=stopped err=%v", err)
		return
	}
	log.Printf("worker status=stopped")
}
