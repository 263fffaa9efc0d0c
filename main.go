package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/transferai/agreement-proxy/config"
	"github.com/transferai/agreement-proxy/core"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		cancel()
	}()

	registry, err := core.Setup(ctx, cfg)
	if err != nil {
		log.Fatal("Error setting up services:", err)
	}

	if err := registry.StartAll(ctx); err != nil {
		log.Fatal("Error starting services:", err)
	}

	<-ctx.Done()
	registry.StopAll()
}

func configPath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}
