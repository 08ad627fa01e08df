package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/catalog"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/config"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/logger"
	"github.com/Jety16/Ing-Soft2023-La-Cosa/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	logDir := flag.String("log-dir", "", "write logs to this directory instead of stderr")
	flag.Parse()

	if *logDir != "" {
		if err := logger.Init(*logDir); err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
		defer logger.Close()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("failed to load config, using defaults: %v", err)
		cfg = config.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	cards, err := catalog.Load(ctx, cfg.Catalog.DBPath, cfg.Catalog.SeedFile)
	cancel()
	if err != nil {
		log.Fatalf("failed to load card catalog: %v", err)
	}

	srv, err := server.NewServer(cfg, cards)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	// first signal drains running games, a second one stops at once
	stopped := make(chan struct{})
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("shutting down, waiting for running games (signal again to force)...")
		go func() {
			<-quit
			log.Println("forced shutdown")
			srv.Shutdown()
			os.Exit(1)
		}()
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
		close(stopped)
	}()

	log.Printf("🎮 La Cosa server starting with %d cards", cards.Len())
	if err := srv.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
	<-stopped
}
