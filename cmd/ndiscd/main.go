package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veesix-networks/ndiscd/internal/daemon"
	"github.com/veesix-networks/ndiscd/pkg/config"
	"github.com/veesix-networks/ndiscd/pkg/logger"
	"github.com/veesix-networks/ndiscd/pkg/version"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	components := make(map[string]logger.LogLevel, len(cfg.Logging.Components))
	for name, level := range cfg.Logging.Components {
		components[name] = logger.LogLevel(level)
	}
	logger.Configure(cfg.Logging.Format, logger.LogLevel(cfg.Logging.Level), components)

	mainLog := logger.Get(logger.Main)
	mainLog.Info("Starting ndiscd", "version", version.Full(), "interfaces", cfg.Discovery.Interfaces)

	d, err := daemon.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create daemon: %v", err)
	}

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}

	mainLog.Info("ndiscd started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	mainLog.Info("Shutting down ndiscd...")

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := d.Stop(stopCtx); err != nil {
		mainLog.Error("Error stopping daemon", "error", err)
	}

	mainLog.Info("ndiscd stopped")
}
