// Taste memory kernel entry point.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/config"
	"github.com/taste-memory-kernel/internal/kernel"
	"github.com/taste-memory-kernel/internal/notify"
	"github.com/taste-memory-kernel/internal/similarity"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("starting taste memory kernel")

	cfg, err := config.Load(getEnv("TASTE_CONFIG", "config.yaml"))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg.DataDir = getEnv("TASTE_DATA_DIR", cfg.DataDir)
	cfg.SimilarityURL = getEnv("AI_SERVICES_URL", cfg.SimilarityURL)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)

	var sim similarity.Service
	if cfg.SimilarityURL != "" {
		client, err := similarity.NewClient(cfg.SimilarityURL, logger)
		if err != nil {
			logger.Fatal("failed to create similarity client", zap.Error(err))
		}
		defer client.Close()
		sim = client
	}

	var hook notify.LearnHook
	var publisher *notify.NATSPublisher
	if cfg.NATSURL != "" {
		publisher, err = notify.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			// Best-effort channel; the kernel runs without it.
			logger.Warn("nats unavailable, event publication disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			hook = publisher
		}
	}

	k, err := kernel.New(cfg, sim, hook, logger)
	if err != nil {
		logger.Fatal("failed to create kernel", zap.Error(err))
	}
	if publisher != nil {
		k.Pipeline().Subscribe(publisher.OnPromoted)
	}

	k.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	k.Stop()
	logger.Info("shutdown complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
