package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmtrader/pairsweep/internal/api"
	"github.com/mmtrader/pairsweep/internal/config"
	"github.com/mmtrader/pairsweep/internal/coordinator"
	"github.com/mmtrader/pairsweep/internal/dataset"
	"github.com/mmtrader/pairsweep/internal/job"
	"github.com/mmtrader/pairsweep/internal/logger"
	"github.com/mmtrader/pairsweep/internal/metrics"
	"github.com/mmtrader/pairsweep/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pairsweep server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadConfig resolves the effective config for a command run.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildProvider creates the dataset backend the config selects.
func buildProvider(cfg *config.Config) (dataset.Provider, error) {
	switch cfg.Datasets.Type {
	case "s3":
		return dataset.NewS3(dataset.S3Config{
			Bucket:    cfg.Datasets.S3.Bucket,
			Endpoint:  cfg.Datasets.S3.Endpoint,
			Region:    cfg.Datasets.S3.Region,
			AccessKey: cfg.Datasets.S3.AccessKey,
			SecretKey: cfg.Datasets.S3.SecretKey,
			Prefix:    cfg.Datasets.S3.Prefix,
		})
	default:
		return dataset.NewLocalFS(cfg.Datasets.Path)
	}
}

// buildWorker creates the execution backend the config selects.
func buildWorker(cfg *config.Config, datasets dataset.Provider) worker.Worker {
	if cfg.Worker.Mode == "remote" {
		return worker.NewHTTP(cfg.Worker.Endpoint, cfg.Worker.Timeout)
	}
	return worker.NewLocal(datasets)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log := logger.Must(debug, "")
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("starting pairsweep server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("worker", cfg.Worker.Mode),
		zap.String("datasets", cfg.Datasets.Type),
	)

	datasets, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("creating dataset provider: %w", err)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	coord := coordinator.New(
		job.NewMemoryStore(),
		buildWorker(cfg, datasets),
		coordinator.WithLogger(log),
		coordinator.WithMetrics(reg),
		coordinator.WithSweepLimit(cfg.Sweep.MaxPermutations),
	)

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MetricsPath: cfg.Metrics.Path,
	}, coord, datasets, reg, log)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down pairsweep server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
