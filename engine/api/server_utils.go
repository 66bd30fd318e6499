package api

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/config"
	"github.com/eduniti/guidance/engine/experiment"
	"github.com/eduniti/guidance/engine/feedback"
	"github.com/eduniti/guidance/engine/recommender"
	"github.com/eduniti/guidance/engine/schema"
	"github.com/eduniti/guidance/engine/store"
)

// RunAPIServer wires up the engine from configuration and serves the HTTP API
// until an interrupt is received.
func RunAPIServer(configPath string, logger *logrus.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath, logger)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	// Initialize the JSON file store
	st, err := store.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	// Initialize the experiment framework
	framework, err := experiment.New(st)
	if err != nil {
		return fmt.Errorf("failed to initialize experiment framework: %w", err)
	}

	// Initialize the feedback system
	feedbackSystem, err := feedback.New(st, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize feedback system: %w", err)
	}

	// Attach the optional PostgreSQL archive sink
	if cfg.Archive.Enabled {
		archive := store.NewArchive(&cfg.Archive.PostgreSQL)
		if err := archive.Connect(); err != nil {
			return fmt.Errorf("failed to connect to archive database: %w", err)
		}
		defer archive.Close()
		framework.SetArchive(archive)
		feedbackSystem.SetArchive(archive)
	}

	// Initialize the recommendation engine
	var dataset *recommender.Dataset
	if cfg.DatasetPath != "" {
		dataset, err = recommender.LoadDataset(cfg.DatasetPath)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
	}
	rec := recommender.NewEngine(dataset)
	rec.SetFramework(framework)

	// Compile the request schemas
	validator, err := schema.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to initialize request validator: %w", err)
	}

	// Route engine events to WebSocket clients
	hub := NewWSHub(logger)
	framework.SetNotifier(hub.Broadcast)
	feedbackSystem.SetNotifier(hub.Broadcast)

	apiServer := NewServer(
		cfg.ListenAddr,
		framework,
		feedbackSystem,
		rec,
		validator,
		hub,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	logger.WithField("addr", cfg.ListenAddr).Info("Guidance engine started successfully")
	logger.Info("Press Ctrl+C to stop the server")

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal, shutting down API server...")
		return apiServer.Stop()
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down API server...")
		return apiServer.Stop()
	}
}
