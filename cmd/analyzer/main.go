package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/anomaly"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/api"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/archive"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/classify"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/config"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/engine"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/intel"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/metrics"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/modelstore"
	analyzerNats "github.com/RishabhS-dev/ai-msme-honeypot/internal/nats"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/store"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/validate"
)

func main() {
	cfg := config.FromEnv()

	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting Honeypot Analyzer Service")

	logger.Info("Configuration loaded",
		"http_addr", cfg.HTTPAddr,
		"nats_url", cfg.NATSURL,
		"max_reports", cfg.MaxReports,
		"unusual_port_threshold", cfg.UnusualPortThreshold,
		"batch_size", cfg.BatchSize,
		"batch_interval", cfg.BatchInterval,
		"history_retention", cfg.HistoryRetention,
		"signatures_dir", cfg.SignaturesDir,
		"model_path", cfg.ModelPath,
		"archive_path", cfg.ArchivePath,
		"intel_path", cfg.IntelPath,
		"schema_path", cfg.SchemaPath)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to NATS
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	logger.Info("Connected to NATS")

	// Initialize configuration manager
	configManager := config.NewManager(nc, logger, cfg)
	if err := configManager.Start(); err != nil {
		logger.Warn("Configuration manager not started, live tuning disabled", "error", err)
	}

	// Build the classifier: fresh training first, then the stored model and
	// signature overlays on top when configured.
	classifier, err := classify.New(logger)
	if err != nil {
		logger.Error("Failed to initialize classifier", "error", err)
		os.Exit(1)
	}

	if cfg.ModelPath != "" {
		if state, err := modelstore.Load(cfg.ModelPath); err != nil {
			logger.Warn("No stored model restored, using freshly trained model", "path", cfg.ModelPath, "error", err)
		} else if err := classifier.RestoreModel(state); err != nil {
			logger.Warn("Stored model rejected, using freshly trained model", "path", cfg.ModelPath, "error", err)
		} else {
			logger.Info("Classifier model restored", "path", cfg.ModelPath)
		}
	}

	if cfg.SignaturesDir != "" {
		if added, err := classifier.LoadOverlays(cfg.SignaturesDir, logger); err != nil {
			logger.Warn("Signature overlays not loaded", "dir", cfg.SignaturesDir, "error", err)
		} else {
			logger.Info("Signature overlays applied", "dir", cfg.SignaturesDir, "patterns", added)
		}
	}

	// Load the threat intel feed
	intelSet := intel.NewSet()
	if cfg.IntelPath != "" {
		if added, err := intelSet.LoadFile(cfg.IntelPath); err != nil {
			logger.Warn("Threat intel feed not loaded", "path", cfg.IntelPath, "error", err)
		} else {
			logger.Info("Threat intel feed loaded", "path", cfg.IntelPath, "sources", added)
		}
	}

	// Create anomaly detector and analysis engine
	detector := anomaly.NewDetector(cfg.UnusualPortThreshold)
	analysisEngine := engine.New(logger, classifier, detector, intelSet, cfg.HistoryRetention)

	// Create event validator
	validator, err := validate.New(cfg.SchemaPath, logger)
	if err != nil {
		logger.Error("Failed to initialize schema validator", "error", err)
		os.Exit(1)
	}

	// Create memory store
	memStore := store.NewMemoryStore(cfg.MaxReports, 0)
	logger.Info("Memory store initialized", "max_reports", cfg.MaxReports)

	// Restore previously archived reports
	if cfg.ArchivePath != "" {
		restored, err := archive.ReadFile(cfg.ArchivePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("No report archive found, starting empty", "path", cfg.ArchivePath)
		case err != nil:
			logger.Warn("Failed to restore report archive", "path", cfg.ArchivePath, "error", err)
		default:
			for _, report := range restored {
				memStore.Add(report)
			}
			logger.Info("Report archive restored", "path", cfg.ArchivePath, "reports", len(restored))
		}
	}

	// Create metrics
	prometheusMetrics := metrics.NewMetrics()

	// Create report publisher
	publisher, err := analyzerNats.NewReportPublisher(cfg.NATSURL, analyzerNats.SubjectReports, logger)
	if err != nil {
		logger.Error("Failed to initialize report publisher", "error", err)
		os.Exit(1)
	}

	// process runs one analysis pass over a batch. It deliberately ignores the
	// shutdown context so the final drain flush still gets analyzed and stored.
	process := func(events []model.Event) {
		report := analysisEngine.Analyze(context.Background(), events)

		prometheusMetrics.IncrementBatchesTotal()
		prometheusMetrics.AddEventsAnalyzed(len(events))
		prometheusMetrics.AddAttacksDetected(len(report.Attacks))
		prometheusMetrics.AddThreatsDetected(len(report.Threats))
		prometheusMetrics.AddAnomaliesDetected(len(report.Anomalies))
		if report.Error != "" {
			prometheusMetrics.IncrementReportsFailed()
		}

		newThreats := memStore.Add(report)
		if newThreats > 0 {
			logger.Info("New threats stored", "report_id", report.ReportID, "new_threats", newThreats)
		}
		prometheusMetrics.SetReportsStored(memStore.Len())

		publishCtx, publishCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer publishCancel()
		if err := publisher.PublishReport(publishCtx, report); err != nil {
			prometheusMetrics.IncrementNatsPublishErrors()
			logger.Error("Failed to publish report", "report_id", report.ReportID, "error", err)
		}
	}

	// Create event collector and NATS subscriber
	collector := analyzerNats.NewCollector(cfg.BatchSize, cfg.BatchInterval, process, logger)
	subscriber := analyzerNats.NewSubscriber(nc, validator, collector, prometheusMetrics, analyzerNats.DefaultQueue, process, logger)

	// Subscribe to configuration changes
	configManager.Subscribe(func(updated config.Config) {
		detector.SetThreshold(updated.UnusualPortThreshold)
		collector.SetMaxSize(updated.BatchSize)
		collector.SetInterval(updated.BatchInterval)
		memStore.Resize(updated.MaxReports)
	})

	// Create HTTP API
	httpAPI := api.NewHTTPAPI(memStore, analysisEngine, prometheusMetrics, nc, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpAPI,
	}

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Start NATS subscriber
	subscriberDone := make(chan struct{})
	go func() {
		defer close(subscriberDone)
		logger.Info("Starting NATS subscriber")
		if err := subscriber.Subscribe(ctx); err != nil {
			logger.Error("NATS subscriber error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Analyzer service started successfully")
	<-sigChan

	logger.Info("Shutting down analyzer service...")

	// Cancel context to stop the NATS subscriber, then wait for the drain so
	// the final flush lands in the store before the archive is written.
	cancel()
	select {
	case <-subscriberDone:
	case <-time.After(5 * time.Second):
		logger.Warn("NATS subscriber did not stop in time")
	}

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Persist the model and the report archive
	if cfg.ModelPath != "" {
		if err := modelstore.Save(cfg.ModelPath, classifier.ModelState()); err != nil {
			logger.Error("Failed to save classifier model", "path", cfg.ModelPath, "error", err)
		} else {
			logger.Info("Classifier model saved", "path", cfg.ModelPath)
		}
	}

	if cfg.ArchivePath != "" {
		if err := archive.WriteFile(cfg.ArchivePath, memStore.All()); err != nil {
			logger.Error("Failed to write report archive", "path", cfg.ArchivePath, "error", err)
		} else {
			logger.Info("Report archive written", "path", cfg.ArchivePath, "reports", memStore.Len())
		}
	}

	if err := publisher.Close(); err != nil {
		logger.Error("Report publisher close error", "error", err)
	}
	configManager.Stop()

	logger.Info("Analyzer service stopped")
}
