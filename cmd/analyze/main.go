package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/anomaly"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/classify"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/config"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/engine"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/intel"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/modelstore"
)

// analyze reads a JSON array of honeypot events on stdin and writes the
// analysis report on stdout. Logs go to stderr so the output stays pipeable.
func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Error("Failed to read stdin", "error", err)
		os.Exit(1)
	}

	events, err := parseEvents(data)
	if err != nil {
		logger.Error("Malformed input", "error", err)
		writeReport(logger, errorReport(fmt.Sprintf("invalid input: %v", err)))
		os.Exit(1)
	}

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
		}
	}

	if cfg.SignaturesDir != "" {
		if _, err := classifier.LoadOverlays(cfg.SignaturesDir, logger); err != nil {
			logger.Warn("Signature overlays not loaded", "dir", cfg.SignaturesDir, "error", err)
		}
	}

	intelSet := intel.NewSet()
	if cfg.IntelPath != "" {
		if _, err := intelSet.LoadFile(cfg.IntelPath); err != nil {
			logger.Warn("Threat intel feed not loaded", "path", cfg.IntelPath, "error", err)
		}
	}

	detector := anomaly.NewDetector(cfg.UnusualPortThreshold)
	analysisEngine := engine.New(logger, classifier, detector, intelSet, cfg.HistoryRetention)

	report := analysisEngine.Analyze(context.Background(), events)
	writeReport(logger, report)

	if report.Error != "" {
		os.Exit(1)
	}
}

// parseEvents decodes the input batch. Empty input counts as an empty batch.
func parseEvents(data []byte) ([]model.Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.Event{}, nil
	}

	var events []model.Event
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, fmt.Errorf("expected a JSON array of events: %w", err)
	}
	return events, nil
}

func writeReport(logger *slog.Logger, report *model.Report) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		logger.Error("Failed to write report", "error", err)
	}
}

func errorReport(message string) *model.Report {
	return &model.Report{
		ReportID:        uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		Attacks:         []model.Attack{},
		Anomalies:       []model.Anomaly{},
		Threats:         []model.Threat{},
		Recommendations: []model.Recommendation{},
		Error:           message,
	}
}
