// Package engine orchestrates one analysis pass: feature extraction,
// classification, anomaly detection, threat synthesis, recommendations,
// reputation updates, statistics, and the rolling pattern history.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/adapt"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/anomaly"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/classify"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/features"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/intel"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/reputation"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/threats"
)

// DefaultHistoryRetention bounds how long pattern-history entries live.
const DefaultHistoryRetention = 24 * time.Hour

// Engine runs analysis passes. One batch is analyzed at a time; the read-side
// accessors are safe to call concurrently with a running pass.
type Engine struct {
	logger     *slog.Logger
	extractor  *features.Extractor
	classifier *classify.Classifier
	detector   *anomaly.Detector
	tracker    *reputation.Tracker
	history    *patternHistory
	intel      *intel.Set

	mu        sync.RWMutex
	lastStats classify.Stats
}

// New wires an engine around the given classifier, detector, and intel set.
// A non-positive retention falls back to the default.
func New(logger *slog.Logger, classifier *classify.Classifier, detector *anomaly.Detector, intelSet *intel.Set, retention time.Duration) *Engine {
	return &Engine{
		logger:     logger,
		extractor:  features.NewExtractor(intelSet),
		classifier: classifier,
		detector:   detector,
		tracker:    reputation.NewTracker(),
		history:    newPatternHistory(retention),
		intel:      intelSet,
	}
}

// Analyze runs the full pipeline over a batch and always returns a usable
// report: an empty batch yields the canonical empty report, and any fault
// inside the pass is recovered into a report carrying the error.
func (e *Engine) Analyze(ctx context.Context, events []model.Event) (report *model.Report) {
	now := time.Now().UTC()
	reportID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Analysis pass failed", "report_id", reportID, "panic", r, "events", len(events))
			report = errorReport(reportID, now, fmt.Sprintf("analysis failed: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return errorReport(reportID, now, err.Error())
	}
	if len(events) == 0 {
		return emptyReport(reportID, now)
	}

	fs := e.extractor.Extract(events)
	results := e.classifier.ClassifyBatch(events)
	if err := ctx.Err(); err != nil {
		return errorReport(reportID, now, err.Error())
	}
	attacks := aggregateAttacks(results, e.intel, now)
	anomalies := e.detector.Detect(fs, now)
	threatList := threats.Analyze(attacks, now)
	recommendations := adapt.Recommend(threatList, fs)
	reputationUpdates := e.tracker.Apply(fs.SourceFrequency, e.isMalicious)
	statistics := buildStatistics(fs)
	e.history.Record(attacks, now)

	e.mu.Lock()
	e.lastStats = classify.Summarize(results)
	e.mu.Unlock()

	e.logger.Info("Analysis pass complete",
		"report_id", reportID,
		"events", len(events),
		"attacks", len(attacks),
		"anomalies", len(anomalies),
		"threats", len(threatList),
		"recommendations", len(recommendations))

	return &model.Report{
		ReportID:          reportID,
		Timestamp:         now,
		Attacks:           attacks,
		Anomalies:         anomalies,
		Threats:           threatList,
		Recommendations:   recommendations,
		Statistics:        statistics,
		ReputationUpdates: reputationUpdates,
	}
}

// ClassificationStats returns the classifier summary of the latest pass.
func (e *Engine) ClassificationStats() classify.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastStats
}

// PatternCounts returns per-attack-type counts of the retained history.
func (e *Engine) PatternCounts() map[string]int {
	return e.history.Counts()
}

// ReputationScores returns a copy of the current per-source score table.
func (e *Engine) ReputationScores() map[string]int {
	return e.tracker.Snapshot()
}

// ReputationScore returns one source's current score.
func (e *Engine) ReputationScore(source string) int {
	return e.tracker.Score(source)
}

func (e *Engine) isMalicious(source string) bool {
	return e.intel != nil && e.intel.Contains(source)
}

// emptyReport is the canonical result for a batch with no events.
func emptyReport(reportID string, now time.Time) *model.Report {
	return &model.Report{
		ReportID:        reportID,
		Timestamp:       now,
		Attacks:         []model.Attack{},
		Anomalies:       []model.Anomaly{},
		Threats:         []model.Threat{},
		Recommendations: []model.Recommendation{},
		Statistics: &model.Statistics{
			AttackIntensity: "None",
			ThreatLevel:     "Low",
		},
	}
}

// errorReport carries a pass failure without losing the report envelope.
func errorReport(reportID string, now time.Time, message string) *model.Report {
	return &model.Report{
		ReportID:        reportID,
		Timestamp:       now,
		Attacks:         []model.Attack{},
		Anomalies:       []model.Anomaly{},
		Threats:         []model.Threat{},
		Recommendations: []model.Recommendation{},
		Error:           message,
	}
}
