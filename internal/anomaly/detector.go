// Package anomaly runs independent pattern checks over a batch's FeatureSet.
// Every check may fire alongside the others; a quiet batch yields an empty
// list, never an error.
package anomaly

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/features"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// DefaultUnusualPortThreshold is how many uncommon ports a batch may target
// before the unusual-ports check fires.
const DefaultUnusualPortThreshold = 5

// Burst and spike cutoffs.
const (
	burstWindowSeconds = 60.0
	burstMinEvents     = 100
	spikeMinEvents     = 50
	spikeHighEvents    = 100
)

// commonPorts are the services every honeypot deployment exposes; traffic to
// anything else counts toward the unusual-ports check.
var commonPorts = map[int]struct{}{
	22: {}, 80: {}, 443: {}, 3389: {}, 21: {}, 25: {}, 53: {},
}

// maxReportedPorts caps the port list carried in the unusual-ports anomaly.
const maxReportedPorts = 10

// Detector flags batch-level anomalies that per-event classification misses.
// The threshold is mutable through live config updates, so reads go through
// the mutex.
type Detector struct {
	mu                   sync.RWMutex
	unusualPortThreshold int
}

// NewDetector creates a detector. A non-positive threshold falls back to the
// default.
func NewDetector(unusualPortThreshold int) *Detector {
	if unusualPortThreshold <= 0 {
		unusualPortThreshold = DefaultUnusualPortThreshold
	}
	return &Detector{unusualPortThreshold: unusualPortThreshold}
}

// SetThreshold replaces the unusual-port threshold; non-positive values are
// ignored. Used for live config updates.
func (d *Detector) SetThreshold(threshold int) {
	if threshold <= 0 {
		return
	}
	d.mu.Lock()
	d.unusualPortThreshold = threshold
	d.mu.Unlock()
}

// Threshold returns the active unusual-port threshold.
func (d *Detector) Threshold() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unusualPortThreshold
}

// Detect runs all checks against the FeatureSet. The detected_at stamp on
// every anomaly is the caller-supplied analysis time.
func (d *Detector) Detect(fs *features.FeatureSet, now time.Time) []model.Anomaly {
	anomalies := make([]model.Anomaly, 0)

	if burst := detectTemporalBurst(fs, now); burst != nil {
		anomalies = append(anomalies, *burst)
	}
	if unusual := d.detectUnusualPorts(fs, now); unusual != nil {
		anomalies = append(anomalies, *unusual)
	}
	anomalies = append(anomalies, detectFrequencySpikes(fs, now)...)

	return anomalies
}

// detectTemporalBurst fires when the whole batch lands inside a sub-minute
// window with more than a hundred events.
func detectTemporalBurst(fs *features.FeatureSet, now time.Time) *model.Anomaly {
	if fs.TimeRange == nil {
		return nil
	}
	duration := fs.TimeRange.End.Sub(fs.TimeRange.Start).Seconds()
	if duration >= burstWindowSeconds || fs.TotalEvents <= burstMinEvents {
		return nil
	}

	return &model.Anomaly{
		ID:          model.ContentID(model.AnomalyTemporalBurst, strconv.Itoa(fs.TotalEvents)),
		Type:        model.AnomalyTemporalBurst,
		Severity:    model.SeverityMedium,
		Confidence:  0.8,
		Description: fmt.Sprintf("%d events in %.2f seconds", fs.TotalEvents, duration),
		DetectedAt:  now,
		Indicators: map[string]interface{}{
			"total_events":     fs.TotalEvents,
			"duration_seconds": duration,
		},
	}
}

// detectUnusualPorts fires when the batch targets more uncommon ports than the
// threshold allows.
func (d *Detector) detectUnusualPorts(fs *features.FeatureSet, now time.Time) *model.Anomaly {
	unusual := make([]int, 0, len(fs.PortFrequency))
	for _, entry := range fs.PortFrequency {
		if _, common := commonPorts[entry.Port]; !common {
			unusual = append(unusual, entry.Port)
		}
	}
	if len(unusual) <= d.Threshold() {
		return nil
	}
	if len(unusual) > maxReportedPorts {
		unusual = unusual[:maxReportedPorts]
	}

	return &model.Anomaly{
		ID:          model.ContentID(model.AnomalyUnusualPorts, fmt.Sprint(unusual)),
		Type:        model.AnomalyUnusualPorts,
		Severity:    model.SeverityLow,
		Confidence:  0.6,
		Description: fmt.Sprintf("Multiple unusual ports targeted: %v", unusual),
		DetectedAt:  now,
		Indicators: map[string]interface{}{
			"unusual_ports": unusual,
		},
	}
}

// detectFrequencySpikes emits one anomaly per source exceeding the spike
// cutoff, in frequency-table order.
func detectFrequencySpikes(fs *features.FeatureSet, now time.Time) []model.Anomaly {
	var spikes []model.Anomaly
	for _, entry := range fs.SourceFrequency {
		if entry.Count <= spikeMinEvents {
			continue
		}

		severity := model.SeverityMedium
		if entry.Count > spikeHighEvents {
			severity = model.SeverityHigh
		}
		confidence := float64(entry.Count) / 150
		if confidence > 0.95 {
			confidence = 0.95
		}

		spikes = append(spikes, model.Anomaly{
			ID:          model.ContentID(model.AnomalyFrequencySpike, entry.Source),
			Type:        model.AnomalyFrequencySpike,
			Severity:    severity,
			SourceIP:    entry.Source,
			Confidence:  confidence,
			Description: fmt.Sprintf("High activity from IP %s: %d events", entry.Source, entry.Count),
			DetectedAt:  now,
			Indicators: map[string]interface{}{
				"event_count": entry.Count,
			},
		})
	}
	return spikes
}
