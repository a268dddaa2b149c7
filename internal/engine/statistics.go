package engine

import (
	"math"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/features"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// buildStatistics summarizes a FeatureSet for the report's dashboard block.
func buildStatistics(fs *features.FeatureSet) *model.Statistics {
	return &model.Statistics{
		TotalEvents:      fs.TotalEvents,
		UniqueAttackers:  fs.UniqueSources,
		PortsTargeted:    fs.UniquePorts,
		TopAttacker:      fs.TopAttacker(),
		MostTargetedPort: fs.TopPort(),
		AttackIntensity:  attackIntensity(fs),
		ThreatLevel:      threatLevel(fs),
	}
}

// attackIntensity grades the batch by events per minute. Without a usable
// time range the intensity cannot be judged.
func attackIntensity(fs *features.FeatureSet) string {
	if fs.TimeRange == nil || fs.TimeRange.DurationMinutes == 0 {
		return "Unknown"
	}
	perMinute := float64(fs.TotalEvents) / fs.TimeRange.DurationMinutes

	switch {
	case perMinute > 50:
		return "Critical"
	case perMinute > 20:
		return "High"
	case perMinute > 5:
		return "Medium"
	default:
		return "Low"
	}
}

// threatLevel scores attacker spread, port spread, intel hits, and peak
// per-source frequency into one grade.
func threatLevel(fs *features.FeatureSet) string {
	score := math.Min(float64(fs.UniqueSources)*2, 20)
	score += math.Min(float64(fs.UniquePorts)*1.5, 15)
	score += float64(fs.KnownMaliciousCount()) * 10
	score += math.Min(float64(fs.MaxSourceFrequency())/10, 25)

	switch {
	case score > 60:
		return "Critical"
	case score > 40:
		return "High"
	case score > 20:
		return "Medium"
	default:
		return "Low"
	}
}
