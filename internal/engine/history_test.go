package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

func TestPatternHistory_RecordAndCount(t *testing.T) {
	h := newPatternHistory(time.Hour)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	h.Record([]model.Attack{
		{Type: model.AttackBruteForce, SourceIP: "10.0.0.1", Confidence: 0.9},
		{Type: model.AttackBruteForce, SourceIP: "10.0.0.2", Confidence: 0.7},
		{Type: model.AttackPortScan, SourceIP: "10.0.0.3", Confidence: 0.8},
	}, now)

	assert.Equal(t, map[string]int{
		model.AttackBruteForce: 2,
		model.AttackPortScan:   1,
	}, h.Counts())
}

func TestPatternHistory_PrunesBeyondRetention(t *testing.T) {
	h := newPatternHistory(time.Hour)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	h.Record([]model.Attack{{Type: model.AttackBruteForce, SourceIP: "10.0.0.1"}}, now)
	h.Record([]model.Attack{{Type: model.AttackPortScan, SourceIP: "10.0.0.2"}}, now.Add(30*time.Minute))

	// 89 minutes later the first entry is outside the window, the second not.
	h.Record([]model.Attack{{Type: model.AttackPortScan, SourceIP: "10.0.0.3"}}, now.Add(89*time.Minute))

	assert.Equal(t, map[string]int{model.AttackPortScan: 2}, h.Counts())
}

func TestPatternHistory_EmptyTypesAreDropped(t *testing.T) {
	h := newPatternHistory(time.Hour)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	h.Record([]model.Attack{{Type: model.AttackMalware, SourceIP: "10.0.0.1"}}, now)
	h.Record(nil, now.Add(2*time.Hour))

	assert.Empty(t, h.Counts())
}

func TestPatternHistory_DefaultRetention(t *testing.T) {
	h := newPatternHistory(0)
	assert.Equal(t, DefaultHistoryRetention, h.retention)
}
