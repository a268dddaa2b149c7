// Package reputation keeps per-source reputation scores across analysis
// passes. Scores run 0-100, lower is worse; every source starts neutral.
package reputation

import (
	"fmt"
	"sync"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

const (
	neutralScore     = 50
	maxPenalty       = 40
	maliciousPenalty = 20
)

// Tracker holds the scores. Safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	scores map[string]int
}

// NewTracker starts with an empty score table.
func NewTracker() *Tracker {
	return &Tracker{scores: make(map[string]int)}
}

// Apply penalizes every listed source by its batch frequency and returns the
// per-source updates. Known-malicious sources take an extra penalty.
func (t *Tracker) Apply(frequencies []model.SourceCount, isMalicious func(string) bool) map[string]model.ReputationUpdate {
	updates := make(map[string]model.ReputationUpdate, len(frequencies))

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, entry := range frequencies {
		oldScore, ok := t.scores[entry.Source]
		if !ok {
			oldScore = neutralScore
		}

		penalty := entry.Count * 2
		if penalty > maxPenalty {
			penalty = maxPenalty
		}
		newScore := oldScore - penalty
		if newScore < 0 {
			newScore = 0
		}
		if isMalicious != nil && isMalicious(entry.Source) {
			newScore -= maliciousPenalty
			if newScore < 0 {
				newScore = 0
			}
		}

		t.scores[entry.Source] = newScore
		updates[entry.Source] = model.ReputationUpdate{
			OldScore: oldScore,
			NewScore: newScore,
			Change:   newScore - oldScore,
			Reason:   fmt.Sprintf("Attack frequency: %d", entry.Count),
		}
	}

	return updates
}

// Score returns a source's current score; unseen sources are neutral.
func (t *Tracker) Score(source string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if score, ok := t.scores[source]; ok {
		return score
	}
	return neutralScore
}

// Snapshot copies the full score table.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snapshot := make(map[string]int, len(t.scores))
	for source, score := range t.scores {
		snapshot[source] = score
	}
	return snapshot
}

// Len returns how many sources carry a tracked score.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.scores)
}
