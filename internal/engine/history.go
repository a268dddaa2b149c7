package engine

import (
	"sync"
	"time"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// patternEntry records one aggregated attack sighting.
type patternEntry struct {
	Timestamp  time.Time
	SourceIP   string
	Confidence float64
}

// patternHistory keeps a rolling per-attack-type record of recent attacks.
// Entries older than the retention window are pruned on every update.
type patternHistory struct {
	mu        sync.RWMutex
	retention time.Duration
	entries   map[string][]patternEntry
}

func newPatternHistory(retention time.Duration) *patternHistory {
	if retention <= 0 {
		retention = DefaultHistoryRetention
	}
	return &patternHistory{
		retention: retention,
		entries:   make(map[string][]patternEntry),
	}
}

// Record appends one entry per attack, then prunes everything outside the
// retention window.
func (h *patternHistory) Record(attacks []model.Attack, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, attack := range attacks {
		h.entries[attack.Type] = append(h.entries[attack.Type], patternEntry{
			Timestamp:  now,
			SourceIP:   attack.SourceIP,
			Confidence: attack.Confidence,
		})
	}

	cutoff := now.Add(-h.retention)
	for kind, entries := range h.entries {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.Timestamp.After(cutoff) {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(h.entries, kind)
			continue
		}
		h.entries[kind] = kept
	}
}

// Counts returns the number of retained entries per attack type.
func (h *patternHistory) Counts() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[string]int, len(h.entries))
	for kind, entries := range h.entries {
		counts[kind] = len(entries)
	}
	return counts
}
