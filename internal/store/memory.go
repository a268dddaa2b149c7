// Package store keeps the most recent analysis reports in memory for the HTTP
// API and the archive exporter.
package store

import (
	"container/ring"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// Default capacities for the report ring and the threat dedupe cache.
const (
	DefaultCapacity       = 1000
	DefaultDedupeCapacity = 4096
)

// MemoryStore provides thread-safe storage for reports with a ring buffer and
// LRU threat deduplication. Threat IDs are content-addressed, so an ongoing
// attack produces the same ID every pass; the LRU tells repeat sightings from
// new ones.
type MemoryStore struct {
	mu         sync.RWMutex
	reports    *ring.Ring
	dedupe     *lru.Cache[string, bool]
	maxReports int
	dedupeCap  int
}

// NewMemoryStore creates a new memory store with the specified capacities.
// Non-positive capacities fall back to the defaults.
func NewMemoryStore(maxReports, dedupeCap int) *MemoryStore {
	if maxReports <= 0 {
		maxReports = DefaultCapacity
	}
	if dedupeCap <= 0 {
		dedupeCap = DefaultDedupeCapacity
	}
	dedupeCache, _ := lru.New[string, bool](dedupeCap)

	return &MemoryStore{
		reports:    ring.New(maxReports),
		dedupe:     dedupeCache,
		maxReports: maxReports,
		dedupeCap:  dedupeCap,
	}
}

// Add stores a report, evicting the oldest when full, and returns how many of
// its threats were not seen recently.
func (s *MemoryStore) Add(report *model.Report) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	newThreats := 0
	for _, threat := range report.Threats {
		if _, seen := s.dedupe.Get(threat.ID); seen {
			continue
		}
		s.dedupe.Add(threat.ID, true)
		newThreats++
	}

	s.reports.Value = report
	s.reports = s.reports.Next()

	return newThreats
}

// GetReports returns stored reports newest first. A positive limit truncates
// the result; minSeverity keeps only reports whose strongest attack or threat
// reaches that severity.
func (s *MemoryStore) GetReports(limit int, minSeverity string) []*model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	minRank := model.SeverityRank(minSeverity)

	var reports []*model.Report
	s.reports.Do(func(value interface{}) {
		report, ok := value.(*model.Report)
		if !ok || report == nil {
			return
		}
		if minSeverity != "" && report.MaxSeverity() < minRank {
			return
		}
		reports = append(reports, report)
	})

	// The ring iterates oldest first; the API wants the most recent on top.
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}

	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports
}

// GetReport returns the stored report with the given ID.
func (s *MemoryStore) GetReport(id string) (*model.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *model.Report
	s.reports.Do(func(value interface{}) {
		if report, ok := value.(*model.Report); ok && report != nil && report.ReportID == id {
			found = report
		}
	})
	return found, found != nil
}

// All returns every stored report oldest first, the order the archive
// preserves.
func (s *MemoryStore) All() []*model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reports []*model.Report
	s.reports.Do(func(value interface{}) {
		if report, ok := value.(*model.Report); ok && report != nil {
			reports = append(reports, report)
		}
	})
	return reports
}

// Len returns the number of stored reports.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	s.reports.Do(func(value interface{}) {
		if value != nil {
			count++
		}
	})
	return count
}

// Resize rebuilds the ring with a new capacity, keeping the newest reports
// when shrinking. Non-positive capacities are ignored.
func (s *MemoryStore) Resize(capacity int) {
	if capacity <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if capacity == s.maxReports {
		return
	}

	var kept []*model.Report
	s.reports.Do(func(value interface{}) {
		if report, ok := value.(*model.Report); ok && report != nil {
			kept = append(kept, report)
		}
	})
	if len(kept) > capacity {
		kept = kept[len(kept)-capacity:]
	}

	replacement := ring.New(capacity)
	for _, report := range kept {
		replacement.Value = report
		replacement = replacement.Next()
	}

	s.reports = replacement
	s.maxReports = capacity
}

// GetStats returns store statistics.
func (s *MemoryStore) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	s.reports.Do(func(value interface{}) {
		if value != nil {
			count++
		}
	})

	return map[string]interface{}{
		"total_reports": count,
		"max_reports":   s.maxReports,
		"dedupe_cap":    s.dedupeCap,
		"dedupe_size":   s.dedupe.Len(),
	}
}
