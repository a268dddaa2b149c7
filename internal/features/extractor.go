// Package features derives aggregate statistics from a batch of honeypot
// events. Extraction is a pure function of the batch: identical input yields
// an identical FeatureSet, and missing event fields degrade to zero values.
package features

import (
	"sort"
	"time"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/intel"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// topEntries caps the source and port frequency tables.
const topEntries = 10

// TimeRange spans the earliest to the latest event timestamp in a batch.
type TimeRange struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// SourcePattern summarizes one top source's behavior within the batch.
type SourcePattern struct {
	IsKnownMalicious bool `json:"is_known_malicious"`
	Frequency        int  `json:"frequency"`
	PortsTargeted    int  `json:"ports_targeted"`
}

// FeatureSet is the aggregate view of one batch. Frequency tables hold at most
// ten entries, ordered by descending count with first-seen order breaking ties.
type FeatureSet struct {
	TotalEvents          int                      `json:"total_events"`
	UniqueSources        int                      `json:"unique_sources"`
	UniquePorts          int                      `json:"unique_ports"`
	TimeRange            *TimeRange               `json:"time_range,omitempty"`
	SourceFrequency      []model.SourceCount      `json:"source_frequency"`
	PortFrequency        []model.PortCount        `json:"port_frequency"`
	ProtocolDistribution []model.ProtocolCount    `json:"protocol_distribution"`
	Patterns             map[string]SourcePattern `json:"patterns"`
}

// TopAttacker returns the most frequent source, nil for an empty table.
func (f *FeatureSet) TopAttacker() *model.SourceCount {
	if len(f.SourceFrequency) == 0 {
		return nil
	}
	top := f.SourceFrequency[0]
	return &top
}

// TopPort returns the most targeted port, nil for an empty table.
func (f *FeatureSet) TopPort() *model.PortCount {
	if len(f.PortFrequency) == 0 {
		return nil
	}
	top := f.PortFrequency[0]
	return &top
}

// MaxSourceFrequency returns the highest per-source event count in the batch.
func (f *FeatureSet) MaxSourceFrequency() int {
	if len(f.SourceFrequency) == 0 {
		return 0
	}
	return f.SourceFrequency[0].Count
}

// KnownMaliciousCount returns how many top sources are known malicious.
func (f *FeatureSet) KnownMaliciousCount() int {
	count := 0
	for _, pattern := range f.Patterns {
		if pattern.IsKnownMalicious {
			count++
		}
	}
	return count
}

// Extractor computes FeatureSets against a known-malicious intel set.
type Extractor struct {
	intel *intel.Set
}

// NewExtractor creates an extractor backed by the given intel set.
func NewExtractor(intelSet *intel.Set) *Extractor {
	return &Extractor{intel: intelSet}
}

// Extract builds the FeatureSet for a batch. An empty batch yields a zeroed
// FeatureSet with empty tables, never an error.
func (x *Extractor) Extract(events []model.Event) *FeatureSet {
	fs := &FeatureSet{Patterns: make(map[string]SourcePattern)}
	fs.TotalEvents = len(events)
	if len(events) == 0 {
		return fs
	}

	sourceCounts := make(map[string]int)
	sourceOrder := make(map[string]int)
	portCounts := make(map[int]int)
	portOrder := make(map[int]int)
	protoCounts := make(map[string]int)
	protoOrder := make(map[string]int)
	sourcePorts := make(map[string]map[int]struct{})

	var start, end time.Time
	for i, event := range events {
		if event.SourceIP != "" {
			if _, seen := sourceCounts[event.SourceIP]; !seen {
				sourceOrder[event.SourceIP] = i
			}
			sourceCounts[event.SourceIP]++
			if event.DstPort != 0 {
				ports, ok := sourcePorts[event.SourceIP]
				if !ok {
					ports = make(map[int]struct{})
					sourcePorts[event.SourceIP] = ports
				}
				ports[event.DstPort] = struct{}{}
			}
		}
		if event.DstPort != 0 {
			if _, seen := portCounts[event.DstPort]; !seen {
				portOrder[event.DstPort] = i
			}
			portCounts[event.DstPort]++
		}
		if event.Protocol != "" {
			if _, seen := protoCounts[event.Protocol]; !seen {
				protoOrder[event.Protocol] = i
			}
			protoCounts[event.Protocol]++
		}
		if event.HasTimestamp() {
			if start.IsZero() || event.Timestamp.Before(start) {
				start = event.Timestamp
			}
			if end.IsZero() || event.Timestamp.After(end) {
				end = event.Timestamp
			}
		}
	}

	fs.UniqueSources = len(sourceCounts)
	fs.UniquePorts = len(portCounts)

	if !start.IsZero() {
		fs.TimeRange = &TimeRange{
			Start:           start,
			End:             end,
			DurationMinutes: end.Sub(start).Minutes(),
		}
	}

	fs.SourceFrequency = topSources(sourceCounts, sourceOrder)
	fs.PortFrequency = topPorts(portCounts, portOrder)
	fs.ProtocolDistribution = allProtocols(protoCounts, protoOrder)

	for _, entry := range fs.SourceFrequency {
		fs.Patterns[entry.Source] = SourcePattern{
			IsKnownMalicious: x.intel != nil && x.intel.Contains(entry.Source),
			Frequency:        entry.Count,
			PortsTargeted:    len(sourcePorts[entry.Source]),
		}
	}

	return fs
}

func topSources(counts map[string]int, order map[string]int) []model.SourceCount {
	entries := make([]model.SourceCount, 0, len(counts))
	for source, count := range counts {
		entries = append(entries, model.SourceCount{Source: source, Count: count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return order[entries[i].Source] < order[entries[j].Source]
	})
	if len(entries) > topEntries {
		entries = entries[:topEntries]
	}
	return entries
}

func topPorts(counts map[int]int, order map[int]int) []model.PortCount {
	entries := make([]model.PortCount, 0, len(counts))
	for port, count := range counts {
		entries = append(entries, model.PortCount{Port: port, Count: count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return order[entries[i].Port] < order[entries[j].Port]
	})
	if len(entries) > topEntries {
		entries = entries[:topEntries]
	}
	return entries
}

func allProtocols(counts map[string]int, order map[string]int) []model.ProtocolCount {
	entries := make([]model.ProtocolCount, 0, len(counts))
	for proto, count := range counts {
		entries = append(entries, model.ProtocolCount{Protocol: proto, Count: count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return order[entries[i].Protocol] < order[entries[j].Protocol]
	})
	return entries
}
