package features

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/intel"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

func baseTime() time.Time {
	return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func TestExtractor_Counts(t *testing.T) {
	x := NewExtractor(intel.NewSet())

	events := []model.Event{
		{SourceIP: "10.0.0.1", DstPort: 22, Protocol: "tcp", Timestamp: baseTime()},
		{SourceIP: "10.0.0.1", DstPort: 80, Protocol: "tcp", Timestamp: baseTime().Add(30 * time.Second)},
		{SourceIP: "10.0.0.2", DstPort: 22, Protocol: "udp", Timestamp: baseTime().Add(2 * time.Minute)},
	}

	fs := x.Extract(events)

	assert.Equal(t, 3, fs.TotalEvents)
	assert.Equal(t, 2, fs.UniqueSources)
	assert.Equal(t, 2, fs.UniquePorts)

	require.NotNil(t, fs.TimeRange)
	assert.Equal(t, baseTime(), fs.TimeRange.Start)
	assert.Equal(t, baseTime().Add(2*time.Minute), fs.TimeRange.End)
	assert.InDelta(t, 2.0, fs.TimeRange.DurationMinutes, 0.001)

	require.Len(t, fs.SourceFrequency, 2)
	assert.Equal(t, model.SourceCount{Source: "10.0.0.1", Count: 2}, fs.SourceFrequency[0])
	assert.Equal(t, model.SourceCount{Source: "10.0.0.2", Count: 1}, fs.SourceFrequency[1])

	require.Len(t, fs.PortFrequency, 2)
	assert.Equal(t, model.PortCount{Port: 22, Count: 2}, fs.PortFrequency[0])

	require.Len(t, fs.ProtocolDistribution, 2)
	assert.Equal(t, model.ProtocolCount{Protocol: "tcp", Count: 2}, fs.ProtocolDistribution[0])
}

func TestExtractor_EmptyBatch(t *testing.T) {
	x := NewExtractor(intel.NewSet())
	fs := x.Extract(nil)

	assert.Equal(t, 0, fs.TotalEvents)
	assert.Equal(t, 0, fs.UniqueSources)
	assert.Equal(t, 0, fs.UniquePorts)
	assert.Nil(t, fs.TimeRange)
	assert.Empty(t, fs.SourceFrequency)
	assert.Empty(t, fs.PortFrequency)
	assert.Empty(t, fs.Patterns)
	assert.Nil(t, fs.TopAttacker())
	assert.Nil(t, fs.TopPort())
	assert.Equal(t, 0, fs.MaxSourceFrequency())
}

func TestExtractor_MissingFieldsDegrade(t *testing.T) {
	x := NewExtractor(intel.NewSet())

	events := []model.Event{
		{Message: "no source or port"},
		{SourceIP: "10.0.0.1"},
		{DstPort: 443},
	}

	fs := x.Extract(events)

	assert.Equal(t, 3, fs.TotalEvents)
	assert.Equal(t, 1, fs.UniqueSources)
	assert.Equal(t, 1, fs.UniquePorts)
	assert.Nil(t, fs.TimeRange)

	// The sourced event never touched a port.
	pattern, ok := fs.Patterns["10.0.0.1"]
	require.True(t, ok)
	assert.Equal(t, 0, pattern.PortsTargeted)
	assert.Equal(t, 1, pattern.Frequency)
}

func TestExtractor_TableTruncationAndOrder(t *testing.T) {
	x := NewExtractor(intel.NewSet())

	// 12 sources: source-00 appears 13 times, source-01 12 times, and so on.
	var events []model.Event
	for i := 0; i < 12; i++ {
		for j := 0; j < 13-i; j++ {
			events = append(events, model.Event{
				SourceIP: fmt.Sprintf("source-%02d", i),
				DstPort:  10000 + i,
			})
		}
	}

	fs := x.Extract(events)

	assert.Equal(t, 12, fs.UniqueSources)
	require.Len(t, fs.SourceFrequency, 10)
	require.Len(t, fs.PortFrequency, 10)

	for i := 1; i < len(fs.SourceFrequency); i++ {
		assert.GreaterOrEqual(t,
			fs.SourceFrequency[i-1].Count, fs.SourceFrequency[i].Count,
			"source table must be non-increasing")
	}
	assert.Equal(t, "source-00", fs.SourceFrequency[0].Source)
	assert.Len(t, fs.Patterns, 10)
}

func TestExtractor_TieBreakFirstSeen(t *testing.T) {
	x := NewExtractor(intel.NewSet())

	// Equal counts; 10.0.0.9 appears in the batch before 10.0.0.1.
	events := []model.Event{
		{SourceIP: "10.0.0.9", DstPort: 8080},
		{SourceIP: "10.0.0.1", DstPort: 9090},
		{SourceIP: "10.0.0.9", DstPort: 8081},
		{SourceIP: "10.0.0.1", DstPort: 9091},
	}

	fs := x.Extract(events)

	require.Len(t, fs.SourceFrequency, 2)
	assert.Equal(t, "10.0.0.9", fs.SourceFrequency[0].Source)
	assert.Equal(t, "10.0.0.1", fs.SourceFrequency[1].Source)

	require.Len(t, fs.PortFrequency, 4)
	assert.Equal(t, 8080, fs.PortFrequency[0].Port)
}

func TestExtractor_KnownMaliciousPattern(t *testing.T) {
	x := NewExtractor(intel.NewSet())

	events := []model.Event{
		{SourceIP: "192.168.1.100", DstPort: 22},
		{SourceIP: "192.168.1.100", DstPort: 80},
		{SourceIP: "10.9.9.9", DstPort: 443},
	}

	fs := x.Extract(events)

	malicious, ok := fs.Patterns["192.168.1.100"]
	require.True(t, ok)
	assert.True(t, malicious.IsKnownMalicious)
	assert.Equal(t, 2, malicious.Frequency)
	assert.Equal(t, 2, malicious.PortsTargeted)

	clean, ok := fs.Patterns["10.9.9.9"]
	require.True(t, ok)
	assert.False(t, clean.IsKnownMalicious)

	assert.Equal(t, 1, fs.KnownMaliciousCount())
}

func TestExtractor_Pure(t *testing.T) {
	x := NewExtractor(intel.NewSet())

	events := []model.Event{
		{SourceIP: "10.0.0.1", DstPort: 22, Protocol: "tcp", Timestamp: baseTime()},
		{SourceIP: "10.0.0.2", DstPort: 80, Protocol: "tcp", Timestamp: baseTime().Add(time.Minute)},
		{SourceIP: "10.0.0.1", DstPort: 443, Protocol: "tcp", Timestamp: baseTime().Add(2 * time.Minute)},
	}

	first := x.Extract(events)
	second := x.Extract(events)

	assert.Equal(t, first, second)
}
