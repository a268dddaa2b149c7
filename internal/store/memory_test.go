package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

func report(id string) *model.Report {
	return &model.Report{ReportID: id}
}

func reportWithThreats(id string, threatIDs ...string) *model.Report {
	r := report(id)
	for _, threatID := range threatIDs {
		r.Threats = append(r.Threats, model.Threat{ID: threatID, Severity: model.SeverityCritical})
	}
	return r
}

func TestAdd_CountsNewThreats(t *testing.T) {
	s := NewMemoryStore(10, 10)

	assert.Equal(t, 2, s.Add(reportWithThreats("r1", "threat_a", "threat_b")))

	// The same ongoing attack keeps its content-addressed threat ID.
	assert.Equal(t, 0, s.Add(reportWithThreats("r2", "threat_a", "threat_b")))
	assert.Equal(t, 1, s.Add(reportWithThreats("r3", "threat_b", "threat_c")))
}

func TestGetReports_NewestFirst(t *testing.T) {
	s := NewMemoryStore(10, 10)
	s.Add(report("r1"))
	s.Add(report("r2"))
	s.Add(report("r3"))

	reports := s.GetReports(0, "")

	require.Len(t, reports, 3)
	assert.Equal(t, "r3", reports[0].ReportID)
	assert.Equal(t, "r2", reports[1].ReportID)
	assert.Equal(t, "r1", reports[2].ReportID)
}

func TestGetReports_Limit(t *testing.T) {
	s := NewMemoryStore(10, 10)
	for i := 1; i <= 5; i++ {
		s.Add(report(fmt.Sprintf("r%d", i)))
	}

	reports := s.GetReports(2, "")

	require.Len(t, reports, 2)
	assert.Equal(t, "r5", reports[0].ReportID)
	assert.Equal(t, "r4", reports[1].ReportID)
}

func TestGetReports_SeverityFilter(t *testing.T) {
	critical := report("critical")
	critical.Threats = []model.Threat{{ID: "t1", Severity: model.SeverityCritical}}
	attacksOnly := report("medium")
	attacksOnly.Attacks = []model.Attack{{ID: "a1", Severity: model.SeverityMedium}}
	quiet := report("quiet")

	s := NewMemoryStore(10, 10)
	s.Add(critical)
	s.Add(attacksOnly)
	s.Add(quiet)

	high := s.GetReports(0, model.SeverityHigh)
	require.Len(t, high, 1)
	assert.Equal(t, "critical", high[0].ReportID)

	medium := s.GetReports(0, model.SeverityMedium)
	require.Len(t, medium, 2)

	all := s.GetReports(0, "")
	assert.Len(t, all, 3)
}

func TestAdd_EvictsOldestWhenFull(t *testing.T) {
	s := NewMemoryStore(2, 10)
	s.Add(report("r1"))
	s.Add(report("r2"))
	s.Add(report("r3"))

	assert.Equal(t, 2, s.Len())

	_, found := s.GetReport("r1")
	assert.False(t, found)
	_, found = s.GetReport("r3")
	assert.True(t, found)
}

func TestGetReport(t *testing.T) {
	s := NewMemoryStore(10, 10)
	s.Add(report("r1"))

	got, found := s.GetReport("r1")
	require.True(t, found)
	assert.Equal(t, "r1", got.ReportID)

	_, found = s.GetReport("absent")
	assert.False(t, found)
}

func TestAll_OldestFirst(t *testing.T) {
	s := NewMemoryStore(10, 10)
	s.Add(report("r1"))
	s.Add(report("r2"))
	s.Add(report("r3"))

	all := s.All()

	require.Len(t, all, 3)
	assert.Equal(t, "r1", all[0].ReportID)
	assert.Equal(t, "r3", all[2].ReportID)
}

func TestResize_ShrinkKeepsNewest(t *testing.T) {
	s := NewMemoryStore(5, 10)
	for i := 1; i <= 4; i++ {
		s.Add(report(fmt.Sprintf("r%d", i)))
	}

	s.Resize(2)

	assert.Equal(t, 2, s.Len())
	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "r3", all[0].ReportID)
	assert.Equal(t, "r4", all[1].ReportID)
}

func TestResize_GrowKeepsEverything(t *testing.T) {
	s := NewMemoryStore(2, 10)
	s.Add(report("r1"))
	s.Add(report("r2"))

	s.Resize(4)

	assert.Equal(t, 2, s.Len())
	s.Add(report("r3"))
	s.Add(report("r4"))
	assert.Equal(t, 4, s.Len())

	_, found := s.GetReport("r1")
	assert.True(t, found)
}

func TestResize_IgnoresNonPositive(t *testing.T) {
	s := NewMemoryStore(3, 10)
	s.Add(report("r1"))

	s.Resize(0)
	s.Resize(-1)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 3, s.GetStats()["max_reports"])
}

func TestGetStats(t *testing.T) {
	s := NewMemoryStore(5, 8)
	s.Add(reportWithThreats("r1", "threat_a"))

	stats := s.GetStats()

	assert.Equal(t, 1, stats["total_reports"])
	assert.Equal(t, 5, stats["max_reports"])
	assert.Equal(t, 8, stats["dedupe_cap"])
	assert.Equal(t, 1, stats["dedupe_size"])
}

func TestNewMemoryStore_DefaultCapacities(t *testing.T) {
	s := NewMemoryStore(0, 0)

	stats := s.GetStats()
	assert.Equal(t, DefaultCapacity, stats["max_reports"])
	assert.Equal(t, DefaultDedupeCapacity, stats["dedupe_cap"])
}
