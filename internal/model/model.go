package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Severity levels for attacks, anomalies, and threats, weakest to strongest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// severityRanks orders severities for comparisons and store queries.
var severityRanks = map[string]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// SeverityRank returns the ordering rank of a severity, 0 for unknown values.
func SeverityRank(severity string) int {
	return severityRanks[severity]
}

// Attack types produced by the classifier.
const (
	AttackBruteForce = "brute_force"
	AttackPortScan   = "port_scan"
	AttackWebAttack  = "web_attack"
	AttackDDoS       = "ddos"
	AttackMalware    = "malware"
	AttackNormal     = "normal"
	AttackUnknown    = "unknown"
)

// Anomaly types emitted by the detector.
const (
	AnomalyTemporalBurst  = "temporal_burst"
	AnomalyUnusualPorts   = "unusual_ports"
	AnomalyFrequencySpike = "frequency_spike"
)

// Threat types emitted by the threat analyzer.
const (
	ThreatImmediate  = "immediate_threat"
	ThreatPersistent = "persistent_threat"
)

// ContentID derives a stable 12-character id from the identifying parts of a
// record, so identical input batches produce identical ids across runs.
func ContentID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:12]
}

// SourceCount is one entry of a source frequency table.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// PortCount is one entry of a port frequency table.
type PortCount struct {
	Port  int `json:"port"`
	Count int `json:"count"`
}

// ProtocolCount is one entry of a protocol distribution table.
type ProtocolCount struct {
	Protocol string `json:"protocol"`
	Count    int    `json:"count"`
}

// Attack is one aggregated attack record: all events of one attack type from
// one source within a batch.
type Attack struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Severity    string           `json:"severity"` // medium, high
	SourceIP    string           `json:"source_ip"`
	Confidence  float64          `json:"confidence"` // 0.0 to 1.0
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
	Indicators  AttackIndicators `json:"indicators"`
}

// AttackIndicators carries the supporting counts behind an attack record.
type AttackIndicators struct {
	EventCount     int  `json:"event_count"`
	PortsTargeted  int  `json:"ports_targeted"`
	KnownMalicious bool `json:"known_malicious"`
}

// Anomaly represents an unusual traffic pattern found in a batch.
type Anomaly struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Severity    string                 `json:"severity"`
	SourceIP    string                 `json:"source_ip,omitempty"` // frequency spikes only
	Description string                 `json:"description"`
	Confidence  float64                `json:"confidence"` // 0.0 to 1.0
	DetectedAt  time.Time              `json:"detected_at"`
	Indicators  map[string]interface{} `json:"indicators,omitempty"`
}

// Threat is a prioritized synthesis of attacks and anomalies requiring action.
type Threat struct {
	ID                 string    `json:"id"`
	Severity           string    `json:"severity"`
	Type               string    `json:"type"` // immediate_threat, persistent_threat
	Source             string    `json:"source"`
	Description        string    `json:"description"`
	AttackTypes        []string  `json:"attack_types,omitempty"` // persistent threats only
	BusinessImpact     string    `json:"business_impact"`
	RecommendedActions []string  `json:"recommended_actions"`
	Timestamp          time.Time `json:"timestamp"`
}

// Recommendation is a suggested defensive action with priority and rationale.
type Recommendation struct {
	ID                    string                 `json:"id"`
	Type                  string                 `json:"type"`
	Priority              string                 `json:"priority"`
	Action                string                 `json:"action"`
	Description           string                 `json:"description"`
	Parameters            map[string]interface{} `json:"parameters"`
	BusinessJustification string                 `json:"business_justification"`
}

// ReputationUpdate records one score change for a source.
type ReputationUpdate struct {
	OldScore int    `json:"old_score"`
	NewScore int    `json:"new_score"`
	Change   int    `json:"change"`
	Reason   string `json:"reason"`
}

// Statistics summarizes a batch for dashboards and report consumers.
type Statistics struct {
	TotalEvents      int          `json:"total_events"`
	UniqueAttackers  int          `json:"unique_attackers"`
	PortsTargeted    int          `json:"ports_targeted"`
	TopAttacker      *SourceCount `json:"top_attacker,omitempty"`
	MostTargetedPort *PortCount   `json:"most_targeted_port,omitempty"`
	AttackIntensity  string       `json:"attack_intensity"` // None, Unknown, Low, Medium, High, Critical
	ThreatLevel      string       `json:"threat_level"`     // Low, Medium, High, Critical
}

// Report is the result of one analysis pass. The four collections are always
// present, never null; statistics and reputation updates are omitted on the
// error path.
type Report struct {
	ReportID          string                      `json:"report_id"`
	Timestamp         time.Time                   `json:"timestamp"`
	Attacks           []Attack                    `json:"attacks"`
	Anomalies         []Anomaly                   `json:"anomalies"`
	Threats           []Threat                    `json:"threats"`
	Recommendations   []Recommendation            `json:"recommendations"`
	Statistics        *Statistics                 `json:"statistics,omitempty"`
	ReputationUpdates map[string]ReputationUpdate `json:"reputation_updates,omitempty"`
	Error             string                      `json:"error,omitempty"`
}

// MaxSeverity returns the rank of the strongest severity across the report's
// attacks and threats, 0 when the report carries neither.
func (r *Report) MaxSeverity() int {
	max := 0
	for _, attack := range r.Attacks {
		if rank := SeverityRank(attack.Severity); rank > max {
			max = rank
		}
	}
	for _, threat := range r.Threats {
		if rank := SeverityRank(threat.Severity); rank > max {
			max = rank
		}
	}
	return max
}
