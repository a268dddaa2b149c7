package engine

import (
	"fmt"
	"time"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/classify"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/intel"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// highSeverityFrequency is the per-source batch event count above which an
// aggregated attack is marked high severity.
const highSeverityFrequency = 50

type groupKey struct {
	source     string
	attackType string
}

// aggregateAttacks folds per-event attack classifications into one Attack per
// (source, type) pair, in first-encounter order. Results without a source
// address cannot be attributed and are skipped.
func aggregateAttacks(results []classify.Result, intelSet *intel.Set, now time.Time) []model.Attack {
	sourceTotals := make(map[string]int)
	sourcePorts := make(map[string]map[int]struct{})
	for _, result := range results {
		source := result.Event.SourceIP
		if source == "" {
			continue
		}
		sourceTotals[source]++
		if result.Event.DstPort != 0 {
			ports, ok := sourcePorts[source]
			if !ok {
				ports = make(map[int]struct{})
				sourcePorts[source] = ports
			}
			ports[result.Event.DstPort] = struct{}{}
		}
	}

	groups := make(map[groupKey]*model.Attack)
	var order []groupKey
	for i := range results {
		result := &results[i]
		if !result.IsAttack() || result.Event.SourceIP == "" {
			continue
		}
		key := groupKey{source: result.Event.SourceIP, attackType: result.AttackType}
		attack, ok := groups[key]
		if !ok {
			attack = &model.Attack{
				ID:        model.ContentID(key.source, key.attackType),
				Type:      key.attackType,
				SourceIP:  key.source,
				Timestamp: now,
			}
			groups[key] = attack
			order = append(order, key)
		}
		attack.Indicators.EventCount++
		if result.Confidence > attack.Confidence {
			attack.Confidence = result.Confidence
		}
	}

	attacks := make([]model.Attack, 0, len(order))
	for _, key := range order {
		attack := groups[key]
		attack.Severity = model.SeverityMedium
		if sourceTotals[key.source] > highSeverityFrequency {
			attack.Severity = model.SeverityHigh
		}
		attack.Indicators.PortsTargeted = len(sourcePorts[key.source])
		attack.Indicators.KnownMalicious = intelSet != nil && intelSet.Contains(key.source)
		attack.Description = attackDescription(key.attackType, key.source, attack.Indicators)
		attacks = append(attacks, *attack)
	}
	return attacks
}

func attackDescription(attackType, source string, indicators model.AttackIndicators) string {
	switch attackType {
	case model.AttackBruteForce:
		return fmt.Sprintf("Brute force attack detected from %s (%d attempts)", source, indicators.EventCount)
	case model.AttackPortScan:
		return fmt.Sprintf("Port scanning detected from %s (%d ports)", source, indicators.PortsTargeted)
	case model.AttackWebAttack:
		return fmt.Sprintf("Web attack detected from %s (%d requests)", source, indicators.EventCount)
	case model.AttackDDoS:
		return fmt.Sprintf("DDoS activity detected from %s (%d events)", source, indicators.EventCount)
	case model.AttackMalware:
		return fmt.Sprintf("Malware activity detected from %s (%d events)", source, indicators.EventCount)
	default:
		return fmt.Sprintf("%s attack detected from %s (%d events)", attackType, source, indicators.EventCount)
	}
}
