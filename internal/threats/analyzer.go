// Package threats synthesizes prioritized threat records from aggregated
// attacks: immediate threats for every high-severity attack, persistent
// threats for sources running more than one attack type.
package threats

import (
	"fmt"
	"time"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// businessImpact maps attack kinds to their assessed impact on a small
// business deployment.
var businessImpact = map[string]string{
	model.AttackBruteForce: "Medium - Potential service disruption and credential compromise",
	model.AttackPortScan:   "Low - Reconnaissance activity, may precede actual attack",
	model.AttackWebAttack:  "High - Direct threat to web services and data",
	model.AttackMalware:    "Critical - System compromise and data breach risk",
}

const unknownImpact = "Unknown impact"

// recommendedActions maps attack kinds to their response playbook.
var recommendedActions = map[string][]string{
	model.AttackBruteForce: {
		"Change default passwords immediately",
		"Enable account lockout policies",
		"Consider IP blocking",
		"Review access logs",
	},
	model.AttackPortScan: {
		"Close unnecessary open ports",
		"Enable firewall logging",
		"Monitor for follow-up attacks",
		"Review network segmentation",
	},
	model.AttackWebAttack: {
		"Update web application",
		"Enable WAF protection",
		"Review application logs",
		"Patch known vulnerabilities",
	},
}

var defaultActions = []string{"Review security policies", "Monitor closely"}

var persistentActions = []string{
	"Block IP immediately",
	"Review security policies",
	"Monitor related IPs",
}

// Analyze derives threats from aggregated attacks: immediate threats first in
// attack order, then persistent threats in source encounter order.
func Analyze(attacks []model.Attack, now time.Time) []model.Threat {
	threats := make([]model.Threat, 0)

	for _, attack := range attacks {
		if attack.Severity != model.SeverityHigh {
			continue
		}
		threats = append(threats, model.Threat{
			ID:                 "threat_" + attack.ID,
			Severity:           model.SeverityCritical,
			Type:               model.ThreatImmediate,
			Source:             attack.SourceIP,
			Description:        fmt.Sprintf("Critical %s attack requires immediate attention", attack.Type),
			BusinessImpact:     impactFor(attack.Type),
			RecommendedActions: actionsFor(attack.Type),
			Timestamp:          now,
		})
	}

	threats = append(threats, persistentThreats(attacks, now)...)
	return threats
}

// persistentThreats flags every source running more than one attack type.
func persistentThreats(attacks []model.Attack, now time.Time) []model.Threat {
	bySource := make(map[string][]string)
	var sourceOrder []string
	for _, attack := range attacks {
		if _, seen := bySource[attack.SourceIP]; !seen {
			sourceOrder = append(sourceOrder, attack.SourceIP)
		}
		bySource[attack.SourceIP] = append(bySource[attack.SourceIP], attack.Type)
	}

	var threats []model.Threat
	for _, source := range sourceOrder {
		attackTypes := bySource[source]
		if len(attackTypes) <= 1 {
			continue
		}
		threats = append(threats, model.Threat{
			ID:                 "persistent_" + model.ContentID(source),
			Severity:           model.SeverityHigh,
			Type:               model.ThreatPersistent,
			Source:             source,
			Description:        fmt.Sprintf("Persistent attacker using multiple techniques (%d attack types)", len(attackTypes)),
			AttackTypes:        attackTypes,
			BusinessImpact:     "High - Targeted attack likely",
			RecommendedActions: append([]string(nil), persistentActions...),
			Timestamp:          now,
		})
	}
	return threats
}

func impactFor(attackType string) string {
	if impact, ok := businessImpact[attackType]; ok {
		return impact
	}
	return unknownImpact
}

func actionsFor(attackType string) []string {
	if actions, ok := recommendedActions[attackType]; ok {
		return append([]string(nil), actions...)
	}
	return append([]string(nil), defaultActions...)
}
