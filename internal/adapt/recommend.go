// Package adapt turns analysis results into actionable recommendations:
// honeypot redeployment, firewall blocks, and monitoring focus.
package adapt

import (
	"fmt"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/features"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// Recommendation actions.
const (
	ActionSpawnHoneypots    = "spawn_honeypots"
	ActionBlockIPs          = "block_ips"
	ActionEnhanceMonitoring = "enhance_monitoring"
)

// Trigger cutoffs.
const (
	blockFrequencyCutoff  = 20
	monitorPortsCutoff    = 10
	monitorFocusPorts     = 5
	monitorAlertThreshold = 10
	maxSpawnCount         = 5
)

// criticalPorts are the service ports honeypot coverage should track first,
// in priority order.
var criticalPorts = []int{22, 21, 80, 443, 3389, 25, 53, 135, 139, 445}

const maxPrioritizedPorts = 10

// Recommend produces up to three recommendations for a pass: honeypot
// adaptation when any threat fired, firewall blocks for heavy sources, and
// monitoring focus when the port spread is wide.
func Recommend(threatList []model.Threat, fs *features.FeatureSet) []model.Recommendation {
	recommendations := make([]model.Recommendation, 0, 3)

	if len(threatList) > 0 {
		ports := PrioritizePorts(fs.PortFrequency)
		count := len(ports)
		if count > maxSpawnCount {
			count = maxSpawnCount
		}
		recommendations = append(recommendations, model.Recommendation{
			ID:          recommendationID(ActionSpawnHoneypots, fmt.Sprint(ports)),
			Type:        "adapt",
			Priority:    model.SeverityHigh,
			Action:      ActionSpawnHoneypots,
			Description: "Deploy additional honeypots on targeted ports",
			Parameters: map[string]interface{}{
				"ports":    ports,
				"services": []string{"ssh", "web", "ftp"},
				"count":    count,
			},
			BusinessJustification: "Increase attack visibility and threat intelligence gathering",
		})
	}

	var heavySources []string
	for _, entry := range fs.SourceFrequency {
		if entry.Count > blockFrequencyCutoff {
			heavySources = append(heavySources, entry.Source)
		}
	}
	if len(heavySources) > 0 {
		recommendations = append(recommendations, model.Recommendation{
			ID:          recommendationID(ActionBlockIPs, fmt.Sprint(heavySources)),
			Type:        "security_policy",
			Priority:    model.SeverityCritical,
			Action:      ActionBlockIPs,
			Description: "Block persistent attackers at firewall level",
			Parameters: map[string]interface{}{
				"ips":      heavySources,
				"duration": "permanent",
				"scope":    "all_services",
			},
			BusinessJustification: "Prevent resource exhaustion and reduce attack surface",
		})
	}

	if fs.UniquePorts > monitorPortsCutoff {
		focus := make([]int, 0, monitorFocusPorts)
		for _, entry := range fs.PortFrequency {
			if len(focus) == monitorFocusPorts {
				break
			}
			focus = append(focus, entry.Port)
		}
		recommendations = append(recommendations, model.Recommendation{
			ID:          recommendationID(ActionEnhanceMonitoring, fmt.Sprint(focus)),
			Type:        "monitoring",
			Priority:    model.SeverityMedium,
			Action:      ActionEnhanceMonitoring,
			Description: "Increase monitoring on frequently targeted ports",
			Parameters: map[string]interface{}{
				"focus_ports":     focus,
				"alert_threshold": monitorAlertThreshold,
			},
			BusinessJustification: "Early warning system for targeted attacks",
		})
	}

	return recommendations
}

// PrioritizePorts picks the ports worth extra honeypot coverage: critical
// service ports seen more than 5 times, then any other observed port seen more
// than 10 times, capped at ten.
func PrioritizePorts(portFrequency []model.PortCount) []int {
	counts := make(map[int]int, len(portFrequency))
	for _, entry := range portFrequency {
		counts[entry.Port] = entry.Count
	}

	prioritized := make([]int, 0, maxPrioritizedPorts)
	seen := make(map[int]struct{})
	for _, port := range criticalPorts {
		if counts[port] > 5 {
			prioritized = append(prioritized, port)
			seen[port] = struct{}{}
		}
	}
	for _, entry := range portFrequency {
		if _, dup := seen[entry.Port]; dup {
			continue
		}
		if entry.Count > 10 {
			prioritized = append(prioritized, entry.Port)
			seen[entry.Port] = struct{}{}
		}
	}

	if len(prioritized) > maxPrioritizedPorts {
		prioritized = prioritized[:maxPrioritizedPorts]
	}
	return prioritized
}

func recommendationID(action, params string) string {
	return action + "_" + model.ContentID(action, params)
}
