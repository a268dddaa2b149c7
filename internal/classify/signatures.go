package classify

import (
	"fmt"
	"regexp"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// kindOrder fixes rule-stage iteration; earlier kinds win confidence ties.
var kindOrder = []string{
	model.AttackBruteForce,
	model.AttackPortScan,
	model.AttackWebAttack,
	model.AttackDDoS,
	model.AttackMalware,
}

// defaultSignatures are the built-in message patterns per attack type,
// matched case-insensitively against the event message.
var defaultSignatures = map[string][]string{
	model.AttackBruteForce: {
		`failed password for`,
		`authentication failure`,
		`invalid user`,
	},
	model.AttackPortScan: {
		`connection attempt.*refused`,
		`syn flood detected`,
		`port scan detected`,
		`multiple connection attempts`,
	},
	model.AttackWebAttack: {
		`get.*\.\./\.\.`,
		`select.*from.*where`,
		`<script.*>.*</script>`,
		`union.*select`,
		`eval\(`,
		`cmd=.*&`,
	},
	model.AttackDDoS: {
		`syn flood`,
		`udp flood`,
		`connection flood`,
		`rate limit exceeded`,
	},
	model.AttackMalware: {
		`known malware signature`,
		`suspicious file upload`,
		`backdoor detected`,
		`trojan activity`,
	},
}

// signatureSet couples one attack type's compiled patterns with their sources.
type signatureSet struct {
	attackType string
	raw        []string
	patterns   []*regexp.Regexp
}

// compileSignatures builds the ordered signature sets: the five fixed kinds
// first, then any extra kinds in the given order.
func compileSignatures(byKind map[string][]string, extraOrder []string) ([]signatureSet, error) {
	order := make([]string, 0, len(byKind))
	order = append(order, kindOrder...)
	order = append(order, extraOrder...)

	sets := make([]signatureSet, 0, len(order))
	for _, attackType := range order {
		raw, ok := byKind[attackType]
		if !ok || len(raw) == 0 {
			continue
		}
		set := signatureSet{attackType: attackType, raw: raw}
		for _, pattern := range raw {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid signature pattern %q for %s: %w", pattern, attackType, err)
			}
			set.patterns = append(set.patterns, re)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// portBoost returns the confidence increment for an attack type when the
// destination port sits in the kind's expected range.
func portBoost(attackType string, port int) float64 {
	switch attackType {
	case model.AttackWebAttack:
		if port == 80 || port == 443 || port == 8080 {
			return 0.1
		}
	case model.AttackBruteForce:
		if port == 22 || port == 21 || port == 3389 {
			return 0.1
		}
	case model.AttackPortScan:
		if port >= 1 && port <= 1023 {
			return 0.05
		}
	}
	return 0
}
