package classify

import (
	"strings"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

var commonPasswords = []string{
	"password", "123456", "admin", "root", "guest",
	"user", "test", "default", "pass", "12345",
}

// ruleIndicators extracts kind-specific evidence markers from the message
// for the detected attack type. Normal traffic carries no indicators.
func ruleIndicators(event model.Event, attackType string) map[string]interface{} {
	message := strings.ToLower(event.Message)

	switch attackType {
	case model.AttackBruteForce:
		return map[string]interface{}{
			"failed_login":         strings.Contains(message, "failed") || strings.Contains(message, "invalid"),
			"common_passwords":     containsCommonPassword(message),
			"username_enumeration": strings.Contains(message, "user"),
		}
	case model.AttackPortScan:
		return map[string]interface{}{
			"connection_refused": strings.Contains(message, "refused") || strings.Contains(message, "closed"),
			"stealth_scan":       strings.Contains(message, "syn"),
			"port":               event.DstPort,
		}
	case model.AttackWebAttack:
		return map[string]interface{}{
			"sql_injection":     containsAny(message, "select", "union", "where", "drop"),
			"xss_attempt":       strings.Contains(message, "<script") || strings.Contains(message, "javascript:"),
			"path_traversal":    strings.Contains(message, "../"),
			"command_injection": containsAny(message, "cmd=", "exec", "system"),
		}
	case model.AttackDDoS:
		return map[string]interface{}{
			"resource_exhaustion": strings.Contains(message, "timeout") || strings.Contains(message, "limit"),
		}
	}

	return nil
}

func containsCommonPassword(message string) bool {
	return containsAny(message, commonPasswords...)
}

func containsAny(message string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
