package classify

// Stats summarizes a slice of classification results for dashboards and the
// stats endpoint.
type Stats struct {
	TotalClassified        int            `json:"total_classified"`
	AttackDistribution     map[string]int `json:"attack_distribution"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
	MethodUsage            map[string]int `json:"method_usage"`
	HighConfidenceAttacks  int            `json:"high_confidence_attacks"`
}

// Summarize buckets results by attack type, confidence band (high > 0.8,
// medium > 0.5, low otherwise), and method.
func Summarize(results []Result) Stats {
	stats := Stats{
		TotalClassified:        len(results),
		AttackDistribution:     make(map[string]int),
		ConfidenceDistribution: make(map[string]int),
		MethodUsage:            make(map[string]int),
	}

	for _, result := range results {
		stats.AttackDistribution[result.AttackType]++
		stats.MethodUsage[result.Method]++

		bucket := "low"
		switch {
		case result.Confidence > 0.8:
			bucket = "high"
		case result.Confidence > 0.5:
			bucket = "medium"
		}
		stats.ConfidenceDistribution[bucket]++

		if result.Confidence > 0.8 {
			stats.HighConfidenceAttacks++
		}
	}

	return stats
}
