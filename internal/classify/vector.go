package classify

import (
	"sort"
	"strings"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// featureCount is the width of the statistical feature vector:
// frequency, port diversity, payload size, time variance, error rate.
const featureCount = 5

// errorTokens mark a message as error-ish for the error-rate feature.
var errorTokens = []string{"fail", "error", "invalid", "denied", "refused", "timeout"}

// BatchContext carries per-source aggregates of the batch under analysis so
// the statistical stage can score an event against its surrounding traffic
// rather than in isolation.
type BatchContext struct {
	frequency     map[string]int
	portDiversity map[string]int
	meanGap       map[string]float64
	errorRate     map[string]float64
}

// NewBatchContext precomputes the per-source aggregates for a batch.
func NewBatchContext(events []model.Event) *BatchContext {
	ctx := &BatchContext{
		frequency:     make(map[string]int),
		portDiversity: make(map[string]int),
		meanGap:       make(map[string]float64),
		errorRate:     make(map[string]float64),
	}

	ports := make(map[string]map[int]struct{})
	times := make(map[string][]float64)
	errorish := make(map[string]int)

	for _, event := range events {
		source := event.SourceIP
		if source == "" {
			continue
		}
		ctx.frequency[source]++
		if event.DstPort != 0 {
			set, ok := ports[source]
			if !ok {
				set = make(map[int]struct{})
				ports[source] = set
			}
			set[event.DstPort] = struct{}{}
		}
		if event.HasTimestamp() {
			times[source] = append(times[source], float64(event.Timestamp.UnixNano())/1e9)
		}
		if isErrorish(event.Message) {
			errorish[source]++
		}
	}

	for source, set := range ports {
		ctx.portDiversity[source] = len(set)
	}
	for source, stamps := range times {
		ctx.meanGap[source] = meanGapSeconds(stamps)
	}
	for source, count := range ctx.frequency {
		ctx.errorRate[source] = float64(errorish[source]) / float64(count)
	}

	return ctx
}

// Vector derives the statistical feature vector for an event. With a batch
// context the vector reflects the source's batch-wide behavior; without one
// it falls back to single-event defaults.
func (b *BatchContext) Vector(event model.Event) [featureCount]float64 {
	frequency := 1.0
	diversity := 1.0
	timeVariance := 30.0
	errorRate := 0.05
	if strings.Contains(strings.ToLower(event.Message), "error") {
		errorRate = 0.1
	}

	if b != nil && event.SourceIP != "" {
		if n, ok := b.frequency[event.SourceIP]; ok && n > 0 {
			frequency = float64(n)
		}
		if d, ok := b.portDiversity[event.SourceIP]; ok && d > 0 {
			diversity = float64(d)
		}
		if gap, ok := b.meanGap[event.SourceIP]; ok {
			timeVariance = gap
		} else {
			timeVariance = 60.0
		}
		if rate, ok := b.errorRate[event.SourceIP]; ok {
			errorRate = rate
		}
	}

	return [featureCount]float64{
		frequency,
		diversity,
		float64(len(event.Message)),
		timeVariance,
		errorRate,
	}
}

// meanGapSeconds averages the gaps between successive timestamps; fewer than
// two timestamps yields the 60s default.
func meanGapSeconds(stamps []float64) float64 {
	if len(stamps) < 2 {
		return 60.0
	}
	sort.Float64s(stamps)
	total := 0.0
	for i := 1; i < len(stamps); i++ {
		total += stamps[i] - stamps[i-1]
	}
	return total / float64(len(stamps)-1)
}

func isErrorish(message string) bool {
	if message == "" {
		return false
	}
	lowered := strings.ToLower(message)
	for _, token := range errorTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}
