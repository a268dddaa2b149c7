// Package classify implements the hybrid attack classifier: a rule stage
// matching signature patterns against event messages, backed by a statistical
// model consulted when the rules are unsure.
package classify

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// Classification methods.
const (
	MethodRule        = "rule_based"
	MethodStatistical = "statistical"
	MethodError       = "error"
)

// ruleConfidenceCeiling is the rule-stage confidence above which the
// statistical backup is never consulted.
const ruleConfidenceCeiling = 0.7

// Result is the verdict for a single event.
type Result struct {
	AttackType        string                 `json:"attack_type"`
	Confidence        float64                `json:"confidence"` // 0.0 to 1.0
	Method            string                 `json:"method"`     // rule_based, statistical, error
	MatchedSignatures []string               `json:"matched_signatures,omitempty"`
	Indicators        map[string]interface{} `json:"indicators,omitempty"`
	Event             model.Event            `json:"event"`
}

// IsAttack reports whether the result names a concrete attack type.
func (r *Result) IsAttack() bool {
	return r.AttackType != model.AttackNormal && r.AttackType != model.AttackUnknown
}

// Classifier combines the signature rules with the statistical backup model.
// It is immutable once signatures and model are loaded; Classify is safe for
// concurrent use after that point.
type Classifier struct {
	logger     *slog.Logger
	signatures []signatureSet
	extraKinds []string
	model      *gaussianModel
}

// New builds a classifier with the default signatures and a freshly trained
// statistical model.
func New(logger *slog.Logger) (*Classifier, error) {
	sets, err := compileSignatures(defaultSignatures, nil)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		logger:     logger,
		signatures: sets,
		model:      trainGaussianModel(),
	}, nil
}

// Classify runs the rule stage and, when its confidence is at or below the
// ceiling and the message is non-empty, the statistical backup. The stage
// with strictly higher confidence wins; the rule stage wins ties. Any
// internal fault degrades to an unknown/zero-confidence result.
func (c *Classifier) Classify(event model.Event, batch *BatchContext) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("Classifier fault, degrading to unknown", "panic", r, "src_ip", event.SourceIP)
			result = Result{
				AttackType: model.AttackUnknown,
				Confidence: 0.0,
				Method:     MethodError,
				Event:      event,
			}
		}
	}()

	ruleResult := c.ruleClassify(event)

	if ruleResult.Confidence > ruleConfidenceCeiling {
		return ruleResult
	}
	// Without a message there is nothing for the statistical stage to score.
	if strings.TrimSpace(event.Message) == "" {
		return ruleResult
	}

	class, confidence, probs := c.model.Predict(batch.Vector(event))
	if confidence > ruleResult.Confidence {
		return Result{
			AttackType: class,
			Confidence: confidence,
			Method:     MethodStatistical,
			Indicators: map[string]interface{}{"probabilities": probs},
			Event:      event,
		}
	}

	return ruleResult
}

// ClassifyBatch classifies every event against the batch's own context,
// preserving input order.
func (c *Classifier) ClassifyBatch(events []model.Event) []Result {
	batch := NewBatchContext(events)
	results := make([]Result, 0, len(events))
	for _, event := range events {
		results = append(results, c.Classify(event, batch))
	}
	return results
}

// ruleClassify scores every signature set against the message and keeps the
// best kind. Matched patterns accumulate across all kinds, not just the
// winner's.
func (c *Classifier) ruleClassify(event model.Event) Result {
	detected := model.AttackNormal
	maxConfidence := 0.0
	var matched []string

	for _, set := range c.signatures {
		patternsMatched := 0
		for i, re := range set.patterns {
			if re.MatchString(event.Message) {
				patternsMatched++
				matched = append(matched, set.raw[i])
			}
		}
		if patternsMatched == 0 {
			continue
		}

		confidence := float64(patternsMatched)/float64(len(set.patterns)) + 0.3
		if confidence > 0.9 {
			confidence = 0.9
		}
		confidence += portBoost(set.attackType, event.DstPort)
		if confidence > 1.0 {
			confidence = 1.0
		}

		if confidence > maxConfidence {
			maxConfidence = confidence
			detected = set.attackType
		}
	}

	return Result{
		AttackType:        detected,
		Confidence:        maxConfidence,
		Method:            MethodRule,
		MatchedSignatures: matched,
		Indicators:        ruleIndicators(event, detected),
		Event:             event,
	}
}

// UpdateSignatures merges extra patterns into the signature table: patterns
// for known kinds append to the existing set, unknown kinds are appended
// after the fixed five in sorted name order.
func (c *Classifier) UpdateSignatures(extra map[string][]string) error {
	merged := make(map[string][]string, len(defaultSignatures)+len(extra))
	for _, set := range c.signatures {
		merged[set.attackType] = append([]string(nil), set.raw...)
	}

	extraKinds := append([]string(nil), c.extraKinds...)
	for _, attackType := range sortedKeys(extra) {
		patterns := extra[attackType]
		if len(patterns) == 0 {
			continue
		}
		if _, known := merged[attackType]; !known && !isFixedKind(attackType) && !contains(extraKinds, attackType) {
			extraKinds = append(extraKinds, attackType)
		}
		merged[attackType] = append(merged[attackType], patterns...)
	}

	sets, err := compileSignatures(merged, extraKinds)
	if err != nil {
		return err
	}
	c.signatures = sets
	c.extraKinds = extraKinds
	return nil
}

// SignatureCount returns the total number of loaded patterns.
func (c *Classifier) SignatureCount() int {
	total := 0
	for _, set := range c.signatures {
		total += len(set.patterns)
	}
	return total
}

// ModelState exports the trained model parameters for persistence.
func (c *Classifier) ModelState() State {
	return c.model.state()
}

// RestoreModel replaces the trained model with persisted parameters.
func (c *Classifier) RestoreModel(state State) error {
	restored, err := modelFromState(state)
	if err != nil {
		return err
	}
	c.model = restored
	return nil
}

func isFixedKind(attackType string) bool {
	return contains(kindOrder, attackType)
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
