package classify

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// Training constants. The seed fixes the synthetic draw so a persisted model
// and a freshly trained one carry identical parameters.
const (
	trainingSeed    = 42
	samplesPerClass = 200
	stateVersion    = 1
)

// zClamp caps per-feature z-scores during scoring so one wildly out-of-range
// feature cannot drown the remaining four.
const zClamp = 3.0

// trainingSpec defines the synthetic per-class distributions over
// [frequency, port diversity, payload size, time variance, error rate].
var trainingSpec = []struct {
	class   string
	means   [featureCount]float64
	stddevs [featureCount]float64
}{
	{model.AttackBruteForce, [featureCount]float64{50, 2, 100, 10, 0.8}, [featureCount]float64{10, 1, 50, 5, 0.1}},
	{model.AttackPortScan, [featureCount]float64{20, 15, 50, 5, 0.9}, [featureCount]float64{5, 5, 20, 2, 0.05}},
	{model.AttackWebAttack, [featureCount]float64{10, 3, 500, 20, 0.4}, [featureCount]float64{3, 1, 200, 10, 0.2}},
	{model.AttackDDoS, [featureCount]float64{1000, 5, 200, 2, 0.1}, [featureCount]float64{200, 2, 100, 1, 0.05}},
	{model.AttackNormal, [featureCount]float64{5, 2, 300, 60, 0.05}, [featureCount]float64{2, 1, 100, 30, 0.02}},
}

// ClassParams holds the fitted gaussian parameters for one class.
type ClassParams struct {
	Class   string                `json:"class"`
	Means   [featureCount]float64 `json:"means"`
	Stddevs [featureCount]float64 `json:"stddevs"`
}

// State is the serializable form of a trained statistical model.
type State struct {
	Version int           `json:"version"`
	Classes []ClassParams `json:"classes"`
}

// gaussianModel scores feature vectors against per-class gaussian parameters.
// Parameters are immutable after construction.
type gaussianModel struct {
	classes []ClassParams
}

// trainGaussianModel draws the seeded synthetic samples per class and fits
// mean and standard deviation back from them.
func trainGaussianModel() *gaussianModel {
	rng := rand.New(rand.NewSource(trainingSeed))
	classes := make([]ClassParams, 0, len(trainingSpec))

	for _, spec := range trainingSpec {
		samples := make([][featureCount]float64, samplesPerClass)
		for i := range samples {
			for f := 0; f < featureCount; f++ {
				samples[i][f] = spec.means[f] + rng.NormFloat64()*spec.stddevs[f]
			}
		}
		classes = append(classes, fitClass(spec.class, samples))
	}

	return &gaussianModel{classes: classes}
}

// fitClass computes sample mean and stddev per feature.
func fitClass(class string, samples [][featureCount]float64) ClassParams {
	params := ClassParams{Class: class}
	n := float64(len(samples))

	for f := 0; f < featureCount; f++ {
		sum := 0.0
		for _, sample := range samples {
			sum += sample[f]
		}
		mean := sum / n

		variance := 0.0
		for _, sample := range samples {
			diff := sample[f] - mean
			variance += diff * diff
		}

		params.Means[f] = mean
		params.Stddevs[f] = math.Sqrt(variance / n)
	}

	return params
}

// Predict returns the most likely class, its confidence, and the full
// per-class probability map. Confidence is the softmax of clamped per-class
// log-likelihoods under uniform priors.
func (m *gaussianModel) Predict(vector [featureCount]float64) (string, float64, map[string]float64) {
	scores := make([]float64, len(m.classes))
	maxScore := math.Inf(-1)

	for i, class := range m.classes {
		ll := 0.0
		for f := 0; f < featureCount; f++ {
			sigma := class.Stddevs[f]
			if sigma < 1e-9 {
				sigma = 1e-9
			}
			z := (vector[f] - class.Means[f]) / sigma
			if z > zClamp {
				z = zClamp
			} else if z < -zClamp {
				z = -zClamp
			}
			ll += -0.5*z*z - math.Log(sigma)
		}
		scores[i] = ll
		if ll > maxScore {
			maxScore = ll
		}
	}

	total := 0.0
	probs := make(map[string]float64, len(m.classes))
	for i, class := range m.classes {
		p := math.Exp(scores[i] - maxScore)
		probs[class.Class] = p
		total += p
	}

	// Ties resolve to the earlier class in training order.
	best := ""
	bestProb := 0.0
	for _, class := range m.classes {
		p := probs[class.Class] / total
		probs[class.Class] = p
		if best == "" || p > bestProb {
			best = class.Class
			bestProb = p
		}
	}

	return best, bestProb, probs
}

// state exports the model parameters for persistence.
func (m *gaussianModel) state() State {
	classes := make([]ClassParams, len(m.classes))
	copy(classes, m.classes)
	return State{Version: stateVersion, Classes: classes}
}

// modelFromState validates persisted parameters and rebuilds the model.
func modelFromState(state State) (*gaussianModel, error) {
	if state.Version != stateVersion {
		return nil, fmt.Errorf("unsupported model state version %d", state.Version)
	}
	if len(state.Classes) == 0 {
		return nil, fmt.Errorf("model state has no classes")
	}
	for _, class := range state.Classes {
		if class.Class == "" {
			return nil, fmt.Errorf("model state has an unnamed class")
		}
		for f := 0; f < featureCount; f++ {
			if class.Stddevs[f] <= 0 {
				return nil, fmt.Errorf("model state class %s has non-positive stddev", class.Class)
			}
		}
	}
	classes := make([]ClassParams, len(state.Classes))
	copy(classes, state.Classes)
	return &gaussianModel{classes: classes}, nil
}
