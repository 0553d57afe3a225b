package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/campusintel/placement-engine/internal/types"
)

// Confidence grades how decisive a predicted probability is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// featureNames fixes the feature vector layout. Order matters everywhere:
// extraction, normalization, and importance reporting all index by it.
var featureNames = []string{
	"cgpa",
	"credibility_score",
	"communication_score",
	"risk_score",
	"skill_match_ratio",
	"mock_interview_score",
}

const (
	numFeatures = 6
	stdFloor    = 1e-3

	defaultEpochs       = 100
	defaultLearningRate = 0.01
	minTrainingSamples  = 4
)

// TrainingSample is one labeled historical placement.
type TrainingSample struct {
	Features []float64
	Selected bool
}

// Prediction is an advisory success probability. It never overrides a match
// decision.
type Prediction struct {
	Probability float64    `json:"probability"`
	Confidence  Confidence `json:"confidence"`
	Trained     bool       `json:"trained"`
}

// TrainingReport summarizes one training run.
type TrainingReport struct {
	Samples       int     `json:"samples"`
	Epochs        int     `json:"epochs"`
	LearningRate  float64 `json:"learning_rate"`
	FinalLoss     float64 `json:"final_loss"`
	PositiveShare float64 `json:"positive_share"`
}

// Predictor is a from-scratch logistic-regression model over placement
// features. Weight initialization draws from the injected random source, so a
// fixed seed reproduces a training run exactly. Safe for concurrent use.
type Predictor struct {
	mu sync.RWMutex

	weights []float64
	bias    float64
	means   []float64
	stds    []float64
	trained bool

	epochs       int
	learningRate float64
	rng          *rand.Rand
}

// NewPredictor creates an untrained predictor with default hyperparameters.
func NewPredictor(rng *rand.Rand) *Predictor {
	return &Predictor{
		epochs:       defaultEpochs,
		learningRate: defaultLearningRate,
		rng:          rng,
	}
}

// Features extracts the model's feature vector from one evaluated candidate.
func Features(candidate types.CandidateProfile, cred CredibilityResult, risk RiskResult, skillMatchRatio float64) []float64 {
	return []float64{
		candidate.CGPA,
		cred.Score,
		float64(candidate.CommunicationScore),
		float64(risk.Score),
		skillMatchRatio,
		float64(candidate.MockInterviewScore),
	}
}

// TrainingSet builds labeled samples from the outcome log. Records whose
// candidate or job is missing from the supplied collections are skipped.
func (e *Engine) TrainingSet(jobs map[string]types.JobPosting) []TrainingSample {
	var samples []TrainingSample
	for _, o := range e.hist.Outcomes() {
		candidate, ok := e.hist.Candidate(o.CandidateID)
		if !ok {
			continue
		}
		job, ok := jobs[o.JobID]
		if !ok {
			continue
		}
		cred := ScoreCredibility(candidate.Skills)
		risk := AssessRisk(candidate, job, e.hist, cred)
		ratio := SkillMatchRatio(candidate, job.Eligibility.MandatorySkills)
		samples = append(samples, TrainingSample{
			Features: Features(candidate, cred, risk, ratio),
			Selected: o.Result == types.OutcomeSelected,
		})
	}
	return samples
}

// Train fits the model with per-sample gradient descent over a fixed epoch
// count. Features are z-score normalized using training-set statistics, which
// are retained for inference.
func (p *Predictor) Train(samples []TrainingSample) (TrainingReport, error) {
	if len(samples) < minTrainingSamples {
		return TrainingReport{}, fmt.Errorf("need at least %d training samples, got %d", minTrainingSamples, len(samples))
	}
	for i, s := range samples {
		if len(s.Features) != numFeatures {
			return TrainingReport{}, fmt.Errorf("sample %d has %d features, want %d", i, len(s.Features), numFeatures)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.means, p.stds = featureStats(samples)

	p.weights = make([]float64, numFeatures)
	for i := range p.weights {
		p.weights[i] = -0.1 + p.rng.Float64()*0.2
	}
	p.bias = 0

	positives := 0
	var finalLoss float64
	for epoch := 0; epoch < p.epochs; epoch++ {
		finalLoss = 0
		for _, s := range samples {
			x := p.normalize(s.Features)
			label := 0.0
			if s.Selected {
				label = 1.0
			}
			pred := sigmoid(p.bias + dot(p.weights, x))
			grad := pred - label
			for j := range p.weights {
				p.weights[j] -= p.learningRate * grad * x[j]
			}
			p.bias -= p.learningRate * grad
			finalLoss += logLoss(pred, label)
		}
	}
	finalLoss /= float64(len(samples))
	for _, s := range samples {
		if s.Selected {
			positives++
		}
	}
	p.trained = true

	return TrainingReport{
		Samples:       len(samples),
		Epochs:        p.epochs,
		LearningRate:  p.learningRate,
		FinalLoss:     finalLoss,
		PositiveShare: float64(positives) / float64(len(samples)),
	}, nil
}

// Predict returns the success probability for a feature vector. Before any
// training it falls back to a fixed weighted heuristic clipped to
// [0.05, 0.95] so downstream consumers always get a usable probability.
func (p *Predictor) Predict(features []float64) (Prediction, error) {
	if len(features) != numFeatures {
		return Prediction{}, fmt.Errorf("feature vector has %d entries, want %d", len(features), numFeatures)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.trained {
		prob := 0.20*features[0]/10 +
			0.25*features[1] +
			0.20*features[2]/10 +
			0.15*(1-features[3]/10) +
			0.20*features[4]
		prob = clampf(prob, 0.05, 0.95)
		return Prediction{Probability: prob, Confidence: confidence(prob)}, nil
	}

	prob := sigmoid(p.bias + dot(p.weights, p.normalize(features)))
	return Prediction{Probability: prob, Confidence: confidence(prob), Trained: true}, nil
}

// Trained reports whether the model has been fit.
func (p *Predictor) Trained() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.trained
}

// FeatureImportance returns each feature's share of total absolute weight.
// Shares sum to 1; an untrained or degenerate model reports uniform shares.
func (p *Predictor) FeatureImportance() map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]float64, numFeatures)
	total := 0.0
	if p.trained {
		for _, w := range p.weights {
			total += math.Abs(w)
		}
	}
	if total == 0 {
		for _, name := range featureNames {
			out[name] = 1.0 / numFeatures
		}
		return out
	}
	for i, name := range featureNames {
		out[name] = math.Abs(p.weights[i]) / total
	}
	return out
}

func (p *Predictor) normalize(features []float64) []float64 {
	out := make([]float64, numFeatures)
	for i, v := range features {
		out[i] = (v - p.means[i]) / p.stds[i]
	}
	return out
}

func featureStats(samples []TrainingSample) (means, stds []float64) {
	means = make([]float64, numFeatures)
	stds = make([]float64, numFeatures)
	n := float64(len(samples))
	for _, s := range samples {
		for i, v := range s.Features {
			means[i] += v
		}
	}
	for i := range means {
		means[i] /= n
	}
	for _, s := range samples {
		for i, v := range s.Features {
			d := v - means[i]
			stds[i] += d * d
		}
	}
	for i := range stds {
		stds[i] = math.Sqrt(stds[i] / n)
		if stds[i] < stdFloor {
			stds[i] = stdFloor
		}
	}
	return means, stds
}

func confidence(p float64) Confidence {
	switch {
	case p <= 0.25 || p >= 0.75:
		return ConfidenceHigh
	case p <= 0.4 || p >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// sigmoid clamps its argument so extreme logits cannot overflow.
func sigmoid(z float64) float64 {
	if z > 500 {
		z = 500
	} else if z < -500 {
		z = -500
	}
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func logLoss(pred, label float64) float64 {
	const eps = 1e-12
	pred = clampf(pred, eps, 1-eps)
	return -(label*math.Log(pred) + (1-label)*math.Log(1-pred))
}
