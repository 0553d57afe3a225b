package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusintel/placement-engine/internal/types"
)

// separableSamples builds a linearly separable training set: strong academic
// profiles selected, weak ones not.
func separableSamples(n int) []TrainingSample {
	samples := make([]TrainingSample, 0, n*2)
	for i := 0; i < n; i++ {
		jitter := float64(i%3) * 0.1
		samples = append(samples, TrainingSample{
			Features: []float64{9.0 - jitter, 0.85, 9, 0, 1.0, 9},
			Selected: true,
		})
		samples = append(samples, TrainingSample{
			Features: []float64{6.0 + jitter, 0.25, 4, 6, 0.2, 4},
			Selected: false,
		})
	}
	return samples
}

func TestPredictUntrainedHeuristic(t *testing.T) {
	p := NewPredictor(rand.New(rand.NewSource(1)))

	pred, err := p.Predict([]float64{8.0, 0.8, 8, 2, 1.0, 8})
	require.NoError(t, err)

	// 0.20*0.8 + 0.25*0.8 + 0.20*0.8 + 0.15*0.8 + 0.20*1.0 = 0.84
	assert.InDelta(t, 0.84, pred.Probability, 1e-9)
	assert.False(t, pred.Trained)
	assert.Equal(t, ConfidenceHigh, pred.Confidence)
}

func TestPredictUntrainedClipsToRange(t *testing.T) {
	p := NewPredictor(rand.New(rand.NewSource(1)))

	low, err := p.Predict([]float64{5.0, 0, 1, 10, 0, 1})
	require.NoError(t, err)
	high, err := p.Predict([]float64{9.8, 1, 10, 0, 1, 10})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, low.Probability, 0.05)
	assert.LessOrEqual(t, high.Probability, 0.95)
}

func TestPredictRejectsWrongFeatureCount(t *testing.T) {
	p := NewPredictor(rand.New(rand.NewSource(1)))

	_, err := p.Predict([]float64{1, 2, 3})

	assert.Error(t, err)
}

func TestTrainRejectsBadInput(t *testing.T) {
	p := NewPredictor(rand.New(rand.NewSource(1)))

	_, err := p.Train(separableSamples(1)[:2])
	assert.Error(t, err, "too few samples")

	bad := separableSamples(3)
	bad[0].Features = []float64{1, 2}
	_, err = p.Train(bad)
	assert.Error(t, err, "wrong feature width")
	assert.False(t, p.Trained())
}

func TestTrainSeparatesClasses(t *testing.T) {
	p := NewPredictor(rand.New(rand.NewSource(7)))

	report, err := p.Train(separableSamples(10))
	require.NoError(t, err)

	assert.True(t, p.Trained())
	assert.Equal(t, 20, report.Samples)
	assert.InDelta(t, 0.5, report.PositiveShare, 1e-9)
	assert.Greater(t, report.FinalLoss, 0.0)

	strong, err := p.Predict([]float64{9.2, 0.9, 9, 1, 1.0, 9})
	require.NoError(t, err)
	weak, err := p.Predict([]float64{5.8, 0.2, 3, 7, 0.1, 3})
	require.NoError(t, err)

	assert.Greater(t, strong.Probability, weak.Probability)
	assert.Greater(t, strong.Probability, 0.0)
	assert.Less(t, strong.Probability, 1.0)
	assert.Greater(t, weak.Probability, 0.0)
	assert.Less(t, weak.Probability, 1.0)
	assert.True(t, strong.Trained)
}

func TestFeatureImportanceSumsToOne(t *testing.T) {
	untrained := NewPredictor(rand.New(rand.NewSource(2)))
	trained := NewPredictor(rand.New(rand.NewSource(2)))
	_, err := trained.Train(separableSamples(8))
	require.NoError(t, err)

	for _, p := range []*Predictor{untrained, trained} {
		importance := p.FeatureImportance()
		require.Len(t, importance, numFeatures)
		sum := 0.0
		for _, share := range importance {
			assert.GreaterOrEqual(t, share, 0.0)
			sum += share
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
	}
}

func TestTrainReproducibleWithSameSeed(t *testing.T) {
	samples := separableSamples(6)

	first := NewPredictor(rand.New(rand.NewSource(42)))
	second := NewPredictor(rand.New(rand.NewSource(42)))
	_, err := first.Train(samples)
	require.NoError(t, err)
	_, err = second.Train(samples)
	require.NoError(t, err)

	features := []float64{8.0, 0.7, 7, 2, 0.8, 7}
	p1, err := first.Predict(features)
	require.NoError(t, err)
	p2, err := second.Predict(features)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
}

func TestConfidenceBands(t *testing.T) {
	tests := []struct {
		p        float64
		expected Confidence
	}{
		{p: 0.1, expected: ConfidenceHigh},
		{p: 0.25, expected: ConfidenceHigh},
		{p: 0.9, expected: ConfidenceHigh},
		{p: 0.3, expected: ConfidenceMedium},
		{p: 0.65, expected: ConfidenceMedium},
		{p: 0.5, expected: ConfidenceLow},
		{p: 0.45, expected: ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, confidence(tt.p), "p=%v", tt.p)
	}
}

func TestTrainingSetFromHistory(t *testing.T) {
	candidates := []types.CandidateProfile{
		testCandidate("c1", "CSE", 9.0, 9, 9),
		testCandidate("c2", "ECE", 6.5, 4, 4),
	}
	outcomes := []types.OutcomeRecord{
		outcome("c1", "j1", types.OutcomeSelected),
		outcome("c2", "j1", types.OutcomeRejected),
		outcome("ghost", "j1", types.OutcomeRejected),
		outcome("c1", "unknown-job", types.OutcomeSelected),
	}
	engine := New(NewHistory(candidates, outcomes))
	jobs := map[string]types.JobPosting{"j1": testJob("j1", types.RiskToleranceMedium)}

	samples := engine.TrainingSet(jobs)

	// Records with unknown candidates or jobs are dropped.
	require.Len(t, samples, 2)
	assert.True(t, samples[0].Selected)
	assert.False(t, samples[1].Selected)
	for _, s := range samples {
		assert.Len(t, s.Features, numFeatures)
	}
	assert.Equal(t, 9.0, samples[0].Features[0])
}
