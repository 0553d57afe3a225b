package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusintel/placement-engine/internal/types"
)

func simCandidate() types.CandidateProfile {
	return types.CandidateProfile{
		ID: "sim1", Name: "Ravi", Branch: "CSE",
		CGPA: 7.8, CommunicationScore: 7, MockInterviewScore: 5,
		Skills: []types.SkillClaim{
			{Name: "go", ClaimedLevel: types.LevelBeginner, Evidence: types.Evidence{Projects: 1}},
			{Name: "sql", ClaimedLevel: types.LevelIntermediate, Evidence: types.Evidence{GitHub: true}},
		},
	}
}

func TestSimulateSemesterValidation(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(1)))

	tests := []struct {
		name      string
		semesters int
	}{
		{name: "zero semesters", semesters: 0},
		{name: "negative semesters", semesters: -2},
		{name: "beyond the horizon", semesters: maxSimSemesters + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Simulate(simCandidate(), tt.semesters)
			assert.Error(t, err)
		})
	}
}

func TestSimulateProducesOneStepPerSemester(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(7)))

	result, err := sim.Simulate(simCandidate(), 6)
	require.NoError(t, err)

	require.Len(t, result.Steps, 6)
	for i, step := range result.Steps {
		assert.Equal(t, i+1, step.Semester)
	}
	assert.Equal(t, result.Steps[5].Profile, result.FinalProfile)
}

func TestSimulateRespectsBounds(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(42)))

	result, err := sim.Simulate(simCandidate(), maxSimSemesters)
	require.NoError(t, err)

	for _, step := range result.Steps {
		p := step.Profile
		assert.GreaterOrEqual(t, p.CGPA, 5.0)
		assert.LessOrEqual(t, p.CGPA, 9.8)
		assert.LessOrEqual(t, p.CommunicationScore, 10)
		assert.LessOrEqual(t, p.MockInterviewScore, 10)
		for _, skill := range p.Skills {
			assert.LessOrEqual(t, skill.Evidence.Projects, 5)
		}
		assert.GreaterOrEqual(t, step.Credibility.Score, 0.0)
		assert.LessOrEqual(t, step.Credibility.Score, 1.0)
	}
}

func TestSimulateNeverMutatesInput(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(42)))
	original := simCandidate()
	input := simCandidate()

	_, err := sim.Simulate(input, 12)
	require.NoError(t, err)

	assert.Equal(t, original, input)
}

func TestSimulateSnapshotsAreIndependent(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(3)))

	result, err := sim.Simulate(simCandidate(), 10)
	require.NoError(t, err)

	// Mutating one snapshot must not leak into another.
	result.Steps[0].Profile.Skills[0].Evidence.Projects = 99
	for _, step := range result.Steps[1:] {
		assert.NotEqual(t, 99, step.Profile.Skills[0].Evidence.Projects)
	}
}

func TestSimulateReproducibleWithSameSeed(t *testing.T) {
	first, err := NewSimulator(rand.New(rand.NewSource(99))).Simulate(simCandidate(), 8)
	require.NoError(t, err)
	second, err := NewSimulator(rand.New(rand.NewSource(99))).Simulate(simCandidate(), 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulateGrowthDiff(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(11)))
	candidate := simCandidate()

	result, err := sim.Simulate(candidate, 10)
	require.NoError(t, err)

	g := result.Growth
	assert.InDelta(t, result.FinalProfile.CGPA-candidate.CGPA, g.CGPADelta, 1e-9)
	assert.Equal(t, result.FinalProfile.CommunicationScore-candidate.CommunicationScore, g.CommunicationDelta)
	assert.Equal(t, result.InitialCredibility.Level, g.LevelBefore)
	assert.Equal(t, result.FinalCredibility.Level, g.LevelAfter)
	assert.GreaterOrEqual(t, g.ProjectsAdded, 0)
	assert.GreaterOrEqual(t, g.GitHubGained, 0)
	assert.LessOrEqual(t, g.GitHubGained, len(candidate.Skills))
}

func TestSimulateUnmotivatedCandidateOnlyDrifts(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(5)))
	candidate := simCandidate()
	candidate.CGPA = 6.0
	candidate.CommunicationScore = 3

	result, err := sim.Simulate(candidate, 2)
	require.NoError(t, err)

	// Motivation needs cgpa >= 7.5 or communication >= 6 at the start; below
	// both bars no portfolio growth happens.
	assert.False(t, result.Motivated)
	assert.Zero(t, result.Growth.ProjectsAdded)
	assert.Zero(t, result.Growth.GitHubGained)
	assert.Zero(t, result.Growth.CommunicationDelta)
}

func TestSimulateMotivationFixedDespiteDrift(t *testing.T) {
	// Just under the cgpa bar with weak communication. Over a long run the
	// cgpa drift crosses 7.5 many times, but motivation is judged once from
	// the starting profile, so the portfolio never grows.
	for seed := int64(1); seed <= 20; seed++ {
		sim := NewSimulator(rand.New(rand.NewSource(seed)))
		candidate := simCandidate()
		candidate.CGPA = 7.4
		candidate.CommunicationScore = 5

		result, err := sim.Simulate(candidate, maxSimSemesters)
		require.NoError(t, err)

		assert.False(t, result.Motivated)
		assert.Zero(t, result.Growth.ProjectsAdded)
		assert.Zero(t, result.Growth.GitHubGained)
		assert.Zero(t, result.Growth.CommunicationDelta)
	}
}

func TestSimulateMotivatedOverride(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(5)))
	candidate := simCandidate()
	candidate.CGPA = 6.0
	candidate.CommunicationScore = 5

	result, err := sim.SimulateMotivated(candidate, maxSimSemesters, true)
	require.NoError(t, err)

	// Motivated candidates gain a communication point every second semester
	// until the cap, so starting from 5 the full run lands exactly on 10.
	assert.True(t, result.Motivated)
	assert.Equal(t, 5, result.Growth.CommunicationDelta)
	assert.Equal(t, 10, result.FinalProfile.CommunicationScore)
}

func TestSimulateMotivatedOverrideOff(t *testing.T) {
	candidate := simCandidate() // cgpa 7.8 would default to motivated

	result, err := NewSimulator(rand.New(rand.NewSource(9))).
		SimulateMotivated(candidate, 12, false)
	require.NoError(t, err)

	assert.False(t, result.Motivated)
	assert.Zero(t, result.Growth.ProjectsAdded)
	assert.Zero(t, result.Growth.GitHubGained)
	assert.Zero(t, result.Growth.CommunicationDelta)
}
