package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusintel/placement-engine/internal/types"
)

func emptyEngine() *Engine {
	return New(NewHistory(nil, nil))
}

func TestEvaluateHardGates(t *testing.T) {
	engine := emptyEngine()

	tests := []struct {
		name      string
		candidate types.CandidateProfile
		job       types.JobPosting
		reason    FailureReason
	}{
		{
			name:      "cgpa below minimum",
			candidate: testCandidate("c1", "CSE", 6.5, 9, 9),
			job: types.JobPosting{
				ID: "j1", Name: "Graduate Trainee",
				Eligibility: types.Eligibility{MinCGPA: 7.0, MaxBacklogs: 2},
			},
			reason: ReasonCGPA,
		},
		{
			name: "too many backlogs",
			candidate: func() types.CandidateProfile {
				c := testCandidate("c2", "CSE", 8.5, 9, 9)
				c.ActiveBacklogs = 3
				return c
			}(),
			job: types.JobPosting{
				ID: "j1", Name: "Graduate Trainee",
				Eligibility: types.Eligibility{MinCGPA: 7.0, MaxBacklogs: 2},
			},
			reason: ReasonBacklogs,
		},
		{
			name: "engineering role without dsa skill",
			candidate: types.CandidateProfile{
				ID: "c3", Branch: "CSE", CGPA: 8.5,
				CommunicationScore: 9, MockInterviewScore: 9,
				Skills: []types.SkillClaim{strongSkill("excel")},
			},
			job: types.JobPosting{
				ID: "j1", Name: "Software Engineer",
				Eligibility: types.Eligibility{MinCGPA: 7.0, MaxBacklogs: 2},
			},
			reason: ReasonLowDSA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(tt.candidate, tt.job)

			assert.Equal(t, DecisionRejected, result.Decision)
			assert.Equal(t, tt.reason, result.FailureReason)
			assert.Zero(t, result.Score)
			assert.True(t, result.HardGateFailed())
		})
	}
}

func TestEvaluateDSAGateAcceptsAlgorithmSkill(t *testing.T) {
	engine := emptyEngine()
	job := testJob("j1", types.RiskToleranceMedium)
	job.Name = "Backend Developer"

	candidate := testCandidate("c1", "CSE", 8.5, 8, 8)
	candidate.Skills = []types.SkillClaim{strongSkill("Advanced Algorithms"), strongSkill("go")}

	result := engine.Evaluate(candidate, job)

	assert.NotEqual(t, ReasonLowDSA, result.FailureReason)
	assert.False(t, result.HardGateFailed())
}

func TestEvaluateDSAGateSkipsNonEngineeringRoles(t *testing.T) {
	engine := emptyEngine()
	job := testJob("j1", types.RiskToleranceMedium)
	job.Name = "Business Analyst"

	candidate := testCandidate("c1", "CSE", 8.5, 8, 8)
	candidate.Skills = []types.SkillClaim{strongSkill("excel"), strongSkill("sql")}

	result := engine.Evaluate(candidate, job)

	assert.NotEqual(t, ReasonLowDSA, result.FailureReason)
}

func TestSkillMatchRatio(t *testing.T) {
	candidate := types.CandidateProfile{
		Skills: []types.SkillClaim{strongSkill("Python"), strongSkill("SQL"), strongSkill("dsa")},
	}

	tests := []struct {
		name      string
		mandatory []string
		expected  float64
	}{
		{name: "no mandatory skills is a full match", mandatory: nil, expected: 1},
		{name: "case-insensitive full match", mandatory: []string{"python", "sql"}, expected: 1},
		{name: "partial match", mandatory: []string{"python", "java"}, expected: 0.5},
		{name: "no overlap", mandatory: []string{"java", "c++"}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SkillMatchRatio(candidate, tt.mandatory))
		})
	}
}

func TestEvaluateLowCredibilityRejectsFakeSkills(t *testing.T) {
	engine := emptyEngine()
	job := testJob("j1", types.RiskToleranceMedium)
	job.Eligibility.MandatorySkills = []string{"scala"}

	candidate := types.CandidateProfile{
		ID: "c1", Branch: "CSE", CGPA: 7.0,
		CommunicationScore: 5, MockInterviewScore: 5,
		Skills: []types.SkillClaim{
			inflatedSkill("ml"), inflatedSkill("react"), inflatedSkill("kubernetes"), inflatedSkill("rust"),
		},
	}

	result := engine.Evaluate(candidate, job)

	assert.Equal(t, CredLow, result.Credibility.Level)
	assert.Equal(t, DecisionRejected, result.Decision)
	assert.Equal(t, ReasonFakeSkill, result.FailureReason)
	assert.Less(t, result.Score, 0.5)
	assert.Greater(t, result.Score, 0.0)
}

func TestEvaluateLowCredibilitySurvivesOnStrongAcademics(t *testing.T) {
	engine := emptyEngine()
	job := testJob("j1", types.RiskToleranceMedium)
	job.Eligibility.MandatorySkills = nil

	candidate := types.CandidateProfile{
		ID: "c1", Branch: "CSE", CGPA: 9.5,
		CommunicationScore: 9, MockInterviewScore: 9,
		Skills: []types.SkillClaim{
			inflatedSkill("ml"), inflatedSkill("react"), inflatedSkill("kubernetes"), inflatedSkill("rust"),
		},
	}

	result := engine.Evaluate(candidate, job)

	// Base 0.955 scaled by the 0.6 low-credibility multiplier.
	assert.InDelta(t, 0.573, result.Score, 0.001)
	assert.Equal(t, DecisionShortlisted, result.Decision)
}

func TestEvaluateMediumCredibilityMultiplier(t *testing.T) {
	engine := emptyEngine()
	job := testJob("j1", types.RiskToleranceMedium)
	job.Eligibility.MandatorySkills = nil

	candidate := testCandidate("c1", "CSE", 9.0, 9, 9)
	candidate.Skills = []types.SkillClaim{
		{Name: "go", ClaimedLevel: types.LevelBeginner, Evidence: types.Evidence{GitHub: true, Projects: 1}},
		{Name: "sql", ClaimedLevel: types.LevelBeginner, Evidence: types.Evidence{GitHub: true, Projects: 1}},
	}

	result := engine.Evaluate(candidate, job)

	require.Equal(t, CredMedium, result.Credibility.Level)
	// Base 0.94 scaled by 0.85.
	assert.InDelta(t, 0.799, result.Score, 0.001)
}

func TestEvaluateHighRiskNeverSelectsDirectly(t *testing.T) {
	job := testJob("j1", types.RiskToleranceLow)
	job.WeightPolicy = types.WeightPolicy{GPAWeight: 0.5, SkillWeight: 0.5}
	job.Eligibility.MandatorySkills = []string{"go"}

	var past []types.CandidateProfile
	var outcomes []types.OutcomeRecord
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("f%d", i)
		past = append(past, testCandidate(id, "CSE", 8.8, 8, 6))
		outcomes = append(outcomes, outcome(id, "j1", types.OutcomeRejected))
	}
	engine := New(NewHistory(past, outcomes))

	candidate := testCandidate("c1", "CSE", 9.0, 8, 4)

	result := engine.Evaluate(candidate, job)

	require.Equal(t, RiskHigh, result.Risk.Level)
	assert.GreaterOrEqual(t, result.Score, 0.7)
	assert.Equal(t, DecisionShortlisted, result.Decision)
}

func TestEvaluateHighRiskLowScoreRejected(t *testing.T) {
	job := testJob("j1", types.RiskToleranceLow)
	job.WeightPolicy = types.WeightPolicy{GPAWeight: 0.3, SkillWeight: 0.1}
	job.Eligibility.MandatorySkills = []string{"go"}

	var past []types.CandidateProfile
	var outcomes []types.OutcomeRecord
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("f%d", i)
		past = append(past, testCandidate(id, "CSE", 8.8, 8, 6))
		outcomes = append(outcomes, outcome(id, "j1", types.OutcomeRejected))
	}
	engine := New(NewHistory(past, outcomes))

	candidate := testCandidate("c1", "CSE", 9.0, 8, 4)

	result := engine.Evaluate(candidate, job)

	require.Equal(t, RiskHigh, result.Risk.Level)
	assert.Equal(t, DecisionRejected, result.Decision)
	assert.Equal(t, ReasonFailedInterview, result.FailureReason)
}

func TestEvaluateMediumRiskThreshold(t *testing.T) {
	// One similar past failure plus a weak mock interview lands the
	// candidate in the medium risk band.
	past := []types.CandidateProfile{testCandidate("f0", "CSE", 8.8, 8, 6)}
	outcomes := []types.OutcomeRecord{outcome("f0", "j1", types.OutcomeRejected)}
	engine := New(NewHistory(past, outcomes))

	tests := []struct {
		name     string
		weights  types.WeightPolicy
		decision Decision
		reason   FailureReason
	}{
		{
			name:     "score above shortlist threshold",
			weights:  types.WeightPolicy{GPAWeight: 0.3, SkillWeight: 0.4, CommunicationWeight: 0.2, MockInterviewWeight: 0.1},
			decision: DecisionShortlisted,
		},
		{
			name:     "score below shortlist threshold",
			weights:  types.WeightPolicy{GPAWeight: 0.2, SkillWeight: 0.2},
			decision: DecisionRejected,
			reason:   ReasonPoorCommunication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := testJob("j1", types.RiskToleranceMedium)
			job.WeightPolicy = tt.weights
			job.Eligibility.MandatorySkills = []string{"go"}

			candidate := testCandidate("c1", "CSE", 9.0, 8, 4)

			result := engine.Evaluate(candidate, job)

			require.Equal(t, RiskMedium, result.Risk.Level, "factors: %v", result.Risk.Factors)
			assert.Equal(t, tt.decision, result.Decision)
			assert.Equal(t, tt.reason, result.FailureReason)
		})
	}
}

func TestEvaluateEndToEndStrongCandidate(t *testing.T) {
	engine := emptyEngine()

	candidate := types.CandidateProfile{
		ID: "c1", Name: "Asha", Branch: "CSE",
		CGPA: 9.0, ActiveBacklogs: 0,
		CommunicationScore: 9, MockInterviewScore: 9,
		Skills: []types.SkillClaim{
			{Name: "python", ClaimedLevel: types.LevelIntermediate, Evidence: types.Evidence{GitHub: true, Projects: 3, Certifications: 1, Internship: true}},
			{Name: "sql", ClaimedLevel: types.LevelIntermediate, Evidence: types.Evidence{GitHub: true, Projects: 3, Certifications: 1, Internship: true}},
			{Name: "ml", ClaimedLevel: types.LevelIntermediate, Evidence: types.Evidence{GitHub: true, Projects: 3, Certifications: 1, Internship: true}},
		},
	}
	job := types.JobPosting{
		ID: "j1", Name: "Graduate Analyst", Type: types.JobTypeProduct,
		RiskTolerance: types.RiskToleranceLow, OpenPositions: 2,
		Eligibility: types.Eligibility{
			MinCGPA: 7.5, MaxBacklogs: 1,
			MandatorySkills: []string{"python", "sql", "ml"},
		},
		WeightPolicy: types.WeightPolicy{
			GPAWeight: 0.3, SkillWeight: 0.4, CommunicationWeight: 0.2, MockInterviewWeight: 0.1,
		},
	}

	result := engine.Evaluate(candidate, job)

	assert.Equal(t, CredHigh, result.Credibility.Level)
	assert.Equal(t, RiskLow, result.Risk.Level)
	assert.Equal(t, DecisionSelected, result.Decision)
	assert.GreaterOrEqual(t, result.Score, 0.8)
	assert.Equal(t, ReasonNone, result.FailureReason)
}
