package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusintel/placement-engine/internal/types"
)

// evidencedCandidate has HIGH credibility with a mid-range CGPA, the
// skill-heavy cohort shape.
func evidencedCandidate(id, branch string, comm int) types.CandidateProfile {
	c := testCandidate(id, branch, 7.2, comm, 7)
	return c
}

// paperCandidate has a high CGPA but weak evidence, the gpa-heavy cohort
// shape.
func paperCandidate(id, branch string, comm int) types.CandidateProfile {
	return types.CandidateProfile{
		ID: id, Name: "Candidate " + id, Branch: branch,
		CGPA: 8.6, CommunicationScore: comm, MockInterviewScore: 7,
		Skills: []types.SkillClaim{
			inflatedSkill("ml"), inflatedSkill("react"), inflatedSkill("go"), inflatedSkill("aws"),
		},
	}
}

func auditEngine(candidates []types.CandidateProfile, outcomes []types.OutcomeRecord) *Engine {
	return New(NewHistory(candidates, outcomes))
}

func TestAuditFairnessEmptyHistory(t *testing.T) {
	result := emptyEngine().AuditFairness()

	assert.Equal(t, fairnessBaseline, result.FairnessScore)
	assert.Zero(t, result.TotalOutcomes)
	assert.Empty(t, result.Recommendations)
	for _, s := range result.CGPABuckets {
		assert.Zero(t, s.Rate, "empty stratum must report rate 0")
	}
}

func TestAuditFairnessScoreBounds(t *testing.T) {
	var candidates []types.CandidateProfile
	var outcomes []types.OutcomeRecord
	// Extreme branch skew drives the raw score far below zero.
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("cse%d", i)
		candidates = append(candidates, evidencedCandidate(id, "CSE", 8))
		outcomes = append(outcomes, outcome(id, "j1", types.OutcomeSelected))

		id = fmt.Sprintf("mech%d", i)
		candidates = append(candidates, evidencedCandidate(id, "MECH", 8))
		outcomes = append(outcomes, outcome(id, "j1", types.OutcomeRejected))
	}

	result := auditEngine(candidates, outcomes).AuditFairness()

	assert.GreaterOrEqual(t, result.FairnessScore, 0.0)
	assert.LessOrEqual(t, result.FairnessScore, 100.0)
	assert.Equal(t, 0.0, result.FairnessScore)
	assert.Greater(t, result.BranchRateVariance, 100.0)

	found := false
	for _, rec := range result.Recommendations {
		found = found || containsFold(rec, "branches")
	}
	assert.True(t, found, "expected a branch bias recommendation")
}

func TestAuditFairnessRewardsEvidenceOverGPA(t *testing.T) {
	var candidates []types.CandidateProfile
	var outcomes []types.OutcomeRecord
	// Skill-heavy cohort strictly outperforms the gpa-heavy cohort; one
	// branch only, so no variance penalty.
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("skill%d", i)
		candidates = append(candidates, evidencedCandidate(id, "CSE", 7))
		res := types.OutcomeSelected
		if i >= 6 {
			res = types.OutcomeRejected
		}
		outcomes = append(outcomes, outcome(id, "j1", res))

		id = fmt.Sprintf("gpa%d", i)
		candidates = append(candidates, paperCandidate(id, "CSE", 7))
		res = types.OutcomeRejected
		if i >= 6 {
			res = types.OutcomeSelected
		}
		outcomes = append(outcomes, outcome(id, "j1", res))
	}

	result := auditEngine(candidates, outcomes).AuditFairness()

	assert.Greater(t, result.FairnessScore, 70.0)
	assert.Greater(t, result.SkillHeavy.Rate, result.GPAHeavy.Rate)
	assert.Empty(t, result.Recommendations)
}

func TestAuditFairnessFlagsGPAOverweighting(t *testing.T) {
	var candidates []types.CandidateProfile
	var outcomes []types.OutcomeRecord
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("skill%d", i)
		candidates = append(candidates, evidencedCandidate(id, "CSE", 7))
		outcomes = append(outcomes, outcome(id, "j1", types.OutcomeRejected))

		id = fmt.Sprintf("gpa%d", i)
		candidates = append(candidates, paperCandidate(id, "CSE", 7))
		outcomes = append(outcomes, outcome(id, "j1", types.OutcomeSelected))
	}

	result := auditEngine(candidates, outcomes).AuditFairness()

	assert.Less(t, result.FairnessScore, 70.0)
	require.NotEmpty(t, result.Recommendations)
	assert.True(t, containsFold(result.Recommendations[0], "overweighted"))
}

func TestAuditFairnessFlagsCommunicationDominance(t *testing.T) {
	var candidates []types.CandidateProfile
	var outcomes []types.OutcomeRecord
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("hi%d", i)
		candidates = append(candidates, evidencedCandidate(id, "CSE", 9))
		outcomes = append(outcomes, outcome(id, "j1", types.OutcomeSelected))

		id = fmt.Sprintf("lo%d", i)
		candidates = append(candidates, evidencedCandidate(id, "CSE", 3))
		res := types.OutcomeRejected
		if i == 0 {
			res = types.OutcomeSelected
		}
		outcomes = append(outcomes, outcome(id, "j1", res))
	}

	result := auditEngine(candidates, outcomes).AuditFairness()

	found := false
	for _, rec := range result.Recommendations {
		found = found || containsFold(rec, "communication")
	}
	assert.True(t, found)
}

func TestAuditFairnessStrataAccounting(t *testing.T) {
	candidates := []types.CandidateProfile{
		evidencedCandidate("a", "CSE", 9),
		paperCandidate("b", "ECE", 4),
	}
	outcomes := []types.OutcomeRecord{
		outcome("a", "j1", types.OutcomeSelected),
		outcome("b", "j1", types.OutcomeNoShow),
		outcome("missing", "j1", types.OutcomeSelected),
	}

	result := auditEngine(candidates, outcomes).AuditFairness()

	// The record for an unknown candidate is dropped entirely.
	assert.Equal(t, 2, result.TotalOutcomes)

	total := 0
	for _, s := range result.CGPABuckets {
		total += s.Total
	}
	assert.Equal(t, 2, total)

	require.Len(t, result.Branches, 2)
	assert.Equal(t, "CSE", result.Branches[0].Stratum)
	assert.Equal(t, 1.0, result.Branches[0].Rate)
	assert.Equal(t, 0.0, result.Branches[1].Rate)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
