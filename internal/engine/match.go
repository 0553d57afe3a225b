package engine

import (
	"regexp"
	"strings"

	"github.com/campusintel/placement-engine/internal/types"
)

// Decision is a terminal match outcome. Rejection is a normal return value,
// never an error.
type Decision string

const (
	DecisionSelected    Decision = "selected"
	DecisionShortlisted Decision = "shortlisted"
	DecisionRejected    Decision = "rejected"
	DecisionWaitlisted  Decision = "waitlisted"
)

// FailureReason explains a rejection. CGPA and backlog failures carry
// distinct codes so a rejection can always be traced to the gate that
// produced it.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonCGPA              FailureReason = "cgpa"
	ReasonBacklogs          FailureReason = "backlogs"
	ReasonLowDSA            FailureReason = "low_dsa"
	ReasonFakeSkill         FailureReason = "fake_skill"
	ReasonPoorCommunication FailureReason = "poor_communication"
	ReasonFailedInterview   FailureReason = "failed_interview"
	ReasonSeatLimit         FailureReason = "seat_limit"
)

// engineeringRolePattern flags roles where DSA fundamentals are screened.
var engineeringRolePattern = regexp.MustCompile(`(?i)\b(software|backend|frontend|full[ -]?stack|sde|engineer|developer|dsa)\b`)

// MatchResult is the full decision trail for one candidate against one job.
type MatchResult struct {
	CandidateID     string            `json:"candidate_id"`
	JobID           string            `json:"job_id"`
	Score           float64           `json:"score"`
	Decision        Decision          `json:"decision"`
	SkillMatchRatio float64           `json:"skill_match_ratio"`
	Credibility     CredibilityResult `json:"credibility"`
	Risk            RiskResult        `json:"risk"`
	FailureReason   FailureReason     `json:"failure_reason,omitempty"`
}

// HardGateFailed reports whether the candidate never reached weighted scoring.
func (m MatchResult) HardGateFailed() bool {
	switch m.FailureReason {
	case ReasonCGPA, ReasonBacklogs, ReasonLowDSA:
		return true
	}
	return false
}

// Engine evaluates candidates against jobs. Evaluations are pure given their
// inputs and safe to run concurrently; the only shared state is the immutable
// history index.
type Engine struct {
	hist *History
}

// New creates an engine over an indexed outcome history.
func New(hist *History) *Engine {
	return &Engine{hist: hist}
}

// History exposes the engine's outcome index.
func (e *Engine) History() *History {
	return e.hist
}

// Evaluate runs the full decision procedure: hard eligibility gates, weighted
// scoring, credibility adjustment, then a risk-gated decision.
func (e *Engine) Evaluate(candidate types.CandidateProfile, job types.JobPosting) MatchResult {
	result := MatchResult{
		CandidateID: candidate.ID,
		JobID:       job.ID,
	}

	// Hard gates short-circuit with score 0; no weighted scoring happens.
	if candidate.CGPA < job.Eligibility.MinCGPA {
		result.Decision = DecisionRejected
		result.FailureReason = ReasonCGPA
		return result
	}
	if candidate.ActiveBacklogs > job.Eligibility.MaxBacklogs {
		result.Decision = DecisionRejected
		result.FailureReason = ReasonBacklogs
		return result
	}
	if engineeringRolePattern.MatchString(job.Name) &&
		!candidate.HasSkill("dsa") && !candidate.HasSkill("algorithm") {
		result.Decision = DecisionRejected
		result.FailureReason = ReasonLowDSA
		return result
	}

	cred := ScoreCredibility(candidate.Skills)
	risk := AssessRisk(candidate, job, e.hist, cred)
	ratio := SkillMatchRatio(candidate, job.Eligibility.MandatorySkills)

	w := job.WeightPolicy
	score := candidate.CGPA/10*w.GPAWeight +
		ratio*w.SkillWeight +
		float64(candidate.CommunicationScore)/10*w.CommunicationWeight +
		float64(candidate.MockInterviewScore)/10*w.MockInterviewWeight

	result.Credibility = cred
	result.Risk = risk
	result.SkillMatchRatio = ratio

	switch cred.Level {
	case CredLow:
		score *= 0.6
		if score < 0.5 {
			result.Score = score
			result.Decision = DecisionRejected
			result.FailureReason = ReasonFakeSkill
			return result
		}
	case CredMedium:
		score *= 0.85
	}
	result.Score = score

	switch risk.Level {
	case RiskHigh:
		// High-risk candidates are never selected directly.
		if score >= 0.7 {
			result.Decision = DecisionShortlisted
		} else {
			result.Decision = DecisionRejected
			result.FailureReason = ReasonFailedInterview
		}
	case RiskMedium:
		if score >= 0.55 {
			result.Decision = DecisionShortlisted
		} else {
			result.Decision = DecisionRejected
			result.FailureReason = ReasonPoorCommunication
		}
	default:
		switch {
		case score >= 0.7:
			result.Decision = DecisionSelected
		case score >= 0.5:
			result.Decision = DecisionShortlisted
		default:
			result.Decision = DecisionRejected
			result.FailureReason = ReasonFailedInterview
		}
	}
	return result
}

// SkillMatchRatio is the fraction of mandatory skills the candidate lists,
// matched case-insensitively. No mandatory skills means nothing to miss, so
// the ratio is 1.
func SkillMatchRatio(candidate types.CandidateProfile, mandatory []string) float64 {
	if len(mandatory) == 0 {
		return 1
	}
	names := candidate.SkillNames()
	matched := 0
	for _, skill := range mandatory {
		if names[strings.ToLower(skill)] {
			matched++
		}
	}
	return float64(matched) / float64(len(mandatory))
}
