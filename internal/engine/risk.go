package engine

import (
	"fmt"

	"github.com/campusintel/placement-engine/internal/types"
)

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

const (
	riskHighThreshold   = 6
	riskMediumThreshold = 3
)

// RiskResult is the additive risk assessment for a candidate against one job.
// Factors are ordered the way they were accumulated.
type RiskResult struct {
	Level   RiskLevel `json:"level"`
	Score   int       `json:"score"`
	Factors []string  `json:"factors"`
}

// AssessRisk combines credibility, historical failure patterns at the job and
// communication/interview signals into a risk tier.
func AssessRisk(candidate types.CandidateProfile, job types.JobPosting, hist *History, cred CredibilityResult) RiskResult {
	score := 0
	var factors []string

	similar := hist.SimilarFailedCount(job.ID, candidate)
	switch {
	case similar >= 3:
		score += 4
		factors = append(factors, fmt.Sprintf("%d similar candidates previously failed at this job", similar))
	case similar >= 1:
		score += 2
		factors = append(factors, fmt.Sprintf("%d similar candidate(s) previously failed at this job", similar))
	}

	switch cred.Level {
	case CredLow:
		score += 3
		factors = append(factors, "low resume credibility")
	case CredMedium:
		score += 1
		factors = append(factors, "medium resume credibility")
	}

	// Prefer the job's own selection history as the communication baseline;
	// the absolute threshold applies only when no history exists.
	if avg, ok := hist.SelectedCommAvg(job.ID); ok {
		if float64(candidate.CommunicationScore) < avg-2 {
			score += 2
			factors = append(factors, fmt.Sprintf("communication %d well below selected average %.1f", candidate.CommunicationScore, avg))
		}
	} else if candidate.CommunicationScore < 5 {
		score += 1
		factors = append(factors, "communication score below 5")
	}

	if candidate.MockInterviewScore < 5 {
		score += 1
		factors = append(factors, "weak mock interview performance")
	}

	if job.RiskTolerance == types.RiskToleranceLow && score >= 3 {
		score++
		factors = append(factors, "job has low risk tolerance")
	}

	return RiskResult{
		Level:   riskLevel(score),
		Score:   score,
		Factors: factors,
	}
}

func riskLevel(score int) RiskLevel {
	switch {
	case score >= riskHighThreshold:
		return RiskHigh
	case score >= riskMediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}
