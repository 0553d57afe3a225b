package engine

import (
	"fmt"

	"github.com/campusintel/placement-engine/internal/types"
)

// CredLevel buckets a credibility score.
type CredLevel string

const (
	CredLow    CredLevel = "LOW"
	CredMedium CredLevel = "MEDIUM"
	CredHigh   CredLevel = "HIGH"
)

const (
	credHighThreshold   = 0.7
	credMediumThreshold = 0.4

	advancedInflationPenalty     = 0.15
	intermediateInflationPenalty = 0.05
	inflationPenaltyPerSkill     = 0.10
	inflationPenaltyCap          = 0.60

	strongEvidenceThreshold = 0.6
)

// CredibilityResult is the trustworthiness assessment of a resume's skill
// claims.
type CredibilityResult struct {
	Score          float64   `json:"score"`
	Level          CredLevel `json:"level"`
	RedFlags       []string  `json:"red_flags"`
	Strengths      []string  `json:"strengths"`
	InflatedSkills []string  `json:"inflated_skills"`
	TotalPenalty   float64   `json:"total_penalty"`
	PenaltyCapped  bool      `json:"penalty_cap_applied"`
}

// evidenceQuality scores a single skill's backing evidence in [0,1].
func evidenceQuality(e types.Evidence) float64 {
	q := 0.0
	if e.GitHub {
		q += 0.35
	}
	if e.Projects > 0 {
		q += 0.25 * minf(1.0, float64(e.Projects)/3.0)
	}
	if e.Certifications > 0 {
		q += 0.20 * minf(1.0, float64(e.Certifications)/2.0)
	}
	if e.Internship {
		q += 0.20
	}
	return minf(1.0, q)
}

// ScoreCredibility scores resume trustworthiness from skill-evidence data.
//
// Each skill contributes its evidence quality minus a per-skill inflation
// penalty, aggregated as a quality-weighted average (weight 1+q) so
// well-evidenced skills count more than poorly-evidenced ones. A capped total
// inflation penalty is subtracted at the end: listing many skills can never
// drive the score to zero on penalties alone.
func ScoreCredibility(skills []types.SkillClaim) CredibilityResult {
	if len(skills) == 0 {
		return CredibilityResult{
			Score:    0.5,
			Level:    CredMedium,
			RedFlags: []string{"No skills listed"},
		}
	}

	var (
		redFlags  []string
		strengths []string
		inflated  []string
	)

	weightedSum := 0.0
	weightTotal := 0.0
	githubCount := 0

	for _, skill := range skills {
		quality := evidenceQuality(skill.Evidence)

		penalty := 0.0
		switch skill.ClaimedLevel {
		case types.LevelAdvanced:
			if !(skill.Evidence.GitHub || skill.Evidence.Projects >= 2) {
				penalty = advancedInflationPenalty
				inflated = append(inflated, skill.Name)
				redFlags = append(redFlags, fmt.Sprintf("%s: claimed 'advanced' without evidence", skill.Name))
			}
		case types.LevelIntermediate:
			if quality < 0.2 {
				penalty = intermediateInflationPenalty
				redFlags = append(redFlags, fmt.Sprintf("%s: claimed 'intermediate' with weak evidence", skill.Name))
			}
		}

		q := maxf(0, quality-penalty)
		weightedSum += q * (1 + q)
		weightTotal += 1 + q

		if quality >= strongEvidenceThreshold {
			strengths = append(strengths, fmt.Sprintf("%s: strong evidence (%.0f%%)", skill.Name, quality*100))
		}
		if skill.Evidence.GitHub {
			githubCount++
		}
	}

	base := weightedSum / weightTotal
	totalPenalty := minf(inflationPenaltyCap, float64(len(inflated))*inflationPenaltyPerSkill)
	score := clampf(base-totalPenalty, 0, 1)

	if githubCount >= 3 {
		strengths = append(strengths, fmt.Sprintf("%d skills backed by GitHub", githubCount))
	}

	return CredibilityResult{
		Score:          score,
		Level:          credLevel(score),
		RedFlags:       redFlags,
		Strengths:      strengths,
		InflatedSkills: inflated,
		TotalPenalty:   totalPenalty,
		PenaltyCapped:  totalPenalty >= inflationPenaltyCap,
	}
}

// ScoreCredibilityCumulative is the pre-fix scoring variant: a plain mean of
// evidence quality minus an uncapped cumulative inflation penalty. It unfairly
// punishes candidates who list many skills and is kept only for side-by-side
// comparison; never use it as the default scorer.
func ScoreCredibilityCumulative(skills []types.SkillClaim) CredibilityResult {
	if len(skills) == 0 {
		return CredibilityResult{
			Score:    0.5,
			Level:    CredMedium,
			RedFlags: []string{"No skills listed"},
		}
	}

	sum := 0.0
	penalty := 0.0
	var inflated []string
	for _, skill := range skills {
		sum += evidenceQuality(skill.Evidence)
		if skill.ClaimedLevel == types.LevelAdvanced && !(skill.Evidence.GitHub || skill.Evidence.Projects >= 2) {
			penalty += 0.3
			inflated = append(inflated, skill.Name)
		}
	}

	score := clampf(sum/float64(len(skills))-penalty, 0, 1)
	return CredibilityResult{
		Score:          score,
		Level:          credLevel(score),
		InflatedSkills: inflated,
		TotalPenalty:   penalty,
	}
}

func credLevel(score float64) CredLevel {
	switch {
	case score >= credHighThreshold:
		return CredHigh
	case score >= credMediumThreshold:
		return CredMedium
	default:
		return CredLow
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
