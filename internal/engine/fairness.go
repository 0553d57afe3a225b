package engine

import (
	"fmt"
	"sort"

	"github.com/campusintel/placement-engine/internal/types"
)

const fairnessBaseline = 70.0

// StratumRate is the selection rate inside one candidate subgroup. Rate is a
// fraction in [0,1]; an empty stratum reports 0, never NaN.
type StratumRate struct {
	Stratum  string  `json:"stratum"`
	Total    int     `json:"total"`
	Selected int     `json:"selected"`
	Rate     float64 `json:"rate"`
}

// BiasAuditResult is a full fairness audit over the outcome log.
type BiasAuditResult struct {
	FairnessScore        float64       `json:"fairness_score"`
	TotalOutcomes        int           `json:"total_outcomes"`
	CGPABuckets          []StratumRate `json:"cgpa_buckets"`
	CredibilityLevels    []StratumRate `json:"credibility_levels"`
	Branches             []StratumRate `json:"branches"`
	CommunicationBuckets []StratumRate `json:"communication_buckets"`
	SkillHeavy           StratumRate   `json:"skill_heavy"`
	GPAHeavy             StratumRate   `json:"gpa_heavy"`
	BranchRateVariance   float64       `json:"branch_rate_variance"`
	Recommendations      []string      `json:"recommendations"`
}

type rateCounter struct {
	total, selected int
}

func (r *rateCounter) observe(selected bool) {
	r.total++
	if selected {
		r.selected++
	}
}

func (r rateCounter) rate() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.selected) / float64(r.total)
}

func (r rateCounter) stratum(name string) StratumRate {
	return StratumRate{Stratum: name, Total: r.total, Selected: r.selected, Rate: r.rate()}
}

// AuditFairness aggregates selection rates across CGPA, credibility, branch,
// and communication strata, compares the skill-heavy cohort against the
// gpa-heavy one, and reduces everything to a single 0..100 fairness score
// with rule-based recommendations.
func (e *Engine) AuditFairness() BiasAuditResult {
	cgpaBucketNames := []string{"5.0-6.5", "6.5-7.5", "7.5-8.5", "8.5+"}
	commBucketNames := []string{"1-4", "5-7", "8-10"}
	credLevelNames := []CredLevel{CredLow, CredMedium, CredHigh}

	cgpaCounters := make([]rateCounter, len(cgpaBucketNames))
	commCounters := make([]rateCounter, len(commBucketNames))
	credCounters := make(map[CredLevel]*rateCounter)
	for _, lvl := range credLevelNames {
		credCounters[lvl] = &rateCounter{}
	}
	branchCounters := make(map[string]*rateCounter)
	var skillHeavy, gpaHeavy rateCounter

	total := 0
	for _, o := range e.hist.Outcomes() {
		candidate, ok := e.hist.Candidate(o.CandidateID)
		if !ok {
			continue
		}
		total++
		selected := o.Result == types.OutcomeSelected
		cred := ScoreCredibility(candidate.Skills)

		cgpaCounters[cgpaBucket(candidate.CGPA)].observe(selected)
		commCounters[commBucket(candidate.CommunicationScore)].observe(selected)
		credCounters[cred.Level].observe(selected)

		bc, ok := branchCounters[candidate.Branch]
		if !ok {
			bc = &rateCounter{}
			branchCounters[candidate.Branch] = bc
		}
		bc.observe(selected)

		if cred.Level == CredHigh && candidate.CGPA >= 6.5 && candidate.CGPA < 8.0 {
			skillHeavy.observe(selected)
		}
		if candidate.CGPA >= 8.0 && cred.Level != CredHigh {
			gpaHeavy.observe(selected)
		}
	}

	result := BiasAuditResult{
		TotalOutcomes: total,
		SkillHeavy:    skillHeavy.stratum("skill_heavy"),
		GPAHeavy:      gpaHeavy.stratum("gpa_heavy"),
	}
	for i, name := range cgpaBucketNames {
		result.CGPABuckets = append(result.CGPABuckets, cgpaCounters[i].stratum(name))
	}
	for _, lvl := range credLevelNames {
		result.CredibilityLevels = append(result.CredibilityLevels, credCounters[lvl].stratum(string(lvl)))
	}
	for i, name := range commBucketNames {
		result.CommunicationBuckets = append(result.CommunicationBuckets, commCounters[i].stratum(name))
	}
	branches := make([]string, 0, len(branchCounters))
	for b := range branchCounters {
		branches = append(branches, b)
	}
	sort.Strings(branches)
	for _, b := range branches {
		result.Branches = append(result.Branches, branchCounters[b].stratum(b))
	}

	// Branch variance uses percentage rates, so a 30-point rate spread
	// already produces a triple-digit variance.
	result.BranchRateVariance = branchVariance(result.Branches)

	score := fairnessBaseline
	if skillHeavy.total > 0 && gpaHeavy.total > 0 {
		if skillHeavy.rate() >= gpaHeavy.rate() {
			score += 10
		} else {
			score -= 10
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("CGPA appears overweighted: gpa-heavy candidates are selected at %.0f%% versus %.0f%% for skill-heavy candidates with stronger evidence",
					gpaHeavy.rate()*100, skillHeavy.rate()*100))
		}
	}
	score -= 0.5 * result.BranchRateVariance
	if result.BranchRateVariance > 100 {
		result.Recommendations = append(result.Recommendations,
			"Selection rates diverge sharply across branches; review branch-correlated criteria")
	}

	high := credCounters[CredHigh]
	low := credCounters[CredLow]
	if high.total > 0 && low.total > 0 {
		if high.rate() >= low.rate() {
			score += 5
		} else {
			score -= 5
			result.Recommendations = append(result.Recommendations,
				"Low-credibility candidates outperform high-credibility ones; evidence signals are not being respected")
		}
	}

	highComm := commCounters[len(commCounters)-1]
	lowComm := commCounters[0]
	if highComm.total > 0 && lowComm.total > 0 && highComm.rate() > 2*lowComm.rate() {
		result.Recommendations = append(result.Recommendations,
			"Communication score dominates outcomes; strong technical candidates with weaker communication may be filtered out")
	}

	result.FairnessScore = clampf(score, 0, 100)
	return result
}

func cgpaBucket(cgpa float64) int {
	switch {
	case cgpa < 6.5:
		return 0
	case cgpa < 7.5:
		return 1
	case cgpa < 8.5:
		return 2
	default:
		return 3
	}
}

func commBucket(score int) int {
	switch {
	case score <= 4:
		return 0
	case score <= 7:
		return 1
	default:
		return 2
	}
}

// branchVariance is the population variance of per-branch selection rates
// expressed as percentages. Fewer than two branches yields 0.
func branchVariance(branches []StratumRate) float64 {
	if len(branches) < 2 {
		return 0
	}
	mean := 0.0
	for _, b := range branches {
		mean += b.Rate * 100
	}
	mean /= float64(len(branches))
	variance := 0.0
	for _, b := range branches {
		d := b.Rate*100 - mean
		variance += d * d
	}
	return variance / float64(len(branches))
}
