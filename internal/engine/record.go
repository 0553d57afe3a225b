package engine

// Record is the canonical flat representation consumed by presentation
// layers: plain maps and lists only, ready for tabular or chart rendering.
type Record = map[string]any

// Record flattens a credibility assessment.
func (c CredibilityResult) Record() Record {
	return Record{
		"score":               c.Score,
		"level":               string(c.Level),
		"red_flags":           append([]string{}, c.RedFlags...),
		"strengths":           append([]string{}, c.Strengths...),
		"inflated_skills":     append([]string{}, c.InflatedSkills...),
		"total_penalty":       c.TotalPenalty,
		"penalty_cap_applied": c.PenaltyCapped,
	}
}

// Record flattens a risk assessment.
func (r RiskResult) Record() Record {
	return Record{
		"level":   string(r.Level),
		"score":   r.Score,
		"factors": append([]string{}, r.Factors...),
	}
}

// Record flattens a match decision, inlining the credibility and risk trails.
func (m MatchResult) Record() Record {
	rec := Record{
		"candidate_id":      m.CandidateID,
		"job_id":            m.JobID,
		"score":             m.Score,
		"decision":          string(m.Decision),
		"skill_match_ratio": m.SkillMatchRatio,
		"credibility":       m.Credibility.Record(),
		"risk":              m.Risk.Record(),
	}
	if m.FailureReason != ReasonNone {
		rec["failure_reason"] = string(m.FailureReason)
	}
	return rec
}

// Record flattens a seat allocation, one row per candidate.
func (a AllocationResult) Record() Record {
	rows := make([]Record, 0, len(a.Ranked)+len(a.Ineligible))
	for _, c := range a.Ranked {
		rows = append(rows, allocatedRecord(c, true))
	}
	for _, c := range a.Ineligible {
		rows = append(rows, allocatedRecord(c, false))
	}
	return Record{
		"job_id":          a.JobID,
		"seats":           a.Seats,
		"cutoff_score":    a.CutoffScore,
		"total_evaluated": a.TotalEvaluated,
		"candidates":      rows,
	}
}

func allocatedRecord(c AllocatedCandidate, ranked bool) Record {
	rec := Record{
		"candidate_id":     c.CandidateID,
		"name":             c.Name,
		"status":           string(c.Status),
		"selection_reason": c.SelectionReason,
		"score":            c.Match.Score,
		"risk_score":       c.Match.Risk.Score,
	}
	if ranked {
		rec["rank"] = c.Rank
	} else {
		rec["rank"] = nil
		rec["failure_reason"] = string(c.Match.FailureReason)
	}
	return rec
}

// Record flattens a simulated trajectory: one row per semester plus the
// first/last growth diff.
func (s SimulationResult) Record() Record {
	steps := make([]Record, 0, len(s.Steps))
	for _, st := range s.Steps {
		steps = append(steps, Record{
			"semester":          st.Semester,
			"cgpa":              st.Profile.CGPA,
			"communication":     st.Profile.CommunicationScore,
			"mock_interview":    st.Profile.MockInterviewScore,
			"credibility_score": st.Credibility.Score,
			"credibility_level": string(st.Credibility.Level),
			"events":            append([]string{}, st.Events...),
		})
	}
	return Record{
		"candidate_id": s.CandidateID,
		"semesters":    s.Semesters,
		"steps":        steps,
		"growth": Record{
			"cgpa_delta":           s.Growth.CGPADelta,
			"credibility_delta":    s.Growth.CredibilityDelta,
			"communication_delta":  s.Growth.CommunicationDelta,
			"mock_interview_delta": s.Growth.MockInterviewDelta,
			"projects_added":       s.Growth.ProjectsAdded,
			"github_gained":        s.Growth.GitHubGained,
			"level_before":         string(s.Growth.LevelBefore),
			"level_after":          string(s.Growth.LevelAfter),
		},
	}
}

// Record flattens a success prediction.
func (p Prediction) Record() Record {
	return Record{
		"probability": p.Probability,
		"confidence":  string(p.Confidence),
		"trained":     p.Trained,
	}
}

// Record flattens a fairness audit.
func (b BiasAuditResult) Record() Record {
	return Record{
		"fairness_score":        b.FairnessScore,
		"total_outcomes":        b.TotalOutcomes,
		"cgpa_buckets":          strataRecords(b.CGPABuckets),
		"credibility_levels":    strataRecords(b.CredibilityLevels),
		"branches":              strataRecords(b.Branches),
		"communication_buckets": strataRecords(b.CommunicationBuckets),
		"skill_heavy":           stratumRecord(b.SkillHeavy),
		"gpa_heavy":             stratumRecord(b.GPAHeavy),
		"branch_rate_variance":  b.BranchRateVariance,
		"recommendations":       append([]string{}, b.Recommendations...),
	}
}

func strataRecords(strata []StratumRate) []Record {
	out := make([]Record, 0, len(strata))
	for _, s := range strata {
		out = append(out, stratumRecord(s))
	}
	return out
}

func stratumRecord(s StratumRate) Record {
	return Record{
		"stratum":  s.Stratum,
		"total":    s.Total,
		"selected": s.Selected,
		"rate":     s.Rate,
	}
}
