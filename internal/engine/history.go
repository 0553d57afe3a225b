package engine

import (
	"math"

	"github.com/campusintel/placement-engine/internal/types"
)

// History is a read-only index over the outcome log, built once per analysis
// run. Outcome records are append-only and never invalidated mid-run, so the
// index never needs refreshing and is safe to share across concurrent
// candidate evaluations.
type History struct {
	candidates map[string]types.CandidateProfile
	outcomes   []types.OutcomeRecord
	byJob      map[string][]types.OutcomeRecord

	// Per-job average communication score of historically selected
	// candidates, precomputed at construction.
	selectedCommAvg map[string]float64
}

// NewHistory indexes the outcome log against the candidate collection.
// Records referencing unknown candidates are kept for rate analysis but
// skipped wherever candidate attributes are needed.
func NewHistory(candidates []types.CandidateProfile, outcomes []types.OutcomeRecord) *History {
	h := &History{
		candidates:      make(map[string]types.CandidateProfile, len(candidates)),
		outcomes:        outcomes,
		byJob:           make(map[string][]types.OutcomeRecord),
		selectedCommAvg: make(map[string]float64),
	}
	for _, c := range candidates {
		h.candidates[c.ID] = c
	}
	for _, o := range outcomes {
		h.byJob[o.JobID] = append(h.byJob[o.JobID], o)
	}

	type commSum struct {
		total float64
		n     int
	}
	sums := make(map[string]commSum)
	for jobID, records := range h.byJob {
		for _, o := range records {
			if o.Result != types.OutcomeSelected {
				continue
			}
			c, ok := h.candidates[o.CandidateID]
			if !ok {
				continue
			}
			s := sums[jobID]
			s.total += float64(c.CommunicationScore)
			s.n++
			sums[jobID] = s
		}
	}
	for jobID, s := range sums {
		if s.n > 0 {
			h.selectedCommAvg[jobID] = s.total / float64(s.n)
		}
	}
	return h
}

// Candidate looks a candidate up by id.
func (h *History) Candidate(id string) (types.CandidateProfile, bool) {
	c, ok := h.candidates[id]
	return c, ok
}

// Outcomes returns the full outcome log in insertion order.
func (h *History) Outcomes() []types.OutcomeRecord {
	return h.outcomes
}

// JobOutcomes returns the outcome records logged against a job.
func (h *History) JobOutcomes(jobID string) []types.OutcomeRecord {
	return h.byJob[jobID]
}

// SimilarFailedCount counts historical non-selected candidates at the job who
// are similar to the given candidate: same branch AND cgpa within 1.0 AND
// communication within 2 points, all three required.
func (h *History) SimilarFailedCount(jobID string, candidate types.CandidateProfile) int {
	count := 0
	for _, o := range h.byJob[jobID] {
		if o.Result == types.OutcomeSelected {
			continue
		}
		past, ok := h.candidates[o.CandidateID]
		if !ok {
			continue
		}
		if past.Branch != candidate.Branch {
			continue
		}
		if math.Abs(past.CGPA-candidate.CGPA) >= 1.0 {
			continue
		}
		if abs(past.CommunicationScore-candidate.CommunicationScore) >= 2 {
			continue
		}
		count++
	}
	return count
}

// SelectedCommAvg returns the average communication score of candidates
// historically selected at the job, and whether any exist.
func (h *History) SelectedCommAvg(jobID string) (float64, bool) {
	avg, ok := h.selectedCommAvg[jobID]
	return avg, ok
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
