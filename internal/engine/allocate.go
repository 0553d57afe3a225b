package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/campusintel/placement-engine/internal/types"
)

// waitlistSize is how many candidates past the seat count are held as backups.
const waitlistSize = 3

// AllocatedCandidate is one candidate's final standing for a job.
type AllocatedCandidate struct {
	CandidateID     string      `json:"candidate_id"`
	Name            string      `json:"name"`
	Rank            int         `json:"rank,omitempty"`
	Status          Decision    `json:"status"`
	SelectionReason string      `json:"selection_reason"`
	Match           MatchResult `json:"match"`
}

// AllocationResult is the outcome of distributing a job's seats over a
// candidate pool.
type AllocationResult struct {
	JobID          string               `json:"job_id"`
	Seats          int                  `json:"seats"`
	CutoffScore    float64              `json:"cutoff_score"`
	TotalEvaluated int                  `json:"total_evaluated"`
	Ranked         []AllocatedCandidate `json:"ranked"`
	Ineligible     []AllocatedCandidate `json:"ineligible"`
}

// Allocate evaluates every candidate against the job and distributes seats.
// Candidates failing a hard eligibility gate are set aside unranked; the rest
// are ranked by score with risk as the tiebreak. The top seats are selected,
// the next few waitlisted, and everyone else is rejected on seat limit.
//
// Evaluations fan out across a bounded worker group; results keep the input
// order before ranking so equal-score runs are deterministic.
func (e *Engine) Allocate(ctx context.Context, job types.JobPosting, candidates []types.CandidateProfile, seats int) (AllocationResult, error) {
	if seats < 0 {
		return AllocationResult{}, fmt.Errorf("seats must be non-negative, got %d", seats)
	}

	matches := make([]MatchResult, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			matches[i] = e.Evaluate(candidates[i], job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AllocationResult{}, err
	}

	result := AllocationResult{
		JobID:          job.ID,
		Seats:          seats,
		TotalEvaluated: len(candidates),
	}

	var rankable []AllocatedCandidate
	for i, m := range matches {
		entry := AllocatedCandidate{
			CandidateID: candidates[i].ID,
			Name:        candidates[i].Name,
			Match:       m,
		}
		if m.HardGateFailed() {
			entry.Status = DecisionRejected
			entry.SelectionReason = fmt.Sprintf("ineligible: %s", m.FailureReason)
			result.Ineligible = append(result.Ineligible, entry)
			continue
		}
		rankable = append(rankable, entry)
	}

	sort.SliceStable(rankable, func(a, b int) bool {
		if rankable[a].Match.Score != rankable[b].Match.Score {
			return rankable[a].Match.Score > rankable[b].Match.Score
		}
		return rankable[a].Match.Risk.Score < rankable[b].Match.Risk.Score
	})

	for i := range rankable {
		rank := i + 1
		rankable[i].Rank = rank
		switch {
		case i < seats:
			rankable[i].Status = DecisionSelected
			rankable[i].SelectionReason = fmt.Sprintf("ranked %d of %d for %d seats", rank, len(rankable), seats)
		case i < seats+waitlistSize:
			rankable[i].Status = DecisionWaitlisted
			rankable[i].SelectionReason = fmt.Sprintf("waitlisted at position %d", rank-seats)
		default:
			rankable[i].Status = DecisionRejected
			rankable[i].Match.FailureReason = ReasonSeatLimit
			rankable[i].SelectionReason = fmt.Sprintf("ranked %d, below seat and waitlist capacity", rank)
		}
	}
	result.Ranked = rankable

	// Cutoff is the weakest score that still won a seat.
	selected := seats
	if selected > len(rankable) {
		selected = len(rankable)
	}
	if selected > 0 {
		result.CutoffScore = rankable[selected-1].Match.Score
	}
	return result, nil
}
