package main

import (
	stderrors "errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusintel/placement-engine/internal/database"
	"github.com/campusintel/placement-engine/internal/engine"
	"github.com/campusintel/placement-engine/internal/errors"
	"github.com/campusintel/placement-engine/internal/types"
)

func (a *app) handleHealth(c *gin.Context) {
	counts, err := a.repo.Counts()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to read store counts", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"counts":    counts,
		"predictor": gin.H{"trained": a.predictor.Trained()},
	})
}

func (a *app) handleSaveCandidate(c *gin.Context) {
	var candidate types.CandidateProfile
	if err := c.ShouldBindJSON(&candidate); err != nil {
		abortWithError(c, errors.NewValidationError("invalid candidate payload", err))
		return
	}
	if err := candidate.Validate(); err != nil {
		abortWithError(c, errors.NewValidationError(err.Error(), err))
		return
	}

	if err := a.repo.SaveCandidate(candidate); err != nil {
		abortWithError(c, errors.NewInternalError("failed to save candidate", err))
		return
	}
	a.cache.Clear()

	c.JSON(http.StatusCreated, candidate)
}

func (a *app) handleListCandidates(c *gin.Context) {
	candidates, err := a.repo.ListCandidates()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to list candidates", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "count": len(candidates)})
}

func (a *app) handleGetCandidate(c *gin.Context) {
	candidate, ok := a.loadCandidate(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (a *app) handleDeleteCandidate(c *gin.Context) {
	id := c.Param("id")
	err := a.repo.DeleteCandidate(id)
	if err != nil {
		if stderrors.Is(err, database.ErrNotFound) {
			abortWithError(c, errors.NewNotFoundError("candidate", id))
		} else {
			abortWithError(c, errors.NewInternalError("failed to delete candidate", err))
		}
		return
	}
	a.cache.Clear()

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (a *app) handleCredibility(c *gin.Context) {
	candidate, ok := a.loadCandidate(c, c.Param("id"))
	if !ok {
		return
	}

	result := engine.ScoreCredibility(candidate.Skills)
	c.JSON(http.StatusOK, gin.H{
		"candidate_id": candidate.ID,
		"credibility":  result,
	})
}

func (a *app) handleSaveJob(c *gin.Context) {
	var job types.JobPosting
	if err := c.ShouldBindJSON(&job); err != nil {
		abortWithError(c, errors.NewValidationError("invalid job payload", err))
		return
	}
	if err := job.Validate(); err != nil {
		abortWithError(c, errors.NewValidationError(err.Error(), err))
		return
	}

	if err := a.repo.SaveJob(job); err != nil {
		abortWithError(c, errors.NewInternalError("failed to save job", err))
		return
	}
	a.cache.Clear()

	c.JSON(http.StatusCreated, job)
}

func (a *app) handleListJobs(c *gin.Context) {
	jobs, err := a.repo.ListJobs()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to list jobs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (a *app) handleGetJob(c *gin.Context) {
	job, ok := a.loadJob(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (a *app) handleRecordOutcome(c *gin.Context) {
	var outcome types.OutcomeRecord
	if err := c.ShouldBindJSON(&outcome); err != nil {
		abortWithError(c, errors.NewValidationError("invalid outcome payload", err))
		return
	}
	if err := outcome.Validate(); err != nil {
		abortWithError(c, errors.NewValidationError(err.Error(), err))
		return
	}

	id, err := a.repo.RecordOutcome(outcome)
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to record outcome", err))
		return
	}
	a.cache.Clear()

	c.JSON(http.StatusCreated, gin.H{"outcome_id": id})
}

func (a *app) handleListOutcomes(c *gin.Context) {
	outcomes, err := a.repo.ListOutcomes()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to list outcomes", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes, "count": len(outcomes)})
}

type matchRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"`
	JobID       string `json:"job_id" binding:"required"`
}

func (a *app) handleMatch(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("candidate_id and job_id are required", err))
		return
	}

	candidate, ok := a.loadCandidate(c, req.CandidateID)
	if !ok {
		return
	}
	job, ok := a.loadJob(c, req.JobID)
	if !ok {
		return
	}

	eng, err := a.engine()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to build decision engine", err))
		return
	}

	start := time.Now()
	result := eng.Evaluate(candidate, job)
	duration := time.Since(start)

	a.metrics.RecordMatchEvaluation(string(result.Decision))
	a.logger.EvaluationLogger(candidate.ID, job.ID, string(result.Decision),
		result.Score, string(result.Risk.Level), duration)

	c.JSON(http.StatusOK, result)
}

type allocateRequest struct {
	JobID        string   `json:"job_id" binding:"required"`
	Seats        int      `json:"seats"`
	CandidateIDs []string `json:"candidate_ids"`
}

func (a *app) handleAllocate(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("job_id is required", err))
		return
	}

	job, ok := a.loadJob(c, req.JobID)
	if !ok {
		return
	}

	var pool []types.CandidateProfile
	if len(req.CandidateIDs) > 0 {
		for _, id := range req.CandidateIDs {
			candidate, ok := a.loadCandidate(c, id)
			if !ok {
				return
			}
			pool = append(pool, candidate)
		}
	} else {
		var err error
		pool, err = a.repo.ListCandidates()
		if err != nil {
			abortWithError(c, errors.NewInternalError("failed to list candidates", err))
			return
		}
	}

	seats := req.Seats
	if seats == 0 {
		seats = job.OpenPositions
	}

	eng, err := a.engine()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to build decision engine", err))
		return
	}

	start := time.Now()
	result, err := eng.Allocate(c.Request.Context(), job, pool, seats)
	if err != nil {
		abortWithError(c, errors.NewComputationError("allocation failed", err))
		return
	}
	duration := time.Since(start)

	a.metrics.IncrementSeatAllocation()
	a.logger.AllocationLogger(job.ID, len(pool), seats, len(result.Ineligible),
		result.CutoffScore, duration)

	c.JSON(http.StatusOK, result)
}

type simulateRequest struct {
	Semesters int   `json:"semesters" binding:"required"`
	Seed      int64 `json:"seed"`
	Motivated *bool `json:"motivated"`
}

func (a *app) handleSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("semesters is required", err))
		return
	}

	candidate, ok := a.loadCandidate(c, c.Param("id"))
	if !ok {
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := engine.NewSimulator(rand.New(rand.NewSource(seed)))

	start := time.Now()
	var result engine.SimulationResult
	var err error
	if req.Motivated != nil {
		result, err = sim.SimulateMotivated(candidate, req.Semesters, *req.Motivated)
	} else {
		result, err = sim.Simulate(candidate, req.Semesters)
	}
	if err != nil {
		abortWithError(c, errors.NewValidationError(err.Error(), err))
		return
	}
	duration := time.Since(start)

	a.metrics.IncrementGrowthSimulation()
	a.logger.SimulationLogger(candidate.ID, req.Semesters,
		result.Growth.CGPADelta, result.Growth.CredibilityDelta, duration)

	c.JSON(http.StatusOK, gin.H{"seed": seed, "simulation": result})
}

func (a *app) handleTrain(c *gin.Context) {
	eng, err := a.engine()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to build decision engine", err))
		return
	}

	jobs, err := a.repo.ListJobs()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to list jobs", err))
		return
	}
	jobsByID := make(map[string]types.JobPosting, len(jobs))
	for _, j := range jobs {
		jobsByID[j.ID] = j
	}

	samples := eng.TrainingSet(jobsByID)

	start := time.Now()
	report, err := a.predictor.Train(samples)
	if err != nil {
		abortWithError(c, errors.NewComputationError(err.Error(), err))
		return
	}
	duration := time.Since(start)

	a.metrics.IncrementPredictorTraining()
	a.logger.TrainingLogger(report.Samples, report.Epochs, report.FinalLoss, duration)

	c.JSON(http.StatusOK, report)
}

func (a *app) handlePredict(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.NewValidationError("candidate_id and job_id are required", err))
		return
	}

	candidate, ok := a.loadCandidate(c, req.CandidateID)
	if !ok {
		return
	}
	job, ok := a.loadJob(c, req.JobID)
	if !ok {
		return
	}

	eng, err := a.engine()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to build decision engine", err))
		return
	}

	cred := engine.ScoreCredibility(candidate.Skills)
	risk := engine.AssessRisk(candidate, job, eng.History(), cred)
	ratio := engine.SkillMatchRatio(candidate, job.Eligibility.MandatorySkills)
	features := engine.Features(candidate, cred, risk, ratio)

	prediction, err := a.predictor.Predict(features)
	if err != nil {
		abortWithError(c, errors.NewComputationError(err.Error(), err))
		return
	}

	a.metrics.IncrementPrediction()

	c.JSON(http.StatusOK, gin.H{
		"candidate_id": candidate.ID,
		"job_id":       job.ID,
		"prediction":   prediction,
	})
}

func (a *app) handleFeatureImportance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"trained":    a.predictor.Trained(),
		"importance": a.predictor.FeatureImportance(),
	})
}

func (a *app) handleAudit(c *gin.Context) {
	eng, err := a.engine()
	if err != nil {
		abortWithError(c, errors.NewInternalError("failed to build decision engine", err))
		return
	}

	start := time.Now()
	result := eng.AuditFairness()
	duration := time.Since(start)

	a.metrics.IncrementFairnessAudit()
	a.logger.AuditLogger(result.TotalOutcomes, result.FairnessScore,
		len(result.Recommendations), duration)

	c.JSON(http.StatusOK, result)
}

type seedRequest struct {
	Candidates int   `json:"candidates"`
	Jobs       int   `json:"jobs"`
	Outcomes   int   `json:"outcomes"`
	Seed       int64 `json:"seed"`
}

func (a *app) handleSeed(c *gin.Context) {
	req := seedRequest{Candidates: 30, Jobs: 10, Outcomes: 50, Seed: 42}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, errors.NewValidationError("invalid seed payload", err))
			return
		}
	}

	seeder := database.NewSeeder(rand.New(rand.NewSource(req.Seed)))
	candidates := seeder.GenerateCandidates(req.Candidates)
	jobs := seeder.GenerateJobs(req.Jobs)
	outcomes := seeder.GenerateOutcomes(candidates, jobs, req.Outcomes)

	for _, candidate := range candidates {
		if err := a.repo.SaveCandidate(candidate); err != nil {
			abortWithError(c, errors.NewInternalError("failed to save seeded candidate", err))
			return
		}
	}
	for _, job := range jobs {
		if err := a.repo.SaveJob(job); err != nil {
			abortWithError(c, errors.NewInternalError("failed to save seeded job", err))
			return
		}
	}
	for _, outcome := range outcomes {
		if _, err := a.repo.RecordOutcome(outcome); err != nil {
			abortWithError(c, errors.NewInternalError("failed to save seeded outcome", err))
			return
		}
	}
	a.cache.Clear()

	a.logger.SystemLogger("seed", "synthetic dataset loaded")

	c.JSON(http.StatusCreated, gin.H{
		"candidates": len(candidates),
		"jobs":       len(jobs),
		"outcomes":   len(outcomes),
		"seed":       req.Seed,
	})
}
