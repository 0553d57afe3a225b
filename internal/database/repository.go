package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campusintel/placement-engine/internal/types"
)

// ErrNotFound marks a lookup for an id absent from the store.
var ErrNotFound = errors.New("not found")

// Repository persists candidates, jobs, and outcomes. Structured fields
// round-trip through JSON columns; the engine only ever sees decoded values.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveCandidate inserts or updates a candidate profile.
func (r *Repository) SaveCandidate(c types.CandidateProfile) error {
	skills, err := json.Marshal(c.Skills)
	if err != nil {
		return fmt.Errorf("failed to encode skills: %w", err)
	}

	stmt, err := r.db.GetPreparedStatement("insert_candidate")
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = stmt.Exec(c.ID, c.Name, c.Branch, c.CGPA, c.ActiveBacklogs,
		string(skills), c.CommunicationScore, c.MockInterviewScore, now, now)
	if err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", c.ID, err)
	}
	return nil
}

// GetCandidate loads one candidate by id.
func (r *Repository) GetCandidate(id string) (types.CandidateProfile, error) {
	stmt, err := r.db.GetPreparedStatement("get_candidate")
	if err != nil {
		return types.CandidateProfile{}, err
	}

	var c types.CandidateProfile
	var skillsJSON string
	err = stmt.QueryRow(id).Scan(&c.ID, &c.Name, &c.Branch, &c.CGPA,
		&c.ActiveBacklogs, &skillsJSON, &c.CommunicationScore, &c.MockInterviewScore)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CandidateProfile{}, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.CandidateProfile{}, fmt.Errorf("failed to load candidate %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(skillsJSON), &c.Skills); err != nil {
		return types.CandidateProfile{}, fmt.Errorf("failed to decode skills for %s: %w", id, err)
	}
	return c, nil
}

// ListCandidates loads every stored candidate, ordered by id.
func (r *Repository) ListCandidates() ([]types.CandidateProfile, error) {
	stmt, err := r.db.GetPreparedStatement("list_candidates")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.CandidateProfile
	for rows.Next() {
		var c types.CandidateProfile
		var skillsJSON string
		if err := rows.Scan(&c.ID, &c.Name, &c.Branch, &c.CGPA,
			&c.ActiveBacklogs, &skillsJSON, &c.CommunicationScore, &c.MockInterviewScore); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if err := json.Unmarshal([]byte(skillsJSON), &c.Skills); err != nil {
			return nil, fmt.Errorf("failed to decode skills for %s: %w", c.ID, err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// DeleteCandidate removes a candidate. Outcomes referencing it are kept;
// history analysis tolerates unknown candidate ids.
func (r *Repository) DeleteCandidate(id string) error {
	res, err := r.db.Exec(`DELETE FROM candidates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveJob inserts or updates a job posting.
func (r *Repository) SaveJob(j types.JobPosting) error {
	eligibility, err := json.Marshal(j.Eligibility)
	if err != nil {
		return fmt.Errorf("failed to encode eligibility: %w", err)
	}
	weights, err := json.Marshal(j.WeightPolicy)
	if err != nil {
		return fmt.Errorf("failed to encode weight policy: %w", err)
	}

	stmt, err := r.db.GetPreparedStatement("insert_job")
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = stmt.Exec(j.ID, j.Name, string(j.Type), string(eligibility),
		string(weights), string(j.RiskTolerance), j.OpenPositions, now, now)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", j.ID, err)
	}
	return nil
}

// GetJob loads one job posting by id.
func (r *Repository) GetJob(id string) (types.JobPosting, error) {
	stmt, err := r.db.GetPreparedStatement("get_job")
	if err != nil {
		return types.JobPosting{}, err
	}

	var j types.JobPosting
	var jobType, tolerance, eligibilityJSON, weightJSON string
	err = stmt.QueryRow(id).Scan(&j.ID, &j.Name, &jobType, &eligibilityJSON,
		&weightJSON, &tolerance, &j.OpenPositions)
	if errors.Is(err, sql.ErrNoRows) {
		return types.JobPosting{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.JobPosting{}, fmt.Errorf("failed to load job %s: %w", id, err)
	}

	j.Type = types.JobType(jobType)
	j.RiskTolerance = types.RiskTolerance(tolerance)
	if err := json.Unmarshal([]byte(eligibilityJSON), &j.Eligibility); err != nil {
		return types.JobPosting{}, fmt.Errorf("failed to decode eligibility for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(weightJSON), &j.WeightPolicy); err != nil {
		return types.JobPosting{}, fmt.Errorf("failed to decode weight policy for %s: %w", id, err)
	}
	return j, nil
}

// ListJobs loads every stored job posting, ordered by id.
func (r *Repository) ListJobs() ([]types.JobPosting, error) {
	stmt, err := r.db.GetPreparedStatement("list_jobs")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobPosting
	for rows.Next() {
		var j types.JobPosting
		var jobType, tolerance, eligibilityJSON, weightJSON string
		if err := rows.Scan(&j.ID, &j.Name, &jobType, &eligibilityJSON,
			&weightJSON, &tolerance, &j.OpenPositions); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		j.Type = types.JobType(jobType)
		j.RiskTolerance = types.RiskTolerance(tolerance)
		if err := json.Unmarshal([]byte(eligibilityJSON), &j.Eligibility); err != nil {
			return nil, fmt.Errorf("failed to decode eligibility for %s: %w", j.ID, err)
		}
		if err := json.Unmarshal([]byte(weightJSON), &j.WeightPolicy); err != nil {
			return nil, fmt.Errorf("failed to decode weight policy for %s: %w", j.ID, err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// RecordOutcome appends one outcome record and returns its id.
func (r *Repository) RecordOutcome(o types.OutcomeRecord) (string, error) {
	if o.ID == "" {
		o.ID = NewID()
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now()
	}

	stmt, err := r.db.GetPreparedStatement("insert_outcome")
	if err != nil {
		return "", err
	}

	var reason sql.NullString
	if o.FailureReason != "" {
		reason = sql.NullString{String: o.FailureReason, Valid: true}
	}
	_, err = stmt.Exec(o.ID, o.CandidateID, o.JobID, o.Shortlisted,
		string(o.Result), reason, o.Timestamp, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to record outcome: %w", err)
	}
	return o.ID, nil
}

// ListOutcomes loads the full outcome log in recorded order.
func (r *Repository) ListOutcomes() ([]types.OutcomeRecord, error) {
	stmt, err := r.db.GetPreparedStatement("list_outcomes")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.OutcomeRecord
	for rows.Next() {
		var o types.OutcomeRecord
		var result string
		var reason sql.NullString
		if err := rows.Scan(&o.ID, &o.CandidateID, &o.JobID, &o.Shortlisted,
			&result, &reason, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Result = types.OutcomeResult(result)
		o.FailureReason = reason.String
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Counts returns stored row counts for health reporting.
func (r *Repository) Counts() (map[string]int, error) {
	counts := make(map[string]int, 3)
	for _, table := range []string{"candidates", "jobs", "outcomes"} {
		var n int
		if err := r.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
