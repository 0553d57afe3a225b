package database

import (
	"time"

	"github.com/google/uuid"
)

// CandidateRow is the stored form of a candidate profile. Skills are kept as
// a JSON document; the database never inspects them.
type CandidateRow struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Branch             string    `json:"branch" db:"branch"`
	CGPA               float64   `json:"cgpa" db:"cgpa"`
	ActiveBacklogs     int       `json:"active_backlogs" db:"active_backlogs"`
	SkillsJSON         string    `json:"-" db:"skills"`
	CommunicationScore int       `json:"communication_score" db:"communication_score"`
	MockInterviewScore int       `json:"mock_interview_score" db:"mock_interview_score"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// JobRow is the stored form of a job posting. Eligibility and weight policy
// are kept as JSON documents.
type JobRow struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Type            string    `json:"type" db:"type"`
	EligibilityJSON string    `json:"-" db:"eligibility"`
	WeightJSON      string    `json:"-" db:"weight_policy"`
	RiskTolerance   string    `json:"risk_tolerance" db:"risk_tolerance"`
	OpenPositions   int       `json:"open_positions" db:"open_positions"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// OutcomeRow is one stored placement outcome. Rows are append-only facts.
type OutcomeRow struct {
	ID            string    `json:"id" db:"id"`
	CandidateID   string    `json:"candidate_id" db:"candidate_id"`
	JobID         string    `json:"job_id" db:"job_id"`
	Shortlisted   bool      `json:"shortlisted" db:"shortlisted"`
	Result        string    `json:"result" db:"result"`
	FailureReason string    `json:"failure_reason,omitempty" db:"failure_reason"`
	RecordedAt    time.Time `json:"recorded_at" db:"recorded_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewID returns a fresh row identifier.
func NewID() string {
	return uuid.New().String()
}
