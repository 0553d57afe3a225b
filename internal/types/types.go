package types

import (
	"strings"
	"time"
)

// ClaimedLevel is the self-reported proficiency on a resume skill claim.
type ClaimedLevel string

const (
	LevelBeginner     ClaimedLevel = "beginner"
	LevelIntermediate ClaimedLevel = "intermediate"
	LevelAdvanced     ClaimedLevel = "advanced"
)

// Evidence backs a skill claim with verifiable signals.
type Evidence struct {
	GitHub         bool `json:"github"`
	Projects       int  `json:"projects"`       // 0..5
	Certifications int  `json:"certifications"` // 0..3
	Internship     bool `json:"internship"`
}

// SkillClaim is a single resume skill with its evidence. Claims are immutable
// once scored; the temporal simulator produces new snapshots rather than
// mutating evidence in place.
type SkillClaim struct {
	Name         string       `json:"name"`
	ClaimedLevel ClaimedLevel `json:"claimed_level"`
	Evidence     Evidence     `json:"evidence"`
}

// CandidateProfile is a validated student record. Read-only to the engine.
type CandidateProfile struct {
	ID                 string       `json:"candidate_id"`
	Name               string       `json:"name"`
	Branch             string       `json:"branch"`
	CGPA               float64      `json:"cgpa"`            // 5.0..9.8
	ActiveBacklogs     int          `json:"active_backlogs"` // 0..5
	Skills             []SkillClaim `json:"skills"`
	CommunicationScore int          `json:"communication_score"`  // 1..10
	MockInterviewScore int          `json:"mock_interview_score"` // 1..10
}

// JobType classifies the hiring company.
type JobType string

const (
	JobTypeMNC     JobType = "MNC"
	JobTypeStartup JobType = "Startup"
	JobTypeProduct JobType = "Product"
	JobTypeService JobType = "Service"
)

// RiskTolerance is a job's willingness to take borderline candidates.
type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "low"
	RiskToleranceMedium RiskTolerance = "medium"
	RiskToleranceHigh   RiskTolerance = "high"
)

// Eligibility holds the hard gates applied before any weighted scoring.
type Eligibility struct {
	MinCGPA         float64  `json:"min_cgpa"`
	MaxBacklogs     int      `json:"max_backlogs"`
	MandatorySkills []string `json:"mandatory_skills"`
	PreferredSkills []string `json:"preferred_skills"`
}

// WeightPolicy holds the per-job scoring weights. Components are bounded
// individually but deliberately never normalized to sum to 1; a policy is an
// immutable value passed per call, never a shared mutable default.
type WeightPolicy struct {
	GPAWeight           float64 `json:"gpa_weight"`
	SkillWeight         float64 `json:"skill_weight"`
	CommunicationWeight float64 `json:"communication_weight"`
	MockInterviewWeight float64 `json:"mock_interview_weight"`
}

// JobPosting is a validated job record. Read-only to the engine.
type JobPosting struct {
	ID            string        `json:"job_id"`
	Name          string        `json:"name"`
	Type          JobType       `json:"type"`
	Eligibility   Eligibility   `json:"eligibility"`
	WeightPolicy  WeightPolicy  `json:"weight_policy"`
	RiskTolerance RiskTolerance `json:"risk_tolerance"`
	OpenPositions int           `json:"open_positions"`
}

// OutcomeResult is the terminal result of a historical placement attempt.
type OutcomeResult string

const (
	OutcomeSelected OutcomeResult = "selected"
	OutcomeRejected OutcomeResult = "rejected"
	OutcomeNoShow   OutcomeResult = "no_show"
)

// OutcomeRecord is an append-only historical placement fact. The engine only
// ever reads these for pattern analysis.
type OutcomeRecord struct {
	ID            string        `json:"outcome_id"`
	CandidateID   string        `json:"candidate_id"`
	JobID         string        `json:"job_id"`
	Shortlisted   bool          `json:"shortlisted"`
	Result        OutcomeResult `json:"result"`
	FailureReason string        `json:"failure_reason,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// HasSkill reports whether the candidate lists a skill whose name contains
// the given fragment, case-insensitively.
func (c CandidateProfile) HasSkill(fragment string) bool {
	fragment = strings.ToLower(fragment)
	for _, s := range c.Skills {
		if strings.Contains(strings.ToLower(s.Name), fragment) {
			return true
		}
	}
	return false
}

// SkillNames returns the candidate's lowercased skill name set.
func (c CandidateProfile) SkillNames() map[string]bool {
	names := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		names[strings.ToLower(s.Name)] = true
	}
	return names
}
