package types

import "fmt"

// Validation happens once, at the data-model boundary. Engine code assumes it
// has already run and never re-checks ranges.

func (e Evidence) Validate() error {
	if e.Projects < 0 || e.Projects > 5 {
		return fmt.Errorf("projects must be in [0,5], got %d", e.Projects)
	}
	if e.Certifications < 0 || e.Certifications > 3 {
		return fmt.Errorf("certifications must be in [0,3], got %d", e.Certifications)
	}
	return nil
}

func (s SkillClaim) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("skill name cannot be empty")
	}
	switch s.ClaimedLevel {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return fmt.Errorf("skill %q: unknown claimed level %q", s.Name, s.ClaimedLevel)
	}
	if err := s.Evidence.Validate(); err != nil {
		return fmt.Errorf("skill %q: %w", s.Name, err)
	}
	return nil
}

func (c CandidateProfile) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("candidate id cannot be empty")
	}
	if c.CGPA < 5.0 || c.CGPA > 9.8 {
		return fmt.Errorf("cgpa must be in [5.0,9.8], got %.2f", c.CGPA)
	}
	if c.ActiveBacklogs < 0 || c.ActiveBacklogs > 5 {
		return fmt.Errorf("active backlogs must be in [0,5], got %d", c.ActiveBacklogs)
	}
	if c.CommunicationScore < 1 || c.CommunicationScore > 10 {
		return fmt.Errorf("communication score must be in [1,10], got %d", c.CommunicationScore)
	}
	if c.MockInterviewScore < 1 || c.MockInterviewScore > 10 {
		return fmt.Errorf("mock interview score must be in [1,10], got %d", c.MockInterviewScore)
	}
	for _, s := range c.Skills {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (w WeightPolicy) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"gpa_weight", w.GPAWeight},
		{"skill_weight", w.SkillWeight},
		{"communication_weight", w.CommunicationWeight},
		{"mock_interview_weight", w.MockInterviewWeight},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %.2f", f.name, f.value)
		}
	}
	return nil
}

func (j JobPosting) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id cannot be empty")
	}
	switch j.Type {
	case JobTypeMNC, JobTypeStartup, JobTypeProduct, JobTypeService:
	default:
		return fmt.Errorf("unknown job type %q", j.Type)
	}
	switch j.RiskTolerance {
	case RiskToleranceLow, RiskToleranceMedium, RiskToleranceHigh:
	default:
		return fmt.Errorf("unknown risk tolerance %q", j.RiskTolerance)
	}
	if j.Eligibility.MinCGPA < 0 || j.Eligibility.MinCGPA > 10 {
		return fmt.Errorf("min cgpa must be in [0,10], got %.2f", j.Eligibility.MinCGPA)
	}
	if j.Eligibility.MaxBacklogs < 0 {
		return fmt.Errorf("max backlogs cannot be negative, got %d", j.Eligibility.MaxBacklogs)
	}
	if j.OpenPositions < 1 {
		return fmt.Errorf("open positions must be at least 1, got %d", j.OpenPositions)
	}
	return j.WeightPolicy.Validate()
}

func (o OutcomeRecord) Validate() error {
	if o.CandidateID == "" || o.JobID == "" {
		return fmt.Errorf("outcome record must reference a candidate and a job")
	}
	switch o.Result {
	case OutcomeSelected, OutcomeRejected, OutcomeNoShow:
	default:
		return fmt.Errorf("unknown outcome result %q", o.Result)
	}
	return nil
}
