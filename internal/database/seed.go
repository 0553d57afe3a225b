package database

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/campusintel/placement-engine/internal/types"
)

// Archetype shares for the synthetic pool. At-risk candidates deliberately
// carry strong skill portfolios against weak academics, which exercises the
// credibility and fairness paths.
const (
	starShare    = 0.30
	averageShare = 0.50
)

var (
	seedBranches = []string{"CSE", "ECE", "EEE", "MECH", "CIVIL"}

	seedSkillPool = []string{
		"Python", "Java", "C++", "JavaScript", "TypeScript", "Go",
		"React", "Node.js", "Django", "Spring Boot",
		"SQL", "MongoDB", "PostgreSQL", "Pandas",
		"Machine Learning", "Deep Learning", "TensorFlow",
		"AWS", "Docker", "Kubernetes",
		"Git", "REST API", "System Design", "Data Structures",
	}

	seedFirstNames = []string{
		"Aarav", "Ananya", "Arjun", "Diya", "Ishaan", "Kavya",
		"Meera", "Nikhil", "Priya", "Rahul", "Riya", "Rohan",
		"Sanya", "Siddharth", "Sneha", "Tanvi", "Varun", "Vikram",
	}
	seedLastNames = []string{
		"Agarwal", "Bhat", "Chopra", "Desai", "Gupta", "Iyer",
		"Joshi", "Kumar", "Mehta", "Nair", "Patel", "Reddy",
		"Sharma", "Singh", "Verma",
	}

	seedCompanies = map[types.JobType][]string{
		types.JobTypeMNC:     {"Globex", "Initech", "Vandelay Systems", "Stark Analytics"},
		types.JobTypeStartup: {"TechNova", "DataFusion", "CloudScale", "DevStream"},
		types.JobTypeService: {"Meridian Consulting", "Apex Services", "Corewave"},
		types.JobTypeProduct: {"Lumenly", "Gridbase", "Signalfort"},
	}

	seedRoles = []string{
		"Software Engineer", "Backend Developer", "Frontend Developer",
		"Full Stack Developer", "Data Analyst", "ML Engineer", "DevOps Engineer",
	}
)

// Seeder generates a deterministic synthetic dataset for demos and local
// development. The same seed always produces the same pool.
type Seeder struct {
	rng *rand.Rand
}

// NewSeeder creates a seeder driven by the given source.
func NewSeeder(rng *rand.Rand) *Seeder {
	return &Seeder{rng: rng}
}

// GenerateCandidates produces a mixed candidate pool. Roughly 30% are star
// profiles, 50% average, and the rest at-risk.
func (s *Seeder) GenerateCandidates(count int) []types.CandidateProfile {
	starCount := int(float64(count) * starShare)
	averageCount := int(float64(count) * averageShare)

	candidates := make([]types.CandidateProfile, 0, count)
	for i := 0; i < count; i++ {
		var c types.CandidateProfile
		switch {
		case i < starCount:
			c = s.starCandidate()
		case i < starCount+averageCount:
			c = s.averageCandidate()
		default:
			c = s.atRiskCandidate()
		}
		c.ID = fmt.Sprintf("CAND_%03d", i+1)
		c.Name = s.pickName()
		c.Branch = seedBranches[s.rng.Intn(len(seedBranches))]
		candidates = append(candidates, c)
	}
	return candidates
}

func (s *Seeder) starCandidate() types.CandidateProfile {
	return types.CandidateProfile{
		CGPA:               s.uniform(8.5, 9.8),
		ActiveBacklogs:     0,
		Skills:             s.skills(4, 6, s.strongClaim),
		CommunicationScore: 6 + s.rng.Intn(5),
		MockInterviewScore: 6 + s.rng.Intn(5),
	}
}

func (s *Seeder) averageCandidate() types.CandidateProfile {
	backlogs := 0
	if s.rng.Float64() < 0.25 {
		backlogs = 1
	}
	return types.CandidateProfile{
		CGPA:               s.uniform(7.0, 8.5),
		ActiveBacklogs:     backlogs,
		Skills:             s.skills(3, 5, s.moderateClaim),
		CommunicationScore: 4 + s.rng.Intn(4),
		MockInterviewScore: 4 + s.rng.Intn(4),
	}
}

// At-risk candidates often claim advanced levels without the evidence to back
// them, which is the pattern the credibility scorer is built to catch.
func (s *Seeder) atRiskCandidate() types.CandidateProfile {
	return types.CandidateProfile{
		CGPA:               s.uniform(5.0, 7.0),
		ActiveBacklogs:     1 + s.rng.Intn(3),
		Skills:             s.skills(4, 7, s.inflatedClaim),
		CommunicationScore: 2 + s.rng.Intn(4),
		MockInterviewScore: 2 + s.rng.Intn(4),
	}
}

func (s *Seeder) skills(min, max int, claim func(string) types.SkillClaim) []types.SkillClaim {
	count := min + s.rng.Intn(max-min+1)
	picked := s.rng.Perm(len(seedSkillPool))[:count]
	skills := make([]types.SkillClaim, 0, count)
	for _, idx := range picked {
		skills = append(skills, claim(seedSkillPool[idx]))
	}
	return skills
}

func (s *Seeder) strongClaim(name string) types.SkillClaim {
	level := types.LevelIntermediate
	if s.rng.Float64() < 0.5 {
		level = types.LevelAdvanced
	}
	return types.SkillClaim{
		Name:         name,
		ClaimedLevel: level,
		Evidence: types.Evidence{
			GitHub:         true,
			Projects:       2 + s.rng.Intn(3),
			Certifications: s.rng.Intn(3),
			Internship:     s.rng.Float64() < 0.6,
		},
	}
}

func (s *Seeder) moderateClaim(name string) types.SkillClaim {
	level := types.LevelBeginner
	if s.rng.Float64() < 0.6 {
		level = types.LevelIntermediate
	}
	return types.SkillClaim{
		Name:         name,
		ClaimedLevel: level,
		Evidence: types.Evidence{
			GitHub:         s.rng.Float64() < 0.4,
			Projects:       s.rng.Intn(3),
			Certifications: s.rng.Intn(2),
			Internship:     false,
		},
	}
}

func (s *Seeder) inflatedClaim(name string) types.SkillClaim {
	level := types.LevelAdvanced
	if s.rng.Float64() < 0.3 {
		level = types.LevelIntermediate
	}
	return types.SkillClaim{
		Name:         name,
		ClaimedLevel: level,
		Evidence: types.Evidence{
			GitHub:   s.rng.Float64() < 0.15,
			Projects: s.rng.Intn(2),
		},
	}
}

// GenerateJobs produces job postings whose gates vary by company type, with
// MNC postings the strictest and startups the most lenient.
func (s *Seeder) GenerateJobs(count int) []types.JobPosting {
	jobTypes := []types.JobType{
		types.JobTypeMNC, types.JobTypeStartup,
		types.JobTypeService, types.JobTypeProduct,
	}

	jobs := make([]types.JobPosting, 0, count)
	for i := 0; i < count; i++ {
		jobType := jobTypes[s.rng.Intn(len(jobTypes))]
		company := seedCompanies[jobType][s.rng.Intn(len(seedCompanies[jobType]))]
		role := seedRoles[s.rng.Intn(len(seedRoles))]

		var eligibility types.Eligibility
		var tolerance types.RiskTolerance
		switch jobType {
		case types.JobTypeMNC:
			eligibility.MinCGPA = s.uniform(7.5, 8.5)
			eligibility.MaxBacklogs = 0
			tolerance = types.RiskToleranceLow
		case types.JobTypeStartup:
			eligibility.MinCGPA = s.uniform(6.0, 7.0)
			eligibility.MaxBacklogs = s.rng.Intn(2)
			tolerance = types.RiskToleranceHigh
		case types.JobTypeService:
			eligibility.MinCGPA = s.uniform(6.5, 7.5)
			eligibility.MaxBacklogs = s.rng.Intn(3)
			tolerance = types.RiskToleranceMedium
		default:
			eligibility.MinCGPA = s.uniform(7.0, 8.0)
			eligibility.MaxBacklogs = s.rng.Intn(2)
			tolerance = types.RiskToleranceMedium
		}

		mandatoryCount := 2 + s.rng.Intn(3)
		preferredCount := 1 + s.rng.Intn(3)
		picked := s.rng.Perm(len(seedSkillPool))
		eligibility.MandatorySkills = s.skillNames(picked[:mandatoryCount])
		eligibility.PreferredSkills = s.skillNames(picked[mandatoryCount : mandatoryCount+preferredCount])

		jobs = append(jobs, types.JobPosting{
			ID:          fmt.Sprintf("JOB_%03d", i+1),
			Name:        fmt.Sprintf("%s - %s", company, role),
			Type:        jobType,
			Eligibility: eligibility,
			WeightPolicy: types.WeightPolicy{
				GPAWeight:           0.30,
				SkillWeight:         0.35,
				CommunicationWeight: 0.20,
				MockInterviewWeight: 0.15,
			},
			RiskTolerance: tolerance,
			OpenPositions: 2 + s.rng.Intn(4),
		})
	}
	return jobs
}

func (s *Seeder) skillNames(indexes []int) []string {
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, seedSkillPool[idx])
	}
	return names
}

// GenerateOutcomes produces a historical log consistent with the gates: hard
// constraint failures always reject, and stronger candidates get hired more.
func (s *Seeder) GenerateOutcomes(candidates []types.CandidateProfile, jobs []types.JobPosting, count int) []types.OutcomeRecord {
	if len(candidates) == 0 || len(jobs) == 0 {
		return nil
	}

	outcomes := make([]types.OutcomeRecord, 0, count)
	base := time.Now().AddDate(-1, 0, 0)
	for i := 0; i < count; i++ {
		candidate := candidates[s.rng.Intn(len(candidates))]
		job := jobs[s.rng.Intn(len(jobs))]

		record := types.OutcomeRecord{
			ID:          fmt.Sprintf("OUT_%04d", i+1),
			CandidateID: candidate.ID,
			JobID:       job.ID,
			Timestamp:   base.Add(time.Duration(s.rng.Intn(365*24)) * time.Hour),
		}

		switch {
		case candidate.CGPA < job.Eligibility.MinCGPA:
			record.Result = types.OutcomeRejected
			record.FailureReason = "cgpa"
		case candidate.ActiveBacklogs > job.Eligibility.MaxBacklogs:
			record.Result = types.OutcomeRejected
			record.FailureReason = "backlogs"
		default:
			record.Shortlisted = true
			hireChance := 0.35 + 0.04*float64(candidate.CommunicationScore)
			switch {
			case s.rng.Float64() < hireChance:
				record.Result = types.OutcomeSelected
			case s.rng.Float64() < 0.1:
				record.Result = types.OutcomeNoShow
			default:
				record.Result = types.OutcomeRejected
				if s.rng.Float64() < 0.5 {
					record.FailureReason = "failed_interview"
				} else {
					record.FailureReason = "poor_communication"
				}
			}
		}
		outcomes = append(outcomes, record)
	}
	return outcomes
}

func (s *Seeder) pickName() string {
	first := seedFirstNames[s.rng.Intn(len(seedFirstNames))]
	last := seedLastNames[s.rng.Intn(len(seedLastNames))]
	return first + " " + last
}

func (s *Seeder) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
