package ai

import (
	"context"

	"github.com/spigell/job-radar/internal/jobs"
	"github.com/spigell/job-radar/internal/matching"
)

// FitAssessment is an advisory opinion about a record. It never changes the
// record's match score.
type FitAssessment struct {
	Fit    bool
	Score  float64
	Reason string
	Raw    string
}

// Candidate is the person records are reviewed for.
type Candidate struct {
	Summary     string   `json:"summary,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	TargetRoles []string `json:"target_roles,omitempty"`
	SalaryMin   float64  `json:"salary_min,omitempty"`
	SalaryMax   float64  `json:"salary_max,omitempty"`

	// Instructions are free-form hints from the user. They are passed to the
	// model as advisory text only.
	Instructions string `json:"-"`
}

type Reviewer interface {
	Evaluate(ctx context.Context, candidate *Candidate, rec *jobs.Record) (*FitAssessment, error)
}

// CandidateFromProfile builds a candidate from the matching profile.
func CandidateFromProfile(p *matching.Profile, summary, instructions string) *Candidate {
	c := &Candidate{Summary: summary, Instructions: instructions}
	if p == nil {
		return c
	}

	c.Skills = append(c.Skills, p.TechnicalSkills...)
	c.SalaryMin, c.SalaryMax = p.SalaryMin, p.SalaryMax

	seen := make(map[string]bool, len(p.RoleTransitions))
	for _, role := range p.RoleTransitions {
		if role.Name == "" || seen[role.Name] {
			continue
		}
		seen[role.Name] = true
		c.TargetRoles = append(c.TargetRoles, role.Name)
	}
	if c.Summary == "" {
		c.Summary = p.Name
	}
	return c
}
