package matching

import (
	"sort"

	"github.com/spigell/job-radar/internal/jobs"
)

// FactorScore is the contribution of a single weighted factor.
type FactorScore struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}

// Penalty is a fired rule.
type Penalty struct {
	Rule      string  `json:"rule"`
	Magnitude float64 `json:"magnitude"`
	Reason    string  `json:"reason"`
}

// MatchResult explains how a record was scored. It owns its slices.
type MatchResult struct {
	BaseScore  float64       `json:"base_score"`
	Factors    []FactorScore `json:"factors"`
	Penalties  []Penalty     `json:"penalties"`
	FinalScore float64       `json:"final_score"`
	Passed     bool          `json:"passed"`
	Reasons    []string      `json:"reasons"`
}

// PenaltyNames returns the fired rules in declaration order.
func (m MatchResult) PenaltyNames() []string {
	names := make([]string, 0, len(m.Penalties))
	for _, p := range m.Penalties {
		names = append(names, p.Rule)
	}
	return names
}

// Assessment converts the result into the summary stored on a record.
func (m MatchResult) Assessment() *jobs.Assessment {
	return &jobs.Assessment{
		BaseScore:  m.BaseScore,
		FinalScore: m.FinalScore,
		Passed:     m.Passed,
		Penalties:  m.PenaltyNames(),
		Reasons:    append([]string(nil), m.Reasons...),
	}
}

// Score evaluates rec against cfg and profile. cfg must come from Load.
// A nil profile scores every profile-driven factor as if nothing matched.
func Score(rec jobs.Record, cfg *Config, profile *Profile) MatchResult {
	if profile == nil {
		profile = &Profile{}
	}

	v := newView(&rec)
	evals := make(map[string]factorEval, len(factorTable))
	for _, f := range factorTable {
		evals[f.name] = f.eval(v, profile)
	}

	res := MatchResult{
		Factors:   make([]FactorScore, 0, len(cfg.factors)),
		Penalties: []Penalty{},
		Reasons:   []string{},
	}

	for _, f := range cfg.factors {
		e := evals[f.name]
		res.Factors = append(res.Factors, FactorScore{Name: f.name, Weight: f.weight, Score: e.score})
		res.BaseScore += f.weight * e.score
		if f.weight != 0 {
			res.Reasons = append(res.Reasons, e.reasons...)
		}
	}

	for _, r := range cfg.rules {
		fired, reason := r.eval(ruleInput{view: v, keywords: r.keywords, factors: evals, cfg: cfg})
		if !fired {
			continue
		}
		res.Penalties = append(res.Penalties, Penalty{Rule: r.name, Magnitude: r.magnitude, Reason: reason})
		res.Reasons = append(res.Reasons, reason)
	}

	res.FinalScore = res.BaseScore + sumPenalties(res.Penalties)
	res.Passed = res.FinalScore >= cfg.minimumMatchScore
	return res
}

// sumPenalties adds magnitudes in sorted order so the total does not depend
// on the order rules were declared in.
func sumPenalties(penalties []Penalty) float64 {
	magnitudes := make([]float64, 0, len(penalties))
	for _, p := range penalties {
		magnitudes = append(magnitudes, p.Magnitude)
	}
	sort.Float64s(magnitudes)

	var total float64
	for _, m := range magnitudes {
		total += m
	}
	return total
}
