package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrConfig is matched by every configuration validation failure.
var ErrConfig = errors.New("invalid matching configuration")

// ConfigError lists every problem found while loading matching settings.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfig, strings.Join(e.Problems, "; "))
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// Settings is the raw, user-editable matching configuration.
type Settings struct {
	MinimumMatchScore   *float64           `mapstructure:"minimum-match-score"`
	Weights             map[string]float64 `mapstructure:"weights"`
	Rules               []RuleSettings     `mapstructure:"rules"`
	HighSalaryThreshold *float64           `mapstructure:"high-salary-threshold"`
	TechnicalKeywords   []string           `mapstructure:"technical-keywords"`
	ExperienceFloor     *float64           `mapstructure:"experience-floor"`
}

// RuleSettings declares one penalty rule. Rules fire in the order they are declared.
type RuleSettings struct {
	Name      string   `mapstructure:"name"`
	Magnitude *float64 `mapstructure:"magnitude"`
	Keywords  []string `mapstructure:"keywords"`
}

func ptr(v float64) *float64 {
	return &v
}

// DefaultSettings returns the built-in tuning.
func DefaultSettings() Settings {
	return Settings{
		MinimumMatchScore: ptr(0.5),
		Weights: map[string]float64{
			FactorTechnicalSkills:     0.25,
			FactorIndustryExperience:  0.20,
			FactorRoleTransition:      0.20,
			FactorLocationFit:         0.10,
			FactorSalaryFit:           0.10,
			FactorRemoteCompatibility: 0.05,
			FactorCompanyFit:          0.05,
			FactorExperienceLevel:     0.03,
			FactorGrowthPotential:     0.02,
			FactorIndustryTechBonus:   0.15,
			FactorPortfolioBonus:      0.10,
			FactorLocalEmployerBonus:  0.05,
		},
		Rules: []RuleSettings{
			{
				Name:      RuleExecutiveOverqualification,
				Magnitude: ptr(-0.40),
				Keywords: []string{
					"vice president", "vp ", "executive director", "chief", "ceo", "cfo", "cto",
					"senior director", "managing director", "general manager", "division manager",
					"regional manager", "senior business analyst", "senior manager",
				},
			},
			{Name: RuleHighSalaryNonTechnical, Magnitude: ptr(-0.35)},
			{
				Name:      RuleOverqualification,
				Magnitude: ptr(-0.25),
				Keywords:  []string{"principal analyst", "principal consultant", "senior consultant", "head of"},
			},
			{
				Name:      RuleAdvancedDegreeRequired,
				Magnitude: ptr(-0.25),
				Keywords: []string{
					"mba required", "masters required", "master's required", "phd required",
					"advanced degree required", "doctorate required",
				},
			},
			{
				Name:      RulePhysicalDemands,
				Magnitude: ptr(-0.20),
				Keywords:  []string{"field work", "physical", "travel", "outdoor", "lifting", "standing"},
			},
			{Name: RuleEntryLevelMismatch, Magnitude: ptr(-0.15)},
			{
				Name:      RuleSecurityClearance,
				Magnitude: ptr(-0.10),
				Keywords:  []string{"clearance", "security clearance", "classified"},
			},
		},
		HighSalaryThreshold: ptr(200000),
		TechnicalKeywords:   []string{"python", "automation", "technical", "data", "programming"},
		ExperienceFloor:     ptr(0.5),
	}
}

type weightedFactor struct {
	name   string
	weight float64
	eval   factorFunc
}

type compiledRule struct {
	name      string
	magnitude float64
	keywords  []string
	eval      ruleFunc
}

// Config is a validated, immutable matching configuration. Build it with Load.
type Config struct {
	minimumMatchScore   float64
	factors             []weightedFactor
	rules               []compiledRule
	highSalaryThreshold float64
	technicalKeywords   []string
	experienceFloor     float64
}

// MinimumMatchScore returns the gate threshold.
func (c *Config) MinimumMatchScore() float64 {
	return c.minimumMatchScore
}

// RuleNames returns the enabled rules in declaration order.
func (c *Config) RuleNames() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.name)
	}
	return names
}

// FactorWeights returns the enabled factors and their weights in evaluation order.
func (c *Config) FactorWeights() []FactorScore {
	out := make([]FactorScore, 0, len(c.factors))
	for _, f := range c.factors {
		out = append(out, FactorScore{Name: f.name, Weight: f.weight})
	}
	return out
}

// Load validates s and compiles it into a Config. Non-fatal findings are
// returned as warnings; any hard problem yields a *ConfigError.
func Load(s Settings) (*Config, []string, error) {
	var (
		problems []string
		warnings []string
	)

	finite := func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}

	cfg := &Config{}

	switch {
	case s.MinimumMatchScore == nil:
		problems = append(problems, "minimum-match-score is required")
	case !finite(*s.MinimumMatchScore):
		problems = append(problems, fmt.Sprintf("minimum-match-score must be finite, got %v", *s.MinimumMatchScore))
	default:
		cfg.minimumMatchScore = *s.MinimumMatchScore
	}

	unknownFactors := make([]string, 0)
	for name := range s.Weights {
		if _, ok := factorByName(name); !ok {
			unknownFactors = append(unknownFactors, name)
		}
	}
	sort.Strings(unknownFactors)
	for _, name := range unknownFactors {
		problems = append(problems, fmt.Sprintf("unknown factor %q in weights", name))
	}

	for _, f := range factorTable {
		w, ok := s.Weights[f.name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("factor %q has no weight and is disabled", f.name))
			continue
		}
		if !finite(w) {
			problems = append(problems, fmt.Sprintf("weight of factor %q must be finite, got %v", f.name, w))
			continue
		}
		cfg.factors = append(cfg.factors, weightedFactor{name: f.name, weight: w, eval: f.eval})
	}

	if s.HighSalaryThreshold != nil {
		if !finite(*s.HighSalaryThreshold) {
			problems = append(problems, fmt.Sprintf("high-salary-threshold must be finite, got %v", *s.HighSalaryThreshold))
		}
		cfg.highSalaryThreshold = *s.HighSalaryThreshold
	}
	if s.ExperienceFloor != nil {
		if !finite(*s.ExperienceFloor) {
			problems = append(problems, fmt.Sprintf("experience-floor must be finite, got %v", *s.ExperienceFloor))
		}
		cfg.experienceFloor = *s.ExperienceFloor
	}
	cfg.technicalKeywords = lowerAll(s.TechnicalKeywords)

	declared := make(map[string]bool, len(s.Rules))
	for i, rs := range s.Rules {
		def, ok := ruleByName(rs.Name)
		if !ok {
			problems = append(problems, fmt.Sprintf("rules[%d]: unknown rule %q", i, rs.Name))
			continue
		}
		if declared[rs.Name] {
			problems = append(problems, fmt.Sprintf("rules[%d]: rule %q declared more than once", i, rs.Name))
			continue
		}
		declared[rs.Name] = true

		if rs.Magnitude == nil {
			warnings = append(warnings, fmt.Sprintf("rule %q has no magnitude and is disabled", rs.Name))
			continue
		}
		m := *rs.Magnitude
		if !finite(m) {
			problems = append(problems, fmt.Sprintf("magnitude of rule %q must be finite, got %v", rs.Name, m))
			continue
		}
		if m > 0 {
			problems = append(problems, fmt.Sprintf("magnitude of rule %q must not be positive, got %v", rs.Name, m))
			continue
		}

		switch def.needs {
		case needsKeywords:
			if len(rs.Keywords) == 0 {
				warnings = append(warnings, fmt.Sprintf("rule %q has no keywords and will never fire", rs.Name))
			}
		case needsSalaryThreshold:
			if s.HighSalaryThreshold == nil {
				warnings = append(warnings, fmt.Sprintf("rule %q needs high-salary-threshold and is disabled", rs.Name))
				continue
			}
		case needsExperienceFloor:
			if s.ExperienceFloor == nil {
				warnings = append(warnings, fmt.Sprintf("rule %q needs experience-floor and is disabled", rs.Name))
				continue
			}
		}

		cfg.rules = append(cfg.rules, compiledRule{
			name:      rs.Name,
			magnitude: m,
			keywords:  lowerAll(rs.Keywords),
			eval:      def.eval,
		})
	}

	for _, def := range ruleTable {
		if !declared[def.name] {
			warnings = append(warnings, fmt.Sprintf("rule %q is not configured and is disabled", def.name))
		}
	}

	if len(problems) > 0 {
		return nil, warnings, &ConfigError{Problems: problems}
	}
	return cfg, warnings, nil
}

// lowerAll lower-cases keywords and drops blank ones. Surrounding spaces are
// part of a keyword: "vp " must not match "vpn".
func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out
}
