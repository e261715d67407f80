package matching

import (
	"fmt"
	"math"
)

// KeywordTier assigns a score when any keyword matches. Tiers are checked in order
// and the first matching tier wins.
type KeywordTier struct {
	Keywords []string `mapstructure:"keywords" json:"keywords"`
	Score    float64  `mapstructure:"score" json:"score"`
	Reason   string   `mapstructure:"reason" json:"reason"`
	// MatchRemote makes the tier match records flagged as remote regardless of keywords.
	MatchRemote bool `mapstructure:"match-remote" json:"match_remote,omitempty"`
}

// RoleTransition describes a target role reachable from the user's current career.
type RoleTransition struct {
	Name                  string   `mapstructure:"name" json:"name"`
	TitleKeywords         []string `mapstructure:"title-keywords" json:"title_keywords"`
	DescriptionKeywords   []string `mapstructure:"description-keywords" json:"description_keywords"`
	MinDescriptionMatches int      `mapstructure:"min-description-matches" json:"min_description_matches"`
	Score                 float64  `mapstructure:"score" json:"score"`
	Reason                string   `mapstructure:"reason" json:"reason"`
}

// Profile is the static description of the user the factors score against.
type Profile struct {
	Name string `mapstructure:"name" json:"name"`

	TechnicalSkills []string            `mapstructure:"technical-skills" json:"technical_skills"`
	SkillSynonyms   map[string][]string `mapstructure:"skill-synonyms" json:"skill_synonyms"`
	HighValueSkills []string            `mapstructure:"high-value-skills" json:"high_value_skills"`

	IndustryTiers  []KeywordTier `mapstructure:"industry-tiers" json:"industry_tiers"`
	BridgeKeywords []string      `mapstructure:"bridge-keywords" json:"bridge_keywords"`
	BridgeScore    float64       `mapstructure:"bridge-score" json:"bridge_score"`

	RoleTransitions []RoleTransition `mapstructure:"role-transitions" json:"role_transitions"`
	RoleBaseScore   float64          `mapstructure:"role-base-score" json:"role_base_score"`

	LocationTiers []KeywordTier `mapstructure:"location-tiers" json:"location_tiers"`
	LocationOther float64       `mapstructure:"location-other-score" json:"location_other_score"`

	SalaryMin float64 `mapstructure:"salary-min" json:"salary_min"`
	SalaryMax float64 `mapstructure:"salary-max" json:"salary_max"`

	RemoteKeywords       []string `mapstructure:"remote-keywords" json:"remote_keywords"`
	HybridKeywords       []string `mapstructure:"hybrid-keywords" json:"hybrid_keywords"`
	RemoteFriendlyTitles []string `mapstructure:"remote-friendly-titles" json:"remote_friendly_titles"`
	OnsiteKeywords       []string `mapstructure:"onsite-keywords" json:"onsite_keywords"`

	CompanyTiers         []KeywordTier `mapstructure:"company-tiers" json:"company_tiers"`
	SmallCompanyKeywords []string      `mapstructure:"small-company-keywords" json:"small_company_keywords"`

	ExperienceTitleTiers []KeywordTier `mapstructure:"experience-title-tiers" json:"experience_title_tiers"`
	ExperienceTextTiers  []KeywordTier `mapstructure:"experience-text-tiers" json:"experience_text_tiers"`

	GrowthKeywords        []string `mapstructure:"growth-keywords" json:"growth_keywords"`
	IndustryEmployerWords []string `mapstructure:"industry-employer-words" json:"industry_employer_words"`
	TechRoleKeywords      []string `mapstructure:"tech-role-keywords" json:"tech_role_keywords"`
	PortfolioKeywords     []string `mapstructure:"portfolio-keywords" json:"portfolio_keywords"`
	LocalEmployers        []string `mapstructure:"local-employers" json:"local_employers"`
}

// DefaultProfile returns the built-in oil and gas to technology transition profile.
func DefaultProfile() Profile {
	return Profile{
		Name: "oil & gas operations to technology",
		TechnicalSkills: []string{
			"Python", "JavaScript", "AppleScript", "Bash", "Shell Scripting",
			"AI Automation", "Data Analysis", "Process Automation",
			"System Integration", "API Development", "Database Management",
			"Git", "GitHub", "macOS", "Linux", "Network Monitoring",
			"Data Extraction", "Report Generation", "Workflow Automation",
		},
		SkillSynonyms: map[string][]string{
			"python":              {"python", "django", "flask", "pandas", "numpy"},
			"javascript":          {"javascript", "node.js", "nodejs", "react", "vue"},
			"data analysis":       {"data analysis", "analytics", "data analytics", "business intelligence"},
			"database management": {"database", "sql", "mysql", "postgresql", "sqlite", "mongodb"},
			"api development":     {"api", "web services", "integration"},
			"git":                 {"git", "github", "version control", "source control", "gitlab"},
			"linux":               {"linux", "unix", "bash", "command line"},
			"network monitoring":  {"network", "monitoring", "networking", "infrastructure"},
			"process automation":  {"process automation", "automated", "scripting", "workflow"},
		},
		HighValueSkills: []string{"python", "data analysis", "api development", "database management", "process automation"},
		IndustryTiers: []KeywordTier{
			{
				Keywords: []string{
					"oil", "gas", "petroleum", "energy", "drilling", "upstream", "downstream",
					"refinery", "pipeline", "reservoir", "exploration", "production",
				},
				Score:  0.9,
				Reason: "Direct oil & gas industry match",
			},
			{Keywords: []string{"energy", "utility", "power", "renewable"}, Score: 0.7, Reason: "Energy sector alignment with oil & gas background"},
			{Keywords: []string{"industrial", "manufacturing", "operations", "plant", "facility"}, Score: 0.5, Reason: "Industrial operations experience transferable"},
			{Keywords: []string{"operational", "field", "technical", "systems"}, Score: 0.4, Reason: "Operational expertise valued in technical role"},
		},
		BridgeKeywords: []string{
			"operational efficiency", "process optimization", "data-driven",
			"asset management", "performance monitoring", "compliance tracking",
			"cost optimization", "risk management", "regulatory compliance",
			"operational data", "field data", "production data",
		},
		BridgeScore: 0.6,
		RoleTransitions: []RoleTransition{
			{
				Name:                  "landman",
				TitleKeywords:         []string{"landman", "land man", "lease analyst"},
				DescriptionKeywords:   []string{"lease", "mineral rights", "contract", "title", "oil gas lease"},
				MinDescriptionMatches: 2,
				Score:                 0.95,
			},
			{
				Name:                  "data analyst",
				TitleKeywords:         []string{"data analyst", "business analyst", "operations analyst"},
				DescriptionKeywords:   []string{"data", "analysis", "operational", "field data", "production"},
				MinDescriptionMatches: 2,
				Score:                 0.85,
			},
			{
				Name:                  "safety coordinator",
				TitleKeywords:         []string{"safety", "hse", "safety coordinator", "safety manager"},
				DescriptionKeywords:   []string{"safety", "compliance", "regulations", "osha", "environmental"},
				MinDescriptionMatches: 2,
				Score:                 0.90,
			},
			{
				Name:                  "it specialist",
				TitleKeywords:         []string{"it specialist", "systems analyst", "technical consultant"},
				DescriptionKeywords:   []string{"automation", "systems", "technical", "integration", "support"},
				MinDescriptionMatches: 2,
				Score:                 0.75,
			},
			{
				Name:                  "automation engineer",
				TitleKeywords:         []string{"automation", "process engineer", "systems engineer"},
				DescriptionKeywords:   []string{"automation", "process", "optimization", "efficiency", "control"},
				MinDescriptionMatches: 2,
				Score:                 0.80,
			},
			{
				Name:                  "landman",
				TitleKeywords:         []string{"landman"},
				DescriptionKeywords:   []string{"lease", "contract", "mineral", "rights"},
				MinDescriptionMatches: 1,
				Score:                 0.95,
				Reason:                "Perfect transition: field operations to landman role",
			},
			{
				Name:                  "data analyst",
				TitleKeywords:         []string{"data analyst"},
				DescriptionKeywords:   []string{"operational", "field", "drilling", "production"},
				MinDescriptionMatches: 1,
				Score:                 0.85,
				Reason:                "Strong fit: operations experience + data analysis",
			},
			{
				Name:          "safety",
				TitleKeywords: []string{"safety"},
				Score:         0.90,
				Reason:        "Natural fit: 20 years of field safety experience",
			},
			{
				Name:                  "automation",
				DescriptionKeywords:   []string{"automation"},
				MinDescriptionMatches: 1,
				Score:                 0.80,
				Reason:                "Direct match: AI automation experience",
			},
		},
		RoleBaseScore: 0.3,
		LocationTiers: []KeywordTier{
			{Keywords: []string{"oklahoma city", "okc", "edmond", "norman"}, Score: 1.0, Reason: "Perfect location match: Oklahoma City area"},
			{Keywords: []string{"oklahoma", ", ok"}, Score: 0.8, Reason: "Good location: Oklahoma state"},
			{Keywords: []string{"remote", "anywhere", "virtual"}, Score: 0.9, Reason: "Remote work option available", MatchRemote: true},
			{Keywords: []string{"texas", "kansas", "arkansas", "colorado"}, Score: 0.4, Reason: "Regional location - possible relocation"},
			{Keywords: []string{"houston", "dallas", "denver", "midland"}, Score: 0.6, Reason: "Major energy hub - worth considering"},
		},
		LocationOther:        0.2,
		SalaryMin:            65000,
		SalaryMax:            150000,
		RemoteKeywords:       []string{"remote", "work from home", "telecommute", "virtual"},
		HybridKeywords:       []string{"hybrid", "flexible", "home office", "flexible schedule"},
		RemoteFriendlyTitles: []string{"analyst", "developer", "consultant", "coordinator", "data"},
		OnsiteKeywords:       []string{"on-site", "office", "in-person", "facility"},
		CompanyTiers: []KeywordTier{
			{
				Keywords: []string{"chesapeake", "devon", "continental", "marathon", "phillips 66", "conocophillips", "exxon", "chevron", "bp", "shell", "oxy"},
				Score:    0.9,
				Reason:   "Oil & gas company - strong cultural fit",
			},
			{Keywords: []string{"energy", "gas", "electric", "utility", "power"}, Score: 0.7, Reason: "Energy sector company - good cultural alignment"},
			{Keywords: []string{"tech", "software", "data", "analytics"}, Score: 0.6, Reason: "Technology company - values automation skills"},
		},
		SmallCompanyKeywords: []string{"small team", "growing company", "startup"},
		ExperienceTitleTiers: []KeywordTier{
			{Keywords: []string{"senior", "sr.", "lead", "principal", "manager", "supervisor"}, Score: 0.9, Reason: "Senior level role matches 20+ years experience"},
			{Keywords: []string{"specialist", "analyst", "coordinator", "consultant"}, Score: 0.7, Reason: "Mid-level role appropriate for career transition"},
			{Keywords: []string{"junior", "entry", "associate", "trainee", "intern"}, Score: 0.3, Reason: "Entry level role - may underutilize experience"},
		},
		ExperienceTextTiers: []KeywordTier{
			{Keywords: []string{"20+ years", "twenty years"}, Score: 1.0, Reason: "Experience requirement matches background exactly"},
			{Keywords: []string{"15+ years", "10+ years"}, Score: 0.8, Reason: "Experience requirement aligns with background"},
		},
		GrowthKeywords: []string{
			"career development", "advancement", "growth", "leadership",
			"training", "certification", "education", "mentor", "promotion",
		},
		IndustryEmployerWords: []string{"oil", "energy"},
		TechRoleKeywords:      []string{"data", "automation", "analyst", "tech"},
		PortfolioKeywords:     []string{"github", "portfolio", "coding", "programming"},
		LocalEmployers:        []string{"chesapeake", "devon", "continental", "oxy", "sandridge"},
	}
}

// WithDefaults fills every empty section of p from DefaultProfile.
func (p Profile) WithDefaults() Profile {
	d := DefaultProfile()
	if p.Name == "" {
		p.Name = d.Name
	}
	if p.TechnicalSkills == nil {
		p.TechnicalSkills = d.TechnicalSkills
	}
	if p.SkillSynonyms == nil {
		p.SkillSynonyms = d.SkillSynonyms
	}
	if p.HighValueSkills == nil {
		p.HighValueSkills = d.HighValueSkills
	}
	if p.IndustryTiers == nil {
		p.IndustryTiers = d.IndustryTiers
	}
	if p.BridgeKeywords == nil {
		p.BridgeKeywords = d.BridgeKeywords
	}
	if p.BridgeScore == 0 {
		p.BridgeScore = d.BridgeScore
	}
	if p.RoleTransitions == nil {
		p.RoleTransitions = d.RoleTransitions
	}
	if p.RoleBaseScore == 0 {
		p.RoleBaseScore = d.RoleBaseScore
	}
	if p.LocationTiers == nil {
		p.LocationTiers = d.LocationTiers
	}
	if p.LocationOther == 0 {
		p.LocationOther = d.LocationOther
	}
	if p.SalaryMin == 0 && p.SalaryMax == 0 {
		p.SalaryMin, p.SalaryMax = d.SalaryMin, d.SalaryMax
	}
	if p.RemoteKeywords == nil {
		p.RemoteKeywords = d.RemoteKeywords
	}
	if p.HybridKeywords == nil {
		p.HybridKeywords = d.HybridKeywords
	}
	if p.RemoteFriendlyTitles == nil {
		p.RemoteFriendlyTitles = d.RemoteFriendlyTitles
	}
	if p.OnsiteKeywords == nil {
		p.OnsiteKeywords = d.OnsiteKeywords
	}
	if p.SmallCompanyKeywords == nil {
		p.SmallCompanyKeywords = d.SmallCompanyKeywords
	}
	if p.CompanyTiers == nil {
		p.CompanyTiers = d.CompanyTiers
	}
	if p.ExperienceTitleTiers == nil {
		p.ExperienceTitleTiers = d.ExperienceTitleTiers
	}
	if p.ExperienceTextTiers == nil {
		p.ExperienceTextTiers = d.ExperienceTextTiers
	}
	if p.GrowthKeywords == nil {
		p.GrowthKeywords = d.GrowthKeywords
	}
	if p.IndustryEmployerWords == nil {
		p.IndustryEmployerWords = d.IndustryEmployerWords
	}
	if p.TechRoleKeywords == nil {
		p.TechRoleKeywords = d.TechRoleKeywords
	}
	if p.PortfolioKeywords == nil {
		p.PortfolioKeywords = d.PortfolioKeywords
	}
	if p.LocalEmployers == nil {
		p.LocalEmployers = d.LocalEmployers
	}
	return p
}

// Validate checks that every score in the profile is a finite value in [0,1]
// and that the target salary band is ordered.
func (p *Profile) Validate() error {
	var problems []string

	checkScore := func(field string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("profile.%s must be a finite value in [0,1], got %v", field, v))
		}
	}
	checkTiers := func(field string, tiers []KeywordTier) {
		for i, tier := range tiers {
			checkScore(fmt.Sprintf("%s[%d].score", field, i), tier.Score)
		}
	}

	checkScore("bridge-score", p.BridgeScore)
	checkScore("role-base-score", p.RoleBaseScore)
	checkScore("location-other-score", p.LocationOther)
	checkTiers("industry-tiers", p.IndustryTiers)
	checkTiers("location-tiers", p.LocationTiers)
	checkTiers("company-tiers", p.CompanyTiers)
	checkTiers("experience-title-tiers", p.ExperienceTitleTiers)
	checkTiers("experience-text-tiers", p.ExperienceTextTiers)
	for i, role := range p.RoleTransitions {
		checkScore(fmt.Sprintf("role-transitions[%d].score", i), role.Score)
	}

	for _, v := range []float64{p.SalaryMin, p.SalaryMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			problems = append(problems, fmt.Sprintf("profile salary band must be finite and non-negative, got %v", v))
		}
	}
	if p.SalaryMax <= p.SalaryMin {
		problems = append(problems, fmt.Sprintf("profile.salary-max (%v) must be greater than profile.salary-min (%v)", p.SalaryMax, p.SalaryMin))
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
