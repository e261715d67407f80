package matching

import "fmt"

const (
	RuleExecutiveOverqualification = "executive_overqualification"
	RuleHighSalaryNonTechnical     = "high_salary_non_technical"
	RuleOverqualification          = "overqualification"
	RuleAdvancedDegreeRequired     = "advanced_degree_required"
	RulePhysicalDemands            = "physical_demands"
	RuleEntryLevelMismatch         = "entry_level_mismatch"
	RuleSecurityClearance          = "security_clearance"
)

type ruleNeeds int

const (
	needsKeywords ruleNeeds = iota
	needsSalaryThreshold
	needsExperienceFloor
)

// ruleInput is what a rule predicate may look at.
type ruleInput struct {
	view     *view
	keywords []string
	factors  map[string]factorEval
	cfg      *Config
}

// ruleFunc reports whether a rule fires and, if so, the reason to show.
type ruleFunc func(in ruleInput) (bool, string)

type ruleDef struct {
	name  string
	needs ruleNeeds
	eval  ruleFunc
}

var ruleTable = []ruleDef{
	{RuleExecutiveOverqualification, needsKeywords, executiveOverqualification},
	{RuleHighSalaryNonTechnical, needsSalaryThreshold, highSalaryNonTechnical},
	{RuleOverqualification, needsKeywords, overqualification},
	{RuleAdvancedDegreeRequired, needsKeywords, advancedDegreeRequired},
	{RulePhysicalDemands, needsKeywords, physicalDemands},
	{RuleEntryLevelMismatch, needsExperienceFloor, entryLevelMismatch},
	{RuleSecurityClearance, needsKeywords, securityClearance},
}

func ruleByName(name string) (ruleDef, bool) {
	for _, r := range ruleTable {
		if r.name == name {
			return r, true
		}
	}
	return ruleDef{}, false
}

// RuleNames lists every built-in rule.
func RuleNames() []string {
	names := make([]string, 0, len(ruleTable))
	for _, r := range ruleTable {
		names = append(names, r.name)
	}
	return names
}

func executiveOverqualification(in ruleInput) (bool, string) {
	kw, ok := firstMatch(in.view.title, in.keywords)
	if !ok {
		return false, ""
	}
	return true, fmt.Sprintf("MAJOR PENALTY: Executive/senior role (%q) - overqualification for career transition", kw)
}

func highSalaryNonTechnical(in ruleInput) (bool, string) {
	salary := in.view.rec.SalaryMin
	if !salary.Known {
		salary = in.view.rec.SalaryMax
	}
	if !salary.Known || salary.Value <= in.cfg.highSalaryThreshold {
		return false, ""
	}
	if _, technical := firstMatch(in.view.title+" "+in.view.body, in.cfg.technicalKeywords); technical {
		return false, ""
	}
	return true, fmt.Sprintf("MAJOR PENALTY: High-salary ($%s) non-technical role inappropriate for experience level", money(salary.Value))
}

func overqualification(in ruleInput) (bool, string) {
	kw, ok := firstMatch(in.view.title, in.keywords)
	if !ok {
		return false, ""
	}
	return true, fmt.Sprintf("PENALTY: Role (%q) above realistic transition level", kw)
}

func advancedDegreeRequired(in ruleInput) (bool, string) {
	kw, ok := firstMatch(in.view.body, in.keywords)
	if !ok {
		return false, ""
	}
	return true, fmt.Sprintf("PENALTY: Advanced degree requirement not met (%q)", kw)
}

func physicalDemands(in ruleInput) (bool, string) {
	kw, ok := firstMatch(in.view.body, in.keywords)
	if !ok {
		return false, ""
	}
	return true, fmt.Sprintf("PENALTY: Physical demands (%q) incompatible with profile", kw)
}

func entryLevelMismatch(in ruleInput) (bool, string) {
	exp, ok := in.factors[FactorExperienceLevel]
	if !ok || !exp.known || exp.score >= in.cfg.experienceFloor {
		return false, ""
	}
	return true, "PENALTY: Role significantly below experience level"
}

func securityClearance(in ruleInput) (bool, string) {
	kw, ok := firstMatch(in.view.body, in.keywords)
	if !ok {
		return false, ""
	}
	return true, fmt.Sprintf("PENALTY: Security clearance requirement (%q)", kw)
}
