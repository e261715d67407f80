package matching

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/spigell/job-radar/internal/jobs"
)

const (
	FactorTechnicalSkills     = "technical_skills"
	FactorIndustryExperience  = "industry_experience"
	FactorRoleTransition      = "role_transition"
	FactorLocationFit         = "location_fit"
	FactorSalaryFit           = "salary_fit"
	FactorRemoteCompatibility = "remote_compatibility"
	FactorCompanyFit          = "company_fit"
	FactorExperienceLevel     = "experience_level"
	FactorGrowthPotential     = "growth_potential"
	FactorIndustryTechBonus   = "industry_tech_bonus"
	FactorPortfolioBonus      = "portfolio_bonus"
	FactorLocalEmployerBonus  = "local_employer_bonus"
)

// view holds the lower-cased text of a record so every factor and rule
// matches against the same strings.
type view struct {
	rec      *jobs.Record
	title    string
	company  string
	location string
	text     string
	body     string
}

func newView(rec *jobs.Record) *view {
	return &view{
		rec:      rec,
		title:    strings.ToLower(rec.Title),
		company:  strings.ToLower(rec.Company),
		location: strings.ToLower(rec.Location),
		text:     strings.ToLower(rec.Text()),
		body:     strings.ToLower(rec.Body()),
	}
}

// factorEval is the outcome of a single factor. known is false when every
// input the factor reads was unknown, in which case score is 0.
type factorEval struct {
	score   float64
	reasons []string
	known   bool
}

type factorFunc func(v *view, p *Profile) factorEval

var factorTable = []struct {
	name string
	eval factorFunc
}{
	{FactorTechnicalSkills, technicalSkills},
	{FactorIndustryExperience, industryExperience},
	{FactorRoleTransition, roleTransition},
	{FactorLocationFit, locationFit},
	{FactorSalaryFit, salaryFit},
	{FactorRemoteCompatibility, remoteCompatibility},
	{FactorCompanyFit, companyFit},
	{FactorExperienceLevel, experienceLevel},
	{FactorGrowthPotential, growthPotential},
	{FactorIndustryTechBonus, industryTechBonus},
	{FactorPortfolioBonus, portfolioBonus},
	{FactorLocalEmployerBonus, localEmployerBonus},
}

func factorByName(name string) (factorFunc, bool) {
	for _, f := range factorTable {
		if f.name == name {
			return f.eval, true
		}
	}
	return nil, false
}

// FactorNames lists every built-in factor in evaluation order.
func FactorNames() []string {
	names := make([]string, 0, len(factorTable))
	for _, f := range factorTable {
		names = append(names, f.name)
	}
	return names
}

func unknown() factorEval {
	return factorEval{}
}

func known(score float64, reasons ...string) factorEval {
	return factorEval{score: clamp01(score), reasons: reasons, known: true}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// firstMatch returns the first keyword contained in haystack.
func firstMatch(haystack string, keywords []string) (string, bool) {
	if haystack == "" {
		return "", false
	}
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(haystack, kw) {
			return kw, true
		}
	}
	return "", false
}

func allMatches(haystack string, keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw != "" && haystack != "" && strings.Contains(haystack, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func matchTier(haystack string, tiers []KeywordTier, remote bool) (KeywordTier, bool) {
	for _, tier := range tiers {
		if tier.MatchRemote && remote {
			return tier, true
		}
		if _, ok := firstMatch(haystack, tier.Keywords); ok {
			return tier, true
		}
	}
	return KeywordTier{}, false
}

func technicalSkills(v *view, p *Profile) factorEval {
	if v.text == "" {
		return unknown()
	}
	if len(p.TechnicalSkills) == 0 {
		return known(0)
	}

	var (
		matched   []string
		highValue []string
	)
	for _, skill := range p.TechnicalSkills {
		key := strings.ToLower(skill)
		variations := p.SkillSynonyms[key]
		if len(variations) == 0 {
			variations = []string{key}
		}
		if _, ok := firstMatch(v.text, variations); !ok {
			continue
		}
		matched = append(matched, skill)
		if _, ok := firstMatch(key, p.HighValueSkills); ok {
			highValue = append(highValue, skill)
		}
	}
	if len(matched) == 0 {
		return known(0)
	}

	score := float64(len(matched)) / float64(len(p.TechnicalSkills))
	reasons := []string{fmt.Sprintf("Technical skills matched: %s", strings.Join(matched, ", "))}
	if len(highValue) > 0 {
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("High-value skills matched: %s", strings.Join(highValue, ", ")))
	}
	return known(score, reasons...)
}

func industryExperience(v *view, p *Profile) factorEval {
	if v.text == "" && v.company == "" {
		return unknown()
	}

	haystack := strings.TrimSpace(v.text + " " + v.company)
	var (
		score   float64
		reasons []string
	)
	if tier, ok := matchTier(haystack, p.IndustryTiers, false); ok {
		score = tier.Score
		reasons = append(reasons, tier.Reason)
	}
	if bridges := allMatches(v.text, p.BridgeKeywords); len(bridges) > 0 {
		if p.BridgeScore > score {
			score = p.BridgeScore
		}
		reasons = append(reasons, fmt.Sprintf("Industry bridge concepts: %s", strings.Join(bridges, ", ")))
	}
	return known(score, reasons...)
}

func roleTransition(v *view, p *Profile) factorEval {
	if v.title == "" && v.text == "" {
		return unknown()
	}

	for _, role := range p.RoleTransitions {
		if len(role.TitleKeywords) > 0 {
			if _, ok := firstMatch(v.title, role.TitleKeywords); !ok {
				continue
			}
		}
		if len(allMatches(v.text, role.DescriptionKeywords)) < role.MinDescriptionMatches {
			continue
		}
		reason := role.Reason
		if reason == "" {
			reason = fmt.Sprintf("Role transition match: %s", role.Name)
		}
		return known(role.Score, reason)
	}
	return known(p.RoleBaseScore, "General role transition potential")
}

func locationFit(v *view, p *Profile) factorEval {
	remote := v.rec.Remote == jobs.TristateYes
	if v.location == "" && !remote {
		return unknown()
	}
	if tier, ok := matchTier(v.location, p.LocationTiers, remote); ok {
		return known(tier.Score, tier.Reason)
	}
	return known(p.LocationOther, "Location requires relocation")
}

func salaryFit(v *view, p *Profile) factorEval {
	lo, hi := v.rec.SalaryMin, v.rec.SalaryMax
	if !lo.Known && !hi.Known {
		return unknown()
	}
	if p.SalaryMax <= p.SalaryMin {
		return unknown()
	}

	jobMin, jobMax := lo.Value, hi.Value
	if !lo.Known {
		jobMin = hi.Value * 0.8
	}
	if !hi.Known {
		jobMax = lo.Value * 1.3
	}

	overlapMin := max(jobMin, p.SalaryMin)
	overlapMax := min(jobMax, p.SalaryMax)
	switch {
	case overlapMin <= overlapMax:
		ratio := (overlapMax - overlapMin) / (p.SalaryMax - p.SalaryMin)
		return known(ratio*1.2, fmt.Sprintf("Salary range overlap: $%s - $%s", money(overlapMin), money(overlapMax)))
	case jobMin > p.SalaryMax:
		return known(1, fmt.Sprintf("Salary above target range: $%s+", money(jobMin)))
	case p.SalaryMin-jobMax <= 10000:
		return known(0.6, "Salary slightly below target but negotiable")
	default:
		return known(0.2, fmt.Sprintf("Salary significantly below target ($%s gap)", money(p.SalaryMin-jobMax)))
	}
}

func money(v float64) string {
	return humanize.Comma(int64(v))
}

func remoteCompatibility(v *view, p *Profile) factorEval {
	if v.text == "" && v.location == "" && v.rec.Remote == jobs.TristateUnknown {
		return unknown()
	}

	if v.rec.Remote == jobs.TristateYes {
		return known(1, "Remote work explicitly available")
	}
	if _, ok := firstMatch(v.text, p.RemoteKeywords); ok {
		return known(1, "Remote work explicitly available")
	}
	if _, ok := firstMatch(v.location, []string{"remote", "anywhere"}); ok {
		return known(1, "Remote work explicitly available")
	}
	if _, ok := firstMatch(v.text, p.HybridKeywords); ok {
		return known(0.8, "Hybrid/flexible work arrangement")
	}
	if _, ok := firstMatch(v.title, p.RemoteFriendlyTitles); ok {
		return known(0.6, "Role type typically supports remote work")
	}
	if _, ok := firstMatch(v.text, p.OnsiteKeywords); ok || v.rec.Remote == jobs.TristateNo {
		return known(0.3, "Office-based position")
	}
	return known(0.4, "Remote work flexibility unclear")
}

func companyFit(v *view, p *Profile) factorEval {
	if v.company == "" {
		return unknown()
	}

	score := 0.5
	var reasons []string
	if tier, ok := matchTier(v.company, p.CompanyTiers, false); ok {
		score = tier.Score
		reasons = append(reasons, tier.Reason)
	}
	if _, ok := firstMatch(v.text, p.SmallCompanyKeywords); ok {
		score += 0.1
		reasons = append(reasons, "Smaller company - values versatile experience")
	}
	return known(score, reasons...)
}

func experienceLevel(v *view, p *Profile) factorEval {
	if v.title == "" && v.text == "" {
		return unknown()
	}
	if tier, ok := matchTier(v.title, p.ExperienceTitleTiers, false); ok {
		return known(tier.Score, tier.Reason)
	}
	if tier, ok := matchTier(v.text, p.ExperienceTextTiers, false); ok {
		return known(tier.Score, tier.Reason)
	}
	return known(0.6, "Experience level requirements unclear")
}

func growthPotential(v *view, p *Profile) factorEval {
	if v.text == "" {
		return unknown()
	}

	matches := allMatches(v.text, p.GrowthKeywords)
	switch {
	case len(matches) >= 3:
		return known(0.9, fmt.Sprintf("Strong growth indicators: %s", strings.Join(matches[:3], ", ")))
	case len(matches) >= 1:
		return known(0.6, fmt.Sprintf("Growth potential mentioned: %s", strings.Join(matches, ", ")))
	default:
		return known(0.4, "Growth potential unclear")
	}
}

func industryTechBonus(v *view, p *Profile) factorEval {
	if v.company == "" || v.text == "" {
		return unknown()
	}
	_, employer := firstMatch(v.company, p.IndustryEmployerWords)
	_, techRole := firstMatch(v.text, p.TechRoleKeywords)
	if employer && techRole {
		return known(1, "BONUS: Oil & gas industry + technical role combination")
	}
	return known(0)
}

func portfolioBonus(v *view, p *Profile) factorEval {
	if v.text == "" {
		return unknown()
	}
	if _, ok := firstMatch(v.text, p.PortfolioKeywords); ok {
		return known(1, "BONUS: Values GitHub portfolio and coding skills")
	}
	return known(0)
}

func localEmployerBonus(v *view, p *Profile) factorEval {
	if v.company == "" {
		return unknown()
	}
	if _, ok := firstMatch(v.company, p.LocalEmployers); ok {
		return known(1, "BONUS: Major Oklahoma City employer")
	}
	return known(0)
}
