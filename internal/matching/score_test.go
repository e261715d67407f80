package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-radar/internal/jobs"
)

func loadDefault(t *testing.T) (*Config, *Profile) {
	t.Helper()

	cfg, _, err := Load(DefaultSettings())
	require.NoError(t, err)
	p := DefaultProfile()
	return cfg, &p
}

func executiveRecord() jobs.Record {
	return jobs.Record{
		Title:       "Senior Business Analyst Manager",
		Company:     "PRICE WATERHOUSE COOPERS",
		Location:    "Dallas, TX",
		Description: "Lead business analysis team for enterprise clients. MBA preferred.",
		SalaryMin:   jobs.Known(244000),
		Remote:      jobs.TristateNo,
	}
}

func safetyRecord() jobs.Record {
	return jobs.Record{
		Title:       "Safety Coordinator",
		Company:     "Devon Energy",
		Location:    "Oklahoma City, OK",
		Description: "Coordinate safety programs for drilling operations. Oil and gas experience preferred.",
		SalaryMin:   jobs.Known(65000),
		SalaryMax:   jobs.Known(85000),
		Remote:      jobs.TristateNo,
	}
}

func TestScoreExecutiveRoleIsFiltered(t *testing.T) {
	cfg, profile := loadDefault(t)

	res := Score(executiveRecord(), cfg, profile)

	assert.Equal(t, []string{RuleExecutiveOverqualification, RuleHighSalaryNonTechnical}, res.PenaltyNames())
	assert.InDelta(t, res.BaseScore-0.75, res.FinalScore, 1e-12)
	assert.False(t, res.Passed)
}

func TestScoreWorkedExample(t *testing.T) {
	settings := DefaultSettings()
	settings.Weights = map[string]float64{FactorLocationFit: 0.71}
	cfg, _, err := Load(settings)
	require.NoError(t, err)
	profile := DefaultProfile()

	rec := executiveRecord()
	rec.Location = "Oklahoma City, OK"

	res := Score(rec, cfg, &profile)

	assert.InDelta(t, 0.71, res.BaseScore, 1e-12)
	assert.Equal(t, []string{RuleExecutiveOverqualification, RuleHighSalaryNonTechnical}, res.PenaltyNames())
	assert.InDelta(t, -0.04, res.FinalScore, 1e-12)
	assert.False(t, res.Passed)
}

func TestExecutiveKeywordKeepsTrailingSpace(t *testing.T) {
	cfg, profile := loadDefault(t)

	vpn := Score(jobs.Record{Title: "VPN Support Coordinator"}, cfg, profile)
	assert.NotContains(t, vpn.PenaltyNames(), RuleExecutiveOverqualification)

	vp := Score(jobs.Record{Title: "VP Operations"}, cfg, profile)
	assert.Contains(t, vp.PenaltyNames(), RuleExecutiveOverqualification)
}

func TestLoadKeepsKeywordWhitespace(t *testing.T) {
	assert.Equal(t, []string{"vp ", " head of"}, lowerAll([]string{"VP ", "   ", " Head of", ""}))
}

func TestScoreSafetyCoordinatorPasses(t *testing.T) {
	cfg, profile := loadDefault(t)

	res := Score(safetyRecord(), cfg, profile)

	assert.Empty(t, res.Penalties)
	assert.Equal(t, res.BaseScore, res.FinalScore)
	assert.InDelta(t, 0.642, res.BaseScore, 0.005)
	assert.True(t, res.Passed)
	assert.Contains(t, res.Reasons, "Perfect location match: Oklahoma City area")
	assert.Contains(t, res.Reasons, "BONUS: Major Oklahoma City employer")
}

func TestScoreUnknownSalary(t *testing.T) {
	cfg, profile := loadDefault(t)
	rec := jobs.Record{
		Title:       "Helper",
		Company:     "Acme",
		Location:    "Tulsa, OK",
		Description: "General duties.",
	}

	res := Score(rec, cfg, profile)

	var others float64
	for _, f := range res.Factors {
		if f.Name == FactorSalaryFit {
			assert.Zero(t, f.Score)
			continue
		}
		others += f.Weight * f.Score
	}
	assert.NotContains(t, res.PenaltyNames(), RuleHighSalaryNonTechnical)
	assert.Empty(t, res.Penalties)
	assert.InDelta(t, others, res.FinalScore, 1e-12)

	rec.SalaryMin = jobs.Known(90000)
	withSalary := Score(rec, cfg, profile)
	assert.Greater(t, withSalary.BaseScore, res.BaseScore)
}

func TestScoreEmptyRecordIsZero(t *testing.T) {
	cfg, profile := loadDefault(t)

	res := Score(jobs.Record{}, cfg, profile)

	assert.Zero(t, res.BaseScore)
	assert.Zero(t, res.FinalScore)
	assert.Empty(t, res.Penalties)
	assert.Empty(t, res.Reasons)
	assert.False(t, res.Passed)
	for _, f := range res.Factors {
		assert.Zero(t, f.Score, f.Name)
	}
}

func TestFactorsWithUnknownInputs(t *testing.T) {
	profile := DefaultProfile()
	v := newView(&jobs.Record{})

	for _, f := range factorTable {
		e := f.eval(v, &profile)
		assert.False(t, e.known, f.name)
		assert.Zero(t, e.score, f.name)
		assert.Empty(t, e.reasons, f.name)
	}
}

func TestScoreIsOrderIndependent(t *testing.T) {
	_, profile := loadDefault(t)
	rec := executiveRecord()
	rec.Requirements = "Frequent travel. Active security clearance."

	base := DefaultSettings()
	cfg, _, err := Load(base)
	require.NoError(t, err)
	want := Score(rec, cfg, profile)
	require.Len(t, want.Penalties, 4)

	reversed := DefaultSettings()
	for i, j := 0, len(reversed.Rules)-1; i < j; i, j = i+1, j-1 {
		reversed.Rules[i], reversed.Rules[j] = reversed.Rules[j], reversed.Rules[i]
	}
	rotated := DefaultSettings()
	rotated.Rules = append(rotated.Rules[3:], rotated.Rules[:3]...)

	for name, s := range map[string]Settings{"reversed": reversed, "rotated": rotated} {
		cfg, _, err := Load(s)
		require.NoError(t, err, name)

		got := Score(rec, cfg, profile)
		assert.Equal(t, want.FinalScore, got.FinalScore, name)
		assert.Equal(t, want.Passed, got.Passed, name)
		assert.ElementsMatch(t, want.PenaltyNames(), got.PenaltyNames(), name)
		assert.Equal(t, declaredOrder(cfg, got), got.PenaltyNames(), name)
	}
}

// declaredOrder returns the rules that fired for res in the order cfg declares them.
func declaredOrder(cfg *Config, res MatchResult) []string {
	fired := make(map[string]bool, len(res.Penalties))
	for _, p := range res.Penalties {
		fired[p.Rule] = true
	}
	var out []string
	for _, name := range cfg.RuleNames() {
		if fired[name] {
			out = append(out, name)
		}
	}
	return out
}

func TestScoreIsIdempotent(t *testing.T) {
	cfg, profile := loadDefault(t)
	rec := executiveRecord()

	first := Score(rec, cfg, profile)
	second := Score(rec, cfg, profile)

	assert.Equal(t, first, second)
	assert.Equal(t, executiveRecord(), rec)
}

func TestScoreIsMonotonicInRules(t *testing.T) {
	_, profile := loadDefault(t)
	rec := safetyRecord()
	rec.Requirements = "Security clearance required."

	without := DefaultSettings()
	var clearance RuleSettings
	for i, r := range without.Rules {
		if r.Name == RuleSecurityClearance {
			clearance = r
			without.Rules = append(without.Rules[:i], without.Rules[i+1:]...)
			break
		}
	}
	cfgWithout, _, err := Load(without)
	require.NoError(t, err)

	with := without
	with.Rules = append(append([]RuleSettings(nil), without.Rules...), clearance)
	cfgWith, _, err := Load(with)
	require.NoError(t, err)

	a := Score(rec, cfgWithout, profile)
	b := Score(rec, cfgWith, profile)

	assert.Less(t, b.FinalScore, a.FinalScore)
	assert.InDelta(t, -0.10, b.FinalScore-a.FinalScore, 1e-12)
	assert.Contains(t, b.PenaltyNames(), RuleSecurityClearance)

	clean := safetyRecord()
	assert.Equal(t, Score(clean, cfgWithout, profile).FinalScore, Score(clean, cfgWith, profile).FinalScore)
}

func TestGateBoundary(t *testing.T) {
	rec := jobs.Record{Location: "Oklahoma City, OK"}
	profile := DefaultProfile()

	tests := []struct {
		name    string
		minimum float64
		passed  bool
	}{
		{name: "equal passes", minimum: 1.0, passed: true},
		{name: "just above fails", minimum: 1.0000001, passed: false},
		{name: "below passes", minimum: 0.99, passed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _, err := Load(Settings{
				MinimumMatchScore: ptr(tt.minimum),
				Weights:           map[string]float64{FactorLocationFit: 1.0},
			})
			require.NoError(t, err)

			res := Score(rec, cfg, &profile)
			assert.Equal(t, 1.0, res.FinalScore)
			assert.Equal(t, tt.passed, res.Passed)
		})
	}
}

func TestEntryLevelMismatch(t *testing.T) {
	cfg, profile := loadDefault(t)

	junior := Score(jobs.Record{Title: "Junior Records Clerk"}, cfg, profile)
	assert.Contains(t, junior.PenaltyNames(), RuleEntryLevelMismatch)

	untitled := Score(jobs.Record{Company: "Acme"}, cfg, profile)
	assert.NotContains(t, untitled.PenaltyNames(), RuleEntryLevelMismatch)
}

func TestHighSalaryFallsBackToMaximum(t *testing.T) {
	cfg, profile := loadDefault(t)
	rec := jobs.Record{Title: "Regional Coordinator", SalaryMax: jobs.Known(250000)}

	res := Score(rec, cfg, profile)
	assert.Contains(t, res.PenaltyNames(), RuleHighSalaryNonTechnical)

	rec.Description = "Own the Python data pipeline."
	res = Score(rec, cfg, profile)
	assert.NotContains(t, res.PenaltyNames(), RuleHighSalaryNonTechnical)
}

func TestAssessmentCopiesResult(t *testing.T) {
	cfg, profile := loadDefault(t)
	res := Score(executiveRecord(), cfg, profile)

	a := res.Assessment()
	a.Reasons[0] = "changed"

	assert.NotEqual(t, "changed", res.Reasons[0])
	assert.Equal(t, res.PenaltyNames(), a.Penalties)
	assert.Equal(t, res.FinalScore, a.FinalScore)
}
