package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-radar/internal/jobs"
	"github.com/spigell/job-radar/internal/matching"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRecordsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	array := writeFile(t, dir, "array.json", `[{"id": "a1", "title": "Landman", "salary_min": "65,000"}, 42]`)
	lines := writeFile(t, dir, "lines.jsonl", "{\"job_title\": \"Safety Coordinator\", \"company_name\": \"Devon\"}\nnot json\n")

	core, observed := observer.New(zapcore.WarnLevel)

	records, err := loadRecords([]string{array, lines}, zap.New(core))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if records.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", records.Len())
	}
	if n := observed.FilterMessage("skipping malformed record").Len(); n != 2 {
		t.Fatalf("expected 2 malformed warnings, got %d", n)
	}

	first := records.Items[0]
	if first.ID != "a1" || first.Source != "array.json" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if !first.SalaryMin.Known || first.SalaryMin.Value != 65000 {
		t.Fatalf("unexpected salary: %+v", first.SalaryMin)
	}

	second := records.Items[1]
	if second.ID != jobs.DedupKey(second) {
		t.Fatalf("expected generated id, got %q", second.ID)
	}
	if second.Source != "lines.jsonl" {
		t.Fatalf("unexpected source: %q", second.Source)
	}
}

func TestLoadRecordsMissingFile(t *testing.T) {
	if _, err := loadRecords([]string{filepath.Join(t.TempDir(), "missing.json")}, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestConfigDefaults(t *testing.T) {
	config := &Config{}

	settings := config.matchingSettings()
	if settings.MinimumMatchScore == nil || *settings.MinimumMatchScore != 0.5 {
		t.Fatalf("expected built-in tuning, got %+v", settings.MinimumMatchScore)
	}

	profile, err := config.profile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Name != matching.DefaultProfile().Name {
		t.Fatalf("expected default profile, got %q", profile.Name)
	}

	if companies := config.excludedCompanies(); companies != nil {
		t.Fatalf("expected no excluded companies, got %v", companies)
	}
}

func TestConfigProfileOverrides(t *testing.T) {
	config := &Config{Profile: &matching.Profile{Name: "custom", SalaryMin: 90000, SalaryMax: 120000}}

	profile, err := config.profile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Name != "custom" || profile.SalaryMin != 90000 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profile.TechnicalSkills) == 0 {
		t.Fatal("expected missing sections to be filled from defaults")
	}

	config.Profile = &matching.Profile{SalaryMin: 150000, SalaryMax: 100000}
	if _, err := config.profile(); err == nil {
		t.Fatal("expected inverted salary band to be rejected")
	}
}

func TestConfigValidation(t *testing.T) {
	bad := &Config{
		Workers: -1,
		AI:      &AIConfig{Provider: "openai", MinimumFitScore: 2},
	}
	if err := validate.Struct(bad); err == nil {
		t.Fatal("expected validation error")
	}

	good := &Config{
		Inputs: []string{"jobs.json"},
		AI:     &AIConfig{Enabled: true, Provider: "gemini", MinimumFitScore: 0.6, Gemini: &GeminiConfig{MaxRetries: 3}},
	}
	if err := validate.Struct(good); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestVersionStringNamesApp(t *testing.T) {
	got := versionString()
	if !strings.HasPrefix(got, app+" version: ") {
		t.Fatalf("unexpected version string: %q", got)
	}
}

func TestRecordAtUsesSelectionIndex(t *testing.T) {
	records := &jobs.Records{Items: []*jobs.Record{
		{ID: "acme 42", Title: "Landman"},
		{ID: "acme 43", Title: "Safety Coordinator"},
		{ID: "acme 44", Title: "Data Analyst"},
	}}

	rec, ok := recordAt(records, 1)
	if !ok || rec.ID != "acme 43" {
		t.Fatalf("expected record with spaced id, got %+v", rec)
	}

	for _, index := range []int{-1, 3, 4} {
		if _, ok := recordAt(records, index); ok {
			t.Fatalf("expected index %d to be a menu entry", index)
		}
	}

	removeAt(records, 1)
	if records.Len() != 2 || records.Items[0].ID != "acme 42" || records.Items[1].ID != "acme 44" {
		t.Fatalf("unexpected records after removal: %+v", records.Items)
	}
}
