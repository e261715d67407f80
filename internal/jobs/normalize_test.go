package jobs

import (
	"errors"
	"testing"
)

func TestNormalizeEmptyRecord(t *testing.T) {
	rec, err := Normalize(map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Title != "" || rec.Company != "" || rec.Location != "" || rec.Description != "" {
		t.Fatalf("expected empty text fields, got %+v", rec)
	}
	if rec.SalaryMin.Known || rec.SalaryMax.Known {
		t.Fatalf("expected unknown salaries, got %+v / %+v", rec.SalaryMin, rec.SalaryMax)
	}
	if rec.Remote != TristateUnknown {
		t.Fatalf("expected unknown remote, got %s", rec.Remote)
	}
}

func TestNormalizeNullFields(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"title":      nil,
		"company":    nil,
		"salary_min": nil,
		"salary_max": nil,
		"remote":     nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Title != "" || rec.Company != "" {
		t.Fatalf("expected empty strings for null text, got %+v", rec)
	}
	if rec.SalaryMin.Known || rec.SalaryMax.Known {
		t.Fatalf("expected unknown salaries for null values")
	}
	if rec.Remote != TristateUnknown {
		t.Fatalf("expected unknown remote for null value")
	}
}

func TestNormalizeAliasesAndCoercion(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"job_title":       "  Safety&nbsp;Coordinator ",
		"Company_Name":    "Devon Energy",
		"job_location":    "Oklahoma City, OK, oklahoma city",
		"job_description": "Coordinate   safety programs.",
		"qualifications":  []any{"OSHA 30", "5 years"},
		"min_salary":      "$65,000",
		"salary_to":       "85k",
		"remote_friendly": "no",
		"provider":        "jsearch",
		"link":            " https://example.com/1 ",
		"job_id":          float64(42),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Title != "Safety Coordinator" {
		t.Fatalf("unexpected title: %q", rec.Title)
	}
	if rec.Company != "Devon Energy" {
		t.Fatalf("unexpected company: %q", rec.Company)
	}
	if rec.Location != "Oklahoma City, OK" {
		t.Fatalf("unexpected location: %q", rec.Location)
	}
	if rec.Description != "Coordinate safety programs." {
		t.Fatalf("unexpected description: %q", rec.Description)
	}
	if rec.Requirements != "OSHA 30 5 years" {
		t.Fatalf("unexpected requirements: %q", rec.Requirements)
	}
	if !rec.SalaryMin.Known || rec.SalaryMin.Value != 65000 {
		t.Fatalf("unexpected salary min: %+v", rec.SalaryMin)
	}
	if !rec.SalaryMax.Known || rec.SalaryMax.Value != 85000 {
		t.Fatalf("unexpected salary max: %+v", rec.SalaryMax)
	}
	if rec.Remote != TristateNo {
		t.Fatalf("unexpected remote: %s", rec.Remote)
	}
	if rec.Source != "jsearch" || rec.URL != "https://example.com/1" || rec.ID != "42" {
		t.Fatalf("unexpected identity fields: %+v", rec)
	}
}

func TestNormalizeFirstNonEmptyAliasWins(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"title":     "",
		"job_title": "Data Analyst",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Data Analyst" {
		t.Fatalf("expected fallback alias, got %q", rec.Title)
	}
}

func TestNormalizeSalaryEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		known bool
		value float64
	}{
		{name: "number", input: float64(120000), known: true, value: 120000},
		{name: "int", input: 90000, known: true, value: 90000},
		{name: "zero is undisclosed", input: float64(0), known: false},
		{name: "negative", input: float64(-5), known: false},
		{name: "text", input: "competitive", known: false},
		{name: "empty string", input: "", known: false},
		{name: "thousands suffix", input: "120K", known: true, value: 120000},
		{name: "bool", input: true, known: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseAmount(tt.input)
			if got.Known != tt.known {
				t.Fatalf("expected known=%t, got %+v", tt.known, got)
			}
			if tt.known && got.Value != tt.value {
				t.Fatalf("expected %v, got %v", tt.value, got.Value)
			}
		})
	}
}

func TestNormalizeRemoteTristate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  any
		expect Tristate
	}{
		{input: true, expect: TristateYes},
		{input: false, expect: TristateNo},
		{input: "Yes", expect: TristateYes},
		{input: "onsite", expect: TristateNo},
		{input: float64(1), expect: TristateYes},
		{input: "hybrid", expect: TristateUnknown},
		{input: nil, expect: TristateUnknown},
	}

	for _, tt := range tests {
		if got := parseTristate(tt.input); got != tt.expect {
			t.Fatalf("input %v: expected %s, got %s", tt.input, tt.expect, got)
		}
	}
}

func TestNormalizeMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  any
	}{
		{name: "nil", raw: nil},
		{name: "string", raw: "not a record"},
		{name: "list", raw: []any{"a", "b"}},
		{name: "nested object for text", raw: map[string]any{"title": map[string]any{"x": 1}}},
		{name: "non-string key", raw: map[any]any{1: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(tt.raw)
			if !errors.Is(err, ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestNormalizeIsSideEffectFree(t *testing.T) {
	raw := map[string]any{"title": "  Analyst ", "salary_min": "70k"}
	if _, err := Normalize(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw["title"] != "  Analyst " || raw["salary_min"] != "70k" || len(raw) != 2 {
		t.Fatalf("input record was modified: %+v", raw)
	}
}
