package filtering

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spigell/job-radar/internal/ai"
	"github.com/spigell/job-radar/internal/jobs"
)

type fakeReviewer struct {
	verdicts map[string]*ai.FitAssessment
	errs     map[string]error
	seen     []string
}

func (f *fakeReviewer) Evaluate(_ context.Context, _ *ai.Candidate, rec *jobs.Record) (*ai.FitAssessment, error) {
	f.seen = append(f.seen, rec.ID)
	if err := f.errs[rec.ID]; err != nil {
		return nil, err
	}
	if verdict, ok := f.verdicts[rec.ID]; ok {
		return verdict, nil
	}
	return &ai.FitAssessment{Fit: true, Score: 1}, nil
}

func enabledAIConfig() *AIReviewFilterConfig {
	return &AIReviewFilterConfig{
		Enabled:  true,
		Provider: "gemini",
		Gemini:   &AIGeminiConfig{Model: "gemini-2.5-flash"},
	}
}

func TestAIReviewFilter(t *testing.T) {
	excludePath := filepath.Join(t.TempDir(), "excluded.json")
	reviewer := &fakeReviewer{
		verdicts: map[string]*ai.FitAssessment{
			"1": {Fit: true, Score: 0.8, Reason: "good", Raw: `{"fit":true}`},
			"2": {Fit: false, Score: 0.2, Reason: "too senior"},
		},
		errs: map[string]error{"3": errors.New("quota exhausted")},
	}

	f := NewAIReview(enabledAIConfig(), &AIReviewFilterDeps{
		Reviewer:    reviewer,
		Candidate:   &ai.Candidate{Summary: "analyst"},
		ExcludeFile: excludePath,
	})
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	left, step, err := f.Apply(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ids(left); !equalStrings(got, []string{"1", "3"}) {
		t.Fatalf("unexpected records left: %v", got)
	}
	if step != (Step{Initial: 3, Dropped: 1, Left: 2}) {
		t.Fatalf("unexpected step: %+v", step)
	}

	approved := left.Items[0].Review
	if approved == nil || !approved.Fit || approved.Score != 0.8 || approved.Raw == "" {
		t.Fatalf("unexpected review: %+v", approved)
	}
	failed := left.Items[1].Review
	if failed == nil || failed.Error != "quota exhausted" {
		t.Fatalf("expected review error to be recorded, got %+v", failed)
	}

	excluded, err := jobs.GetExcludedFromFile(excludePath)
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}
	if len(excluded.Items) != 1 {
		t.Fatalf("expected one excluded record, got %d", len(excluded.Items))
	}
	entry := excluded.Items[0]
	if entry.ID != "2" || entry.Actor != jobs.ExcludeActorAI || entry.Reason != "too senior" {
		t.Fatalf("unexpected exclude entry: %+v", entry)
	}
}

func TestAIReviewFilterDoesNotTouchAssessment(t *testing.T) {
	records := sampleRecords()
	records.Items[0].Assessment = &jobs.Assessment{FinalScore: 0.7, Passed: true}

	f := NewAIReview(enabledAIConfig(), &AIReviewFilterDeps{
		Reviewer:  &fakeReviewer{verdicts: map[string]*ai.FitAssessment{"1": {Fit: true, Score: 0.1}}},
		Candidate: &ai.Candidate{},
	})
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	left, _, err := f.Apply(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := left.Items[0].Assessment.FinalScore; got != 0.7 {
		t.Fatalf("expected final score untouched, got %v", got)
	}
}

func TestAIReviewFilterStopsOnCanceledContext(t *testing.T) {
	reviewer := &fakeReviewer{}
	f := NewAIReview(enabledAIConfig(), &AIReviewFilterDeps{Reviewer: reviewer, Candidate: &ai.Candidate{}})
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := f.Apply(ctx, sampleRecords()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(reviewer.seen) != 0 {
		t.Fatalf("expected no reviews, got %v", reviewer.seen)
	}
}

func TestAIReviewFilterValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *AIReviewFilterConfig
		deps *AIReviewFilterDeps
	}{
		{
			name: "no deps",
			cfg:  enabledAIConfig(),
		},
		{
			name: "no reviewer",
			cfg:  enabledAIConfig(),
			deps: &AIReviewFilterDeps{Candidate: &ai.Candidate{}},
		},
		{
			name: "no candidate",
			cfg:  enabledAIConfig(),
			deps: &AIReviewFilterDeps{Reviewer: &fakeReviewer{}},
		},
		{
			name: "unknown provider",
			cfg:  &AIReviewFilterConfig{Enabled: true, Provider: "openai"},
			deps: &AIReviewFilterDeps{Reviewer: &fakeReviewer{}, Candidate: &ai.Candidate{}},
		},
		{
			name: "missing model",
			cfg:  &AIReviewFilterConfig{Enabled: true, Provider: "gemini", Gemini: &AIGeminiConfig{}},
			deps: &AIReviewFilterDeps{Reviewer: &fakeReviewer{}, Candidate: &ai.Candidate{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewAIReview(tt.cfg, tt.deps).Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestAIReviewFilterDisabledByConfig(t *testing.T) {
	f := NewAIReview(&AIReviewFilterConfig{}, nil)
	if f.IsEnabled() {
		t.Fatal("expected filter to be disabled")
	}

	steps := New([]Filter{f}, nil)
	left, err := steps.RunFilters(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("disabled filter must not fail the run: %v", err)
	}
	if left.Len() != 3 {
		t.Fatalf("expected records untouched, got %d", left.Len())
	}
}
