package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-radar/internal/ai"
	"github.com/spigell/job-radar/internal/jobs"
	"github.com/spigell/job-radar/internal/logger"
)

type aiReviewFilter struct {
	toggle
	config *AIReviewFilterConfig
	deps   *AIReviewFilterDeps
}

type AIReviewFilterDeps struct {
	Logger      *zap.Logger
	Reviewer    ai.Reviewer
	Candidate   *ai.Candidate
	ExcludeFile string
}

type AIReviewFilterConfig struct {
	Enabled         bool
	Provider        string
	MinimumFitScore float64
	Gemini          *AIGeminiConfig
}

// AIGeminiConfig stores Gemini provider configuration.
type AIGeminiConfig struct {
	Model        string
	MaxRetries   int
	MaxLogLength int
}

// NewAIReview creates the AI review step. It runs after matching and never
// changes match scores: it only attaches a review and drops rejected records.
func NewAIReview(cfg *AIReviewFilterConfig, deps *AIReviewFilterDeps) Filter {
	if cfg == nil {
		cfg = &AIReviewFilterConfig{}
	}
	f := &aiReviewFilter{config: cfg, deps: deps}
	if !cfg.Enabled {
		f.Disable("disabled in configuration")
	}
	return f
}

func (f *aiReviewFilter) Name() string { return "ai_review" }

func (f *aiReviewFilter) Validate() error {
	if f.deps == nil {
		return errors.New("deps are not initialized: filter is not usable")
	}
	if f.deps.Reviewer == nil {
		return errors.New("ai reviewer is required when ai review is enabled")
	}
	if f.deps.Candidate == nil {
		return errors.New("candidate is required when ai review is enabled")
	}
	if f.deps.Logger == nil {
		f.deps.Logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(f.config.Provider)) {
	case "gemini":
		if f.config.Gemini == nil || strings.TrimSpace(f.config.Gemini.Model) == "" {
			return errors.New("gemini model is required when ai review is enabled")
		}
	default:
		return fmt.Errorf("unsupported ai provider %q", f.config.Provider)
	}
	return nil
}

func (f *aiReviewFilter) Apply(ctx context.Context, r *jobs.Records) (*jobs.Records, Step, error) {
	initial := r.Len()
	approved := make([]*jobs.Record, 0, initial)

	for _, rec := range r.Items {
		if err := ctx.Err(); err != nil {
			return r, Step{}, err
		}

		log := f.deps.Logger.With(logger.RecordFields(rec)...)

		assessment, err := f.deps.Reviewer.Evaluate(ctx, f.deps.Candidate, rec)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return r, Step{}, ctxErr
			}
			log.Warn("AI review failed, keeping record", zap.Error(err))
			rec.Review = &jobs.Review{Error: err.Error()}
			approved = append(approved, rec)
			continue
		}

		rec.Review = &jobs.Review{
			Fit:    assessment.Fit,
			Score:  assessment.Score,
			Reason: assessment.Reason,
			Raw:    assessment.Raw,
		}

		if !assessment.Fit {
			log.Info("record rejected by AI provider",
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)

			if err := f.appendToExcludeFile(rec, assessment.Reason); err != nil {
				log.Warn("failed to append record to exclude file", zap.Error(err))
			}
			continue
		}

		log.Info("record approved by AI", zap.Float64("ai_score", assessment.Score))
		approved = append(approved, rec)
	}

	r.Items = approved

	return r, Step{Initial: initial, Dropped: initial - r.Len(), Left: r.Len()}, nil
}

func (f *aiReviewFilter) appendToExcludeFile(rec *jobs.Record, reason string) error {
	path := strings.TrimSpace(f.deps.ExcludeFile)
	if path == "" {
		return nil
	}

	excluded, err := jobs.GetExcludedFromFile(path)
	if err != nil {
		return fmt.Errorf("load excluded records: %w", err)
	}

	toAppend := (&jobs.Records{Items: []*jobs.Record{rec}}).ToExcluded(jobs.ExcludeActorAI, reason)
	excluded.Append(toAppend)

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("write excluded records: %w", err)
	}

	f.deps.Logger.Info("record appended to exclude file",
		zap.String("record", rec.Label()),
		zap.String("exclude_file", path),
	)
	return nil
}

func (f *aiReviewFilter) Status() Status {
	details := map[string]string{}
	if provider := strings.TrimSpace(f.config.Provider); provider != "" {
		details["provider"] = provider
	}
	if f.config.Gemini != nil && f.config.Gemini.Model != "" {
		details["model"] = f.config.Gemini.Model
	}
	if f.config.MinimumFitScore > 0 {
		details["minimum_fit_score"] = fmt.Sprintf("%.2f", f.config.MinimumFitScore)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
