package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/job-radar/internal/jobs"
	"github.com/spigell/job-radar/internal/logger"
	"github.com/spigell/job-radar/internal/matching"
)

type MatchFilterConfig struct {
	// KeepFiltered keeps records below the minimum score in the list.
	// They still carry an assessment with Passed set to false.
	KeepFiltered bool
	Workers      int
}

type MatchFilterDeps struct {
	Engine *matching.Engine
	Logger *zap.Logger
}

type matchFilter struct {
	toggle
	config *MatchFilterConfig
	deps   *MatchFilterDeps
}

// NewMatch creates the filter that scores every record, attaches the assessment,
// drops records failing the minimum score and ranks the rest.
func NewMatch(cfg *MatchFilterConfig, deps *MatchFilterDeps) Filter {
	if cfg == nil {
		cfg = &MatchFilterConfig{}
	}
	return &matchFilter{config: cfg, deps: deps}
}

func (f *matchFilter) Name() string { return "match" }

func (f *matchFilter) Validate() error {
	if f.deps == nil || f.deps.Engine == nil {
		return errors.New("matching engine is required")
	}
	if f.deps.Logger == nil {
		f.deps.Logger = zap.NewNop()
	}
	return nil
}

func (f *matchFilter) Apply(ctx context.Context, r *jobs.Records) (*jobs.Records, Step, error) {
	initial := r.Len()

	results, err := f.deps.Engine.ScoreAll(ctx, r.Items, f.config.Workers)
	if err != nil {
		return r, Step{}, fmt.Errorf("scoring records: %w", err)
	}

	kept := make([]*jobs.Record, 0, initial)
	for i, rec := range r.Items {
		if rec == nil {
			continue
		}
		res := results[i]
		rec.Assessment = res.Assessment()

		fields := append(logger.RecordFields(rec),
			zap.Float64("base_score", res.BaseScore),
			zap.Float64("final_score", res.FinalScore),
			zap.Strings("penalties", res.PenaltyNames()),
		)

		if !res.Passed {
			f.deps.Logger.Debug("record below minimum match score",
				append(fields, zap.Strings("reasons", res.Reasons))...,
			)
			if !f.config.KeepFiltered {
				continue
			}
		} else {
			f.deps.Logger.Debug("record passed minimum match score", fields...)
		}

		kept = append(kept, rec)
	}

	r.Items = kept
	r.SortByScore()

	return r, Step{Initial: initial, Dropped: initial - r.Len(), Left: r.Len()}, nil
}

func (f *matchFilter) Status() Status {
	details := map[string]string{
		"keep_filtered": strconv.FormatBool(f.config.KeepFiltered),
	}
	if f.deps != nil && f.deps.Engine != nil {
		cfg := f.deps.Engine.Config()
		details["minimum_match_score"] = fmt.Sprintf("%.2f", cfg.MinimumMatchScore())
		details["rules"] = strconv.Itoa(len(cfg.RuleNames()))
		details["factors"] = strconv.Itoa(len(cfg.FactorWeights()))
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
