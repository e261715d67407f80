package matching

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-radar/internal/jobs"
)

// Engine scores records against a fixed configuration and profile.
type Engine struct {
	cfg     *Config
	profile *Profile
}

func NewEngine(cfg *Config, profile *Profile) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("matching config is required")
	}
	if profile == nil {
		p := DefaultProfile()
		profile = &p
	}
	return &Engine{cfg: cfg, profile: profile}, nil
}

func (e *Engine) Config() *Config {
	return e.cfg
}

func (e *Engine) Score(rec jobs.Record) MatchResult {
	return Score(rec, e.cfg, e.profile)
}

// ScoreAll scores records concurrently with at most workers goroutines.
// Results are returned in input order. Nil records get a zero result.
func (e *Engine) ScoreAll(ctx context.Context, records []*jobs.Record, workers int) ([]MatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]MatchResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		if rec == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Score(*rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
