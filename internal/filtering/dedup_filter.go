package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-radar/internal/jobs"
)

type dedupFilter struct {
	toggle
	logger *zap.Logger
}

// NewDedup creates a filter that drops records already seen under the same
// title, company and location or the same URL.
func NewDedup(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dedupFilter{logger: logger}
}

func (f *dedupFilter) Name() string { return "dedup" }

func (f *dedupFilter) Validate() error { return nil }

func (f *dedupFilter) Apply(_ context.Context, r *jobs.Records) (*jobs.Records, Step, error) {
	initial := r.Len()

	dropped := r.Deduplicate()
	if len(dropped) > 0 {
		f.logger.Debug("dropping duplicate records",
			zap.Strings("duplicates", dropped),
			zap.Int("records_left", r.Len()),
		)
	}

	return r, Step{Initial: initial, Dropped: len(dropped), Left: r.Len()}, nil
}

func (f *dedupFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
