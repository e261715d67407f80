package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-radar/internal/jobs"
)

func TestNewEngineRequiresConfig(t *testing.T) {
	_, err := NewEngine(nil, nil)
	assert.Error(t, err)
}

func TestScoreAllKeepsInputOrder(t *testing.T) {
	cfg, profile := loadDefault(t)
	engine, err := NewEngine(cfg, profile)
	require.NoError(t, err)

	var records []*jobs.Record
	for i := 0; i < 50; i++ {
		rec := safetyRecord()
		if i%2 == 0 {
			rec = executiveRecord()
		}
		rec.ID = fmt.Sprintf("%d", i)
		records = append(records, &rec)
	}
	records = append(records, nil)

	results, err := engine.ScoreAll(context.Background(), records, 4)
	require.NoError(t, err)
	require.Len(t, results, len(records))

	for i, rec := range records {
		if rec == nil {
			assert.Zero(t, results[i].FinalScore)
			continue
		}
		assert.Equal(t, engine.Score(*rec), results[i], "record %d", i)
	}
}

func TestScoreAllStopsOnCanceledContext(t *testing.T) {
	cfg, profile := loadDefault(t)
	engine, err := NewEngine(cfg, profile)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := safetyRecord()
	_, err = engine.ScoreAll(ctx, []*jobs.Record{&rec}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
