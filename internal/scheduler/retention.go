package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredCleaner drops expired in-memory experiments
type ExpiredCleaner interface {
	CleanupExpired(ctx context.Context) int
}

// Purger deletes stored experiments, with their runs, that expired before a cutoff
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob drops expired experiments from memory and purges stored
// experiments once they have been expired for longer than the retention period
type RetentionJob struct {
	cleaner   ExpiredCleaner
	purger    Purger
	retention time.Duration
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// NewRetentionJob creates the job; purger may be nil when persistence is off
func NewRetentionJob(cleaner ExpiredCleaner, purger Purger, retention time.Duration, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		cleaner:   cleaner,
		purger:    purger,
		retention: retention,
		timeout:   time.Minute,
		log:       log.With().Str("job", "retention").Logger(),
		now:       time.Now,
	}
}

func (j *RetentionJob) Name() string {
	return "retention"
}

func (j *RetentionJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed := j.cleaner.CleanupExpired(ctx)

	var purged int64
	if j.purger != nil {
		var err error
		purged, err = j.purger.PurgeBefore(ctx, j.now().Add(-j.retention))
		if err != nil {
			return fmt.Errorf("purge stored runs: %w", err)
		}
	}

	j.log.Info().
		Int("experiments_removed", removed).
		Int64("rows_purged", purged).
		Msg("Retention pass finished")

	return nil
}
