package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Pruner removes superseded transmissions created before a cutoff.
type Pruner interface {
	PruneSuperseded(ctx context.Context, olderThan time.Time) (int64, error)
}

// Job drops superseded transmission rows once they are older than Keep.
type Job struct {
	pruner Pruner
	keep   time.Duration
	now    func() time.Time
}

func NewJob(pruner Pruner, keep time.Duration) *Job {
	return &Job{pruner: pruner, keep: keep, now: time.Now}
}

// Run prunes once. A non-positive keep disables pruning.
func (j *Job) Run(ctx context.Context) (int64, error) {
	if j.keep <= 0 {
		return 0, nil
	}
	pruned, err := j.pruner.PruneSuperseded(ctx, j.now().Add(-j.keep))
	if err != nil {
		return 0, fmt.Errorf("prune superseded transmissions: %w", err)
	}
	return pruned, nil
}

// Schedule registers the job on c. An empty schedule leaves c untouched.
func Schedule(c *cron.Cron, schedule string, job *Job) error {
	if schedule == "" {
		return nil
	}
	_, err := c.AddFunc(schedule, func() {
		pruned, err := job.Run(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("Retention run failed.")
			return
		}
		log.Info().Int64("pruned", pruned).Msg("Retention run finished.")
	})
	if err != nil {
		return fmt.Errorf("schedule retention %q: %w", schedule, err)
	}
	return nil
}
