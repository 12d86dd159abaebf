package workflow

import (
	"context"
	"time"

	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/rs/zerolog"
)

type Refresher interface {
	RefreshAll(ctx context.Context, trigger dashboard.Trigger) error
}

// Runner refreshes the dashboard on a fixed interval until its context
// is cancelled.
type Runner struct {
	refresher Refresher
	done      chan struct{}
	progress  chan RunnerProgress
	config    RunnerConfig
}

type RunnerConfig struct {
	Interval time.Duration
}

type RunnerProgress struct {
	Cycles    int64
	Failures  int64
	LastRunAt time.Time
	LastErr   error
}

func NewRunner(refresher Refresher, config RunnerConfig) *Runner {
	return &Runner{
		refresher: refresher,
		done:      make(chan struct{}),
		progress:  make(chan RunnerProgress, 100),
		config:    config,
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress reports each finished cycle. Updates are dropped while the
// buffer is full.
func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Dur("interval", r.config.Interval).Logger()
	ctx = logger.WithContext(ctx)
	defer close(r.done)
	defer close(r.progress)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	var cycles, failures int64
	for {
		select {
		case <-ctx.Done():
			logger.Info().Int64("cycles", cycles).Msg("scheduled refresh stopped")
			return
		case <-ticker.C:
			err := r.refresher.RefreshAll(ctx, dashboard.TriggerSchedule)
			cycles++
			if err != nil {
				failures++
				logger.Error().Err(err).Msg("scheduled refresh incomplete")
			}

			select {
			case r.progress <- RunnerProgress{
				Cycles:    cycles,
				Failures:  failures,
				LastRunAt: time.Now(),
				LastErr:   err,
			}:
			default:
			}
		}
	}
}
