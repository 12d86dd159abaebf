package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb/refresh"
	"github.com/rs/zerolog"
)

type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerMutation Trigger = "mutation"
	TriggerManual   Trigger = "manual"
	TriggerSchedule Trigger = "scheduled"
)

type Loaders interface {
	LoadSummary(ctx context.Context) error
	LoadForecasts(ctx context.Context) error
	LoadSegments(ctx context.Context) error
}

// Refresher runs the three loaders one after another. Concurrent calls
// are not coalesced: each runs to completion and the last write to an
// element wins.
type Refresher struct {
	loaders Loaders
	history refresh.Store
}

func NewRefresher(loaders Loaders, history refresh.Store) *Refresher {
	return &Refresher{
		loaders: loaders,
		history: history,
	}
}

func (r *Refresher) RefreshAll(ctx context.Context, trigger Trigger) error {
	logger := zerolog.Ctx(ctx).With().Str("trigger", string(trigger)).Logger()
	ctx = logger.WithContext(ctx)

	run, err := r.startRun(ctx, trigger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to record refresh start")
	}

	steps := []struct {
		name string
		load func(context.Context) error
	}{
		{name: "summary", load: r.loaders.LoadSummary},
		{name: "forecasts", load: r.loaders.LoadForecasts},
		{name: "segments", load: r.loaders.LoadSegments},
	}

	var errs []error
	for _, step := range steps {
		if err := step.load(ctx); err != nil {
			logger.Error().Err(err).Str("step", step.name).Msg("refresh step failed")
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	refreshErr := errors.Join(errs...)

	if run != nil {
		if err := r.history.Finish(ctx, run, refreshErr); err != nil {
			logger.Warn().Err(err).Msg("failed to record refresh result")
		}
	}

	logger.Info().Bool("ok", refreshErr == nil).Msg("refresh finished")
	return refreshErr
}

func (r *Refresher) startRun(ctx context.Context, trigger Trigger) (*store.RefreshRun, error) {
	if r.history == nil {
		return nil, nil
	}
	return r.history.Start(ctx, string(trigger))
}
