package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	mu       sync.Mutex
	triggers []dashboard.Trigger
	err      error
}

func (f *fakeRefresher) RefreshAll(_ context.Context, trigger dashboard.Trigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	return f.err
}

func (f *fakeRefresher) calls() []dashboard.Trigger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dashboard.Trigger(nil), f.triggers...)
}

func TestRunner_RefreshesOnEachTick(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("summary: backend down")}
	runner := NewRunner(refresher, RunnerConfig{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go runner.Run(ctx)

	var last RunnerProgress
	for last.Cycles < 2 {
		select {
		case p := <-runner.Progress():
			last = p
		case <-time.After(2 * time.Second):
			t.Fatal("no progress reported")
		}
	}
	cancel()

	select {
	case <-runner.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Equal(t, last.Cycles, last.Failures)
	assert.EqualError(t, last.LastErr, "summary: backend down")
	assert.False(t, last.LastRunAt.IsZero())
	for _, trigger := range refresher.calls() {
		assert.Equal(t, dashboard.TriggerSchedule, trigger)
	}
}

func TestController(t *testing.T) {
	t.Run("disabled interval", func(t *testing.T) {
		ctrl := NewController(&fakeRefresher{})
		require.NoError(t, ctrl.Start(context.Background(), 0))
		assert.Nil(t, ctrl.Progress())
		assert.ErrorIs(t, ctrl.Cancel(context.Background()), ErrNotRunning)
	})

	t.Run("start and cancel", func(t *testing.T) {
		refresher := &fakeRefresher{}
		ctrl := NewController(refresher)
		ctx := context.Background()

		require.NoError(t, ctrl.Start(ctx, 5*time.Millisecond))
		assert.Error(t, ctrl.Start(ctx, 5*time.Millisecond))

		require.Eventually(t, func() bool {
			return len(refresher.calls()) > 0
		}, 2*time.Second, 5*time.Millisecond)

		require.NoError(t, ctrl.Cancel(ctx))
		assert.Nil(t, ctrl.Progress())
		assert.ErrorIs(t, ctrl.Cancel(ctx), ErrNotRunning)
	})
}
