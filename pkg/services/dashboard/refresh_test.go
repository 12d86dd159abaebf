package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) Start(ctx context.Context, trigger string) (*store.RefreshRun, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.RefreshRun), args.Error(1)
}

func (m *mockHistory) Finish(ctx context.Context, run *store.RefreshRun, runErr error) error {
	args := m.Called(ctx, run, runErr)
	return args.Error(0)
}

func (m *mockHistory) ListRecent(ctx context.Context, limit int) ([]store.RefreshRun, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]store.RefreshRun), args.Error(1)
}

func TestRefreshAll_RunsStepsInOrder(t *testing.T) {
	loaders := &fakeLoaders{}
	r := NewRefresher(loaders, nil)

	require.NoError(t, r.RefreshAll(context.Background(), TriggerManual))
	assert.Equal(t, []string{"summary", "forecasts", "segments"}, loaders.calls)
}

func TestRefreshAll_ContinuesPastFailedStep(t *testing.T) {
	boom := errors.New("backend down")
	loaders := &fakeLoaders{errs: map[string]error{"summary": boom}}
	r := NewRefresher(loaders, nil)

	err := r.RefreshAll(context.Background(), TriggerStartup)

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "summary: backend down")
	assert.Equal(t, []string{"summary", "forecasts", "segments"}, loaders.calls)
}

func TestRefreshAll_RecordsHistory(t *testing.T) {
	boom := errors.New("segments unavailable")
	loaders := &fakeLoaders{errs: map[string]error{"segments": boom}}
	run := &store.RefreshRun{ID: "run-1", Trigger: "mutation", Status: store.RefreshStatusRunning}

	history := new(mockHistory)
	history.On("Start", mock.Anything, "mutation").Return(run, nil)
	history.On("Finish", mock.Anything, run, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, boom)
	})).Return(nil)

	r := NewRefresher(loaders, history)
	err := r.RefreshAll(context.Background(), TriggerMutation)

	assert.ErrorIs(t, err, boom)
	history.AssertExpectations(t)
}

func TestRefreshAll_HistoryFailureDoesNotBlockRefresh(t *testing.T) {
	loaders := &fakeLoaders{}
	history := new(mockHistory)
	history.On("Start", mock.Anything, "manual").Return(nil, errors.New("disk full"))

	r := NewRefresher(loaders, history)

	require.NoError(t, r.RefreshAll(context.Background(), TriggerManual))
	assert.Len(t, loaders.calls, 3)
	history.AssertNotCalled(t, "Finish", mock.Anything, mock.Anything, mock.Anything)
}
