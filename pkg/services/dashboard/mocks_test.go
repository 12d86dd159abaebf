package dashboard

import (
	"context"
	"io"
	"sync"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/stretchr/testify/mock"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Summary(ctx context.Context) (*api.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.Summary), args.Error(1)
}

func (m *mockBackend) Forecast(ctx context.Context, days int) (*api.Forecast, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.Forecast), args.Error(1)
}

func (m *mockBackend) ProductForecast(ctx context.Context, days int) (*api.ProductForecast, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ProductForecast), args.Error(1)
}

func (m *mockBackend) Segments(ctx context.Context) (*api.Segments, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.Segments), args.Error(1)
}

func (m *mockBackend) Upload(
	ctx context.Context,
	kind api.UploadKind,
	filename string,
	content io.Reader,
) (*api.UploadResult, error) {
	args := m.Called(ctx, kind, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.UploadResult), args.Error(1)
}

func (m *mockBackend) AddCustomer(ctx context.Context, form api.CustomerForm) (*api.MutationResult, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.MutationResult), args.Error(1)
}

func (m *mockBackend) AddProduct(ctx context.Context, form api.ProductForm) (*api.MutationResult, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.MutationResult), args.Error(1)
}

type fakeRefresher struct {
	mu       sync.Mutex
	triggers []Trigger
	err      error
}

func (f *fakeRefresher) RefreshAll(ctx context.Context, trigger Trigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	return f.err
}

type fakeLoaders struct {
	calls []string
	errs  map[string]error
}

func (f *fakeLoaders) record(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeLoaders) LoadSummary(ctx context.Context) error   { return f.record("summary") }
func (f *fakeLoaders) LoadForecasts(ctx context.Context) error { return f.record("forecasts") }
func (f *fakeLoaders) LoadSegments(ctx context.Context) error  { return f.record("segments") }

func ptr[T any](v T) *T { return &v }
