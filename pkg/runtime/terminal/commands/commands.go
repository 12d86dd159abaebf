package commands

import (
	"context"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb/refresh"
)

// Session hands commands the dashboard they operate on.
type Session interface {
	Dashboard(ctx context.Context) (*dashboard.Dashboard, error)
	History(ctx context.Context) (refresh.Store, error)
}

type Reporter interface {
	Handle(report *domain.Report) error
}

func report(d *dashboard.Dashboard) *domain.Report {
	return adapters.MapSnapshotToReport(d.Page.Snapshot(), d.Loader.Segments(), d.Loader.Days(), time.Now())
}
