package dashboard

import (
	"github.com/de-tools/sales-atlas/pkg/chart"
	"github.com/de-tools/sales-atlas/pkg/store/client"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb/refresh"
	"github.com/de-tools/sales-atlas/pkg/view"
)

// Dashboard is one page session: the page, its charts, and the
// controllers that write into them.
type Dashboard struct {
	Page      *view.Page
	Charts    *chart.Renderer
	Loader    *Loader
	Refresher *Refresher
	Forms     *Forms
	Theme     *ThemeSwitcher
}

// New wires a session against backend. history may be nil.
func New(backend client.Backend, history refresh.Store, days int) *Dashboard {
	page := NewPage()
	charts := chart.NewRenderer(page)
	loader := NewLoader(backend, page, charts, days)
	refresher := NewRefresher(loader, history)

	return &Dashboard{
		Page:      page,
		Charts:    charts,
		Loader:    loader,
		Refresher: refresher,
		Forms:     NewForms(backend, page, refresher),
		Theme:     NewThemeSwitcher(page),
	}
}
