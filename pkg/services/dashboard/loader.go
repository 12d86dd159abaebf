package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"

	"github.com/de-tools/sales-atlas/pkg/chart"
	"github.com/de-tools/sales-atlas/pkg/format"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/store/client"
	"github.com/de-tools/sales-atlas/pkg/view"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultForecastDays = 30

// Loader fetches backend payloads and writes them into the page.
//
// A payload carrying an error field is logged and leaves the page as it
// was. Transport failures are returned, also without touching the page.
type Loader struct {
	backend client.Backend
	page    *view.Page
	charts  *chart.Renderer
	days    int

	mu       sync.Mutex
	segments *api.SegmentSet
}

func NewLoader(backend client.Backend, page *view.Page, charts *chart.Renderer, days int) *Loader {
	if days <= 0 {
		days = DefaultForecastDays
	}
	return &Loader{
		backend: backend,
		page:    page,
		charts:  charts,
		days:    days,
	}
}

// Days is the forecast horizon sent to the backend.
func (l *Loader) Days() int { return l.days }

func (l *Loader) LoadSummary(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	s, err := l.backend.Summary(ctx)
	if err != nil {
		return fmt.Errorf("fetch summary: %w", err)
	}
	if s.Failed() {
		logger.Error().Str("error", s.Error).Msg("summary payload returned an error")
		return nil
	}

	items := make([]string, 0, len(s.TopProducts))
	for _, p := range s.TopProducts {
		items = append(items, fmt.Sprintf("%s: %s", p.Description, format.Currency(p.Sales)))
	}

	labels, values := monthlySeries(s.Monthly)

	writes := []func() error{
		func() error { return l.page.SetText(TotalSales, format.Currency(s.TotalSales)) },
		func() error { return l.page.SetText(TotalOrders, strconv.FormatInt(s.TotalOrders, 10)) },
		func() error { return l.page.SetText(TotalCustomers, strconv.FormatInt(s.TotalCustomers, 10)) },
		func() error { return l.page.SetItems(TopProducts, items) },
		func() error {
			_, err := l.charts.Draw(chart.Bar, MonthlyChart, labels,
				[]chart.Dataset{{Label: "Monthly Sales", Values: values}},
				chart.Options{Title: "Monthly Sales"})
			return err
		},
	}
	return apply(writes)
}

func (l *Loader) LoadForecasts(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	fc, err := l.backend.Forecast(ctx, l.days)
	if err != nil {
		return fmt.Errorf("fetch forecast: %w", err)
	}
	if fc.Failed() {
		logger.Error().Str("error", fc.Error).Msg("forecast payload returned an error")
		return nil
	}

	if err := apply([]func() error{
		func() error { return l.page.SetText(ForecastTrend, cases.Title(language.English).String(fc.Trend)) },
		func() error { return l.page.SetText(ForecastAnalysis, fc.Analysis) },
	}); err != nil {
		return err
	}

	// History and product predictions are secondary: their failures are
	// reported but never undo what was written above.
	var secondary []error

	var histLabels []string
	var hist []*float64
	s, err := l.backend.Summary(ctx)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("failed to fetch sales history for forecast chart")
		secondary = append(secondary, fmt.Errorf("fetch sales history: %w", err))
	case s.Failed():
		logger.Warn().Str("error", s.Error).Msg("sales history payload returned an error")
	default:
		histLabels, hist = monthlySeries(s.Monthly)
	}

	fcLabels := make([]string, len(fc.Points))
	fcValues := make([]*float64, len(fc.Points))
	for i, p := range fc.Points {
		fcLabels[i] = dateLabel(p.DS)
		fcValues[i] = p.Y
	}

	labels, datasets := chart.ForecastDatasets(histLabels, hist, fcLabels, fcValues)
	if _, err := l.charts.Draw(chart.LineWithForecast, SalesChart, labels, datasets,
		chart.Options{Title: "Sales & Forecast"}); err != nil {
		return err
	}

	pf, err := l.backend.ProductForecast(ctx, l.days)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("failed to fetch product forecast")
		secondary = append(secondary, fmt.Errorf("fetch product forecast: %w", err))
	case pf.Failed():
		logger.Error().Str("error", pf.Error).Msg("product forecast payload returned an error")
	default:
		if err := apply([]func() error{
			func() error { return l.page.SetItems(ProductPredictions, predictionItems(pf.Products)) },
			func() error { return l.page.SetText(AIAnalysis, insight(fc, pf, l.days)) },
		}); err != nil {
			return err
		}
	}

	return errors.Join(secondary...)
}

func (l *Loader) LoadSegments(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	seg, err := l.backend.Segments(ctx)
	if err != nil {
		return fmt.Errorf("fetch segments: %w", err)
	}
	if seg.Failed() {
		logger.Error().Str("error", seg.Error).Msg("segments payload returned an error")
		return nil
	}

	counts := seg.Segments.Chart
	if len(counts) == 0 {
		logger.Warn().Msg("segments payload has no chart data")
		return nil
	}
	_, err = l.charts.Draw(chart.Pie, SegmentsChart, counts.Labels(),
		[]chart.Dataset{{Label: "Segments", Values: chart.Values(counts.Counts()...)}},
		chart.Options{Title: "Product Demand Segments"})
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.segments = &seg.Segments
	l.mu.Unlock()
	return nil
}

// Segments returns the segment set behind the last drawn pie, or nil.
func (l *Loader) Segments() *api.SegmentSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.segments == nil {
		return nil
	}
	out := *l.segments
	out.Chart = slices.Clone(l.segments.Chart)
	return &out
}

func monthlySeries(monthly []api.MonthlySales) ([]string, []*float64) {
	labels := make([]string, len(monthly))
	values := make([]*float64, len(monthly))
	for i, m := range monthly {
		labels[i] = dateLabel(m.InvoiceDate)
		values[i] = m.Sales
	}
	return labels, values
}

func predictionItems(products []api.ProductPrediction) []string {
	items := make([]string, 0, len(products))
	for _, p := range products {
		mean := "n/a"
		if p.NextMean != nil {
			mean = strconv.FormatFloat(*p.NextMean, 'f', 2, 64)
		}
		items = append(items, fmt.Sprintf("%s: %s", p.Product, mean))
	}
	return items
}

func insight(fc *api.Forecast, pf *api.ProductForecast, days int) string {
	var text string
	switch {
	case fc.Trend == "stable" || (fc.PctChange == nil && fc.Trend == ""):
		text = fmt.Sprintf("Sales are expected to remain stable over the next %d days.", days)
	case fc.PctChange != nil:
		text = fmt.Sprintf("Sales are expected to %s by %.1f%% over the next %d days.",
			fc.Trend, math.Abs(*fc.PctChange), days)
	default:
		text = fmt.Sprintf("Sales trend for the next %d days: %s.", days, fc.Trend)
	}

	if len(pf.Products) == 0 {
		return text + " No product-level predictions yet."
	}
	top := pf.Products[0]
	if top.NextMean == nil {
		return fmt.Sprintf("%s Top predicted product: %s.", text, top.Product)
	}
	return fmt.Sprintf("%s Top predicted product: %s (%.2f units/day).", text, top.Product, *top.NextMean)
}

// apply runs page writes in order and stops at the first failure.
func apply(writes []func() error) error {
	for _, w := range writes {
		if err := w(); err != nil {
			return err
		}
	}
	return nil
}
