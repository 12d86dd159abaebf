package adapters

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/format"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/de-tools/sales-atlas/pkg/view"
)

func MapSnapshotToReport(
	snap view.Snapshot,
	segments *api.SegmentSet,
	horizon int,
	generatedAt time.Time,
) *domain.Report {
	theme := ""
	if len(snap.Body) > 0 {
		theme = strings.TrimPrefix(snap.Body[0], "theme-")
	}

	report := &domain.Report{
		Title:       "Sales Dashboard",
		GeneratedAt: generatedAt,
		Theme:       theme,
		Horizon:     horizon,
		Sections: []domain.ReportSection{
			mapSummarySection(snap),
			mapForecastSection(snap),
			mapSegmentsSection(segments),
		},
	}

	if msgs := mapMessagesSection(snap); len(msgs.Details) > 0 {
		report.Sections = append(report.Sections, msgs)
	}
	return report
}

func mapSummarySection(snap view.Snapshot) domain.ReportSection {
	return domain.ReportSection{
		Title: "Summary",
		Summary: map[string]string{
			"Total Sales":     text(snap, dashboard.TotalSales),
			"Total Orders":    text(snap, dashboard.TotalOrders),
			"Total Customers": text(snap, dashboard.TotalCustomers),
		},
		Details: mapItemsToDetails(items(snap, dashboard.TopProducts), "", "top product"),
	}
}

func mapForecastSection(snap view.Snapshot) domain.ReportSection {
	return domain.ReportSection{
		Title: "Forecast",
		Summary: map[string]string{
			"Trend":    text(snap, dashboard.ForecastTrend),
			"Analysis": text(snap, dashboard.ForecastAnalysis),
			"Insight":  text(snap, dashboard.AIAnalysis),
		},
		Details: mapItemsToDetails(items(snap, dashboard.ProductPredictions), "units/day", "predicted demand"),
	}
}

func mapSegmentsSection(set *api.SegmentSet) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Segments",
		Summary: map[string]string{},
	}
	if set == nil {
		return section
	}

	if set.Last30Sales != nil {
		section.Summary["Last 30 Days"] = format.Currency(set.Last30Sales)
	}
	if set.Prev30Sales != nil {
		section.Summary["Previous 30 Days"] = format.Currency(set.Prev30Sales)
	}
	if set.Ratio != nil {
		section.Summary["Ratio"] = fmt.Sprintf("%.2f", *set.Ratio)
	}
	for _, c := range set.Chart {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        c.Label,
			Value:       c.Count,
			Unit:        "products",
			Description: "demand segment",
		})
	}
	return section
}

func mapMessagesSection(snap view.Snapshot) domain.ReportSection {
	ids := []string{dashboard.FormSuccess, dashboard.ProductSuccess}
	for _, kind := range api.UploadKinds {
		ids = append(ids, dashboard.UploadMessage(kind))
	}

	section := domain.ReportSection{Title: "Messages"}
	for _, id := range ids {
		el, ok := snap.Lookup(id)
		if !ok || el.Text == "" {
			continue
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        id,
			Value:       el.Text,
			Description: strings.Join(el.Classes, " "),
		})
	}
	return section
}

// mapItemsToDetails splits "name: value" list items at the last colon.
func mapItemsToDetails(items []string, unit, description string) []domain.ReportDetail {
	details := make([]domain.ReportDetail, 0, len(items))
	for _, item := range items {
		name, value := item, ""
		if i := strings.LastIndex(item, ": "); i >= 0 {
			name, value = item[:i], item[i+2:]
		}
		details = append(details, domain.ReportDetail{
			Name:        name,
			Value:       value,
			Unit:        unit,
			Description: description,
		})
	}
	return details
}

func MapRefreshRunsToSection(runs []store.RefreshRun) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Refresh History",
		Summary: map[string]string{"Runs": fmt.Sprint(len(runs))},
	}
	for _, run := range runs {
		took := "-"
		if run.FinishedAt != nil {
			took = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		desc := run.StartedAt.Format(time.RFC3339)
		if run.Error != nil {
			desc += " " + *run.Error
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        run.Trigger + " " + run.Status,
			Value:       took,
			Description: desc,
		})
	}
	return section
}

func text(snap view.Snapshot, id string) string {
	el, _ := snap.Lookup(id)
	return el.Text
}

func items(snap view.Snapshot, id string) []string {
	el, _ := snap.Lookup(id)
	return el.Items
}
