package chart

import "slices"

const (
	HistoricalLabel = "Historical Sales"
	ForecastLabel   = "Forecast"
)

// ForecastDatasets lays a forecast after a historical series on one
// label axis. The historical dataset keeps its own length; the forecast
// dataset starts with one nil per historical point so the two lines
// never overlap.
func ForecastDatasets(histLabels []string, hist []*float64, fcLabels []string, fc []*float64) ([]string, []Dataset) {
	labels := make([]string, 0, len(histLabels)+len(fcLabels))
	labels = append(labels, histLabels...)
	labels = append(labels, fcLabels...)

	padded := make([]*float64, len(hist), len(hist)+len(fc))
	padded = append(padded, fc...)

	return labels, []Dataset{
		{Label: HistoricalLabel, Values: slices.Clone(hist)},
		{Label: ForecastLabel, Values: padded},
	}
}

// Values wraps plain numbers as a dense dataset.
func Values(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = &vs[i]
	}
	return out
}
