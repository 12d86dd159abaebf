package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	gochart "github.com/wcharczuk/go-chart/v2"
)

var ErrEmptyChart = errors.New("chart has no values to draw")

const maxAxisTicks = 12

// RenderPNG draws the live chart bound to slot as a PNG image.
func (r *Renderer) RenderPNG(slot string, w io.Writer) error {
	h, ok := r.Handle(slot)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoChart, slot)
	}

	switch h.kind {
	case Bar:
		return renderBar(h, w)
	case Pie:
		return renderPie(h, w)
	case LineWithForecast:
		return renderLine(h, w)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDatasets, h.kind)
	}
}

func renderBar(h *Handle, w io.Writer) error {
	values := categoricalValues(h.labels, h.datasets[0])
	if len(values) == 0 {
		return ErrEmptyChart
	}

	graph := gochart.BarChart{
		Title:  h.options.Title,
		Width:  h.options.Width,
		Height: h.options.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		YAxis: gochart.YAxis{
			Range: valueRange(barValues(values), true),
		},
		BarWidth: barWidth(h.options.Width, len(values)),
		Bars:     values,
	}
	return graph.Render(gochart.PNG, w)
}

func renderPie(h *Handle, w io.Writer) error {
	values := categoricalValues(h.labels, h.datasets[0])
	nonZero := slices.ContainsFunc(values, func(v gochart.Value) bool { return v.Value != 0 })
	if !nonZero {
		return ErrEmptyChart
	}

	graph := gochart.PieChart{
		Title:  h.options.Title,
		Width:  h.options.Width,
		Height: h.options.Height,
		Values: values,
	}
	return graph.Render(gochart.PNG, w)
}

func renderLine(h *Handle, w io.Writer) error {
	styles := []gochart.Style{
		{StrokeColor: gochart.ColorBlue, StrokeWidth: 2},
		{StrokeColor: gochart.ColorOrange, StrokeWidth: 2, StrokeDashArray: []float64{5.0, 5.0}},
	}

	var series []gochart.Series
	var all []float64
	for i, ds := range h.datasets {
		xs, ys := denseXY(ds.Values)
		if len(xs) == 0 {
			continue
		}
		all = append(all, ys...)
		series = append(series, gochart.ContinuousSeries{
			Name:    ds.Label,
			Style:   styles[i%len(styles)],
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return ErrEmptyChart
	}

	graph := gochart.Chart{
		Title:  h.options.Title,
		Width:  h.options.Width,
		Height: h.options.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(float64(len(h.labels)-1), 1)},
			Ticks: axisTicks(h.labels),
		},
		YAxis: gochart.YAxis{
			Range: valueRange(all, false),
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	return graph.Render(gochart.PNG, w)
}

func categoricalValues(labels []string, ds Dataset) []gochart.Value {
	values := make([]gochart.Value, 0, len(ds.Values))
	for i, v := range ds.Values {
		if v == nil {
			continue
		}
		values = append(values, gochart.Value{Label: labels[i], Value: *v})
	}
	return values
}

// denseXY drops gaps, using the label index as the x coordinate.
func denseXY(values []*float64) ([]float64, []float64) {
	var xs, ys []float64
	for i, v := range values {
		if v == nil {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, *v)
	}
	return xs, ys
}

func axisTicks(labels []string) []gochart.Tick {
	if len(labels) == 0 {
		return nil
	}
	step := (len(labels) + maxAxisTicks - 1) / maxAxisTicks
	ticks := make([]gochart.Tick, 0, maxAxisTicks+1)
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: labels[i]})
	}
	return ticks
}

// valueRange spans values, widened so that it is never empty. Bars
// always include zero.
func valueRange(values []float64, fromZero bool) *gochart.ContinuousRange {
	lo, hi := slices.Min(values), slices.Max(values)
	if fromZero {
		lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	}
	if hi == lo {
		pad := math.Max(math.Abs(hi)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func barValues(values []gochart.Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Value
	}
	return out
}

func barWidth(width, bars int) int {
	bw := width / (bars * 2)
	if bw < 8 {
		return 8
	}
	if bw > 60 {
		return 60
	}
	return bw
}
