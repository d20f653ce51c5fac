// Package render draws a greenhouse chart as SVG or PNG with go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
)

const (
	Title = "Temperature & Humidity"

	// DefaultWidth is used when the presentation asks to fill the container;
	// the page scales the image to 100%.
	DefaultWidth = 1024
	Height       = 384

	TemperatureAxisName = "Temperature, C"
	HumidityAxisName    = "Humidity, %"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to render")

// SuggestedRange is the axis range shown at least; data outside widens it.
type SuggestedRange struct {
	Min, Max float64
}

var (
	TemperatureRange = SuggestedRange{Min: 14, Max: 23}
	HumidityRange    = SuggestedRange{Min: 36, Max: 47}
)

type theme struct {
	font        *truetype.Font
	temperature drawing.Color
	humidity    drawing.Color
}

var (
	registerOnce sync.Once
	registerErr  error
	registered   theme
)

// Register loads the font and palette shared by all charts. Only the first
// call does any work; it is safe to call from every render.
func Register() error {
	registerOnce.Do(func() {
		f, err := chart.GetDefaultFont()
		if err != nil {
			registerErr = fmt.Errorf("load chart font: %w", err)
			return
		}
		registered = theme{
			font:        f,
			temperature: drawing.ColorFromHex("dc2626"),
			humidity:    drawing.ColorFromHex("10b981"),
		}
	})
	return registerErr
}

// SVG renders series into w as an SVG document.
func SVG(w io.Writer, series greenhouse.ChartSeries, p greenhouse.PresentationState) error {
	return renderTo(w, chart.SVG, series, p)
}

// PNG renders series into w as a PNG image.
func PNG(w io.Writer, series greenhouse.ChartSeries, p greenhouse.PresentationState) error {
	return renderTo(w, chart.PNG, series, p)
}

func renderTo(w io.Writer, format chart.RendererProvider, series greenhouse.ChartSeries, p greenhouse.PresentationState) error {
	ch, err := build(series, p)
	if err != nil {
		return err
	}
	if err := ch.Render(format, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func build(series greenhouse.ChartSeries, p greenhouse.PresentationState) (chart.Chart, error) {
	if err := Register(); err != nil {
		return chart.Chart{}, err
	}
	n := series.Len()
	if n == 0 {
		return chart.Chart{}, ErrNoData
	}

	// go-chart draws the secondary y axis on the left, so temperature uses it.
	var drawn []chart.Series
	if s, ok := lineSeries("Temperature", series.Temperature, registered.temperature, chart.YAxisSecondary); ok {
		drawn = append(drawn, s)
	}
	if s, ok := lineSeries("Humidity", series.Humidity, registered.humidity, chart.YAxisPrimary); ok {
		drawn = append(drawn, s)
	}
	if len(drawn) == 0 {
		return chart.Chart{}, ErrNoData
	}

	width := DefaultWidth
	if !p.Width.Fill && p.Width.Pixels > 0 {
		width = p.Width.Pixels
	}

	ch := chart.Chart{
		Title:      Title,
		Font:       registered.font,
		Width:      width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  p.AxisTitle,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: xTicks(series.Labels, p.LabelDensity),
		},
		YAxisSecondary: chart.YAxis{
			Name:           TemperatureAxisName,
			Style:          chart.Style{StrokeColor: registered.temperature},
			Range:          suggestedRange(series.Temperature, TemperatureRange),
			ValueFormatter: oneDecimal,
		},
		YAxis: chart.YAxis{
			Name:           HumidityAxisName,
			Style:          chart.Style{StrokeColor: registered.humidity},
			Range:          suggestedRange(series.Humidity, HumidityRange),
			ValueFormatter: oneDecimal,
		},
		Series: drawn,
	}
	return ch, nil
}

// lineSeries leaves out points without a value; it reports false when none
// are left.
func lineSeries(name string, points []greenhouse.Point, color drawing.Color, axis chart.YAxisType) (chart.ContinuousSeries, bool) {
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for i, pt := range points {
		if math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, pt.Y)
	}
	if len(xs) == 0 {
		return chart.ContinuousSeries{}, false
	}
	return chart.ContinuousSeries{
		Name:  name,
		YAxis: axis,
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    2,
		},
		XValues: xs,
		YValues: ys,
	}, true
}

func xTicks(labels []string, density int) []chart.Tick {
	var ticks []chart.Tick
	for i, label := range labels {
		if !greenhouse.TickVisible(i, density) {
			continue
		}
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	return ticks
}

func suggestedRange(points []greenhouse.Point, suggested SuggestedRange) *chart.ContinuousRange {
	lo, hi := suggested.Min, suggested.Max
	for _, pt := range points {
		if math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			continue
		}
		lo = math.Min(lo, pt.Y)
		hi = math.Max(hi, pt.Y)
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func oneDecimal(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f", f)
	}
	return ""
}
