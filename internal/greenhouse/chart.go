package greenhouse

const (
	// WideThreshold is the number of points above which the chart stops
	// filling the container and gets a fixed width instead.
	WideThreshold = 15
	// PixelsPerPoint is the horizontal space given to each point of a wide chart.
	PixelsPerPoint = 30
	// DefaultLabelDensity shows every third x label.
	DefaultLabelDensity = 3
)

// BuildChartSeries maps readings onto a label sequence and two aligned
// series, in input order. Every call builds new slices.
func BuildChartSeries(readings []Reading) ChartSeries {
	series := ChartSeries{
		Labels:      make([]string, 0, len(readings)),
		Temperature: make([]Point, 0, len(readings)),
		Humidity:    make([]Point, 0, len(readings)),
	}
	for _, r := range readings {
		series.Labels = append(series.Labels, r.Time)
		series.Temperature = append(series.Temperature, Point{X: r.Time, Y: r.Temperature})
		series.Humidity = append(series.Humidity, Point{X: r.Time, Y: r.Humidity})
	}
	return series
}

// WidthFor returns the render width for a chart with n points.
func WidthFor(n int) RenderWidth {
	if n > WideThreshold {
		return RenderWidth{Pixels: n * PixelsPerPoint}
	}
	return RenderWidth{Fill: true}
}

// TickVisible reports whether the x label at index is drawn.
// A density below 1 shows every label.
func TickVisible(index, density int) bool {
	if density <= 1 {
		return true
	}
	return index%density == 0
}

// Present derives the presentation state of series loaded from fileName.
func Present(fileName string, series ChartSeries, density int, dateLayout string) PresentationState {
	if density <= 0 {
		density = DefaultLabelDensity
	}
	return PresentationState{
		AxisTitle:    AxisTitle(fileName, dateLayout),
		Width:        WidthFor(series.Len()),
		LabelDensity: density,
	}
}
