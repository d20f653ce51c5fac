package greenhouse

import (
	"encoding/json"
	"math"
	"strconv"
)

// FileDescriptor describes one daily file published by the gateway.
type FileDescriptor struct {
	Index       int    `json:"index"`
	FileName    string `json:"fileName"`
	DisplayDate string `json:"displayDate"`
}

// Reading is a single sensor record from a daily file.
// Missing numeric fields are NaN.
type Reading struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// UnmarshalJSON keeps absent or null numbers as NaN instead of zero so that
// a gap in the source file does not read as a real 0 °C measurement.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature"`
		Humidity    *float64 `json:"humidity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Time = raw.Time
	r.Temperature = valueOrNaN(raw.Temperature)
	r.Humidity = valueOrNaN(raw.Humidity)
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature"`
		Humidity    *float64 `json:"humidity"`
	}{
		Time:        r.Time,
		Temperature: nanAsNil(r.Temperature),
		Humidity:    nanAsNil(r.Humidity),
	})
}

// Point is one (label, value) pair of a chart series.
type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON writes NaN as null; encoding/json refuses NaN otherwise.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X string   `json:"x"`
		Y *float64 `json:"y"`
	}{X: p.X, Y: nanAsNil(p.Y)})
}

// ChartSeries holds the two aligned series of a chart.
// Labels, Temperature and Humidity always have the same length.
type ChartSeries struct {
	Labels      []string `json:"labels"`
	Temperature []Point  `json:"temperature"`
	Humidity    []Point  `json:"humidity"`
}

// Len returns the number of points per series.
func (s ChartSeries) Len() int {
	return len(s.Labels)
}

// Clone returns a copy that shares no backing arrays with s.
func (s ChartSeries) Clone() ChartSeries {
	return ChartSeries{
		Labels:      append(make([]string, 0, len(s.Labels)), s.Labels...),
		Temperature: append(make([]Point, 0, len(s.Temperature)), s.Temperature...),
		Humidity:    append(make([]Point, 0, len(s.Humidity)), s.Humidity...),
	}
}

// RenderWidth is either "fill the available space" or a fixed pixel width.
type RenderWidth struct {
	Fill   bool `json:"fill"`
	Pixels int  `json:"pixels,omitempty"`
}

func (w RenderWidth) String() string {
	if w.Fill {
		return "100%"
	}
	return strconv.Itoa(w.Pixels) + "px"
}

func (w RenderWidth) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Fill   bool   `json:"fill"`
		Pixels int    `json:"pixels,omitempty"`
		CSS    string `json:"css"`
	}{Fill: w.Fill, Pixels: w.Pixels, CSS: w.String()})
}

// PresentationState is derived from a ChartSeries and never persisted.
type PresentationState struct {
	AxisTitle    string      `json:"axisTitle"`
	Width        RenderWidth `json:"width"`
	LabelDensity int         `json:"labelDensity"`
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func nanAsNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
