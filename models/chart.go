package models

// ChartPoint is a single (x, y) pair in a chart series.
type ChartPoint struct {
	X float64
	Y float64
}

// ChartSeries is a named, ordered sequence of points. Label, when set, is the
// text to place at the series' last point. The series carries data only;
// rendering happens in the charts package.
type ChartSeries struct {
	Name   string
	Label  string
	Points []ChartPoint
}
