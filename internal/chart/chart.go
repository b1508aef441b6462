// Package chart turns a dropdown selection and the ratings table into the
// description of the line chart drawn by the page.
package chart

import "satisfaction/internal/core"

const (
	Title      = "Customer Satisfaction Over Time"
	XAxisTitle = "Date"
	YAxisTitle = "Satisfaction (%)"
	HoverMode  = "x unified"
)

var (
	tickVals = []float64{25, 50, 75, 100}
	tickText = []string{"25% (1)", "50% (2)", "75% (3)", "100% (4)"}
)

type (
	Axis struct {
		Title    string    `json:"title"`
		TickVals []float64 `json:"tickvals,omitempty"`
		TickText []string  `json:"ticktext,omitempty"`
	}

	// Point is one marker on the line. X is the date label.
	Point struct {
		X    string  `json:"x"`
		Y    float64 `json:"y"`
		Rate float64 `json:"rate"`
	}

	// Spec is everything the browser needs to draw the chart.
	Spec struct {
		Title     string  `json:"title"`
		Type      string  `json:"type"`
		Markers   bool    `json:"markers"`
		HoverMode string  `json:"hovermode"`
		XAxis     Axis    `json:"xaxis"`
		YAxis     Axis    `json:"yaxis"`
		Points    []Point `json:"points"`
		// Fallback is set when the selection matched nothing and the
		// whole table is shown instead.
		Fallback bool `json:"fallback"`
	}
)

// Filter returns the records whose year is in years and whose month is in
// months. When nothing matches it returns every record and fallback=true.
func Filter(table core.Table, years, months []int) (records []core.Record, fallback bool) {
	ys, ms := NewSelection(years), NewSelection(months)
	all := table.Records()
	matched := make([]core.Record, 0, len(all))
	for _, r := range all {
		if ys.Has(r.Year) && ms.Has(r.Month) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return all, true
	}
	return matched, false
}

// Compute builds the chart for a selection. It has no side effects.
func Compute(years, months []int, table core.Table) Spec {
	records, fallback := Filter(table, years, months)
	points := make([]Point, len(records))
	for i, r := range records {
		points[i] = Point{X: r.DateLabel(), Y: r.RatePercent, Rate: r.Rate}
	}
	return Spec{
		Title:     Title,
		Type:      "line",
		Markers:   true,
		HoverMode: HoverMode,
		XAxis:     Axis{Title: XAxisTitle},
		YAxis: Axis{
			Title:    YAxisTitle,
			TickVals: append([]float64(nil), tickVals...),
			TickText: append([]string(nil), tickText...),
		},
		Points:   points,
		Fallback: fallback,
	}
}
