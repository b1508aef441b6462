package core

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Table is the transformed dataset. It is built once and never mutated,
// so a single value can be shared by every request.
type Table struct {
	records []Record
	years   []int
	months  []int
}

// Transform derives every raw row and returns the chronologically sorted table.
// The first row that fails to coerce aborts the whole transformation.
func Transform(raw []RawRecord) (Table, error) {
	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		rec, err := Derive(r)
		if err != nil {
			return Table{}, err
		}
		records = append(records, rec)
	}
	return NewTable(records), nil
}

// NewTable stable-sorts records by date and indexes the distinct years and
// months. The input slice is copied.
func NewTable(records []Record) Table {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})
	return Table{
		records: sorted,
		years:   distinct(sorted, func(r Record) int { return r.Year }),
		months:  distinct(sorted, func(r Record) int { return r.Month }),
	}
}

// distinct keeps values in order of first appearance.
func distinct(records []Record, key func(Record) int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Records returns a copy of the rows in date order.
func (t Table) Records() []Record {
	return slices.Clone(t.records)
}

func (t Table) Len() int {
	return len(t.records)
}

// Years returns the distinct years in order of first appearance.
func (t Table) Years() []int {
	return slices.Clone(t.years)
}

// Months returns the distinct months (1-12) in order of first appearance.
func (t Table) Months() []int {
	return slices.Clone(t.months)
}

var columns = []string{"date", "rate", "year", "month", "day", "rate_percent"}

// String renders every row as a right-aligned text table, index first.
func (t Table) String() string {
	if len(t.records) == 0 {
		return "Empty table\nColumns: [" + strings.Join(columns, ", ") + "]\nIndex: []"
	}

	withClock := slices.ContainsFunc(t.records, func(r Record) bool { return hasClock(r.Date) })
	rates := make([]float64, len(t.records))
	percents := make([]float64, len(t.records))
	for i, r := range t.records {
		rates[i] = r.Rate
		percents[i] = r.RatePercent
	}
	rateDecimals := decimalsFor(rates, 0)
	percentDecimals := decimalsFor(percents, 1)

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "\t"+strings.Join(columns, "\t")+"\t\n")
	for _, r := range t.records {
		date := r.Date.Format("2006-01-02")
		if withClock {
			date = r.Date.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t\n",
			r.Index,
			date,
			strconv.FormatFloat(r.Rate, 'f', rateDecimals, 64),
			r.Year, r.Month, r.Day,
			strconv.FormatFloat(r.RatePercent, 'f', percentDecimals, 64),
		)
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// decimalsFor picks one precision for a whole column: the fewest decimals
// (at least least, at most 6) that represent every value exactly.
func decimalsFor(values []float64, least int) int {
	const most = 6
	d := least
	for _, v := range values {
		for d < most {
			scaled := v * math.Pow10(d)
			if math.Abs(scaled-math.Round(scaled)) < 1e-9 {
				break
			}
			d++
		}
	}
	return d
}
