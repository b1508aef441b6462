package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satisfaction/internal/core"
)

func exampleTable(t *testing.T) core.Table {
	t.Helper()
	table, err := core.Transform([]core.RawRecord{
		{Index: 0, Date: "2024-01-10", Rate: "2"},
		{Index: 1, Date: "2024-02-05", Rate: "4"},
	})
	require.NoError(t, err)
	return table
}

func mixedTable(t *testing.T) core.Table {
	t.Helper()
	table, err := core.Transform([]core.RawRecord{
		{Index: 0, Date: "2023-11-02", Rate: "1"},
		{Index: 1, Date: "2024-01-15", Rate: "3"},
		{Index: 2, Date: "2023-12-24", Rate: "4"},
		{Index: 3, Date: "2024-01-03", Rate: "2"},
		{Index: 4, Date: "2024-03-30", Rate: "3"},
	})
	require.NoError(t, err)
	return table
}

func xs(spec Spec) []string {
	out := make([]string, len(spec.Points))
	for i, p := range spec.Points {
		out[i] = p.X
	}
	return out
}

func TestCompute_ExampleYearAndMonth(t *testing.T) {
	spec := Compute([]int{2024}, []int{1}, exampleTable(t))

	require.Len(t, spec.Points, 1)
	assert.Equal(t, Point{X: "2024-01-10", Y: 50, Rate: 2}, spec.Points[0])
	assert.False(t, spec.Fallback)
}

func TestCompute_NoMatchFallsBackToFullTable(t *testing.T) {
	table := exampleTable(t)
	spec := Compute([]int{2024}, []int{6}, table)

	assert.True(t, spec.Fallback)
	assert.Equal(t, []string{"2024-01-10", "2024-02-05"}, xs(spec))
	assert.Equal(t, 100.0, spec.Points[1].Y)
}

func TestCompute_AllValuesSelectedIsFullTable(t *testing.T) {
	table := mixedTable(t)
	spec := Compute(table.Years(), table.Months(), table)

	assert.False(t, spec.Fallback)
	assert.Len(t, spec.Points, table.Len())
	assert.Equal(t, []string{"2023-11-02", "2023-12-24", "2024-01-03", "2024-01-15", "2024-03-30"}, xs(spec))
}

func TestCompute_EmptySelectionFallsBack(t *testing.T) {
	table := mixedTable(t)

	spec := Compute(nil, table.Months(), table)
	assert.True(t, spec.Fallback)
	assert.Len(t, spec.Points, table.Len())

	spec = Compute(table.Years(), []int{}, table)
	assert.True(t, spec.Fallback)
	assert.Len(t, spec.Points, table.Len())
}

func TestCompute_CrossProductOfSelections(t *testing.T) {
	spec := Compute([]int{2023, 2024}, []int{1, 12}, mixedTable(t))

	assert.False(t, spec.Fallback)
	assert.Equal(t, []string{"2023-12-24", "2024-01-03", "2024-01-15"}, xs(spec))
}

func TestCompute_DuplicateSelectionsCollapse(t *testing.T) {
	table := mixedTable(t)
	a := Compute([]int{2024, 2024}, []int{1, 1, 1}, table)
	b := Compute([]int{2024}, []int{1}, table)
	assert.Equal(t, b, a)
}

func TestCompute_Layout(t *testing.T) {
	spec := Compute(nil, nil, exampleTable(t))

	assert.Equal(t, "Customer Satisfaction Over Time", spec.Title)
	assert.Equal(t, "line", spec.Type)
	assert.True(t, spec.Markers)
	assert.Equal(t, "x unified", spec.HoverMode)
	assert.Equal(t, "Date", spec.XAxis.Title)
	assert.Equal(t, "Satisfaction (%)", spec.YAxis.Title)
	assert.Equal(t, []float64{25, 50, 75, 100}, spec.YAxis.TickVals)
	assert.Equal(t, []string{"25% (1)", "50% (2)", "75% (3)", "100% (4)"}, spec.YAxis.TickText)
}

func TestCompute_DoesNotShareTickSlices(t *testing.T) {
	table := exampleTable(t)
	spec := Compute(nil, nil, table)
	spec.YAxis.TickVals[0] = -1
	spec.YAxis.TickText[0] = "changed"

	again := Compute(nil, nil, table)
	assert.Equal(t, 25.0, again.YAxis.TickVals[0])
	assert.Equal(t, "25% (1)", again.YAxis.TickText[0])
}

func TestFilter_LeavesTableUntouched(t *testing.T) {
	table := mixedTable(t)
	before := table.Records()

	records, _ := Filter(table, []int{2024}, []int{3})
	require.Len(t, records, 1)
	records[0].Rate = 99

	assert.Equal(t, before, table.Records())
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []int
	}{
		{"nil", nil, []int{}},
		{"repeated params", []string{"2023", "2024"}, []int{2023, 2024}},
		{"comma separated", []string{"1,2, 3"}, []int{1, 2, 3}},
		{"drops junk and duplicates", []string{"x", "4", "", "4,5", "five"}, []int{4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSelection(tt.in))
		})
	}
}

func TestSelection_Has(t *testing.T) {
	s := NewSelection([]int{1, 3})
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(2))
	assert.Len(t, s, 2)
}
