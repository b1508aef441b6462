package google

import (
	"fmt"
	"strings"

	"satisfaction/internal/core"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// raw records. The first row must name the "date" and "rate" columns; rows
// with both cells blank are skipped, so trailing empty rows do not count.
func parseValues(values [][]interface{}) ([]core.RawRecord, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	colDate := indexOf(headers, "date")
	colRate := indexOf(headers, "rate")
	if colDate == -1 || colRate == -1 {
		missing := make([]string, 0, 2)
		if colDate == -1 {
			missing = append(missing, "date")
		}
		if colRate == -1 {
			missing = append(missing, "rate")
		}
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	var out []core.RawRecord
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		date := strings.TrimSpace(safeGet(row, colDate))
		rate := strings.TrimSpace(safeGet(row, colRate))
		if date == "" && rate == "" {
			continue
		}
		out = append(out, core.RawRecord{Index: len(out), Date: date, Rate: rate})
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
