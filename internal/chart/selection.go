package chart

import (
	"strconv"
	"strings"
)

// Selection is a set of selected dropdown values (years or months).
type Selection map[int]struct{}

// NewSelection builds a set from the selected values. Duplicates collapse.
func NewSelection(values []int) Selection {
	s := make(Selection, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is selected.
func (s Selection) Has(v int) bool {
	_, ok := s[v]
	return ok
}

// ParseSelection reads query values such as ["2023", "2024,2025"].
// Non-numeric entries are dropped and the first occurrence order is kept.
func ParseSelection(raw []string) []int {
	out := make([]int, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
