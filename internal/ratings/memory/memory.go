package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"satisfaction/internal/core"
	"satisfaction/internal/ratings"
)

var _ ratings.Source = (*Store)(nil)

// SeedFile is the file NewFromDir looks for: one "date,rate" pair per line.
const SeedFile = "seed_ratings.txt"

type Store struct {
	mu    sync.Mutex
	items []core.RawRecord
}

func New(items ...core.RawRecord) *Store {
	s := &Store{}
	for _, it := range items {
		s.Append(it.Date, it.Rate)
	}
	return s
}

// NewFromDir seeds the store from base/seed_ratings.txt, falling back to a
// small built-in sample when the file is missing or empty.
func NewFromDir(base string) *Store {
	lines := readLines(filepath.Join(base, SeedFile))
	if len(lines) == 0 {
		lines = []string{
			"2024-01-10,2",
			"2024-01-24,3",
			"2024-02-05,4",
			"2024-02-19,3",
			"2024-03-04,1",
			"2024-03-18,3",
		}
	}
	s := &Store{}
	for _, line := range lines {
		date, rate, _ := strings.Cut(line, ",")
		s.Append(strings.TrimSpace(date), strings.TrimSpace(rate))
	}
	return s
}

// Append stores one row at the end of the source order.
func (s *Store) Append(date, rate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, core.RawRecord{Index: len(s.items), Date: date, Rate: rate})
}

// Load returns a copy of the stored rows.
func (s *Store) Load(_ context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RawRecord(nil), s.items...), nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
