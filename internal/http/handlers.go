package http

import (
	"encoding/json"
	"net/http"

	"satisfaction/internal/chart"
	"satisfaction/internal/log"
)

type option struct {
	Value    int
	Selected bool
}

type indexData struct {
	Years   []option
	Months  []option
	Chart   chart.Spec
	RawData string
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// The table is loaded before the listener starts, so once we answer at all
// we are ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	years, months := s.table.Years(), s.table.Months()
	data := indexData{
		Years:   allSelected(years),
		Months:  allSelected(months),
		Chart:   chart.Compute(years, months, s.table),
		RawData: s.table.String(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).Error("Index template execution failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice()...)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handleChart recomputes the chart for ?year=..&month=.. (repeated or
// comma separated). A dropdown with nothing selected matches nothing.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	years := chart.ParseSelection(q["year"])
	months := chart.ParseSelection(q["month"])

	spec := chart.Compute(years, months, s.table)

	log.FromContext(r.Context()).WithComponent(log.ComponentChart).Debug("Chart recomputed",
		log.NewFields().WithOperation(log.OpFilter).
			WithSelection(years, months, len(spec.Points), spec.Fallback).ToSlice()...)

	s.respondJSON(w, r, http.StatusOK, spec)
}

func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.FromContext(r.Context()).Error("Failed to encode response", log.FieldError, err.Error())
	}
}

func allSelected(values []int) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: v, Selected: true}
	}
	return out
}
