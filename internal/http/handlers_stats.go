package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	verr := &core.ValidationError{}
	year, _ := queryInt(r, "year", verr)
	month, _ := queryInt(r, "month", verr)
	if err := verr.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.reports.Categories(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []core.CategoryStat{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	year, month, err := requiredYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.reports.Daily(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMonthlyStats defaults the year to the current one.
func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	verr := &core.ValidationError{}
	year, ok := queryInt(r, "year", verr)
	if err := verr.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		year = s.now().Year()
	}
	out, err := s.reports.Monthly(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleYearlyStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.reports.Yearly(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []core.YearStat{}
	}
	writeJSON(w, http.StatusOK, out)
}
