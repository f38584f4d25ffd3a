package http

import (
	"net/http"

	"tally/internal/core"
)

// handleGetIncome answers with the stored record or JSON null.
func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	year, month, err := requiredYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mi, err := s.incomes.Get(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mi)
}

func (s *Server) handleUpsertIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.incomes.Upsert(r.Context(), *req.Year, *req.Month, core.Money{Cents: *req.AmountCents})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
