package http

import (
	"net/http"

	"tally/internal/core"
	"tally/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month, err := requiredYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.expenses.List(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toNewExpense()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.expenses.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	verr := &core.ValidationError{}
	patch := req.toPatch(verr)
	if err := verr.OrNil(); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.expenses.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.expenses.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Expense delete served", log.FieldExpenseID, id)
	w.WriteHeader(http.StatusNoContent)
}
