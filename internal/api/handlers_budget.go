package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
)

type setBudgetRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Month  int             `json:"month"`
	Year   int             `json:"year"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}

	res, err := s.budgets.Get(r.Context(), userID(r.Context()), month, year)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.budgets.Set(r.Context(), userID(r.Context()), req.Amount, req.Month, req.Year)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePurgeLegacyBudgets(w http.ResponseWriter, r *http.Request) {
	n, err := s.budgets.PurgeLegacy(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"purged": n})
}

// periodParams parses the month and year query parameters shared by the
// budget, summary and statement reads.
func periodParams(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	if errM != nil || errY != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month (1..12) and year must be set")
		return 0, 0, false
	}
	return month, year, true
}
