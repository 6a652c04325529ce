package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/spendfree/spendfree/internal/entity/expense"
)

type createExpenseRequest struct {
	Date            string          `json:"date"`
	CategoryID      string          `json:"categoryId"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     string          `json:"paymentType"`
	SourceID        string          `json:"sourceId"`
	TransactionType string          `json:"transactionType"`
}

func (req createExpenseRequest) record(userID string) expense.Record {
	return expense.Record{
		UserID:          userID,
		Date:            req.Date,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Amount:          req.Amount,
		PaymentType:     req.PaymentType,
		SourceID:        req.SourceID,
		TransactionType: req.TransactionType,
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	res, err := s.ledger.List(r.Context(), userID(r.Context()), start, end)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.ledger.Create(r.Context(), req.record(userID(r.Context())))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type createExpenseBatchRequest struct {
	Expenses []createExpenseRequest `json:"expenses"`
}

func (s *Server) handleCreateExpenseBatch(w http.ResponseWriter, r *http.Request) {
	var req createExpenseBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Expenses) == 0 {
		writeError(w, http.StatusBadRequest, "expenses must not be empty")
		return
	}

	recs := make([]expense.Record, 0, len(req.Expenses))
	for _, e := range req.Expenses {
		recs = append(recs, e.record(userID(r.Context())))
	}

	ids, err := s.ledger.CreateBatch(r.Context(), recs)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]int64{"ids": ids})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	var patch expense.Patch
	if err = json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err = s.ledger.Update(r.Context(), id, patch); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err = s.ledger.Delete(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type deleteExpenseBatchRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleDeleteExpenseBatch(w http.ResponseWriter, r *http.Request) {
	var req deleteExpenseBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.ledger.DeleteBatch(r.Context(), req.IDs); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
