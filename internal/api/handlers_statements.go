package api

import (
	"encoding/json"
	"net/http"

	"github.com/spendfree/spendfree/internal/model/statements"
)

type requestStatementRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}

	res, err := s.statements.Summary(r.Context(), userID(r.Context()), month, year)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRequestStatement(w http.ResponseWriter, r *http.Request) {
	var req requestStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1..12")
		return
	}

	payload, err := statements.NewRequest(userID(r.Context()), req.Month, req.Year).ToJSON()
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err = s.queue.ProduceMessage(payload); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}

	res, err := s.statements.Statement(r.Context(), userID(r.Context()), month, year)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "statement not generated yet")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
