package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/logger"
	"github.com/spendfree/spendfree/internal/model/customerr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeFailure maps domain failures onto status codes: taxonomy conflicts
// are 409, rejected input is 400, anything else is a storage failure.
func writeFailure(w http.ResponseWriter, err error) {
	var conflict *customerr.ConflictError
	if errors.As(err, &conflict) {
		writeError(w, http.StatusConflict, conflict.Error())
		return
	}

	var invalid *customerr.ValidationError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, invalid.Error())
		return
	}

	logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
