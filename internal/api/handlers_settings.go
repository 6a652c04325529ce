package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/spendfree/spendfree/internal/entity/expense"
	"github.com/spendfree/spendfree/internal/entity/settings"
)

type replaceSettingsRequest struct {
	Banks       []string              `json:"banks"`
	CreditCards []settings.CreditCard `json:"creditCards"`
	Categories  []string              `json:"categories"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	res, err := s.taxonomy.Get(r.Context(), userID(r.Context()))
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

func (s *Server) handleReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var req replaceSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.taxonomy.Replace(r.Context(), userID(r.Context()), req.Banks, req.CreditCards, req.Categories)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckUsage(w http.ResponseWriter, r *http.Request) {
	kind := expense.UsageKind(r.URL.Query().Get("kind"))
	ident := r.URL.Query().Get("id")
	if !expense.ValidUsageKind(kind) || ident == "" {
		writeError(w, http.StatusBadRequest, "kind must be source or category, id must be set")
		return
	}

	used, err := s.taxonomy.CheckUsage(r.Context(), userID(r.Context()), kind, ident)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inUse": used})
}

func (s *Server) handleRemoveBank(w http.ResponseWriter, r *http.Request) {
	s.removeTaxonomyItem(w, r, s.taxonomy.RemoveBank)
}

func (s *Server) handleRemoveCard(w http.ResponseWriter, r *http.Request) {
	s.removeTaxonomyItem(w, r, s.taxonomy.RemoveCard)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	s.removeTaxonomyItem(w, r, s.taxonomy.RemoveCategory)
}

func (s *Server) removeTaxonomyItem(w http.ResponseWriter, r *http.Request, remove func(ctx context.Context, userID, name string) error) {
	name := pathName(r)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name must be set")
		return
	}

	if err := remove(r.Context(), userID(r.Context()), name); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathName decodes the {name} segment; taxonomy names may contain spaces.
func pathName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
