// Package api exposes the store operations to the web presentation layer.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spendfree/spendfree/internal/model/budgets"
	"github.com/spendfree/spendfree/internal/model/ledger"
	"github.com/spendfree/spendfree/internal/model/statements"
	"github.com/spendfree/spendfree/internal/model/taxonomy"
)

type statementQueue interface {
	ProduceMessage(message []byte) error
}

type Server struct {
	taxonomy   *taxonomy.Service
	ledger     *ledger.Service
	budgets    *budgets.Service
	statements *statements.Service
	queue      statementQueue
}

func NewServer(taxonomySvc *taxonomy.Service, ledgerSvc *ledger.Service, budgetsSvc *budgets.Service, statementsSvc *statements.Service, queue statementQueue) *Server {
	return &Server{
		taxonomy:   taxonomySvc,
		ledger:     ledgerSvc,
		budgets:    budgetsSvc,
		statements: statementsSvc,
		queue:      queue,
	}
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(observe)
		r.Use(identity)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleReplaceSettings)
		r.Get("/settings/usage", s.handleCheckUsage)
		r.Delete("/settings/banks/{name}", s.handleRemoveBank)
		r.Delete("/settings/cards/{name}", s.handleRemoveCard)
		r.Delete("/settings/categories/{name}", s.handleRemoveCategory)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleCreateExpense)
		r.Post("/expenses/batch", s.handleCreateExpenseBatch)
		r.Post("/expenses/batch-delete", s.handleDeleteExpenseBatch)
		r.Patch("/expenses/{id}", s.handleUpdateExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)

		r.Get("/budget", s.handleGetBudget)
		r.Put("/budget", s.handleSetBudget)

		r.Get("/summary", s.handleSummary)
		r.Post("/statements", s.handleRequestStatement)
		r.Get("/statements", s.handleGetStatement)

		r.Post("/admin/purge-legacy-budgets", s.handlePurgeLegacyBudgets)
	})

	return r
}
