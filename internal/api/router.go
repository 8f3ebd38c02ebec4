// Package api exposes the finance service over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/finboard/internal/aggregator"
	"github.com/cleared-dev/finboard/internal/finance"
)

// Options carries the optional collaborators of the router.
type Options struct {
	// Workspace, when set, receives an import-log entry per upload.
	Workspace string
	// Aggregator enables the /plaid routes.
	Aggregator aggregator.Client
}

// NewRouter builds the HTTP handler tree.
func NewRouter(svc *finance.Service, log zerolog.Logger, opts Options) http.Handler {
	h := &handler{svc: svc, workspace: opts.Workspace, aggregator: opts.Aggregator}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.listTransactions)
		r.Post("/import", h.importCSV)
		r.Get("/export", h.exportCSV)
		r.Post("/recategorize", h.recategorize)
		r.Patch("/{id}", h.setCategory)
	})

	r.Get("/categories", h.listCategories)
	r.Get("/categories/suggest", h.suggest)
	r.Get("/recurring", h.listRecurring)

	r.Route("/insights", func(r chi.Router) {
		r.Get("/", h.listInsights)
		r.Post("/refresh", h.refreshInsights)
	})

	if opts.Aggregator != nil {
		r.Post("/plaid/link-token", h.createLinkToken)
		r.Post("/plaid/exchange", h.exchangePublicToken)
	}

	return r
}
