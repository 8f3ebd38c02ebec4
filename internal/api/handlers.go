package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/finboard/internal/aggregator"
	"github.com/cleared-dev/finboard/internal/finance"
	"github.com/cleared-dev/finboard/internal/importlog"
	"github.com/cleared-dev/finboard/internal/logger"
	"github.com/cleared-dev/finboard/internal/model"
	"github.com/cleared-dev/finboard/internal/recurring"
)

// maxUpload caps CSV request bodies.
const maxUpload = 10 << 20

type handler struct {
	svc        *finance.Service
	workspace  string
	aggregator aggregator.Client
}

func (h *handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.svc.Accounts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]accountJSON, len(accts))
	for i, a := range accts {
		out[i] = toAccountJSON(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := h.svc.CreateAccount(r.Context(), model.Account{
		Name:          req.Name,
		Type:          model.AccountType(req.Type),
		Institution:   req.Institution,
		Balance:       req.Balance,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountJSON(a))
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Transactions(r.Context(), r.URL.Query().Get("account_id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionsJSON(txs))
}

// importCSV takes the raw CSV document as the request body.
func (h *handler) importCSV(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
	if maxErr := new(http.MaxBytesError); errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	res, err := h.svc.ImportCSV(r.Context(), accountID, string(body))
	if err != nil {
		fail(w, r, err)
		return
	}

	if h.workspace != "" {
		entry := importlog.Entry{
			Timestamp: time.Now(),
			Source:    "api",
			AccountID: accountID,
			Format:    res.Format,
			Imported:  len(res.Imported),
			Errors:    len(res.Errors),
		}
		if err := importlog.Append(h.workspace, []importlog.Entry{entry}); err != nil {
			log := logger.FromContext(r.Context())
			log.Warn().Err(err).Msg("writing import log")
		}
	}

	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, importResponse{
		Format:       res.Format,
		Imported:     len(res.Imported),
		Errors:       errs,
		Transactions: toTransactionsJSON(res.Imported),
	})
}

func (h *handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ExportCSV(r.Context(), r.URL.Query().Get("account_id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	io.WriteString(w, out)
}

func (h *handler) setCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SetCategory(r.Context(), chi.URLParam(r, "id"), req.Category); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) recategorize(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Recategorize(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	type categoryJSON struct {
		Name     string   `json:"name"`
		Color    string   `json:"color"`
		Keywords []string `json:"keywords"`
	}
	out := make([]categoryJSON, len(cats))
	for i, c := range cats {
		out[i] = categoryJSON{Name: c.Name, Color: c.Color, Keywords: c.Keywords}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"category": h.svc.Suggest(q)})
}

func (h *handler) listRecurring(w http.ResponseWriter, r *http.Request) {
	months := recurring.DefaultTimeframeMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid months %q", raw))
			return
		}
		months = n
	}

	charges, err := h.svc.Recurring(r.Context(), months)
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]recurringJSON, len(charges))
	for i, c := range charges {
		out[i] = recurringJSON{
			Merchant:      c.Merchant,
			Category:      c.Category,
			AverageAmount: c.AverageAmount.StringFixed(2),
			Frequency:     string(c.Frequency),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) listInsights(w http.ResponseWriter, r *http.Request) {
	ins, err := h.svc.Insights(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInsightsJSON(ins))
}

func (h *handler) refreshInsights(w http.ResponseWriter, r *http.Request) {
	ins, err := h.svc.RefreshInsights(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInsightsJSON(ins))
}

func (h *handler) createLinkToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	token, err := h.aggregator.CreateLinkToken(r.Context(), req.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"link_token": token})
}

func (h *handler) exchangePublicToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PublicToken string `json:"public_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicToken == "" {
		writeError(w, http.StatusBadRequest, "public_token is required")
		return
	}
	ex, err := h.aggregator.ExchangePublicToken(r.Context(), req.PublicToken)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"item_id":      ex.ItemID,
		"access_token": ex.AccessToken,
	})
}
