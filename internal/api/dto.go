package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finboard/internal/model"
)

// Money travels as a decimal string so clients never see float rounding.

type accountJSON struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Institution   string  `json:"institution"`
	Balance       string  `json:"balance"`
	AccountNumber string  `json:"account_number"`
	LastUpdated   string  `json:"last_updated"`
	ExternalRef   *string `json:"external_ref,omitempty"`
	Connected     bool    `json:"connected"`
}

func toAccountJSON(a model.Account) accountJSON {
	return accountJSON{
		ID:            a.ID,
		Name:          a.Name,
		Type:          string(a.Type),
		Institution:   a.Institution,
		Balance:       a.Balance.StringFixed(2),
		AccountNumber: a.AccountNumber,
		LastUpdated:   a.LastUpdated.UTC().Format(time.RFC3339),
		ExternalRef:   a.ExternalRef,
		Connected:     a.IsConnected(),
	}
}

type createAccountRequest struct {
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Institution   string          `json:"institution"`
	Balance       decimal.Decimal `json:"balance"`
	AccountNumber string          `json:"account_number"`
}

type transactionJSON struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Merchant    string `json:"merchant"`
}

func toTransactionJSON(tx model.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		Date:        tx.Date.Format(time.DateOnly),
		Description: tx.Description,
		Amount:      tx.Amount.StringFixed(2),
		Category:    tx.Category,
		Merchant:    tx.Merchant,
	}
}

func toTransactionsJSON(txs []model.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionJSON(tx)
	}
	return out
}

type importResponse struct {
	Format       string            `json:"format"`
	Imported     int               `json:"imported"`
	Errors       []string          `json:"errors"`
	Transactions []transactionJSON `json:"transactions"`
}

type recurringJSON struct {
	Merchant      string `json:"merchant"`
	Category      string `json:"category"`
	AverageAmount string `json:"average_amount"`
	Frequency     string `json:"frequency"`
}

type insightJSON struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	SavingsAmount *string `json:"savings_amount"`
	Type          string  `json:"type"`
	ActionLink    string  `json:"action_link"`
	CreatedAt     string  `json:"created_at"`
}

func toInsightsJSON(ins []model.Insight) []insightJSON {
	out := make([]insightJSON, len(ins))
	for i, in := range ins {
		var savings *string
		if in.SavingsAmount.Valid {
			s := in.SavingsAmount.Decimal.StringFixed(2)
			savings = &s
		}
		out[i] = insightJSON{
			ID:            in.ID,
			Title:         in.Title,
			Description:   in.Description,
			SavingsAmount: savings,
			Type:          string(in.Type),
			ActionLink:    in.ActionLink,
			CreatedAt:     in.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}
