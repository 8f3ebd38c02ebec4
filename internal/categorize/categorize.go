// Package categorize assigns taxonomy categories to transactions using an
// ordered keyword rule table.
package categorize

import (
	"strings"

	"github.com/cleared-dev/finboard/internal/model"
)

// Categorize returns the category for a transaction. Any inflow is Income,
// regardless of its text.
func Categorize(tx model.Transaction) string {
	if tx.Amount.IsPositive() {
		return Income
	}
	return match(strings.ToLower(tx.Description) + " " + strings.ToLower(tx.Merchant))
}

// CategorizeBatch returns a copy of txs where rows with no category, or with
// Other, are re-categorized. Existing categories are left alone.
func CategorizeBatch(txs []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		if tx.Category == "" || tx.Category == Other {
			tx.Category = Categorize(tx)
		}
		out[i] = tx
	}
	return out
}

// Suggest returns a category for free text. The amount is unknown here, so
// there is no income short-circuit.
func Suggest(description string) string {
	return match(strings.ToLower(description))
}

func match(text string) string {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Category
			}
		}
	}
	return Other
}
