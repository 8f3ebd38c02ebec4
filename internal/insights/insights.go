// Package insights scans transaction and account history for savings
// opportunities and renders them as recommendations.
package insights

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finboard/internal/model"
)

// Action links, one per insight type.
const (
	LinkSubscriptions = "/subscriptions"
	LinkSavings       = "/accounts?type=savings"
	LinkBudget        = "/budget"
)

// Generator produces insights. Now stamps CreatedAt; nil means time.Now.
type Generator struct {
	Now func() time.Time
}

// Generate runs the default generator.
func Generate(txs []model.Transaction, accounts []model.Account) []model.Insight {
	return Generator{}.Generate(txs, accounts)
}

// Generate returns subscription, high-yield and spending-alert insights in
// that order. Either input being empty yields no insights. Inputs are not
// modified.
func (g Generator) Generate(txs []model.Transaction, accounts []model.Account) []model.Insight {
	if len(txs) == 0 || len(accounts) == 0 {
		return nil
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	createdAt := now()

	var out []model.Insight
	if in, ok := subscriptionOverlap(txs); ok {
		out = append(out, in)
	}
	if in, ok := highYieldSavings(accounts); ok {
		out = append(out, in)
	}
	out = append(out, spendingAlerts(txs)...)

	for i := range out {
		out[i].CreatedAt = createdAt
	}
	return out
}

func savings(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// dollars formats an amount for display: "1,234" or "1,234.50".
func dollars(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return humanize.Comma(d.IntPart())
	}
	return humanize.FormatFloat("#,###.##", d.InexactFloat64())
}
