// Package recurring finds merchants that charge on a regular schedule.
package recurring

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finboard/internal/model"
)

// DefaultTimeframeMonths is the lookback used when callers have no preference.
const DefaultTimeframeMonths = 3

// minAmount is the noise floor; smaller charges are ignored.
var minAmount = decimal.NewFromInt(5)

// window is an inclusive range of mean day gaps.
type window struct {
	min, max  float64
	frequency model.Frequency
}

var windows = []window{
	{25, 35, model.FrequencyMonthly},
	{6, 8, model.FrequencyWeekly},
	{13, 16, model.FrequencyBiWeekly},
	{85, 95, model.FrequencyQuarterly},
}

type occurrence struct {
	date   time.Time
	amount decimal.Decimal
}

type group struct {
	name     string
	category string
	seen     []occurrence
}

// Detect returns recurring charges found in txs, largest average first.
// With timeframeMonths > 0 only expenses dated within that many months of the
// newest expense are considered. Merchants whose mean gap falls outside every
// known frequency window are dropped.
func Detect(txs []model.Transaction, timeframeMonths int) []model.RecurringCharge {
	expenses := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.IsExpense() || tx.Amount.Abs().LessThan(minAmount) {
			continue
		}
		expenses = append(expenses, tx)
	}
	expenses = withinTimeframe(expenses, timeframeMonths)

	groups := make(map[string]*group)
	var order []string
	for _, tx := range expenses {
		name := tx.Merchant
		if strings.TrimSpace(name) == "" {
			name = tx.Description
		}
		key := strings.ToLower(strings.TrimSpace(name))
		g, ok := groups[key]
		if !ok {
			g = &group{name: key, category: tx.Category}
			groups[key] = g
			order = append(order, key)
		}
		g.seen = append(g.seen, occurrence{date: tx.Date, amount: tx.Amount.Abs()})
	}

	var out []model.RecurringCharge
	for _, key := range order {
		g := groups[key]
		if len(g.seen) < 2 {
			continue
		}
		freq, ok := classify(meanGapDays(g.seen))
		if !ok {
			continue
		}
		out = append(out, model.RecurringCharge{
			Merchant:      capitalize(g.name),
			Category:      g.category,
			AverageAmount: averageAmount(g.seen),
			Frequency:     freq,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageAmount.GreaterThan(out[j].AverageAmount)
	})
	return out
}

func withinTimeframe(txs []model.Transaction, months int) []model.Transaction {
	if months <= 0 || len(txs) == 0 {
		return txs
	}
	newest := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.After(newest) {
			newest = tx.Date
		}
	}
	cutoff := newest.AddDate(0, -months, 0)

	kept := txs[:0]
	for _, tx := range txs {
		if !tx.Date.Before(cutoff) {
			kept = append(kept, tx)
		}
	}
	return kept
}

func meanGapDays(seen []occurrence) float64 {
	dates := make([]time.Time, len(seen))
	for i, o := range seen {
		dates[i] = o.date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var total float64
	for i := 1; i < len(dates); i++ {
		total += DaysBetween(dates[i-1], dates[i])
	}
	return total / float64(len(dates)-1)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) float64 {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return db.Sub(da).Hours() / 24
}

func classify(gap float64) (model.Frequency, bool) {
	for _, w := range windows {
		if gap >= w.min && gap <= w.max {
			return w.frequency, true
		}
	}
	return "", false
}

func averageAmount(seen []occurrence) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range seen {
		sum = sum.Add(o.amount)
	}
	return sum.Div(decimal.NewFromInt(int64(len(seen)))).Round(2)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
