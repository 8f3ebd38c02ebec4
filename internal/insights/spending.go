package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finboard/internal/categorize"
	"github.com/cleared-dev/finboard/internal/model"
)

const maxSpendingAlerts = 3

var (
	minBaselineSpend   = decimal.NewFromInt(50)
	minIncreasePercent = decimal.NewFromInt(20)
	minIncreaseAmount  = decimal.NewFromInt(50)
	alertSavingsRate   = decimal.RequireFromString("0.7")
	hundred            = decimal.NewFromInt(100)
)

// month identifies a calendar month as year*12 + (month-1).
type month int

func monthOf(t time.Time) month {
	return month(t.Year()*12 + int(t.Month()) - 1)
}

func (m month) String() string {
	return time.Month(int(m)%12 + 1).String()
}

type alert struct {
	insight model.Insight
	saving  decimal.Decimal
}

// spendingAlerts compares per-category spend of the two latest months that
// have expenses and flags meaningful increases.
func spendingAlerts(txs []model.Transaction) []model.Insight {
	spend := make(map[month]map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		m := monthOf(tx.Date)
		if spend[m] == nil {
			spend[m] = make(map[string]decimal.Decimal)
		}
		cat := tx.Category
		if cat == "" {
			cat = categorize.Other
		}
		spend[m][cat] = spend[m][cat].Add(tx.Amount.Abs())
	}
	if len(spend) < 2 {
		return nil
	}

	months := make([]month, 0, len(spend))
	for m := range spend {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	latest, previous := months[len(months)-1], months[len(months)-2]

	categories := make([]string, 0, len(spend[latest]))
	for cat := range spend[latest] {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var alerts []alert
	for _, cat := range categories {
		if cat == categorize.Income || cat == categorize.Other {
			continue
		}
		cur := spend[latest][cat]
		prev := spend[previous][cat]
		if !prev.GreaterThan(minBaselineSpend) {
			continue
		}
		increase := cur.Sub(prev)
		pct := increase.Div(prev).Mul(hundred)
		if pct.LessThan(minIncreasePercent) || increase.LessThan(minIncreaseAmount) {
			continue
		}

		saving := increase.Mul(alertSavingsRate).Round(0)
		alerts = append(alerts, alert{
			saving: saving,
			insight: model.Insight{
				Title: fmt.Sprintf("%s spending up %s%%", cat, pct.Round(0).String()),
				Description: fmt.Sprintf(
					"You spent $%s on %s in %s, $%s more than in %s. Bringing it back to your usual level could save about $%s per month.",
					dollars(cur.Round(2)), cat, latest, dollars(increase.Round(2)), previous, dollars(saving)),
				SavingsAmount: savings(saving),
				Type:          model.InsightSpendingAlert,
				ActionLink:    LinkBudget,
			},
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].saving.GreaterThan(alerts[j].saving)
	})
	if len(alerts) > maxSpendingAlerts {
		alerts = alerts[:maxSpendingAlerts]
	}

	out := make([]model.Insight, len(alerts))
	for i, a := range alerts {
		out[i] = a.insight
	}
	return out
}
