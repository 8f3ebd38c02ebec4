package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finboard/internal/model"
)

var (
	highYieldAPY      = decimal.RequireFromString("0.035")
	standardAPY       = decimal.RequireFromString("0.01")
	minSavingsBalance = decimal.NewFromInt(1000)
	minYearlyGain     = decimal.NewFromInt(20)
)

func highYieldSavings(accounts []model.Account) (model.Insight, bool) {
	total := decimal.Zero
	qualifying := 0
	for _, a := range accounts {
		if a.Type != model.AccountTypeSavings || !a.Balance.GreaterThan(minSavingsBalance) {
			continue
		}
		total = total.Add(a.Balance)
		qualifying++
	}
	if qualifying == 0 {
		return model.Insight{}, false
	}

	gain := total.Mul(highYieldAPY.Sub(standardAPY)).Round(0)
	if !gain.GreaterThan(minYearlyGain) {
		return model.Insight{}, false
	}

	return model.Insight{
		Title: "Move savings to a high-yield account",
		Description: fmt.Sprintf(
			"You have $%s in savings earning around %s%% APY. A high-yield account at %s%% APY could earn about $%s more per year.",
			dollars(total.Round(2)), standardAPY.Shift(2).String(), highYieldAPY.Shift(2).String(), dollars(gain)),
		SavingsAmount: savings(gain),
		Type:          model.InsightHighYield,
		ActionLink:    LinkSavings,
	}, true
}
