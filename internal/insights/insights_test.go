package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finboard/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func spend(category, amount string, when time.Time) model.Transaction {
	return model.Transaction{
		Description: category + " purchase",
		Merchant:    category,
		Category:    category,
		Amount:      dec(amount),
		Date:        when,
	}
}

var checking = []model.Account{{ID: "chk", Type: model.AccountTypeChecking, Balance: dec("2500")}}

func byType(ins []model.Insight, typ model.InsightType) []model.Insight {
	var out []model.Insight
	for _, in := range ins {
		if in.Type == typ {
			out = append(out, in)
		}
	}
	return out
}

func TestGenerate_NoData(t *testing.T) {
	assert.Empty(t, Generate(nil, nil))
	assert.Empty(t, Generate([]model.Transaction{spend("Food", "-10", date(2024, 1, 1))}, nil))
	assert.Empty(t, Generate(nil, checking))
}

func TestSpendingAlert_Emitted(t *testing.T) {
	txs := []model.Transaction{
		spend("Dining", "-100", date(2024, 2, 10)),
		spend("Dining", "-90", date(2024, 3, 5)),
		spend("Dining", "-70", date(2024, 3, 20)),
	}
	got := Generate(txs, checking)
	require.Len(t, got, 1)

	alert := got[0]
	assert.Equal(t, model.InsightSpendingAlert, alert.Type)
	assert.Equal(t, LinkBudget, alert.ActionLink)
	assert.True(t, alert.SavingsAmount.Valid)
	assert.True(t, alert.SavingsAmount.Decimal.Equal(dec("42")), "got %s", alert.SavingsAmount.Decimal)
	assert.Equal(t, "Dining spending up 60%", alert.Title)
	assert.Contains(t, alert.Description, "March")
	assert.Contains(t, alert.Description, "February")
}

func TestSpendingAlert_BelowPercentFloor(t *testing.T) {
	txs := []model.Transaction{
		spend("Dining", "-100", date(2024, 2, 10)),
		spend("Dining", "-110", date(2024, 3, 10)),
	}
	assert.Empty(t, Generate(txs, checking))
}

func TestSpendingAlert_BelowAmountFloor(t *testing.T) {
	// 40% but only $40 more.
	txs := []model.Transaction{
		spend("Dining", "-100", date(2024, 2, 10)),
		spend("Dining", "-140", date(2024, 3, 10)),
	}
	assert.Empty(t, Generate(txs, checking))
}

func TestSpendingAlert_SmallBaselineIgnored(t *testing.T) {
	txs := []model.Transaction{
		spend("Shopping", "-50", date(2024, 2, 10)),
		spend("Shopping", "-400", date(2024, 3, 10)),
	}
	assert.Empty(t, Generate(txs, checking))
}

func TestSpendingAlert_ExcludesIncomeAndOther(t *testing.T) {
	txs := []model.Transaction{
		spend("Other", "-100", date(2024, 2, 10)),
		spend("Other", "-400", date(2024, 3, 10)),
		spend("Income", "-100", date(2024, 2, 10)),
		spend("Income", "-400", date(2024, 3, 10)),
	}
	assert.Empty(t, Generate(txs, checking))
}

func TestSpendingAlert_RequiresTwoMonths(t *testing.T) {
	txs := []model.Transaction{
		spend("Dining", "-100", date(2024, 3, 1)),
		spend("Dining", "-400", date(2024, 3, 28)),
	}
	assert.Empty(t, Generate(txs, checking))
}

func TestSpendingAlert_IgnoresIncomeTransactions(t *testing.T) {
	txs := []model.Transaction{
		spend("Dining", "-100", date(2024, 2, 10)),
		spend("Dining", "500", date(2024, 3, 10)),
	}
	assert.Empty(t, Generate(txs, checking))
}

func TestSpendingAlert_ComparesLatestTwoMonthsWithData(t *testing.T) {
	txs := []model.Transaction{
		spend("Travel", "-900", date(2023, 11, 10)),
		spend("Travel", "-100", date(2024, 1, 10)),
		spend("Travel", "-300", date(2024, 3, 10)),
	}
	got := Generate(txs, checking)
	require.Len(t, got, 1)
	assert.True(t, got[0].SavingsAmount.Decimal.Equal(dec("140")))
	assert.Contains(t, got[0].Description, "January")
}

func TestSpendingAlert_TopThreeBySavings(t *testing.T) {
	feb, mar := date(2024, 2, 1), date(2024, 3, 1)
	txs := []model.Transaction{
		spend("Food", "-100", feb), spend("Food", "-200", mar), // saves 70
		spend("Travel", "-100", feb), spend("Travel", "-500", mar), // saves 280
		spend("Shopping", "-100", feb), spend("Shopping", "-160", mar), // saves 42
		spend("Housing", "-100", feb), spend("Housing", "-300", mar), // saves 140
		spend("Healthcare", "-100", feb), spend("Healthcare", "-180", mar), // saves 56
	}
	got := Generate(txs, checking)
	require.Len(t, got, 3)

	var saved []string
	for _, in := range got {
		saved = append(saved, in.SavingsAmount.Decimal.String())
	}
	assert.Equal(t, []string{"280", "140", "70"}, saved)
}

func TestSubscriptionOverlap(t *testing.T) {
	jan := date(2024, 1, 5)
	txs := []model.Transaction{
		{Description: "NETFLIX.COM", Amount: dec("-15.99"), Date: jan, Category: "Entertainment"},
		{Description: "Groceries", Amount: dec("-80.00"), Date: jan, Category: "Food"},
		{Description: "Spotify USA", Amount: dec("-9.99"), Date: jan, Category: "Entertainment"},
		{Description: "Hulu", Amount: dec("-17.99"), Date: jan, Category: "Entertainment"},
		{Description: "Netflix", Amount: dec("-15.99"), Date: jan.AddDate(0, 0, 1), Category: "Entertainment"},
		{Description: "Disney+ annual", Amount: dec("-13.99"), Date: jan, Category: "Entertainment"},
	}
	got := byType(Generate(txs, checking), model.InsightSubscription)
	require.Len(t, got, 1)

	in := got[0]
	assert.Equal(t, LinkSubscriptions, in.ActionLink)
	// 0.4 * (15.99 + 9.99 + 17.99 + 15.99 + 13.99) = 29.58
	assert.True(t, in.SavingsAmount.Decimal.Equal(dec("30")), "got %s", in.SavingsAmount.Decimal)
	assert.Contains(t, in.Description, "Netflix, Spotify and Hulu")
	assert.Contains(t, in.Description, "4 streaming services")
}

func TestSubscriptionOverlap_NeedsThreeServices(t *testing.T) {
	jan := date(2024, 1, 5)
	txs := []model.Transaction{
		{Description: "Netflix", Amount: dec("-15.99"), Date: jan},
		{Description: "Netflix", Amount: dec("-15.99"), Date: jan.AddDate(0, 1, 0)},
		{Description: "Spotify", Amount: dec("-9.99"), Date: jan},
	}
	assert.Empty(t, byType(Generate(txs, checking), model.InsightSubscription))
}

func TestHighYieldSavings(t *testing.T) {
	txs := []model.Transaction{spend("Food", "-10", date(2024, 1, 1))}
	accounts := []model.Account{
		{ID: "s1", Type: model.AccountTypeSavings, Balance: dec("5000")},
		{ID: "s2", Type: model.AccountTypeSavings, Balance: dec("1000")}, // not above the floor
		{ID: "s3", Type: model.AccountTypeSavings, Balance: dec("2000")},
		{ID: "c1", Type: model.AccountTypeChecking, Balance: dec("90000")},
	}
	got := Generate(txs, accounts)
	require.Len(t, got, 1)

	in := got[0]
	assert.Equal(t, model.InsightHighYield, in.Type)
	assert.Equal(t, LinkSavings, in.ActionLink)
	// 7000 * 0.025 = 175
	assert.True(t, in.SavingsAmount.Decimal.Equal(dec("175")))
	assert.Contains(t, in.Description, "$7,000")
	assert.Contains(t, in.Description, "3.5%")
}

func TestHighYieldSavings_NoQualifyingAccounts(t *testing.T) {
	txs := []model.Transaction{spend("Food", "-10", date(2024, 1, 1))}
	accounts := []model.Account{
		{ID: "s1", Type: model.AccountTypeSavings, Balance: dec("900")},
		{ID: "i1", Type: model.AccountTypeInvestment, Balance: dec("50000")},
	}
	assert.Empty(t, Generate(txs, accounts))
}

func TestGenerate_OrderAndTimestamp(t *testing.T) {
	feb, mar := date(2024, 2, 3), date(2024, 3, 3)
	txs := []model.Transaction{
		{Description: "Netflix", Category: "Entertainment", Amount: dec("-15.99"), Date: mar},
		{Description: "Spotify", Category: "Entertainment", Amount: dec("-9.99"), Date: mar},
		{Description: "Hulu", Category: "Entertainment", Amount: dec("-7.99"), Date: mar},
		spend("Food", "-200", feb),
		spend("Food", "-400", mar),
	}
	accounts := []model.Account{{ID: "s", Type: model.AccountTypeSavings, Balance: dec("10000")}}

	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	got := Generator{Now: func() time.Time { return now }}.Generate(txs, accounts)
	require.Len(t, got, 3)

	assert.Equal(t, model.InsightSubscription, got[0].Type)
	assert.Equal(t, model.InsightHighYield, got[1].Type)
	assert.Equal(t, model.InsightSpendingAlert, got[2].Type)
	for _, in := range got {
		assert.True(t, in.CreatedAt.Equal(now))
		assert.NotEmpty(t, in.Title)
		assert.NotEmpty(t, in.Description)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	feb, mar := date(2024, 2, 1), date(2024, 3, 1)
	txs := []model.Transaction{
		spend("Food", "-100", feb), spend("Food", "-200", mar),
		spend("Travel", "-100", feb), spend("Travel", "-200", mar),
	}
	g := Generator{Now: func() time.Time { return mar }}
	first := g.Generate(txs, checking)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, g.Generate(txs, checking))
	}
}

func TestDollars(t *testing.T) {
	assert.Equal(t, "1,234", dollars(dec("1234")))
	assert.Equal(t, "42", dollars(dec("42")))
	assert.Equal(t, "1,234.50", dollars(dec("1234.5")))
}
