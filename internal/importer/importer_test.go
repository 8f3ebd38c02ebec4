package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finboard/internal/categorize"
	"github.com/cleared-dev/finboard/internal/model"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParse_StandardFixture(t *testing.T) {
	res := Parse(readFixture(t, "standard.csv"), "acct-1")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 6)
	assert.Equal(t, "standard", res.Format)

	rent := res.Transactions[0]
	assert.Equal(t, "acct-1", rent.AccountID)
	assert.Equal(t, "-1800.00", rent.Amount.StringFixed(2))
	assert.Equal(t, "Oakwood Apartments", rent.Merchant)
	assert.Equal(t, categorize.Housing, rent.Category)
	assert.True(t, rent.Date.Equal(date(2024, 1, 2)))

	groceries := res.Transactions[1]
	assert.Equal(t, "Whole Foods Market, Downtown", groceries.Description)
	assert.Equal(t, "Whole Foods", groceries.Merchant)
	assert.Equal(t, categorize.Food, groceries.Category)

	payroll := res.Transactions[3]
	assert.True(t, payroll.Amount.IsPositive())
	assert.Equal(t, categorize.Income, payroll.Category)

	shell := res.Transactions[4]
	assert.Equal(t, categorize.Transportation, shell.Category, "provided category is kept")
	assert.Equal(t, "Shell Oil 5551", shell.Merchant)
}

func TestParse_StandardSingleRow(t *testing.T) {
	res := Parse("date,description,amount\n2024-01-15,Netflix Monthly,-15.99\n", "a")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 1)

	tx := res.Transactions[0]
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-15.99")))
	assert.Equal(t, "Netflix Monthly", tx.Merchant)
	assert.Equal(t, categorize.Entertainment, tx.Category)
}

func TestParse_BankFixture(t *testing.T) {
	res := Parse(readFixture(t, "bank.csv"), "acct-2")
	require.Len(t, res.Transactions, 3)
	require.Equal(t, []string{"Error on line 5: Missing or invalid debit/credit values"}, res.Errors)
	assert.Equal(t, "bank", res.Format)

	comcast := res.Transactions[0]
	assert.Equal(t, "-79.99", comcast.Amount.StringFixed(2))
	assert.True(t, comcast.Date.Equal(date(2024, 1, 3)), "MM/DD/YYYY is tried first")
	assert.Equal(t, categorize.Utilities, comcast.Category)

	pay := res.Transactions[1]
	assert.Equal(t, "2500.00", pay.Amount.StringFixed(2))
	assert.Equal(t, categorize.Income, pay.Category)

	cvs := res.Transactions[2]
	assert.True(t, cvs.Date.Equal(date(2024, 1, 15)), "falls back to DD/MM/YYYY")
	assert.Equal(t, "CVS Pharmacy", cvs.Merchant)
	assert.Equal(t, categorize.Healthcare, cvs.Category)
}

func TestParse_BankCreditOnly(t *testing.T) {
	res := Parse("date,description,debit,credit\n2024-02-01,Paycheck,,2500\n", "a")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 1)
	assert.True(t, res.Transactions[0].Amount.Equal(decimal.NewFromInt(2500)))
}

func TestParse_BankDebitColumnOnly(t *testing.T) {
	res := Parse("Date,Description,Debit\n2024-02-01,Coffee,4.50\n", "a")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "-4.50", res.Transactions[0].Amount.StringFixed(2))
}

func TestParse_UnsupportedHeader(t *testing.T) {
	res := Parse("when,what,how much\n2024-01-01,x,1\n", "a")
	assert.Empty(t, res.Transactions)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Unsupported CSV format")
}

func TestParse_Empty(t *testing.T) {
	res := Parse("", "a")
	assert.Empty(t, res.Transactions)
	assert.Len(t, res.Errors, 1)
}

func TestParse_RowErrorsContinue(t *testing.T) {
	text := "date,description,amount\n" +
		"notadate,Coffee,-3.00\n" +
		"2024-01-02,Lunch\n" +
		"2024-01-03,Tea,abc\n" +
		"\n" +
		"2024-01-04,Dinner,-20.00\n"
	res := Parse(text, "a")

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Dinner", res.Transactions[0].Description)
	assert.Equal(t, []string{
		"Error on line 2: Invalid date: notadate",
		"Error on line 3: Row has 2 values but expected 3",
		"Error on line 4: Invalid amount: abc",
	}, res.Errors)
}

func TestSplitRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `2024-01-05,"Whole Foods, Downtown",-84.23`, []string{"2024-01-05", "Whole Foods, Downtown", "-84.23"}},
		{"space before opening quote", `2024-01-15, "Coffee, Shop", -5.00`, []string{"2024-01-15", " Coffee, Shop", " -5.00"}},
		{"quote mid field", `2024-01-15,Joe"s, Diner",-12.00`, []string{"2024-01-15", "Joes, Diner", "-12.00"}},
		{"doubled quote", `"Say ""hi"" cafe",x`, []string{`Say "hi" cafe`, "x"}},
		{"empty quoted", `a,"",c`, []string{"a", "", "c"}},
		{"trailing comma", "a,b,", []string{"a", "b", ""}},
		{"empty line", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitRow(tt.line))
		})
	}
}

func TestParse_QuotedFieldsAfterSpaces(t *testing.T) {
	text := "date,description,amount\n" +
		"2024-01-15, \"Coffee, Shop\", -5.00\n" +
		"2024-01-16,Joe\"s, Diner\",-12.00\n"
	res := Parse(text, "acct")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 2)

	coffee := res.Transactions[0]
	assert.Equal(t, "Coffee, Shop", coffee.Description)
	assert.Equal(t, "-5.00", coffee.Amount.StringFixed(2))

	assert.Equal(t, "Joes, Diner", res.Transactions[1].Description)
	assert.Equal(t, "-12.00", res.Transactions[1].Amount.StringFixed(2))
}

func TestParse_HeaderCaseAndWhitespace(t *testing.T) {
	res := Parse(" DATE , Description ,AMOUNT\r\n2024-03-01,Uber Trip,-18.20\r\n", "a")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, categorize.Transportation, res.Transactions[0].Category)
}

func TestParse_BlankDescription(t *testing.T) {
	res := Parse("date,description,amount\n2024-03-01,,-1.00\n", "a")
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Unknown", res.Transactions[0].Description)
	assert.Equal(t, "Unknown", res.Transactions[0].Merchant)
}

func TestParse_ExtraValuesAllowed(t *testing.T) {
	res := Parse("date,description,amount\n2024-03-01,Snack,-2.00,extra\n", "a")
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Transactions, 1)
}

func TestParse_CurrencyFormattedAmount(t *testing.T) {
	res := Parse("date,description,amount\n2024-03-01,Laptop,\"-$1,299.00\"\n", "a")
	require.Empty(t, res.Errors)
	assert.Equal(t, "-1299.00", res.Transactions[0].Amount.StringFixed(2))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-01-15", date(2024, 1, 15)},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"01/15/2024", date(2024, 1, 15)},
		{"15/01/2024", date(2024, 1, 15)},
		{"03.04.2024", date(2024, 3, 4)},
		{"1-5-2024", date(2024, 1, 5)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.raw)
		require.NoError(t, err, "ParseDate(%q)", tt.raw)
		assert.True(t, tt.want.Equal(got), "ParseDate(%q) = %s", tt.raw, got)
	}

	_, err := ParseDate("31/31/2024")
	require.Error(t, err)
	assert.Equal(t, "Invalid date: 31/31/2024", err.Error())
}

func TestMerchantFromDescription(t *testing.T) {
	assert.Equal(t, "Netflix", MerchantFromDescription("Netflix"))
	assert.Equal(t, "Shell Oil 5551", MerchantFromDescription("Shell Oil 5551"))
	assert.Equal(t, "AMAZON MKTPLACE", MerchantFromDescription("AMAZON MKTPLACE PMTS WA 98109"))
}

func TestToCSV(t *testing.T) {
	txs := []model.Transaction{
		{Date: time.Date(2024, 1, 15, 18, 45, 0, 0, time.UTC), Description: `Joe's "Best" Pizza`, Amount: decimal.RequireFromString("-23.5"), Category: "Food", Merchant: "Joe's"},
	}
	want := "Date,Description,Amount,Category,Merchant\n" +
		`2024-01-15,"Joe's ""Best"" Pizza",-23.50,Food,"Joe's"` + "\n"
	assert.Equal(t, want, ToCSV(txs))
}

func TestToCSV_RoundTrip(t *testing.T) {
	txs := []model.Transaction{
		{Date: date(2024, 1, 2), Description: "Whole Foods Market, Downtown", Amount: decimal.RequireFromString("-84.23"), Category: "Food", Merchant: "Whole Foods"},
		{Date: date(2024, 1, 15), Description: `Say "hi" cafe`, Amount: decimal.RequireFromString("-4.00"), Category: "Food", Merchant: "Say hi"},
		{Date: time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC), Description: "Payroll", Amount: decimal.RequireFromString("3000"), Category: "Income", Merchant: "ACME"},
	}

	res := Parse(ToCSV(txs), "acct-9")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, len(txs))

	for i, want := range txs {
		got := res.Transactions[i]
		assert.True(t, want.Amount.Equal(got.Amount), "amount %d", i)
		assert.Equal(t, want.Description, got.Description)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Merchant, got.Merchant)
		assert.Equal(t, want.Date.Format("2006-01-02"), got.Date.Format("2006-01-02"))
		assert.Equal(t, "acct-9", got.AccountID)
	}
}

func TestRegistry_DetectOrder(t *testing.T) {
	r := DefaultRegistry()
	f := r.Detect([]string{"date", "description", "amount", "debit"})
	require.NotNil(t, f)
	assert.Equal(t, "standard", f.Name())

	f = r.Detect([]string{"date", "description", "credit"})
	require.NotNil(t, f)
	assert.Equal(t, "bank", f.Name())

	f = r.Detect([]string{"details", "posting date", "description", "amount", "type", "balance"})
	require.NotNil(t, f)
	assert.Equal(t, "chase", f.Name())

	assert.Nil(t, r.Detect([]string{"date", "amount"}))
}

func TestParse_ChaseFixture(t *testing.T) {
	res := Parse(readFixture(t, "chase.csv"), "acct-3")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, "chase", res.Format)

	github := res.Transactions[0]
	assert.Equal(t, "GITHUB, INC.", github.Description)
	assert.Equal(t, "-4.00", github.Amount.StringFixed(2))
	assert.True(t, github.Date.Equal(date(2025, 1, 3)))

	assert.Equal(t, categorize.Income, res.Transactions[1].Category)
	assert.Equal(t, categorize.Entertainment, res.Transactions[2].Category)
}

func TestParse_ChaseCardExport(t *testing.T) {
	csv := "Transaction Date,Post Date,Description,Category,Type,Amount,Memo\n" +
		"01/14/2025,01/15/2025,STARBUCKS STORE 0412,,Sale,-5.75,\n"
	res := Parse(csv, "card")
	require.Empty(t, res.Errors)
	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]
	assert.True(t, tx.Date.Equal(date(2025, 1, 14)), "transaction date wins over post date")
	assert.Equal(t, categorize.Food, tx.Category)
}

func TestRegistry_GetCaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("Standard"))
	assert.NotNil(t, r.Get("BANK"))
	assert.NotNil(t, r.Get("Chase"))
	assert.Nil(t, r.Get("ofx"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(StandardFormat{})
	assert.Panics(t, func() { r.Register(StandardFormat{}) })
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(filepath.Join(importDir, "processed"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "notes.txt"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "processed", "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "bank.csv", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	_, err := os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(importDir, "processed", "bank.csv"))
	assert.NoError(t, err)
}
