package importer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	chaseColPostingDate     = "posting date"
	chaseColTransactionDate = "transaction date"
)

// ChaseFormat reads Chase exports. Checking exports carry a "Posting Date"
// column and card exports a "Transaction Date"; both have one signed amount.
type ChaseFormat struct{}

// Name returns the format name.
func (ChaseFormat) Name() string { return "chase" }

// Detect requires a Chase date column with description and amount.
func (ChaseFormat) Detect(h map[string]bool) bool {
	return (h[chaseColPostingDate] || h[chaseColTransactionDate]) && h[colDescription] && h[colAmount]
}

// Aliases maps the Chase date columns onto date.
func (ChaseFormat) Aliases() map[string]string {
	return map[string]string{
		chaseColTransactionDate: colDate,
		chaseColPostingDate:     colDate,
	}
}

// Amount parses the signed amount column.
func (ChaseFormat) Amount(fields map[string]string) (decimal.Decimal, error) {
	raw := fields[colAmount]
	amount, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Invalid amount: %s", raw) //nolint:staticcheck // message is user-facing
	}
	return amount, nil
}
