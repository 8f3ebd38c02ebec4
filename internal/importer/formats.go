package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	colDate        = "date"
	colDescription = "description"
	colAmount      = "amount"
	colDebit       = "debit"
	colCredit      = "credit"
	colCategory    = "category"
	colMerchant    = "merchant"
)

// StandardFormat reads exports with a single signed amount column.
type StandardFormat struct{}

// Name returns the format name.
func (StandardFormat) Name() string { return "standard" }

// Detect requires date, description and amount columns.
func (StandardFormat) Detect(h map[string]bool) bool {
	return h[colDate] && h[colDescription] && h[colAmount]
}

// Amount parses the amount column as-is.
func (StandardFormat) Amount(fields map[string]string) (decimal.Decimal, error) {
	raw := fields[colAmount]
	amount, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Invalid amount: %s", raw) //nolint:staticcheck // message is user-facing
	}
	return amount, nil
}

// BankFormat reads exports that split outflows and inflows into debit and
// credit columns, both unsigned.
type BankFormat struct{}

// Name returns the format name.
func (BankFormat) Name() string { return "bank" }

// Detect requires date and description plus a debit or credit column.
func (BankFormat) Detect(h map[string]bool) bool {
	return h[colDate] && h[colDescription] && (h[colDebit] || h[colCredit])
}

var errNoDebitCredit = errors.New("Missing or invalid debit/credit values") //nolint:staticcheck // message is user-facing

// Amount returns -debit for a positive debit, else +credit for a positive credit.
func (BankFormat) Amount(fields map[string]string) (decimal.Decimal, error) {
	if debit, err := parseAmount(fields[colDebit]); err == nil && debit.IsPositive() {
		return debit.Neg(), nil
	}
	if credit, err := parseAmount(fields[colCredit]); err == nil && credit.IsPositive() {
		return credit, nil
	}
	return decimal.Zero, errNoDebitCredit
}

// parseAmount accepts plain decimals plus a leading currency sign and
// thousands separators: "$1,234.50".
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Replace(s, "$", "", 1)
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}
