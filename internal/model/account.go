package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeInvestment:
		return true
	}
	return false
}

// Account is a bank, card or brokerage account.
type Account struct {
	ID            string
	Name          string
	Type          AccountType
	Institution   string
	Balance       decimal.Decimal
	AccountNumber string // display-masked, see MaskAccountNumber
	LastUpdated   time.Time
	ExternalRef   *string // aggregator connection; nil for manually maintained accounts
}

// IsConnected reports whether the balance is maintained by the aggregator.
func (a Account) IsConnected() bool {
	return a.ExternalRef != nil && *a.ExternalRef != ""
}

// MaskAccountNumber keeps only the last four digits of an account number.
// Masking an already masked number is a no-op.
// "123456789" -> "****6789"
func MaskAccountNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "****" + digits
}
