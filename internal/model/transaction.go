package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a normalized money movement on one account.
type Transaction struct {
	ID          string
	AccountID   string
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = expense, positive = income
	Category    string
	Merchant    string
	CreatedAt   time.Time
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// RecurringCharge is a merchant that bills on a detectable schedule.
type RecurringCharge struct {
	Merchant      string
	Category      string
	AverageAmount decimal.Decimal
	Frequency     Frequency
}

// Frequency is the inferred billing interval of a recurring charge.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiWeekly  Frequency = "bi-weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)
