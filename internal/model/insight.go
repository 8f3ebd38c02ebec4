package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightType tags the analysis that produced an insight.
type InsightType string

const (
	InsightSubscription  InsightType = "subscription"
	InsightHighYield     InsightType = "high-yield"
	InsightSpendingAlert InsightType = "spending-alert"
)

// Insight is a generated savings recommendation.
type Insight struct {
	ID            string
	Title         string
	Description   string
	SavingsAmount decimal.NullDecimal
	Type          InsightType
	ActionLink    string
	CreatedAt     time.Time
}

// Category is one entry of the spending taxonomy.
type Category struct {
	Name     string
	Color    string
	Keywords []string
}
