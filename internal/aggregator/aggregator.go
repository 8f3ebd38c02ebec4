// Package aggregator pulls accounts and transactions from a bank data
// aggregator and maps them onto the finboard model.
package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finboard/internal/model"
)

// IDPrefix namespaces stored IDs that originate from the aggregator.
const IDPrefix = "plaid-"

// Client is the subset of the aggregator API finboard uses.
type Client interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (Exchange, error)
	FetchAccounts(ctx context.Context, accessToken string) ([]Account, error)
	FetchTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error)
}

// Exchange is the result of linking an institution.
type Exchange struct {
	AccessToken string
	ItemID      string
}

// Account is an account as reported by the aggregator.
type Account struct {
	ID      string
	Name    string
	Mask    string
	Type    string // depository, credit, loan, investment, other
	Subtype string // checking, savings, ...
	Balance decimal.Decimal
}

// Transaction is a transaction as reported by the aggregator. Amount is
// positive for money leaving the account.
type Transaction struct {
	ID        string
	AccountID string
	Date      time.Time
	Name      string
	Merchant  string
	Amount    decimal.Decimal
	Pending   bool
}

// Connection is one linked institution.
type Connection struct {
	Institution string
	AccessToken string
}

// ToAccount maps an aggregator account onto model.Account.
func ToAccount(a Account, institution string) model.Account {
	ref := a.ID
	return model.Account{
		ID:            IDPrefix + a.ID,
		Name:          a.Name,
		Type:          accountType(a.Type, a.Subtype),
		Institution:   institution,
		Balance:       a.Balance,
		AccountNumber: a.Mask,
		ExternalRef:   &ref,
	}
}

func accountType(typ, subtype string) model.AccountType {
	switch strings.ToLower(typ) {
	case "credit", "loan":
		return model.AccountTypeCredit
	case "investment", "brokerage":
		return model.AccountTypeInvestment
	}
	if strings.EqualFold(subtype, "savings") || strings.EqualFold(subtype, "money market") || strings.EqualFold(subtype, "cd") {
		return model.AccountTypeSavings
	}
	return model.AccountTypeChecking
}

// ToTransaction maps an aggregator transaction onto model.Transaction,
// flipping the sign so expenses are negative.
func ToTransaction(tx Transaction) model.Transaction {
	merchant := strings.TrimSpace(tx.Merchant)
	if merchant == "" {
		merchant = tx.Name
	}
	return model.Transaction{
		ID:          IDPrefix + tx.ID,
		AccountID:   IDPrefix + tx.AccountID,
		Date:        tx.Date,
		Description: tx.Name,
		Amount:      tx.Amount.Neg(),
		Merchant:    merchant,
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse aggregator date %q: %w", s, err)
	}
	return t, nil
}
