// Package store persists accounts, transactions, categories and insights.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/finboard/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("already exists")
)

// Store is the persistence boundary used by the service layer. Create
// methods assign an ID and timestamps when the caller leaves them empty.
type Store interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, id string) (model.Account, error)
	CreateAccount(ctx context.Context, a model.Account) (model.Account, error)
	UpdateAccount(ctx context.Context, a model.Account) (model.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID string) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (model.Transaction, error)
	CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	CreateTransactions(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, id, category string) error
	DeleteTransaction(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)

	ListInsights(ctx context.Context) ([]model.Insight, error)
	CreateInsight(ctx context.Context, in model.Insight) (model.Insight, error)
	// ReplaceInsights drops every stored insight and stores ins in their place.
	ReplaceInsights(ctx context.Context, ins []model.Insight) ([]model.Insight, error)

	Close() error
}

func prepareAccount(a model.Account, now time.Time) model.Account {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.LastUpdated.IsZero() {
		a.LastUpdated = now
	}
	a.AccountNumber = model.MaskAccountNumber(a.AccountNumber)
	return a
}

func prepareTransaction(tx model.Transaction, now time.Time) model.Transaction {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	return tx
}

func prepareInsight(in model.Insight, now time.Time) model.Insight {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	return in
}
