package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cleared-dev/finboard/internal/model"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	now          func() time.Time
	accounts     []model.Account
	transactions []model.Transaction
	categories   []model.Category
	insights     []model.Insight
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// ListAccounts returns accounts in creation order.
func (m *Memory) ListAccounts(_ context.Context) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Account(nil), m.accounts...), nil
}

// GetAccount returns an account by ID.
func (m *Memory) GetAccount(_ context.Context, id string) (model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.accountIndex(id); i >= 0 {
		return m.accounts[i], nil
	}
	return model.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
}

// CreateAccount stores a new account.
func (m *Memory) CreateAccount(_ context.Context, a model.Account) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a = prepareAccount(a, m.now())
	if m.accountIndex(a.ID) >= 0 {
		return model.Account{}, fmt.Errorf("account %s: %w", a.ID, ErrDuplicate)
	}
	m.accounts = append(m.accounts, a)
	return a, nil
}

// UpdateAccount replaces an existing account.
func (m *Memory) UpdateAccount(_ context.Context, a model.Account) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.accountIndex(a.ID)
	if i < 0 {
		return model.Account{}, fmt.Errorf("account %s: %w", a.ID, ErrNotFound)
	}
	a.AccountNumber = model.MaskAccountNumber(a.AccountNumber)
	a.LastUpdated = m.now()
	m.accounts[i] = a
	return a, nil
}

// DeleteAccount removes an account. Its transactions are kept.
func (m *Memory) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.accountIndex(id)
	if i < 0 {
		return fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
	return nil
}

func (m *Memory) accountIndex(id string) int {
	for i, a := range m.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// ListTransactions returns all transactions ordered by date.
func (m *Memory) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortByDate(append([]model.Transaction(nil), m.transactions...)), nil
}

// ListTransactionsByAccount returns one account's transactions ordered by date.
func (m *Memory) ListTransactionsByAccount(_ context.Context, accountID string) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Transaction
	for _, tx := range m.transactions {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	return sortByDate(out), nil
}

// GetTransaction returns a transaction by ID.
func (m *Memory) GetTransaction(_ context.Context, id string) (model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.transactionIndex(id); i >= 0 {
		return m.transactions[i], nil
	}
	return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
}

// CreateTransaction stores a single transaction.
func (m *Memory) CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	out, err := m.CreateTransactions(ctx, []model.Transaction{tx})
	if err != nil {
		return model.Transaction{}, err
	}
	return out[0], nil
}

// CreateTransactions stores txs atomically: a duplicate ID rejects the batch.
func (m *Memory) CreateTransactions(_ context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]model.Transaction, len(txs))
	batch := make(map[string]bool, len(txs))
	for i, tx := range txs {
		tx = prepareTransaction(tx, now)
		if batch[tx.ID] || m.transactionIndex(tx.ID) >= 0 {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, ErrDuplicate)
		}
		batch[tx.ID] = true
		out[i] = tx
	}
	m.transactions = append(m.transactions, out...)
	return out, nil
}

// UpdateTransactionCategory corrects the category of a stored transaction.
func (m *Memory) UpdateTransactionCategory(_ context.Context, id, category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.transactionIndex(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	m.transactions[i].Category = category
	return nil
}

// DeleteTransaction removes a transaction.
func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.transactionIndex(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
	return nil
}

func (m *Memory) transactionIndex(id string) int {
	for i, tx := range m.transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// ListCategories returns categories in creation order.
func (m *Memory) ListCategories(_ context.Context) ([]model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Category(nil), m.categories...), nil
}

// CreateCategory stores a category. Names are unique, case-insensitively.
func (m *Memory) CreateCategory(_ context.Context, c model.Category) (model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return model.Category{}, fmt.Errorf("category %s: %w", c.Name, ErrDuplicate)
		}
	}
	c.Keywords = append([]string(nil), c.Keywords...)
	m.categories = append(m.categories, c)
	return c, nil
}

// ListInsights returns insights in creation order.
func (m *Memory) ListInsights(_ context.Context) ([]model.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Insight(nil), m.insights...), nil
}

// CreateInsight appends an insight.
func (m *Memory) CreateInsight(_ context.Context, in model.Insight) (model.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in = prepareInsight(in, m.now())
	m.insights = append(m.insights, in)
	return in, nil
}

// ReplaceInsights swaps the stored insight set for ins.
func (m *Memory) ReplaceInsights(_ context.Context, ins []model.Insight) ([]model.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	out := make([]model.Insight, len(ins))
	for i, in := range ins {
		out[i] = prepareInsight(in, now)
	}
	m.insights = append([]model.Insight(nil), out...)
	return out, nil
}

func sortByDate(txs []model.Transaction) []model.Transaction {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs
}
