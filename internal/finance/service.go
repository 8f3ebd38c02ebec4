// Package finance composes storage with the parser, classifier, recurring
// detector and insight generator. CLI commands and HTTP handlers call it.
package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/finboard/internal/categorize"
	"github.com/cleared-dev/finboard/internal/events"
	"github.com/cleared-dev/finboard/internal/importer"
	"github.com/cleared-dev/finboard/internal/insights"
	"github.com/cleared-dev/finboard/internal/logger"
	"github.com/cleared-dev/finboard/internal/model"
	"github.com/cleared-dev/finboard/internal/recurring"
	"github.com/cleared-dev/finboard/internal/store"
)

// ErrInvalid marks input the service refuses before touching storage.
var ErrInvalid = errors.New("invalid input")

// Service is the application facade.
type Service struct {
	store     store.Store
	publisher events.Publisher
	parser    *importer.Parser
	generator insights.Generator
}

// NewService wires a Service. A nil publisher discards events.
func NewService(st store.Store, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		store:     st,
		publisher: pub,
		parser:    importer.NewParser(importer.DefaultRegistry()),
		generator: insights.Generator{Now: time.Now},
	}
}

// ImportResult reports one CSV import.
type ImportResult struct {
	Format   string
	Imported []model.Transaction
	Errors   []string
}

// ImportCSV parses text, stores the rows that parsed and announces them.
// Row errors are reported, not returned; the error is for storage failures
// and unknown accounts.
func (s *Service) ImportCSV(ctx context.Context, accountID, text string) (ImportResult, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return ImportResult{}, fmt.Errorf("import into %q: %w", accountID, err)
	}

	parsed := s.parser.Parse(text, accountID)
	res := ImportResult{Format: parsed.Format, Errors: parsed.Errors}
	if len(parsed.Transactions) == 0 {
		return res, nil
	}

	stored, err := s.store.CreateTransactions(ctx, parsed.Transactions)
	if err != nil {
		return res, fmt.Errorf("storing imported transactions: %w", err)
	}
	res.Imported = stored

	s.publish(ctx, events.New(events.TransactionsImported, map[string]any{
		"account_id": accountID,
		"count":      len(stored),
		"errors":     len(parsed.Errors),
	}))
	log := logger.FromContext(ctx)
	log.Info().
		Str("account_id", accountID).
		Str("format", parsed.Format).
		Int("imported", len(stored)).
		Int("errors", len(parsed.Errors)).
		Msg("csv import")
	return res, nil
}

// ExportCSV renders stored transactions as CSV. An empty accountID exports
// every account.
func (s *Service) ExportCSV(ctx context.Context, accountID string) (string, error) {
	txs, err := s.Transactions(ctx, accountID)
	if err != nil {
		return "", err
	}
	return importer.ToCSV(txs), nil
}

// Transactions lists stored transactions, optionally for one account.
func (s *Service) Transactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	var (
		txs []model.Transaction
		err error
	)
	if accountID == "" {
		txs, err = s.store.ListTransactions(ctx)
	} else {
		txs, err = s.store.ListTransactionsByAccount(ctx, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// SetCategory records a user correction for one transaction. Labels outside
// the built-in taxonomy are stored but logged.
func (s *Service) SetCategory(ctx context.Context, txID, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category is required: %w", ErrInvalid)
	}
	if err := s.store.UpdateTransactionCategory(ctx, txID, category); err != nil {
		return err
	}
	if !categorize.IsKnown(category) {
		log := logger.FromContext(ctx)
		log.Warn().
			Str("transaction_id", txID).
			Str("category", category).
			Msg("category outside the built-in taxonomy")
	}
	return nil
}

// Recategorize re-runs the classifier over stored rows that are blank or
// Other and returns how many changed.
func (s *Service) Recategorize(ctx context.Context) (int, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	changed := 0
	for i, tx := range categorize.CategorizeBatch(txs) {
		if tx.Category == txs[i].Category {
			continue
		}
		if err := s.store.UpdateTransactionCategory(ctx, tx.ID, tx.Category); err != nil {
			return changed, fmt.Errorf("recategorizing %s: %w", tx.ID, err)
		}
		changed++
	}
	return changed, nil
}

// Suggest classifies free text.
func (s *Service) Suggest(description string) string {
	return categorize.Suggest(description)
}

// Recurring detects recurring charges over stored transactions.
func (s *Service) Recurring(ctx context.Context, months int) ([]model.RecurringCharge, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return recurring.Detect(txs, months), nil
}

// Insights returns the stored insights.
func (s *Service) Insights(ctx context.Context) ([]model.Insight, error) {
	ins, err := s.store.ListInsights(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}
	return ins, nil
}

// RefreshInsights regenerates insights from current data and replaces the
// stored set.
func (s *Service) RefreshInsights(ctx context.Context) ([]model.Insight, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	stored, err := s.store.ReplaceInsights(ctx, s.generator.Generate(txs, accounts))
	if err != nil {
		return nil, fmt.Errorf("storing insights: %w", err)
	}

	s.publish(ctx, events.New(events.InsightsRefreshed, map[string]any{"count": len(stored)}))
	return stored, nil
}

// Accounts lists accounts.
func (s *Service) Accounts(ctx context.Context) ([]model.Account, error) {
	accts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accts, nil
}

// CreateAccount validates and stores a manually maintained account.
func (s *Service) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return model.Account{}, fmt.Errorf("account name is required: %w", ErrInvalid)
	}
	if !a.Type.Valid() {
		return model.Account{}, fmt.Errorf("account type %q: %w", a.Type, ErrInvalid)
	}
	return s.store.CreateAccount(ctx, a)
}

// Categories lists the stored taxonomy.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}

// SeedCategories stores the default taxonomy, skipping names already
// present, and returns how many were added.
func (s *Service) SeedCategories(ctx context.Context) (int, error) {
	added := 0
	for _, c := range categorize.DefaultCategories() {
		_, err := s.store.CreateCategory(ctx, c)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("seeding category %s: %w", c.Name, err)
		}
		added++
	}
	return added, nil
}

// publish never fails the caller: the data is already stored.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("event", e.Name).Msg("publishing event")
	}
}
