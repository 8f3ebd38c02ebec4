package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/finboard/internal/categorize"
	"github.com/cleared-dev/finboard/internal/logger"
	"github.com/cleared-dev/finboard/internal/model"
	"github.com/cleared-dev/finboard/internal/store"
)

// DefaultLookbackDays bounds how far back a sync reaches.
const DefaultLookbackDays = 90

// Syncer copies aggregator data into a Store.
type Syncer struct {
	Client       Client
	Store        store.Store
	LookbackDays int
	Now          func() time.Time
}

// SyncResult summarizes one Sync call.
type SyncResult struct {
	Accounts int
	Created  int
	Skipped  int
}

type fetched struct {
	conn     Connection
	accounts []Account
	txs      []Transaction
}

// Sync fetches every connection concurrently, then upserts accounts and
// stores transactions not seen before. Pending transactions are skipped
// because the aggregator reissues them with new IDs once they post.
func (s *Syncer) Sync(ctx context.Context, conns []Connection) (SyncResult, error) {
	log := logger.FromContext(ctx)

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	days := s.LookbackDays
	if days <= 0 {
		days = DefaultLookbackDays
	}
	end := now()
	start := end.AddDate(0, 0, -days)

	results := make([]fetched, len(conns))
	g, gctx := errgroup.WithContext(ctx)
	for i, conn := range conns {
		i, conn := i, conn
		results[i].conn = conn
		g.Go(func() error {
			accts, err := s.Client.FetchAccounts(gctx, conn.AccessToken)
			if err != nil {
				return fmt.Errorf("%s: %w", conn.Institution, err)
			}
			results[i].accounts = accts
			return nil
		})
		g.Go(func() error {
			txs, err := s.Client.FetchTransactions(gctx, conn.AccessToken, start, end)
			if err != nil {
				return fmt.Errorf("%s: %w", conn.Institution, err)
			}
			results[i].txs = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SyncResult{}, fmt.Errorf("sync: %w", err)
	}

	var res SyncResult
	for _, r := range results {
		for _, a := range r.accounts {
			if err := s.upsertAccount(ctx, ToAccount(a, r.conn.Institution)); err != nil {
				return res, err
			}
			res.Accounts++
		}

		var fresh []model.Transaction
		for _, tx := range r.txs {
			if tx.Pending {
				res.Skipped++
				continue
			}
			mapped := ToTransaction(tx)
			_, err := s.Store.GetTransaction(ctx, mapped.ID)
			if err == nil {
				res.Skipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return res, fmt.Errorf("look up transaction %s: %w", mapped.ID, err)
			}
			fresh = append(fresh, mapped)
		}
		if len(fresh) == 0 {
			continue
		}
		created, err := s.Store.CreateTransactions(ctx, categorize.CategorizeBatch(fresh))
		if err != nil {
			return res, fmt.Errorf("store %s transactions: %w", r.conn.Institution, err)
		}
		res.Created += len(created)
		log.Info().Str("institution", r.conn.Institution).Int("created", len(created)).Msg("synced transactions")
	}
	return res, nil
}

func (s *Syncer) upsertAccount(ctx context.Context, a model.Account) error {
	existing, err := s.Store.GetAccount(ctx, a.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if _, err := s.Store.CreateAccount(ctx, a); err != nil {
			return fmt.Errorf("create account %s: %w", a.ID, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("look up account %s: %w", a.ID, err)
	}

	existing.Balance = a.Balance
	existing.Name = a.Name
	existing.ExternalRef = a.ExternalRef
	if a.AccountNumber != "" {
		existing.AccountNumber = a.AccountNumber
	}
	if _, err := s.Store.UpdateAccount(ctx, existing); err != nil {
		return fmt.Errorf("update account %s: %w", a.ID, err)
	}
	return nil
}
