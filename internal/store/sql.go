package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/finboard/internal/model"
)

// Dialect selects the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a configured dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case DialectSQLite, DialectPostgres:
		return d, nil
	}
	return "", fmt.Errorf("unsupported database dialect %q (want sqlite or postgres)", s)
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// Times are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQL is a Store backed by database/sql.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ Store = (*SQL)(nil)

// Open connects to the database, applies migrations and returns a Store.
// For sqlite, dsn is a file path whose directory is created if needed.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQL, error) {
	if dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if dialect == DialectSQLite {
		// One writer at a time avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQL{db: db, dialect: dialect, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQL) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQL) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQL) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQL) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *SQL) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQL) nextPosition(ctx context.Context, q querier, table string) (int64, error) {
	var pos int64
	err := s.queryRow(ctx, q, "SELECT COALESCE(MAX(position), -1) + 1 FROM "+table).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("next %s position: %w", table, err)
	}
	return pos, nil
}

func (s *SQL) exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var n int
	if err := s.queryRow(ctx, q, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

// Accounts

const accountColumns = "id, name, type, institution, balance, account_number, last_updated, external_ref"

func scanAccount(row interface{ Scan(...any) error }) (model.Account, error) {
	var (
		a           model.Account
		typ         string
		lastUpdated string
		ref         sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Name, &typ, &a.Institution, &a.Balance, &a.AccountNumber, &lastUpdated, &ref); err != nil {
		return model.Account{}, err
	}
	a.Type = model.AccountType(typ)
	t, err := parseTime(lastUpdated)
	if err != nil {
		return model.Account{}, err
	}
	a.LastUpdated = t
	if ref.Valid {
		a.ExternalRef = &ref.String
	}
	return a, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// ListAccounts returns accounts in creation order.
func (s *SQL) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.query(ctx, s.db, "SELECT "+accountColumns+" FROM accounts ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccount returns an account by ID.
func (s *SQL) GetAccount(ctx context.Context, id string) (model.Account, error) {
	a, err := scanAccount(s.queryRow(ctx, s.db, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return a, nil
}

// CreateAccount stores a new account.
func (s *SQL) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	a = prepareAccount(a, s.now())
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		dup, err := s.exists(ctx, tx, "SELECT COUNT(*) FROM accounts WHERE id = ?", a.ID)
		if err != nil {
			return fmt.Errorf("check account: %w", err)
		}
		if dup {
			return fmt.Errorf("account %s: %w", a.ID, ErrDuplicate)
		}
		pos, err := s.nextPosition(ctx, tx, "accounts")
		if err != nil {
			return err
		}
		_, err = s.exec(ctx, tx,
			"INSERT INTO accounts (position, "+accountColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			pos, a.ID, a.Name, string(a.Type), a.Institution, a.Balance, a.AccountNumber,
			formatTime(a.LastUpdated), nullString(a.ExternalRef))
		if err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// UpdateAccount replaces an existing account.
func (s *SQL) UpdateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	a.AccountNumber = model.MaskAccountNumber(a.AccountNumber)
	a.LastUpdated = s.now()
	res, err := s.exec(ctx, s.db,
		`UPDATE accounts SET name = ?, type = ?, institution = ?, balance = ?,
		account_number = ?, last_updated = ?, external_ref = ? WHERE id = ?`,
		a.Name, string(a.Type), a.Institution, a.Balance, a.AccountNumber,
		formatTime(a.LastUpdated), nullString(a.ExternalRef), a.ID)
	if err != nil {
		return model.Account{}, fmt.Errorf("update account %s: %w", a.ID, err)
	}
	if err := requireAffected(res, "account", a.ID); err != nil {
		return model.Account{}, err
	}
	// Round-trip through storage so the returned time has the stored precision.
	return s.GetAccount(ctx, a.ID)
}

// DeleteAccount removes an account. Its transactions are kept.
func (s *SQL) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return requireAffected(res, "account", id)
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// Transactions

const transactionColumns = "id, account_id, date, description, amount, category, merchant, created_at"

func scanTransaction(row interface{ Scan(...any) error }) (model.Transaction, error) {
	var (
		tx              model.Transaction
		date, createdAt string
	)
	if err := row.Scan(&tx.ID, &tx.AccountID, &date, &tx.Description, &tx.Amount, &tx.Category, &tx.Merchant, &createdAt); err != nil {
		return model.Transaction{}, err
	}
	var err error
	if tx.Date, err = parseTime(date); err != nil {
		return model.Transaction{}, err
	}
	if tx.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

func (s *SQL) listTransactions(ctx context.Context, where string, args ...any) ([]model.Transaction, error) {
	rows, err := s.query(ctx, s.db,
		"SELECT "+transactionColumns+" FROM transactions "+where+" ORDER BY date, created_at, id", args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// ListTransactions returns all transactions ordered by date.
func (s *SQL) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.listTransactions(ctx, "")
}

// ListTransactionsByAccount returns one account's transactions ordered by date.
func (s *SQL) ListTransactionsByAccount(ctx context.Context, accountID string) ([]model.Transaction, error) {
	return s.listTransactions(ctx, "WHERE account_id = ?", accountID)
}

// GetTransaction returns a transaction by ID.
func (s *SQL) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	tx, err := scanTransaction(s.queryRow(ctx, s.db, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

// CreateTransaction stores a single transaction.
func (s *SQL) CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	out, err := s.CreateTransactions(ctx, []model.Transaction{tx})
	if err != nil {
		return model.Transaction{}, err
	}
	return out[0], nil
}

// CreateTransactions stores txs in one database transaction: a duplicate ID
// rejects the batch.
func (s *SQL) CreateTransactions(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	now := s.now()
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = prepareTransaction(tx, now)
	}

	err := s.inTx(ctx, func(dbtx *sql.Tx) error {
		for _, tx := range out {
			dup, err := s.exists(ctx, dbtx, "SELECT COUNT(*) FROM transactions WHERE id = ?", tx.ID)
			if err != nil {
				return fmt.Errorf("check transaction: %w", err)
			}
			if dup {
				return fmt.Errorf("transaction %s: %w", tx.ID, ErrDuplicate)
			}
			_, err = s.exec(ctx, dbtx,
				"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				tx.ID, tx.AccountID, formatTime(tx.Date), tx.Description, tx.Amount,
				tx.Category, tx.Merchant, formatTime(tx.CreatedAt))
			if err != nil {
				return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTransactionCategory corrects the category of a stored transaction.
func (s *SQL) UpdateTransactionCategory(ctx context.Context, id, category string) error {
	res, err := s.exec(ctx, s.db, "UPDATE transactions SET category = ? WHERE id = ?", category, id)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	return requireAffected(res, "transaction", id)
}

// DeleteTransaction removes a transaction.
func (s *SQL) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return requireAffected(res, "transaction", id)
}

// Categories

// Keywords are stored joined by keywordSep.
const keywordSep = ";"

// ListCategories returns categories in creation order.
func (s *SQL) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.query(ctx, s.db, "SELECT name, color, keywords FROM categories ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		var keywords string
		if err := rows.Scan(&c.Name, &c.Color, &keywords); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if keywords != "" {
			c.Keywords = strings.Split(keywords, keywordSep)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory stores a category. Names are unique, case-insensitively.
func (s *SQL) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		dup, err := s.exists(ctx, tx, "SELECT COUNT(*) FROM categories WHERE lower(name) = ?", strings.ToLower(c.Name))
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if dup {
			return fmt.Errorf("category %s: %w", c.Name, ErrDuplicate)
		}
		pos, err := s.nextPosition(ctx, tx, "categories")
		if err != nil {
			return err
		}
		_, err = s.exec(ctx, tx,
			"INSERT INTO categories (name, position, color, keywords) VALUES (?, ?, ?, ?)",
			c.Name, pos, c.Color, strings.Join(c.Keywords, keywordSep))
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// Insights

const insightColumns = "id, title, description, savings_amount, type, action_link, created_at"

// ListInsights returns insights in creation order.
func (s *SQL) ListInsights(ctx context.Context) ([]model.Insight, error) {
	rows, err := s.query(ctx, s.db, "SELECT "+insightColumns+" FROM insights ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []model.Insight
	for rows.Next() {
		var (
			in        model.Insight
			typ       string
			createdAt string
		)
		if err := rows.Scan(&in.ID, &in.Title, &in.Description, &in.SavingsAmount, &typ, &in.ActionLink, &createdAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		in.Type = model.InsightType(typ)
		if in.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQL) insertInsight(ctx context.Context, q querier, in model.Insight, pos int64) error {
	_, err := s.exec(ctx, q,
		"INSERT INTO insights (position, "+insightColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		pos, in.ID, in.Title, in.Description, savingsValue(in.SavingsAmount),
		string(in.Type), in.ActionLink, formatTime(in.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	return nil
}

func savingsValue(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

// CreateInsight appends an insight.
func (s *SQL) CreateInsight(ctx context.Context, in model.Insight) (model.Insight, error) {
	in = prepareInsight(in, s.now())
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		pos, err := s.nextPosition(ctx, tx, "insights")
		if err != nil {
			return err
		}
		return s.insertInsight(ctx, tx, in, pos)
	})
	if err != nil {
		return model.Insight{}, err
	}
	return in, nil
}

// ReplaceInsights swaps the stored insight set for ins.
func (s *SQL) ReplaceInsights(ctx context.Context, ins []model.Insight) ([]model.Insight, error) {
	now := s.now()
	out := make([]model.Insight, len(ins))
	for i, in := range ins {
		out[i] = prepareInsight(in, now)
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, "DELETE FROM insights"); err != nil {
			return fmt.Errorf("clear insights: %w", err)
		}
		for i, in := range out {
			if err := s.insertInsight(ctx, tx, in, int64(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
