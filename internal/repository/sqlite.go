package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chucky-1/ledgerbot/internal/model"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// sqlite keeps money as integer cents and time as unix seconds
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS records (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL,
		kind       TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		category   TEXT NOT NULL,
		amount     INTEGER NOT NULL CHECK (amount > 0),
		note       TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS records_user_created_idx ON records (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS debts (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL,
		counterparty TEXT NOT NULL,
		amount       INTEGER NOT NULL CHECK (amount <> 0),
		note         TEXT NOT NULL DEFAULT '',
		created_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS debts_user_idx ON debts (user_id)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		kind    TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		name    TEXT NOT NULL,
		UNIQUE (user_id, kind, name)
	)`,
}

type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens the database at path, ":memory:" gives a private in-memory database
func NewSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository.NewSQLite, open: %w", err)
	}
	// one connection: sqlite has a single writer and every :memory: connection is a separate database
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("repository.NewSQLite, ping: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Migrate(ctx context.Context) error {
	for _, query := range sqliteMigrations {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("repository.SQLite.Migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Close() {
	_ = s.conn.Close()
}

func (s *SQLite) AddRecord(ctx context.Context, record *model.Record) error {
	result, err := s.conn.ExecContext(ctx,
		`INSERT INTO records (user_id, kind, category, amount, note, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.UserID, string(record.Kind), record.Category, toCents(record.Amount), record.Note, record.Date.Unix())
	if err != nil {
		return fmt.Errorf("repository.SQLite.AddRecord: %w", err)
	}
	if record.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("repository.SQLite.AddRecord, last insert id: %w", err)
	}
	return nil
}

func (s *SQLite) AddCategory(ctx context.Context, category *model.Category) error {
	result, err := s.conn.ExecContext(ctx,
		`INSERT INTO categories (user_id, kind, name) VALUES (?, ?, ?) ON CONFLICT (user_id, kind, name) DO NOTHING`,
		category.UserID, string(category.Kind), category.Name)
	if err != nil {
		return fmt.Errorf("repository.SQLite.AddCategory: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.SQLite.AddCategory, rows affected: %w", err)
	}
	if affected != 1 {
		return DuplicateCategoryErr
	}
	if category.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("repository.SQLite.AddCategory, last insert id: %w", err)
	}
	return nil
}

func (s *SQLite) Categories(ctx context.Context, userID int64, kind model.Kind) ([]model.Category, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name FROM categories WHERE user_id = ? AND kind = ? ORDER BY id`, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite.Categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		category := model.Category{UserID: userID, Kind: kind}
		if err = rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("repository.SQLite.Categories, scan: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.SQLite.Categories, rows: %w", err)
	}
	return categories, nil
}

func (s *SQLite) Totals(ctx context.Context, userID int64, window model.Window) (decimal.Decimal, decimal.Decimal, error) {
	from, to := window.Bounds()
	var income, expense int64
	err := s.conn.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount ELSE 0 END), 0)
		FROM records WHERE user_id = ? AND created_at >= ? AND created_at < ?`,
		userID, from.Unix(), to.Unix()).Scan(&income, &expense)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("repository.SQLite.Totals: %w", err)
	}
	return fromCents(income), fromCents(expense), nil
}

func (s *SQLite) CategoryTotals(ctx context.Context, userID int64, kind model.Kind, window model.Window) ([]model.CategoryTotal, error) {
	from, to := window.Bounds()
	rows, err := s.conn.QueryContext(ctx, `SELECT category, SUM(amount) AS total FROM records
		WHERE user_id = ? AND kind = ? AND created_at >= ? AND created_at < ?
		GROUP BY category ORDER BY total DESC, category`,
		userID, string(kind), from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite.CategoryTotals: %w", err)
	}
	defer rows.Close()

	var totals []model.CategoryTotal
	for rows.Next() {
		var (
			total model.CategoryTotal
			cents int64
		)
		if err = rows.Scan(&total.Category, &cents); err != nil {
			return nil, fmt.Errorf("repository.SQLite.CategoryTotals, scan: %w", err)
		}
		total.Amount = fromCents(cents)
		totals = append(totals, total)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.SQLite.CategoryTotals, rows: %w", err)
	}
	return totals, nil
}

func (s *SQLite) MonthlyTotals(ctx context.Context, userID int64) ([]model.MonthTotal, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT strftime('%Y-%m', created_at, 'unixepoch') AS month,
		COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount ELSE 0 END), 0)
		FROM records WHERE user_id = ? GROUP BY month ORDER BY month DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite.MonthlyTotals: %w", err)
	}
	defer rows.Close()

	var totals []model.MonthTotal
	for rows.Next() {
		var (
			month           string
			income, expense int64
		)
		if err = rows.Scan(&month, &income, &expense); err != nil {
			return nil, fmt.Errorf("repository.SQLite.MonthlyTotals, scan: %w", err)
		}
		m, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("repository.SQLite.MonthlyTotals, parse month %q: %w", month, err)
		}
		totals = append(totals, model.MonthTotal{
			Month:   m,
			Income:  fromCents(income),
			Expense: fromCents(expense),
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.SQLite.MonthlyTotals, rows: %w", err)
	}
	return totals, nil
}

func (s *SQLite) NetDebt(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var net int64
	err := s.conn.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM debts WHERE user_id = ?`, userID).Scan(&net)
	if err != nil {
		return decimal.Zero, fmt.Errorf("repository.SQLite.NetDebt: %w", err)
	}
	return fromCents(net), nil
}

func (s *SQLite) AddDebt(ctx context.Context, debt *model.Debt) error {
	result, err := s.conn.ExecContext(ctx,
		`INSERT INTO debts (user_id, counterparty, amount, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		debt.UserID, debt.Counterparty, toCents(debt.Amount), debt.Note, debt.Date.Unix())
	if err != nil {
		return fmt.Errorf("repository.SQLite.AddDebt: %w", err)
	}
	if debt.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("repository.SQLite.AddDebt, last insert id: %w", err)
	}
	return nil
}

func (s *SQLite) Debts(ctx context.Context, userID int64) ([]model.Debt, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, counterparty, amount, note, created_at FROM debts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.SQLite.Debts: %w", err)
	}
	defer rows.Close()

	var debts []model.Debt
	for rows.Next() {
		var (
			debt          = model.Debt{UserID: userID}
			cents, unixAt int64
		)
		if err = rows.Scan(&debt.ID, &debt.Counterparty, &cents, &debt.Note, &unixAt); err != nil {
			return nil, fmt.Errorf("repository.SQLite.Debts, scan: %w", err)
		}
		debt.Amount = fromCents(cents)
		debt.Date = time.Unix(unixAt, 0).UTC()
		debts = append(debts, debt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.SQLite.Debts, rows: %w", err)
	}
	return debts, nil
}

func (s *SQLite) DeleteDebt(ctx context.Context, userID, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM debts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("repository.SQLite.DeleteDebt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.SQLite.DeleteDebt, rows affected: %w", err)
	}
	if affected != 1 {
		return DebtNotFoundErr
	}
	return nil
}

func (s *SQLite) DeleteByUser(ctx context.Context, userID int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository.SQLite.DeleteByUser, begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, query := range []string{
		`DELETE FROM records WHERE user_id = ?`,
		`DELETE FROM debts WHERE user_id = ?`,
		`DELETE FROM categories WHERE user_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("repository.SQLite.DeleteByUser: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("repository.SQLite.DeleteByUser, commit: %w", err)
	}
	return nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
