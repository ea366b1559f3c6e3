package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/chucky-1/ledgerbot/internal/model"
)

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS records (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		kind       TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		category   TEXT NOT NULL,
		amount     NUMERIC(14, 2) NOT NULL CHECK (amount > 0),
		note       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS records_user_created_idx ON records (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS debts (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		counterparty TEXT NOT NULL,
		amount       NUMERIC(14, 2) NOT NULL CHECK (amount <> 0),
		note         TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS debts_user_idx ON debts (user_id)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id      BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		kind    TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		name    TEXT NOT NULL,
		UNIQUE (user_id, kind, name)
	)`,
}

type Postgres struct {
	conn *pgxpool.Pool
}

func NewPostgres(conn *pgxpool.Pool) *Postgres {
	return &Postgres{
		conn: conn,
	}
}

// ConnectPostgres opens a pool and checks that the server answers
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repository.ConnectPostgres, couldn't create pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository.ConnectPostgres, couldn't ping: %w", err)
	}
	return pool, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	for _, query := range postgresMigrations {
		if _, err := p.conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("repository.Postgres.Migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Close() {
	p.conn.Close()
}

func (p *Postgres) AddRecord(ctx context.Context, record *model.Record) error {
	query := `INSERT INTO records (user_id, kind, category, amount, note, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := p.conn.QueryRow(ctx, query, record.UserID, string(record.Kind), record.Category, record.Amount,
		record.Note, record.Date.UTC()).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("repository.Postgres.AddRecord: %w", err)
	}
	return nil
}

func (p *Postgres) AddCategory(ctx context.Context, category *model.Category) error {
	query := `INSERT INTO categories (user_id, kind, name) VALUES ($1, $2, $3) ON CONFLICT (user_id, kind, name) DO NOTHING RETURNING id`
	err := p.conn.QueryRow(ctx, query, category.UserID, string(category.Kind), category.Name).Scan(&category.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return DuplicateCategoryErr
	}
	if err != nil {
		return fmt.Errorf("repository.Postgres.AddCategory: %w", err)
	}
	return nil
}

func (p *Postgres) Categories(ctx context.Context, userID int64, kind model.Kind) ([]model.Category, error) {
	query := `SELECT id, name FROM categories WHERE user_id = $1 AND kind = $2 ORDER BY id`
	rows, err := p.conn.Query(ctx, query, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres.Categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		category := model.Category{UserID: userID, Kind: kind}
		if err = rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("repository.Postgres.Categories, scan: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Postgres.Categories, rows: %w", err)
	}
	return categories, nil
}

func (p *Postgres) Totals(ctx context.Context, userID int64, window model.Window) (decimal.Decimal, decimal.Decimal, error) {
	from, to := window.Bounds()
	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
		COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
		FROM records WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`
	var income, expense decimal.Decimal
	if err := p.conn.QueryRow(ctx, query, userID, from, to).Scan(&income, &expense); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("repository.Postgres.Totals: %w", err)
	}
	return income, expense, nil
}

func (p *Postgres) CategoryTotals(ctx context.Context, userID int64, kind model.Kind, window model.Window) ([]model.CategoryTotal, error) {
	from, to := window.Bounds()
	query := `SELECT category, SUM(amount) AS total FROM records
		WHERE user_id = $1 AND kind = $2 AND created_at >= $3 AND created_at < $4
		GROUP BY category ORDER BY total DESC, category`
	rows, err := p.conn.Query(ctx, query, userID, string(kind), from, to)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres.CategoryTotals: %w", err)
	}
	defer rows.Close()

	var totals []model.CategoryTotal
	for rows.Next() {
		var total model.CategoryTotal
		if err = rows.Scan(&total.Category, &total.Amount); err != nil {
			return nil, fmt.Errorf("repository.Postgres.CategoryTotals, scan: %w", err)
		}
		totals = append(totals, total)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Postgres.CategoryTotals, rows: %w", err)
	}
	return totals, nil
}

func (p *Postgres) MonthlyTotals(ctx context.Context, userID int64) ([]model.MonthTotal, error) {
	query := `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month,
		COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
		COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
		FROM records WHERE user_id = $1 GROUP BY month ORDER BY month DESC`
	rows, err := p.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres.MonthlyTotals: %w", err)
	}
	defer rows.Close()

	var totals []model.MonthTotal
	for rows.Next() {
		var (
			month string
			total model.MonthTotal
		)
		if err = rows.Scan(&month, &total.Income, &total.Expense); err != nil {
			return nil, fmt.Errorf("repository.Postgres.MonthlyTotals, scan: %w", err)
		}
		if total.Month, err = time.Parse(monthLayout, month); err != nil {
			return nil, fmt.Errorf("repository.Postgres.MonthlyTotals, parse month %q: %w", month, err)
		}
		totals = append(totals, total)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Postgres.MonthlyTotals, rows: %w", err)
	}
	return totals, nil
}

func (p *Postgres) NetDebt(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM debts WHERE user_id = $1`
	var net decimal.Decimal
	if err := p.conn.QueryRow(ctx, query, userID).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("repository.Postgres.NetDebt: %w", err)
	}
	return net, nil
}

func (p *Postgres) AddDebt(ctx context.Context, debt *model.Debt) error {
	query := `INSERT INTO debts (user_id, counterparty, amount, note, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := p.conn.QueryRow(ctx, query, debt.UserID, debt.Counterparty, debt.Amount, debt.Note, debt.Date.UTC()).Scan(&debt.ID)
	if err != nil {
		return fmt.Errorf("repository.Postgres.AddDebt: %w", err)
	}
	return nil
}

func (p *Postgres) Debts(ctx context.Context, userID int64) ([]model.Debt, error) {
	query := `SELECT id, counterparty, amount, note, created_at FROM debts WHERE user_id = $1 ORDER BY id`
	rows, err := p.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.Postgres.Debts: %w", err)
	}
	defer rows.Close()

	var debts []model.Debt
	for rows.Next() {
		debt := model.Debt{UserID: userID}
		if err = rows.Scan(&debt.ID, &debt.Counterparty, &debt.Amount, &debt.Note, &debt.Date); err != nil {
			return nil, fmt.Errorf("repository.Postgres.Debts, scan: %w", err)
		}
		debt.Date = debt.Date.UTC()
		debts = append(debts, debt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Postgres.Debts, rows: %w", err)
	}
	return debts, nil
}

func (p *Postgres) DeleteDebt(ctx context.Context, userID, id int64) error {
	commandTag, err := p.conn.Exec(ctx, `DELETE FROM debts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("repository.Postgres.DeleteDebt: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return DebtNotFoundErr
	}
	return nil
}

func (p *Postgres) DeleteByUser(ctx context.Context, userID int64) error {
	err := pgx.BeginFunc(ctx, p.conn, func(tx pgx.Tx) error {
		for _, query := range []string{
			`DELETE FROM records WHERE user_id = $1`,
			`DELETE FROM debts WHERE user_id = $1`,
			`DELETE FROM categories WHERE user_id = $1`,
		} {
			if _, err := tx.Exec(ctx, query, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repository.Postgres.DeleteByUser: %w", err)
	}
	return nil
}
