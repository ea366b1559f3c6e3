package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/chucky-1/ledgerbot/internal/model"
)

const monthLayout = "2006-01"

var (
	DuplicateCategoryErr = errors.New("category with this name already exists")
	DebtNotFoundErr      = errors.New("debt not found")
)

type Recorder interface {
	AddRecord(ctx context.Context, record *model.Record) error
	AddCategory(ctx context.Context, category *model.Category) error
	Categories(ctx context.Context, userID int64, kind model.Kind) ([]model.Category, error)
}

type Getter interface {
	// Totals returns the income and expense sums of a user inside the window, zero when there are no records
	Totals(ctx context.Context, userID int64, window model.Window) (income, expense decimal.Decimal, err error)
	// CategoryTotals returns per category sums ordered by descending amount
	CategoryTotals(ctx context.Context, userID int64, kind model.Kind, window model.Window) ([]model.CategoryTotal, error)
	// MonthlyTotals returns per month sums, newest month first
	MonthlyTotals(ctx context.Context, userID int64) ([]model.MonthTotal, error)
	NetDebt(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type DebtKeeper interface {
	AddDebt(ctx context.Context, debt *model.Debt) error
	Debts(ctx context.Context, userID int64) ([]model.Debt, error)
	// DeleteDebt removes one debt of the user, DebtNotFoundErr if there is no such debt for this user
	DeleteDebt(ctx context.Context, userID, id int64) error
}

type Cleaner interface {
	// DeleteByUser removes every record, debt and category of the user
	DeleteByUser(ctx context.Context, userID int64) error
}

// Storage is a relational datastore holding records, debts and categories
type Storage interface {
	Recorder
	Getter
	DebtKeeper
	Cleaner
	Migrate(ctx context.Context) error
	Close()
}
