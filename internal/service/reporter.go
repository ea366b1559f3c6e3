package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/repository"
)

type Reports interface {
	Summary(ctx context.Context, userID int64, window model.Window) (*model.Summary, error)
	Breakdown(ctx context.Context, userID int64, kind model.Kind, window model.Window) ([]model.CategoryTotal, error)
	Monthly(ctx context.Context, userID int64) ([]model.MonthTotal, error)
}

// Reporter aggregates stored records and debts
type Reporter struct {
	getter  repository.Getter
	retrier *Retrier
}

func NewReporter(getter repository.Getter, retrier *Retrier) *Reporter {
	return &Reporter{
		getter:  getter,
		retrier: retrier,
	}
}

// Summary sums records inside the window. Debts are a standing position, so NetDebt ignores the window
func (r *Reporter) Summary(ctx context.Context, userID int64, window model.Window) (*model.Summary, error) {
	var (
		income, expense, net decimal.Decimal
		err                  error
	)
	err = r.retrier.Do(ctx, "get totals", func() error {
		income, expense, err = r.getter.Totals(ctx, userID, window)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = r.retrier.Do(ctx, "get net debt", func() error {
		net, err = r.getter.NetDebt(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	balance := income.Sub(expense)
	return &model.Summary{
		Income:  income,
		Expense: expense,
		Balance: balance,
		NetDebt: net,
		Total:   balance.Add(net),
	}, nil
}

func (r *Reporter) Breakdown(ctx context.Context, userID int64, kind model.Kind, window model.Window) ([]model.CategoryTotal, error) {
	var totals []model.CategoryTotal
	err := r.retrier.Do(ctx, "get category totals", func() error {
		var err error
		totals, err = r.getter.CategoryTotals(ctx, userID, kind, window)
		return err
	})
	return totals, err
}

func (r *Reporter) Monthly(ctx context.Context, userID int64) ([]model.MonthTotal, error) {
	var totals []model.MonthTotal
	err := r.retrier.Do(ctx, "get monthly totals", func() error {
		var err error
		totals, err = r.getter.MonthlyTotals(ctx, userID)
		return err
	})
	return totals, err
}
