package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/repository"
)

type DebtBook interface {
	Add(ctx context.Context, debt *model.Debt) error
	// List returns the user's debts, only those of the given direction unless it is empty
	List(ctx context.Context, userID int64, direction model.Direction) ([]model.Debt, error)
	// Settle removes one debt of the user. Paying back and collecting both end this way
	Settle(ctx context.Context, userID, id int64) error
}

type debtBook struct {
	repo    repository.DebtKeeper
	retrier *Retrier
	now     func() time.Time
}

func NewDebtBook(repo repository.DebtKeeper, retrier *Retrier) *debtBook {
	return &debtBook{
		repo:    repo,
		retrier: retrier,
		now:     time.Now,
	}
}

func (d *debtBook) Add(ctx context.Context, debt *model.Debt) error {
	if debt.Amount.IsZero() {
		return fmt.Errorf("%w: debt amount is zero", InvalidAmountErr)
	}
	if debt.Date.IsZero() {
		debt.Date = d.now().UTC()
	}
	return d.retrier.Do(ctx, "add debt", func() error {
		return d.repo.AddDebt(ctx, debt)
	})
}

func (d *debtBook) List(ctx context.Context, userID int64, direction model.Direction) ([]model.Debt, error) {
	var debts []model.Debt
	err := d.retrier.Do(ctx, "get debts", func() error {
		var err error
		debts, err = d.repo.Debts(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if direction == "" {
		return debts, nil
	}

	filtered := debts[:0]
	for _, debt := range debts {
		if debt.Direction() == direction {
			filtered = append(filtered, debt)
		}
	}
	return filtered, nil
}

func (d *debtBook) Settle(ctx context.Context, userID, id int64) error {
	return d.retrier.Do(ctx, "settle debt", func() error {
		return d.repo.DeleteDebt(ctx, userID, id)
	})
}
