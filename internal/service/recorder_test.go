package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/repository"
)

func TestRecorder_Categories(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(newStorage(t), nil)

	names, err := r.Categories(ctx, 1, model.Expense)
	require.NoError(t, err)
	require.Equal(t, []string{"Food", "Transport", "Entertainment"}, names)

	require.NoError(t, r.AddCategory(ctx, &model.Category{UserID: 1, Kind: model.Expense, Name: "  Pets "}))
	require.NoError(t, r.AddCategory(ctx, &model.Category{UserID: 1, Kind: model.Expense, Name: "Books"}))

	names, err = r.Categories(ctx, 1, model.Expense)
	require.NoError(t, err)
	require.Equal(t, []string{"Food", "Transport", "Entertainment", "Pets", "Books"}, names)

	names, err = r.Categories(ctx, 2, model.Expense)
	require.NoError(t, err)
	require.Len(t, names, 3)

	names, err = r.Categories(ctx, 1, model.Income)
	require.NoError(t, err)
	require.Equal(t, []string{"Salary", "Gift", "Investments"}, names)
}

func TestRecorder_AddCategoryDuplicate(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(newStorage(t), nil)

	require.NoError(t, r.AddCategory(ctx, &model.Category{UserID: 1, Kind: model.Income, Name: "Bonus"}))
	require.ErrorIs(t, r.AddCategory(ctx, &model.Category{UserID: 1, Kind: model.Income, Name: "Bonus"}),
		repository.DuplicateCategoryErr)
	require.ErrorIs(t, r.AddCategory(ctx, &model.Category{UserID: 1, Kind: model.Income, Name: "salary"}),
		repository.DuplicateCategoryErr)

	names, err := r.Categories(ctx, 1, model.Income)
	require.NoError(t, err)
	count := 0
	for _, name := range names {
		if name == "Bonus" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestRecorder_Add(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)
	r := NewRecorder(storage, nil)
	now := time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	record := model.Record{UserID: 1, Kind: model.Expense, Category: "Food", Amount: decimal.NewFromInt(500)}
	require.NoError(t, r.Add(ctx, &record))
	require.Equal(t, now, record.Date)
	require.NotZero(t, record.ID)

	_, expense, err := storage.Totals(ctx, 1, model.Month(2026, time.October))
	require.NoError(t, err)
	require.Equal(t, "500.00", expense.StringFixed(2))

	err = r.Add(ctx, &model.Record{UserID: 1, Kind: model.Expense, Category: "Food", Amount: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, InvalidAmountErr)

	err = r.Add(ctx, &model.Record{UserID: 1, Kind: "transfer", Category: "Food", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
}
