package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/ledgerbot/internal/model"
)

func TestCleaner_WipeKeepsOtherUsers(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)
	recorder := NewRecorder(storage, nil)
	debts := NewDebtBook(storage, nil)
	reporter := NewReporter(storage, nil)

	for _, userID := range []int64{1, 2} {
		require.NoError(t, recorder.Add(ctx, &model.Record{UserID: userID, Kind: model.Income, Category: "Salary",
			Amount: decimal.NewFromInt(100)}))
		require.NoError(t, debts.Add(ctx, &model.Debt{UserID: userID, Counterparty: "Alice", Amount: decimal.NewFromInt(5)}))
		require.NoError(t, recorder.AddCategory(ctx, &model.Category{UserID: userID, Kind: model.Expense, Name: "Pets"}))
	}

	require.NoError(t, NewCleaner(storage, nil).Wipe(ctx, 1))

	summary, err := reporter.Summary(ctx, 1, model.AllTime())
	require.NoError(t, err)
	require.True(t, summary.Total.IsZero())
	names, err := recorder.Categories(ctx, 1, model.Expense)
	require.NoError(t, err)
	require.NotContains(t, names, "Pets")

	summary, err = reporter.Summary(ctx, 2, model.AllTime())
	require.NoError(t, err)
	require.Equal(t, "105.00", summary.Total.StringFixed(2))
	names, err = recorder.Categories(ctx, 2, model.Expense)
	require.NoError(t, err)
	require.Contains(t, names, "Pets")
}
