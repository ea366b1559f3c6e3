package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/chucky-1/ledgerbot/internal/model"
)

// StorageSuite runs the same checks against every Storage implementation
type StorageSuite struct {
	suite.Suite
	open    func() Storage
	storage Storage
	ctx     context.Context
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = s.open()
	s.Require().NoError(s.storage.Migrate(s.ctx))
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		s.storage.Close()
	}
}

func (s *StorageSuite) addRecord(userID int64, kind model.Kind, category, amount string, date time.Time) {
	record := model.Record{
		UserID:   userID,
		Kind:     kind,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
	}
	s.Require().NoError(s.storage.AddRecord(s.ctx, &record))
	s.NotZero(record.ID)
}

func (s *StorageSuite) TestTotals() {
	now := time.Now().UTC()
	s.addRecord(1, model.Income, "Salary", "2500", now)
	s.addRecord(1, model.Expense, "Food", "1000", now)
	s.addRecord(2, model.Expense, "Food", "77.70", now)

	income, expense, err := s.storage.Totals(s.ctx, 1, model.AllTime())
	s.Require().NoError(err)
	s.Equal("2500.00", income.StringFixed(2))
	s.Equal("1000.00", expense.StringFixed(2))

	income, expense, err = s.storage.Totals(s.ctx, 2, model.AllTime())
	s.Require().NoError(err)
	s.True(income.IsZero())
	s.Equal("77.70", expense.StringFixed(2))
}

func (s *StorageSuite) TestTotals_NoRecords() {
	income, expense, err := s.storage.Totals(s.ctx, 42, model.AllTime())
	s.Require().NoError(err)
	s.True(income.IsZero())
	s.True(expense.IsZero())

	net, err := s.storage.NetDebt(s.ctx, 42)
	s.Require().NoError(err)
	s.True(net.IsZero())
}

func (s *StorageSuite) TestTotals_MonthWindow() {
	s.addRecord(1, model.Expense, "Food", "10.50", time.Date(2026, time.September, 30, 23, 59, 59, 0, time.UTC))
	s.addRecord(1, model.Expense, "Food", "20", time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC))
	s.addRecord(1, model.Expense, "Rent", "300", time.Date(2026, time.October, 31, 23, 0, 0, 0, time.UTC))
	s.addRecord(1, model.Expense, "Rent", "300", time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC))

	_, expense, err := s.storage.Totals(s.ctx, 1, model.Month(2026, time.October))
	s.Require().NoError(err)
	s.Equal("320.00", expense.StringFixed(2))
}

func (s *StorageSuite) TestCategoryTotals() {
	now := time.Now().UTC()
	s.addRecord(1, model.Expense, "Coffee", "3.50", now)
	s.addRecord(1, model.Expense, "Rent", "560", now)
	s.addRecord(1, model.Expense, "Coffee", "2", now)
	s.addRecord(1, model.Expense, "Food", "20.40", now)
	s.addRecord(1, model.Income, "Salary", "1000", now)

	totals, err := s.storage.CategoryTotals(s.ctx, 1, model.Expense, model.AllTime())
	s.Require().NoError(err)
	s.Require().Len(totals, 3)
	s.Equal("Rent", totals[0].Category)
	s.Equal("560.00", totals[0].Amount.StringFixed(2))
	s.Equal("Food", totals[1].Category)
	s.Equal("Coffee", totals[2].Category)
	s.Equal("5.50", totals[2].Amount.StringFixed(2))
}

func (s *StorageSuite) TestMonthlyTotals() {
	s.addRecord(1, model.Income, "Salary", "2500", time.Date(2026, time.September, 5, 10, 0, 0, 0, time.UTC))
	s.addRecord(1, model.Expense, "Food", "100", time.Date(2026, time.September, 6, 10, 0, 0, 0, time.UTC))
	s.addRecord(1, model.Expense, "Food", "40", time.Date(2026, time.October, 2, 10, 0, 0, 0, time.UTC))

	totals, err := s.storage.MonthlyTotals(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(totals, 2)
	s.Equal(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), totals[0].Month)
	s.True(totals[0].Income.IsZero())
	s.Equal("40.00", totals[0].Expense.StringFixed(2))
	s.Equal("2400.00", totals[1].Balance().StringFixed(2))
}

func (s *StorageSuite) TestAddCategory_Duplicate() {
	category := model.Category{UserID: 1, Kind: model.Expense, Name: "Pets"}
	s.Require().NoError(s.storage.AddCategory(s.ctx, &category))
	s.NotZero(category.ID)

	duplicate := model.Category{UserID: 1, Kind: model.Expense, Name: "Pets"}
	s.ErrorIs(s.storage.AddCategory(s.ctx, &duplicate), DuplicateCategoryErr)

	// same name is fine for the other kind and for other users
	s.NoError(s.storage.AddCategory(s.ctx, &model.Category{UserID: 1, Kind: model.Income, Name: "Pets"}))
	s.NoError(s.storage.AddCategory(s.ctx, &model.Category{UserID: 2, Kind: model.Expense, Name: "Pets"}))

	categories, err := s.storage.Categories(s.ctx, 1, model.Expense)
	s.Require().NoError(err)
	s.Require().Len(categories, 1)
	s.Equal("Pets", categories[0].Name)
}

func (s *StorageSuite) TestDebts() {
	now := time.Now().UTC()
	alice := model.Debt{UserID: 1, Counterparty: "Alice", Amount: decimal.NewFromInt(3000), Date: now}
	bob := model.Debt{UserID: 1, Counterparty: "Bob", Amount: decimal.NewFromInt(-500), Note: "pizza", Date: now}
	s.Require().NoError(s.storage.AddDebt(s.ctx, &alice))
	s.Require().NoError(s.storage.AddDebt(s.ctx, &bob))

	net, err := s.storage.NetDebt(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("2500.00", net.StringFixed(2))

	debts, err := s.storage.Debts(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(debts, 2)
	s.Equal("Bob", debts[1].Counterparty)
	s.Equal("pizza", debts[1].Note)
	s.Equal(model.Owe, debts[1].Direction())

	// another user cannot settle it
	s.ErrorIs(s.storage.DeleteDebt(s.ctx, 2, alice.ID), DebtNotFoundErr)

	s.Require().NoError(s.storage.DeleteDebt(s.ctx, 1, alice.ID))
	s.ErrorIs(s.storage.DeleteDebt(s.ctx, 1, alice.ID), DebtNotFoundErr)

	net, err = s.storage.NetDebt(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("-500.00", net.StringFixed(2))
}

func (s *StorageSuite) TestDeleteByUser() {
	now := time.Now().UTC()
	for _, userID := range []int64{1, 2} {
		s.addRecord(userID, model.Income, "Salary", "100", now)
		s.Require().NoError(s.storage.AddDebt(s.ctx, &model.Debt{UserID: userID, Counterparty: "Alice",
			Amount: decimal.NewFromInt(10), Date: now}))
		s.Require().NoError(s.storage.AddCategory(s.ctx, &model.Category{UserID: userID, Kind: model.Income, Name: "Bonus"}))
	}

	s.Require().NoError(s.storage.DeleteByUser(s.ctx, 1))

	income, _, err := s.storage.Totals(s.ctx, 1, model.AllTime())
	s.Require().NoError(err)
	s.True(income.IsZero())
	debts, err := s.storage.Debts(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(debts)
	categories, err := s.storage.Categories(s.ctx, 1, model.Income)
	s.Require().NoError(err)
	s.Empty(categories)

	income, _, err = s.storage.Totals(s.ctx, 2, model.AllTime())
	s.Require().NoError(err)
	s.Equal("100.00", income.StringFixed(2))
	debts, err = s.storage.Debts(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(debts, 1)
	categories, err = s.storage.Categories(s.ctx, 2, model.Income)
	s.Require().NoError(err)
	s.Len(categories, 1)
}
