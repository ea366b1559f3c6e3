package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	beginningOfTime = time.Unix(0, 0).UTC()
	endOfTime       = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Window is a half-open time range [From, To). Zero bounds are open
type Window struct {
	From time.Time
	To   time.Time
}

func AllTime() Window {
	return Window{}
}

// Month returns the window of one calendar month in UTC
func Month(year int, month time.Month) Window {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Window{
		From: from,
		To:   from.AddDate(0, 1, 0),
	}
}

func (w Window) IsAllTime() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Bounds returns concrete bounds usable in range queries
func (w Window) Bounds() (time.Time, time.Time) {
	from, to := w.From, w.To
	if from.IsZero() {
		from = beginningOfTime
	}
	if to.IsZero() {
		to = endOfTime
	}
	return from.UTC(), to.UTC()
}

// Summary holds the derived figures of a ledger
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	// Balance is Income - Expense
	Balance decimal.Decimal
	NetDebt decimal.Decimal
	// Total is Balance + NetDebt
	Total decimal.Decimal
}

type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

type MonthTotal struct {
	Month   time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (m MonthTotal) Balance() decimal.Decimal {
	return m.Income.Sub(m.Expense)
}
