package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is income or expense
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Income, Expense:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown kind: %q", s)
}

// Direction says who owes whom
type Direction string

const (
	// Owe means the user owes the counterparty, stored with a negative amount
	Owe Direction = "owe"
	// Owed means the counterparty owes the user, stored with a positive amount
	Owed Direction = "owed"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Owe, Owed:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction: %q", s)
}

// Record is one income or expense entry. Amount is always positive, Kind carries the sign
type Record struct {
	ID       int64
	UserID   int64
	Kind     Kind
	Category string
	Amount   decimal.Decimal
	Note     string
	Date     time.Time
}

// Debt is a signed balance with a counterparty: positive is owed to the user, negative is owed by the user
type Debt struct {
	ID           int64
	UserID       int64
	Counterparty string
	Amount       decimal.Decimal
	Note         string
	Date         time.Time
}

func (d *Debt) Direction() Direction {
	if d.Amount.IsNegative() {
		return Owe
	}
	return Owed
}

// Category is a user defined label, unique per (UserID, Kind, Name)
type Category struct {
	ID     int64
	UserID int64
	Kind   Kind
	Name   string
}
