package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var InvalidAmountErr = errors.New("amount must be a positive number")

// MaxAmount is the largest amount both stores hold exactly: NUMERIC(14, 2) in postgres, int64 cents in sqlite
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ParseAmount reads "<amount> [note]". Both "." and "," are accepted as the decimal separator,
// the amount is rounded to cents and must stay above zero and not exceed MaxAmount
func ParseAmount(text string) (decimal.Decimal, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return decimal.Zero, "", fmt.Errorf("%w: empty input", InvalidAmountErr)
	}

	raw := strings.ReplaceAll(fields[0], ",", ".")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("%w: %q", InvalidAmountErr, fields[0])
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, "", fmt.Errorf("%w: %q", InvalidAmountErr, fields[0])
	}
	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, "", fmt.Errorf("%w: %q is above %s", InvalidAmountErr, fields[0], MaxAmount.StringFixed(2))
	}
	return amount, strings.Join(fields[1:], " "), nil
}
