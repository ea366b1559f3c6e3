package producer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chucky-1/ledgerbot/internal/model"
)

// Money formats every monetary figure the bot shows
func Money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func FormatSummary(title string, s *model.Summary) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Income: %s\n", Money(s.Income))
	fmt.Fprintf(&b, "Expenses: %s\n", Money(s.Expense))
	fmt.Fprintf(&b, "Balance: %s\n", Money(s.Balance))
	fmt.Fprintf(&b, "Debts: %s\n", Money(s.NetDebt))
	fmt.Fprintf(&b, "Total with debts: %s", Money(s.Total))
	return b.String()
}

// FormatBreakdown lists categories in the given order followed by their total
func FormatBreakdown(title string, totals []model.CategoryTotal) string {
	if len(totals) == 0 {
		return title + "\nNothing recorded"
	}
	report := title + "\n"
	total := decimal.Zero
	for _, t := range totals {
		report += fmt.Sprintf("%s - %s\n", t.Category, Money(t.Amount))
		total = total.Add(t.Amount)
	}
	return fmt.Sprintf("%sTotal - %s", report, Money(total))
}

func FormatMonthly(totals []model.MonthTotal) string {
	if len(totals) == 0 {
		return "No data for statistics yet"
	}
	var b strings.Builder
	b.WriteString("Statistics by month:")
	for _, t := range totals {
		fmt.Fprintf(&b, "\n%s %d: income %s | expenses %s | balance %s",
			t.Month.Month(), t.Month.Year(), Money(t.Income), Money(t.Expense), Money(t.Balance()))
	}
	return b.String()
}

func FormatDebts(debts []model.Debt) string {
	if len(debts) == 0 {
		return "You have no debts"
	}
	var (
		b   strings.Builder
		net = decimal.Zero
	)
	b.WriteString("Debts:")
	for _, d := range debts {
		fmt.Fprintf(&b, "\n%s", DebtLabel(d))
		if d.Note != "" {
			fmt.Fprintf(&b, " (%s)", d.Note)
		}
		net = net.Add(d.Amount)
	}
	fmt.Fprintf(&b, "\nNet: %s", Money(net))
	return b.String()
}

// DebtLabel is the one line description of a debt, also used on buttons
func DebtLabel(d model.Debt) string {
	if d.Direction() == model.Owe {
		return fmt.Sprintf("You owe %s %s", d.Counterparty, Money(d.Amount.Abs()))
	}
	return fmt.Sprintf("%s owes you %s", d.Counterparty, Money(d.Amount))
}
