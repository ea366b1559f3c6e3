package model

// Slash commands understood by the bot
const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandIncome   = "income"
	CommandExpense  = "expense"
	CommandDebts    = "debts"
	CommandBalance  = "balance"
	CommandStats    = "stats"
	CommandCategory = "category"
	CommandWipe     = "wipe"
	CommandCancel   = "cancel"
)

type Command struct {
	Name        string
	Description string
}

// Commands form the persistent menu of the bot
var Commands = []Command{
	{Name: CommandIncome, Description: "Record income"},
	{Name: CommandExpense, Description: "Record an expense"},
	{Name: CommandDebts, Description: "Debts"},
	{Name: CommandBalance, Description: "Balance"},
	{Name: CommandStats, Description: "Statistics"},
	{Name: CommandCategory, Description: "Add a category"},
	{Name: CommandCancel, Description: "Cancel the current action"},
	{Name: CommandWipe, Description: "Delete all my data"},
	{Name: CommandHelp, Description: "Help"},
}
