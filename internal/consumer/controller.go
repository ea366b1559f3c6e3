package consumer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/producer"
	"github.com/chucky-1/ledgerbot/internal/repository"
	"github.com/chucky-1/ledgerbot/internal/service"
)

const (
	categoryNameTags = "required,max=32"
	counterpartyTags = "required,max=64"
	noteTags         = "max=255"
)

// selection token keys
const (
	keyAction     = "action"
	keyCategory   = "category"
	keyDebtDir    = "debt_dir"
	keyCatKind    = "cat_kind"
	keyDebtAction = "debt_action"
	keyID         = "id"
	keyWipe       = "wipe"
)

const (
	actionMenu       = "menu"
	actionDebtAdd    = "debt_add"
	debtActionPay    = "pay"
	debtActionReturn = "return"
	wipeConfirm      = "confirm"
)

var helpMessage = "I keep track of your income, expenses and debts.\n\n" +
	"Pick an action below or use the commands from the menu. " +
	"When I ask for an amount, send a number, optionally followed by a note: 250 lunch"

const (
	tryLaterMessage        = "Something went wrong on my side, please try again later"
	badOptionMessage       = "I couldn't process that option"
	staleOptionMessage     = "That option is no longer active"
	pickOptionMessage      = "Please pick one of the options below"
	unknownCategoryMessage = "I don't know this category, please choose one from the list"
	invalidAmountMessage   = "The amount must be a positive number up to 999999999999.99, e.g. 250 or 12,50"
	longNoteMessage        = "The note is too long, keep it under 255 characters"
	badCounterpartyMessage = "The name must be 1 to 64 characters long"
	badCategoryMessage     = "The category name must be 1 to 32 characters long"
)

var (
	mainMenu = []model.Option{
		{Label: "Income", Token: model.EncodeToken(keyAction, model.CommandIncome)},
		{Label: "Expense", Token: model.EncodeToken(keyAction, model.CommandExpense)},
		{Label: "Debts", Token: model.EncodeToken(keyAction, model.CommandDebts)},
		{Label: "Balance", Token: model.EncodeToken(keyAction, model.CommandBalance)},
		{Label: "Statistics", Token: model.EncodeToken(keyAction, model.CommandStats)},
		{Label: "Add category", Token: model.EncodeToken(keyAction, model.CommandCategory)},
	}
	cancelOption = model.Option{Label: "Cancel", Token: model.EncodeToken(keyAction, model.CommandCancel)}
)

// Controller leads a user through the entry wizards, one event at a time
type Controller struct {
	sessions  service.Sessions
	recorder  service.Recorder
	debts     service.DebtBook
	cleaner   service.Cleaner
	reports   service.Reports
	validator *validator.Validate
	timeout   time.Duration
	now       func() time.Time
}

func NewController(sessions service.Sessions, recorder service.Recorder, debts service.DebtBook, cleaner service.Cleaner,
	reports service.Reports, validator *validator.Validate, timeout time.Duration) *Controller {
	return &Controller{
		sessions:  sessions,
		recorder:  recorder,
		debts:     debts,
		cleaner:   cleaner,
		reports:   reports,
		validator: validator,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Handle never fails: every error ends as a short message and the main menu
func (c *Controller) Handle(ctx context.Context, event model.Event) model.Reply {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, err := c.sessions.Get(ctx, event.UserID)
	if err != nil {
		return c.fail(ctx, event.UserID, err)
	}
	if session == nil {
		session = model.NewSession(event.UserID)
	}

	var reply model.Reply
	switch event.Kind {
	case model.EventCommand:
		reply, err = c.action(ctx, session, event.Text)
	case model.EventSelection:
		reply, err = c.selection(ctx, session, event.Token)
	case model.EventText:
		reply, err = c.text(ctx, session, event.Text)
	default:
		err = fmt.Errorf("unknown event kind %d", event.Kind)
	}
	if err != nil {
		return c.fail(ctx, event.UserID, err)
	}
	return reply
}

func (c *Controller) action(ctx context.Context, s *model.Session, name string) (model.Reply, error) {
	userID := s.UserID
	switch name {
	case model.CommandStart, model.CommandHelp:
		c.finish(ctx, userID)
		return withMenu(helpMessage), nil
	case actionMenu:
		c.finish(ctx, userID)
		return withMenu("Main menu"), nil
	case model.CommandCancel:
		c.finish(ctx, userID)
		return withMenu("Cancelled"), nil
	case model.CommandIncome:
		return c.enter(ctx, &model.Session{UserID: userID, Step: model.StepChoosingCategory, Kind: model.Income}, "")
	case model.CommandExpense:
		return c.enter(ctx, &model.Session{UserID: userID, Step: model.StepChoosingCategory, Kind: model.Expense}, "")
	case actionDebtAdd:
		return c.enter(ctx, &model.Session{UserID: userID, Step: model.StepChoosingDebtDirection}, "")
	case model.CommandCategory:
		return c.enter(ctx, &model.Session{UserID: userID, Step: model.StepChoosingCategoryKind}, "")
	case model.CommandWipe:
		return c.enter(ctx, &model.Session{UserID: userID, Step: model.StepConfirmingWipe}, "")
	case model.CommandDebts:
		c.finish(ctx, userID)
		return c.debtMenu(ctx, userID)
	case model.CommandBalance:
		c.finish(ctx, userID)
		return c.balance(ctx, userID)
	case model.CommandStats:
		c.finish(ctx, userID)
		return c.stats(ctx, userID)
	}
	logrus.Infof("unknown action from user %d: %s", userID, name)
	return withMenu(helpMessage), nil
}

func (c *Controller) selection(ctx context.Context, s *model.Session, raw string) (model.Reply, error) {
	token, err := model.ParseToken(raw)
	if err != nil {
		logrus.Warnf("user %d sent a bad selection: %v", s.UserID, err)
		return withMenu(badOptionMessage), nil
	}

	switch {
	case token.Has(keyAction):
		return c.action(ctx, s, token.Get(keyAction))
	case token.Has(keyCategory):
		return c.pickCategory(ctx, s, token)
	case token.Has(keyDebtDir):
		return c.pickDirection(ctx, s, token)
	case token.Has(keyCatKind):
		return c.pickCategoryKind(ctx, s, token)
	case token.Has(keyDebtAction):
		return c.debtAction(ctx, s, token)
	case token.Has(keyWipe):
		return c.confirmWipe(ctx, s, token)
	}
	logrus.Warnf("user %d sent an unknown selection: %q", s.UserID, raw)
	return withMenu(badOptionMessage), nil
}

func (c *Controller) text(ctx context.Context, s *model.Session, text string) (model.Reply, error) {
	switch s.Step {
	case model.StepEnteringAmount:
		return c.enterAmount(ctx, s, text)
	case model.StepEnteringCounterparty:
		return c.enterCounterparty(ctx, s, text)
	case model.StepEnteringDebtAmount:
		return c.enterDebtAmount(ctx, s, text)
	case model.StepEnteringCategoryName:
		return c.enterCategoryName(ctx, s, text)
	case model.StepChoosingCategory, model.StepChoosingDebtDirection, model.StepChoosingCategoryKind, model.StepConfirmingWipe:
		return c.enter(ctx, s, pickOptionMessage)
	}
	logrus.Debugf("received message without an active wizard from user %d", s.UserID)
	return withMenu(helpMessage), nil
}

func (c *Controller) pickCategory(ctx context.Context, s *model.Session, token model.Token) (model.Reply, error) {
	if s.Step != model.StepChoosingCategory {
		return c.stale(ctx, s)
	}
	idx, err := token.Int(keyCategory)
	if err != nil {
		logrus.Warnf("user %d sent a bad category: %v", s.UserID, err)
		return c.enter(ctx, s, unknownCategoryMessage)
	}
	names, err := c.recorder.Categories(ctx, s.UserID, s.Kind)
	if err != nil {
		return model.Reply{}, err
	}
	if idx < 0 || idx >= int64(len(names)) {
		return c.enter(ctx, s, unknownCategoryMessage)
	}

	s.Category = names[idx]
	s.Step = model.StepEnteringAmount
	return c.enter(ctx, s, "")
}

func (c *Controller) pickDirection(ctx context.Context, s *model.Session, token model.Token) (model.Reply, error) {
	if s.Step != model.StepChoosingDebtDirection {
		return c.stale(ctx, s)
	}
	direction, err := model.ParseDirection(token.Get(keyDebtDir))
	if err != nil {
		logrus.Warnf("user %d sent a bad debt direction: %v", s.UserID, err)
		return c.enter(ctx, s, badOptionMessage)
	}

	s.Direction = direction
	s.Step = model.StepEnteringCounterparty
	return c.enter(ctx, s, "")
}

func (c *Controller) pickCategoryKind(ctx context.Context, s *model.Session, token model.Token) (model.Reply, error) {
	if s.Step != model.StepChoosingCategoryKind {
		return c.stale(ctx, s)
	}
	kind, err := model.ParseKind(token.Get(keyCatKind))
	if err != nil {
		logrus.Warnf("user %d sent a bad category kind: %v", s.UserID, err)
		return c.enter(ctx, s, badOptionMessage)
	}

	s.Kind = kind
	s.Step = model.StepEnteringCategoryName
	return c.enter(ctx, s, "")
}

func (c *Controller) enterAmount(ctx context.Context, s *model.Session, text string) (model.Reply, error) {
	amount, note, err := service.ParseAmount(text)
	if err != nil {
		logrus.Debugf("user %d entered a wrong amount: %v", s.UserID, err)
		return c.enter(ctx, s, invalidAmountMessage)
	}
	if !c.validate(note, noteTags) {
		return c.enter(ctx, s, longNoteMessage)
	}

	record := model.Record{
		UserID:   s.UserID,
		Kind:     s.Kind,
		Category: s.Category,
		Amount:   amount,
		Note:     note,
	}
	if err = c.recorder.Add(ctx, &record); err != nil {
		return model.Reply{}, err
	}
	c.finish(ctx, s.UserID)

	logrus.Infof("user %d added %s %s: %s", s.UserID, s.Kind, s.Category, producer.Money(amount))
	return withMenu(fmt.Sprintf("%s %s added to %s", kindTitle(s.Kind), producer.Money(amount), s.Category)), nil
}

func (c *Controller) enterCounterparty(ctx context.Context, s *model.Session, text string) (model.Reply, error) {
	name := strings.TrimSpace(text)
	if !c.validate(name, counterpartyTags) {
		return c.enter(ctx, s, badCounterpartyMessage)
	}

	s.Counterparty = name
	s.Step = model.StepEnteringDebtAmount
	return c.enter(ctx, s, "")
}

func (c *Controller) enterDebtAmount(ctx context.Context, s *model.Session, text string) (model.Reply, error) {
	amount, note, err := service.ParseAmount(text)
	if err != nil {
		logrus.Debugf("user %d entered a wrong debt amount: %v", s.UserID, err)
		return c.enter(ctx, s, invalidAmountMessage)
	}
	if !c.validate(note, noteTags) {
		return c.enter(ctx, s, longNoteMessage)
	}
	if s.Direction == model.Owe {
		amount = amount.Neg()
	}

	debt := model.Debt{
		UserID:       s.UserID,
		Counterparty: s.Counterparty,
		Amount:       amount,
		Note:         note,
	}
	if err = c.debts.Add(ctx, &debt); err != nil {
		return model.Reply{}, err
	}
	c.finish(ctx, s.UserID)

	logrus.Infof("user %d added debt %d: %s", s.UserID, debt.ID, producer.Money(amount))
	return withMenu(fmt.Sprintf("Debt recorded: %s", producer.DebtLabel(debt))), nil
}

func (c *Controller) enterCategoryName(ctx context.Context, s *model.Session, text string) (model.Reply, error) {
	name := strings.TrimSpace(text)
	if !c.validate(name, categoryNameTags) {
		return c.enter(ctx, s, badCategoryMessage)
	}

	err := c.recorder.AddCategory(ctx, &model.Category{UserID: s.UserID, Kind: s.Kind, Name: name})
	if errors.Is(err, repository.DuplicateCategoryErr) {
		logrus.Debugf("user %d tried to add existing category %s", s.UserID, name)
		c.finish(ctx, s.UserID)
		return withMenu(fmt.Sprintf("Category %s already exists", name)), nil
	}
	if err != nil {
		return model.Reply{}, err
	}
	c.finish(ctx, s.UserID)

	logrus.Infof("user %d added %s category %s", s.UserID, s.Kind, name)
	return withMenu(fmt.Sprintf("Category %s added", name)), nil
}

func (c *Controller) debtAction(ctx context.Context, s *model.Session, token model.Token) (model.Reply, error) {
	action := token.Get(keyDebtAction)
	var direction model.Direction
	switch action {
	case debtActionPay:
		direction = model.Owe
	case debtActionReturn:
		direction = model.Owed
	default:
		logrus.Warnf("user %d sent an unknown debt action: %q", s.UserID, action)
		return withMenu(badOptionMessage), nil
	}
	c.finish(ctx, s.UserID)

	if !token.Has(keyID) {
		return c.debtCandidates(ctx, s.UserID, action, direction)
	}
	id, err := token.Int(keyID)
	if err != nil {
		logrus.Warnf("user %d sent a bad debt id: %v", s.UserID, err)
		return withMenu(badOptionMessage), nil
	}

	err = c.debts.Settle(ctx, s.UserID, id)
	if errors.Is(err, repository.DebtNotFoundErr) {
		return withMenu("Debt not found"), nil
	}
	if err != nil {
		return model.Reply{}, err
	}

	logrus.Infof("user %d settled debt %d", s.UserID, id)
	return withMenu("Debt settled"), nil
}

func (c *Controller) debtCandidates(ctx context.Context, userID int64, action string, direction model.Direction) (model.Reply, error) {
	debts, err := c.debts.List(ctx, userID, direction)
	if err != nil {
		return model.Reply{}, err
	}
	if len(debts) == 0 {
		if direction == model.Owe {
			return withMenu("You don't owe anybody"), nil
		}
		return withMenu("Nobody owes you"), nil
	}

	options := make([]model.Option, 0, len(debts)+1)
	for _, debt := range debts {
		options = append(options, model.Option{
			Label: producer.DebtLabel(debt),
			Token: model.EncodeToken(keyDebtAction, action, keyID, strconv.FormatInt(debt.ID, 10)),
		})
	}
	options = append(options, cancelOption)

	text := "Which debt have you paid back?"
	if direction == model.Owed {
		text = "Which debt has been returned to you?"
	}
	return model.Reply{Text: text, Options: options}, nil
}

func (c *Controller) debtMenu(ctx context.Context, userID int64) (model.Reply, error) {
	debts, err := c.debts.List(ctx, userID, "")
	if err != nil {
		return model.Reply{}, err
	}
	return model.Reply{
		Text: producer.FormatDebts(debts),
		Options: []model.Option{
			{Label: "Add a debt", Token: model.EncodeToken(keyAction, actionDebtAdd)},
			{Label: "I paid back", Token: model.EncodeToken(keyDebtAction, debtActionPay)},
			{Label: "I got it back", Token: model.EncodeToken(keyDebtAction, debtActionReturn)},
			{Label: "Main menu", Token: model.EncodeToken(keyAction, actionMenu)},
		},
	}, nil
}

func (c *Controller) confirmWipe(ctx context.Context, s *model.Session, token model.Token) (model.Reply, error) {
	if s.Step != model.StepConfirmingWipe || token.Get(keyWipe) != wipeConfirm {
		return c.stale(ctx, s)
	}
	if err := c.cleaner.Wipe(ctx, s.UserID); err != nil {
		return model.Reply{}, err
	}
	c.finish(ctx, s.UserID)
	return withMenu("All your records, debts and categories have been deleted"), nil
}

func (c *Controller) balance(ctx context.Context, userID int64) (model.Reply, error) {
	summary, err := c.reports.Summary(ctx, userID, model.AllTime())
	if err != nil {
		return model.Reply{}, err
	}
	return withMenu(producer.FormatSummary("Your balance", summary)), nil
}

func (c *Controller) stats(ctx context.Context, userID int64) (model.Reply, error) {
	monthly, err := c.reports.Monthly(ctx, userID)
	if err != nil {
		return model.Reply{}, err
	}

	now := c.now().UTC()
	window := model.Month(now.Year(), now.Month())
	expenses, err := c.reports.Breakdown(ctx, userID, model.Expense, window)
	if err != nil {
		return model.Reply{}, err
	}
	incomes, err := c.reports.Breakdown(ctx, userID, model.Income, window)
	if err != nil {
		return model.Reply{}, err
	}

	title := fmt.Sprintf("%s %d", now.Month(), now.Year())
	return withMenu(strings.Join([]string{
		producer.FormatMonthly(monthly),
		producer.FormatBreakdown(title+", expenses by category:", expenses),
		producer.FormatBreakdown(title+", income by category:", incomes),
	}, "\n\n")), nil
}

// enter stores the session and asks for the input of its step, notice goes first when set
func (c *Controller) enter(ctx context.Context, s *model.Session, notice string) (model.Reply, error) {
	reply, err := c.prompt(ctx, s)
	if err != nil {
		return model.Reply{}, err
	}
	if err = c.sessions.Set(ctx, s); err != nil {
		return model.Reply{}, err
	}
	if notice != "" {
		reply.Text = notice + "\n\n" + reply.Text
	}
	return reply, nil
}

func (c *Controller) prompt(ctx context.Context, s *model.Session) (model.Reply, error) {
	switch s.Step {
	case model.StepChoosingCategory:
		names, err := c.recorder.Categories(ctx, s.UserID, s.Kind)
		if err != nil {
			return model.Reply{}, err
		}
		options := make([]model.Option, 0, len(names)+1)
		for i, name := range names {
			options = append(options, model.Option{Label: name, Token: model.EncodeToken(keyCategory, strconv.Itoa(i))})
		}
		options = append(options, cancelOption)
		return model.Reply{
			Text:    fmt.Sprintf("Choose a category for %s:", strings.ToLower(kindTitle(s.Kind))),
			Options: options,
		}, nil

	case model.StepEnteringAmount:
		return model.Reply{
			Text:    fmt.Sprintf("Category: %s\nEnter the amount and, if you like, a note: 250 lunch", s.Category),
			Options: []model.Option{cancelOption},
		}, nil

	case model.StepChoosingDebtDirection:
		return model.Reply{
			Text: "Who owes whom?",
			Options: []model.Option{
				{Label: "I owe", Token: model.EncodeToken(keyDebtDir, string(model.Owe))},
				{Label: "I am owed", Token: model.EncodeToken(keyDebtDir, string(model.Owed))},
				cancelOption,
			},
		}, nil

	case model.StepEnteringCounterparty:
		text := "Who do you owe?"
		if s.Direction == model.Owed {
			text = "Who owes you?"
		}
		return model.Reply{Text: text, Options: []model.Option{cancelOption}}, nil

	case model.StepEnteringDebtAmount:
		return model.Reply{
			Text:    fmt.Sprintf("Debt with %s\nEnter the amount and, if you like, a note", s.Counterparty),
			Options: []model.Option{cancelOption},
		}, nil

	case model.StepChoosingCategoryKind:
		return model.Reply{
			Text: "What is the new category for?",
			Options: []model.Option{
				{Label: "Income", Token: model.EncodeToken(keyCatKind, string(model.Income))},
				{Label: "Expenses", Token: model.EncodeToken(keyCatKind, string(model.Expense))},
				cancelOption,
			},
		}, nil

	case model.StepEnteringCategoryName:
		return model.Reply{
			Text:    fmt.Sprintf("Enter the name of the new %s category:", s.Kind),
			Options: []model.Option{cancelOption},
		}, nil

	case model.StepConfirmingWipe:
		return model.Reply{
			Text: "This deletes all your records, debts and categories and cannot be undone. Are you sure?",
			Options: []model.Option{
				{Label: "Yes, delete everything", Token: model.EncodeToken(keyWipe, wipeConfirm)},
				cancelOption,
			},
		}, nil
	}
	return withMenu(helpMessage), nil
}

func (c *Controller) stale(ctx context.Context, s *model.Session) (model.Reply, error) {
	if s.Idle() {
		return withMenu(staleOptionMessage), nil
	}
	return c.enter(ctx, s, staleOptionMessage)
}

// finish ends the wizard of the user. The outcome is already stored, so a failure here is only logged
func (c *Controller) finish(ctx context.Context, userID int64) {
	if err := c.sessions.Clear(ctx, userID); err != nil {
		logrus.Errorf("couldn't clear session of user %d: %v", userID, err)
	}
}

// fail abandons the wizard so the user is never stuck in it
func (c *Controller) fail(ctx context.Context, userID int64, err error) model.Reply {
	logrus.Errorf("handling event of user %d: %v", userID, err)
	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	c.finish(clearCtx, userID)
	return withMenu(tryLaterMessage)
}

func (c *Controller) validate(value string, tags string) bool {
	return c.validator.Var(value, tags) == nil
}

func withMenu(text string) model.Reply {
	return model.Reply{Text: text, Options: mainMenu}
}

func kindTitle(kind model.Kind) string {
	if kind == model.Income {
		return "Income"
	}
	return "Expense"
}
