package model

import "time"

// Step is the position of a user inside an entry wizard
type Step string

const (
	StepIdle                  Step = "idle"
	StepChoosingCategory      Step = "choosing_category"
	StepEnteringAmount        Step = "entering_amount"
	StepChoosingDebtDirection Step = "choosing_debt_direction"
	StepEnteringCounterparty  Step = "entering_counterparty"
	StepEnteringDebtAmount    Step = "entering_debt_amount"
	StepChoosingCategoryKind  Step = "choosing_category_kind"
	StepEnteringCategoryName  Step = "entering_category_name"
	StepConfirmingWipe        Step = "confirming_wipe"
)

// Session is the ephemeral progress of one user through a wizard
type Session struct {
	UserID       int64     `bson:"user_id"`
	Step         Step      `bson:"step"`
	Kind         Kind      `bson:"kind,omitempty"`
	Category     string    `bson:"category,omitempty"`
	Direction    Direction `bson:"direction,omitempty"`
	Counterparty string    `bson:"counterparty,omitempty"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func NewSession(userID int64) *Session {
	return &Session{
		UserID: userID,
		Step:   StepIdle,
	}
}

func (s *Session) Idle() bool {
	return s == nil || s.Step == StepIdle || s.Step == ""
}
