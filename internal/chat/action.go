package chat

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownAction marks an action type the executor does not recognize.
var ErrUnknownAction = errors.New("unknown action type")

// ActionType names a staged mutation.
type ActionType string

const (
	ActionCreateBudget           ActionType = "create_budget"
	ActionCreateSavingsGoal      ActionType = "create_savings_goal"
	ActionCreateScheduledPayment ActionType = "create_scheduled_payment"
	ActionAddTransaction         ActionType = "add_transaction"
)

// ParseActionType validates a wire-level action type string.
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(s); t {
	case ActionCreateBudget, ActionCreateSavingsGoal, ActionCreateScheduledPayment, ActionAddTransaction:
		return t, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAction, s)
}

// ActionParams is the typed payload of a staged action. One concrete record
// exists per ActionType; the interface is closed over this package.
type ActionParams interface {
	ActionType() ActionType
}

// BudgetParams creates a spending budget.
type BudgetParams struct {
	Name     string
	Amount   float64
	Category string
	Period   string
}

func (BudgetParams) ActionType() ActionType { return ActionCreateBudget }

// GoalParams creates a savings goal.
type GoalParams struct {
	Name         string
	TargetAmount float64
	Deadline     *time.Time
}

func (GoalParams) ActionType() ActionType { return ActionCreateSavingsGoal }

// PaymentParams schedules a recurring payment reminder.
type PaymentParams struct {
	Name      string
	Amount    float64
	Category  string
	DueDate   time.Time
	Frequency string
}

func (PaymentParams) ActionType() ActionType { return ActionCreateScheduledPayment }

// TransactionParams records a one-off expense or income entry.
type TransactionParams struct {
	Description string
	Amount      float64
	Category    string
	Type        string
	Date        *time.Time
}

func (TransactionParams) ActionType() ActionType { return ActionAddTransaction }

// PendingAction is a staged, not-yet-applied mutation awaiting explicit user
// confirmation. It lives only inside a Session and is never persisted.
type PendingAction struct {
	ID               string
	Type             ActionType
	Params           ActionParams
	ConfirmationText string
	CreatedAt        time.Time
}
