package agent

import (
	"context"
	"fmt"
	"strconv"

	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/finance"
	"github.com/paisapal/paisapal-go/internal/logger"
)

// ExecutionResult reports the outcome of applying a confirmed action.
type ExecutionResult struct {
	Success bool
	Detail  string
}

// Executor applies a confirmed PendingAction against the data layer.
// Each action type maps to exactly one mutation call; omitted optional
// fields get fixed defaults.
type Executor struct {
	api finance.API
}

// NewExecutor wires the executor to the data layer.
func NewExecutor(api finance.API) *Executor {
	return &Executor{api: api}
}

// Execute performs the mutation for a consumed pending action. Failure text
// carries only a short diagnostic suffix, never raw internals. The caller
// is responsible for the consumed-exactly-once guarantee; a stale action
// must not reach this method twice.
func (e *Executor) Execute(ctx context.Context, userID string, pa *chat.PendingAction) ExecutionResult {
	switch p := pa.Params.(type) {
	case chat.BudgetParams:
		category := orDefault(p.Category, "Other")
		period := orDefault(p.Period, "monthly")
		name := orDefault(p.Name, category)
		_, err := e.api.CreateBudget(ctx, userID, name, p.Amount, category, period)
		if err != nil {
			return e.failure("create the budget", err)
		}
		return ExecutionResult{
			Success: true,
			Detail:  fmt.Sprintf("Budget created: %s for %s (%s).", formatAmount(p.Amount), category, period),
		}

	case chat.GoalParams:
		name := orDefault(p.Name, "Savings Goal")
		_, err := e.api.CreateGoal(ctx, userID, name, p.TargetAmount, p.Deadline)
		if err != nil {
			return e.failure("create the savings goal", err)
		}
		return ExecutionResult{
			Success: true,
			Detail:  fmt.Sprintf("Savings goal \"%s\" created with a target of %s.", name, formatAmount(p.TargetAmount)),
		}

	case chat.PaymentParams:
		category := orDefault(p.Category, "Other")
		frequency := orDefault(p.Frequency, "monthly")
		_, err := e.api.CreateScheduledPayment(ctx, userID, p.Name, p.Amount, category, p.DueDate, frequency)
		if err != nil {
			return e.failure("schedule the payment", err)
		}
		return ExecutionResult{
			Success: true,
			Detail: fmt.Sprintf("Payment reminder set: %s, %s %s, next due %s.",
				p.Name, formatAmount(p.Amount), frequency, p.DueDate.Format("2 Jan 2006")),
		}

	case chat.TransactionParams:
		category := orDefault(p.Category, "Other")
		txType := orDefault(p.Type, "expense")
		_, err := e.api.CreateTransaction(ctx, userID, p.Description, p.Amount, category, txType, p.Date)
		if err != nil {
			return e.failure("record the transaction", err)
		}
		return ExecutionResult{
			Success: true,
			Detail:  fmt.Sprintf("Recorded %s: %s on %s.", txType, formatAmount(p.Amount), p.Description),
		}
	}

	logger.L.Error("pending action with unrecognized type reached the executor", "type", pa.Type)
	return ExecutionResult{
		Success: false,
		Detail:  fmt.Sprintf("I don't recognize the action type %q, so nothing was changed.", string(pa.Type)),
	}
}

func (e *Executor) failure(what string, err error) ExecutionResult {
	logger.L.Error("action execution failed", "action", what, "error", err)
	return ExecutionResult{
		Success: false,
		Detail:  fmt.Sprintf("Sorry, I couldn't %s (%s).", what, shortDiagnostic(err)),
	}
}

// shortDiagnostic keeps internal error detail out of user-facing text.
// Truncation counts runes so a multi-byte character is never split.
func shortDiagnostic(err error) string {
	msg := err.Error()
	if runes := []rune(msg); len(runes) > 60 {
		msg = string(runes[:60]) + "…"
	}
	return msg
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// formatAmount renders a rupee amount without trailing decimal noise.
func formatAmount(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', -1, 64)
}
