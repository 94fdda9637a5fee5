package agent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/logger"
	"github.com/paisapal/paisapal-go/internal/tools"
)

// Stager asks the tool layer whether an extracted action needs confirmation
// and, if so, wraps the response into a PendingAction.
type Stager struct {
	tools tools.Client
}

// NewStager wires the stager to the tool layer.
func NewStager(t tools.Client) *Stager {
	return &Stager{tools: t}
}

// Stage submits the typed parameters to the tool layer. It returns a
// PendingAction when confirmation is required, or a direct informational
// message when it isn't. Transport and parse failures propagate as errors;
// they are never collapsed into a nil stage.
func (s *Stager) Stage(ctx context.Context, params chat.ActionParams) (*chat.PendingAction, string, error) {
	actionType := params.ActionType()
	res, err := s.tools.Execute(ctx, string(actionType), paramsToMap(params))
	if err != nil {
		return nil, "", err
	}

	if !res.RequiresConfirmation {
		return nil, res.Message, nil
	}

	id := res.ActionID
	if id == "" {
		// The tool layer should issue the id; mint one locally so the
		// confirm flow still has a handle.
		id = uuid.NewString()
		logger.L.Warn("tool layer staged an action without an id", "action_type", actionType)
	}

	confirmText := res.ConfirmationMessage
	if confirmText == "" {
		confirmText = defaultConfirmationText(params)
	}

	staged := actionType
	if res.ActionType != "" {
		parsed, err := chat.ParseActionType(res.ActionType)
		if err != nil {
			return nil, "", err
		}
		staged = parsed
	}

	return &chat.PendingAction{
		ID:               id,
		Type:             staged,
		Params:           params,
		ConfirmationText: confirmText,
		CreatedAt:        time.Now(),
	}, "", nil
}

// paramsToMap flattens typed parameters into the tool layer's wire format.
func paramsToMap(params chat.ActionParams) map[string]any {
	switch p := params.(type) {
	case chat.BudgetParams:
		return map[string]any{
			"name":     p.Name,
			"amount":   p.Amount,
			"category": p.Category,
			"period":   p.Period,
		}
	case chat.GoalParams:
		out := map[string]any{
			"name":          p.Name,
			"target_amount": p.TargetAmount,
		}
		if p.Deadline != nil {
			out["deadline"] = p.Deadline.Format("2006-01-02")
		}
		return out
	case chat.PaymentParams:
		return map[string]any{
			"name":      p.Name,
			"amount":    p.Amount,
			"category":  p.Category,
			"due_date":  p.DueDate.Format("2006-01-02"),
			"frequency": p.Frequency,
		}
	case chat.TransactionParams:
		out := map[string]any{
			"description": p.Description,
			"amount":      p.Amount,
			"category":    p.Category,
			"type":        p.Type,
		}
		if p.Date != nil {
			out["date"] = p.Date.Format("2006-01-02")
		}
		return out
	}
	return nil
}

func defaultConfirmationText(params chat.ActionParams) string {
	switch p := params.(type) {
	case chat.BudgetParams:
		return "Set a " + p.Period + " budget of " + formatAmount(p.Amount) + " for " + p.Category + "?"
	case chat.GoalParams:
		return "Create savings goal \"" + p.Name + "\" with a target of " + formatAmount(p.TargetAmount) + "?"
	case chat.PaymentParams:
		return "Set a " + p.Frequency + " payment reminder of " + formatAmount(p.Amount) + " for " + p.Name + "?"
	case chat.TransactionParams:
		return "Record " + formatAmount(p.Amount) + " spent on " + p.Description + "?"
	}
	return "Confirm this action?"
}
