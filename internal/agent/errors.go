package agent

import (
	"errors"
	"strconv"
	"time"

	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/intent"
	"github.com/paisapal/paisapal-go/internal/llm"
	"github.com/paisapal/paisapal-go/internal/slots"
	"github.com/paisapal/paisapal-go/internal/tools"
)

// User-facing error texts, one per failure class. Raw errors never reach
// the user.
const (
	errTextTransport     = "This is taking too long or I couldn't connect. Please try again in a moment."
	errTextConfiguration = "The assistant isn't set up yet. Please check the chat backend configuration."
	errTextMalformed     = "Sorry, something went wrong while reading that response. Please try again."
	errTextUnknownAction = "I don't recognize that action, so nothing was changed."
)

// userFacingError maps an internal error onto display text.
func userFacingError(err error) string {
	switch {
	case err == nil:
		return errTextTransport
	case errors.Is(err, llm.ErrNotConfigured):
		return errTextConfiguration
	case errors.Is(err, chat.ErrUnknownAction):
		return errTextUnknownAction
	case errors.Is(err, tools.ErrMalformedResult):
		return errTextMalformed
	}
	return errTextTransport
}

// clarifyText asks the user to rephrase with an example of expected
// phrasing. A missing amount is a clarification, never an error.
func clarifyText(it intent.Intent, text string) string {
	switch it {
	case intent.Budget:
		return "I couldn't find the amount. Try something like \"Create a monthly budget of ₹5000 for food\"."
	case intent.Goal:
		return "I couldn't find the target amount. Try something like \"Save 50k for a new phone\"."
	case intent.Payment:
		if slots.IsPastSpend(text) {
			return "I couldn't find the amount. Try something like \"I spent 400 on groceries\"."
		}
		return "I couldn't find the amount. Try something like \"Remind me to pay 499 for Netflix every month\"."
	}
	return "Could you rephrase that with the amount included?"
}

// paramsFromMap builds typed action parameters from the chat layer's
// untyped action data.
func paramsFromMap(actionType string, data map[string]any) (chat.ActionParams, error) {
	parsed, err := chat.ParseActionType(actionType)
	if err != nil {
		return nil, err
	}
	switch parsed {
	case chat.ActionCreateBudget:
		return chat.BudgetParams{
			Name:     mapString(data, "name"),
			Amount:   mapFloat(data, "amount"),
			Category: mapString(data, "category"),
			Period:   mapString(data, "period"),
		}, nil
	case chat.ActionCreateSavingsGoal:
		return chat.GoalParams{
			Name:         mapString(data, "name"),
			TargetAmount: mapFloat(data, "target_amount"),
			Deadline:     mapDate(data, "deadline"),
		}, nil
	case chat.ActionCreateScheduledPayment:
		due := mapDate(data, "due_date")
		if due == nil {
			week := time.Now().AddDate(0, 0, 7)
			due = &week
		}
		return chat.PaymentParams{
			Name:      mapString(data, "name"),
			Amount:    mapFloat(data, "amount"),
			Category:  mapString(data, "category"),
			DueDate:   *due,
			Frequency: mapString(data, "frequency"),
		}, nil
	case chat.ActionAddTransaction:
		return chat.TransactionParams{
			Description: mapString(data, "description"),
			Amount:      mapFloat(data, "amount"),
			Category:    mapString(data, "category"),
			Type:        mapString(data, "type"),
			Date:        mapDate(data, "date"),
		}, nil
	}
	return nil, chat.ErrUnknownAction
}

func mapString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mapFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func mapDate(m map[string]any, key string) *time.Time {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
