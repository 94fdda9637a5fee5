package agent

import (
	"context"
	"time"

	"github.com/paisapal/paisapal-go/internal/finance"
	"github.com/paisapal/paisapal-go/internal/logger"
)

// ContextBuilder assembles the user-context snapshot sent with every chat
// call: the financial summary from the data layer plus temporal fields
// computed at call time.
type ContextBuilder struct {
	api finance.API
	now func() time.Time
}

// NewContextBuilder wires the builder to the data layer.
func NewContextBuilder(api finance.API) *ContextBuilder {
	return &ContextBuilder{api: api, now: time.Now}
}

// Build fetches the financial snapshot and enriches it. A fetch failure
// yields a minimal "context unavailable" map; the chat call must still
// proceed rather than failing the whole turn.
func (b *ContextBuilder) Build(ctx context.Context, userID string) map[string]any {
	snapshot, err := b.api.GetAIContext(ctx, userID)
	if err != nil {
		logger.L.Warn("financial context fetch failed; proceeding without it", "user_id", userID, "error", err)
		return map[string]any{"context_unavailable": true}
	}

	now := b.now()
	out := map[string]any{
		"current_date":       now.Format("2006-01-02"),
		"current_time":       now.Format("15:04"),
		"day_of_week":        now.Weekday().String(),
		"day_of_month":       now.Day(),
		"days_left_in_month": daysLeftInMonth(now),
	}
	for k, v := range snapshot {
		out[k] = v
	}
	return out
}

func daysLeftInMonth(now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return lastDay - now.Day()
}
