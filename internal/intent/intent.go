// Package intent classifies raw user messages into coarse conversation
// intents using deterministic keyword matching. It is intentionally not a
// model: same input, same answer, no network.
package intent

import "strings"

// Intent is the coarse category a user message is routed to.
type Intent string

const (
	Search      Intent = "search"
	Budget      Intent = "budget"
	Goal        Intent = "goal"
	Payment     Intent = "payment"
	Calculation Intent = "calculation"
	GeneralChat Intent = "general_chat"
)

// Keyword sets are checked in priority order: shopping queries often also
// contain words like "save" or "budget" ("save money by buying X"), so the
// most specific intents are tested first to avoid misrouting.
var (
	searchKeywords = []string{
		"search", "find me", "look up", "buy", "purchase", "price of",
		"best price", "cheapest", "shopping", "amazon", "flipkart", "myntra",
		"compare price", "product", "deal on",
	}
	budgetKeywords = []string{
		"budget", "spending limit", "limit my spending", "allocate",
		"monthly limit",
	}
	goalKeywords = []string{
		"goal", "save for", "saving for", "savings target", "save up",
		"target of",
	}
	paymentKeywords = []string{
		"pay", "paid", "spent", "payment", "bill", "remind me", "reminder",
		"due", "emi", "subscription", "recharge", "rent",
	}
	calculationKeywords = []string{
		"calculate", "how much", "interest", "percentage", "emi for",
		"split", "total of",
	}
)

// Classify routes a raw message to an Intent. Matching is case-insensitive
// and purely lexical; unmatched input falls through to GeneralChat.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, searchKeywords):
		return Search
	case containsAny(lower, budgetKeywords):
		return Budget
	case containsAny(lower, goalKeywords):
		return Goal
	case containsAny(lower, paymentKeywords):
		return Payment
	case containsAny(lower, calculationKeywords):
		return Calculation
	}
	return GeneralChat
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
