// Package slots extracts typed action parameters from free-text messages.
// Extraction is deterministic regex work; every pattern set sits behind the
// Extractor interface so a model-based extractor can replace it without
// touching the conversation flow.
package slots

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BudgetSlots are the parameters extracted for a budget request.
type BudgetSlots struct {
	Amount   float64
	Category string
	Period   string
}

// GoalSlots are the parameters extracted for a savings-goal request.
type GoalSlots struct {
	Amount float64
	Name   string
}

// PaymentSlots are the parameters extracted for a scheduled-payment request.
type PaymentSlots struct {
	Amount    float64
	Name      string
	Category  string
	Frequency string
	DueDate   time.Time
}

// TransactionSlots are the parameters extracted for a past-spend entry.
type TransactionSlots struct {
	Amount      float64
	Description string
	Category    string
}

// Extractor turns raw text into typed slot records. The boolean result is
// false when no amount could be found, in which case the caller should ask
// the user to rephrase instead of proceeding.
type Extractor interface {
	ExtractBudget(text string) (BudgetSlots, bool)
	ExtractGoal(text string) (GoalSlots, bool)
	ExtractPayment(text string, now time.Time) (PaymentSlots, bool)
	ExtractTransaction(text string) (TransactionSlots, bool)
}

// Regex is the stock regex-based Extractor.
type Regex struct{}

var _ Extractor = Regex{}

var (
	amountRe     = regexp.MustCompile(`(?i)(?:₹|rs\.?\s*|inr\s*)?(\d[\d,]*(?:\.\d+)?)\s*(lakhs?|lacs?|k)?\b`)
	dateRe       = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	dayOfMonthRe = regexp.MustCompile(`(?i)\b(?:on(?:\s+the)?|by(?:\s+the)?|every)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	goalNameRe   = regexp.MustCompile(`(?i)(?:sav(?:e|ing|ings)\s+(?:up\s+)?for|goal\s+(?:for|of)|target\s+for)\s+(?:a\s+|an\s+|my\s+|the\s+)?([a-zA-Z][a-zA-Z0-9 ]*)`)
	payeeRe      = regexp.MustCompile(`(?i)(?:\bfor|\bto)\s+(?:my\s+|the\s+)?([a-zA-Z][a-zA-Z ]*?)(?:\s+(?:every|each|by|on|of|at)\b|\s*\d|[.,!?]|$)`)
)

// budgetCategories is the fixed vocabulary checked against budget requests,
// most specific words first.
var budgetCategories = []struct {
	keyword  string
	category string
}{
	{"grocer", "Groceries"},
	{"food", "Food"},
	{"dining", "Food"},
	{"restaurant", "Food"},
	{"transport", "Transport"},
	{"fuel", "Transport"},
	{"petrol", "Transport"},
	{"commute", "Transport"},
	{"entertainment", "Entertainment"},
	{"movie", "Entertainment"},
	{"shopping", "Shopping"},
	{"clothes", "Shopping"},
	{"travel", "Travel"},
	{"trip", "Travel"},
	{"rent", "Rent"},
	{"utilit", "Utilities"},
	{"electricity", "Utilities"},
	{"health", "Health"},
	{"medical", "Health"},
	{"gym", "Health"},
	{"education", "Education"},
	{"course", "Education"},
}

// knownBillers maps biller keywords to the display name used when the user
// never says "for <name>" explicitly.
var knownBillers = []struct {
	keyword string
	name    string
}{
	{"netflix", "Netflix"},
	{"spotify", "Spotify"},
	{"prime", "Amazon Prime"},
	{"hotstar", "Hotstar"},
	{"youtube", "YouTube Premium"},
	{"electricity", "Electricity Bill"},
	{"water", "Water Bill"},
	{"gas", "Gas Bill"},
	{"internet", "Internet Bill"},
	{"wifi", "Internet Bill"},
	{"broadband", "Internet Bill"},
	{"mobile", "Mobile Recharge"},
	{"phone", "Phone Bill"},
	{"rent", "Rent"},
	{"emi", "EMI"},
	{"loan", "Loan EMI"},
	{"insurance", "Insurance Premium"},
	{"gym", "Gym Membership"},
}

// nameCategories infers a payment category from the payee name.
var nameCategories = []struct {
	keyword  string
	category string
}{
	{"netflix", "Subscriptions"},
	{"spotify", "Subscriptions"},
	{"prime", "Subscriptions"},
	{"hotstar", "Subscriptions"},
	{"youtube", "Subscriptions"},
	{"gym", "Subscriptions"},
	{"electricity", "Utilities"},
	{"water", "Utilities"},
	{"gas", "Utilities"},
	{"internet", "Utilities"},
	{"phone", "Utilities"},
	{"mobile", "Utilities"},
	{"rent", "Rent"},
	{"emi", "EMI"},
	{"loan", "EMI"},
	{"insurance", "Insurance"},
}

// parseAmount finds the first numeric token and applies a unit multiplier
// only when its suffix is actually present ("5 lakh" -> 500000, "50k" ->
// 50000). Comma grouping and a leading currency marker are tolerated.
func parseAmount(text string) (float64, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "lakh", "lakhs", "lac", "lacs":
		value *= 100000
	case "k":
		value *= 1000
	}
	return value, true
}

// ExtractBudget pulls amount, category and period from a budget request.
func (Regex) ExtractBudget(text string) (BudgetSlots, bool) {
	amount, ok := parseAmount(text)
	if !ok {
		return BudgetSlots{}, false
	}
	lower := strings.ToLower(text)

	category := "General"
	for _, c := range budgetCategories {
		if strings.Contains(lower, c.keyword) {
			category = c.category
			break
		}
	}

	period := "monthly"
	switch {
	case strings.Contains(lower, "week"):
		period = "weekly"
	case strings.Contains(lower, "year") || strings.Contains(lower, "annual"):
		period = "yearly"
	}

	return BudgetSlots{Amount: amount, Category: category, Period: period}, true
}

// ExtractGoal pulls the target amount and goal name. The name is whatever
// follows "save for"/"goal for", trimmed at the next amount or time keyword.
func (Regex) ExtractGoal(text string) (GoalSlots, bool) {
	amount, ok := parseAmount(text)
	if !ok {
		return GoalSlots{}, false
	}

	name := "Savings Goal"
	if m := goalNameRe.FindStringSubmatch(text); m != nil {
		name = trimGoalName(m[1])
	}
	return GoalSlots{Amount: amount, Name: name}, true
}

// goalStopWords end a goal name: whatever follows is amount or time talk,
// not part of what the user is saving for.
var goalStopWords = map[string]bool{
	"of": true, "worth": true, "by": true, "in": true, "within": true,
	"before": true, "rs": true, "inr": true, "lakh": true, "lakhs": true,
	"target": true, "amount": true,
}

func trimGoalName(raw string) string {
	words := strings.Fields(raw)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if goalStopWords[strings.ToLower(w)] {
			break
		}
		if strings.IndexFunc(w, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
			break
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return "Savings Goal"
	}
	return title(strings.Join(kept, " "))
}

// title uppercases the first letter of each word. Good enough for display
// names without pulling in a cases package.
func title(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ExtractPayment pulls amount, payee name, frequency, category and due date
// from a payment-reminder request. now anchors the due-date computation so
// the result is reproducible within a day.
func (Regex) ExtractPayment(text string, now time.Time) (PaymentSlots, bool) {
	amount, ok := parseAmount(text)
	if !ok {
		return PaymentSlots{}, false
	}
	lower := strings.ToLower(text)

	name := extractPayeeName(text, lower)
	frequency := "monthly"
	switch {
	case strings.Contains(lower, "biweekly") || strings.Contains(lower, "bi-weekly") || strings.Contains(lower, "fortnight"):
		frequency = "biweekly"
	case strings.Contains(lower, "week"):
		frequency = "weekly"
	case strings.Contains(lower, "quarter"):
		frequency = "quarterly"
	case strings.Contains(lower, "year") || strings.Contains(lower, "annual"):
		frequency = "yearly"
	}

	return PaymentSlots{
		Amount:    amount,
		Name:      name,
		Category:  CategoryForName(name),
		Frequency: frequency,
		DueDate:   extractDueDate(text, now),
	}, true
}

func extractPayeeName(text, lower string) string {
	// "for"/"to" often precede filler ("remind me to pay ...", "for my
	// monthly bill"); take the first match that names something real.
	for _, m := range payeeRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" && !isFillerName(candidate) {
			return title(candidate)
		}
	}
	for _, b := range knownBillers {
		if strings.Contains(lower, b.keyword) {
			return b.name
		}
	}
	return "Payment"
}

var fillerNames = map[string]bool{
	"me": true, "it": true, "this": true, "that": true, "month": true,
	"monthly": true, "week": true, "weekly": true, "year": true,
	"yearly": true, "bill": true, "bills": true, "pay": true,
}

func isFillerName(s string) bool {
	return fillerNames[strings.ToLower(strings.TrimSpace(s))]
}

// CategoryForName infers a payment category from the payee name via
// substring match. Unknown names land in "Other".
func CategoryForName(name string) string {
	lower := strings.ToLower(name)
	for _, c := range nameCategories {
		if strings.Contains(lower, c.keyword) {
			return c.category
		}
	}
	return "Other"
}

// extractDueDate resolves the due date from an explicit dd/mm/yyyy, a bare
// day-of-month, or defaults to a week out when neither is present.
func extractDueDate(text string, now time.Time) time.Time {
	if m := dateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 {
			return clampDay(year, time.Month(month), day, now.Location())
		}
	}
	if m := dayOfMonthRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		if day >= 1 && day <= 31 {
			return NextDueDate(now, day)
		}
	}
	return now.AddDate(0, 0, 7)
}

// NextDueDate maps a day-of-month onto the next occurrence: this month if
// the day is still ahead, otherwise next month (rolling December into
// January). Days beyond the target month's length clamp to its last day.
func NextDueDate(now time.Time, day int) time.Time {
	year, month := now.Year(), now.Month()
	if day <= now.Day() {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return clampDay(year, month, day, now.Location())
}

func clampDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ExtractTransaction pulls amount and description from past-spend phrasing
// ("spent 400 on groceries", "paid 250 for the cab").
func (Regex) ExtractTransaction(text string) (TransactionSlots, bool) {
	amount, ok := parseAmount(text)
	if !ok {
		return TransactionSlots{}, false
	}
	lower := strings.ToLower(text)

	description := "Expense"
	if idx := strings.LastIndex(lower, " on "); idx >= 0 {
		rest := strings.Trim(strings.TrimSpace(text[idx+4:]), ".,!?")
		if rest != "" {
			description = title(rest)
		}
	} else {
		for _, m := range payeeRe.FindAllStringSubmatch(text, -1) {
			if !isFillerName(m[1]) {
				description = title(strings.TrimSpace(m[1]))
				break
			}
		}
	}

	category := "Other"
	for _, c := range budgetCategories {
		if strings.Contains(lower, c.keyword) {
			category = c.category
			break
		}
	}

	return TransactionSlots{Amount: amount, Description: description, Category: category}, true
}

// IsPastSpend reports whether a payment-intent message describes money
// already spent rather than a recurring payment to schedule.
func IsPastSpend(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range []string{"spent", "i paid", "just paid", "bought", "purchased"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
