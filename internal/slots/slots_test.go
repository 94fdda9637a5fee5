package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var ex = Regex{}

func TestParseAmountForms(t *testing.T) {
	for _, text := range []string{
		"set aside ₹12,500 please",
		"set aside 12500 please",
		"set aside Rs 12500 please",
		"set aside Rs. 12,500 please",
	} {
		amount, ok := parseAmount(text)
		require.True(t, ok, text)
		require.Equal(t, 12500.0, amount, text)
	}
}

func TestParseAmountMultipliers(t *testing.T) {
	amount, ok := parseAmount("save 5 lakh for a house")
	require.True(t, ok)
	require.Equal(t, 500000.0, amount)

	amount, ok = parseAmount("save 50k for a bike")
	require.True(t, ok)
	require.Equal(t, 50000.0, amount)

	// no suffix means no multiplier
	amount, ok = parseAmount("save 50 a day")
	require.True(t, ok)
	require.Equal(t, 50.0, amount)

	// a following word that merely starts with "k" is not a suffix
	amount, ok = parseAmount("set a budget of 500 kitchen supplies")
	require.True(t, ok)
	require.Equal(t, 500.0, amount)
}

func TestExtractBudget(t *testing.T) {
	got, ok := ex.ExtractBudget("Create a monthly budget of ₹5000 for food")
	require.True(t, ok)
	require.Equal(t, BudgetSlots{Amount: 5000, Category: "Food", Period: "monthly"}, got)
}

func TestExtractBudget_Defaults(t *testing.T) {
	got, ok := ex.ExtractBudget("budget of 2000")
	require.True(t, ok)
	require.Equal(t, "General", got.Category)
	require.Equal(t, "monthly", got.Period)

	got, ok = ex.ExtractBudget("weekly grocery budget of 1500")
	require.True(t, ok)
	require.Equal(t, "Groceries", got.Category)
	require.Equal(t, "weekly", got.Period)
}

func TestExtractBudget_NoAmount(t *testing.T) {
	_, ok := ex.ExtractBudget("make me a budget for food")
	require.False(t, ok)
}

func TestExtractGoal(t *testing.T) {
	got, ok := ex.ExtractGoal("I want to save for a new phone, 50k")
	require.True(t, ok)
	require.Equal(t, 50000.0, got.Amount)
	require.Equal(t, "New Phone", got.Name)

	got, ok = ex.ExtractGoal("goal of 5 lakh")
	require.True(t, ok)
	require.Equal(t, 500000.0, got.Amount)
	require.Equal(t, "Savings Goal", got.Name)
}

func TestExtractGoal_NameTrimsAtAmount(t *testing.T) {
	got, ok := ex.ExtractGoal("save for a vacation worth 2 lakh by december")
	require.True(t, ok)
	require.Equal(t, "Vacation", got.Name)
	require.Equal(t, 200000.0, got.Amount)
}

func TestExtractPayment_NetflixScenario(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	got, ok := ex.ExtractPayment("Remind me to pay 499 for Netflix every month", now)
	require.True(t, ok)
	require.Equal(t, 499.0, got.Amount)
	require.Equal(t, "Netflix", got.Name)
	require.Equal(t, "monthly", got.Frequency)
	require.Equal(t, "Subscriptions", got.Category)
	// no day-of-month in the text: default is a week out
	require.Equal(t, now.AddDate(0, 0, 7), got.DueDate)
}

func TestExtractPayment_KnownBiller(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	got, ok := ex.ExtractPayment("electricity bill is 1200 this time", now)
	require.True(t, ok)
	require.Equal(t, "Electricity Bill", got.Name)
	require.Equal(t, "Utilities", got.Category)
}

func TestExtractPayment_DayOfMonth(t *testing.T) {
	now := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)

	got, ok := ex.ExtractPayment("pay 2000 rent on the 15th", now)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC), got.DueDate)

	// the 5th already passed this month: roll to next month
	got, ok = ex.ExtractPayment("pay 2000 rent on the 5th", now)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, time.October, 5, 0, 0, 0, 0, time.UTC), got.DueDate)
}

func TestExtractPayment_ExplicitDate(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	got, ok := ex.ExtractPayment("pay 900 for insurance by 02/11/2026", now)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, time.November, 2, 0, 0, 0, 0, time.UTC), got.DueDate)
}

func TestNextDueDate_Idempotent(t *testing.T) {
	now := time.Date(2026, time.September, 10, 14, 30, 0, 0, time.UTC)
	first := NextDueDate(now, 20)
	second := NextDueDate(now, 20)
	require.Equal(t, first, second)
}

func TestNextDueDate_Clamping(t *testing.T) {
	// due day 31 rolling into September (30 days) clamps to the 30th
	now := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), NextDueDate(now, 31))

	// due day 31 rolling into February clamps to the 28th
	now = time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), NextDueDate(now, 31))
}

func TestNextDueDate_YearRollover(t *testing.T) {
	now := time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2027, time.January, 5, 0, 0, 0, 0, time.UTC), NextDueDate(now, 5))
}

func TestExtractPayment_Frequencies(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		text string
		want string
	}{
		{"pay 100 for the gym every week", "weekly"},
		{"pay 100 for the gym biweekly", "biweekly"},
		{"pay 100 for insurance every quarter", "quarterly"},
		{"pay 5000 for insurance yearly", "yearly"},
		{"pay 499 for Netflix", "monthly"},
	}
	for _, tc := range cases {
		got, ok := ex.ExtractPayment(tc.text, now)
		require.True(t, ok, tc.text)
		require.Equal(t, tc.want, got.Frequency, tc.text)
	}
}

func TestExtractTransaction(t *testing.T) {
	got, ok := ex.ExtractTransaction("I spent 400 on groceries")
	require.True(t, ok)
	require.Equal(t, 400.0, got.Amount)
	require.Equal(t, "Groceries", got.Description)
	require.Equal(t, "Groceries", got.Category)
}

func TestIsPastSpend(t *testing.T) {
	require.True(t, IsPastSpend("I spent 400 on groceries"))
	require.True(t, IsPastSpend("just paid 250 for the cab"))
	require.False(t, IsPastSpend("remind me to pay 499 for Netflix"))
}

func TestCategoryForName(t *testing.T) {
	require.Equal(t, "Subscriptions", CategoryForName("Netflix"))
	require.Equal(t, "Rent", CategoryForName("rent"))
	require.Equal(t, "Other", CategoryForName("Ravi"))
}
