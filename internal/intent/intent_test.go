package intent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"plain search", "Search for wireless earbuds under 2000", Search},
		{"platform name", "what's on Flipkart for running shoes", Search},
		{"budget", "Create a monthly budget of ₹5000 for food", Budget},
		{"goal", "I want to save for a new laptop, 80k", Goal},
		{"payment", "Remind me to pay 499 for Netflix every month", Payment},
		{"calculation", "How much interest on 2 lakh at 7 percent", Calculation},
		{"chitchat", "hello there, how are you today", GeneralChat},
		{"case insensitive", "BUY me a phone", Search},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

// Shopping queries often mention budgets or saving incidentally; search must
// win because it is checked first.
func TestClassify_PriorityOrder(t *testing.T) {
	require.Equal(t, Search, Classify("save by budgeting my Amazon buys"))
	require.Equal(t, Search, Classify("help me buy a budget phone"))
	require.Equal(t, Budget, Classify("set a budget so I can pay my bills"))
	require.Equal(t, Goal, Classify("set a savings target before the payment season"))
}
