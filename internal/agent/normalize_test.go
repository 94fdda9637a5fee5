package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/llm"
)

func TestSanitize_StripsMarkupKeepsSemantics(t *testing.T) {
	raw := "Final Answer: **Plan for the month**\n" +
		"- cut dining to ₹2000\n" +
		"1. pay the rent first\n" +
		"see https://example.com/budgeting for more\n" +
		"```\ncode noise\n```"

	text, spans := sanitize(raw)

	require.NotContains(t, text, "**")
	require.NotContains(t, text, "```")
	require.NotContains(t, text, "Final Answer:")
	require.Contains(t, text, "• cut dining to ₹2000")

	var kinds []chat.SpanKind
	for _, s := range spans {
		kinds = append(kinds, s.Kind)
	}
	require.Contains(t, kinds, chat.SpanBold)
	require.Contains(t, kinds, chat.SpanBullet)
	require.Contains(t, kinds, chat.SpanNumbered)
	require.Contains(t, kinds, chat.SpanLink)

	for _, s := range spans {
		if s.Kind == chat.SpanLink {
			require.Equal(t, "https://example.com/budgeting", s.URL, "URL stays actionable")
		}
	}
}

func TestSanitize_MarkdownLink(t *testing.T) {
	_, spans := sanitize("read [this guide](https://example.com/guide) first")
	var link *chat.Span
	for i := range spans {
		if spans[i].Kind == chat.SpanLink {
			link = &spans[i]
		}
	}
	require.NotNil(t, link)
	require.Equal(t, "this guide", link.Text)
	require.Equal(t, "https://example.com/guide", link.URL)
}

func TestNormalizeReply_PlainProse(t *testing.T) {
	msg := normalizeReply(llm.Reply{Response: "You spent ₹4200 on food this month."})
	require.Equal(t, chat.KindPlain, msg.Kind)
	require.Equal(t, chat.RoleAssistant, msg.Role)
	require.Empty(t, msg.Results)
	require.Empty(t, msg.PendingActionID)
}

func TestNormalizeReply_WithSources(t *testing.T) {
	msg := normalizeReply(llm.Reply{
		Response: "Here are some options",
		Sources: []llm.Source{
			{Title: "A", URL: "https://a.example", Source: "Web"},
			{Title: "B", URL: "https://b.example", Source: "Web"},
		},
	})
	require.Equal(t, chat.KindResultSet, msg.Kind)
	require.Len(t, msg.Results, 2)
	require.Empty(t, msg.PendingActionID, "result set carries no pending action")
}

func TestNormalizeResults_Cap(t *testing.T) {
	items := make([]chat.ResultItem, 9)
	msg := normalizeResults("found", items)
	require.Len(t, msg.Results, maxResultItems)
}

func TestNormalizePending(t *testing.T) {
	msg := normalizePending(&chat.PendingAction{ID: "act-1", ConfirmationText: "Do it?"})
	require.Equal(t, chat.KindPendingAction, msg.Kind)
	require.Equal(t, "act-1", msg.PendingActionID)
	require.Equal(t, "Do it?", msg.Text)
	require.Empty(t, msg.Results)
}

func TestNormalizeExecution(t *testing.T) {
	ok := normalizeExecution(ExecutionResult{Success: true, Detail: "done"})
	require.Equal(t, chat.KindSuccess, ok.Kind)

	bad := normalizeExecution(ExecutionResult{Success: false, Detail: "nope"})
	require.Equal(t, chat.KindError, bad.Kind)
}
