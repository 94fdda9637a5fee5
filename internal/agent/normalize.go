package agent

import (
	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/llm"
)

// Normalization converts every raw outcome of a turn — LLM prose, search
// payloads, staged actions, execution results, errors — into exactly one
// Message with the right kind.

// maxResultItems caps how many search results reach the user.
const maxResultItems = 5

const noResultsText = "I couldn't find anything for that. Want to try different words?"

// normalizeReply converts an LLM chat reply. A reply carrying sources
// becomes a result set; plain prose stays a plain message.
func normalizeReply(reply llm.Reply) chat.Message {
	if len(reply.Sources) > 0 {
		items := make([]chat.ResultItem, 0, len(reply.Sources))
		for _, s := range reply.Sources {
			items = append(items, chat.ResultItem{
				Title:   s.Title,
				Snippet: s.Snippet,
				URL:     s.URL,
				Source:  s.Source,
			})
		}
		return normalizeResults(reply.Response, items)
	}

	msg := chat.NewMessage(chat.RoleAssistant, "")
	msg.Text, msg.Spans = sanitize(reply.Response)
	return msg
}

// normalizeResults produces a resultSet message, capped at maxResultItems.
// Zero usable results degrade to a polite plain message, not an error.
func normalizeResults(text string, items []chat.ResultItem) chat.Message {
	if len(items) == 0 {
		return chat.NewMessage(chat.RoleAssistant, noResultsText)
	}
	if len(items) > maxResultItems {
		items = items[:maxResultItems]
	}
	msg := chat.NewMessage(chat.RoleAssistant, "")
	if text == "" {
		text = "Here's what I found:"
	}
	msg.Text, msg.Spans = sanitize(text)
	msg.Kind = chat.KindResultSet
	msg.Results = items
	return msg
}

// normalizePending produces the confirmation prompt for a staged action.
func normalizePending(pa *chat.PendingAction) chat.Message {
	msg := chat.NewMessage(chat.RoleAssistant, pa.ConfirmationText)
	msg.Kind = chat.KindPendingAction
	msg.PendingActionID = pa.ID
	return msg
}

// normalizeExecution produces the success or failure message for an
// executed action.
func normalizeExecution(res ExecutionResult) chat.Message {
	msg := chat.NewMessage(chat.RoleAssistant, res.Detail)
	if res.Success {
		msg.Kind = chat.KindSuccess
	} else {
		msg.Kind = chat.KindError
	}
	return msg
}

// normalizeError produces a user-facing error message.
func normalizeError(text string) chat.Message {
	msg := chat.NewMessage(chat.RoleAssistant, text)
	msg.Kind = chat.KindError
	return msg
}
