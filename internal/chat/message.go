package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind classifies what a message carries besides its text.
type Kind string

const (
	KindPlain         Kind = "plain"
	KindResultSet     Kind = "resultSet"
	KindPendingAction Kind = "pendingAction"
	KindSuccess       Kind = "success"
	KindError         Kind = "error"
)

// SpanKind classifies a rendered text segment.
type SpanKind string

const (
	SpanPlain    SpanKind = "plain"
	SpanBold     SpanKind = "bold"
	SpanBullet   SpanKind = "bullet"
	SpanNumbered SpanKind = "numbered"
	SpanLink     SpanKind = "link"
)

// Span is one renderable segment of a message. Links keep their URL so the
// UI can make them tappable after markup stripping.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
	URL  string   `json:"url,omitempty"`
}

// Price is a product price with both the numeric value and the display
// string the source used.
type Price struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// ResultItem is a single normalized web/product search result.
type ResultItem struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Price     *Price `json:"price,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Message is one conversational turn. Exactly one of PendingActionID and
// Results is populated, consistent with Kind.
type Message struct {
	ID              string       `json:"id"`
	Role            Role         `json:"role"`
	Kind            Kind         `json:"kind"`
	Text            string       `json:"text"`
	Spans           []Span       `json:"spans,omitempty"`
	Timestamp       time.Time    `json:"timestamp"`
	PendingActionID string       `json:"pending_action_id,omitempty"`
	Results         []ResultItem `json:"results,omitempty"`
}

// NewMessage builds a plain message with a fresh id and timestamp.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Kind:      KindPlain,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// Turn is the {role, content} pair handed to the chat layer as history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
