package chat

import (
	"sync"

	"github.com/google/uuid"
)

const welcomeText = "Hi! I'm your money assistant. Ask me anything about your finances, or tell me to set up a budget, a savings goal or a payment reminder."

// Session owns the conversation state for one chat: the ordered message log,
// any outstanding pending actions, and the single-request-in-flight gate.
// It is created at session start and torn down with the session; nothing in
// it survives as global state.
type Session struct {
	ID     string
	UserID string

	mu        sync.Mutex
	busy      bool
	messages  []Message
	pending   map[string]*PendingAction
	welcomeID string
}

// NewSession creates a session seeded with the assistant welcome message.
// The welcome message is shown to the user but never fed to the chat layer.
func NewSession(userID string) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		UserID:  userID,
		pending: make(map[string]*PendingAction),
	}
	welcome := NewMessage(RoleAssistant, welcomeText)
	s.welcomeID = welcome.ID
	s.messages = append(s.messages, welcome)
	return s
}

// TryAcquire marks the session busy. It returns false if a turn is already
// in flight; the caller must reject the send.
func (s *Session) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

// Release clears the busy gate at the end of a turn.
func (s *Session) Release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Append adds a message to the log and returns it.
func (s *Session) Append(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a copy of the full message log in order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// History returns the most recent turns as {role, content} pairs for the
// chat layer, newest last, capped at limit. The welcome message is skipped.
// Call it before appending the in-flight user message so the message being
// answered is never part of its own context.
func (s *Session) History(limit int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := make([]Turn, 0, len(s.messages))
	for _, m := range s.messages {
		if m.ID == s.welcomeID {
			continue
		}
		turns = append(turns, Turn{Role: string(m.Role), Content: m.Text})
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}

// StagePending registers a pending action awaiting confirmation.
func (s *Session) StagePending(pa *PendingAction) {
	s.mu.Lock()
	s.pending[pa.ID] = pa
	s.mu.Unlock()
}

// TakePending consumes the pending action with the given id. The second call
// for the same id returns false, which is how double confirms and confirms
// after cancel become no-ops.
func (s *Session) TakePending(id string) (*PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pa, ok := s.pending[id]
	if !ok {
		return nil, false
	}
	delete(s.pending, id)
	return pa, true
}

// PendingCount reports how many staged actions are outstanding.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
