// Package agent orchestrates chat turns: it routes each user message to the
// search, staged-action or chat path, gates mutations behind explicit
// confirmation, and normalizes every outcome into one message.
package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/qmuntal/stateless"

	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/finance"
	"github.com/paisapal/paisapal-go/internal/history"
	"github.com/paisapal/paisapal-go/internal/intent"
	"github.com/paisapal/paisapal-go/internal/llm"
	"github.com/paisapal/paisapal-go/internal/logger"
	"github.com/paisapal/paisapal-go/internal/slots"
	"github.com/paisapal/paisapal-go/internal/tools"
)

// maxHistoryTurns caps the conversation context handed to the chat layer.
const maxHistoryTurns = 20

// Turn FSM states, one machine per processed message.
type turnState stateless.State

var (
	stateClassifying     turnState = "Classifying"
	stateExtracting      turnState = "Extracting"
	stateStaging         turnState = "Staging"
	stateSearching       turnState = "Searching"
	stateChatting        turnState = "Chatting"
	stateAwaitingConfirm turnState = "AwaitingConfirm"
	stateDone            turnState = "Done"
	stateError           turnState = "Error"
)

type turnTrigger stateless.Trigger

var (
	triggerProcessInput  turnTrigger = "ProcessInput"
	triggerActionIntent  turnTrigger = "ActionIntent"
	triggerSearchIntent  turnTrigger = "SearchIntent"
	triggerChatIntent    turnTrigger = "ChatIntent"
	triggerSlotsReady    turnTrigger = "SlotsReady"
	triggerClarify       turnTrigger = "Clarify"
	triggerStagedPending turnTrigger = "StagedPending"
	triggerStagedDirect  turnTrigger = "StagedDirect"
	triggerResponded     turnTrigger = "Responded"
	triggerFailed        turnTrigger = "Failed"
)

// ErrBusy is returned when a send arrives while a prior turn is in flight.
var ErrBusy = errors.New("agent: a request is already in flight for this session")

// ErrUnknownSession is returned for session ids the agent does not hold.
var ErrUnknownSession = errors.New("agent: unknown session")

// Agent drives conversations. It owns the live sessions and wires the
// intent router, slot extractor, tool layer, chat layer and data layer
// together. There is no retry or backoff anywhere: a failed external call
// surfaces immediately as an error message, keeping turn latency bounded.
type Agent struct {
	llm       llm.Client
	tools     tools.Client
	extractor slots.Extractor
	contextB  *ContextBuilder
	stager    *Stager
	executor  *Executor
	log       *history.Store

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

// Option customizes an Agent.
type Option func(*Agent)

// WithExtractor swaps the slot extractor, e.g. for a model-based one.
func WithExtractor(e slots.Extractor) Option {
	return func(a *Agent) { a.extractor = e }
}

// WithHistoryStore enables the durable message log.
func WithHistoryStore(s *history.Store) Option {
	return func(a *Agent) { a.log = s }
}

// New creates an agent.
func New(llmClient llm.Client, toolClient tools.Client, financeAPI finance.API, opts ...Option) *Agent {
	a := &Agent{
		llm:       llmClient,
		tools:     toolClient,
		extractor: slots.Regex{},
		contextB:  NewContextBuilder(financeAPI),
		stager:    NewStager(toolClient),
		executor:  NewExecutor(financeAPI),
		sessions:  make(map[string]*chat.Session),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OpenSession starts a new chat session for a user.
func (a *Agent) OpenSession(userID string) *chat.Session {
	s := chat.NewSession(userID)
	a.mu.Lock()
	a.sessions[s.ID] = s
	a.mu.Unlock()
	a.persist(s.ID, s.Messages()...)
	return s
}

// Session looks up a live session.
func (a *Agent) Session(id string) (*chat.Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[id]
	return s, ok
}

// CloseSession tears a session down; its pending actions die with it.
func (a *Agent) CloseSession(id string) {
	a.mu.Lock()
	delete(a.sessions, id)
	a.mu.Unlock()
}

// turnContext carries intermediate values between FSM states.
type turnContext struct {
	userID  string
	text    string
	history []chat.Turn

	intent intent.Intent
	params chat.ActionParams

	pending *chat.PendingAction
	reply   chat.Message
	set     bool
	lastErr error
}

// Send processes one user message and returns the assistant's message.
// The user message is appended to the session log before any external call,
// so it survives even when the turn ends in an error.
func (a *Agent) Send(ctx context.Context, sessionID, text string) (chat.Message, error) {
	session, ok := a.Session(sessionID)
	if !ok {
		return chat.Message{}, ErrUnknownSession
	}
	if !session.TryAcquire() {
		return chat.Message{}, ErrBusy
	}
	defer session.Release()

	// Snapshot history before appending, so the in-flight message is never
	// part of its own context.
	tc := &turnContext{
		userID:  session.UserID,
		text:    text,
		history: session.History(maxHistoryTurns),
	}
	userMsg := session.Append(chat.NewMessage(chat.RoleUser, text))
	a.persist(session.ID, userMsg)

	a.runTurn(ctx, tc)

	if tc.pending != nil {
		session.StagePending(tc.pending)
	}
	out := session.Append(tc.reply)
	a.persist(session.ID, out)
	return out, nil
}

// runTurn drives the per-turn state machine to a terminal state and leaves
// the normalized reply in tc.reply.
func (a *Agent) runTurn(ctx context.Context, tc *turnContext) {
	fsm := stateless.NewStateMachine(stateClassifying)

	fsm.Configure(stateClassifying).
		PermitReentry(triggerProcessInput). // ensures OnEntry runs on the initial Fire
		OnEntry(func(ctx context.Context, _ ...any) error {
			tc.intent = intent.Classify(tc.text)
			logger.L.Debug("message classified", "intent", tc.intent)
			switch tc.intent {
			case intent.Search:
				return fsm.FireCtx(ctx, triggerSearchIntent)
			case intent.Budget, intent.Goal, intent.Payment:
				return fsm.FireCtx(ctx, triggerActionIntent)
			default:
				return fsm.FireCtx(ctx, triggerChatIntent)
			}
		}).
		Permit(triggerActionIntent, stateExtracting).
		Permit(triggerSearchIntent, stateSearching).
		Permit(triggerChatIntent, stateChatting)

	fsm.Configure(stateExtracting).
		OnEntry(func(ctx context.Context, _ ...any) error {
			params, ok := a.extractSlots(tc)
			if !ok {
				tc.setReply(chat.NewMessage(chat.RoleAssistant, clarifyText(tc.intent, tc.text)))
				return fsm.FireCtx(ctx, triggerClarify)
			}
			tc.params = params
			return fsm.FireCtx(ctx, triggerSlotsReady)
		}).
		Permit(triggerSlotsReady, stateStaging).
		Permit(triggerClarify, stateDone)

	fsm.Configure(stateStaging).
		OnEntry(func(ctx context.Context, _ ...any) error {
			pending, direct, err := a.stager.Stage(ctx, tc.params)
			if err != nil {
				tc.lastErr = err
				return fsm.FireCtx(ctx, triggerFailed)
			}
			if pending == nil {
				reply := chat.NewMessage(chat.RoleAssistant, direct)
				if direct == "" {
					reply.Text = "Done. Anything else?"
				}
				tc.setReply(reply)
				return fsm.FireCtx(ctx, triggerStagedDirect)
			}
			tc.pending = pending
			tc.setReply(normalizePending(pending))
			return fsm.FireCtx(ctx, triggerStagedPending)
		}).
		Permit(triggerStagedPending, stateAwaitingConfirm).
		Permit(triggerStagedDirect, stateDone).
		Permit(triggerFailed, stateError)

	fsm.Configure(stateSearching).
		OnEntry(func(ctx context.Context, _ ...any) error {
			toolName := tools.SearchToolFor(strings.ToLower(tc.text))
			res, err := a.tools.Execute(ctx, toolName, map[string]any{"query": tc.text})
			if err != nil {
				tc.lastErr = err
				return fsm.FireCtx(ctx, triggerFailed)
			}
			items, err := tools.DecodeResults(toolName, res.Data)
			if err != nil {
				tc.lastErr = err
				return fsm.FireCtx(ctx, triggerFailed)
			}
			tc.setReply(normalizeResults(res.Message, items))
			return fsm.FireCtx(ctx, triggerResponded)
		}).
		Permit(triggerResponded, stateDone).
		Permit(triggerFailed, stateError)

	fsm.Configure(stateChatting).
		OnEntry(func(ctx context.Context, _ ...any) error {
			userCtx := a.contextB.Build(ctx, tc.userID)
			reply, err := a.llm.Chat(ctx, llm.Request{
				Query:       tc.text,
				UserID:      tc.userID,
				UserContext: userCtx,
				History:     tc.history,
			})
			if err != nil {
				tc.lastErr = err
				return fsm.FireCtx(ctx, triggerFailed)
			}
			// The model may itself propose a confirm-gated action; stage it
			// through the tool layer like any extracted one.
			if reply.NeedsConfirmation && reply.ActionType != "" {
				params, perr := paramsFromMap(reply.ActionType, reply.ActionData)
				if perr != nil {
					tc.lastErr = perr
					return fsm.FireCtx(ctx, triggerFailed)
				}
				tc.params = params
				return fsm.FireCtx(ctx, triggerSlotsReady)
			}
			tc.setReply(normalizeReply(reply))
			return fsm.FireCtx(ctx, triggerResponded)
		}).
		Permit(triggerResponded, stateDone).
		Permit(triggerSlotsReady, stateStaging).
		Permit(triggerFailed, stateError)

	fsm.Configure(stateAwaitingConfirm)

	fsm.Configure(stateDone)

	fsm.Configure(stateError).
		OnEntry(func(_ context.Context, _ ...any) error {
			logger.L.Error("turn failed", "intent", tc.intent, "error", tc.lastErr)
			tc.setReply(normalizeError(userFacingError(tc.lastErr)))
			return nil
		})

	if err := fsm.FireCtx(ctx, triggerProcessInput); err != nil {
		logger.L.Error("turn state machine failed", "error", err)
	}
	if !tc.set {
		// Terminal state reached without a reply; treat as internal error.
		tc.setReply(normalizeError(userFacingError(tc.lastErr)))
	}
}

func (tc *turnContext) setReply(msg chat.Message) {
	tc.reply = msg
	tc.set = true
}

// extractSlots runs the per-intent extractor and maps slots onto typed
// action parameters.
func (a *Agent) extractSlots(tc *turnContext) (chat.ActionParams, bool) {
	switch tc.intent {
	case intent.Budget:
		s, ok := a.extractor.ExtractBudget(tc.text)
		if !ok {
			return nil, false
		}
		return chat.BudgetParams{Name: s.Category, Amount: s.Amount, Category: s.Category, Period: s.Period}, true
	case intent.Goal:
		s, ok := a.extractor.ExtractGoal(tc.text)
		if !ok {
			return nil, false
		}
		return chat.GoalParams{Name: s.Name, TargetAmount: s.Amount}, true
	case intent.Payment:
		if slots.IsPastSpend(tc.text) {
			s, ok := a.extractor.ExtractTransaction(tc.text)
			if !ok {
				return nil, false
			}
			return chat.TransactionParams{Description: s.Description, Amount: s.Amount, Category: s.Category, Type: "expense"}, true
		}
		s, ok := a.extractor.ExtractPayment(tc.text, a.contextB.now())
		if !ok {
			return nil, false
		}
		return chat.PaymentParams{Name: s.Name, Amount: s.Amount, Category: s.Category, DueDate: s.DueDate, Frequency: s.Frequency}, true
	}
	return nil, false
}

// Confirm applies a staged action. Confirming an id that was already
// confirmed or cancelled is an explicit no-op, not a second mutation.
func (a *Agent) Confirm(ctx context.Context, sessionID, actionID string) (chat.Message, error) {
	session, ok := a.Session(sessionID)
	if !ok {
		return chat.Message{}, ErrUnknownSession
	}
	if !session.TryAcquire() {
		return chat.Message{}, ErrBusy
	}
	defer session.Release()

	pa, ok := session.TakePending(actionID)
	if !ok {
		msg := session.Append(chat.NewMessage(chat.RoleAssistant, "That action was already handled, so nothing changed."))
		a.persist(session.ID, msg)
		return msg, nil
	}

	res := a.executor.Execute(ctx, session.UserID, pa)
	out := session.Append(normalizeExecution(res))
	a.persist(session.ID, out)
	return out, nil
}

// Cancel discards a staged action.
func (a *Agent) Cancel(ctx context.Context, sessionID, actionID string) (chat.Message, error) {
	session, ok := a.Session(sessionID)
	if !ok {
		return chat.Message{}, ErrUnknownSession
	}
	if !session.TryAcquire() {
		return chat.Message{}, ErrBusy
	}
	defer session.Release()

	text := "Okay, I won't do that."
	if _, ok := session.TakePending(actionID); !ok {
		text = "That action was already handled, so nothing changed."
	}
	msg := session.Append(chat.NewMessage(chat.RoleAssistant, text))
	a.persist(session.ID, msg)
	return msg, nil
}

func (a *Agent) persist(sessionID string, msgs ...chat.Message) {
	if a.log == nil {
		return
	}
	for _, m := range msgs {
		a.log.Save(sessionID, m)
	}
}
