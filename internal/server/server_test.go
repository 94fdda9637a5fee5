package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paisapal/paisapal-go/internal/agent"
	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/finance"
	"github.com/paisapal/paisapal-go/internal/llm"
	"github.com/paisapal/paisapal-go/internal/tools"
)

type stubLLM struct{ reply llm.Reply }

func (s stubLLM) Chat(context.Context, llm.Request) (llm.Reply, error) { return s.reply, nil }

type stubTools struct{ result tools.Result }

func (s stubTools) Execute(context.Context, string, map[string]any) (tools.Result, error) {
	return s.result, nil
}

type stubFinance struct{}

func (stubFinance) CreateBudget(context.Context, string, string, float64, string, string) (finance.CreatedRecord, error) {
	return finance.CreatedRecord{ID: "b-1"}, nil
}
func (stubFinance) CreateGoal(context.Context, string, string, float64, *time.Time) (finance.CreatedRecord, error) {
	return finance.CreatedRecord{ID: "g-1"}, nil
}
func (stubFinance) CreateScheduledPayment(context.Context, string, string, float64, string, time.Time, string) (finance.CreatedRecord, error) {
	return finance.CreatedRecord{ID: "p-1"}, nil
}
func (stubFinance) CreateTransaction(context.Context, string, string, float64, string, string, *time.Time) (finance.CreatedRecord, error) {
	return finance.CreatedRecord{ID: "t-1"}, nil
}
func (stubFinance) GetAIContext(context.Context, string) (map[string]any, error) {
	return map[string]any{}, nil
}

func newTestServer(l llm.Client, t tools.Client) http.Handler {
	return New(agent.New(l, t, stubFinance{})).Router()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestServer(stubLLM{}, stubTools{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionRoundTrip(t *testing.T) {
	h := newTestServer(stubLLM{reply: llm.Reply{Response: "Hello back!"}}, stubTools{})

	rec := postJSON(t, h, "/sessions", map[string]string{"user_id": "user-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var opened struct {
		SessionID string         `json:"session_id"`
		Messages  []chat.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	require.NotEmpty(t, opened.SessionID)
	require.Len(t, opened.Messages, 1, "session opens with the welcome message")

	rec = postJSON(t, h, "/sessions/"+opened.SessionID+"/messages", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var msg chat.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, chat.RoleAssistant, msg.Role)
	require.Equal(t, "Hello back!", msg.Text)
}

func TestOpenSession_RequiresUserID(t *testing.T) {
	h := newTestServer(stubLLM{}, stubTools{})
	rec := postJSON(t, h, "/sessions", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_UnknownSessionIs404(t *testing.T) {
	h := newTestServer(stubLLM{}, stubTools{})
	rec := postJSON(t, h, "/sessions/nope/messages", map[string]string{"text": "hi"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmFlow(t *testing.T) {
	h := newTestServer(stubLLM{}, stubTools{result: tools.Result{
		Success:              true,
		RequiresConfirmation: true,
		ActionID:             "act-1",
		ActionType:           "create_budget",
		ConfirmationMessage:  "Create it?",
	}})

	rec := postJSON(t, h, "/sessions", map[string]string{"user_id": "user-1"})
	var opened struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))

	rec = postJSON(t, h, "/sessions/"+opened.SessionID+"/messages", map[string]string{"text": "budget of 5000 for food"})
	require.Equal(t, http.StatusOK, rec.Code)

	var staged chat.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &staged))
	require.Equal(t, chat.KindPendingAction, staged.Kind)
	require.Equal(t, "act-1", staged.PendingActionID)

	rec = postJSON(t, h, "/sessions/"+opened.SessionID+"/actions/act-1/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var done chat.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &done))
	require.Equal(t, chat.KindSuccess, done.Kind)
}
