package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

type mockMCP struct {
	InitializeFunc func(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	CallToolFunc   func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	CloseFunc      func() error
}

func (m *mockMCP) Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, req)
	}
	return &mcp.InitializeResult{}, nil
}

func (m *mockMCP) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.CallToolFunc != nil {
		return m.CallToolFunc(ctx, req)
	}
	return &mcp.CallToolResult{}, nil
}

func (m *mockMCP) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func textResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: s}},
	}
}

func TestExecute_DecodesEnvelope(t *testing.T) {
	client := &MCP{api: &mockMCP{
		CallToolFunc: func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			require.Equal(t, ToolCreateBudget, req.Params.Name)
			require.Equal(t, map[string]any{"amount": 5000.0}, req.Params.Arguments)
			return textResult(`{
				"success": true,
				"requires_confirmation": true,
				"confirmation_message": "Create it?",
				"action_id": "act-1",
				"action_type": "create_budget"
			}`), nil
		},
	}}

	res, err := client.Execute(context.Background(), ToolCreateBudget, map[string]any{"amount": 5000.0})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.True(t, res.RequiresConfirmation)
	require.Equal(t, "act-1", res.ActionID)
	require.Equal(t, "Create it?", res.ConfirmationMessage)
}

func TestExecute_TransportError(t *testing.T) {
	client := &MCP{api: &mockMCP{
		CallToolFunc: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("connection reset")
		},
	}}
	_, err := client.Execute(context.Background(), ToolWebSearch, nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMalformedResult)
}

func TestExecute_MalformedPayload(t *testing.T) {
	client := &MCP{api: &mockMCP{
		CallToolFunc: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return textResult("this is not json"), nil
		},
	}}
	_, err := client.Execute(context.Background(), ToolWebSearch, nil)
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestExecute_ToolReportedError(t *testing.T) {
	client := &MCP{api: &mockMCP{
		CallToolFunc: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res := textResult("quota exhausted")
			res.IsError = true
			return res, nil
		},
	}}
	_, err := client.Execute(context.Background(), ToolSearchAmazon, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exhausted")
}
