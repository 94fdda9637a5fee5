// Package tools is the client for the tool layer: the MCP server that
// executes financial actions and web/product searches, and decides which
// actions need user confirmation before they apply.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/paisapal/paisapal-go/internal/config"
	"github.com/paisapal/paisapal-go/internal/logger"
)

// Tool names recognized by the tool layer.
const (
	ToolCreateBudget           = "create_budget"
	ToolCreateSavingsGoal      = "create_savings_goal"
	ToolCreateScheduledPayment = "create_scheduled_payment"
	ToolWebSearch              = "web_search"
	ToolSearchAmazon           = "search_amazon"
	ToolSearchFlipkart         = "search_flipkart"
	ToolSearchShopping         = "search_shopping"
)

// ErrMalformedResult marks a tool response whose payload did not match the
// expected envelope. Callers surface a generic apology, never the raw error.
var ErrMalformedResult = errors.New("tools: malformed tool result")

// Result is the tool layer's response envelope.
type Result struct {
	Success              bool            `json:"success"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	ConfirmationMessage  string          `json:"confirmation_message,omitempty"`
	ActionID             string          `json:"action_id,omitempty"`
	ActionType           string          `json:"action_type,omitempty"`
	ActionData           map[string]any  `json:"action_data,omitempty"`
	Data                 json.RawMessage `json:"data,omitempty"`
	Message              string          `json:"message,omitempty"`
}

// Client executes named tools against the tool layer.
type Client interface {
	Execute(ctx context.Context, name string, params map[string]any) (Result, error)
}

// mcpAPI is the subset of the MCP client the tool layer uses; tests swap in
// a mock.
type mcpAPI interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// MCP is the production tool-layer client.
type MCP struct {
	api mcpAPI
}

// New connects to the configured tool server. Supported transports are sse,
// streamable_http and stdio.
func New(ctx context.Context, cfg config.ToolServerConfig) (*MCP, error) {
	var mcpC *client.Client
	var err error

	switch cfg.Type {
	case config.ClientTypeSSE:
		var opts []transport.ClientOption
		if len(cfg.Headers) > 0 {
			opts = append(opts, transport.WithHeaders(cfg.Headers))
		}
		mcpC, err = client.NewSSEMCPClient(cfg.URL, opts...)
	case config.ClientTypeStreamableHTTP:
		var opts []transport.StreamableHTTPCOption
		if len(cfg.Headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(cfg.Headers))
		}
		mcpC, err = client.NewStreamableHttpClient(cfg.URL, opts...)
	case config.ClientTypeStdio:
		var env []string
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		mcpC, err = client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	default:
		return nil, fmt.Errorf("tools: unsupported tool server type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("tools: create client: %w", err)
	}

	// Stdio transports start themselves.
	if cfg.Type != config.ClientTypeStdio {
		if err := mcpC.Start(ctx); err != nil {
			if cerr := mcpC.Close(); cerr != nil {
				logger.L.Warn("tool client close error after start failure", "error", cerr)
			}
			return nil, fmt.Errorf("tools: start transport: %w", err)
		}
	}

	initReq := mcp.InitializeRequest{
		Params: mcp.InitializeParams{Capabilities: mcp.ClientCapabilities{}},
	}
	if _, err := mcpC.Initialize(ctx, initReq); err != nil {
		if cerr := mcpC.Close(); cerr != nil {
			logger.L.Warn("tool client close error after init failure", "error", cerr)
		}
		return nil, fmt.Errorf("tools: initialize: %w", err)
	}
	logger.L.Info("tool server initialized", "name", cfg.Name)

	return &MCP{api: mcpC}, nil
}

// Execute calls the named tool and decodes its envelope. The tool layer
// answers with one JSON document in the first text content item.
func (m *MCP) Execute(ctx context.Context, name string, params map[string]any) (Result, error) {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: params,
		},
	}
	res, err := m.api.CallTool(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("tools: call %s: %w", name, err)
	}
	if res == nil {
		return Result{}, fmt.Errorf("%w: empty response from %s", ErrMalformedResult, name)
	}

	text := firstText(res)
	if res.IsError {
		if text == "" {
			text = "tool reported an error without detail"
		}
		return Result{}, fmt.Errorf("tools: %s failed: %s", name, text)
	}
	if text == "" {
		return Result{}, fmt.Errorf("%w: no text content from %s", ErrMalformedResult, name)
	}

	var out Result
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		logger.L.Error("tool result did not decode", "tool", name, "error", err)
		return Result{}, fmt.Errorf("%w: %s", ErrMalformedResult, name)
	}
	return out, nil
}

// Close releases the underlying transport.
func (m *MCP) Close() error {
	return m.api.Close()
}

func firstText(res *mcp.CallToolResult) string {
	for _, item := range res.Content {
		if tc, ok := item.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
