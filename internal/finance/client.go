// Package finance is the client for the backend data API that owns the
// persisted financial entities. The orchestration layer only ever creates
// records through it or fetches the AI context snapshot.
package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paisapal/paisapal-go/internal/config"
)

// CreatedRecord identifies an entity created by a mutation call.
type CreatedRecord struct {
	ID string `json:"id"`
}

// API is the data-layer contract the action executor depends on.
type API interface {
	CreateBudget(ctx context.Context, userID, name string, amount float64, category, period string) (CreatedRecord, error)
	CreateGoal(ctx context.Context, userID, name string, targetAmount float64, deadline *time.Time) (CreatedRecord, error)
	CreateScheduledPayment(ctx context.Context, userID, name string, amount float64, category string, dueDate time.Time, frequency string) (CreatedRecord, error)
	CreateTransaction(ctx context.Context, userID, description string, amount float64, category, txType string, date *time.Time) (CreatedRecord, error)
	GetAIContext(ctx context.Context, userID string) (map[string]any, error)
}

// HTTPClient is the production API over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient builds the data API client from config.
func NewHTTPClient(cfg config.FinanceAPIConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateBudget creates a spending budget.
func (c *HTTPClient) CreateBudget(ctx context.Context, userID, name string, amount float64, category, period string) (CreatedRecord, error) {
	return c.post(ctx, "/budgets", map[string]any{
		"user_id":  userID,
		"name":     name,
		"amount":   amount,
		"category": category,
		"period":   period,
	})
}

// CreateGoal creates a savings goal.
func (c *HTTPClient) CreateGoal(ctx context.Context, userID, name string, targetAmount float64, deadline *time.Time) (CreatedRecord, error) {
	body := map[string]any{
		"user_id":       userID,
		"name":          name,
		"target_amount": targetAmount,
	}
	if deadline != nil {
		body["deadline"] = deadline.Format("2006-01-02")
	}
	return c.post(ctx, "/goals", body)
}

// CreateScheduledPayment creates a recurring payment reminder.
func (c *HTTPClient) CreateScheduledPayment(ctx context.Context, userID, name string, amount float64, category string, dueDate time.Time, frequency string) (CreatedRecord, error) {
	return c.post(ctx, "/scheduled-payments", map[string]any{
		"user_id":   userID,
		"name":      name,
		"amount":    amount,
		"category":  category,
		"due_date":  dueDate.Format("2006-01-02"),
		"frequency": frequency,
	})
}

// CreateTransaction records a transaction.
func (c *HTTPClient) CreateTransaction(ctx context.Context, userID, description string, amount float64, category, txType string, date *time.Time) (CreatedRecord, error) {
	body := map[string]any{
		"user_id":     userID,
		"description": description,
		"amount":      amount,
		"category":    category,
		"type":        txType,
	}
	if date != nil {
		body["date"] = date.Format("2006-01-02")
	}
	return c.post(ctx, "/transactions", body)
}

// GetAIContext fetches the user's financial summary snapshot.
func (c *HTTPClient) GetAIContext(ctx context.Context, userID string) (map[string]any, error) {
	url := fmt.Sprintf("%s/users/%s/ai-context", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finance: get ai context: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finance: get ai context: unexpected status code %d", resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("finance: decode ai context: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body map[string]any) (CreatedRecord, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return CreatedRecord{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return CreatedRecord{}, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return CreatedRecord{}, fmt.Errorf("finance: post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return CreatedRecord{}, fmt.Errorf("finance: post %s: status %d: %s", path, resp.StatusCode, snippet)
	}

	var record CreatedRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return CreatedRecord{}, fmt.Errorf("finance: decode %s response: %w", path, err)
	}
	return record, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
