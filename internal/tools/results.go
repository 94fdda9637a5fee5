package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paisapal/paisapal-go/internal/chat"
)

// Each search tool answers with its own payload shape. Decoding is selected
// by the tool name that produced the payload, one decoder per shape, rather
// than probing the JSON for known keys.

// DecodeResults flattens a search tool's data payload into ResultItems.
func DecodeResults(toolName string, data json.RawMessage) ([]chat.ResultItem, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch toolName {
	case ToolWebSearch:
		return decodeWebSearch(data)
	case ToolSearchAmazon:
		return decodeProductSearch(data, "Amazon")
	case ToolSearchFlipkart:
		return decodeProductSearch(data, "Flipkart")
	case ToolSearchShopping:
		return decodeShoppingSearch(data)
	}
	return nil, fmt.Errorf("%w: no result decoder for tool %s", ErrMalformedResult, toolName)
}

func decodeWebSearch(data json.RawMessage) ([]chat.ResultItem, error) {
	var payload struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
			Source  string `json:"source"`
		} `json:"organic_results"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: web_search payload: %v", ErrMalformedResult, err)
	}
	items := make([]chat.ResultItem, 0, len(payload.OrganicResults))
	for _, r := range payload.OrganicResults {
		source := r.Source
		if source == "" {
			source = "Web"
		}
		items = append(items, chat.ResultItem{
			Title:   r.Title,
			Snippet: r.Snippet,
			URL:     r.Link,
			Source:  source,
		})
	}
	return items, nil
}

func decodeProductSearch(data json.RawMessage, source string) ([]chat.ResultItem, error) {
	var payload struct {
		Products []struct {
			Title        string  `json:"title"`
			Description  string  `json:"description"`
			Price        float64 `json:"price"`
			PriceDisplay string  `json:"price_display"`
			URL          string  `json:"url"`
			Thumbnail    string  `json:"thumbnail"`
		} `json:"products"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformedResult, source, err)
	}
	items := make([]chat.ResultItem, 0, len(payload.Products))
	for _, p := range payload.Products {
		item := chat.ResultItem{
			Title:     p.Title,
			Snippet:   p.Description,
			URL:       p.URL,
			Source:    source,
			Thumbnail: p.Thumbnail,
		}
		if p.Price > 0 {
			display := p.PriceDisplay
			if display == "" {
				display = fmt.Sprintf("₹%.0f", p.Price)
			}
			item.Price = &chat.Price{Value: p.Price, Display: display}
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeShoppingSearch(data json.RawMessage) ([]chat.ResultItem, error) {
	var payload struct {
		ShoppingResults []struct {
			Title        string  `json:"title"`
			Snippet      string  `json:"snippet"`
			Price        float64 `json:"extracted_price"`
			PriceDisplay string  `json:"price"`
			Link         string  `json:"link"`
			Source       string  `json:"source"`
			Thumbnail    string  `json:"thumbnail"`
		} `json:"shopping_results"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: shopping payload: %v", ErrMalformedResult, err)
	}
	items := make([]chat.ResultItem, 0, len(payload.ShoppingResults))
	for _, r := range payload.ShoppingResults {
		source := r.Source
		if source == "" {
			source = "Shopping"
		}
		item := chat.ResultItem{
			Title:     r.Title,
			Snippet:   r.Snippet,
			URL:       r.Link,
			Source:    source,
			Thumbnail: r.Thumbnail,
		}
		if r.Price > 0 {
			item.Price = &chat.Price{Value: r.Price, Display: r.PriceDisplay}
		}
		items = append(items, item)
	}
	return items, nil
}

// SearchToolFor picks the search tool for a query: explicit platform
// mentions route to the platform tool, product-ish queries to the shopping
// aggregator, everything else to plain web search.
func SearchToolFor(lowerQuery string) string {
	switch {
	case strings.Contains(lowerQuery, "amazon"):
		return ToolSearchAmazon
	case strings.Contains(lowerQuery, "flipkart"):
		return ToolSearchFlipkart
	case strings.Contains(lowerQuery, "buy") || strings.Contains(lowerQuery, "price") ||
		strings.Contains(lowerQuery, "cheapest") || strings.Contains(lowerQuery, "shopping"):
		return ToolSearchShopping
	}
	return ToolWebSearch
}
