package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiVersion = "2023-10-01"

// Client calls the Azure Content Safety text:analyze endpoint.
type Client struct {
	Endpoint string
	Key      string
	HTTP     *http.Client
}

// NewClient creates a moderation client. Endpoint and key may be empty;
// in that case every call fails, which the safety gate turns into a
// block (fail closed).
func NewClient(endpoint, key string) *Client {
	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Key:      key,
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type analyzeTextRequest struct {
	Text string `json:"text"`
}

type categoryAnalysis struct {
	Category string `json:"category"`
	Severity int    `json:"severity"`
}

type analyzeTextResponse struct {
	CategoriesAnalysis []categoryAnalysis `json:"categoriesAnalysis"`
}

// AnalyzeText submits text and returns a severity level (0-4) per
// moderation category, keyed by normalized category name.
func (c *Client) AnalyzeText(ctx context.Context, text string) (map[string]int, error) {
	if c.Endpoint == "" || c.Key == "" {
		return nil, fmt.Errorf("content safety credentials not configured")
	}

	payload, err := json.Marshal(analyzeTextRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/contentsafety/text:analyze?api-version=%s", c.Endpoint, apiVersion)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.Key)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content safety request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content safety error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var analyzeResp analyzeTextResponse
	if err := json.Unmarshal(bodyBytes, &analyzeResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	scores := make(map[string]int, len(analyzeResp.CategoriesAnalysis))
	for _, item := range analyzeResp.CategoriesAnalysis {
		scores[normalizeCategory(item.Category)] = item.Severity
	}
	return scores, nil
}

// normalizeCategory maps API category names ("Hate", "SelfHarm") to the
// snake_case keys used by the gate thresholds.
func normalizeCategory(category string) string {
	switch category {
	case "SelfHarm":
		return "self_harm"
	default:
		return strings.ToLower(category)
	}
}
