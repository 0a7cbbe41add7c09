// Package textgen wraps the external copy-generation service used to
// enrich menu item descriptions. Failures degrade to a template.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Generator interface {
	DescribeMenuItem(ctx context.Context, name, category string) (string, error)
}

type HTTPGenerator struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPGenerator(baseURL, apiKey string) *HTTPGenerator {
	return &HTTPGenerator{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGenerator) DescribeMenuItem(ctx context.Context, name, category string) (string, error) {
	payload := map[string]string{
		"prompt": fmt.Sprintf("Write a short appetizing menu description for %q (%s).", name, category),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("textgen: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("textgen: service returned %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("textgen: decode response: %w", err)
	}
	return out.Text, nil
}

// Template is the offline fallback generator.
type Template struct{}

func (Template) DescribeMenuItem(_ context.Context, name, category string) (string, error) {
	return fmt.Sprintf("Our %s is a house favorite from the %s menu, prepared fresh to order.", name, category), nil
}
