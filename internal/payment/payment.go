// Package payment wraps the external card authorizer. Clients call it
// before placing a paid order; the state engine never does.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Request struct {
	OrderDraftID string  `json:"orderDraftId"`
	Amount       float64 `json:"amount"`
	Method       string  `json:"method"`
	CardToken    string  `json:"cardToken,omitempty"`
}

type Result struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type Authorizer interface {
	Authorize(ctx context.Context, req Request) (Result, error)
}

// HTTPAuthorizer posts authorization requests to a gateway endpoint.
type HTTPAuthorizer struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPAuthorizer(baseURL, apiKey string) *HTTPAuthorizer {
	return &HTTPAuthorizer{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *HTTPAuthorizer) Authorize(ctx context.Context, req Request) (Result, error) {
	if req.Amount <= 0 {
		return Result{}, fmt.Errorf("authorize: amount must be positive")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/v1/authorize", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("authorize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Result{}, fmt.Errorf("authorize: gateway returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("authorize: decode response: %w", err)
	}
	return result, nil
}

// AlwaysApprove is the development authorizer.
type AlwaysApprove struct{}

func (AlwaysApprove) Authorize(_ context.Context, req Request) (Result, error) {
	if req.Amount <= 0 {
		return Result{Approved: false, Reason: "amount must be positive"}, nil
	}
	return Result{Approved: true, Reference: fmt.Sprintf("dev-%d", time.Now().UnixNano())}, nil
}
