/**
 * @description
 * This package provides a client for the Razorpay Orders API. It encapsulates
 * the logic for making authenticated HTTP requests to the payment gateway.
 *
 * Key features:
 * - Manages the API base URL and key id / secret credentials.
 * - Creates gateway orders that the checkout widget consumes.
 * - Handles JSON serialization/deserialization and error handling for API calls.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 */
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com"

// Client is a client for the Razorpay API.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewClient creates a new Razorpay API client authenticated with the
// merchant's key id and secret.
func NewClient(keyID, keySecret string) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(keyID, keySecret, baseURL string) *Client {
	c := NewClient(keyID, keySecret)
	c.baseURL = baseURL
	return c
}

// KeyID exposes the public key id that the checkout widget needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// Order is the gateway's representation of a created order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder creates a gateway order for the given amount in minor currency
// units. The returned order id is what the client-side checkout references
// and what later appears in the verification callback.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	url := fmt.Sprintf("%s/v1/orders", c.baseURL)
	var order Order

	err := c.do(ctx, http.MethodPost, url, createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// do executes an authenticated request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("razorpay API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode razorpay response: %w", err)
		}
	}
	return nil
}
