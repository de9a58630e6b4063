// Package api is the REST client for the storefront backend. All request
// functions are stateless; authenticated calls read the bearer token from a
// TokenSource and short-circuit locally when no token is present.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrNoSession        = errors.New("no session")
	ErrInvalidProductID = errors.New("invalid product id")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
)

// APIError is a non-2xx backend response reduced to a single message,
// extracted from the body's error/message field or the HTTP status text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// TokenSource provides the current bearer token, "" when logged out.
type TokenSource interface {
	Token(ctx context.Context) string
}

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*httpResult]
}

type httpResult struct {
	status int
	body   []byte
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
			Name: "storefront-backend",
		}),
	}
}

// do issues one request and decodes a 2xx body into out (when non-nil).
// The breaker counts transport failures and 5xx responses; client errors
// pass through without tripping it.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var token string
	if authed {
		token = c.tokens.Token(ctx)
		if token == "" {
			return ErrNoSession
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.breaker.Execute(func() (*httpResult, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    extractMessage(data, resp.StatusCode),
			}
		}
		return &httpResult{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return err
	}

	if res.status < http.StatusOK || res.status >= http.StatusMultipleChoices {
		return &APIError{
			StatusCode: res.status,
			Message:    extractMessage(res.body, res.status),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractMessage pulls the error/message field out of a failure body.
// An unparseable body must not crash the caller; it degrades to status text.
func extractMessage(body []byte, status int) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(status)
}
