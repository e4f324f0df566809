// Package gatewayclient talks to the classification gateway on behalf of
// the presentation frontends.
package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gonkalabs/reviewsense/internal/requestid"
)

// ErrEmptyInput is returned without contacting the gateway when the review
// text is empty or whitespace only.
var ErrEmptyInput = errors.New("empty review text")

// StatusError is a non-200 gateway response.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: status %d: %s", e.StatusCode, e.Detail)
}

// Rejected reports whether the gateway judged the text not to be a review.
func (e *StatusError) Rejected() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// Client calls the gateway's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for addr, which is either host:port or a full URL.
func New(addr string, timeout time.Duration) *Client {
	return &Client{
		baseURL: BaseURL(addr),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// BaseURL normalizes a gateway address into an http(s) base URL.
func BaseURL(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return addr
}

// Predict submits text to POST /predict and returns the sentiment label.
func (c *Client) Predict(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("gateway: marshal: %w", err)
	}
	respBody, err := c.do(ctx, http.MethodPost, "/predict", body)
	if err != nil {
		return "", err
	}

	var out struct {
		Pred string `json:"pred"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("gateway: decode response: %w", err)
	}
	return out.Pred, nil
}

// Welcome fetches the gateway's GET / message. It doubles as a liveness probe.
func (c *Client) Welcome(ctx context.Context) (string, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	var msg string
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return strings.TrimSpace(string(respBody)), nil
	}
	return msg, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("gateway: new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := requestid.From(ctx); ok {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: detailOf(resp.StatusCode, respBody)}
	}
	return respBody, nil
}

// detailOf extracts the "detail" field of an error body, falling back to the
// raw body and then the status text.
func detailOf(status int, body []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil {
			return s
		}
		return string(e.Detail)
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(status)
}
