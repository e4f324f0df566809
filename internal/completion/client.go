// Package completion talks to an OpenAI-compatible chat completion API.
//
// Each call sends a single user-role prompt and returns the text of the
// first choice. Requests are authorized either with a bearer API key or,
// for the Gonka inference network, with a per-request secp256k1 signature.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyCompletion is returned when the service answers without any text.
var ErrEmptyCompletion = errors.New("completion: empty response")

// Request describes one completion call.
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // zero means no per-call bound beyond ctx
}

// Completer returns a single text completion for a prompt.
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError reports a non-2xx answer from the completion service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion: upstream %d: %s", e.StatusCode, e.Body)
}

// Client calls <baseURL>/chat/completions.
type Client struct {
	baseURL string
	auth    Authorizer
	http    *http.Client
}

// New creates a Client. baseURL is the API root, e.g. https://api.openai.com/v1.
func New(baseURL string, auth Authorizer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	N           int       `json:"n"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends req and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		N:           1,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("completion: marshal: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/chat/completions", payload)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("completion: decode response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("completion: api error: %s", strings.TrimSpace(resp.Error.Message))
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		slog.Debug("completion: response truncated by token limit", "max_tokens", req.MaxTokens)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return choice.Message.Content, nil
}

// Models returns the model ids the service advertises. The gateway uses it
// as a readiness probe.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("completion: decode models: %w", err)
	}
	ids := make([]string, 0, len(result.Data))
	for _, m := range result.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// do executes an authorized request and returns the body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("completion: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth != nil {
		if err := c.auth.Authorize(req, payload); err != nil {
			return nil, fmt.Errorf("completion: authorize: %w", err)
		}
	}

	slog.Debug("upstream request", "method", method, "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("completion: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return b, nil
}
