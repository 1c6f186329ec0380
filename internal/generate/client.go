// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate calls the text-generation endpoint for one prompt.
//
// Generate never returns an error. Transport failures are retried a bounded
// number of times; error bodies, unknown shapes and empty text are not
// retried. Every failure ends as a soft Result with empty Text, which the
// caller treats as "nothing generated".
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pdiddy/corpusgen/internal/httputil"
	"github.com/pdiddy/corpusgen/pkg/types"
)

const (
	// referer and appTitle identify the generator in gateway analytics.
	referer  = "http://localhost:3000"
	appTitle = "corpusgen"

	maxResponseBody = 4 << 20
)

// Outcome classifies how a Generate call ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeTransport    Outcome = "transport_failure"
	OutcomeAPIError     Outcome = "api_error"
	OutcomeUnknownShape Outcome = "unknown_shape"
	OutcomeEmptyText    Outcome = "empty_text"
)

// Result is the soft result of one Generate call.
type Result struct {
	// Text is the generated text, empty on any failure.
	Text string

	// Attempts is the number of HTTP requests made.
	Attempts int

	Outcome Outcome

	// Detail describes the failure for logging; empty on success.
	Detail string
}

// OK reports whether text was generated.
func (r Result) OK() bool {
	return r.Text != ""
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	HTTP        *http.Client
	APIKey      string
	HTTPConfig  types.HTTPConfig
	ModelConfig types.ModelConfig
	Log         *slog.Logger
}

// New returns a Client for cfg whose HTTP client enforces cfg.RequestTimeout per attempt.
func New(cfg types.Config, apiKey string, log *slog.Logger) *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: cfg.RequestTimeout},
		APIKey:      apiKey,
		HTTPConfig:  cfg.HTTPConfig,
		ModelConfig: cfg.ModelConfig,
		Log:         log,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Provider    *providerPref `json:"provider,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type providerPref struct {
	Order []string `json:"order"`
}

func (c *Client) requestBody(prompt string) ([]byte, error) {
	req := chatRequest{
		Model:       c.ModelConfig.ModelName,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.ModelConfig.MaxTokens,
		Temperature: c.ModelConfig.Temperature,
	}
	if len(c.ModelConfig.ProviderPreference) > 0 {
		req.Provider = &providerPref{Order: c.ModelConfig.ProviderPreference}
	}
	return json.Marshal(req)
}

// Generate sends prompt and returns the generated text as a soft Result.
func (c *Client) Generate(ctx context.Context, prompt string) Result {
	body, err := c.requestBody(prompt)
	if err != nil {
		return c.fail(Result{Outcome: OutcomeTransport}, fmt.Sprintf("marshaling request: %v", err))
	}

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.HTTPConfig.APIBaseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("HTTP-Referer", referer)
		req.Header.Set("X-Title", appTitle)
		return req, nil
	}

	policy := httputil.Policy{
		Attempts: c.HTTPConfig.MaxRetries,
		Delay:    c.HTTPConfig.RetryDelay,
		OnRetry: func(attempt int, err error) {
			c.log().Warn("request failed, retrying",
				"attempt", attempt, "max_attempts", c.HTTPConfig.MaxRetries,
				"retry_in", c.HTTPConfig.RetryDelay, "error", err)
		},
	}

	resp, attempts, err := httputil.DoWithRetry(ctx, c.HTTP, build, policy)
	res := Result{Attempts: attempts}
	if err != nil {
		res.Outcome = OutcomeTransport
		return c.fail(res, fmt.Sprintf("request failed after %d attempt(s): %v", attempts, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		res.Outcome = OutcomeTransport
		return c.fail(res, fmt.Sprintf("reading response: %v", err))
	}

	d, err := decodeResponse(raw)
	if err != nil {
		res.Outcome = OutcomeUnknownShape
		return c.fail(res, err.Error())
	}

	switch d.shape {
	case shapeError:
		res.Outcome = OutcomeAPIError
		return c.fail(res, "API error: "+d.text)
	case shapeUnknown:
		res.Outcome = OutcomeUnknownShape
		return c.fail(res, "could not extract text from response: "+preview(raw))
	}
	if d.shape != shapeChoices {
		c.log().Warn("unexpected response format, used fallback field", "shape", string(d.shape))
	}
	if d.text == "" {
		res.Outcome = OutcomeEmptyText
		return c.fail(res, "response contained no text")
	}

	res.Text = d.text
	res.Outcome = OutcomeOK
	return res
}

func (c *Client) fail(res Result, detail string) Result {
	res.Text = ""
	res.Detail = detail
	c.log().Warn("generation skipped", "outcome", string(res.Outcome), "detail", detail)
	return res
}

func (c *Client) log() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

func preview(raw []byte) string {
	const n = 200
	if len(raw) > n {
		return string(raw[:n]) + "..."
	}
	return string(raw)
}
