package openaiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// --- Chat Completion Configuration ---
const (
	userRole        = "user"
	jsonContentType = "application/json"
	errorBodyLimit  = 512
)

var (
	// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status from chat completion endpoint")

	// ErrNoChoices is returned when the response decodes but carries no completion.
	ErrNoChoices = errors.New("no choices in chat completion response")
)

// --- Structs for Chat Completion Request/Response ---

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat-completion endpoint.
// It sends exactly one request per Generate call and never retries.
type Client struct {
	url    string
	model  string
	apiKey string
	http   *http.Client
	log    zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client for the given endpoint. The request deadline is
// left to the caller's context.
func NewClient(url, model, apiKey string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		model:  model,
		apiKey: apiKey,
		http:   &http.Client{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as the single user message and returns the content of
// the first completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload := ChatRequest{
		Model:    c.model,
		Messages: []ChatMessage{{Role: userRole, Content: prompt}},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	c.log.Debug().Str("model", c.model).Int("prompt_chars", len(prompt)).Msg("Calling chat completion API")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", fmt.Errorf("%w: %s, body: %s", ErrUnexpectedStatus, resp.Status, string(body))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == nil {
		return "", ErrNoChoices
	}

	c.log.Debug().Dur("elapsed", time.Since(start)).Msg("Chat completion API responded")
	return *chatResp.Choices[0].Message.Content, nil
}
