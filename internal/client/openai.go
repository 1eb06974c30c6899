package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/markis/copilot-chat/internal/chat"
	"github.com/markis/copilot-chat/internal/stream"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	SystemPrompt   = "You are a helpful assistant"

	chatCompletionsPath = "/chat/completions"
	requestIDHeader     = "X-Request-ID"
	maxErrorBody        = 1 << 20
)

// Message is one entry of the request's messages array.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body posted to the chat-completions endpoint.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	logger       *slog.Logger
	newRequestID func() string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL points the client at another OpenAI-compatible host. A trailing
// slash is ignored.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimRight(baseURL, "/"); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestID overrides how X-Request-ID values are generated.
func WithRequestID(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newRequestID = fn
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient:   getHTTPClient(),
		baseURL:      DefaultBaseURL,
		logger:       slog.Default(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

// getHTTPClient returns the shared HTTP client. It has no overall timeout
// because a streamed reply stays open for as long as the model writes;
// callers bound requests through their context instead.
func getHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			ForceAttemptHTTP2:     true,
		}
		transport.DialContext = (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext

		httpClient = &http.Client{Transport: transport}
	})
	return httpClient
}

// BuildRequest maps the conversation onto the chat-completions request body.
func BuildRequest(params chat.Params, prior []chat.Turn, turn chat.Turn) ChatRequest {
	messages := make([]Message, 0, len(prior)+2)
	messages = append(messages, Message{Role: "system", Content: SystemPrompt})
	for _, t := range prior {
		messages = append(messages, Message{Role: role(t.Speaker), Content: t.Text})
	}
	messages = append(messages, Message{Role: "user", Content: turn.Text})

	return ChatRequest{
		Model:       params.Model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		Stream:      true,
	}
}

func role(s chat.Speaker) string {
	if s == chat.Agent {
		return "assistant"
	}
	return "user"
}

// Stream sends turn with its prior conversation and returns the reply stream.
// It fails before any fragment is produced when the endpoint rejects the
// request; the returned stream must be closed by the caller.
func (c *Client) Stream(ctx context.Context, params chat.Params, prior []chat.Turn, turn chat.Turn) (chat.Stream, error) {
	data, err := json.Marshal(BuildRequest(params, prior, turn))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := c.newRequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+params.APIKey)
	if params.Organization != "" {
		req.Header.Set("OpenAI-Organization", params.Organization)
	}
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}

	logger := c.logger.With("request_id", requestID, "model", params.Model)
	logger.Debug("sending chat request", "url", req.URL.String(), "messages", len(prior)+2)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.Canceled) {
				return nil, fmt.Errorf("%w: %w", stream.ErrCancelled, ctxErr)
			}
			return nil, fmt.Errorf("request timed out: %w", ctxErr)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}

	logger.Debug("chat response received", "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		defer closeBody(resp.Body, logger)
		return nil, readError(resp)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrEmptyBody
	}

	return stream.NewParser(ctx, resp.Body, stream.WithLogger(logger)), nil
}

// readError classifies a non-200 response without ever decoding it as an
// event stream.
func readError(resp *http.Response) error {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	}
	if apiErr, ok := stream.ParseErrorBody(resp.StatusCode, body); ok {
		return apiErr
	}
	return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
}

func closeBody(body io.Closer, logger *slog.Logger) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil {
		logger.Warn("failed to close response body", "error", err)
	}
}
