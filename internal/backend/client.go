package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
	"github.com/tidwall/gjson"
)

// Endpoint paths
const (
	ChatPath            = "/api/chat"
	RecommendationsPath = "/api/recommendations"
)

// DefaultBaseURL is where the assistant backend listens by default
const DefaultBaseURL = "http://localhost:8503"

// ErrInvalidResponse is returned when a 2xx body is not JSON
var ErrInvalidResponse = errors.New("backend: invalid response body")

// Config holds connection settings
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Retry     RetryConfig
}

// DefaultConfig returns settings for a local backend
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		UserAgent: "shopforge/dev",
		Retry:     DefaultRetryConfig(),
	}
}

// Client talks to the shopping assistant backend
type Client struct {
	cfg     Config
	http    *http.Client
	onRetry func(attempt int, delay time.Duration, err error)
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryHook is called before each retry wait
func WithRetryHook(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(c *Client) { c.onRetry = fn }
}

// NewClient creates a client for cfg
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	c.onRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("backend request failed, retrying", "attempt", attempt, "max", c.cfg.Retry.MaxRetries, "delay", delay, "err", err)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message             string            `json:"message"`
	ConversationHistory []session.Message `json:"conversationHistory"`
}

// ChatResponse is a parsed chat reply. Products is nil when the backend
// sent no products field and empty when it sent an empty array.
type ChatResponse struct {
	Message        string
	Error          string
	Products       []product.Product
	FiltersApplied gjson.Result
}

// HasProducts reports whether the reply carried a products array at all
func (r ChatResponse) HasProducts() bool {
	return r.Products != nil
}

// Chat sends one user message with the prior transcript. A backend-reported
// error comes back in ChatResponse.Error; transport and parse failures come
// back as err.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if req.ConversationHistory == nil {
		req.ConversationHistory = []session.Message{}
	}
	body, err := c.post(ctx, ChatPath, req)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Message != "" {
			return ChatResponse{Error: httpErr.Message}, nil
		}
		return ChatResponse{}, err
	}

	parsed := gjson.ParseBytes(body)
	resp := ChatResponse{
		Message:        parsed.Get("message").String(),
		Error:          parsed.Get("error").String(),
		FiltersApplied: parsed.Get("filters_applied"),
	}
	if products := parsed.Get("products"); products.Exists() && products.Type != gjson.Null {
		resp.Products = product.NormalizeList(products)
		if resp.Products == nil {
			resp.Products = []product.Product{}
		}
	}
	log.Debug("chat response", "products", len(resp.Products), "present", resp.HasProducts(), "error", resp.Error)
	return resp, nil
}

type recommendationsRequest struct {
	Product       json.RawMessage        `json:"product"`
	SearchContext *session.SearchContext `json:"searchContext"`
}

// Recommendations fetches products similar to p. The first non-empty of the
// recommendations and products arrays wins.
func (c *Client) Recommendations(ctx context.Context, p product.Product, sc *session.SearchContext) ([]product.Product, error) {
	body, err := c.post(ctx, RecommendationsPath, recommendationsRequest{Product: p.Payload(), SearchContext: sc})
	if err != nil {
		return nil, err
	}
	parsed := gjson.ParseBytes(body)
	if msg := parsed.Get("error").String(); msg != "" {
		return nil, fmt.Errorf("recommendations failed: %s", msg)
	}
	for _, field := range []string{"recommendations", "products"} {
		if list := product.NormalizeList(parsed.Get(field)); len(list) > 0 {
			return list, nil
		}
	}
	return []product.Product{}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return withRetry(ctx, c.cfg.Retry, c.onRetry, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, path, data)
	})
}

func (c *Client) do(ctx context.Context, path string, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	log.Debug("backend request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(body, "error").String(),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       body,
		}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w from %s", ErrInvalidResponse, path)
	}
	return body, nil
}
