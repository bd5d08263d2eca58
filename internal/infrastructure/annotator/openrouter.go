package annotator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/recipematch/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds the OpenRouter connection settings
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Retry             RetryPolicy
}

// Client is an Annotator backed by the OpenRouter chat-completions API.
type Client struct {
	http      *resty.Client
	model     string
	maxTokens int
	limiter   *rate.Limiter
	retry     RetryPolicy
	logger    *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a precise assistant for a grocery store. Reply with JSON only."

// NewClient creates an OpenRouter annotator. It returns
// domain.ErrAnnotatorNotConfigured when no API key is set.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrAnnotatorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "Recipe Match")

	return &Client{
		http:      client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		limiter:   rate.NewLimiter(limit, burst),
		retry:     cfg.Retry.normalized(),
		logger:    logger,
	}, nil
}

// Annotate sends the prompt and returns the model's raw answer. Retryable
// failures are retried per the client's RetryPolicy; the returned error is
// always a *domain.AnnotationError.
func (c *Client) Annotate(ctx context.Context, req domain.AnnotationRequest) (*domain.Annotation, error) {
	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.AnnotationError{Kind: domain.AnnotationErrTransport, Attempts: attempt, Err: err}
		}

		start := time.Now()
		annotation, aerr := c.do(ctx, req)
		if aerr == nil {
			c.logger.Debug("annotation completed",
				zap.Int("attempt", attempt),
				zap.Int("items", len(req.Items)),
				zap.String("model", annotation.Model),
				zap.Duration("latency", time.Since(start)))
			return annotation, nil
		}
		aerr.Attempts = attempt

		if !aerr.Retryable() || attempt >= c.retry.MaxAttempts {
			return nil, aerr
		}

		backoff := c.retry.Backoff(attempt)
		c.logger.Warn("annotation attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("kind", string(aerr.Kind)),
			zap.Int("status", aerr.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Duration("latency", time.Since(start)))

		if err := sleepContext(ctx, backoff); err != nil {
			return nil, aerr
		}
	}
}

func (c *Client) do(ctx context.Context, req domain.AnnotationRequest) (*domain.Annotation, *domain.AnnotationError) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: c.maxTokens,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, &domain.AnnotationError{Kind: domain.AnnotationErrTransport, Err: err}
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, &domain.AnnotationError{Kind: domain.AnnotationErrRateLimited, StatusCode: resp.StatusCode()}
	case resp.StatusCode() != http.StatusOK:
		return nil, &domain.AnnotationError{
			Kind:       domain.AnnotationErrStatus,
			StatusCode: resp.StatusCode(),
			Err:        errors.New(truncate(resp.String(), 200)),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &domain.AnnotationError{Kind: domain.AnnotationErrParse, StatusCode: resp.StatusCode(), Err: err}
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return nil, &domain.AnnotationError{Kind: domain.AnnotationErrEmpty, StatusCode: resp.StatusCode()}
	}

	return &domain.Annotation{Text: result.Choices[0].Message.Content, Model: result.Model}, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
