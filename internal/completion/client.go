// AngelaMos | 2026
// client.go

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
	"unicode/utf8"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/support-gateway/internal/config"
)

// ErrUpstreamUnavailable covers every way the completion service can fail.
// Callers never see the provider's own error detail.
var ErrUpstreamUnavailable = errors.New("completion upstream unavailable")

const maxResponseBytes = 1 << 20

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	http         *http.Client
	limiter      *rate.Limiter
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
	logSometimes *rate.Sometimes
}

func NewClient(cfg config.CompletionConfig) *Client {
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = config.DefaultSystemPrompt
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter:      rate.NewLimiter(limit, max(cfg.Burst, 1)),
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		systemPrompt: prompt,
		logSometimes: &rate.Sometimes{First: 5, Interval: time.Minute},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete sends the rendered business context and the user's message and
// returns the assistant reply.
func (c *Client) Complete(
	ctx context.Context,
	businessContext, userMessage string,
) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: wait for rate limiter: %w", ErrUpstreamUnavailable, err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: c.systemMessage(businessContext)},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logSometimes.Do(func() {
			slog.WarnContext(ctx, "completion upstream rejected request",
				"status", resp.StatusCode,
				"body", truncate(string(raw), 256),
			)
		})
		return "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrUpstreamUnavailable, err)
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUpstreamUnavailable)
	}

	return out.Choices[0].Message.Content, nil
}

func (c *Client) systemMessage(businessContext string) string {
	return c.systemPrompt + "\n\nBusiness info:\n" + businessContext
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
