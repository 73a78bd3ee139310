// Package llm is a thin client for an OpenAI-compatible chat-completion API.
//
// Complete never surfaces transport details to callers beyond the sentinel
// errors below; callers treat any error as "no reply" and substitute a
// localized fallback.
package llm

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

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatbotchef/chatbotchef/internal/config"
	"github.com/chatbotchef/chatbotchef/internal/observability"
	"github.com/chatbotchef/chatbotchef/internal/retry"
)

var (
	// ErrNotConfigured is returned without any network call when the API key
	// or model is empty.
	ErrNotConfigured = errors.New("llm: api key or model not configured")
	// ErrTransient marks failures worth retrying: 5xx, timeouts, network errors.
	ErrTransient = errors.New("llm: transient failure")
	// ErrMalformed marks 4xx responses and unusable bodies.
	ErrMalformed = errors.New("llm: unusable response")
)

const (
	defaultTemperature = 0.7
	maxLogBody         = 2048
)

// Role values accepted by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client calls {BaseURL}/chat/completions.
type Client struct {
	APIKey       string
	Model        string
	Organization string
	Project      string
	BaseURL      string
	HTTP         *http.Client
	Policy       retry.Policy
	Temperature  float64
}

// DefaultPolicy is three attempts with a linear 350ms step, retrying only
// ErrTransient.
func DefaultPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.Linear(350 * time.Millisecond),
		Retryable:   func(err error) bool { return errors.Is(err, ErrTransient) },
	}
}

// New builds a Client from configuration.
func New(cfg config.OpenAIConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &Client{
		APIKey:       strings.TrimSpace(cfg.APIKey),
		Model:        strings.TrimSpace(cfg.Model),
		Organization: strings.TrimSpace(cfg.Organization),
		Project:      strings.TrimSpace(cfg.Project),
		BaseURL:      base,
		HTTP:         &http.Client{Timeout: 60 * time.Second},
		Policy:       DefaultPolicy(),
		Temperature:  defaultTemperature,
	}
}

// Configured reports whether Complete would attempt a call.
func (c *Client) Configured() bool {
	return c != nil && c.APIKey != "" && c.Model != ""
}

// Complete sends messages and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.Configured() {
		log.Warn().Str("component", "llm").Msg("completion skipped: api key or model missing")
		observability.CompletionsTotal.WithLabelValues("skipped").Inc()
		return "", ErrNotConfigured
	}

	ctx, span := otel.Tracer("llm/Client").Start(ctx, "Complete",
		trace.WithAttributes(
			attribute.String("llm.model", c.Model),
			attribute.Int("llm.messages", len(messages)),
		),
	)
	defer span.End()

	body, err := json.Marshal(completionRequest{Model: c.Model, Messages: messages, Temperature: c.Temperature})
	if err != nil {
		return "", err
	}

	var out string
	err = retry.Do(ctx, c.Policy, func(ctx context.Context, attempt int) error {
		s, err := c.do(ctx, body)
		if err != nil {
			log.Warn().Err(err).Str("component", "llm").Int("attempt", attempt).Str("model", c.Model).Msg("completion attempt failed")
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.CompletionsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	observability.CompletionsTotal.WithLabelValues("ok").Inc()
	return out, nil
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	url := c.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.Organization)
	}
	if c.Project != "" {
		req.Header.Set("OpenAI-Project", c.Project)
	}

	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrTransient, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode >= 500 {
			return "", fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, truncate(raw))
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrMalformed, resp.StatusCode, truncate(raw))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", fmt.Errorf("%w: empty body", ErrMalformed)
	}
	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode: %v: %s", ErrMalformed, err, truncate(raw))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformed)
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(b []byte) string {
	if len(b) <= maxLogBody {
		return string(b)
	}
	return string(b[:maxLogBody]) + "… [truncated]"
}
