package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/atlas-backend/internal/pkg/httpx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

const (
	DefaultTimeout = 20 * time.Second
	chatPath       = "/chat/completions"
	maxErrorBody   = 512
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends one chat completion request per call. It never retries.
type Client interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
	Enabled() bool
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient never fails: without a base URL or key it returns a client whose
// calls report ReasonDisabled.
func NewClient(cfg Config, log *logger.Logger) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &client{
		log:        log.With("client", "OpenAIClient"),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *client) Enabled() bool { return c.baseURL != "" && c.apiKey != "" }

type chatRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
	Thinking thinking  `json:"thinking"`
}

type thinking struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("completion http %d: %s", e.StatusCode, e.Body)
}

func (e *httpStatusError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) Complete(ctx context.Context, system string, history []Message) (string, error) {
	if !c.Enabled() {
		return "", &CompletionError{Reason: ReasonDisabled}
	}

	ctx, span := otel.Tracer("atlas/openai").Start(ctx, "openai.chat_completions")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.messages", len(history)+1),
	)

	msgs := make([]Message, 0, len(history)+1)
	msgs = append(msgs, Message{Role: "system", Content: system})
	msgs = append(msgs, history...)

	start := time.Now()
	text, err := c.do(ctx, chatRequest{
		Model:    c.model,
		Messages: msgs,
		Thinking: thinking{Type: "disabled"},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	c.log.Debug("Completion ok", "duration_ms", time.Since(start).Milliseconds(), "chars", len(text))
	return text, nil
}

func (c *client) do(ctx context.Context, body chatRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", &CompletionError{Reason: ReasonNetwork, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, &buf)
	if err != nil {
		return "", &CompletionError{Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if httpx.IsTimeout(err) {
			return "", &CompletionError{Reason: ReasonTimeout, Err: err}
		}
		return "", &CompletionError{Reason: ReasonNetwork, Err: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		if httpx.IsTimeout(readErr) {
			return "", &CompletionError{Reason: ReasonTimeout, Err: readErr}
		}
		return "", &CompletionError{Reason: ReasonNetwork, Err: readErr}
	}

	if !httpx.IsSuccessStatus(resp.StatusCode) {
		snippet := string(raw)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		statusErr := &httpStatusError{StatusCode: resp.StatusCode, Body: snippet}
		return "", &CompletionError{Reason: ReasonHTTPStatus, Status: resp.StatusCode, Err: statusErr}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &CompletionError{Reason: ReasonDecode, Status: resp.StatusCode, Err: err}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", &CompletionError{Reason: ReasonEmpty, Status: resp.StatusCode}
	}
	return out.Choices[0].Message.Content, nil
}
