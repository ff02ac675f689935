// internal/common/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mic-ai-service/internal/common/config"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrLLMUnavailable = errors.New("LLM_UNAVAILABLE")
	ErrRateLimited    = errors.New("LLM_RATE_LIMITED")
	ErrLLMCallFailed  = errors.New("LLM_CALL_FAILED")
	ErrLLMTimeout     = errors.New("LLM_TIMEOUT")
)

// Message is one role/content entry sent to the model.
type Message struct {
	Role    string
	Content string
}

// Request describes a single chat completion.
type Request struct {
	Messages    []Message
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Client submits role/content message lists and returns the completion text.
type Client interface {
	// Complete returns the full completion in one response.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream requests a streamed completion and returns the accumulated fragments.
	Stream(ctx context.Context, req Request) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible endpoint (Groq by default).
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient returns ErrLLMUnavailable when the config carries no usable key.
func NewClient(cfg config.LLMConfig) (*OpenAIClient, error) {
	if !cfg.HasValidKey() {
		return nil, ErrLLMUnavailable
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: config.GetDuration(cfg.Timeout),
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req, false))
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) Stream(ctx context.Context, req Request) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(req, true))
	if err != nil {
		return "", classify(ctx, err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", classify(ctx, err)
		}
		if len(chunk.Choices) > 0 {
			sb.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	return sb.String(), nil
}

func (c *OpenAIClient) buildRequest(req Request, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

func (c *OpenAIClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func classify(ctx context.Context, err error) error {
	if IsRateLimit(err) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrLLMTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrLLMCallFailed, err)
}

// IsRateLimit reports whether err signals provider throttling, either as an
// HTTP 429 or an error message mentioning a rate limit.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}
