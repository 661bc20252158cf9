// Package openai implements llm.Completer on the OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"pmsdoc-backend/internal/llm"
	"pmsdoc-backend/internal/shared/telemetry"
)

// Config configures the OpenAI client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

// Client implements llm.Completer.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewClient validates cfg and builds a client. Retries are disabled.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &Client{
		client:      openai.NewClient(opts...),
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
	}, nil
}

// Complete requests a JSON object completion.
func (c *Client) Complete(ctx context.Context, system, user string) (json.RawMessage, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if !isGPT5(c.model) {
		params.Temperature = openai.Float(c.temperature)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai response missing choices")
	}

	telemetry.Info("llm.response", map[string]any{
		"model":             c.model,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"finish_reason":     string(resp.Choices[0].FinishReason),
	})

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, llm.ErrEmptyResponse
	}
	return json.RawMessage(content), nil
}

// gpt-5 models reject an explicit temperature.
func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Completer = (*Client)(nil)
