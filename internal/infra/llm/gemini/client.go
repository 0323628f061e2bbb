package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/StuFraser/aqua-ripple/internal/domain/aimodel"
	"github.com/StuFraser/aqua-ripple/pkg/metrics"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultModel   = "gemini-2.5-flash"
)

// Config holds connection settings for the OpenAI compatible Gemini endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Client sends multimodal prompts to Gemini through its OpenAI compatible API.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewClient constructs a Gemini client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

var _ aimodel.Generator = (*Client)(nil)

// Generate sends the prompt text followed by its images and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt aimodel.Prompt) (aimodel.Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    []openai.ChatCompletionMessage{buildMessage(prompt)},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return aimodel.Reply{}, fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return aimodel.Reply{}, errors.New("gemini returned no choices")
	}

	return aimodel.Reply{
		Text:  resp.Choices[0].Message.Content,
		Model: c.model,
		Usage: metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// buildMessage uses plain content for text-only prompts and multi-part content otherwise.
func buildMessage(prompt aimodel.Prompt) openai.ChatCompletionMessage {
	if len(prompt.ImageURLs) == 0 {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt.Text,
		}
	}

	parts := make([]openai.ChatMessagePart, 0, len(prompt.ImageURLs)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt.Text,
	})
	for _, u := range prompt.ImageURLs {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    u,
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}
