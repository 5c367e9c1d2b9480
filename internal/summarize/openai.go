package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIQuotaMessage is shown when the OpenAI account is out of quota.
const OpenAIQuotaMessage = "OpenAI API quota exceeded. Please check your billing status at https://platform.openai.com/account/usage"

// DefaultOpenAIModel is the fixed lower-tier chat model.
const DefaultOpenAIModel = openai.ChatModelGPT3_5Turbo

// OpenAIConfig configures an OpenAI model.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIModel calls the Chat Completions API.
type OpenAIModel struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAI creates an OpenAI model. The SDK's retries are disabled.
func NewOpenAI(cfg OpenAIConfig) (*OpenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}

	m := DefaultOpenAIModel
	if cfg.Model != "" {
		m = openai.ChatModel(cfg.Model)
	}

	return &OpenAIModel{client: openai.NewClient(opts...), model: m}, nil
}

// Provider returns "openai".
func (m *OpenAIModel) Provider() string { return "openai" }

// QuotaMessage returns the OpenAI billing remediation text.
func (m *OpenAIModel) QuotaMessage() string { return OpenAIQuotaMessage }

// Complete sends prompt as a single user message.
func (m *OpenAIModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: m.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %w", ErrQuota, err)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
