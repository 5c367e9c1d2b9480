package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiQuotaMessage is shown when the Gemini project is out of quota.
const GeminiQuotaMessage = "Gemini API quota exceeded. Please check your usage at https://aistudio.google.com/usage"

// DefaultGeminiModel is the fixed lower-tier Gemini model.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures a Gemini model.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiModel calls the Gemini API through the genai SDK.
type GeminiModel struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a Gemini model.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is empty")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/"}
	}

	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	m := cfg.Model
	if m == "" {
		m = DefaultGeminiModel
	}
	return &GeminiModel{cli: cli, model: m}, nil
}

// Provider returns "gemini".
func (g *GeminiModel) Provider() string { return "gemini" }

// QuotaMessage returns the Gemini usage remediation text.
func (g *GeminiModel) QuotaMessage() string { return GeminiQuotaMessage }

// Complete requests a JSON reply at temperature 0.
func (g *GeminiModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: response has no content")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
