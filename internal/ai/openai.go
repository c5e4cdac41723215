package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

// DefaultOpenAIModel is used when no model is configured for the OpenAI provider.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAIOptions configures an [OpenAI] provider.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAI is a [Provider] backed by the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(opts OpenAIOptions) *OpenAI {
	if opts.Model == "" || strings.HasPrefix(opts.Model, "gemini") {
		opts.Model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: opts.Model}
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) GenerateInspiration(ctx context.Context, category, language string) (models.Inspiration, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: inspirationJSON},
			{Role: openai.ChatMessageRoleUser, Content: inspirationPrompt(category, language)},
		},
		Temperature:    0.7,
		TopP:           1,
		ResponseFormat: jsonObject(),
	}

	text, err := o.complete(ctx, req)
	if err != nil {
		return models.Inspiration{}, err
	}

	var result models.Inspiration
	if err := decodeJSON(text, &result); err != nil {
		return models.Inspiration{}, err
	}
	return result, nil
}

func (o *OpenAI) GenerateHymn(ctx context.Context, topic, language string) (models.GeneratedHymn, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: hymnJSON},
			{Role: openai.ChatMessageRoleUser, Content: hymnPrompt(topic, language)},
		},
		ResponseFormat: jsonObject(),
	}

	text, err := o.complete(ctx, req)
	if err != nil {
		return models.GeneratedHymn{}, err
	}

	var result models.GeneratedHymn
	if err := decodeJSON(text, &result); err != nil {
		return models.GeneratedHymn{}, err
	}
	return result, nil
}

func (o *OpenAI) Translate(ctx context.Context, text, target, source string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: translatePrompt(text, target, source)},
		},
		Temperature: 0.2,
		MaxTokens:   2048,
	}

	out, err := o.complete(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", shared.ErrAPIRequest, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", shared.ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func jsonObject() *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
}
