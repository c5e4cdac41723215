package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

// DefaultGeminiModel is used when no model is configured for the Gemini provider.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiOptions configures a [Gemini] provider.
type GeminiOptions struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini is a [Provider] backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, model: opts.Model}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) GenerateInspiration(ctx context.Context, category, language string) (models.Inspiration, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		TopP:             genai.Ptr[float32](1),
		TopK:             genai.Ptr[float32](32),
		ResponseMIMEType: "application/json",
		ResponseSchema:   objectSchema("inspirationalText", "bibleVerse"),
	}

	text, err := g.generate(ctx, inspirationPrompt(category, language), config)
	if err != nil {
		return models.Inspiration{}, err
	}

	var result models.Inspiration
	if err := decodeJSON(text, &result); err != nil {
		return models.Inspiration{}, err
	}
	return result, nil
}

func (g *Gemini) GenerateHymn(ctx context.Context, topic, language string) (models.GeneratedHymn, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   objectSchema("title", "lyrics"),
	}

	text, err := g.generate(ctx, hymnPrompt(topic, language), config)
	if err != nil {
		return models.GeneratedHymn{}, err
	}

	var result models.GeneratedHymn
	if err := decodeJSON(text, &result); err != nil {
		return models.GeneratedHymn{}, err
	}
	return result, nil
}

func (g *Gemini) Translate(ctx context.Context, text, target, source string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: 2048,
		ThinkingConfig:  &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](1024)},
	}

	out, err := g.generate(ctx, translatePrompt(text, target, source), config)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", shared.ErrAPIRequest, err)
	}
	return resp.Text(), nil
}

// objectSchema describes a JSON object whose listed fields are all required strings.
func objectSchema(fields ...string) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(fields))
	for _, f := range fields {
		properties[f] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   fields,
	}
}
