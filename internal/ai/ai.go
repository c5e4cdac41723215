// package ai implements the text-generation providers behind the AI gateway
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

// Provider generates hymnal content with a large language model.
type Provider interface {
	// Name identifies the provider, e.g. "gemini".
	Name() string

	// GenerateInspiration writes a short devotional on category in language plus a Bible verse.
	GenerateInspiration(ctx context.Context, category, language string) (models.Inspiration, error)

	// GenerateHymn writes a titled 4-verse hymn on topic in language.
	GenerateHymn(ctx context.Context, topic, language string) (models.GeneratedHymn, error)

	// Translate translates text from source to target, returning only the translated text.
	Translate(ctx context.Context, text, target, source string) (string, error)
}

// Provider names accepted in configuration
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// New builds the provider selected by cfg.
//
// Returns [shared.ErrMissingCredentials] when no API key is configured or present in the environment.
func New(ctx context.Context, cfg shared.AIConfig, httpClient *http.Client) (Provider, error) {
	key := cfg.ResolveAPIKey()
	if key == "" {
		return nil, fmt.Errorf("%w: no API key for provider %q", shared.ErrMissingCredentials, cfg.Provider)
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		return NewGemini(ctx, GeminiOptions{
			APIKey:     key,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		})
	case ProviderOpenAI:
		return NewOpenAI(OpenAIOptions{
			APIKey:     key,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown AI provider %q", shared.ErrInvalidConfig, cfg.Provider)
	}
}

// decodeJSON parses a model's structured reply, tolerating surrounding whitespace and code fences.
func decodeJSON(text string, out any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	if text == "" {
		return fmt.Errorf("%w: empty model output", shared.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	return nil
}
