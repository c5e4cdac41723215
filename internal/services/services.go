// package services defines the [Generator] interface and the wire contract shared with the AI gateway
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/hymnal/internal/models"
)

// Gateway actions
const (
	ActionGenerateInspiration = "generateInspiration"
	ActionGenerateHymn        = "generateHymn"
	ActionTranslate           = "translate"
)

// User-facing failure messages carried in the sentinel values.
const (
	MessageGeneric       = "There was an error connecting to the AI service. Please try again later."
	MessageNotConfigured = "AI features are not configured for this application."
	MessageInvalidAction = "Invalid action"
)

// Generator produces AI content. Implementations never return errors from the content operations:
// failures are reported in-band through sentinel values.
type Generator interface {
	// GenerateInspiration returns a devotional and Bible verse for category, or the failure message with an empty verse.
	GenerateInspiration(ctx context.Context, category models.Category, language models.Language) models.Inspiration

	// GenerateHymn returns a new hymn about topic, or a hymn titled [models.ErrorTitle] whose lyrics hold the failure message.
	GenerateHymn(ctx context.Context, topic string, language models.Language) models.GeneratedHymn

	// SearchAndGenerateHymn generates a hymn from a catalog search term that had no matches.
	SearchAndGenerateHymn(ctx context.Context, searchTerm string, language models.Language) models.GeneratedHymn

	// Translate returns text translated from source to target, or text unchanged on failure.
	Translate(ctx context.Context, text string, target, source models.Language) string

	// TryTranslate is Translate with the failure reported as an error.
	TryTranslate(ctx context.Context, text string, target, source models.Language) (string, error)
}

// Envelope is the request body posted to the gateway.
type Envelope struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// InspirationPayload is the payload of [ActionGenerateInspiration].
type InspirationPayload struct {
	Category string `json:"category"`
	Language string `json:"language"`
}

// HymnPayload is the payload of [ActionGenerateHymn].
type HymnPayload struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
}

// TranslatePayload is the payload of [ActionTranslate]. An empty source means English.
type TranslatePayload struct {
	TextToTranslate string `json:"textToTranslate"`
	TargetLanguage  string `json:"targetLanguage"`
	SourceLanguage  string `json:"sourceLanguage,omitempty"`
}

// Source returns the source language, defaulting to English.
func (p TranslatePayload) Source() string {
	if p.SourceLanguage == "" {
		return string(models.English)
	}
	return p.SourceLanguage
}

// Response is the gateway's reply: a result on success, an error message otherwise.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// GatewayError is a non-success reply from the gateway.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Message)
}

// UserMessage returns the message to show for err: the gateway's own error text when it sent one,
// the not-configured message when no gateway is set up, and the generic message otherwise.
func UserMessage(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	if errors.Is(err, errNotConfigured) {
		return MessageNotConfigured
	}
	return MessageGeneric
}
