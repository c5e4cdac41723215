// AI gateway client implementing [Generator]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

var errNotConfigured = fmt.Errorf("%w: no gateway url", shared.ErrNotConfigured)

// AIClientOptions configures an [AIClient].
type AIClientOptions struct {
	// GatewayURL is the full URL of the gateway endpoint. Empty disables remote calls.
	GatewayURL string
	HTTPClient *http.Client
	Timeout    time.Duration
	// MaxFailures consecutive failed calls open the breaker for Cooldown.
	MaxFailures int
	Cooldown    time.Duration
	Logger      *log.Logger
}

// AIClient calls the AI gateway. Each operation makes exactly one attempt; an open circuit
// breaker fails fast into the same sentinel values as a failed call.
type AIClient struct {
	gatewayURL string
	httpClient *http.Client
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker
	logger     *log.Logger
}

// NewAIClient creates a new gateway client.
func NewAIClient(opts AIClientOptions) *AIClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	c := &AIClient{
		gatewayURL: opts.GatewayURL,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}

	maxFailures := uint32(opts.MaxFailures)
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-gateway",
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// Configured reports whether a gateway URL is set.
func (c *AIClient) Configured() bool {
	return c.gatewayURL != ""
}

// BreakerState returns the breaker's current state name.
func (c *AIClient) BreakerState() string {
	return c.breaker.State().String()
}

func (c *AIClient) GenerateInspiration(ctx context.Context, category models.Category, language models.Language) models.Inspiration {
	if category == "" || category == models.AllCategories {
		category = models.GeneralTheme
	}

	var result models.Inspiration
	err := c.call(ctx, ActionGenerateInspiration, InspirationPayload{
		Category: string(category),
		Language: string(language),
	}, &result)
	if err == nil && result.InspirationalText == "" {
		err = fmt.Errorf("%w: empty inspirational text", shared.ErrMalformedResponse)
	}
	if err != nil {
		return models.Inspiration{InspirationalText: UserMessage(err)}
	}
	return result
}

func (c *AIClient) GenerateHymn(ctx context.Context, topic string, language models.Language) models.GeneratedHymn {
	var result models.GeneratedHymn
	err := c.call(ctx, ActionGenerateHymn, HymnPayload{
		Topic:    topic,
		Language: string(language),
	}, &result)
	if err == nil && result.Title == "" && result.Lyrics == "" {
		err = fmt.Errorf("%w: empty hymn", shared.ErrMalformedResponse)
	}
	if err != nil {
		return models.GeneratedHymn{Title: models.ErrorTitle, Lyrics: UserMessage(err)}
	}

	result.SessionID = uuid.NewString()
	return result
}

func (c *AIClient) SearchAndGenerateHymn(ctx context.Context, searchTerm string, language models.Language) models.GeneratedHymn {
	return c.GenerateHymn(ctx, searchTerm, language)
}

func (c *AIClient) Translate(ctx context.Context, text string, target, source models.Language) string {
	translated, err := c.TryTranslate(ctx, text, target, source)
	if err != nil {
		return text
	}
	return translated
}

func (c *AIClient) TryTranslate(ctx context.Context, text string, target, source models.Language) (string, error) {
	if text == "" {
		return "", nil
	}
	if source == "" {
		source = models.English
	}

	var result string
	err := c.call(ctx, ActionTranslate, TranslatePayload{
		TextToTranslate: text,
		TargetLanguage:  string(target),
		SourceLanguage:  string(source),
	}, &result)
	if err != nil {
		return "", err
	}
	return result, nil
}

// call posts one action to the gateway through the breaker and decodes the result into out.
func (c *AIClient) call(ctx context.Context, action string, payload, out any) error {
	if !c.Configured() {
		return errNotConfigured
	}

	start := time.Now()
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.post(ctx, action, payload, out)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if err != nil {
		c.logger.Warn("ai call failed", "action", action, "duration", time.Since(start), "error", err)
		return err
	}

	c.logger.Debug("ai call", "action", action, "duration", time.Since(start))
	return nil
}

func (c *AIClient) post(ctx context.Context, action string, payload, out any) error {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	body, err := json.Marshal(Envelope{Action: action, Payload: rawPayload})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var decoded Response
	decodeErr := json.Unmarshal(data, &decoded)

	if resp.StatusCode != http.StatusOK {
		gwErr := &GatewayError{Status: resp.StatusCode}
		if decodeErr == nil {
			gwErr.Message = decoded.Error
		}
		return gwErr
	}

	if decodeErr != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, decodeErr)
	}
	if len(decoded.Result) == 0 || string(decoded.Result) == "null" {
		return fmt.Errorf("%w: missing result", shared.ErrMalformedResponse)
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	return nil
}

// countsAsSuccess keeps caller cancellations and client-side rejections from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Status >= 400 && gwErr.Status < 500
	}
	return false
}
