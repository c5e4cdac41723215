package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hymnal/internal/ai"
	"github.com/desertthunder/hymnal/internal/services"
	"github.com/desertthunder/hymnal/internal/shared"
)

const (
	genericMessage = services.MessageGeneric
	maxBodyBytes   = 1 << 20
)

// GatewayHandler serves the AI gateway endpoint: POST {action, payload} -> {result} or {error}.
//
// A nil provider means AI is not configured; every request then fails with the not-configured message.
type GatewayHandler struct {
	path     string
	provider ai.Provider
	logger   *log.Logger
}

// NewGatewayHandler creates a gateway handler mounted at path.
func NewGatewayHandler(path string, provider ai.Provider, logger *log.Logger) *GatewayHandler {
	if path == "" {
		path = "/api/ai"
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GatewayHandler{path: path, provider: provider, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *GatewayHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP dispatches one gateway action to the provider.
func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if h.provider == nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: services.MessageNotConfigured})
		return
	}

	envelope, err := decodeEnvelope(r)
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	start := time.Now()
	ctx := r.Context()

	var result any
	switch envelope.Action {
	case services.ActionGenerateInspiration:
		var p services.InspirationPayload
		if err = decodePayload(envelope, &p); err == nil {
			result, err = h.provider.GenerateInspiration(ctx, p.Category, p.Language)
		}
	case services.ActionGenerateHymn:
		var p services.HymnPayload
		if err = decodePayload(envelope, &p); err == nil {
			result, err = h.provider.GenerateHymn(ctx, p.Topic, p.Language)
		}
	case services.ActionTranslate:
		var p services.TranslatePayload
		if err = decodePayload(envelope, &p); err == nil {
			result, err = h.provider.Translate(ctx, p.TextToTranslate, p.TargetLanguage, p.Source())
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: services.MessageInvalidAction})
		return
	}

	if err != nil {
		h.fail(w, r, envelope.Action, err)
		return
	}

	h.logger.Debug("gateway action", "id", RequestIDFrom(ctx), "action", envelope.Action, "provider", h.provider.Name(), "duration", time.Since(start))
	writeJSON(w, http.StatusOK, resultBody{Result: result})
}

func (h *GatewayHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logger.Error("gateway action failed", "id", RequestIDFrom(r.Context()), "action", action, "error", err)

	message := err.Error()
	if message == "" {
		message = genericMessage
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: message})
}

// decodeEnvelope reads the request body. An empty body reads as an envelope with no action.
func decodeEnvelope(r *http.Request) (services.Envelope, error) {
	var envelope services.Envelope

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return envelope, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return envelope, nil
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return envelope, fmt.Errorf("%w: invalid request body: %v", shared.ErrInvalidInput, err)
	}
	return envelope, nil
}

func decodePayload(envelope services.Envelope, out any) error {
	if len(envelope.Payload) == 0 || string(envelope.Payload) == "null" {
		return fmt.Errorf("%w: missing payload for %s", shared.ErrInvalidInput, envelope.Action)
	}
	if err := json.Unmarshal(envelope.Payload, out); err != nil {
		return fmt.Errorf("%w: invalid payload for %s: %v", shared.ErrInvalidInput, envelope.Action, err)
	}
	return nil
}

// HealthHandler reports gateway liveness and which provider is configured.
type HealthHandler struct {
	provider ai.Provider
}

// NewHealthHandler creates a health handler for provider, which may be nil.
func NewHealthHandler(provider ai.Provider) *HealthHandler {
	return &HealthHandler{provider: provider}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider := "none"
	if h.provider != nil {
		provider = h.provider.Name()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"provider":   provider,
		"configured": h.provider != nil,
	})
}

// NewGatewayRouter builds the gateway's router with request id, logging and panic recovery.
func NewGatewayRouter(path string, provider ai.Provider, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	router := NewBasicRouter()
	router.Use(RequestID(), RequestLogger(logger), Recoverer(logger))
	router.Handler(NewGatewayHandler(path, provider, logger))
	router.Handle(http.MethodGet, "/health", NewHealthHandler(provider))
	return router
}

// NewGatewayServer returns an http.Server for the gateway described by cfg.
func NewGatewayServer(cfg shared.GatewayConfig, provider ai.Provider, logger *log.Logger) *http.Server {
	return NewHTTPServer(cfg.Address(), NewGatewayRouter(cfg.Path, provider, logger))
}
