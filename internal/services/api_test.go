package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

// gateway returns a test server that records the last envelope and replies with status and body.
func gateway(t *testing.T, status int, body string, last *Envelope, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		if last != nil {
			if err := json.NewDecoder(r.Body).Decode(last); err != nil {
				t.Errorf("failed to decode envelope: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAIClient(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewAIClient(AIClientOptions{})

			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if c.timeout != 30*time.Second {
				t.Errorf("expected 30s timeout, got %v", c.timeout)
			}
			if c.Configured() {
				t.Error("expected client without gateway url to be unconfigured")
			}
			if c.BreakerState() != "closed" {
				t.Errorf("expected closed breaker, got %s", c.BreakerState())
			}
		})
	})

	t.Run("GenerateInspiration", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			var last Envelope
			server := gateway(t, http.StatusOK, `{"result":{"inspirationalText":"Be still.","bibleVerse":"Psalm 46:10"}}`, &last, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			got := c.GenerateInspiration(ctx, models.Advent, models.Afrikaans)

			if got.InspirationalText != "Be still." || got.BibleVerse != "Psalm 46:10" {
				t.Errorf("unexpected inspiration %+v", got)
			}
			if last.Action != ActionGenerateInspiration {
				t.Errorf("expected action %s, got %s", ActionGenerateInspiration, last.Action)
			}

			var payload InspirationPayload
			if err := json.Unmarshal(last.Payload, &payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload.Category != "Advent" || payload.Language != "af" {
				t.Errorf("unexpected payload %+v", payload)
			}
		})

		t.Run("All Uses General Theme", func(t *testing.T) {
			var last Envelope
			server := gateway(t, http.StatusOK, `{"result":{"inspirationalText":"x","bibleVerse":"y"}}`, &last, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			c.GenerateInspiration(ctx, models.AllCategories, models.English)

			var payload InspirationPayload
			json.Unmarshal(last.Payload, &payload)
			if payload.Category != "general" {
				t.Errorf("expected general theme, got %q", payload.Category)
			}
		})

		t.Run("Gateway Error Message", func(t *testing.T) {
			server := gateway(t, http.StatusInternalServerError, `{"error":"quota exceeded"}`, nil, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			got := c.GenerateInspiration(ctx, models.Praise, models.English)

			if got.InspirationalText != "quota exceeded" || got.BibleVerse != "" {
				t.Errorf("unexpected sentinel %+v", got)
			}
		})

		t.Run("Not Configured", func(t *testing.T) {
			c := NewAIClient(AIClientOptions{})

			got := c.GenerateInspiration(ctx, models.Praise, models.English)

			if got.InspirationalText != MessageNotConfigured || got.BibleVerse != "" {
				t.Errorf("unexpected sentinel %+v", got)
			}
		})
	})

	t.Run("GenerateHymn", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			var last Envelope
			server := gateway(t, http.StatusOK, `{"result":{"title":"Morning Light","lyrics":"Verse one\n\nVerse two"}}`, &last, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			got := c.GenerateHymn(ctx, "sunrise", models.Zulu)

			if got.Title != "Morning Light" || got.Failed() {
				t.Errorf("unexpected hymn %+v", got)
			}
			if got.SessionID == "" {
				t.Error("expected session id to be assigned")
			}
			if !got.Usable() {
				t.Error("expected generated hymn to be usable")
			}

			var payload HymnPayload
			json.Unmarshal(last.Payload, &payload)
			if payload.Topic != "sunrise" || payload.Language != "zu" {
				t.Errorf("unexpected payload %+v", payload)
			}
		})

		t.Run("Server Error Without Body", func(t *testing.T) {
			server := gateway(t, http.StatusInternalServerError, ``, nil, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			got := c.GenerateHymn(ctx, "hope", models.English)

			if got.Title != models.ErrorTitle {
				t.Errorf("expected title %q, got %q", models.ErrorTitle, got.Title)
			}
			if got.Lyrics != MessageGeneric {
				t.Errorf("expected generic message, got %q", got.Lyrics)
			}
			if got.SessionID != "" {
				t.Error("failed generation should not carry a session id")
			}
		})

		t.Run("Malformed Responses", func(t *testing.T) {
			for _, body := range []string{`not json`, `{}`, `{"result":null}`, `{"result":"a string"}`, `{"result":{}}`} {
				server := gateway(t, http.StatusOK, body, nil, nil)
				c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

				got := c.GenerateHymn(ctx, "hope", models.English)
				if !got.Failed() || got.Lyrics != MessageGeneric {
					t.Errorf("body %q: expected generic sentinel, got %+v", body, got)
				}
			}
		})

		t.Run("SearchAndGenerateHymn Sends Term As Topic", func(t *testing.T) {
			var last Envelope
			server := gateway(t, http.StatusOK, `{"result":{"title":"T","lyrics":"L"}}`, &last, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			c.SearchAndGenerateHymn(ctx, "still waters", models.English)

			var payload HymnPayload
			json.Unmarshal(last.Payload, &payload)
			if last.Action != ActionGenerateHymn || payload.Topic != "still waters" {
				t.Errorf("unexpected request %s %+v", last.Action, payload)
			}
		})
	})

	t.Run("Translate", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			var last Envelope
			server := gateway(t, http.StatusOK, `{"result":"Genade"}`, &last, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			got := c.Translate(ctx, "Grace", models.Afrikaans, models.English)
			if got != "Genade" {
				t.Errorf("expected Genade, got %q", got)
			}

			var payload TranslatePayload
			json.Unmarshal(last.Payload, &payload)
			if payload.TextToTranslate != "Grace" || payload.TargetLanguage != "af" || payload.SourceLanguage != "en" {
				t.Errorf("unexpected payload %+v", payload)
			}
		})

		t.Run("Failure Returns Input", func(t *testing.T) {
			server := gateway(t, http.StatusInternalServerError, `{"error":"boom"}`, nil, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			if got := c.Translate(ctx, "Grace", models.Zulu, models.English); got != "Grace" {
				t.Errorf("expected input text, got %q", got)
			}
		})

		t.Run("TryTranslate Reports Failure", func(t *testing.T) {
			server := gateway(t, http.StatusInternalServerError, `{"error":"boom"}`, nil, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			_, err := c.TryTranslate(ctx, "Grace", models.Zulu, models.English)

			var gwErr *GatewayError
			if !errors.As(err, &gwErr) || gwErr.Status != 500 || gwErr.Message != "boom" {
				t.Errorf("expected gateway error, got %v", err)
			}
		})

		t.Run("TryTranslate Not Configured", func(t *testing.T) {
			c := NewAIClient(AIClientOptions{})

			_, err := c.TryTranslate(ctx, "Grace", models.Zulu, models.English)
			if !errors.Is(err, shared.ErrNotConfigured) {
				t.Errorf("expected ErrNotConfigured, got %v", err)
			}
		})

		t.Run("Empty Text Skips Call", func(t *testing.T) {
			var hits atomic.Int32
			server := gateway(t, http.StatusOK, `{"result":"x"}`, nil, &hits)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL})

			got, err := c.TryTranslate(ctx, "", models.Zulu, models.English)
			if err != nil || got != "" {
				t.Errorf("expected empty result, got %q %v", got, err)
			}
			if hits.Load() != 0 {
				t.Errorf("expected no gateway calls, got %d", hits.Load())
			}
		})
	})

	t.Run("Circuit Breaker", func(t *testing.T) {
		t.Run("Opens After Consecutive Failures", func(t *testing.T) {
			var hits atomic.Int32
			server := gateway(t, http.StatusBadGateway, `{"error":"upstream down"}`, nil, &hits)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL, MaxFailures: 2, Cooldown: time.Minute})

			for range 2 {
				c.Translate(ctx, "Grace", models.Zulu, models.English)
			}
			if c.BreakerState() != "open" {
				t.Fatalf("expected open breaker, got %s", c.BreakerState())
			}

			_, err := c.TryTranslate(ctx, "Grace", models.Zulu, models.English)
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
			if hits.Load() != 2 {
				t.Errorf("expected open breaker to skip the gateway, got %d calls", hits.Load())
			}

			got := c.GenerateHymn(ctx, "hope", models.English)
			if got.Lyrics != MessageGeneric {
				t.Errorf("expected generic message while open, got %q", got.Lyrics)
			}
		})

		t.Run("Client Errors Do Not Trip", func(t *testing.T) {
			server := gateway(t, http.StatusBadRequest, `{"error":"Invalid action"}`, nil, nil)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL, MaxFailures: 1})

			for range 3 {
				c.Translate(ctx, "Grace", models.Zulu, models.English)
			}
			if c.BreakerState() != "closed" {
				t.Errorf("expected closed breaker, got %s", c.BreakerState())
			}
		})

		t.Run("Each Call Is A Single Attempt", func(t *testing.T) {
			var hits atomic.Int32
			server := gateway(t, http.StatusInternalServerError, ``, nil, &hits)
			c := NewAIClient(AIClientOptions{GatewayURL: server.URL, MaxFailures: 10})

			c.GenerateInspiration(ctx, models.Praise, models.English)
			if hits.Load() != 1 {
				t.Errorf("expected exactly one attempt, got %d", hits.Load())
			}
		})
	})
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"gateway message", &GatewayError{Status: 500, Message: "custom"}, "custom"},
		{"gateway without message", &GatewayError{Status: 500}, MessageGeneric},
		{"not configured", errNotConfigured, MessageNotConfigured},
		{"other", errors.New("dial tcp"), MessageGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
