package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/services"
	"github.com/desertthunder/hymnal/internal/shared"
)

type fakeProvider struct {
	err        error
	lastSource string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateInspiration(ctx context.Context, category, language string) (models.Inspiration, error) {
	if f.err != nil {
		return models.Inspiration{}, f.err
	}
	return models.Inspiration{InspirationalText: category + "/" + language, BibleVerse: "John 3:16"}, nil
}

func (f *fakeProvider) GenerateHymn(ctx context.Context, topic, language string) (models.GeneratedHymn, error) {
	if f.err != nil {
		return models.GeneratedHymn{}, f.err
	}
	return models.GeneratedHymn{Title: topic, Lyrics: "lyrics in " + language}, nil
}

func (f *fakeProvider) Translate(ctx context.Context, text, target, source string) (string, error) {
	f.lastSource = source
	if f.err != nil {
		return "", f.err
	}
	return target + ":" + text, nil
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ai", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestGatewayHandler(t *testing.T) {
	t.Run("Routes", func(t *testing.T) {
		if got := NewGatewayHandler("", nil, nil).Routes(); len(got) != 1 || got[0] != "/api/ai" {
			t.Errorf("unexpected routes %v", got)
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", &fakeProvider{}, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ai", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Method Not Allowed") {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("Not Configured", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", nil, nil)
		rec := post(t, h, `{"action":"translate","payload":{}}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != services.MessageNotConfigured {
			t.Errorf("unexpected error %v", got)
		}
	})

	t.Run("Invalid Action", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", &fakeProvider{}, nil)

		for _, body := range []string{`{"action":"summarize","payload":{}}`, ``, `{}`} {
			rec := post(t, h, body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %q: expected 400, got %d", body, rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != "Invalid action" {
				t.Errorf("body %q: unexpected error %v", body, got)
			}
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", &fakeProvider{}, nil)
		rec := post(t, h, `{"action":`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if got, _ := decodeBody(t, rec)["error"].(string); got == "" {
			t.Error("expected an error message")
		}
	})

	t.Run("Missing Payload", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", &fakeProvider{}, nil)
		rec := post(t, h, `{"action":"generateHymn"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Generate Inspiration", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", &fakeProvider{}, nil)
		rec := post(t, h, `{"action":"generateInspiration","payload":{"category":"Advent","language":"zu"}}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Result models.Inspiration `json:"result"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Result.InspirationalText != "Advent/zu" || resp.Result.BibleVerse != "John 3:16" {
			t.Errorf("unexpected result %+v", resp.Result)
		}
	})

	t.Run("Generate Hymn", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", &fakeProvider{}, nil)
		rec := post(t, h, `{"action":"generateHymn","payload":{"topic":"grace","language":"af"}}`)

		var resp struct {
			Result models.GeneratedHymn `json:"result"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if rec.Code != http.StatusOK || resp.Result.Title != "grace" {
			t.Errorf("unexpected response %d %+v", rec.Code, resp.Result)
		}
	})

	t.Run("Translate Defaults Source", func(t *testing.T) {
		provider := &fakeProvider{}
		h := NewGatewayHandler("/api/ai", provider, nil)
		rec := post(t, h, `{"action":"translate","payload":{"textToTranslate":"Grace","targetLanguage":"xh"}}`)

		if got := decodeBody(t, rec)["result"]; got != "xh:Grace" {
			t.Errorf("unexpected result %v", got)
		}
		if provider.lastSource != "en" {
			t.Errorf("expected source en, got %q", provider.lastSource)
		}
	})

	t.Run("Provider Error", func(t *testing.T) {
		h := NewGatewayHandler("/api/ai", &fakeProvider{err: errors.New("quota exceeded")}, nil)
		rec := post(t, h, `{"action":"generateHymn","payload":{"topic":"x","language":"en"}}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "quota exceeded" {
			t.Errorf("unexpected error %v", got)
		}
	})
}

func TestGatewayRoundTrip(t *testing.T) {
	server := httptest.NewServer(NewGatewayRouter("/api/ai", &fakeProvider{}, nil))
	defer server.Close()

	client := services.NewAIClient(services.AIClientOptions{GatewayURL: server.URL + "/api/ai"})
	ctx := context.Background()

	t.Run("Translate", func(t *testing.T) {
		if got := client.Translate(ctx, "Grace", models.Zulu, models.English); got != "zu:Grace" {
			t.Errorf("unexpected translation %q", got)
		}
	})

	t.Run("Generate Hymn", func(t *testing.T) {
		got := client.GenerateHymn(ctx, "hope", models.English)
		if got.Failed() || got.Title != "hope" {
			t.Errorf("unexpected hymn %+v", got)
		}
	})

	t.Run("Not Configured Reaches Client", func(t *testing.T) {
		bare := httptest.NewServer(NewGatewayRouter("/api/ai", nil, nil))
		defer bare.Close()

		c := services.NewAIClient(services.AIClientOptions{GatewayURL: bare.URL + "/api/ai"})
		got := c.GenerateHymn(ctx, "hope", models.English)
		if got.Title != models.ErrorTitle || got.Lyrics != services.MessageNotConfigured {
			t.Errorf("unexpected sentinel %+v", got)
		}
	})

	t.Run("Health", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/health")
		if err != nil {
			t.Fatalf("health request failed: %v", err)
		}
		defer resp.Body.Close()

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		if resp.StatusCode != http.StatusOK || body["provider"] != "fake" {
			t.Errorf("unexpected health %d %v", resp.StatusCode, body)
		}
		if resp.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("RequestID Reuses Incoming Header", func(t *testing.T) {
		var seen string
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFrom(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
			t.Errorf("expected request id to be propagated, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("RequestLogger Records Status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/ai", nil))

		out := buf.String()
		if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/api/ai") {
			t.Errorf("unexpected log line %q", out)
		}
	})

	t.Run("Recoverer", func(t *testing.T) {
		logger := log.New(io.Discard)
		h := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != services.MessageGeneric {
			t.Errorf("unexpected error %v", got)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Handle Filters Method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		if got := rec.Header().Get("Allow"); got != "GET, HEAD" {
			t.Errorf("unexpected Allow header %q", got)
		}
		if body := decodeBody(t, rec); body["error"] != "Method Not Allowed" {
			t.Errorf("unexpected body %v", body)
		}

		for _, method := range []string{http.MethodGet, http.MethodHead} {
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(method, "/health", nil))
			if rec.Code != http.StatusNoContent {
				t.Errorf("%s: expected 204, got %d", method, rec.Code)
			}
		}

		if routes := router.Routes(); len(routes) != 1 || routes[0] != "GET /health" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handler(NewGatewayHandler("/api/ai", nil, nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/ai", nil))

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected middleware order %v", order)
		}
		if routes := router.Routes(); len(routes) != 1 || routes[0] != "/api/ai" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}

func TestServe(t *testing.T) {
	t.Run("NewHTTPServer", func(t *testing.T) {
		srv := NewHTTPServer("127.0.0.1:0", http.NotFoundHandler())
		if srv.Addr != "127.0.0.1:0" || srv.ReadHeaderTimeout != readHeaderTimeout {
			t.Errorf("unexpected server %+v", srv)
		}
	})

	t.Run("Shuts down when the context ends", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen failed: %v", err)
		}
		router := NewGatewayRouter("/api/ai", nil, nil)
		srv := NewHTTPServer(l.Addr().String(), router)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- Serve(ctx, srv, l, time.Second) }()

		resp, err := http.Get("http://" + l.Addr().String() + "/health")
		if err != nil {
			t.Fatalf("health request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("Listen failure", func(t *testing.T) {
		srv := NewHTTPServer("256.0.0.1:0", http.NotFoundHandler())
		if err := Serve(context.Background(), srv, nil, time.Second); err == nil {
			t.Error("expected listen error")
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenServer.Close()

	config := &oauth2.Config{
		ClientID:    "client",
		RedirectURL: "http://localhost:3000/auth/callback",
		Endpoint:    oauth2.Endpoint{AuthURL: tokenServer.URL + "/authorize", TokenURL: tokenServer.URL + "/token"},
	}

	t.Run("Route From Redirect URL", func(t *testing.T) {
		h := NewOAuthHandler(config, "state")
		if routes := h.Routes(); routes[0] != "/auth/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("Success", func(t *testing.T) {
		h := NewOAuthHandler(config, "state")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?state=state&code=good-code", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil || result.Token.AccessToken != "tok" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("Invalid State", func(t *testing.T) {
		h := NewOAuthHandler(config, "state")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?state=forged&code=good-code", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		h := NewOAuthHandler(config, "state")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?state=state&code=bad", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected exchange error")
		}
	})

	t.Run("Only One Callback", func(t *testing.T) {
		h := NewOAuthHandler(config, "state")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/auth/callback?state=state&error=access_denied", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?state=state&code=good-code", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected second callback to be rejected, got %d", rec.Code)
		}
	})
}
