// package auth signs users in through an OAuth2 identity provider and keeps the session in the KV store
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/hymnal/internal/server"
	"github.com/desertthunder/hymnal/internal/shared"
)

// SessionKey is the KV key holding the signed-in session.
const SessionKey = "session"

// Provider reports and changes who is signed in.
type Provider interface {
	IsAuthenticated() bool
	CurrentUserID() (string, bool)
	Login(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
}

// Store persists the session.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session is a signed-in user.
type Session struct {
	UserID    string        `json:"userId"`
	Name      string        `json:"name,omitempty"`
	Email     string        `json:"email,omitempty"`
	Token     *oauth2.Token `json:"token,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Options configures an [OAuthProvider].
type Options struct {
	Identity    shared.IdentityConfig
	Server      shared.ServerConfig
	Store       Store
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer          // Login prompts (default: stdout)
	OpenBrowser func(string) error // default: [shared.OpenBrowser]
	Timeout     time.Duration      // How long Login waits for the callback (default: 2 minutes)
}

// OAuthProvider implements [Provider] with the authorization code flow and a local callback server.
type OAuthProvider struct {
	opts Options

	mu      sync.RWMutex
	session *Session
}

// NewOAuthProvider creates an OAuthProvider. Call [OAuthProvider.Restore] to pick up a saved session.
func NewOAuthProvider(opts Options) *OAuthProvider {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &OAuthProvider{opts: opts}
}

// Restore loads the saved session. A malformed session is discarded and the user is signed out.
func (p *OAuthProvider) Restore(ctx context.Context) error {
	if p.opts.Store == nil {
		return nil
	}

	raw, ok, err := p.opts.Store.Read(ctx, SessionKey)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.UserID == "" {
		p.opts.Logger.Warn("discarding malformed session", "error", err)
		return nil
	}

	p.mu.Lock()
	p.session = &session
	p.mu.Unlock()
	return nil
}

// Session returns a copy of the current session, or nil when signed out.
func (p *OAuthProvider) Session() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil {
		return nil
	}
	s := *p.session
	return &s
}

func (p *OAuthProvider) IsAuthenticated() bool {
	_, ok := p.CurrentUserID()
	return ok
}

func (p *OAuthProvider) CurrentUserID() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil || p.session.UserID == "" {
		return "", false
	}
	return p.session.UserID, true
}

// Logout forgets the session locally and in the store.
func (p *OAuthProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()

	if p.opts.Store == nil {
		return nil
	}
	if err := p.opts.Store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Login runs the authorization code flow: it serves the callback locally, opens the browser at
// the provider's consent page and waits for the redirect.
//
// A server port of 0 listens on an ephemeral port and points the redirect URL at it.
func (p *OAuthProvider) Login(ctx context.Context) (*Session, error) {
	id := p.opts.Identity
	if !id.Configured() {
		return nil, fmt.Errorf("%w: identity client_id, auth_url and token_url must be set", shared.ErrMissingConfig)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	addr := net.JoinHostPort(p.opts.Server.Host, strconv.Itoa(p.opts.Server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	config := &oauth2.Config{
		ClientID:     id.ClientID,
		ClientSecret: id.ClientSecret,
		Endpoint:     oauth2.Endpoint{AuthURL: id.AuthURL, TokenURL: id.TokenURL},
		RedirectURL:  redirectURL(id.RedirectURI, listener.Addr().String(), p.opts.Server.Port == 0),
		Scopes:       id.Scopes,
	}

	oauthHandler := server.NewOAuthHandler(config, state)
	router := server.NewBasicRouter()
	router.Use(p.withHTTPClient)
	router.Handler(oauthHandler)

	httpServer := server.NewHTTPServer(listener.Addr().String(), router)

	serverErrors := make(chan error, 1)
	go func() {
		p.opts.Logger.Info("starting OAuth callback server", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			p.opts.Logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := config.AuthCodeURL(state)
	fmt.Fprintf(p.opts.Output, "→ Opening browser to sign in...\n")
	if err := p.opts.OpenBrowser(authURL); err != nil {
		p.opts.Logger.Warn("failed to open browser automatically", "error", err)
		fmt.Fprintf(p.opts.Output, "⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
	}

	fmt.Fprintf(p.opts.Output, "→ Waiting for authorization (%s timeout)...\n", p.opts.Timeout)

	timeout := time.NewTimer(p.opts.Timeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, p.opts.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	session, err := p.fetchUser(ctx, config, result.Token)
	if err != nil {
		return nil, err
	}

	if err := p.save(ctx, session); err != nil {
		return nil, err
	}

	p.opts.Logger.Info("signed in", "user", session.UserID)
	return session, nil
}

func (p *OAuthProvider) save(ctx context.Context, session *Session) error {
	if p.opts.Store != nil {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		if err := p.opts.Store.Write(ctx, SessionKey, string(data)); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()
	return nil
}

// withHTTPClient makes the token exchange in the callback use the provider's client.
func (p *OAuthProvider) withHTTPClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), oauth2.HTTPClient, p.opts.HTTPClient)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type userInfo struct {
	Sub   string          `json:"sub"`
	ID    json.RawMessage `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
}

// fetchUser identifies the signed-in user from the userinfo endpoint, or from the token
// response's user_id/sub fields when no endpoint is configured.
func (p *OAuthProvider) fetchUser(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*Session, error) {
	session := &Session{Token: token, CreatedAt: time.Now().UTC()}

	if p.opts.Identity.UserInfoURL == "" {
		for _, field := range []string{"user_id", "sub"} {
			if v := token.Extra(field); v != nil {
				session.UserID = fmt.Sprint(v)
				break
			}
		}
		if session.UserID == "" {
			return nil, fmt.Errorf("%w: token response carries no user id", shared.ErrAuthFailed)
		}
		return session, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.opts.HTTPClient)
	client := config.Client(ctx, token)

	resp, err := client.Get(p.opts.Identity.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: invalid userinfo: %v", shared.ErrAuthFailed, err)
	}

	session.UserID = info.Sub
	if session.UserID == "" && len(info.ID) > 0 {
		var s string
		if err := json.Unmarshal(info.ID, &s); err == nil {
			session.UserID = s
		} else {
			session.UserID = string(info.ID)
		}
	}
	if session.UserID == "" || session.UserID == "null" {
		return nil, fmt.Errorf("%w: userinfo carries no user id", shared.ErrAuthFailed)
	}

	session.Name = info.Name
	session.Email = info.Email
	return session, nil
}

// redirectURL returns the configured redirect URI, pointed at addr when ephemeral or unset.
func redirectURL(configured, addr string, ephemeral bool) string {
	if configured == "" {
		return "http://" + addr + "/callback"
	}
	if !ephemeral {
		return configured
	}

	u, err := url.Parse(configured)
	if err != nil {
		return "http://" + addr + "/callback"
	}
	u.Host = addr
	return u.String()
}
