package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// Middleware wraps an http.Handler, e.g. to tag requests with an id or log them.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the paths it is mounted on.
//
// [GatewayHandler] and [OAuthHandler] both take their path from configuration.
type Handler interface {
	http.Handler
	Routes() []string
}

// errorBody is the JSON shape of every failed gateway or router reply.
type errorBody struct {
	Error string `json:"error"`
}

type resultBody struct {
	Result any `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: http.StatusText(http.StatusMethodNotAllowed)})
}

// NewHTTPServer returns an http.Server for handler with the header read timeout both listeners use.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: readHeaderTimeout}
}

// Serve runs srv until ctx ends, then shuts it down, waiting up to grace for open requests.
//
// A nil listener listens on srv.Addr. Serve returns nil after a clean shutdown.
func Serve(ctx context.Context, srv *http.Server, l net.Listener, grace time.Duration) error {
	if l == nil {
		var err error
		if l, err = net.Listen("tcp", srv.Addr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
