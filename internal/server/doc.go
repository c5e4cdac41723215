// Package server provides HTTP routing, middleware, the AI gateway and the OAuth callback handler.
//
// # Routing
//
// [BasicRouter] mounts [Handler]s and single-method routes on an [http.ServeMux] behind a [Middleware] chain.
// Method mismatches and failures reply with JSON {"error": ...}. [NewHTTPServer] and [Serve] run either
// router with the same timeouts and graceful shutdown.
//
// # AI Gateway
//
// [GatewayHandler] is the intermediary between the generation client and the configured AI provider.
// It accepts POST {action, payload} and replies:
//   - 200 {result} on success
//   - 400 {"error": "Invalid action"} for an unknown action
//   - 405 for any method other than POST
//   - 500 {"error": "AI features are not configured for this application."} without a provider
//   - 500 {error} when the body cannot be decoded or the provider fails
//
// [NewGatewayRouter] mounts it with [RequestID], [RequestLogger] and [Recoverer] plus GET /health.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback.
// It validates the state parameter, exchanges the code for tokens and sends the result through a channel.
// Only one callback is processed.
package server
