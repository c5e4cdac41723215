package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter mounts gateway and callback handlers on an [http.ServeMux] behind a shared middleware chain.
type BasicRouter struct {
	mux    *http.ServeMux
	chain  []Middleware
	routes []string
}

func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware; the first added runs outermost. Routes registered earlier are not wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handle mounts handler at path for one method. Other methods get a JSON 405 naming the allowed ones;
// a GET route also answers HEAD.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)
	allowed := []string{method}
	if method == http.MethodGet {
		allowed = append(allowed, http.MethodHead)
	}
	allow := strings.Join(allowed, ", ")

	filtered := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !slices.Contains(allowed, req.Method) {
			methodNotAllowed(w, allow)
			return
		}
		handler.ServeHTTP(w, req)
	})

	r.mux.Handle(path, r.wrap(filtered))
	r.routes = append(r.routes, method+" "+path)
}

// Handler mounts h on each of its routes. h filters methods itself.
func (r *BasicRouter) Handler(h Handler) {
	wrapped := r.wrap(h)
	for _, route := range h.Routes() {
		r.mux.Handle(route, wrapped)
		r.routes = append(r.routes, route)
	}
}

// Routes lists what was mounted, in order: "METHOD /path" for [BasicRouter.Handle] and the bare path for [BasicRouter.Handler].
func (r *BasicRouter) Routes() []string {
	return slices.Clone(r.routes)
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *BasicRouter) wrap(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(r.chain) {
		handler = mw(handler)
	}
	return handler
}
