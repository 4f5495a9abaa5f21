package http

import "net/http"

// Handler is the plain handler func modules register
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what modules mount routes on. Webhooks only need POST; Get
// serves the meta endpoints and Method covers the rest
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Method(method, path string, h Handler)
	Handle(path string, h http.Handler)

	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(prefix string, fn func(Router))

	// Mux is the assembled root handler
	Mux() http.Handler
}
