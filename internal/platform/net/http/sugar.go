package http

import "net/http"

// JSONHandler wraps a pure handler returning (data, error) into an envelope writer
func JSONHandler(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, JSONHandler(h))
}

// PostJSON mounts a pure JSON handler for POST; the handler reads the body itself
func PostJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, JSONHandler(h))
}
