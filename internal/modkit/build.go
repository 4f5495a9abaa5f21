package modkit

import (
	"net/http"
	"strings"

	"triagebot/internal/modkit/httpkit"
)

// Option sets one field of a module's Built
type Option func(*Built)

// Built is what a module keeps after applying its options
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// WithName names the module for logs and the registry. Later options win
func WithName(name string) Option {
	return func(b *Built) { b.Name = name }
}

// WithPrefix mounts the module under prefix; "" or "/" mounts at the root
func WithPrefix(prefix string) Option {
	return func(b *Built) { b.Prefix = prefix }
}

// WithMiddlewares appends module scoped middleware, outermost first
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts injects a port bundle owned by the module's package
func WithPorts[T any](p T) Option {
	return func(b *Built) { b.Ports = p }
}

// Build applies opts in order and normalizes the prefix to "/a/b" form
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Prefix = cleanPrefix(b.Prefix)
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}

func cleanPrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// Mount mounts register under the prefix behind the module middleware
func (b Built) Mount(r httpkit.Router, register func(httpkit.Router)) {
	httpkit.MountUnder(r, b.Prefix, b.Mw, register)
}
