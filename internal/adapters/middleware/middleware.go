// Package middleware exposes the compiler as an http.Handler decorator.
package middleware

import (
	"net/http"

	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrorHandler terminates a request whose artifact could not be brought up to date.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures a Middleware.
type Option func(*Middleware)

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) {
		m.onError = h
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(logger ports.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// Middleware ensures compiled assets are fresh before the wrapped handler serves them.
type Middleware struct {
	compiler ports.AssetCompiler
	logger   ports.Logger
	onError  ErrorHandler
}

// New creates a Middleware around compiler.
func New(compiler ports.AssetCompiler, opts ...Option) *Middleware {
	m := &Middleware{compiler: compiler}
	for _, opt := range opts {
		opt(m)
	}
	if m.onError == nil {
		m.onError = m.internalError
	}
	return m
}

// Handler wraps next. Every request ends in exactly one of next or the error handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		if _, err := m.compiler.Ensure(r.Context(), r.URL.Path); err != nil {
			m.onError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) internalError(w http.ResponseWriter, r *http.Request, err error) {
	if m.logger != nil {
		m.logger.Error(zerr.With(zerr.Wrap(err, "request failed"), "path", r.URL.Path))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
