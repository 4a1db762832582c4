// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains. Reads are
// open; mutating category routes are rate limited and token protected.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"categoryd/internal/handlers"
	"categoryd/internal/middleware"
)

// Pinger reports whether a backing service is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	Categories *handlers.Categories
	Limiter    *middleware.RateLimiter // nil disables rate limiting
	TokenHash  string                  // bcrypt hash; empty disables the token check
	DB         Pinger                  // nil skips the database check in /health
}

// New creates the chi router with every middleware and route wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, `{"error":{"kind":"not_found","message":"no such route"}}`)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, `{"error":{"kind":"method_not_allowed","message":"method not allowed"}}`)
	})

	r.Get("/health", healthHandler(opts.DB))
	r.Handle("/metrics", promhttp.Handler())

	c := opts.Categories
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", c.List)
		r.Get("/{id}", c.Get)
		r.Get("/{id}/ancestors", c.Ancestors)

		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.Middleware)
			}
			r.Use(middleware.RequireToken(opts.TokenHash))

			r.Post("/", c.Create)
			r.Patch("/{id}", c.Update)
			r.Delete("/{id}", c.Delete)
		})
	})

	return r
}

// healthHandler reports ok, or 503 when the database does not answer a ping.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				writeStatus(w, http.StatusServiceUnavailable, `{"status":"unavailable"}`)
				return
			}
		}
		writeStatus(w, http.StatusOK, `{"status":"ok"}`)
	}
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
