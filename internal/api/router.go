// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/polyloc/polyloc/internal/auth"
	"github.com/polyloc/polyloc/internal/config"
	"github.com/polyloc/polyloc/internal/service"
)

// Server bundles the HTTP dependencies and builds the router.
type Server struct {
	svc     *service.Service
	auth    *auth.Service
	metrics *Metrics
	cfg     *config.Config

	cookieName   string
	cookieSecure bool
}

// NewServer creates the HTTP server front.
func NewServer(cfg *config.Config, svc *service.Service, authSvc *auth.Service) *Server {
	return &Server{
		svc:          svc,
		auth:         authSvc,
		metrics:      NewMetrics(),
		cfg:          cfg,
		cookieName:   cfg.Security.SessionCookie,
		cookieSecure: cfg.Security.CookieSecure,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(s.metrics.middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.Timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(httprate.LimitByIP(s.cfg.Security.RateLimitReqs, s.cfg.Security.RateLimitWindow))
	r.Use(auth.Middleware(s.auth.Sessions(), s.cookieName))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			// Credential endpoints get a much tighter limit than the
			// general API to slow down guessing.
			r.Use(httprate.LimitByIP(10, time.Minute))

			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Post("/verify", s.handleVerifyEmail)
			r.Post("/password/forgot", s.handleForgotPassword)
			r.Post("/password/reset", s.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", s.handleMe)
			})
		})

		r.Route("/languages", func(r chi.Router) {
			r.Get("/", s.handleListRawLanguages)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", s.handleSeedRawLanguages)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Patch("/", s.handleRenameProject)
				r.Delete("/", s.handleDeleteProject)

				r.Get("/hierarchy", s.handleGetHierarchy)
				r.Get("/aggregate", s.handleAggregate)
				r.Get("/search", s.handleSearch)
				r.Group(func(r chi.Router) {
					// Archive builds and bulk imports are the expensive
					// endpoints.
					r.Use(httprate.LimitByIP(30, time.Minute))
					r.Get("/export", s.handleExport)
					r.Post("/import", s.handleImport)
					r.Post("/import/component", s.handleImportComponent)
				})

				r.Route("/languages", func(r chi.Router) {
					r.Post("/", s.handleAddLanguage)
					r.Patch("/visibility", s.handleSetVisibility)
					r.Put("/{languageID}", s.handleUpdateLanguage)
					r.Delete("/{languageID}", s.handleRemoveLanguage)
				})

				r.Route("/entities", func(r chi.Router) {
					r.Get("/", s.handleListEntities)
					r.Post("/", s.handleCreateEntity)
					r.Get("/{entityID}", s.handleGetEntity)
					r.Patch("/{entityID}", s.handleUpdateEntity)
					r.Delete("/{entityID}", s.handleDeleteEntity)
				})
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
