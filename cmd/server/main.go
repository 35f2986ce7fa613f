// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

// Command server runs the Polyloc HTTP backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/polyloc/polyloc/internal/api"
	"github.com/polyloc/polyloc/internal/auth"
	"github.com/polyloc/polyloc/internal/config"
	"github.com/polyloc/polyloc/internal/logging"
	"github.com/polyloc/polyloc/internal/service"
	"github.com/polyloc/polyloc/internal/store"
)

// shutdownGrace is how long in-flight requests get to finish on shutdown.
const shutdownGrace = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("addr", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))).
		Msg("Starting polyloc server")

	st, err := store.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	svc := service.New(st, &cfg.API)
	authSvc := auth.NewService(
		auth.NewUserStore(st.DB()),
		auth.NewSessionStore(st.DB(), cfg.Security.SessionTimeout),
		auth.NewTokenService(cfg.Security.TokenSecret, cfg.Security.TokenTTL),
		auth.LogMailer{},
	)

	server := api.NewServer(cfg, svc, authSvc)

	supervisor := suture.New("polyloc", suture.Spec{
		EventHook: (&sutureslog.Handler{
			Logger: logging.NewSlogLogger(),
		}).MustHook(),
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
	supervisor.Add(&httpService{
		addr:    net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		handler: server.Router(),
		timeout: cfg.Server.Timeout,
	})
	supervisor.Add(&maintenanceService{
		store:    st,
		sessions: authSvc.Sessions(),
		interval: cfg.Database.GCInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = supervisor.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Server stopped")
	return nil
}

// httpService runs the HTTP listener under the supervisor and drains
// gracefully when the supervision context is canceled.
type httpService struct {
	addr    string
	handler http.Handler
	timeout time.Duration
}

func (s *httpService) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.timeout,
		WriteTimeout:      s.timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logging.Info().Str("addr", s.addr).Msg("HTTP listener started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *httpService) String() string { return "http" }

// maintenanceService periodically runs value-log GC and expired-session
// cleanup.
type maintenanceService struct {
	store    *store.Store
	sessions *auth.SessionStore
	interval time.Duration
}

func (s *maintenanceService) Serve(ctx context.Context) error {
	interval := s.interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Value log GC failed")
			}
			deleted, err := s.sessions.Cleanup()
			if err != nil {
				logging.Warn().Err(err).Msg("Session cleanup failed")
				continue
			}
			if deleted > 0 {
				logging.Debug().Int("deleted", deleted).Msg("Cleaned up expired sessions")
			}
		}
	}
}

func (s *maintenanceService) String() string { return "maintenance" }
