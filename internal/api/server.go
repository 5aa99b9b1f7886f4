// Package api runs the BuildLedger HTTP server.
package api

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/kolmo-labs/buildledger/internal/api/router"
	"github.com/kolmo-labs/buildledger/internal/billing"
	"github.com/kolmo-labs/buildledger/internal/quote"
	"github.com/kolmo-labs/buildledger/pkg/core"
)

// Server is the main API server.
type Server struct {
	store         core.Store
	validator     *billing.Validator
	book          *quote.Book
	sessionStore  *sessions.CookieStore
	addr          string
	priceBookPath string
	logger        *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Store core.Store
	Addr  string

	// SessionKey signs session cookies. A random per-process key is used
	// when empty.
	SessionKey string

	// PriceBookPath is an optional YAML rate override file, watched for
	// changes while the server runs.
	PriceBookPath string

	Logger *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) (*Server, error) {
	key := []byte(cfg.SessionKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
	}

	sessionStore := sessions.NewCookieStore(key)
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	pb := quote.DefaultPriceBook()
	if cfg.PriceBookPath != "" {
		loaded, err := quote.LoadPriceBook(cfg.PriceBookPath)
		if err != nil {
			return nil, err
		}
		pb = loaded
	}

	return &Server{
		store:         cfg.Store,
		validator:     billing.NewValidator(cfg.Store),
		book:          quote.NewBook(pb),
		sessionStore:  sessionStore,
		addr:          cfg.Addr,
		priceBookPath: cfg.PriceBookPath,
		logger:        cfg.Logger,
	}, nil
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	router.SetupRoutes(r, s.store, s.validator, s.book, s.sessionStore, s.logger)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.priceBookPath != "" {
		eg.Go(func() error {
			return s.watchPriceBook(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchPriceBook reloads rates when the override file changes on disk.
// Editors replace files rather than writing in place, so the parent
// directory is watched and events are filtered by name.
func (s *Server) watchPriceBook(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(s.priceBookPath)); err != nil {
		s.logger.Error("failed to watch price book directory", "error", err)
		// Continue without watching
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(s.priceBookPath) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				pb, err := quote.LoadPriceBook(s.priceBookPath)
				if err != nil {
					s.logger.Error("price book reload failed, keeping previous rates", "error", err)
					return
				}
				s.book.Swap(pb)
				s.logger.Info("price book reloaded", "path", s.priceBookPath)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
