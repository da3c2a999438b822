// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/command"
	"github.com/starford/ansuz/internal/datadir"
	"github.com/starford/ansuz/internal/fsservice"
	"github.com/starford/ansuz/internal/journal"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Stdout belongs to the MCP transport when it is enabled.
	var logOut io.Writer = os.Stdout
	if cfg.MCP.Enabled {
		logOut = os.Stderr
	}

	// Initialize structured JSON logger.
	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	dirs := datadir.New(cfg.DataDir.Identifier, cfg.DataDir.Path)

	logger.Info("Configuration loaded",
		slog.Bool("http_enabled", cfg.App.HTTP.Enabled),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Bool("mcp_enabled", cfg.MCP.Enabled),
		slog.String("identifier", cfg.DataDir.Identifier),
		slog.Bool("confine", cfg.FS.Confine),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage.
	store, err := newStore(cfg, dirs)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	reg := command.NewRegistry()
	if err := fsservice.NewService(store, dirs).Register(reg); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	reg.Observe(logInvocation(logger))

	// Optional invocation journal.
	var journalAPI api.Journal
	if cfg.Journal.Enabled() {
		if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
		defer db.Close()
		reg.Observe(db.Observer(logger))
		journalAPI = db
	}

	// SSE broker.
	var broker *sse.Broker
	if cfg.Events.Enabled {
		broker = sse.NewBroker(cfg.Events.Throttle)
		defer broker.Close()
		reg.Observe(func(_ context.Context, inv models.Invocation) {
			broker.ObserveInvocation(inv)
		})
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	var httpServer *http.Server
	if cfg.App.HTTP.Enabled {
		httpServer = &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: newHTTPHandler(logger, reg, cfg.App.HTTP.AllowedOrigins, broker, journalAPI),
		}

		// Start HTTP server.
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	if cfg.MCP.Enabled {
		// Closing stdin ends the session and the application with it.
		g.Go(func() error {
			defer stop()
			logger.Info("Starting MCP stdio server")
			if err := mcpserver.New(reg, app.version).ServeStdio(gCtx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		})
	}

	if app.configPath != "" {
		g.Go(func() error {
			if err := watchConfig(gCtx, app.configPath, app.overrides, level, logger); err != nil {
				logger.Warn("config reloader disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			stop()
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		if httpServer == nil {
			return nil
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newStore builds the filesystem provider. Confined mode creates the data
// directory up front since every path resolves against it.
func newStore(cfg *Config, dirs *datadir.Resolver) (storage.Provider, error) {
	if !cfg.FS.Confine {
		return storage.NewFS(), nil
	}
	root, err := dirs.Resolve()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return storage.NewConfinedFS(root)
}

type readiness struct {
	Status       string `json:"status"`
	Commands     int    `json:"commands"`
	EventClients *int   `json:"event_clients,omitempty"`
}

// logInvocation returns the debug-level observer for every dispatched command.
func logInvocation(logger *slog.Logger) command.Observer {
	return func(ctx context.Context, inv models.Invocation) {
		logger.DebugContext(ctx, "command invoked",
			slog.String("command", inv.Command),
			slog.String("path", inv.Path),
			slog.String("checksum", checksum.Short(inv.Checksum)),
			slog.Bool("ok", inv.OK),
			slog.String("error_kind", inv.ErrorKind),
			slog.Duration("duration", inv.Duration))
	}
}

// newHTTPHandler builds the root router: health checks plus the API under /api.
// Request logs go through logger so they never land on the MCP stdout stream.
// broker and jr may be nil.
func newHTTPHandler(logger *slog.Logger, reg *command.Registry, origins []string, broker *sse.Broker, jr api.Journal) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		status := readiness{Status: "ok", Commands: len(reg.Commands())}
		if broker != nil {
			n := broker.ClientCount()
			status.EventClients = &n
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	})

	var events http.Handler
	if broker != nil {
		events = broker
	}
	r.Mount("/api", api.NewRouter(reg, origins, events, jr))

	return r
}
