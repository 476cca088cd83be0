package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/liamcoop/ui5helper/appengine"
	"github.com/liamcoop/ui5helper/internal/config"
	"github.com/liamcoop/ui5helper/internal/logger"
	"github.com/liamcoop/ui5helper/rules"
)

type Server struct {
	db     *sql.DB // nil when running on in-memory stores
	apps   *appengine.Manager
	cfg    config.Server
	router *chi.Mux
}

// NewServer connects to Postgres when DATABASE_URL is set, otherwise keeps
// everything in memory, and loads every registered app
func NewServer(cfg config.Server) (*Server, error) {
	if !cfg.UsesDatabase() {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		manager := appengine.NewManager(appengine.NewInMemoryAppStore(), appengine.InMemoryRuleSets())
		return newServer(nil, manager, cfg), nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	manager := appengine.NewManager(appengine.NewPostgresAppStore(db), func(appID string) rules.RuleSetStore {
		return rules.NewPostgresRuleSetStore(db, appID)
	})

	logger.Info("loading apps from database")
	if err := manager.LoadAll(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load apps: %w", err)
	}
	logger.Info("apps loaded", "apps", manager.ListApps())

	return newServer(db, manager, cfg), nil
}

func newServer(db *sql.DB, manager *appengine.Manager, cfg config.Server) *Server {
	s := &Server{db: db, apps: manager, cfg: cfg}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Post("/validate", s.handleValidate)
		r.Post("/validate/batch", s.handleValidateBatch)

		r.Route("/apps", func(r chi.Router) {
			r.Get("/", s.handleListApps)
			r.Post("/", s.handleCreateApp)

			r.Route("/{appId}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteApp)

				r.Get("/model", s.handleGetModel)
				r.Post("/model", s.handleUpdateModel)

				r.Get("/rulesets", s.handleListRuleSets)
				r.Post("/rulesets", s.handleCreateRuleSet)
				r.Get("/rulesets/{ruleSetId}", s.handleGetRuleSet)
				r.Put("/rulesets/{ruleSetId}", s.handleUpdateRuleSet)
				r.Delete("/rulesets/{ruleSetId}", s.handleDeleteRuleSet)
			})
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs every request and feeds the HTTP counters
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed.String(),
			"requestId", middleware.GetReqID(r.Context()),
		}

		switch {
		case status >= 500:
			logger.ErrorHttp5xx()
			logger.Error("request failed", attrs...)
		case status >= 400:
			logger.WarnHttp4xx(status)
			logger.Debug("request rejected", attrs...)
		default:
			logger.Debug("request", attrs...)
		}

		if s.cfg.SlowRequest > 0 && elapsed > s.cfg.SlowRequest {
			logger.WarnSlowRequest()
			logger.Warn("slow request", attrs...)
		}
	})
}

func main() {
	var cfg config.Server
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}
	if err := logger.Setup(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		SampleRate: cfg.ErrorSampleRate,
	}); err != nil {
		logger.Fatal("failed to configure logger", "error", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}
	if server.db != nil {
		defer server.db.Close()
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
