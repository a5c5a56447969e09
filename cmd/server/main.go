package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/dealdesk/internal/config"
	"github.com/Simplici0/dealdesk/internal/db"
	"github.com/Simplici0/dealdesk/internal/logger"
	"github.com/Simplici0/dealdesk/internal/migrations"
	"github.com/Simplici0/dealdesk/internal/seed"
	"github.com/Simplici0/dealdesk/internal/store"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	store *store.Store
	log   *zap.Logger
	now   func() time.Time
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	for _, w := range cfg.Warnings() {
		log.Warn("config", zap.String("warning", w))
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, cfg.MigrationsDir); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	}
	if version, err := migrations.Version(database); err == nil {
		log.Info("database ready", zap.String("path", cfg.DBPath), zap.Int64("schema_version", version))
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Fatal("failed to seed database", zap.Error(err))
	}
	log.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	srv := &server{store: store.New(database), log: log, now: time.Now}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(srv, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newRouter(s *server, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/deals", func(r chi.Router) {
		r.Post("/calc", s.handleDealCalc)
		r.Post("/", s.handleDealCreate)
		r.Get("/", s.handleDealList)
		r.Get("/{id}", s.handleDealDetail)
		r.Get("/{id}/text", s.handleDealText)
	})

	r.Get("/admin/defaults", s.handleDefaultsGet)
	r.Post("/admin/defaults", s.handleDefaultsUpdate)

	r.Route("/reps", func(r chi.Router) {
		r.Post("/", s.handleRepCreate)
		r.Get("/{id}", s.handleRepDetail)
		r.Get("/{id}/vesting", s.handleRepVesting)
		r.Post("/{id}/signups", s.handleSignupCreate)
		r.Get("/{id}/signups", s.handleSignupList)
		r.Post("/{id}/payouts/{period}", s.handlePayoutCompute)
		r.Get("/{id}/payouts", s.handlePayoutList)
	})
	r.Post("/signups/{id}/cancel", s.handleSignupCancel)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
