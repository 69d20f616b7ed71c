package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dailyon/internal/audit"
	"dailyon/internal/auth"
	"dailyon/internal/config"
	"dailyon/internal/httpapi"
	"dailyon/internal/ledger"
	"dailyon/internal/notes"
	"dailyon/internal/planner"
	"dailyon/internal/users"
	"dailyon/pkg/logger"
	"dailyon/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PostgresPoolConfig{
		MaxOpenConns: cfg.DB.MaxOpenConns,
	})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}
	hasher, err := auth.NewBcryptHasher(0)
	if err != nil {
		log.Error("password hasher init failed", "err", err)
		os.Exit(1)
	}

	userRepo := users.NewPostgresRepo(db)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	usersSvc := users.NewService(userRepo)
	h := httpapi.Handlers{
		Auth: auth.NewService(userRepo, tokens, hasher,
			auth.WithLoginLimiter(auth.NewRedisLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)),
			auth.WithAuditor(auditSvc),
		),
		Users:   usersSvc,
		Audit:   auditSvc,
		Notes:   notes.NewService(notes.NewMemoryRepo()),
		Planner: planner.NewService(planner.NewMemoryRepo(), planner.WithDirectory(usersSvc)),
		Ledger:  ledger.NewService(ledger.NewMemoryRepo()),
	}
	resolver := auth.NewResolver(tokens, userRepo, cfg.Auth.LookupTimeout)

	health := func(ctx context.Context) (string, error) {
		if err := utils.HealthCheck(ctx, db, time.Second); err != nil {
			return "postgres", err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return "redis", err
		}
		return "", nil
	}

	r := newRouter(log, h, resolver, health)

	corsMW := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Trace-Id"},
		ExposedHeaders:   []string{"X-Trace-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           corsMW(r),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
