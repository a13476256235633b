package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/alert"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/auth"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/config"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/db"
	api "github.com/rogerio-castellano/pharmacy-dashboard/internal/http"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/http/handlers"
	rl "github.com/rogerio-castellano/pharmacy-dashboard/internal/http/rate_limiter"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/inventory"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/logger"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/redissvc"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/report"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// @title Pharmacy Dashboard API
// @version 1.0
// @description REST API for pharmacy inventory, point of sale and dashboard reports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redissvc.Connect(ctx, cfg.Redis)
	if err != nil {
		zlog.Fatal("could not connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var database *sqlx.DB
	if cfg.Store.Backend == repo.BackendPostgres {
		database, err = db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			zlog.Fatal("could not connect to database", zap.Error(err))
		}
		defer database.Close()

		if err := repo.Migrate(ctx, database); err != nil {
			zlog.Fatal("could not migrate database", zap.Error(err))
		}
	}

	stores, err := repo.Open(cfg.Store.Backend, rdb, database)
	if err != nil {
		zlog.Fatal("could not open stores", zap.Error(err))
	}
	if cfg.Store.SeedFile != "" {
		seeded, err := stores.SeedFile(ctx, cfg.Store.SeedFile)
		if err != nil {
			zlog.Fatal("could not seed stores", zap.String("file", cfg.Store.SeedFile), zap.Error(err))
		}
		zlog.Info("seed file processed", zap.String("file", cfg.Store.SeedFile), zap.Bool("seeded", seeded))
	}
	go func() {
		if err := stores.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("store change listener stopped", zap.Error(err))
		}
	}()

	userRepo := newUserRepository(database)
	if err := seedAdmin(ctx, userRepo, cfg.Auth); err != nil {
		zlog.Fatal("could not create admin user", zap.Error(err))
	}
	auth.SetSecret(cfg.Auth.JWTSecret)

	var cache *redissvc.Cache
	if rdb != nil {
		cache = redissvc.NewCache(rdb, "report", cfg.Report.CacheTTL)
	}

	clock := analytics.SystemClock{}
	reportSvc := report.NewService(stores, cache, clock, cfg.Report, zlog)
	defer reportSvc.Close()

	alerter := alert.New(rdb, alert.NewSMTPMailer(cfg.Alert), clock, zlog)
	inventorySvc := inventory.NewService(repo.NewProductRepository(stores.Products), stores.Sales, clock, alerter, zlog)

	handlers.SetLogger(zlog)
	handlers.SetStores(stores)
	handlers.SetUserRepo(userRepo)
	handlers.SetReportService(reportSvc)
	handlers.SetInventoryService(inventorySvc)

	limiter := rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.StartVisitorCleanupLoop(ctx)
	go alerter.StartDailySummary(ctx, reportSvc.ExpiringProducts)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(limiter, zlog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info("server running", zap.String("addr", srv.Addr), zap.String("store_backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
	alerter.Wait()
}

func newUserRepository(database *sqlx.DB) repo.UserRepository {
	if database != nil {
		return repo.NewPostgresUserRepository(database)
	}
	return repo.NewInMemoryUserRepository()
}

func seedAdmin(ctx context.Context, users repo.UserRepository, cfg config.AuthConfig) error {
	if cfg.AdminUsername == "" {
		return nil
	}
	if _, err := users.GetByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = users.CreateUser(ctx, models.User{Username: cfg.AdminUsername, PasswordHash: string(hash), Role: models.RoleAdmin})
	return err
}
