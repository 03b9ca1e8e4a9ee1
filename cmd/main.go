package main

import (
	"context"
	"net/http"

	"github.com/Rishiraj17/backend-foundation/config"
	"github.com/Rishiraj17/backend-foundation/db"
	"github.com/Rishiraj17/backend-foundation/internal/audit"
	"github.com/Rishiraj17/backend-foundation/internal/auth/handler"
	repo "github.com/Rishiraj17/backend-foundation/internal/auth/repository/postgres"
	"github.com/Rishiraj17/backend-foundation/internal/auth/service"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if err := db.RunMigrations(cfg.DBURL, cfg.MigrationsDir); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	accountRepo := repo.NewAccountRepository(pool)
	tokenRepo := repo.NewTokenRepository(pool)
	auditRepo := repo.NewAuditRepository(pool)

	emitter := audit.New(logger, auditRepo)
	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.AccessExpiryMin)
	sessionManager := service.NewSessionManager(tokenRepo, tokenService, emitter, logger, cfg)
	userService := service.NewUserService(accountRepo, sessionManager, hasher, emitter, logger, cfg)

	authHandler := handler.NewAuthHandler(userService, sessionManager, tokenService, logger)

	go serveMetrics(cfg.MetricsPort, logger)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func serveMetrics(port string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
