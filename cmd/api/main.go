package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"mbti-bot/internal/config"
	"mbti-bot/internal/db"
	"mbti-bot/internal/domain"
	apihttp "mbti-bot/internal/http"
	"mbti-bot/internal/notify"
	"mbti-bot/internal/repository"
	"mbti-bot/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	if err := db.InitSchema(ctx, pool); err != nil {
		logger.Fatal("db schema init", zap.Error(err))
	}

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute

	var stepGuard service.StepGuard
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			stepGuard = service.NewRedisStepGuard(redisClient, sessionTTL)
		}
		cancel()
	}
	if stepGuard == nil {
		stepGuard = service.NewMemoryStepGuard(sessionTTL)
	}

	reportNotifier := notify.NewDisabledNotifier("report notifier not configured")
	if cfg.SMTPHost != "" {
		notifier, err := notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp notifier init failed", zap.Error(err))
		} else {
			reportNotifier = notifier
		}
	}

	catalog := domain.DefaultCatalog()
	store := repository.NewPgAssessmentRepositoryWithRetention(pool, cfg.HistoryRetention)
	tokens := service.NewSessionTokenCodec(cfg.JWTSecret, sessionTTL)
	assessmentSvc := service.NewAssessmentService(catalog, store, tokens, stepGuard, logger)
	reportSvc := service.NewReportService(catalog, reportNotifier, logger)
	adminSvc := service.NewAdminService(
		cfg.AdminPasswordHash,
		cfg.JWTSecret,
		time.Duration(cfg.AdminTokenTTLMinutes)*time.Minute,
		cfg.HistoryRetention,
		store,
	)
	if cfg.AdminPasswordHash == "" {
		logger.Warn("admin password not configured, admin routes disabled")
	}

	assessmentHandler := apihttp.NewAssessmentHandler(logger, assessmentSvc, reportSvc, store)
	adminHandler := apihttp.NewAdminHandler(logger, adminSvc)
	router := apihttp.NewRouter(logger, assessmentHandler, adminHandler, adminSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
