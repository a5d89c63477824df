package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"prospect-crm/internal/config"
	"prospect-crm/internal/db"
	apihttp "prospect-crm/internal/http"
	"prospect-crm/internal/llm"
	"prospect-crm/internal/repository"
	"prospect-crm/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.MigrationsEnabled {
		if err := db.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	qualifier, err := newQualifier(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("qualifier init", zap.Error(err))
	}

	var (
		limiter    service.GenerationLimiter
		tokenStore service.RefreshTokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			limiter = service.NewRedisGenerationLimiter(redisClient, time.Hour, cfg.GenerationRateLimit)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	if limiter == nil {
		limiter = service.NewMemoryGenerationLimiter(time.Hour, cfg.GenerationRateLimit)
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userRepo := repository.NewPgUserRepository(pool)
	prospectRepo := repository.NewPgProspectRepository(pool)

	evaluator := service.NewQualificationService(qualifier, limiter, cfg.LLMTimeout(), logger)
	userSvc := service.NewUserService(logger, userRepo)
	prospectSvc := service.NewProspectService(prospectRepo, evaluator, logger)

	router := apihttp.NewRouter(logger, cfg.CORSAllowedOrigins, jwtSvc,
		apihttp.NewAuthHandler(logger, userSvc, jwtSvc),
		apihttp.NewProspectHandler(logger, prospectSvc),
		apihttp.NewScoringHandler(logger, evaluator),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("llm_provider", cfg.LLMProvider),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newQualifier elige el backend del evaluador segun LLM_PROVIDER.
func newQualifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Qualifier, error) {
	switch cfg.LLMProvider {
	case config.LLMProviderRules:
		return service.NewRuleQualifier(), nil
	case config.LLMProviderGemini:
		client, err := llm.NewGeminiClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, logger)
		if err != nil {
			return nil, err
		}
		return service.NewLLMQualifier(client, logger), nil
	default:
		client := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
		return service.NewLLMQualifier(client, logger), nil
	}
}
