package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"chatbot-router/internal/config"
	"chatbot-router/internal/db"
	"chatbot-router/internal/email"
	apihttp "chatbot-router/internal/http"
	"chatbot-router/internal/messenger"
	"chatbot-router/internal/nlu"
	"chatbot-router/internal/repository"
	"chatbot-router/internal/service"
	"chatbot-router/internal/weather"

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

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	applicationRepo := repository.NewPgJobApplicationRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.EmailTo, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		sessionStore = repository.NewMemorySessionStore()
		profileStore = repository.NewMemoryProfileStore()
		loginLimiter service.LoginRateLimiter
		tokenStore   service.RefreshTokenStore
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			sessionStore = repository.NewRedisSessionStore(redisClient)
			profileStore = repository.NewRedisProfileStore(redisClient)
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, 10*time.Minute, 5)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	graph := messenger.NewGraphClient(cfg.FBGraphURL, cfg.FBPageToken, logger)
	nluClient := nlu.NewHTTPClient(cfg.NLUBaseURL, cfg.NLUAccessToken, cfg.NLULang, logger)
	weatherClient := weather.NewHTTPClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, logger)
	scheduler := service.NewTimerScheduler()

	applicationSvc := service.NewJobApplicationService(applicationRepo, emailSender, logger)
	registry := service.NewSessionRegistry(sessionStore, profileStore, graph, userRepo, logger)
	sequencer := service.NewReplySequencer(graph, scheduler, time.Duration(cfg.ReplyIntervalMS)*time.Millisecond, logger)
	dispatcher := service.NewActionDispatcher(graph, weatherClient, applicationSvc, scheduler, time.Duration(cfg.FAQFollowupDelayMS)*time.Millisecond, logger)
	interpreter := service.NewResponseInterpreter(graph, sequencer, dispatcher, logger)
	botSvc := service.NewBotService(graph, nluClient, registry, interpreter, logger)

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		0,
		tokenStore,
	)
	var adminHandler *apihttp.AdminHandler
	if cfg.JWTSecret == "" || cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		logger.Warn("admin api disabled: jwt secret or admin credentials not configured")
	} else {
		adminSvc := service.NewAdminService(cfg.AdminEmail, cfg.AdminPasswordHash, jwtSvc, loginLimiter, applicationSvc, logger)
		adminHandler = apihttp.NewAdminHandler(logger, adminSvc)
	}

	webhookHandler := apihttp.NewWebhookHandler(logger, botSvc, cfg.FBVerifyToken)
	router := apihttp.NewRouter(logger, webhookHandler, adminHandler, jwtSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("server_url", cfg.ServerURL),
		zap.Bool("redis", redisClient != nil),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
