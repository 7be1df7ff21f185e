package main

import (
	"log"
	"net/http"

	_ "foodshare/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foodshare/internal/auth"
	"foodshare/internal/cache"
	"foodshare/internal/config"
	"foodshare/internal/db"
	"foodshare/internal/handler"
	"foodshare/internal/logger"
	"foodshare/internal/metrics"
	"foodshare/internal/model"
	"foodshare/internal/queue"
	"foodshare/internal/repository"
	"foodshare/internal/router"
	"foodshare/internal/service"
)

// @title FoodShare API
// @version 1.0
// @description Local food sharing marketplace with adverts, collections, messaging and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if err := logger.Init(&logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment}); err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.L().Sync() }()

	metrics.Register()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.L().Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Advert{},
		&model.Collection{},
		&model.Message{},
	); err != nil {
		logger.L().Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	advertRepo := repository.NewAdvertRepository(gormDB)
	collectionRepo := repository.NewCollectionRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Event plumbing
	events := queue.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go queue.StartWelcomeMailConsumer(cfg.AMQPURL)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, events)
	userService := service.NewUserService(userRepo, advertRepo, collectionRepo, cacheClient, events)
	advertService := service.NewAdvertService(advertRepo, collectionRepo, cacheClient, events)
	messageService := service.NewMessageService(messageRepo, userRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(userService)
	advertHandler := handler.NewAdvertHandler(advertService)
	messageHandler := handler.NewMessageHandler(messageService)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		tokenStore,
		authHandler,
		userHandler,
		adminHandler,
		advertHandler,
		messageHandler,
	)

	addr := ":" + cfg.ServerPort
	logger.L().Info("server starting", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.L().Fatal("server start", zap.Error(err))
	}
}
