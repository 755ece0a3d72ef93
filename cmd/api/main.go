package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/config"
	"github.com/wrenhq/wren-social-api/internal/database"
	"github.com/wrenhq/wren-social-api/internal/handler"
	"github.com/wrenhq/wren-social-api/internal/middleware"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/repository"
	"github.com/wrenhq/wren-social-api/internal/router"
	"github.com/wrenhq/wren-social-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Participant{},
		&models.Message{},
		&models.Reaction{},
		&models.Mention{},
		&models.Notification{},
		&models.Activity{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		// Single-node deployments run without NATS; the Redis channel still
		// fans events out.
		logger.Warn().Err(err).Msg("nats unavailable, continuing without it")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	mentionRepo := repository.NewMentionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	activityService := service.NewActivityService(activityRepo, redisClient, cfg.FeedCacheTTL, validate, logger)
	mentionService := service.NewMentionService(userRepo, mentionRepo, notificationService, logger)
	reactionService := service.NewReactionService(reactionRepo, notificationService, activityService, validate, logger)
	lastMessageCache := service.NewLastMessageCache(redisClient, cfg.ChannelBase, logger)
	conversationService := service.NewConversationService(conversationRepo, messageRepo, lastMessageCache, validate, logger)
	messageService := service.NewMessageService(messageRepo, conversationRepo, mentionService, notificationService, activityService, lastMessageCache, validate, logger)
	readStateService := service.NewReadStateService(conversationRepo, messageRepo, validate, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

	conversationHandler := handler.NewConversationHandler(conversationService, readStateService, logger)
	messageHandler := handler.NewMessageHandler(messageService, logger)
	reactionHandler := handler.NewReactionHandler(reactionService, mentionService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive)
	activityFeedHandler := handler.NewActivityFeedHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ConversationHandler: conversationHandler,
		MessageHandler:      messageHandler,
		ReactionHandler:     reactionHandler,
		NotificationHandler: notificationHandler,
		ActivityFeedHandler: activityFeedHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
