package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ifsports/match-comments-service/audit"
	"github.com/ifsports/match-comments-service/config"
	"github.com/ifsports/match-comments-service/db"
	"github.com/ifsports/match-comments-service/handlers"
	"github.com/ifsports/match-comments-service/messaging"
	"github.com/ifsports/match-comments-service/middleware"
	"github.com/ifsports/match-comments-service/realtime"
	"github.com/ifsports/match-comments-service/repositories"
	api "github.com/ifsports/match-comments-service/routes"
	"github.com/ifsports/match-comments-service/services"
	"github.com/ifsports/match-comments-service/storage"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Подключение к брокеру сообщений
	amqpConn, amqpChannel, err := messaging.Connect(cfg.AMQPURL)
	if err != nil {
		logger.Error("failed to connect to message broker", slog.Any("error", err))
		os.Exit(1)
	}
	defer amqpConn.Close()

	if err := messaging.DeclareQueues(amqpChannel, cfg.MatchCreatedQueue, cfg.MatchFinishedQueue, cfg.AuditQueue); err != nil {
		logger.Error("failed to declare queues", slog.Any("error", err))
		os.Exit(1)
	}

	// Публикатор завершения получает собственный канал в confirm-режиме:
	// подтверждения нужны только ему, а ошибка публикации не должна
	// закрыть общий канал консьюмера.
	confirmChannel, err := messaging.ConfirmChannel(amqpConn)
	if err != nil {
		logger.Error("failed to open confirm channel", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("message broker connection established")

	// Инициализация архиватора чатов (Cloudflare R2), если настроен
	var archiver services.TranscriptArchiver
	if cfg.ArchiverEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewChatTranscriptArchiver(uploader)
		logger.Info("chat transcript archiver initialized")
	} else {
		logger.Warn("chat transcript archiver disabled: R2 configuration is not set")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Эмиттер аудита: асинхронный, с ограниченной очередью
	auditSink := messaging.NewAuditQueueSink(amqpChannel, cfg.AuditQueue)
	auditEmitter := audit.NewEmitter(auditSink, cfg.AuditQueueSize, cfg.AuditDispatchTimeout, logger)

	// Публикатор события о завершении матча
	finishedPublisher := messaging.NewMatchFinishedPublisher(
		confirmChannel,
		cfg.MatchFinishedQueue,
		cfg.PublishMaxAttempts,
		cfg.PublishBackoff,
		cfg.PublishTimeout,
		logger,
	)

	// Инициализация репозиториев
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	chatRepo := repositories.NewPostgresChatRepository(dbConn)
	messageRepo := repositories.NewPostgresMessageRepository(dbConn)
	commentRepo := repositories.NewPostgresCommentRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	matchService := services.NewMatchService(dbConn, matchRepo, chatRepo, finishedPublisher, wsHub, auditEmitter)
	chatService := services.NewChatService(chatRepo, messageRepo, archiver, auditEmitter, logger)
	messageService := services.NewMessageService(chatRepo, messageRepo, wsHub, auditEmitter)
	commentService := services.NewCommentService(commentRepo, wsHub, auditEmitter)
	logger.Info("Services initialized")

	// Консьюмер событий о создании матчей
	consumer := messaging.NewMatchCreatedConsumer(matchRepo, matchService, cfg.MatchCreatedQueue, logger)

	// Инициализация обработчиков HTTP
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	matchHandler := handlers.NewMatchHandler(matchService)
	chatHandler := handlers.NewChatHandler(chatService, messageService)
	commentHandler := handlers.NewCommentHandler(commentService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		cfg.AllowedOrigins,
		matchHandler,
		chatHandler,
		commentHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// Сервер, консьюмер и воркер аудита живут под одной группой:
	// падение любого из них останавливает остальных.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		auditEmitter.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		if err := consumer.Run(groupCtx, amqpChannel); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("service stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
