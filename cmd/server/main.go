package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/cache"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/config"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/events"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/handler"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/service"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/store"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/stream"
	pkgjwt "github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/jwt"
	pkglog "github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, ServiceName: "community-backend"})
	logger := pkglog.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting community backend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB
	db, err := repository.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer db.Client().Disconnect(context.Background())

	// Redis (author cache)
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	authorCache := cache.NewRedisAuthorCache(redisClient, cfg.Stream.AuthorCacheTTL)

	// Kafka publisher, optional
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Brokers != "" {
		publisher = events.NewKafkaPublisher(cfg.Kafka)
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka publisher enabled")
	}
	defer publisher.Close()

	// Repositories and stores
	communityRepo := repository.NewMongoCommunityRepository(db)
	channelRepo := repository.NewMongoChannelRepository(db)
	messageRepo := repository.NewMongoMessageRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	presenceStore := store.NewMongoPresenceStore(db)
	typingStore := store.NewMongoTypingStore(db)

	// Stream core
	encoder := stream.NewEncoder(userRepo, authorCache)
	detector := stream.NewDetector(communityRepo, channelRepo, messageRepo, presenceStore, typingStore, cfg.Stream.MaxEventsPerCycle)
	streamService := stream.NewService(communityRepo, channelRepo, detector, encoder, cfg.Stream)

	// Services
	communityService := service.NewCommunityService(communityRepo, channelRepo, userRepo, publisher)
	messageService := service.NewMessageService(communityRepo, channelRepo, messageRepo, encoder, publisher, cfg.Stream.MessagePageSize)
	presenceService := service.NewPresenceService(communityRepo, channelRepo, presenceStore, typingStore, encoder, cfg.Stream.TypingTTL)

	// HTTP
	tokens := pkgjwt.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(pkglog.GinMiddleware(logger), gin.Recovery())

	handler.RegisterRoutes(router, tokens,
		handler.NewCommunityHandler(communityService),
		handler.NewMessageHandler(messageService),
		handler.NewPresenceHandler(presenceService),
		handler.NewStreamHandler(streamService),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
		// No WriteTimeout: SSE streams stay open until the client leaves.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// Request contexts derive from the root context so cancelling it
		// ends every open stream session during shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("community backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down community backend")

	// Cancelling the root context ends every open stream session; the
	// server drain then finishes quickly.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("community backend stopped")
}
