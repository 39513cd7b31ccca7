package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tictactoe_server/internal/config"
	"tictactoe_server/internal/db"
	httpServer "tictactoe_server/internal/http"
	"tictactoe_server/internal/http/handlers"
	"tictactoe_server/internal/http/middleware"
	"tictactoe_server/internal/logger"
	"tictactoe_server/internal/repository"
	"tictactoe_server/internal/service"
	"tictactoe_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Version is set at build time
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogJSON())
	log := logger.Get()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, dbPool); err != nil {
		logger.Fatal("migration failed", "error", err)
	}
	cancelMigrate()

	// redis is optional: without it there is no rate limiting and no session archive
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis ping failed, continuing", "addr", cfg.RedisAddr, "error", err)
		}
		cancelPing()
	} else {
		log.Warn("REDIS_ADDR not set: rate limiting and session archive disabled")
	}

	users := repository.NewUserRepository(dbPool)
	audit := service.NewAuditService(repository.NewAuditRepository(dbPool))
	tokens := service.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	accounts := service.NewAccountService(users, tokens, audit)
	achievements := service.NewAchievementService(repository.NewAchievementRepository(dbPool))
	store := service.NewStoreService(dbPool, audit)
	sessionRepo := repository.NewGameSessionRepository(dbPool)
	chatRepo := repository.NewChatRepository(dbPool)
	recorder := service.NewMatchRecorder(sessionRepo, chatRepo, achievements)
	history := service.NewHistoryService(sessionRepo, chatRepo)

	hubOpts := ws.Options{
		Verifier:         tokens,
		Recorder:         recorder,
		SessionRetention: cfg.SessionRetention,
		AbandonTimeout:   cfg.AbandonTimeout,
		PersistMaxTries:  cfg.PersistMaxTries,
	}
	var limiter *middleware.RateLimiter
	if rdb != nil {
		hubOpts.Archive = service.NewSessionArchive(rdb, cfg.ArchiveTTL)
		limiter = middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
	}
	hub := ws.NewHub(hubOpts)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(hubCtx)
	}()

	gin.SetMode(gin.ReleaseMode)
	r := httpServer.NewRouter(httpServer.Deps{
		Handler: &handlers.Handler{
			Accounts:     accounts,
			Achievements: achievements,
			Store:        store,
			Activity:     audit,
			History:      history,
		},
		Tokens:        tokens,
		RateLimiter:   limiter,
		WS:            ws.NewWSHandler(hub, cfg.AllowedOrigin),
		AllowedOrigin: cfg.AllowedOrigin,
		Health:        dbPool.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	// closes live sockets and flushes queued durable writes
	stopHub()
	select {
	case <-hubDone:
	case <-ctx.Done():
		log.Warn("hub did not stop in time")
	}

	log.Info("server exited")
}
