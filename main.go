package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soratane/guildcore/api/rest"
	"github.com/soratane/guildcore/api/ws"
	"github.com/soratane/guildcore/cache"
	"github.com/soratane/guildcore/config"
	"github.com/soratane/guildcore/db"
	"github.com/soratane/guildcore/guild"
	"github.com/soratane/guildcore/guildlog"
	"github.com/soratane/guildcore/middleware"
	"github.com/soratane/guildcore/model"
	"github.com/soratane/guildcore/permnotify"
	"github.com/soratane/guildcore/player"
	"github.com/soratane/guildcore/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	cacheCfg := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheCfg)
	if err != nil {
		logger.Fatal("init cache", zap.Error(err))
	}
	ps, err := cache.NewPubSub(cacheCfg)
	if err != nil {
		logger.Fatal("init pubsub", zap.Error(err))
	}

	sessions := player.NewSessionManager(logger)
	journal := guildlog.NewWriter(gormDB, logger,
		guildlog.WithChannelBuf(cfg.Guild.LogChannelBuf),
		guildlog.WithBatchSize(cfg.Guild.LogBatchSize))

	svc := guild.NewService(gormDB, cfg.Guild, journal, c, sessions, logger)
	svc.SetPermissionNotifier(permnotify.New(c, ps, logger))
	if len(cfg.Guild.Worlds) > 0 {
		svc.SetWorldResolver(guild.WorldList(cfg.Guild.Worlds))
	}

	sched := scheduler.New(logger)
	sched.AddTicker("guild_log_retention", 24*time.Hour, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		svc.CleanOldLogs(ctx, cfg.Guild.LogRetentionDays)
	})
	sched.AddTicker("leaderboard_rebuild", time.Hour, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		svc.RebuildLeaderboard(ctx)
	})

	// Seed the leaderboard before serving traffic.
	{
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		svc.RebuildLeaderboard(ctx)
		cancel()
	}

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.TraceID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst),
	)
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"online": sessions.Count()})
	})

	handler := rest.NewGuildHandler(svc)
	api := router.Group("/api/v1", middleware.Auth(cfg.Security))
	handler.Register(api)

	admin := router.Group("/admin",
		middleware.IPWhitelist(cfg.Security.AdminIPWhitelist),
		middleware.AdminKey(cfg.Security))
	handler.RegisterAdmin(admin)

	wsHandler := ws.NewHandler(sessions, cfg.Security, logger)
	router.GET("/ws", middleware.Auth(cfg.Security), wsHandler.Serve)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Info("guild server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	sched.Stop()
	sessions.CloseAll()
	journal.Stop(shutdownCtx)
	logger.Info("bye")
}
