package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "task-manager.com/task-manager/internal/configs"
	httpapi "task-manager.com/task-manager/internal/http"
	"task-manager.com/task-manager/internal/realtime"
	repository "task-manager.com/task-manager/internal/repositories"
	"task-manager.com/task-manager/internal/services"
)

const revokedTokenPurgeInterval = 15 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task manager HTTP API and its change feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		log, err := config.NewLogger(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		database, err := config.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}

		var feed realtime.Feed
		if cfg.RedisAddr != "" {
			redisClient, err := config.NewRedisClient(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer redisClient.Close()
			feed = realtime.NewRedisFeed(redisClient, cfg.RedisChannel, log)
			log.Infow("using redis change feed", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
		} else {
			memoryFeed := realtime.NewMemoryFeed(log)
			defer memoryFeed.Close()
			feed = memoryFeed
			log.Info("using in-process change feed")
		}

		taskRepo := repository.NewTaskRepository(database)
		supplierRepo := repository.NewSupplierRepository(database)
		userRepo := repository.NewUserRepository(database)

		taskService := services.NewTaskService(taskRepo, supplierRepo, feed, log)
		supplierService := services.NewSupplierService(supplierRepo, feed, log)
		authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionTTL(), log)
		janitor := services.NewTokenJanitor(userRepo, revokedTokenPurgeInterval, log)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true

		handler := httpapi.NewHandler(taskService, supplierService, authService, feed, log)
		httpapi.Register(e, handler, cfg.RateLimit)
		e.Server.RegisterOnShutdown(handler.CloseStreams)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Infow("HTTP server listening", "addr", cfg.AppURL())
			if err := e.Start(cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("server stopped", "error", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warnw("HTTP server shutdown", "error", err)
		}
		janitor.Shutdown(shutdownCtx)

		log.Info("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
