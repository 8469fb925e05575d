// @title           Todo API
// @version         1.0
// @description     REST backend for the todo list web client.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/todolist/todo-api/internal/api"
	"github.com/todolist/todo-api/internal/core/service"
	"github.com/todolist/todo-api/internal/infrastructure/db/mongo"
	"github.com/todolist/todo-api/internal/infrastructure/db/redis"
	"github.com/todolist/todo-api/internal/infrastructure/queue"
	"github.com/todolist/todo-api/internal/pkg/config"
	"github.com/todolist/todo-api/internal/pkg/password"
	"github.com/todolist/todo-api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "todo-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	// The server keeps running when the database is down or misconfigured;
	// requests fail individually until it comes back.
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Error().Err(err).Msg("MongoDB connection error")
	} else {
		if err := mongo.Ping(ctx, client, cfg.Mongo.Timeout); err != nil {
			log.Error().Err(err).Msg("MongoDB connection error")
		} else {
			log.Info().Str("database", db.Name()).Msg("Connected to MongoDB")
		}
		go func() {
			ensure := func(ctx context.Context) error { return mongo.EnsureIndexes(ctx, db) }
			_ = mongo.KeepEnsuringIndexes(ctx, ensure, time.Second, time.Minute, log)
		}()
	}

	// --- Redis (optional) ---
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		}
	}

	// --- Activity trail ---
	// Runs on its own context so requests finishing during shutdown can
	// still record.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	activityService := service.NewActivityService(mongo.NewActivityRepository(db), log)
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, activityService, log)
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Options{
		DB:       db,
		Redis:    rdb,
		Config:   cfg,
		Logger:   log,
		Activity: dispatcher,
		Hasher:   password.NewHasher(password.DefaultParams),
	})

	go func() {
		log.Info().Msgf("Server running on http://localhost:%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()

	if rdb != nil {
		_ = rdb.Close()
	}
	if client != nil {
		if err := client.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}
	log.Info().Msg("stopped")
}
