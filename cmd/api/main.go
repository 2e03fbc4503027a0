package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	httpx "github.com/Devwillmarinho/TaskFlow-Project/internal/http"
	"github.com/Devwillmarinho/TaskFlow-Project/internal/repository/mongodb"
	"github.com/Devwillmarinho/TaskFlow-Project/internal/service/auth"
	"github.com/Devwillmarinho/TaskFlow-Project/internal/service/task"
	"github.com/Devwillmarinho/TaskFlow-Project/pkg/config"
	"github.com/Devwillmarinho/TaskFlow-Project/pkg/logger"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.LoadAPIConfig()
	log := logger.New("api", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error("database disconnect failed", "error", err)
		}
	}()

	repo := mongodb.New(client.Database(cfg.MongoDatabase))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Error("index bootstrap failed", "error", err)
		os.Exit(1)
	}

	authSvc := auth.New(repo, log, cfg)
	taskSvc := task.New(repo, log)

	router := httpx.NewRouter(log, authSvc, taskSvc, cfg, repo.Ping)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
