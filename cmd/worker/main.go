package main

import (
	"context"
	"time"

	"scholarnet/internal/activities"
	"scholarnet/internal/config"
	"scholarnet/internal/logger"
	"scholarnet/internal/logger/console"
	"scholarnet/internal/storage"
	"scholarnet/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger.Init(console.New(console.Params{Debug: cfg.Debug, Prefix: "worker"}))

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal("dial temporal", "err", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("connect postgres", "err", err)
	}
	defer db.Close()
	activities.Register(w, activities.New(cfg, storage.NewAnalysisRepo(db)))

	logger.Info("scholarnet worker listening", "temporal", cfg.TemporalAddress, "queue", cfg.TemporalTaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped", "err", err)
	}
}
