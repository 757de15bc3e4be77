package main

import (
	"context"
	"net/http"
	"time"

	"scholarnet/internal/api"
	"scholarnet/internal/config"
	"scholarnet/internal/logger"
	"scholarnet/internal/logger/console"
	"scholarnet/internal/storage"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger.Init(console.New(console.Params{Debug: cfg.Debug, Prefix: "api"}))

	// Postgres and Temporal are optional: synchronous analysis works without them.
	var runs api.RunStore
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	cancel()
	if err != nil {
		logger.Warn("postgres unavailable, runs are not archived", "err", err)
	} else {
		defer db.Close()
		runs = storage.NewAnalysisRepo(db)
	}

	var wc api.WorkflowClient
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Warn("temporal unavailable, async analysis disabled", "err", err)
	} else {
		defer tc.Close()
		wc = tc
	}

	h := api.NewServer(cfg, runs, wc)
	logger.Info("scholarnet api listening", "addr", cfg.APIAddr, "persist", cfg.Persist, "max_documents", cfg.MaxDocuments)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		logger.Fatal("api server stopped", "err", err)
	}
}
