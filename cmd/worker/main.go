package main

import (
	"log"

	"github.com/alanlujan91/DemARK/internal/config"
	"github.com/alanlujan91/DemARK/internal/database"
	"github.com/alanlujan91/DemARK/internal/fred"
	"github.com/alanlujan91/DemARK/internal/orchestration"
	"github.com/alanlujan91/DemARK/internal/theory"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

func main() {
	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	if cfg.TemporalAddress == "" {
		logger.Fatal("TEMPORAL_ADDRESS must be set for the analysis worker")
	}

	temporalClient, err := orchestration.InitTemporalClient(cfg.TemporalAddress)
	if err != nil {
		logger.Fatal("failed to connect to temporal", zap.Error(err))
	}
	defer orchestration.CloseTemporalClient()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	fredClient := fred.NewClient(cfg.FREDBaseURL, cfg.FREDAPIKey, logger)
	theoryService := theory.NewService(db, rdb, fredClient, logger)

	w := worker.New(temporalClient, orchestration.TaskQueue, worker.Options{})
	w.RegisterWorkflow(orchestration.AnalysisWorkflow)
	w.RegisterActivity(&orchestration.Activities{Service: theoryService})

	logger.Info("analysis worker starting", zap.String("task_queue", orchestration.TaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
