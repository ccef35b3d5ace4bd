package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/kamaldev10/judi-guard-app/internal/classifier"
	"github.com/kamaldev10/judi-guard-app/internal/config"
	"github.com/kamaldev10/judi-guard-app/internal/db"
	"github.com/kamaldev10/judi-guard-app/internal/handler"
	"github.com/kamaldev10/judi-guard-app/internal/middleware"
	"github.com/kamaldev10/judi-guard-app/internal/repository"
	"github.com/kamaldev10/judi-guard-app/internal/router"
	"github.com/kamaldev10/judi-guard-app/internal/service"
	"github.com/kamaldev10/judi-guard-app/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "judi-guard-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	jobRepo := repository.NewJobRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)

	ytClient := youtube.NewClient(cfg.YouTubeAPIBaseURL, cfg.YouTubeAPIToken)
	clfClient := classifier.NewClient(cfg.ClassifierURL)

	analysisSvc := service.NewAnalysisService(
		jobRepo, commentRepo, ytClient, clfClient,
		cfg.MaxComments, cfg.CommentsPageSize, cfg.ClassifyConcurrency)
	remediationSvc := service.NewRemediationService(commentRepo, ytClient)
	batchSvc := service.NewBatchRemediationService(jobRepo, commentRepo, remediationSvc, cfg.RemediateConcurrency)

	reaper := service.NewReaperWorker(jobRepo, cfg.ReaperInterval, cfg.JobStuckAfter)
	go reaper.Start(ctx)

	handler.InitMetrics(pool)

	app := fiber.New(fiber.Config{
		AppName:      "Judi Guard API",
		ServerHeader: "JudiGuard",
	})

	router.Setup(app, &router.Handlers{
		Analysis:    handler.NewAnalysisHandler(analysisSvc, jobRepo, commentRepo, cache),
		Remediation: handler.NewRemediationHandler(remediationSvc, batchSvc, cache),
		Stats:       handler.NewStatsHandler(jobRepo),
		Health:      handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		_ = app.Shutdown()
	}()

	log.Printf("Judi Guard backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
