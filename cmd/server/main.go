package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-export-pipeline/internal/adapters/primary/http/handlers"
	"model-export-pipeline/internal/adapters/primary/http/middleware"
	"model-export-pipeline/internal/adapters/secondary/checkpoint"
	"model-export-pipeline/internal/adapters/secondary/export"
	"model-export-pipeline/internal/adapters/secondary/kserve"
	"model-export-pipeline/internal/adapters/secondary/matrix"
	"model-export-pipeline/internal/adapters/secondary/oci"
	"model-export-pipeline/internal/adapters/secondary/postgres"
	"model-export-pipeline/internal/adapters/secondary/webhook"
	"model-export-pipeline/internal/config"
	"model-export-pipeline/internal/core/domain"
	output "model-export-pipeline/internal/core/ports/output"
	"model-export-pipeline/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Variant manifest overrides (optional)
	var overrides map[domain.Variant]domain.VariantOverride
	if cfg.Pipeline.ManifestPath != "" {
		overrides, err = config.LoadVariantManifest(cfg.Pipeline.ManifestPath)
		if err != nil {
			log.Fatalf("load variant manifest: %v", err)
		}
		log.WithField("path", cfg.Pipeline.ManifestPath).Info("variant manifest loaded")
	}

	// Secondary Adapters (Output Ports)
	buildRepo := postgres.NewBuildRepository(pool)
	regressionRepo := postgres.NewRegressionRepository(pool)
	fetcher := checkpoint.NewFetcher(cfg.Pipeline.FetchTimeout)
	exporter := export.NewScriptRunner(cfg.Pipeline.PythonBin, cfg.Pipeline.EncoderScript, cfg.Pipeline.DecoderScript, cfg.Pipeline.ExportTimeout)
	packager := oci.NewPackager()
	cellRunner := matrix.NewRunner(cfg.Regression.ArtifactDir)

	// KServe Client (Optional - based on config)
	var deployClient output.DeployClient
	if cfg.Kubernetes.Enabled {
		client, err := kserve.NewDeployClient(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("KServe client init failed (continuing without K8s integration): %v", err)
		} else {
			deployClient = client
			log.Info("KServe client initialized")
		}
	} else {
		log.Info("KServe integration disabled")
	}

	// Webhook Notifier (Optional - based on config)
	var notifier output.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notifier = webhook.NewNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout)
		log.Info("failure webhook configured")
	} else {
		log.Info("failure webhook disabled")
	}

	// Core Services (Application Layer)
	exportSvc := services.NewExportService(fetcher, exporter, overrides)
	packagingSvc := services.NewPackagingService(packager, cfg.Pipeline.ServingConfigPath, cfg.Registry.BaseImage, cfg.Registry.TargetRepo, cfg.Registry.TarDir, cfg.Registry.Entrypoint)
	pipelineSvc := services.NewPipelineService(exportSvc, packagingSvc, buildRepo, deployClient, cfg.Pipeline.WorkDir, cfg.Pipeline.OutputDir)
	regressionSvc := services.NewRegressionService(cellRunner, notifier, regressionRepo, domain.Matrix{
		OperatingSystems: cfg.Regression.OperatingSystems,
		RuntimeVersions:  cfg.Regression.RuntimeVersions,
		Command:          cfg.Regression.Command,
	})

	// Scheduled regression runs
	schedCtx, stopSchedule := context.WithCancel(context.Background())
	defer stopSchedule()
	if cfg.Regression.Interval > 0 {
		log.WithField("interval", cfg.Regression.Interval).Info("regression schedule enabled")
		go regressionSvc.Schedule(schedCtx, cfg.Regression.Interval)
	}

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(pipelineSvc, regressionSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/export-pipeline")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")
	stopSchedule()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
