package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"model-export-pipeline/internal/adapters/secondary/checkpoint"
	"model-export-pipeline/internal/adapters/secondary/export"
	"model-export-pipeline/internal/adapters/secondary/matrix"
	"model-export-pipeline/internal/adapters/secondary/memory"
	"model-export-pipeline/internal/adapters/secondary/oci"
	"model-export-pipeline/internal/adapters/secondary/webhook"
	"model-export-pipeline/internal/config"
	"model-export-pipeline/internal/core/domain"
	output "model-export-pipeline/internal/core/ports/output"
	"model-export-pipeline/internal/core/services"

	log "github.com/sirupsen/logrus"
)

const usage = `usage:
  builder build -variant {vit_b|vit_l|vit_h}
  builder regression
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	initLogger(cfg)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "build":
		runBuild(ctx, cfg, os.Args[2:])
	case "regression":
		runRegression(ctx, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runBuild(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	variant := fs.String("variant", "", "model variant (vit_b, vit_l or vit_h); required")
	fs.Parse(args)

	// No default: the variant must be named explicitly, and an unknown one
	// is rejected before any download starts.
	if _, err := domain.ParseVariant(*variant); err != nil {
		log.Fatalf("variant %q: %v", *variant, err)
	}

	var overrides map[domain.Variant]domain.VariantOverride
	if cfg.Pipeline.ManifestPath != "" {
		var err error
		overrides, err = config.LoadVariantManifest(cfg.Pipeline.ManifestPath)
		if err != nil {
			log.Fatalf("load variant manifest: %v", err)
		}
	}

	fetcher := checkpoint.NewFetcher(cfg.Pipeline.FetchTimeout)
	exporter := export.NewScriptRunner(cfg.Pipeline.PythonBin, cfg.Pipeline.EncoderScript, cfg.Pipeline.DecoderScript, cfg.Pipeline.ExportTimeout)
	packager := oci.NewPackager()

	exportSvc := services.NewExportService(fetcher, exporter, overrides)
	packagingSvc := services.NewPackagingService(packager, cfg.Pipeline.ServingConfigPath, cfg.Registry.BaseImage, cfg.Registry.TargetRepo, cfg.Registry.TarDir, cfg.Registry.Entrypoint)
	pipelineSvc := services.NewPipelineService(exportSvc, packagingSvc, memory.NewBuildRepo(), nil, cfg.Pipeline.WorkDir, cfg.Pipeline.OutputDir)

	build, err := pipelineSvc.Run(ctx, *variant, false)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}

	log.WithFields(log.Fields{
		"build":   build.ID,
		"variant": build.Variant,
		"image":   build.ImageRef,
		"digest":  build.ImageDigest,
	}).Info("build succeeded")
}

func runRegression(ctx context.Context, cfg *config.Config) {
	var notifier output.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notifier = webhook.NewNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout)
	}

	svc := services.NewRegressionService(
		matrix.NewRunner(cfg.Regression.ArtifactDir),
		notifier,
		nil,
		domain.Matrix{
			OperatingSystems: cfg.Regression.OperatingSystems,
			RuntimeVersions:  cfg.Regression.RuntimeVersions,
			Command:          cfg.Regression.Command,
		},
	)

	run, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("regression run failed to execute: %v", err)
	}

	log.WithFields(log.Fields{
		"run":    run.ID,
		"status": run.Status,
		"cells":  len(run.Results),
		"failed": len(run.FailedCells()),
	}).Info("regression run finished")

	if run.Status == domain.RunStatusFailed {
		os.Exit(1)
	}
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
