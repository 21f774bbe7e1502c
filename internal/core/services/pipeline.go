package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// PipelineService chains the export and packaging stages into one build and
// records the outcome. Stages run strictly in order; packaging never starts
// if export failed, so it can never observe a partial artifact directory.
type PipelineService struct {
	export    *ExportService
	packaging *PackagingService
	repo      ports.BuildRepository
	deploy    ports.DeployClient
	workDir   string
	outputDir string
}

func NewPipelineService(export *ExportService, packaging *PackagingService, repo ports.BuildRepository, deploy ports.DeployClient, workDir, outputDir string) *PipelineService {
	return &PipelineService{
		export:    export,
		packaging: packaging,
		repo:      repo,
		deploy:    deploy,
		workDir:   workDir,
		outputDir: outputDir,
	}
}

// Run executes a full build for rawVariant. The build row is created up
// front so failed runs are visible in history with their failing step's
// error.
func (s *PipelineService) Run(ctx context.Context, rawVariant string, deployAfter bool) (*domain.Build, error) {
	variant, err := domain.ParseVariant(rawVariant)
	if err != nil {
		return nil, err
	}
	spec, err := variant.Spec()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	build := &domain.Build{
		ID:            uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Variant:       variant,
		Status:        domain.BuildStatusRunning,
		CheckpointURL: spec.CheckpointURL,
	}
	if err := s.repo.Create(ctx, build); err != nil {
		return nil, fmt.Errorf("record build: %w", err)
	}

	if err := s.run(ctx, build, deployAfter); err != nil {
		s.finish(ctx, build, domain.BuildStatusFailed, err.Error())
		return build, err
	}

	s.finish(ctx, build, domain.BuildStatusSucceeded, "")
	return build, nil
}

func (s *PipelineService) run(ctx context.Context, build *domain.Build, deployAfter bool) error {
	buildDir := filepath.Join(s.workDir, build.ID.String())
	defer os.RemoveAll(buildDir)

	outputDir := filepath.Join(buildDir, s.outputDir)
	result, err := s.export.Run(ctx, string(build.Variant), buildDir, outputDir)
	if err != nil {
		return err
	}
	build.CheckpointURL = result.Spec.CheckpointURL
	build.CheckpointSHA256 = result.Spec.CheckpointSHA256
	build.Artifacts = result.Artifacts()

	storeDir := filepath.Join(buildDir, "store")
	pkg, err := s.packaging.Run(ctx, build.Variant, result.Encoder.Path, result.Decoder.Path, storeDir)
	if err != nil {
		return err
	}
	build.ImageRef = pkg.Ref
	build.ImageDigest = pkg.Digest

	if deployAfter {
		if s.deploy == nil || !s.deploy.IsAvailable() {
			return domain.ErrDeployDisabled
		}
		dep, err := s.deploy.Deploy(ctx, build)
		if err != nil {
			return fmt.Errorf("deploy build: %w", err)
		}
		log.WithFields(log.Fields{
			"build":     build.ID,
			"variant":   build.Variant,
			"name":      dep.Name,
			"namespace": dep.Namespace,
		}).Info("serving image deployed")
	}

	return nil
}

func (s *PipelineService) finish(ctx context.Context, build *domain.Build, status domain.BuildStatus, errMsg string) {
	now := time.Now()
	build.Status = status
	build.Error = errMsg
	build.UpdatedAt = now
	build.FinishedAt = &now

	if err := s.repo.Update(ctx, build); err != nil {
		log.WithError(err).WithField("build", build.ID).Error("update build record failed")
	}
}

// Get returns one build by ID.
func (s *PipelineService) Get(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns builds matching the filter, newest first.
func (s *PipelineService) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// Deploy rolls out a previously succeeded build.
func (s *PipelineService) Deploy(ctx context.Context, id uuid.UUID) (*ports.Deployment, error) {
	if s.deploy == nil || !s.deploy.IsAvailable() {
		return nil, domain.ErrDeployDisabled
	}

	build, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if build.Status != domain.BuildStatusSucceeded {
		return nil, domain.ErrBuildNotDone
	}
	if build.ImageRef == "" {
		return nil, domain.ErrDeployNoImage
	}

	return s.deploy.Deploy(ctx, build)
}

// Undeploy tears down the InferenceService rolled out for a build.
func (s *PipelineService) Undeploy(ctx context.Context, id uuid.UUID) error {
	if s.deploy == nil || !s.deploy.IsAvailable() {
		return domain.ErrDeployDisabled
	}

	build, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.deploy.Undeploy(ctx, build); err != nil {
		return fmt.Errorf("undeploy build: %w", err)
	}
	log.WithFields(log.Fields{
		"build":   build.ID,
		"variant": build.Variant,
	}).Info("serving deployment removed")
	return nil
}
