package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// MockCheckpointFetcher is a mock of CheckpointFetcher.
type MockCheckpointFetcher struct {
	mock.Mock
}

func (m *MockCheckpointFetcher) Fetch(ctx context.Context, spec domain.VariantSpec, destPath string) error {
	args := m.Called(ctx, spec, destPath)
	return args.Error(0)
}

// MockModelExporter is a mock of ModelExporter.
type MockModelExporter struct {
	mock.Mock
}

func (m *MockModelExporter) Export(ctx context.Context, req ports.ExportRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockImagePackager is a mock of ImagePackager.
type MockImagePackager struct {
	mock.Mock
}

func (m *MockImagePackager) Package(ctx context.Context, req ports.PackageRequest) (*ports.PackageResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.PackageResult), args.Error(1)
}

// MockBuildRepo is a mock of BuildRepository.
type MockBuildRepo struct {
	mock.Mock
}

func (m *MockBuildRepo) Create(ctx context.Context, build *domain.Build) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockBuildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Build), args.Error(1)
}

func (m *MockBuildRepo) Update(ctx context.Context, build *domain.Build) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockBuildRepo) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Build), args.Int(1), args.Error(2)
}

// MockRegressionRepo is a mock of RegressionRepository.
type MockRegressionRepo struct {
	mock.Mock
}

func (m *MockRegressionRepo) Create(ctx context.Context, run *domain.RegressionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRegressionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RegressionRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegressionRun), args.Error(1)
}

func (m *MockRegressionRepo) List(ctx context.Context, limit, offset int) ([]*domain.RegressionRun, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.RegressionRun), args.Int(1), args.Error(2)
}

// MockCellRunner is a mock of CellRunner.
type MockCellRunner struct {
	mock.Mock
}

func (m *MockCellRunner) Run(ctx context.Context, cell domain.MatrixCell, command []string) (domain.CellResult, error) {
	args := m.Called(ctx, cell, command)
	return args.Get(0).(domain.CellResult), args.Error(1)
}

// MockNotifier is a mock of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyFailure(ctx context.Context, notice ports.FailureNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

// MockDeployClient is a mock of DeployClient.
type MockDeployClient struct {
	mock.Mock
}

func (m *MockDeployClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockDeployClient) Deploy(ctx context.Context, build *domain.Build) (*ports.Deployment, error) {
	args := m.Called(ctx, build)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Deployment), args.Error(1)
}

func (m *MockDeployClient) Undeploy(ctx context.Context, build *domain.Build) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}
