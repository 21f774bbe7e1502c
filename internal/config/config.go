package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Pipeline   PipelineConfig
	Registry   RegistryConfig
	Kubernetes KubernetesConfig
	Regression RegressionConfig
	Notifier   NotifierConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type PipelineConfig struct {
	// WorkDir holds per-build scratch directories (checkpoint downloads,
	// staged model stores). Each build gets its own subdirectory.
	WorkDir string
	// OutputDir is the fixed directory receiving encoder.onnx/decoder.onnx.
	OutputDir string
	// ManifestPath optionally points at a YAML variant manifest overriding
	// checkpoint URLs/checksums. Empty means built-in table only.
	ManifestPath string
	// ServingConfigPath is the static routing document copied verbatim into
	// the image.
	ServingConfigPath string
	PythonBin         string
	EncoderScript     string
	DecoderScript     string
	FetchTimeout      time.Duration
	ExportTimeout     time.Duration
}

type RegistryConfig struct {
	// BaseImage is the pre-built inference server image.
	BaseImage string
	// TargetRepo is the repository the packaged image is tagged into, e.g.
	// registry.example.com/serving/sam. The variant becomes the tag.
	TargetRepo string
	// TarDir, when non-empty, writes images to tarballs there instead of
	// pushing.
	TarDir string
	// Entrypoint declared on the packaged image.
	Entrypoint []string
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	DefaultNS      string
}

type RegressionConfig struct {
	OperatingSystems []string
	RuntimeVersions  []string
	Command          []string
	ArtifactDir      string
	// Interval between scheduled runs in daemon mode. Zero disables the
	// schedule.
	Interval time.Duration
}

type NotifierConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "model_export")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("PIPELINE_WORK_DIR", "/tmp/model-export")
	v.SetDefault("PIPELINE_OUTPUT_DIR", "out")
	v.SetDefault("PIPELINE_MANIFEST_PATH", "")
	v.SetDefault("PIPELINE_SERVING_CONFIG", "configs/serving/config.json")
	v.SetDefault("PIPELINE_PYTHON_BIN", "python3")
	v.SetDefault("PIPELINE_ENCODER_SCRIPT", "scripts/export_encoder.py")
	v.SetDefault("PIPELINE_DECODER_SCRIPT", "scripts/export_decoder.py")
	v.SetDefault("PIPELINE_FETCH_TIMEOUT", "15m")
	v.SetDefault("PIPELINE_EXPORT_TIMEOUT", "30m")

	v.SetDefault("REGISTRY_BASE_IMAGE", "openvino/model_server:2024.0")
	v.SetDefault("REGISTRY_TARGET_REPO", "")
	v.SetDefault("REGISTRY_TAR_DIR", "")
	v.SetDefault("REGISTRY_ENTRYPOINT", []string{"/ovms/bin/ovms", "--config_path", "/models/config.json"})

	v.SetDefault("K8S_ENABLED", false)
	v.SetDefault("K8S_IN_CLUSTER", false)
	v.SetDefault("K8S_KUBECONFIG", "")
	v.SetDefault("K8S_DEFAULT_NAMESPACE", "model-serving")

	v.SetDefault("REGRESSION_OPERATING_SYSTEMS", []string{"ubuntu-22.04", "macos-14", "windows-2022"})
	v.SetDefault("REGRESSION_RUNTIME_VERSIONS", []string{"3.9", "3.10", "3.11", "3.12"})
	v.SetDefault("REGRESSION_COMMAND", []string{"python3", "-m", "pytest", "tests/"})
	v.SetDefault("REGRESSION_ARTIFACT_DIR", "/tmp/model-export/regression")
	v.SetDefault("REGRESSION_INTERVAL", "0s")

	v.SetDefault("NOTIFIER_WEBHOOK_URL", "")
	v.SetDefault("NOTIFIER_TIMEOUT", "10s")

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Pipeline: PipelineConfig{
			WorkDir:           v.GetString("PIPELINE_WORK_DIR"),
			OutputDir:         v.GetString("PIPELINE_OUTPUT_DIR"),
			ManifestPath:      v.GetString("PIPELINE_MANIFEST_PATH"),
			ServingConfigPath: v.GetString("PIPELINE_SERVING_CONFIG"),
			PythonBin:         v.GetString("PIPELINE_PYTHON_BIN"),
			EncoderScript:     v.GetString("PIPELINE_ENCODER_SCRIPT"),
			DecoderScript:     v.GetString("PIPELINE_DECODER_SCRIPT"),
			FetchTimeout:      v.GetDuration("PIPELINE_FETCH_TIMEOUT"),
			ExportTimeout:     v.GetDuration("PIPELINE_EXPORT_TIMEOUT"),
		},
		Registry: RegistryConfig{
			BaseImage:  v.GetString("REGISTRY_BASE_IMAGE"),
			TargetRepo: v.GetString("REGISTRY_TARGET_REPO"),
			TarDir:     v.GetString("REGISTRY_TAR_DIR"),
			Entrypoint: v.GetStringSlice("REGISTRY_ENTRYPOINT"),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("K8S_ENABLED"),
			InCluster:      v.GetBool("K8S_IN_CLUSTER"),
			KubeConfigPath: v.GetString("K8S_KUBECONFIG"),
			DefaultNS:      v.GetString("K8S_DEFAULT_NAMESPACE"),
		},
		Regression: RegressionConfig{
			OperatingSystems: v.GetStringSlice("REGRESSION_OPERATING_SYSTEMS"),
			RuntimeVersions:  v.GetStringSlice("REGRESSION_RUNTIME_VERSIONS"),
			Command:          v.GetStringSlice("REGRESSION_COMMAND"),
			ArtifactDir:      v.GetString("REGRESSION_ARTIFACT_DIR"),
			Interval:         v.GetDuration("REGRESSION_INTERVAL"),
		},
		Notifier: NotifierConfig{
			WebhookURL: v.GetString("NOTIFIER_WEBHOOK_URL"),
			Timeout:    v.GetDuration("NOTIFIER_TIMEOUT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}
