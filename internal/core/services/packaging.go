package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// PackagingService assembles the serving image: it stages the two exported
// graphs into the fixed model-store layout, attaches the routing document
// byte-for-byte, and hands the staged tree to the image packager. The
// artifacts are opaque; nothing here inspects or rewrites them.
type PackagingService struct {
	packager          ports.ImagePackager
	servingConfigPath string
	baseImage         string
	targetRepo        string
	tarDir            string
	entrypoint        []string
}

func NewPackagingService(packager ports.ImagePackager, servingConfigPath, baseImage, targetRepo, tarDir string, entrypoint []string) *PackagingService {
	return &PackagingService{
		packager:          packager,
		servingConfigPath: servingConfigPath,
		baseImage:         baseImage,
		targetRepo:        targetRepo,
		tarDir:            tarDir,
		entrypoint:        entrypoint,
	}
}

// Stage copies the encoder and decoder artifacts plus the serving config
// into storeDir using the fixed layout. A missing input fails the stage;
// there is no fallback or substitution.
func (s *PackagingService) Stage(encoderPath, decoderPath, storeDir string) error {
	inputs := map[domain.ArtifactKind]string{
		domain.ArtifactEncoder: encoderPath,
		domain.ArtifactDecoder: decoderPath,
	}

	for kind, src := range inputs {
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", domain.ErrArtifactAbsent, src)
			}
			return fmt.Errorf("stat %s artifact: %w", kind, err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%w: %s", domain.ErrArtifactEmpty, src)
		}

		dst := filepath.Join(storeDir, filepath.FromSlash(kind.StorePath()))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("stage %s artifact: %w", kind, err)
		}
	}

	if _, err := os.Stat(s.servingConfigPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrServingConfigAbsent, s.servingConfigPath)
		}
		return fmt.Errorf("stat serving config: %w", err)
	}
	dst := filepath.Join(storeDir, filepath.FromSlash(domain.ServingConfigPath()))
	if err := copyFile(s.servingConfigPath, dst); err != nil {
		return fmt.Errorf("stage serving config: %w", err)
	}

	return nil
}

// Run stages the artifacts and assembles the image for the variant.
func (s *PackagingService) Run(ctx context.Context, variant domain.Variant, encoderPath, decoderPath, storeDir string) (*ports.PackageResult, error) {
	if err := s.Stage(encoderPath, decoderPath, storeDir); err != nil {
		return nil, err
	}

	req := ports.PackageRequest{
		StoreDir:     storeDir,
		BaseImageRef: s.baseImage,
		TargetRef:    fmt.Sprintf("%s:%s", s.targetRepo, variant),
		Entrypoint:   s.entrypoint,
	}
	if s.tarDir != "" {
		req.TarPath = filepath.Join(s.tarDir, fmt.Sprintf("serving-%s.tar", variant))
	}

	log.WithFields(log.Fields{
		"variant": variant,
		"base":    req.BaseImageRef,
		"target":  req.TargetRef,
	}).Info("assembling serving image")

	result, err := s.packager.Package(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("package image: %w", err)
	}
	return result, nil
}

// copyFile copies src to dst verbatim, creating parent directories. The
// write goes through a temp file and rename so a partial copy never lands at
// dst.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".staging-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
