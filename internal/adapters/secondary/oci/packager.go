package oci

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/ports/output"
)

// Packager assembles the serving image: the staged model store becomes one
// layer appended to the pre-built inference server base image, and the
// entrypoint is rewritten to start the server against the baked-in config.
type Packager struct{}

func NewPackager() *Packager {
	return &Packager{}
}

var _ ports.ImagePackager = (*Packager)(nil)

func (p *Packager) Package(ctx context.Context, req ports.PackageRequest) (*ports.PackageResult, error) {
	baseRef, err := name.ParseReference(req.BaseImageRef)
	if err != nil {
		return nil, fmt.Errorf("parse base image ref: %w", err)
	}
	targetRef, err := name.ParseReference(req.TargetRef)
	if err != nil {
		return nil, fmt.Errorf("parse target image ref: %w", err)
	}

	base, err := remote.Image(baseRef,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(authn.DefaultKeychain),
	)
	if err != nil {
		return nil, fmt.Errorf("pull base image: %w", err)
	}

	layerTar, err := tarFromDir(req.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("build model store layer: %w", err)
	}
	defer os.Remove(layerTar)

	layer, err := tarball.LayerFromFile(layerTar)
	if err != nil {
		return nil, fmt.Errorf("read model store layer: %w", err)
	}

	img, err := mutate.AppendLayers(base, layer)
	if err != nil {
		return nil, fmt.Errorf("append model store layer: %w", err)
	}

	cfgFile, err := img.ConfigFile()
	if err != nil {
		return nil, fmt.Errorf("read image config: %w", err)
	}
	cfg := cfgFile.Config
	cfg.Entrypoint = req.Entrypoint
	cfg.Cmd = nil

	img, err = mutate.Config(img, cfg)
	if err != nil {
		return nil, fmt.Errorf("set image entrypoint: %w", err)
	}

	digest, err := img.Digest()
	if err != nil {
		return nil, fmt.Errorf("compute image digest: %w", err)
	}

	if req.TarPath != "" {
		if err := os.MkdirAll(filepath.Dir(req.TarPath), 0o755); err != nil {
			return nil, fmt.Errorf("create tar dir: %w", err)
		}
		if err := tarball.WriteToFile(req.TarPath, targetRef, img); err != nil {
			return nil, fmt.Errorf("write image tarball: %w", err)
		}
		log.WithFields(log.Fields{
			"ref":    req.TargetRef,
			"digest": digest.String(),
			"tar":    req.TarPath,
		}).Info("serving image written to tarball")
	} else {
		err := remote.Write(targetRef, img,
			remote.WithContext(ctx),
			remote.WithAuthFromKeychain(authn.DefaultKeychain),
		)
		if err != nil {
			return nil, fmt.Errorf("push serving image: %w", err)
		}
		log.WithFields(log.Fields{
			"ref":    req.TargetRef,
			"digest": digest.String(),
		}).Info("serving image pushed")
	}

	return &ports.PackageResult{
		Ref:    req.TargetRef,
		Digest: digest.String(),
	}, nil
}

// tarFromDir tars the staged store directory into a temp file, preserving
// the relative layout (so models/... in the store lands at /models/... in
// the image).
func tarFromDir(dir string) (string, error) {
	tmp, err := os.CreateTemp("", "model-store-*.tar")
	if err != nil {
		return "", err
	}

	tw := tar.NewWriter(tmp)
	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})

	if err := tw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := tmp.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		os.Remove(tmp.Name())
		return "", walkErr
	}
	return tmp.Name(), nil
}
