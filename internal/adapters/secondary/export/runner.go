package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// ScriptRunner invokes the external export scripts as subprocesses. The
// scripts own all model logic; this adapter only selects the script for the
// artifact kind and passes checkpoint, model type and output path through.
type ScriptRunner struct {
	pythonBin     string
	encoderScript string
	decoderScript string
	timeout       time.Duration
}

func NewScriptRunner(pythonBin, encoderScript, decoderScript string, timeout time.Duration) *ScriptRunner {
	return &ScriptRunner{
		pythonBin:     pythonBin,
		encoderScript: encoderScript,
		decoderScript: decoderScript,
		timeout:       timeout,
	}
}

var _ ports.ModelExporter = (*ScriptRunner)(nil)

func (r *ScriptRunner) Export(ctx context.Context, req ports.ExportRequest) error {
	script := r.encoderScript
	if req.Kind == domain.ArtifactDecoder {
		script = r.decoderScript
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.pythonBin, script,
		"--checkpoint", req.CheckpointPath,
		"--model-type", req.ModelType,
		"--output", req.OutputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.WithFields(log.Fields{
		"kind":   req.Kind,
		"script": script,
	}).Debug("invoking export script")

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if len(msg) > 2048 {
			msg = msg[len(msg)-2048:]
		}
		return fmt.Errorf("export script %s: %w: %s", script, err, msg)
	}
	return nil
}
