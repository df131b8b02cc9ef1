package task

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

const TypeDeployPackage = "deploy-package"

// DeployPackageInput names a gzipped tarball and the directory it should be
// extracted into. ArchivePath and DestDir are resolved paths — any
// "${...}" references in the underlying configuration have already been
// substituted by the resolver before this input reaches the task.
type DeployPackageInput struct {
	ArchivePath string `json:"archivePath"`
	DestDir     string `json:"destDir"`
}

// DeployPackageEvent reports one step of an in-progress deployment.
type DeployPackageEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// deployMarker is written to DestDir once extraction succeeds; its
// presence is what IsCompleted checks to make a repeated deploy a no-op.
const deployMarker = ".harness-deployed"

// DeployPackageTask extracts a gzipped tarball into a destination
// directory and marks it deployed, idempotent on the marker file's
// presence. It is the "Package/task deployment" feature: a one-shot
// action with the same JsonService shape as a long-running service's
// action, distinguished only by IsCompleted.
type DeployPackageTask struct{}

// NewDeployPackageTask constructs a DeployPackageTask, suitable for
// registration as a Constructor under TypeDeployPackage.
func NewDeployPackageTask() TaskType { return &DeployPackageTask{} }

func (t *DeployPackageTask) Name() string { return "deploy-package" }
func (t *DeployPackageTask) Description() string {
	return "extracts a package archive to a destination directory"
}
func (t *DeployPackageTask) Type() string { return TypeDeployPackage }

func (t *DeployPackageTask) IsCompleted(ctx context.Context, raw json.RawMessage) (bool, error) {
	var input DeployPackageInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return false, fmt.Errorf("decode deploy-package input: %w", err)
	}
	_, err := os.Stat(filepath.Join(input.DestDir, deployMarker))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *DeployPackageTask) Execute(ctx context.Context, raw json.RawMessage) (<-chan json.RawMessage, error) {
	var input DeployPackageInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("decode deploy-package input: %w", err)
	}

	out := make(chan json.RawMessage, 4)
	go func() {
		defer close(out)
		if err := t.extract(ctx, input, out); err != nil {
			t.emit(out, DeployPackageEvent{Stage: "failed", Message: err.Error()})
			return
		}
		t.emit(out, DeployPackageEvent{Stage: "done", Message: input.DestDir})
	}()
	return out, nil
}

func (t *DeployPackageTask) extract(ctx context.Context, input DeployPackageInput, out chan<- json.RawMessage) error {
	t.emit(out, DeployPackageEvent{Stage: "extracting", Message: input.ArchivePath})

	f, err := os.Open(input.ArchivePath)
	if err != nil {
		return fmt.Errorf("open package archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(input.DestDir, 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target := filepath.Join(input.DestDir, header.Name)
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %q: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create %q: %w", filepath.Dir(target), err)
			}
			out2, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("create %q: %w", target, err)
			}
			if _, err := io.Copy(out2, tr); err != nil {
				out2.Close()
				return fmt.Errorf("write %q: %w", target, err)
			}
			out2.Close()
		}
	}

	t.emit(out, DeployPackageEvent{Stage: "writing-marker", Message: deployMarker})
	marker := filepath.Join(input.DestDir, deployMarker)
	if err := os.WriteFile(marker, []byte{}, 0o644); err != nil {
		return fmt.Errorf("write deploy marker: %w", err)
	}
	return nil
}

func (t *DeployPackageTask) emit(out chan<- json.RawMessage, evt DeployPackageEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	out <- data
}
