package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/polkiloo/printshop/internal/adapter/yandexdisk"
	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/pkg/command"
)

// Rclone drives the rclone CLI against a configured remote.
type Rclone struct {
	binary  string
	root    string
	timeout time.Duration
	runner  command.Runner
	disk    yandexdisk.Client
	logger  *slog.Logger
}

// NewRclone builds an rclone backend. disk may be nil, in which case direct
// links are unsupported.
func NewRclone(binary, root string, timeout time.Duration, runner command.Runner, disk yandexdisk.Client, logger *slog.Logger) *Rclone {
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Rclone{
		binary:  binary,
		root:    root,
		timeout: timeout,
		runner:  runner,
		disk:    disk,
		logger:  logger,
	}
}

func (r *Rclone) Name() string { return "rclone" }

func (r *Rclone) Upload(ctx context.Context, localPath, logicalName string) (string, error) {
	remotePath := joinRemote(r.root, logicalName)
	if _, err := os.Stat(localPath); err != nil {
		return "", storageError(ctx, r.Name(), "upload", remotePath, "", err)
	}
	if err := r.run(ctx, "upload", remotePath, "copyto", localPath, remotePath); err != nil {
		return "", err
	}
	r.logger.Debug("uploaded file", slog.String("backend", r.Name()), slog.String("remote_path", remotePath))
	return remotePath, nil
}

func (r *Rclone) Download(ctx context.Context, remotePath, destDir string) (string, error) {
	p, err := ParsePath(remotePath)
	if err != nil {
		return "", storageError(ctx, r.Name(), "download", remotePath, "", err)
	}
	target, err := localTarget(destDir, p.Base())
	if err != nil {
		return "", storageError(ctx, r.Name(), "download", remotePath, "", err)
	}
	if err := r.run(ctx, "download", remotePath, "copyto", p.String(), target); err != nil {
		return "", err
	}
	if _, err := os.Stat(target); err != nil {
		return "", storageError(ctx, r.Name(), "download", remotePath, "file missing after copy", err)
	}
	return target, nil
}

func (r *Rclone) Delete(ctx context.Context, remotePath string) error {
	p, err := ParsePath(remotePath)
	if err != nil {
		return storageError(ctx, r.Name(), "delete", remotePath, "", err)
	}
	return r.run(ctx, "delete", remotePath, "deletefile", p.String())
}

func (r *Rclone) DirectLink(ctx context.Context, remotePath string) (string, error) {
	if r.disk == nil {
		return "", domainErrors.ErrLinkUnsupported
	}
	p, err := ParsePath(remotePath)
	if err != nil {
		return "", storageError(ctx, r.Name(), "link", remotePath, "", err)
	}
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()
	return r.disk.DownloadLink(ctx, "/"+strings.TrimPrefix(p.Key, "/"))
}

func (r *Rclone) run(ctx context.Context, op, remotePath string, args ...string) error {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	stdout, stderr, err := r.runner.Run(ctx, r.binary, args...)
	if err == nil {
		return nil
	}
	if code := command.ExitCode(err); code > 0 {
		err = fmt.Errorf("exit status %d", code)
	} else if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = context.DeadlineExceeded
	}
	return storageError(ctx, r.Name(), op, remotePath, command.Diagnostic(stdout, stderr), err)
}
