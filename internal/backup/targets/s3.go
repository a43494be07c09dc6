// Package targets provides upload target implementations.
package targets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

// S3Target implements the backup.Target interface by running the aws CLI.
// Credentials are either ambient (EC2 instance role) or explicit IAM keys
// exported into the subprocess environment.
type S3Target struct {
	cfg    *conf.AWSConfig
	exec   backup.Executor
	logger *slog.Logger
}

// NewS3Target creates a new S3 upload target.
func NewS3Target(cfg *conf.AWSConfig, executor backup.Executor, logger *slog.Logger) *S3Target {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Target{cfg: cfg, exec: executor, logger: logger}
}

// Name returns the name of this target.
func (t *S3Target) Name() string {
	return "aws"
}

// Validate validates the target configuration.
func (t *S3Target) Validate() error {
	if !strings.HasPrefix(t.cfg.S3URI, "s3://") {
		return fmt.Errorf("aws: destination must be an s3:// URI, got %q", t.cfg.S3URI)
	}
	if t.cfg.Region == "" {
		return fmt.Errorf("aws: region is required")
	}
	switch t.cfg.Auth {
	case conf.AWSAuthEC2:
	case conf.AWSAuthIAM:
		if t.cfg.Key == "" || t.cfg.Secret == "" {
			return fmt.Errorf("aws: iam auth requires an access key and secret")
		}
	default:
		return fmt.Errorf("aws: unknown auth mode %q", t.cfg.Auth)
	}
	return nil
}

// Store copies the archive to the configured S3 location.
func (t *S3Target) Store(ctx context.Context, archivePath string) error {
	cmd := &backup.Command{
		Name: "aws",
		Args: []string{"s3", "cp", archivePath, t.Destination(archivePath)},
		Env:  t.credentialEnv(),
	}
	if err := t.exec.Run(ctx, cmd); err != nil {
		if backup.IsTimeoutError(err) || backup.IsCanceledError(err) {
			return err
		}
		return backup.NewError(backup.ErrUpload, "s3 upload failed", err)
	}
	return nil
}

// Destination returns the remote object URI for the given archive.
func (t *S3Target) Destination(archivePath string) string {
	return strings.TrimRight(t.cfg.S3URI, "/") + "/" + filepath.Base(archivePath)
}

// credentialEnv builds the variables exported to the aws CLI. The region
// is always exported; explicit keys only in iam mode, so ec2 mode keeps
// using the instance role.
func (t *S3Target) credentialEnv() []string {
	env := []string{"AWS_DEFAULT_REGION=" + t.cfg.Region}
	if t.cfg.Auth == conf.AWSAuthIAM {
		env = append(env,
			"AWS_ACCESS_KEY_ID="+t.cfg.Key,
			"AWS_SECRET_ACCESS_KEY="+t.cfg.Secret,
		)
	}
	return env
}
