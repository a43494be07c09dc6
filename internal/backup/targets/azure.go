package targets

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

// AzureTarget implements the backup.Target interface by running azcopy.
// The SAS URI carries both the destination and the authorization, so no
// credentials are exported to the subprocess.
type AzureTarget struct {
	cfg    *conf.AzureConfig
	exec   backup.Executor
	logger *slog.Logger
}

// NewAzureTarget creates a new Azure Blob upload target.
func NewAzureTarget(cfg *conf.AzureConfig, executor backup.Executor, logger *slog.Logger) *AzureTarget {
	if logger == nil {
		logger = slog.Default()
	}
	return &AzureTarget{cfg: cfg, exec: executor, logger: logger}
}

// Name returns the name of this target.
func (t *AzureTarget) Name() string {
	return "azure"
}

// Validate validates the target configuration.
func (t *AzureTarget) Validate() error {
	u, err := url.Parse(t.cfg.SASURI)
	if err != nil {
		return fmt.Errorf("azure: invalid SAS URI: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("azure: SAS URI must use https, got %q", u.Scheme)
	}
	if u.Query().Get("sig") == "" {
		return fmt.Errorf("azure: SAS URI is missing the signature parameter")
	}
	return nil
}

// Store copies the archive into the SAS-authenticated container. azcopy
// names the blob after the local file, matching the archive filename.
func (t *AzureTarget) Store(ctx context.Context, archivePath string) error {
	cmd := &backup.Command{
		Name: "azcopy",
		Args: []string{"copy", archivePath, t.cfg.SASURI},
	}
	if err := t.exec.Run(ctx, cmd); err != nil {
		if backup.IsTimeoutError(err) || backup.IsCanceledError(err) {
			return err
		}
		return backup.NewError(backup.ErrUpload, "azure upload failed", err)
	}
	return nil
}
