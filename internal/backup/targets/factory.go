package targets

import (
	"fmt"
	"log/slog"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

// New returns the upload target selected by the configuration, or nil when
// the archive should stay local only ("none" or unset). An unrecognized
// selector is an error: a typo must not silently leave backups on local
// disk only.
func New(settings *conf.Settings, executor backup.Executor, logger *slog.Logger) (backup.Target, error) {
	switch settings.Backup.Target {
	case "", conf.TargetNone:
		return nil, nil
	case conf.TargetAWS:
		return NewS3Target(&settings.Backup.AWS, executor, logger), nil
	case conf.TargetAzure:
		return NewAzureTarget(&settings.Backup.Azure, executor, logger), nil
	case conf.TargetSFTP:
		return NewSFTPTarget(&settings.Backup.SFTP, logger), nil
	default:
		return nil, fmt.Errorf("unknown backup target %q", settings.Backup.Target)
	}
}
