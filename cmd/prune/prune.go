// Package prune provides the prune command.
package prune

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

// Command creates and returns the prune command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete local archives older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.ValidateSweep(settings); err != nil {
				return err
			}

			logger := slog.Default()
			removed, err := backup.SweepExpired(settings.Backup.Path, settings.Backup.RetentionDays, time.Now(), logger)
			if err != nil {
				return err
			}
			logger.Info("sweep finished", "removed", removed, "retention_days", settings.Backup.RetentionDays)
			return nil
		},
	}
}
